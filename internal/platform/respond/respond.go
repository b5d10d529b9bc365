// Package respond renders hosting-level failures (unknown routes, rejected
// methods, panics) as RFC 9457 problem details in JSON or CBOR.
package respond

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/fxamacker/cbor/v2"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	applog "github.com/NullSpells/NomadSquare/internal/platform/logging"
)

const (
	contentTypeProblemJSON = "application/problem+json"
	contentTypeProblemCBOR = "application/problem+cbor"

	msgNotFound      = "resource not found"
	msgInternalError = "internal server error"
)

// candidateMethods are probed, in this order, to build the Allow header.
var candidateMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
}

// NotFoundHandler answers unknown routes with a 404 problem.
func NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, r, http.StatusNotFound, msgNotFound, nil)
	}
}

// MethodNotAllowedHandler answers a known route requested with an
// unregistered method. The Allow header lists the registered methods.
func MethodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if allow := allowedMethods(r); len(allow) > 0 {
			w.Header().Set("Allow", strings.Join(allow, ", "))
		}
		writeProblem(w, r, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed", r.Method), nil)
	}
}

// Recoverer turns panics into a 500 problem. http.ErrAbortHandler is
// re-panicked so net/http can abort the connection, and nothing is written
// when the handler already sent its headers.
func Recoverer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &responseWriter{ResponseWriter: w}
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				err := panicError(rec)
				if rw.wroteHeader {
					applog.LogError(r.Context(), "panic after response started", err,
						zap.ByteString("stack", debug.Stack()))
					return
				}
				writeProblem(rw, r, http.StatusInternalServerError, msgInternalError, err,
					zap.ByteString("stack", debug.Stack()))
			}()
			next.ServeHTTP(rw, r)
		})
	}
}

func panicError(rec any) error {
	if err, ok := rec.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", rec)
}

// writeProblem negotiates the encoding, logs the failure at a severity
// matching status and writes the problem body.
func writeProblem(w http.ResponseWriter, r *http.Request, status int, detail string, cause error, fields ...zap.Field) {
	ctx := r.Context()
	fields = append(fields,
		zap.Int("status", status),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)
	switch {
	case status >= http.StatusInternalServerError:
		applog.LogError(ctx, detail, cause, fields...)
	case cause != nil:
		applog.LogWarn(ctx, detail, append(fields, zap.Error(cause))...)
	default:
		applog.LogWarn(ctx, detail, fields...)
	}

	problem := &huma.ErrorModel{
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	}

	h := w.Header()
	ensureVary(h, "Origin", "Accept")

	var (
		body []byte
		err  error
	)
	if preferCBOR(r.Header.Get("Accept")) {
		h.Set("Content-Type", contentTypeProblemCBOR)
		body, err = cbor.Marshal(problem)
	} else {
		h.Set("Content-Type", contentTypeProblemJSON)
		body, err = marshalJSON(problem)
	}
	if err != nil {
		applog.LogError(ctx, "encode problem", err)
		h.Del("Content-Type")
		w.WriteHeader(status)
		return
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		applog.LogWarn(ctx, "write problem", zap.Error(err))
	}
}

func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ensureVary appends each value to Vary unless it is already listed, in any
// of the existing comma separated header lines.
func ensureVary(h http.Header, values ...string) {
	present := make(map[string]struct{})
	for _, line := range h.Values("Vary") {
		for v := range strings.SplitSeq(line, ",") {
			present[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
		}
	}
	for _, v := range values {
		key := strings.ToLower(v)
		if _, ok := present[key]; ok {
			continue
		}
		present[key] = struct{}{}
		h.Add("Vary", v)
	}
}

// allowedMethods asks chi's route tree which candidate methods match the
// request path.
func allowedMethods(r *http.Request) []string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.Routes == nil {
		return nil
	}
	path := rctx.RoutePath
	if path == "" {
		path = r.URL.RawPath
	}
	if path == "" {
		path = r.URL.Path
	}
	if path == "" {
		path = "/"
	}

	var allowed []string
	for _, m := range candidateMethods {
		if rctx.Routes.Match(chi.NewRouteContext(), m, path) {
			allowed = append(allowed, m)
		}
	}
	return allowed
}

// responseWriter records whether the response has started so Recoverer
// knows if a problem body can still be written.
type responseWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(status int) {
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
