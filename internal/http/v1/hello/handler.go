// Package hello serves the greeting endpoint.
package hello

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	applog "github.com/NullSpells/NomadSquare/internal/platform/logging"
)

// Register wires GET /hello into api.
func Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-hello",
		Method:      http.MethodGet,
		Path:        "/hello",
		Summary:     "Get the greeting",
		Description: "Returns a fixed greeting. The response never varies and the request carries no input.",
		Tags:        []string{"hello"},
	}, getHandler)
}

func getHandler(ctx context.Context, _ *struct{}) (*GetOutput, error) {
	applog.LogDebug(ctx, "hello get", zap.String("path", "/hello"))
	return &GetOutput{Body: Message{Msg: Greeting}}, nil
}
