package respond

import (
	"strconv"
	"strings"
)

type mediaRange struct {
	typ     string
	subtype string
	q       float64
}

// parseAccept splits an Accept header into media ranges. Types are lowercased,
// a bare type means type/*, and a missing, malformed or out-of-range q
// parameter counts as 1.0. When q repeats, the last value wins.
func parseAccept(header string) []mediaRange {
	var ranges []mediaRange
	for part := range strings.SplitSeq(header, ",") {
		params := strings.Split(part, ";")
		mt := strings.ToLower(strings.TrimSpace(params[0]))
		if mt == "" {
			continue
		}
		typ, subtype, ok := strings.Cut(mt, "/")
		if !ok {
			subtype = "*"
		}
		mr := mediaRange{typ: strings.TrimSpace(typ), subtype: strings.TrimSpace(subtype), q: 1.0}
		for _, p := range params[1:] {
			k, v, _ := strings.Cut(p, "=")
			if !strings.EqualFold(strings.TrimSpace(k), "q") {
				continue
			}
			q, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil || q < 0 || q > 1 {
				q = 1.0
			}
			mr.q = q
		}
		ranges = append(ranges, mr)
	}
	return ranges
}

// specificity ranks how closely r names the given format ("json" or "cbor").
// It returns -1 when r does not match at all.
func (r mediaRange) specificity(format string) int {
	switch {
	case r.typ == "*" && r.subtype == "*":
		return 0
	case r.typ != "application":
		return -1
	case r.subtype == "*":
		return 1
	case r.subtype == "*+"+format:
		return 2
	case r.subtype == format:
		return 3
	case r.subtype == "problem+"+format:
		return 4
	default:
		return -1
	}
}

// quality returns the q-value and specificity of the most specific range
// matching format. A format no range matches has q 0.
func quality(ranges []mediaRange, format string) (q float64, spec int) {
	spec = -1
	for _, r := range ranges {
		s := r.specificity(format)
		if s < 0 {
			continue
		}
		if s > spec || (s == spec && r.q > q) {
			spec, q = s, r.q
		}
	}
	return q, spec
}

// preferCBOR reports whether the Accept header selects CBOR over JSON. The
// q-value decides first and specificity breaks ties. JSON wins whatever is
// left over, including a missing header.
func preferCBOR(accept string) bool {
	ranges := parseAccept(accept)
	cborQ, cborSpec := quality(ranges, "cbor")
	if cborQ <= 0 {
		return false
	}
	jsonQ, jsonSpec := quality(ranges, "json")
	if cborQ != jsonQ {
		return cborQ > jsonQ
	}
	return cborSpec > jsonSpec
}
