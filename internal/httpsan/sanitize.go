// Package httpsan reduces raw outbound-call responses to a bounded,
// replay-deterministic projection. The environment hosting the gateway
// call may replicate or re-execute an outbound request for fault
// tolerance; before the orchestrator trusts a response, every header
// that can differ between replicas (dates, request ids, connection
// tokens) must be stripped so identical payloads compare identical.
package httpsan

import "strings"

// Header is a single response header. Plain structs, not http.Header:
// sanitization operates on captured responses, not on live ones.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Response is the raw transport result of an outbound call.
type Response struct {
	Status  int      `json:"status"`
	Headers []Header `json:"headers"`
	Body    []byte   `json:"body"`
}

// allowedHeaders is the full set of headers that survive
// sanitization. Everything else is dropped.
var allowedHeaders = map[string]struct{}{
	"content-type": {},
}

// Sanitize is a pure function: status and body pass through unchanged,
// headers are reduced to the allow-list. Deterministic for identical
// input bytes — it performs no I/O and reads no clocks.
func Sanitize(raw Response) Response {
	kept := make([]Header, 0, len(raw.Headers))
	for _, h := range raw.Headers {
		if _, ok := allowedHeaders[strings.ToLower(h.Name)]; ok {
			kept = append(kept, Header{Name: strings.ToLower(h.Name), Value: h.Value})
		}
	}

	return Response{
		Status:  raw.Status,
		Headers: kept,
		Body:    raw.Body,
	}
}
