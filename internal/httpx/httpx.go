package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/TwigBush/roleguard/internal/trace"
)

// APIError is the body of every error response. Trace lets callers quote the
// id that appears in roleguard's logs.
type APIError struct {
	Error string `json:"error"`
	Trace string `json:"trace_id,omitempty"`
}

func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	WriteJSON(w, code, APIError{Error: msg, Trace: trace.From(r.Context())})
}
