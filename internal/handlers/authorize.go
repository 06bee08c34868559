package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/TwigBush/roleguard/internal/httpx"
	"github.com/TwigBush/roleguard/internal/mw"
)

type allowedResp struct {
	Allowed bool `json:"allowed"`
}

// AuthorizeHandler answers forward-auth subrequests from a reverse proxy: the
// proxy passes the caller's Authorization header and names the operation in
// the path.
type AuthorizeHandler struct {
	a mw.Authorizer
}

func NewAuthorizeHandler(a mw.Authorizer) *AuthorizeHandler {
	return &AuthorizeHandler{a: a}
}

func (h *AuthorizeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	op := chi.URLParam(r, "operation")
	if op == "" {
		httpx.WriteError(w, r, http.StatusBadRequest, "missing_operation")
		return
	}
	if !mw.Authorize(w, r, h.a, op) {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, allowedResp{Allowed: true})
}
