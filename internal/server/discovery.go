package server

import (
	"net/http"

	"github.com/TwigBush/roleguard/internal/httpx"
)

// discoveryResp tells forward-auth clients where to send subrequests and which
// operations are declared. Required roles are never listed.
type discoveryResp struct {
	AuthorizeEndpoint string   `json:"authorize_endpoint"`
	Methods           []string `json:"methods"`
	Operations        []string `json:"operations"`
}

// DiscoveryHandler serves the discovery document for the authorize endpoint.
func DiscoveryHandler(ops func() []string) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		names := []string{}
		if ops != nil {
			names = ops()
		}
		httpx.WriteJSON(w, http.StatusOK, &discoveryResp{
			AuthorizeEndpoint: httpx.BaseURL(req) + "/authorize/{operation}",
			Methods:           []string{http.MethodGet, http.MethodPost},
			Operations:        names,
		})
	}
}
