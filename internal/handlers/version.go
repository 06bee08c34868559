package handlers

import (
	"net/http"

	"github.com/TwigBush/roleguard/internal/httpx"
	"github.com/TwigBush/roleguard/internal/version"
)

func Version(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, version.Get())
}

func Health(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": version.Version,
	})
}
