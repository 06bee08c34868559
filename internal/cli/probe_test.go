package cli

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestProbe(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotAuth = r.URL.Path, r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"forbidden"}`))
	}))
	defer srv.Close()

	old := baseURL
	t.Cleanup(func() { baseURL = old })
	baseURL = srv.URL + "/"

	out, err := run(t, cmdProbe(), "--op", "reports.read", "--token", "abc")
	if err != nil {
		t.Fatalf("probe error = %v", err)
	}
	if gotPath != "/authorize/reports.read" || gotAuth != "Bearer abc" {
		t.Fatalf("request = %s %q", gotPath, gotAuth)
	}
	if !strings.HasPrefix(out, "HTTP 403") || !strings.Contains(out, `"forbidden"`) {
		t.Fatalf("output = %q", out)
	}
}

func TestProbeRequiresOp(t *testing.T) {
	_, err := run(t, cmdProbe())
	if err == nil || err.Error() != "--op is required" {
		t.Fatalf("got error %v, want %q", err, "--op is required")
	}
}

func TestCurlForHidesToken(t *testing.T) {
	got := curlFor("GET", "http://x/authorize/a", map[string]string{"Authorization": "Bearer secret"})
	if strings.Contains(got, "secret") || !strings.Contains(got, "$TOKEN") {
		t.Fatalf("curlFor() = %q", got)
	}
}
