package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/TwigBush/roleguard/internal/version"
)

func httpDo(method, url string, headers map[string]string) ([]byte, int, error) {
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", version.UserAgent())
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if showCurl {
		fmt.Println(curlFor(method, url, headers))
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return b, resp.StatusCode, nil
}

func curlFor(method, url string, headers map[string]string) string {
	sb := &bytes.Buffer{}
	fmt.Fprintf(sb, "curl -i -X %s '%s'", method, url)
	for k, v := range headers {
		if strings.EqualFold(k, "Authorization") {
			v = "Bearer $TOKEN"
		}
		fmt.Fprintf(sb, " -H %q", fmt.Sprintf("%s: %s", k, v))
	}
	return sb.String()
}

func printJSON(w io.Writer, b []byte) error {
	var any interface{}
	if err := json.Unmarshal(b, &any); err != nil {
		// not JSON, print raw
		fmt.Fprintln(w, string(b))
		return nil
	}
	enc, _ := json.MarshalIndent(any, "", "  ")
	fmt.Fprintln(w, string(enc))
	return nil
}
