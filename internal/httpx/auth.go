package httpx

import "strings"

// ExtractToken returns the credential from an Authorization header using the
// Bearer or GNAP scheme. The scheme name is case-insensitive.
func ExtractToken(authz string) (string, bool) {
	scheme, cred, ok := strings.Cut(strings.TrimSpace(authz), " ")
	if !ok {
		return "", false
	}
	if !strings.EqualFold(scheme, "Bearer") && !strings.EqualFold(scheme, "GNAP") {
		return "", false
	}
	cred = strings.TrimSpace(cred)
	return cred, cred != ""
}
