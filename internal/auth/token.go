package auth

import "strings"

const (
	bearerPrefix = "Bearer "
	tokenPrefix  = "Token token="
)

// NormalizeAuthorization rewrites `Token token=<t>` (optionally quoted) into
// `Bearer <t>`. Canonical and unrecognized values are returned unchanged.
func NormalizeAuthorization(header string) string {
	rest, ok := strings.CutPrefix(header, tokenPrefix)
	if !ok {
		return header
	}

	token := strings.TrimSpace(rest)
	if len(token) >= 2 && token[0] == '"' && token[len(token)-1] == '"' {
		token = token[1 : len(token)-1]
	}
	if token == "" {
		return header
	}
	return bearerPrefix + token
}

// BearerToken extracts the credential from a `Bearer <t>` header. The scheme
// is matched case-insensitively.
func BearerToken(header string) (string, bool) {
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}
