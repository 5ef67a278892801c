package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/darasa/core/auth"
)

const (
	principalKey = "principal"
	bearerPrefix = "Bearer "
)

type (
	tokenVerifier interface {
		Verify(token string) auth.VerifyResult
	}

	tokenIssuer interface {
		Issue(id auth.Identity) (string, error)
	}

	// authorizer builds the authorization middlewares over a token verifier.
	authorizer struct {
		tokens tokenVerifier
	}
)

// bearerToken extracts the token from the `Authorization: Bearer <token>` header.
// It returns "" if the header is missing, has another scheme or carries an empty token.
func bearerToken(req *http.Request) string {
	header := req.Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}

// contextPrincipal returns the principal attached by one of the authorization middlewares.
func contextPrincipal(ctx echo.Context) auth.Principal {
	p, _ := ctx.Get(principalKey).(auth.Principal)
	return p
}

type tokenResponse struct {
	User  interface{} `json:"user"`
	Token string      `json:"token"`
}
