package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// BackendConfig configures the client for the external user REST API.
type BackendConfig struct {
	// APIURL is the API root; user endpoints live under {APIURL}/users.
	APIURL string `env:"BACKEND_API_URL" envDefault:"http://localhost:8080/api"`

	// Timeout bounds each backend request. Zero means no client-side timeout;
	// requests are still cancelled with the inbound request.
	Timeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"0s"`

	// JMESPath expressions locating fields in backend responses.
	ErrorMessageExpr string `env:"BACKEND_ERROR_MESSAGE_EXPR" envDefault:"message"`
	LoginUserExpr    string `env:"BACKEND_LOGIN_USER_EXPR"    envDefault:"user"`
	LoginTokenExpr   string `env:"BACKEND_LOGIN_TOKEN_EXPR"   envDefault:"token"`
}

// Sanitize trims the API URL and restores empty expressions to their defaults.
func (b *BackendConfig) Sanitize() {
	b.APIURL = strings.TrimRight(strings.TrimSpace(b.APIURL), "/")
	if b.Timeout < 0 {
		b.Timeout = 0
	}
	if strings.TrimSpace(b.ErrorMessageExpr) == "" {
		b.ErrorMessageExpr = "message"
	}
	if strings.TrimSpace(b.LoginUserExpr) == "" {
		b.LoginUserExpr = "user"
	}
	if strings.TrimSpace(b.LoginTokenExpr) == "" {
		b.LoginTokenExpr = "token"
	}
}

// Validate ensures the API URL is absolute.
func (b *BackendConfig) Validate() error {
	u, err := url.Parse(b.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("BACKEND_API_URL %q must be an absolute http(s) URL", b.APIURL)
	}
	return nil
}
