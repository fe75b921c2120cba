package authcode

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	// DefaultExchangeTimeout bounds the code-for-token call when the
	// operator doesn't choose a timeout.
	DefaultExchangeTimeout = 30 * time.Second

	minPort = 1
	maxPort = 65535
)

// FlowConfig is everything a Flow needs to know to run. It is built once,
// validated, and never modified afterwards.
type FlowConfig struct {
	ClientID             string
	ClientSecret         string
	Scopes               []string
	AccessType           string
	IncludeGrantedScopes bool
	Port                 int

	// Endpoint is the provider's authorization and token URLs. If
	// AuthURL and TokenURL are both empty, Google's endpoint is used.
	Endpoint oauth2.Endpoint

	// ExchangeTimeout bounds the token exchange. Zero means no timeout.
	ExchangeTimeout time.Duration

	// UseState adds a random state parameter to the authorization URL
	// and rejects callbacks that don't echo it back.
	UseState bool

	// VerifyIDToken checks any id_token the provider returns against
	// Google's published keys before handing the bundle out.
	VerifyIDToken bool
}

// Validate returns a *ConfigError describing the first field that isn't
// populated, or nil if the FlowConfig is ready to be used.
func (c FlowConfig) Validate() error {
	if strings.TrimSpace(c.ClientID) == "" {
		return &ConfigError{Field: "client id", Reason: "is required"}
	}
	if strings.TrimSpace(c.ClientSecret) == "" {
		return &ConfigError{Field: "client secret", Reason: "is required"}
	}
	if len(c.Scopes) < 1 {
		return &ConfigError{Field: "scopes", Reason: "at least one scope is required"}
	}
	for pos, scope := range c.Scopes {
		if strings.TrimSpace(scope) == "" {
			return &ConfigError{Field: "scopes", Reason: "scope " + strconv.Itoa(pos+1) + " is empty"}
		}
	}
	if strings.TrimSpace(c.AccessType) == "" {
		return &ConfigError{Field: "access type", Reason: "is required"}
	}
	if c.Port < minPort || c.Port > maxPort {
		return &ConfigError{Field: "port", Reason: strconv.Itoa(c.Port) + " is outside 1-65535"}
	}
	if c.ExchangeTimeout < 0 {
		return &ConfigError{Field: "exchange timeout", Reason: "can't be negative"}
	}
	if (c.Endpoint.AuthURL == "") != (c.Endpoint.TokenURL == "") {
		return &ConfigError{Field: "endpoint", Reason: "auth and token URLs must be set together"}
	}
	return nil
}

// RedirectURL is the loopback URL the provider sends the operator's
// browser back to.
func (c FlowConfig) RedirectURL() string {
	return "http://localhost:" + strconv.Itoa(c.Port) + "/"
}

func (c FlowConfig) endpoint() oauth2.Endpoint {
	if c.Endpoint.AuthURL == "" && c.Endpoint.TokenURL == "" {
		return google.Endpoint
	}
	return c.Endpoint
}

func (c FlowConfig) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     c.endpoint(),
		RedirectURL:  c.RedirectURL(),
		Scopes:       c.Scopes,
	}
}
