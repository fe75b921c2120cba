package authcode

import (
	"strconv"

	uuid "github.com/hashicorp/go-uuid"
	"golang.org/x/oauth2"
)

// AuthorizationURL returns the URL the operator should open to grant
// access. The same FlowConfig and state always produce the same URL. An
// empty state leaves the parameter out entirely.
func AuthorizationURL(cfg FlowConfig, state string) string {
	return cfg.oauth2Config().AuthCodeURL(state,
		oauth2.SetAuthURLParam("access_type", cfg.AccessType),
		oauth2.SetAuthURLParam("include_granted_scopes", strconv.FormatBool(cfg.IncludeGrantedScopes)),
	)
}

// newState generates an anti-forgery value to bind a callback to the URL
// we handed out.
func newState() (string, error) {
	return uuid.GenerateUUID()
}
