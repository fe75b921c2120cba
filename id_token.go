package authcode

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"impractical.co/googleid"
	yall "yall.in"
)

const googleIssuer = "https://accounts.google.com"

// idTokenChecker looks at the ID token that comes back when the `openid`
// scope was requested.
type idTokenChecker struct {
	clients  []string              // the audiences the token must be for
	verifier *oidc.IDTokenVerifier // nil if we only decode
}

func newIDTokenChecker(ctx context.Context, clientID string, verify bool) (*idTokenChecker, error) {
	checker := &idTokenChecker{clients: []string{clientID}}
	if !verify {
		return checker, nil
	}
	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("discovering OpenID configuration for %s: %w", googleIssuer, err)
	}
	checker.verifier = provider.Verifier(&oidc.Config{ClientID: clientID})
	return checker, nil
}

// Check decodes the ID token so we can log who it's for. If the checker
// has a verifier, the token also has to pass verification.
func (c *idTokenChecker) Check(ctx context.Context, raw string) error {
	log := yall.FromContext(ctx)
	token, err := googleid.Decode(raw)
	if err != nil {
		log.WithError(err).Debug("Error decoding ID token")
		if c.verifier == nil {
			return nil
		}
		return fmt.Errorf("decoding id token: %w", err)
	}
	log = log.WithField("id_token.iss", token.Iss).
		WithField("id_token.sub", token.Sub).
		WithField("id_token.email", token.Email)
	if c.verifier == nil {
		log.Debug("decoded ID token without verifying it")
		return nil
	}
	err = googleid.Verify(ctx, raw, c.clients, c.verifier)
	if err != nil {
		log.WithError(err).Debug("Error verifying ID token")
		return fmt.Errorf("verifying id token: %w", err)
	}
	log.Info("verified ID token")
	return nil
}
