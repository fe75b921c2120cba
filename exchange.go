package authcode

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	yall "yall.in"
)

// Exchanger trades an authorization code for a token bundle. Errors it
// returns should be *ExchangeError.
type Exchanger interface {
	Exchange(ctx context.Context, code string) (Token, error)
}

// OAuth2Exchanger is the Exchanger that talks to the provider's token
// endpoint.
type OAuth2Exchanger struct {
	conf     *oauth2.Config
	timeout  time.Duration
	idTokens *idTokenChecker
}

// NewExchanger builds an OAuth2Exchanger for `cfg`. When cfg.VerifyIDToken
// is set, it fetches Google's OpenID configuration using `ctx`, so it
// can fail on network errors.
func NewExchanger(ctx context.Context, cfg FlowConfig) (*OAuth2Exchanger, error) {
	idTokens, err := newIDTokenChecker(ctx, cfg.ClientID, cfg.VerifyIDToken)
	if err != nil {
		return nil, err
	}
	return &OAuth2Exchanger{
		conf:     cfg.oauth2Config(),
		timeout:  cfg.ExchangeTimeout,
		idTokens: idTokens,
	}, nil
}

// Exchange makes a single call to the token endpoint. It never retries.
func (e *OAuth2Exchanger) Exchange(ctx context.Context, code string) (Token, error) {
	log := yall.FromContext(ctx)
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	start := time.Now()
	tok, err := e.conf.Exchange(ctx, code)
	if err != nil {
		log.WithError(err).WithField("duration", time.Since(start).String()).Debug("Error exchanging code")
		return Token{}, newExchangeError(err)
	}
	log.WithField("duration", time.Since(start).String()).Debug("exchanged code")
	res := tokenFromOAuth2(tok)
	if res.IDToken != "" {
		err = e.idTokens.Check(ctx, res.IDToken)
		if err != nil {
			return Token{}, &ExchangeError{Err: err}
		}
	}
	return res, nil
}

// newExchangeError pulls the provider's explanation out of `err` when
// there is one.
func newExchangeError(err error) *ExchangeError {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.ErrorCode != "" {
		return &ExchangeError{
			Code:        retrieveErr.ErrorCode,
			Description: retrieveErr.ErrorDescription,
			Err:         err,
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &ExchangeError{Err: fmt.Errorf("token endpoint didn't answer in time: %w", err)}
	}
	return &ExchangeError{Err: err}
}
