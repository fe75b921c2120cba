package authcode

import "errors"

// ConfigError is returned when a FlowConfig can't be assembled or doesn't
// have every field it needs.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}

// ProviderAuthError means the provider redirected back with an `error`
// query parameter instead of a code. Its message is sent to the browser
// verbatim.
type ProviderAuthError struct {
	Code        string
	Description string
}

func (e *ProviderAuthError) Error() string {
	msg := "Error: " + e.Code
	if e.Description != "" {
		msg += " (" + e.Description + ")"
	}
	return msg
}

// ExchangeError means trading the code for tokens failed. When the
// provider explained why, Code and Description hold its `error` and
// `error_description`; otherwise Err holds the transport failure.
type ExchangeError struct {
	Code        string
	Description string
	Err         error
}

func (e *ExchangeError) Error() string {
	if e.Code != "" {
		if e.Description != "" {
			return e.Code + ": " + e.Description
		}
		return e.Code
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "token exchange failed"
}

func (e *ExchangeError) Unwrap() error {
	return e.Err
}

// MalformedCallbackError means the callback carried neither an `error`
// nor a `code`.
type MalformedCallbackError struct{}

func (MalformedCallbackError) Error() string {
	return "callback carried neither error nor code"
}

// StateMismatchError means state checking was on and the callback's
// `state` wasn't the one we put in the authorization URL.
type StateMismatchError struct{}

func (StateMismatchError) Error() string {
	return "state mismatch"
}

// ErrFlowUsed is returned when Run is called on a Flow that has already
// run. A Flow answers one callback in its lifetime.
var ErrFlowUsed = errors.New("authorization flow already ran")
