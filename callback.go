package authcode

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"

	yall "yall.in"
)

const (
	stateListening int32 = iota
	stateTerminated
)

// CallbackResult is how the one callback a Flow handles turned out.
// Exactly one of Token and Err is meaningful: if Err is nil, Token holds
// the bundle the provider issued.
type CallbackResult struct {
	Token Token
	Err   error
}

// callbackHandler is the state machine behind the callback listener. It
// starts out listening, and the first request to reach it moves it to
// terminated for good. Only that first request is ever acted on; its
// result is published on done.
type callbackHandler struct {
	exchanger Exchanger
	state     string // the state we expect back, empty if we don't check
	status    atomic.Int32
	done      chan CallbackResult
}

func newCallbackHandler(exchanger Exchanger, state string) *callbackHandler {
	return &callbackHandler{
		exchanger: exchanger,
		state:     state,
		done:      make(chan CallbackResult, 1),
	}
}

// Done delivers the result of the one callback, once it has been answered.
func (h *callbackHandler) Done() <-chan CallbackResult {
	return h.done
}

func (h *callbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.status.CompareAndSwap(stateListening, stateTerminated) {
		yall.FromContext(r.Context()).Debug("flow already finished, turning request away")
		w.WriteHeader(http.StatusGone)
		return
	}
	h.done <- h.handleCallback(w, r)
}

// handleCallback answers the request and reports what happened.
func (h *callbackHandler) handleCallback(w http.ResponseWriter, r *http.Request) CallbackResult {
	log := yall.FromContext(r.Context())
	query := r.URL.Query()

	if code := query.Get("error"); code != "" {
		err := &ProviderAuthError{Code: code, Description: query.Get("error_description")}
		log.WithField("error", code).Debug("provider redirected with an error")
		returnError(w, r, http.StatusInternalServerError, err.Error())
		return CallbackResult{Err: err}
	}

	code := query.Get("code")
	if code == "" {
		log.Debug("callback had neither error nor code")
		w.WriteHeader(http.StatusBadRequest)
		return CallbackResult{Err: MalformedCallbackError{}}
	}

	if h.state != "" && subtle.ConstantTimeCompare([]byte(h.state), []byte(query.Get("state"))) != 1 {
		log.WithField("state", query.Get("state")).Debug("callback state doesn't match")
		returnError(w, r, http.StatusBadRequest, StateMismatchError{}.Error())
		return CallbackResult{Err: StateMismatchError{}}
	}

	// the code is single use, so the exchange has to finish even if the
	// browser gives up on us
	token, err := h.exchanger.Exchange(context.WithoutCancel(r.Context()), code)
	if err != nil {
		var exchangeErr *ExchangeError
		if !errors.As(err, &exchangeErr) {
			exchangeErr = &ExchangeError{Err: err}
		}
		log.WithError(err).Debug("Error exchanging code for tokens")
		returnError(w, r, http.StatusInternalServerError, exchangeErr.Error())
		return CallbackResult{Err: exchangeErr}
	}
	returnToken(w, r, token)
	return CallbackResult{Token: token}
}

// return an error message as plain text.
func returnError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	w.Header().Set("content-type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, err := w.Write([]byte(msg))
	if err != nil {
		yall.FromContext(r.Context()).WithError(err).Error("Error writing response")
	}
}

// return a token bundle as JSON.
func returnToken(w http.ResponseWriter, r *http.Request, token Token) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(http.StatusOK)
	enc := json.NewEncoder(w)
	err := enc.Encode(token)
	if err != nil {
		yall.FromContext(r.Context()).WithError(err).Error("Error writing response")
	}
}
