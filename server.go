package authcode

import (
	"net/http"

	"darlinggo.co/trout/v2"
	yall "yall.in"
)

func logEndpoint(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := remoteAddr(r)
		log := yall.FromContext(r.Context()).
			WithField("endpoint", r.Header.Get("Trout-Pattern")).
			WithField("method", r.Method).
			WithField("path", r.URL.Path).
			WithField("remote_ip", ip)
		if !isLoopback(ip) {
			log.Warn("callback request from a non-loopback address")
		}
		r = r.WithContext(yall.InContext(r.Context(), log))
		log.Debug("serving request")
		h.ServeHTTP(w, r)
		log.Debug("served request")
	})
}

// callbackServer routes every request, whatever its path or method, to
// the callback state machine.
func callbackServer(callback http.Handler) http.Handler {
	h := logEndpoint(callback)

	var router trout.Router
	router.Endpoint("/").Handler(h)
	router.Handle404 = h

	return &router
}
