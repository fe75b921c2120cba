package authcode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	yall "yall.in"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Flow runs one authorization code exchange. A Flow owns the callback
// listener: it is acquired when Run starts and released before Run
// returns. A Flow can only be run once.
type Flow struct {
	Config FlowConfig

	// Exchanger trades the code for tokens. If nil, an OAuth2Exchanger
	// is built from Config.
	Exchanger Exchanger

	// Listener, if set, is used instead of listening on Config.Port. Run
	// closes it either way.
	Listener net.Listener

	// Out is where the authorization URL is printed. Defaults to
	// os.Stdout.
	Out io.Writer

	Log *yall.Logger

	ran atomic.Bool
}

// Run prints the authorization URL, waits for the provider to redirect
// back, and returns the outcome of that one callback. A failed callback
// (provider error, failed exchange, missing code) is reported in the
// CallbackResult, not as an error; the error return is for problems that
// kept the flow from running at all, including `ctx` being cancelled
// before a callback arrived.
func (f *Flow) Run(ctx context.Context) (CallbackResult, error) {
	if !f.ran.CompareAndSwap(false, true) {
		return CallbackResult{}, ErrFlowUsed
	}
	ln := f.Listener
	closeListener := func() {
		if ln != nil {
			ln.Close()
		}
	}

	err := f.Config.Validate()
	if err != nil {
		closeListener()
		return CallbackResult{}, err
	}

	log := f.Log
	if log == nil {
		log = yall.FromContext(ctx)
	}
	ctx = yall.InContext(ctx, log)

	exchanger := f.Exchanger
	if exchanger == nil {
		exchanger, err = NewExchanger(ctx, f.Config)
		if err != nil {
			closeListener()
			return CallbackResult{}, fmt.Errorf("setting up token exchange: %w", err)
		}
	}

	var state string
	if f.Config.UseState {
		state, err = newState()
		if err != nil {
			closeListener()
			return CallbackResult{}, fmt.Errorf("generating state: %w", err)
		}
	}

	if ln == nil {
		ln, err = net.Listen("tcp", ":"+strconv.Itoa(f.Config.Port))
		if err != nil {
			return CallbackResult{}, fmt.Errorf("listening for callback: %w", err)
		}
	}

	callback := newCallbackHandler(exchanger, state)
	srv := &http.Server{
		Handler:           callbackServer(callback),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
	srv.SetKeepAlivesEnabled(false)

	out := f.Out
	if out == nil {
		out = os.Stdout
	}
	_, err = fmt.Fprintf(out, "Authentication URL:\n%s\n", AuthorizationURL(f.Config, state))
	if err != nil {
		closeListener()
		return CallbackResult{}, fmt.Errorf("printing authorization URL: %w", err)
	}

	log = log.WithField("addr", ln.Addr().String()).WithField("redirect_url", f.Config.RedirectURL())
	log.Info("waiting for authorization callback")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	select {
	case res := <-callback.Done():
		shutdown(log, srv, ln)
		if res.Err != nil {
			log.WithError(res.Err).Debug("authorization callback failed")
		} else {
			log.Debug("authorization callback succeeded")
		}
		return res, nil
	case err := <-serveErr:
		return CallbackResult{}, fmt.Errorf("serving callback listener: %w", err)
	case <-ctx.Done():
		log.Debug("context cancelled before a callback arrived")
		shutdown(log, srv, ln)
		return CallbackResult{}, ctx.Err()
	}
}

// shutdown stops accepting connections and lets the response already in
// flight finish writing. The listener is closed explicitly in case Serve
// hadn't started tracking it yet.
func shutdown(log *yall.Logger, srv *http.Server, ln net.Listener) {
	defer ln.Close()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(ctx)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("Error shutting down callback listener")
		srv.Close()
	}
}
