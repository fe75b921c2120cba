package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"github.com/urfave/cli/v2"
	"golang.org/x/oauth2"
	yall "yall.in"
	"yall.in/colour"

	"lockbox.dev/authcode"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run returns an error only when the flow couldn't run to completion. A
// callback that reported a failure still completed the flow.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	app := &cli.App{
		Name:      "authcode",
		Usage:     "obtain OAuth 2.0 tokens through a one-shot authorization code exchange",
		Flags:     flags,
		Writer:    stdout,
		ErrWriter: stderr,
		Action: func(cctx *cli.Context) error {
			return runFlow(cctx, stdin, stdout, stderr)
		},
	}
	return app.RunContext(ctx, args)
}

var flags = []cli.Flag{
	&cli.StringFlag{
		Name:    "client-id",
		Usage:   "OAuth 2.0 client ID",
		EnvVars: []string{"GAPI_CLIENT_ID"},
	},
	&cli.StringFlag{
		Name:    "client-secret",
		Usage:   "OAuth 2.0 client secret",
		EnvVars: []string{"GAPI_CLIENT_SECRET"},
	},
	&cli.StringFlag{
		Name:    "scopes",
		Usage:   "comma-separated scopes to request",
		EnvVars: []string{"GAPI_SCOPES"},
	},
	&cli.StringFlag{
		Name:    "access-type",
		Usage:   "access type to request, usually online or offline",
		EnvVars: []string{"GAPI_ACCESS_TYPE"},
	},
	&cli.StringFlag{
		Name:    "include-granted-scopes",
		Usage:   "\"true\" to ask for previously granted scopes too",
		EnvVars: []string{"GAPI_INCLUDE_GRANTED_SCOPES"},
	},
	&cli.StringFlag{
		Name:    "port",
		Usage:   "TCP port for the http://localhost:<port>/ redirect URI",
		EnvVars: []string{"PORT"},
	},
	&cli.StringFlag{
		Name:    "auth-url",
		Usage:   "authorization endpoint, if not Google's",
		EnvVars: []string{"GAPI_AUTH_URL"},
	},
	&cli.StringFlag{
		Name:    "token-url",
		Usage:   "token endpoint, if not Google's",
		EnvVars: []string{"GAPI_TOKEN_URL"},
	},
	&cli.DurationFlag{
		Name:    "exchange-timeout",
		Usage:   "how long to wait for the token endpoint, 0 to wait forever",
		Value:   authcode.DefaultExchangeTimeout,
		EnvVars: []string{"GAPI_EXCHANGE_TIMEOUT"},
	},
	&cli.BoolFlag{
		Name:    "state",
		Usage:   "add an anti-forgery state parameter and require it on callbacks that carry a code; provider error callbacks aren't checked",
		EnvVars: []string{"GAPI_USE_STATE"},
	},
	&cli.BoolFlag{
		Name:    "verify-id-token",
		Usage:   "verify the returned ID token against Google's keys",
		EnvVars: []string{"GAPI_VERIFY_ID_TOKEN"},
	},
	&cli.BoolFlag{
		Name:  "no-prompt",
		Usage: "use defaults instead of prompting for missing values",
	},
	&cli.StringFlag{
		Name:    "log-level",
		Usage:   "log severity: debug, info, warn, or error",
		Value:   "info",
		EnvVars: []string{"LOG_LEVEL"},
	},
}

// flowConfig resolves the flags, prompting on `stdin` and `stderr` for
// anything missing, into the FlowConfig to run.
func flowConfig(cctx *cli.Context, stdin io.Reader, stderr io.Writer) (authcode.FlowConfig, error) {
	resolver := authcode.Resolver{
		In:       stdin,
		Out:      stderr,
		NoPrompt: cctx.Bool("no-prompt"),
	}
	cfg, err := resolver.Resolve(authcode.Answers{
		ClientID:             cctx.String("client-id"),
		ClientSecret:         cctx.String("client-secret"),
		Scopes:               cctx.String("scopes"),
		AccessType:           cctx.String("access-type"),
		IncludeGrantedScopes: cctx.String("include-granted-scopes"),
		Port:                 cctx.String("port"),
	})
	if err != nil {
		return authcode.FlowConfig{}, err
	}
	cfg.Endpoint = oauth2.Endpoint{
		AuthURL:  cctx.String("auth-url"),
		TokenURL: cctx.String("token-url"),
	}
	cfg.ExchangeTimeout = cctx.Duration("exchange-timeout")
	cfg.UseState = cctx.Bool("state")
	cfg.VerifyIDToken = cctx.Bool("verify-id-token")
	return cfg, nil
}

func runFlow(cctx *cli.Context, stdin io.Reader, stdout, stderr io.Writer) error {
	log := yall.New(colour.New(stderr, yall.Severity(strings.ToUpper(cctx.String("log-level")))))

	cfg, err := flowConfig(cctx, stdin, stderr)
	if err != nil {
		return err
	}

	flow := authcode.Flow{
		Config: cfg,
		Out:    stdout,
		Log:    log,
	}
	res, err := flow.Run(cctx.Context)
	if err != nil {
		return err
	}
	if res.Err != nil {
		// the browser already got the details; the flow itself completed
		log.WithError(res.Err).Error("authorization failed")
		return nil
	}
	out, err := json.MarshalIndent(res.Token, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding tokens: %w", err)
	}
	_, err = fmt.Fprintln(stdout, string(out))
	return err
}
