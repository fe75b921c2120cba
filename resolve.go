package authcode

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	defaultScopes               = "email"
	defaultAccessType           = "offline"
	defaultIncludeGrantedScopes = true
	defaultPort                 = 8080
)

// Answers are the values an operator supplied up front, through flags or
// the environment, as raw strings. An empty string means the value wasn't
// supplied, and the Resolver asks for it.
type Answers struct {
	ClientID             string
	ClientSecret         string
	Scopes               string
	AccessType           string
	IncludeGrantedScopes string
	Port                 string
}

// Resolver fills in whatever Answers are missing by asking the operator,
// and turns the result into a validated FlowConfig.
type Resolver struct {
	In  io.Reader
	Out io.Writer

	// NoPrompt makes the Resolver use defaults instead of asking. Fields
	// without a default are then a ConfigError.
	NoPrompt bool
}

// Resolve prompts, in order, for every field not set in `answers` and
// returns the resulting FlowConfig. Only the fields an operator can
// answer are populated; Endpoint, ExchangeTimeout and the rest are left
// for the caller.
func (r Resolver) Resolve(answers Answers) (FlowConfig, error) {
	p := prompter{
		in:       bufio.NewReader(r.In),
		out:      r.Out,
		noPrompt: r.NoPrompt,
	}
	if r.In == nil {
		p.in = bufio.NewReader(strings.NewReader(""))
	}
	if r.Out == nil {
		p.out = io.Discard
	}

	var cfg FlowConfig
	var err error

	cfg.ClientID, err = p.input(answers.ClientID, "OAuth 2.0 Client ID", "")
	if err != nil {
		return FlowConfig{}, err
	}
	cfg.ClientSecret, err = p.input(answers.ClientSecret, "OAuth 2.0 Client Secret", "")
	if err != nil {
		return FlowConfig{}, err
	}
	scopes, err := p.input(answers.Scopes, "Scopes", defaultScopes)
	if err != nil {
		return FlowConfig{}, err
	}
	cfg.Scopes = ParseScopes(scopes)
	cfg.AccessType, err = p.input(answers.AccessType, "Access Type", defaultAccessType)
	if err != nil {
		return FlowConfig{}, err
	}
	if answers.IncludeGrantedScopes != "" {
		cfg.IncludeGrantedScopes = ParseIncludeGrantedScopes(answers.IncludeGrantedScopes)
	} else {
		cfg.IncludeGrantedScopes, err = p.confirm("Include Granted Scopes", defaultIncludeGrantedScopes)
		if err != nil {
			return FlowConfig{}, err
		}
	}
	port, err := p.input(answers.Port, "Redirect URI TCP Port", strconv.Itoa(defaultPort))
	if err != nil {
		return FlowConfig{}, err
	}
	cfg.Port, err = ParsePort(port)
	if err != nil {
		return FlowConfig{}, err
	}

	err = cfg.Validate()
	if err != nil {
		return FlowConfig{}, err
	}
	return cfg, nil
}

// ParseScopes turns a comma-separated list of scopes into a slice. Spaces
// are dropped, as are empty entries.
func ParseScopes(in string) []string {
	in = strings.ReplaceAll(in, " ", "")
	var scopes []string
	for _, scope := range strings.Split(in, ",") {
		if scope == "" {
			continue
		}
		scopes = append(scopes, scope)
	}
	return scopes
}

// ParseIncludeGrantedScopes reports whether `in` is "true", ignoring case.
// Anything else is false.
func ParseIncludeGrantedScopes(in string) bool {
	return strings.EqualFold(strings.TrimSpace(in), "true")
}

// ParsePort parses a TCP port number.
func ParsePort(in string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(in))
	if err != nil {
		return 0, &ConfigError{Field: "port", Reason: fmt.Sprintf("%q is not a number", in)}
	}
	return port, nil
}

type prompter struct {
	in       *bufio.Reader
	out      io.Writer
	noPrompt bool
}

// readLine prints `question` and reads one line of input. Running out of
// input counts as an empty answer.
func (p prompter) readLine(question string) (string, error) {
	fmt.Fprint(p.out, "? "+question+" ")
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading answer to %q: %w", question, err)
	}
	if errors.Is(err, io.EOF) {
		fmt.Fprintln(p.out)
	}
	return strings.TrimSpace(line), nil
}

// input returns `current` if it's set, otherwise asks for the value. An
// empty answer takes `def`; with no default, an empty answer is a
// ConfigError.
func (p prompter) input(current, question, def string) (string, error) {
	if current != "" {
		return current, nil
	}
	answer := ""
	if !p.noPrompt {
		q := question
		if def != "" {
			q += " (" + def + ")"
		}
		var err error
		answer, err = p.readLine(q)
		if err != nil {
			return "", err
		}
	}
	if answer == "" {
		answer = def
	}
	if answer == "" {
		return "", &ConfigError{Field: strings.ToLower(question), Reason: "is required"}
	}
	return answer, nil
}

// confirm asks a yes/no question.
func (p prompter) confirm(question string, def bool) (bool, error) {
	if p.noPrompt {
		return def, nil
	}
	hint := "(y/N)"
	if def {
		hint = "(Y/n)"
	}
	answer, err := p.readLine(question + " " + hint)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "":
		return def, nil
	case "y", "yes", "true":
		return true, nil
	case "n", "no", "false":
		return false, nil
	}
	return false, &ConfigError{Field: strings.ToLower(question), Reason: fmt.Sprintf("%q is not yes or no", answer)}
}
