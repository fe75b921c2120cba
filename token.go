package authcode

import (
	"time"

	"golang.org/x/oauth2"
)

// Token is the bundle handed back to the operator after a successful
// exchange.
type Token struct {
	AccessToken  string     `json:"access_token"`
	TokenType    string     `json:"token_type"`
	ExpiresIn    int        `json:"expires_in,omitempty"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	Scope        string     `json:"scope,omitempty"`
	IDToken      string     `json:"id_token,omitempty"`
	Expiry       *time.Time `json:"expiry,omitempty"`
}

// tokenFromOAuth2 copies the fields we care about out of an
// *oauth2.Token, including the ones that only show up in its extra
// response values.
func tokenFromOAuth2(tok *oauth2.Token) Token {
	res := Token{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.Type(),
		ExpiresIn:    int(tok.ExpiresIn),
		RefreshToken: tok.RefreshToken,
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		res.Scope = scope
	}
	if idToken, ok := tok.Extra("id_token").(string); ok {
		res.IDToken = idToken
	}
	if !tok.Expiry.IsZero() {
		expiry := tok.Expiry.UTC().Truncate(time.Second)
		res.Expiry = &expiry
	}
	return res
}
