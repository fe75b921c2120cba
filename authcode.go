// Package authcode drives a single interactive OAuth2 authorization code
// exchange from a terminal.
//
// The flow is short and linear: build an authorization URL for the
// operator to open in a browser, listen on a local port for the provider's
// redirect, trade the code carried by that redirect for tokens, and stop.
// The local listener answers exactly one callback. Whatever that callback
// carries (tokens, a provider error, or nothing useful) it is the end of
// the flow; there is no retry and no second attempt on the same listener.
//
// This is a bootstrapping tool. It hands the operator a token bundle,
// including a refresh token when `access_type=offline` was requested, and
// forgets it. Storing or refreshing the tokens is somebody else's job.
//
// Use this package by building a `FlowConfig`, usually with a `Resolver`,
// setting it on a `Flow` along with a logger, and calling the Flow's `Run`
// method. `Run` blocks until the callback has been answered or the context
// is cancelled.
package authcode
