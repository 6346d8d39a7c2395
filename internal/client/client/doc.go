// Package client talks to the notekeeper server.
//
// The Client interface is the contract the CLI and services depend on.
// HTTPClient implements it over the JSON API: it attaches the access token,
// refreshes it once on 401 and retries, keeps the current Session and
// notifies OnSessionChange listeners on sign in, sign out and refresh.
// Subscribe streams note change events over a websocket.
//
// Failures map to the sentinel errors in errors.go and can be matched with
// errors.Is.
package client
