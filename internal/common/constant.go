// Package common contains shared constants and sentinel errors used across
// notekeeper components.
package common

// AuthorizationHeaderName carries the bearer access token on API requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the access token in the Authorization header.
const BearerPrefix = "Bearer "

// AccessTokenQueryParam carries the access token where headers cannot be set
// (websocket upgrades from a browser).
const AccessTokenQueryParam = "access_token"
