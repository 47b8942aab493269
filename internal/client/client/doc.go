// Package client talks to the apparel HTTP API.
//
// HTTPClient keeps the session cookie in a cookie jar, so after Register or
// Login every call is authenticated until Logout or the server-side session
// expires. Transport failures surface as ErrUnavailable and HTTP errors as
// *APIError, which unwraps to the matching sentinel from internal/common
// (and to ErrUnauthorized for any 401).
package client
