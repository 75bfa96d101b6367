package common

// AuthorizationHeaderName carries the admin bearer token on API requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token inside the Authorization header.
const BearerPrefix = "Bearer "

// RequestIDHeaderName is echoed back on every API response.
const RequestIDHeaderName = "X-Request-ID"
