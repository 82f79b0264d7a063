// Package jwt wraps github.com/golang-jwt/jwt/v5 with the session-token
// policy of this module: the HS256 algorithm is pinned (alg:"none" and any
// alternate method are rejected before signature verification), issuance
// enforces claim shape (UUID subject, non-empty audience, bounded lifetime,
// fresh UUID jti), and every verification failure collapses to a single
// [ErrInvalidToken] sentinel with the detail attached for internal sinks.
package jwt
