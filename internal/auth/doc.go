// Package auth manages user accounts and session tokens.
//
// Passwords are stored as bcrypt hashes. A successful login returns an
// HS256-signed JWT that the HTTP API accepts as a bearer token.
package auth
