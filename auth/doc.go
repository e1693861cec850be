// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides password hashing, session tokens and the caller's
authorization context.

# Passwords

Passwords are stored as bcrypt hashes:

	hash, err := auth.HashPassword(password)
	err := auth.CheckPassword(user.PasswordHash, password) // ErrInvalidCredentials

# Session Tokens

Sessions are HS256 JWTs signed with the configured secret:

	issuer := auth.NewTokenIssuer(secret, 12*time.Hour)
	token, expires, err := issuer.Issue(user.ID)
	claims, err := issuer.Parse(token) // ErrInvalidToken

The subject is the user id and every token gets a random jti. Tokens hold no
role; the user is reloaded on each request so role changes and deletions
take effect immediately.

# Principal

Handlers pass a Principal (user id and role) to authorization checks:

	if !p.IsAdmin() { ... }

# IP Hashing

Login audit entries carry a keyed hash instead of the raw address:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
