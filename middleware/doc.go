// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /elections", middleware.WithLogging(handler))

Logs completion with method, path, status, duration_ms and a humanized
response size. Requests slower than SlowRequestThreshold are logged at warn.

# Sessions

An Authenticator verifies the session token (Authorization: Bearer, or the
HttpOnly "session" cookie) and reloads its user from the store:

	authn := middleware.NewAuthenticator(tokens, store, cfg.CookieSecure)
	mux.HandleFunc("GET /auth/me", authn.RequireAuth(handler))
	mux.HandleFunc("GET /users", authn.RequireAdmin(handler))

Inside a gated handler:

	user, _ := middleware.UserFrom(r.Context())
	p, _ := middleware.PrincipalFrom(r.Context())

RequireAuth answers 401 without a valid session; RequireAdmin also answers
403 for non-admins.

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows methods GET, POST, PATCH, DELETE, OPTIONS with headers
Content-Type and Authorization, with credentials.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")
	middleware.InternalError(w, "failed to load election", err)

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Used for the hashed address on login audit entries.
*/
package middleware
