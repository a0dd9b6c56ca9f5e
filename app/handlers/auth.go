// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"net/http"
	"strings"

	"github.com/go-obvious/server/request"
)

// exemptPaths never require auth, matching spec §6.2's exempt set minus the
// OpenAPI UI paths this rewrite doesn't serve (no /docs, /redoc,
// /openapi.json are exposed, so there is nothing at those names to exempt).
var exemptPaths = map[string]bool{
	"/health":  true,
	"/ready":   true,
	"/metrics": true,
}

// AuthMiddleware enforces the shared bearer/API-key check (spec §6.2): a
// blank key disables the check entirely, matching
// config/server.Settings.Server.AuthKey's documented behavior.
func AuthMiddleware(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if key == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if exemptPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			if !authorized(r, key) {
				request.Reply(r, w, map[string]string{"error": "unauthorized"}, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func authorized(r *http.Request, key string) bool {
	if got := r.Header.Get("X-API-Key"); got != "" {
		return got == key
	}
	auth := r.Header.Get("Authorization")
	if bearer, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return bearer == key
	}
	return false
}
