package middleware

import (
	"net/http"
	"strings"
)

// MethodOverrideField is the query parameter HTML forms use to send PATCH
// and DELETE through a POST, as in action="/users/alice?_method=PATCH".
const MethodOverrideField = "_method"

var overridableMethods = map[string]struct{}{
	http.MethodPut:    {},
	http.MethodPatch:  {},
	http.MethodDelete: {},
}

// MethodOverride rewrites a POST carrying ?_method before routing happens.
// Only the query is read: the body is left for the handler, which parses
// it under its size limit.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			method := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get(MethodOverrideField)))
			if _, ok := overridableMethods[method]; ok {
				r.Method = method
			}
		}
		next.ServeHTTP(w, r)
	})
}
