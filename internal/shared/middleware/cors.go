package middleware

import (
	"net/http"
	"net/url"
	"strings"
)

// CORS applies Cross-Origin Resource Sharing headers and preflight handling.
//
// With an empty allowedHosts list every origin is accepted and
// Access-Control-Allow-Origin is set to "*". With a non-empty list the
// request origin must match one of the hosts (port optional); matching
// origins are echoed back with credentials enabled, others get 403.
//
// OPTIONS preflight requests are answered directly with 200 and an empty
// body without calling the next handler.
//
// Provider OAuth callbacks under /api/oauth/ are reached by browser
// redirects from the provider, so origin checks are skipped for them.
func CORS(allowedHosts []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			switch {
			case strings.HasPrefix(r.URL.Path, "/api/oauth/"):
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case len(allowedHosts) == 0:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case origin == "":
				// Non-browser client, nothing to enforce
			case isOriginAllowed(origin, allowedHosts):
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Add("Vary", "Origin")
			default:
				http.Error(w, "Origin not allowed", http.StatusForbidden)
				return
			}

			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "3600")

			// Preflight requests get an empty 200 response
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// isOriginAllowed reports whether the Origin header value matches one of
// the configured hosts. Hosts may be listed with or without a port; a
// host listed without a port matches any port.
func isOriginAllowed(origin string, allowedHosts []string) bool {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}

	originHost := strings.ToLower(u.Host)
	originHostname := strings.ToLower(u.Hostname())

	for _, allowed := range allowedHosts {
		allowed = strings.ToLower(strings.TrimSpace(allowed))
		if allowed == "" {
			continue
		}
		if allowed == originHost {
			return true
		}
		if !strings.Contains(allowed, ":") && allowed == originHostname {
			return true
		}
	}

	return false
}
