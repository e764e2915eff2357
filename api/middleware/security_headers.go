package middleware

import "net/http"

// SecurityHeadersConfig configures the headers SecurityHeaders sets,
// adapted from the teacher's SecurityHeadersConfig.
type SecurityHeadersConfig struct {
	ContentSecurityPolicy   string
	StrictTransportSecurity string
	ReferrerPolicy          string
	EnableHSTS              bool
}

// DefaultSecurityHeadersConfig is a conservative default suitable for a
// JSON-only API with no embedded UI beyond the swagger mount.
func DefaultSecurityHeadersConfig() SecurityHeadersConfig {
	return SecurityHeadersConfig{
		ContentSecurityPolicy:   "default-src 'none'",
		StrictTransportSecurity: "max-age=31536000; includeSubDomains",
		ReferrerPolicy:          "strict-origin-when-cross-origin",
		EnableHSTS:              true,
	}
}

// SecurityHeaders sets the headers config describes on every response
// and strips server-identifying headers afterward.
func SecurityHeaders(config SecurityHeadersConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")

			if config.ContentSecurityPolicy != "" {
				w.Header().Set("Content-Security-Policy", config.ContentSecurityPolicy)
			}
			if config.EnableHSTS && r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", config.StrictTransportSecurity)
			}
			if config.ReferrerPolicy != "" {
				w.Header().Set("Referrer-Policy", config.ReferrerPolicy)
			}

			next.ServeHTTP(w, r)

			w.Header().Del("Server")
			w.Header().Del("X-Powered-By")
		})
	}
}
