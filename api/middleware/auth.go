package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/kspt-johs/disir-go/api/apierrors"
)

type contextKey string

const principalContextKey contextKey = "principal"

// AuthorizationHeader is the header carrying the API key.
const AuthorizationHeader = "Authorization"

// Role is a principal's permission level. Viewer can read Molds/Configs
// and watch verdicts; Operator can additionally write them. Unlike the
// teacher's three-tier hierarchy, disir-server has no operation that
// needs an admin tier above Operator, so that level is dropped.
type Role string

const (
	RoleViewer   Role = "viewer"
	RoleOperator Role = "operator"
)

var roleLevel = map[Role]int{RoleViewer: 1, RoleOperator: 2}

func (r Role) meets(required Role) bool {
	return roleLevel[r] >= roleLevel[required]
}

// Principal is the caller identified by an API key.
type Principal struct {
	Name string
	Role Role
}

// AuthConfig holds the static API-key table for AuthMiddleware. disir-
// server has no user store, so keys are operator-provisioned at
// startup rather than looked up from a database — adapted from the
// teacher's AuthConfig, dropping its JWT branch (the teacher's own
// validateJWT is an unimplemented placeholder; carrying it forward
// would wire a feature that does not exist).
type AuthConfig struct {
	APIKeys map[string]Principal
	Enabled bool
}

// AuthMiddleware validates the "Authorization: ApiKey <key>" header
// and attaches the resolved Principal to the request context.
func AuthMiddleware(config AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !config.Enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			header := r.Header.Get(AuthorizationHeader)
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || parts[0] != "ApiKey" {
				apierrors.Write(w, apierrors.New(apierrors.CodeAuthenticationError, "missing or malformed Authorization header").WithRequestID(requestID))
				return
			}

			principal, ok := config.APIKeys[parts[1]]
			if !ok {
				apierrors.Write(w, apierrors.New(apierrors.CodeAuthenticationError, "invalid API key").WithRequestID(requestID))
				return
			}

			ctx := context.WithValue(r.Context(), principalContextKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects requests from principals below the required
// Role with 403. When auth is disabled no Principal is ever attached
// to the context, so RequireRole must sit behind AuthMiddleware in the
// chain to have any effect.
func RequireRole(required Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			if !principal.Role.meets(required) {
				requestID := GetRequestID(r.Context())
				apierrors.Write(w, apierrors.New(apierrors.CodeAuthorizationError, "insufficient role for this operation").WithRequestID(requestID))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PrincipalFromContext returns the Principal AuthMiddleware attached
// to ctx, if auth is enabled and the request was authenticated.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(Principal)
	return principal, ok
}
