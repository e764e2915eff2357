package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func authHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_DisabledPassesThrough(t *testing.T) {
	handler := AuthMiddleware(AuthConfig{Enabled: false})(authHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/namespaces/ns/molds/app", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddleware_RejectsMissingHeader(t *testing.T) {
	config := AuthConfig{Enabled: true, APIKeys: map[string]Principal{"k1": {Name: "ci", Role: RoleOperator}}}
	handler := AuthMiddleware(config)(authHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/namespaces/ns/molds/app", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_RejectsUnknownKey(t *testing.T) {
	config := AuthConfig{Enabled: true, APIKeys: map[string]Principal{"k1": {Name: "ci", Role: RoleOperator}}}
	handler := AuthMiddleware(config)(authHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/namespaces/ns/molds/app", nil)
	req.Header.Set(AuthorizationHeader, "ApiKey wrong")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_AcceptsKnownKey(t *testing.T) {
	config := AuthConfig{Enabled: true, APIKeys: map[string]Principal{"k1": {Name: "ci", Role: RoleOperator}}}
	handler := AuthMiddleware(config)(authHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/namespaces/ns/molds/app", nil)
	req.Header.Set(AuthorizationHeader, "ApiKey k1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole_RejectsInsufficientRole(t *testing.T) {
	config := AuthConfig{Enabled: true, APIKeys: map[string]Principal{"k1": {Name: "dash", Role: RoleViewer}}}
	handler := AuthMiddleware(config)(RequireRole(RoleOperator)(authHandler()))

	req := httptest.NewRequest(http.MethodPut, "/v1/namespaces/ns/molds/app", nil)
	req.Header.Set(AuthorizationHeader, "ApiKey k1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRole_AllowsSufficientRole(t *testing.T) {
	config := AuthConfig{Enabled: true, APIKeys: map[string]Principal{"k1": {Name: "ci", Role: RoleOperator}}}
	handler := AuthMiddleware(config)(RequireRole(RoleOperator)(authHandler()))

	req := httptest.NewRequest(http.MethodPut, "/v1/namespaces/ns/molds/app", nil)
	req.Header.Set(AuthorizationHeader, "ApiKey k1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
