package handlers

import "net/http"

// HealthCheck reports process liveness. Deeper backend health (registry
// connection pool, cache reachability) is exposed separately through
// registry/postgres's HealthChecker and resolvercache's metrics rather
// than folded into this endpoint, so a slow dependency can't turn a
// liveness probe into a cascading restart loop.
//
// @Summary Liveness check
// @Tags Health
// @Router /healthz [get]
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
