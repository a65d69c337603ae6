package paas

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func RegisterDocs(r *gin.Engine) {
	r.GET("/docs", func(c *gin.Context) {
		c.Header("Content-Type", "text/markdown; charset=utf-8")
		c.String(http.StatusOK, `# Accrual Service

Runs the daily investment accrual on a cron schedule and exposes an admin API.

## Auth

All /api/* routes require an admin bearer token (HS256 JWT, role "admin").
Health endpoints are public.

## Routes

- GET /healthz
- GET /readyz
- GET /swagger/index.html
- POST /api/v1/jobs/daily-investment/run
- GET /api/v1/jobs/runs
- GET /api/v1/jobs/runs/:id
- GET /api/v1/system-settings
- GET /api/v1/system-settings/switches
- PUT /api/v1/system-settings/switches/:key
`)
	})
}
