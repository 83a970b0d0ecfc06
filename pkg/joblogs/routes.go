package joblogs

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers job-log routes.
func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	h := &handler{service: NewService(db)}

	e.GET("/jobs/:id/logs", h.list)
}
