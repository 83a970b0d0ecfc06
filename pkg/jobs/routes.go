package jobs

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers job routes.
func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	jobService := NewService(db)

	h := &handler{
		jobService: jobService,
	}

	g := e.Group("/jobs")
	g.GET("", h.list)
	g.GET("/:id", h.retrieve)
	g.POST("", h.create)
	g.POST("/:id/cancel", h.cancel)
}
