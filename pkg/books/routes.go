package books

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	bookService := NewService(db)

	h := &handler{
		bookService: bookService,
	}

	g := e.Group("/books")
	g.GET("", h.list)
	g.GET("/:id", h.retrieve)
	g.GET("/:id/pages", h.listPages)
}
