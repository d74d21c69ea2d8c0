package books

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes mounts the book endpoints under /books.
func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	RegisterRoutesWithGroup(e.Group("/books"), db)
}

// RegisterRoutesWithGroup registers book routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) {
	bookService := NewService(db)

	h := &handler{
		bookService: bookService,
	}

	g.GET("", h.list)
	g.GET("/:isbn", h.retrieve)
	g.POST("", h.create)
	g.PUT("/:isbn", h.update)
	g.DELETE("/:isbn", h.deleteBook)
}
