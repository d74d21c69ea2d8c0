package books

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shishobooks/bookshelf/pkg/binder"
)

type handler struct {
	bookService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListBooksQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	books, err := h.bookService.ListBooks(ctx, ListBooksOptions{
		Sort:  params.Sort,
		Order: params.Order,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]interface{}{"books": books}))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	book, err := h.bookService.RetrieveBook(ctx, c.Param("isbn"))
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]interface{}{"book": book}))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	payload, err := binder.BindPayload(c)
	if err != nil {
		return errors.WithStack(err)
	}

	book, err := h.bookService.CreateBook(ctx, payload)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, map[string]interface{}{"book": book}))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	payload, err := binder.BindPayload(c)
	if err != nil {
		return errors.WithStack(err)
	}

	book, err := h.bookService.UpdateBook(ctx, c.Param("isbn"), payload)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]interface{}{"book": book}))
}

func (h *handler) deleteBook(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.bookService.DeleteBook(ctx, c.Param("isbn")); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]interface{}{"message": "Book deleted"}))
}
