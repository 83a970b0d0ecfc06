package books

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/warraqbooks/warraq/pkg/errcodes"
	"github.com/warraqbooks/warraq/pkg/models"
)

type handler struct {
	bookService *Service
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ListBooksQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	books, total, err := h.bookService.ListBooksWithTotal(ctx, ListBooksOptions{
		Limit:    &params.Limit,
		Offset:   &params.Offset,
		AuthorID: params.AuthorID,
		Search:   params.Search,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Books []*models.Book `json:"books"`
		Total int            `json:"total"`
	}{books, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) listPages(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	// Bind params.
	params := ListPagesQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	// 404 on unknown books rather than returning an empty page list.
	if _, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{ID: &id}); err != nil {
		return errors.WithStack(err)
	}

	pages, total, err := h.bookService.ListPages(ctx, id, params.Limit, params.Offset)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Pages []*models.Page `json:"pages"`
		Total int            `json:"total"`
	}{pages, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}
