package books

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/segmentio/encoding/json"
	"github.com/shishobooks/bookshelf/pkg/binder"
	"github.com/shishobooks/bookshelf/pkg/errcodes"
	"github.com/shishobooks/bookshelf/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const powerUpJSON = `{
	"isbn": "0691161518",
	"amazon_url": "http://a.co/eobPtX2",
	"author": "Matthew Lane",
	"language": "english",
	"pages": 264,
	"publisher": "Princeton University Press",
	"title": "Power-Up: Unlocking the Hidden Mathematics in Video Games",
	"year": 2016
}`

func newBooksTestContext(t *testing.T, method, target, payload string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	req := httptest.NewRequest(method, target, strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rr := httptest.NewRecorder()
	return e.NewContext(req, rr), rr
}

func withISBN(c echo.Context, isbn string) echo.Context {
	c.SetPath("/books/:isbn")
	c.SetParamNames("isbn")
	c.SetParamValues(isbn)
	return c
}

func decodeBook(t *testing.T, rr *httptest.ResponseRecorder) *models.Book {
	t.Helper()
	var resp struct {
		Book *models.Book `json:"book"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp.Book)
	return resp.Book
}

func TestHandlerCreate(t *testing.T) {
	t.Parallel()
	h := &handler{bookService: NewService(setupTestDB(t))}

	c, rr := newBooksTestContext(t, http.MethodPost, "/books", powerUpJSON)
	err := h.create(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rr.Code)

	book := decodeBook(t, rr)
	assert.Equal(t, "0691161518", book.ISBN)
	assert.Equal(t, 2016, book.Year)
}

func TestHandlerCreate_Invalid(t *testing.T) {
	t.Parallel()
	h := &handler{bookService: NewService(setupTestDB(t))}

	cases := []struct {
		name    string
		payload string
		code    string
	}{
		{"missing title", strings.Replace(powerUpJSON, `"title"`, `"subtitle"`, 1), "validation_failed"},
		{"wrong type", strings.Replace(powerUpJSON, `"pages": 264`, `"pages": "264"`, 1), "validation_failed"},
		{"malformed", `{"isbn": `, "malformed_payload"},
		{"empty", "", "empty_request_body"},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newBooksTestContext(t, http.MethodPost, "/books", tt.payload)
			err := h.create(c)

			var codeErr *errcodes.Error
			require.ErrorAs(t, err, &codeErr)
			assert.Equal(t, http.StatusBadRequest, codeErr.HTTPCode)
			assert.Equal(t, tt.code, codeErr.Code)
		})
	}
}

func TestHandlerRetrieve(t *testing.T) {
	t.Parallel()
	h := &handler{bookService: NewService(setupTestDB(t))}

	c, _ := newBooksTestContext(t, http.MethodPost, "/books", powerUpJSON)
	require.NoError(t, h.create(c))

	c, rr := newBooksTestContext(t, http.MethodGet, "/books/0691161518", "")
	err := h.retrieve(withISBN(c, "0691161518"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Matthew Lane", decodeBook(t, rr).Author)

	c, _ = newBooksTestContext(t, http.MethodGet, "/books/missing", "")
	err = h.retrieve(withISBN(c, "missing"))
	assert.ErrorIs(t, err, errcodes.NotFound("Book"))
}

func TestHandlerList(t *testing.T) {
	t.Parallel()
	h := &handler{bookService: NewService(setupTestDB(t))}

	c, rr := newBooksTestContext(t, http.MethodGet, "/books", "")
	require.NoError(t, h.list(c))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"books":[]}`, rr.Body.String())

	c, _ = newBooksTestContext(t, http.MethodPost, "/books", powerUpJSON)
	require.NoError(t, h.create(c))

	c, rr = newBooksTestContext(t, http.MethodGet, "/books?sort=year&order=desc", "")
	require.NoError(t, h.list(c))

	var resp struct {
		Books []*models.Book `json:"books"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Books, 1)
	assert.Equal(t, "0691161518", resp.Books[0].ISBN)

	c, _ = newBooksTestContext(t, http.MethodGet, "/books?sort=pages", "")
	err := h.list(c)
	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, "validation_error", codeErr.Code)
}

func TestHandlerUpdate(t *testing.T) {
	t.Parallel()
	h := &handler{bookService: NewService(setupTestDB(t))}

	c, _ := newBooksTestContext(t, http.MethodPost, "/books", powerUpJSON)
	require.NoError(t, h.create(c))

	payload := strings.Replace(powerUpJSON, `"Matthew Lane"`, `"Moose"`, 1)
	c, rr := newBooksTestContext(t, http.MethodPut, "/books/0691161518", payload)
	err := h.update(withISBN(c, "0691161518"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Moose", decodeBook(t, rr).Author)

	c, _ = newBooksTestContext(t, http.MethodPut, "/books/missing", payload)
	err = h.update(withISBN(c, "missing"))
	assert.ErrorIs(t, err, errcodes.NotFound("Book"))
}

func TestHandlerDelete(t *testing.T) {
	t.Parallel()
	h := &handler{bookService: NewService(setupTestDB(t))}

	c, _ := newBooksTestContext(t, http.MethodPost, "/books", powerUpJSON)
	require.NoError(t, h.create(c))

	c, rr := newBooksTestContext(t, http.MethodDelete, "/books/0691161518", "")
	err := h.deleteBook(withISBN(c, "0691161518"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Book deleted"}`, rr.Body.String())

	c, _ = newBooksTestContext(t, http.MethodDelete, "/books/0691161518", "")
	err = h.deleteBook(withISBN(c, "0691161518"))
	assert.ErrorIs(t, err, errcodes.NotFound("Book"))
}
