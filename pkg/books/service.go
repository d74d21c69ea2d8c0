package books

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/bookshelf/pkg/database"
	"github.com/shishobooks/bookshelf/pkg/errcodes"
	"github.com/shishobooks/bookshelf/pkg/models"
	"github.com/uptrace/bun"
)

// ErrDuplicateISBN is returned when a create collides with an existing isbn.
// It isn't an errcodes error, so it surfaces as a 500.
var ErrDuplicateISBN = errors.New("book with this isbn already exists")

var sortColumns = map[string]string{
	"title":  "b.title",
	"isbn":   "b.isbn",
	"author": "b.author",
	"year":   "b.year",
}

type ListBooksOptions struct {
	// Sort is one of title, isbn, author or year. Defaults to title.
	Sort string
	// Order is asc or desc. Defaults to asc.
	Order string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) ListBooks(ctx context.Context, opts ListBooksOptions) ([]*models.Book, error) {
	books := []*models.Book{}

	column, ok := sortColumns[opts.Sort]
	if !ok {
		column = sortColumns["title"]
	}
	direction := "ASC"
	if opts.Order == "desc" {
		direction = "DESC"
	}

	q := svc.db.
		NewSelect().
		Model(&books).
		Order(column + " " + direction)
	if column != sortColumns["isbn"] {
		q = q.Order("b.isbn ASC")
	}

	err := q.Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if books == nil {
		books = []*models.Book{}
	}

	return books, nil
}

func (svc *Service) RetrieveBook(ctx context.Context, isbn string) (*models.Book, error) {
	book := &models.Book{}

	err := svc.db.
		NewSelect().
		Model(book).
		Where("b.isbn = ?", isbn).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	return book, nil
}

// CreateBook validates the payload and inserts it as a new book.
func (svc *Service) CreateBook(ctx context.Context, payload map[string]interface{}) (*models.Book, error) {
	if msgs := ValidateBookPayload(payload); len(msgs) > 0 {
		return nil, errcodes.ValidationFailed(msgs)
	}

	book, err := bookFromPayload(payload)
	if err != nil {
		return nil, err
	}

	_, err = svc.db.
		NewInsert().
		Model(book).
		Returning("*").
		Exec(ctx)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, errors.Wrapf(ErrDuplicateISBN, "isbn %q", book.ISBN)
		}
		return nil, errors.WithStack(err)
	}

	logger.FromContext(ctx).Info("book created", logger.Data{"isbn": book.ISBN})

	return book, nil
}

// UpdateBook replaces every column of the book stored under isbn. The isbn in
// the payload must be present but is otherwise ignored.
func (svc *Service) UpdateBook(ctx context.Context, isbn string, payload map[string]interface{}) (*models.Book, error) {
	if msgs := ValidateBookPayload(payload); len(msgs) > 0 {
		return nil, errcodes.ValidationFailed(msgs)
	}

	book, err := bookFromPayload(payload)
	if err != nil {
		return nil, err
	}
	book.ISBN = isbn

	res, err := svc.db.
		NewUpdate().
		Model(book).
		Column(models.BookColumns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("book updated", logger.Data{"isbn": isbn})

	return book, nil
}

func (svc *Service) DeleteBook(ctx context.Context, isbn string) error {
	res, err := svc.db.
		NewDelete().
		Model((*models.Book)(nil)).
		Where("isbn = ?", isbn).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}

	logger.FromContext(ctx).Info("book deleted", logger.Data{"isbn": isbn})

	return nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.WithStack(err)
	}
	if n == 0 {
		return errcodes.NotFound("Book")
	}
	return nil
}
