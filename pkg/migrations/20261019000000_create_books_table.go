package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`
			CREATE TABLE books (
				isbn TEXT PRIMARY KEY,
				amazon_url TEXT NOT NULL,
				author TEXT NOT NULL,
				language TEXT NOT NULL,
				pages INTEGER NOT NULL,
				publisher TEXT NOT NULL,
				title TEXT NOT NULL,
				year INTEGER NOT NULL
			)
		`)
		if err != nil {
			return errors.WithStack(err)
		}

		// The list endpoint orders by title by default.
		_, err = db.Exec(`CREATE INDEX ix_books_title ON books(title)`)
		return errors.WithStack(err)
	}

	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`DROP INDEX IF EXISTS ix_books_title`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`DROP TABLE IF EXISTS books`)
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
