package models

import "github.com/uptrace/bun"

// BookColumns lists the columns a full update replaces. The isbn is the key and
// never changes after insert.
var BookColumns = []string{"amazon_url", "author", "language", "pages", "publisher", "title", "year"}

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ISBN      string `bun:"isbn,pk" json:"isbn"`
	AmazonURL string `bun:"amazon_url,notnull" json:"amazon_url"`
	Author    string `bun:"author,notnull" json:"author"`
	Language  string `bun:"language,notnull" json:"language"`
	Pages     int    `bun:"pages,notnull" json:"pages"`
	Publisher string `bun:"publisher,notnull" json:"publisher"`
	Title     string `bun:"title,notnull" json:"title"`
	Year      int    `bun:"year,notnull" json:"year"`
}
