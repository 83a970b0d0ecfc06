package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	BookStatusPublished = "published"

	// PlaceholderBookTitle is used when a source file has no bibliographic table.
	PlaceholderBookTitle = "كتاب بدون عنوان"
)

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID          int        `bun:",pk,autoincrement" json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Title       string     `bun:",nullzero" json:"title"`
	Slug        string     `bun:",nullzero" json:"slug"`
	Description string     `bun:",nullzero" json:"description,omitempty"`
	ShamelaID   *string    `bun:"shamela_id" json:"shamela_id,omitempty"`
	AuthorID    int        `bun:",nullzero" json:"author_id"`
	Author      *Author    `bun:"rel:belongs-to,join:author_id=id" json:"author,omitempty"`
	PublisherID int        `bun:",nullzero" json:"publisher_id"`
	Publisher   *Publisher `bun:"rel:belongs-to,join:publisher_id=id" json:"publisher,omitempty"`
	Status      string     `bun:",nullzero" json:"status"`
	PageCount   int        `json:"page_count"`
	Volumes     []*Volume  `bun:"rel:has-many,join:id=book_id" json:"volumes,omitempty"`
	Chapters    []*Chapter `bun:"rel:has-many,join:id=book_id" json:"chapters,omitempty"`
}
