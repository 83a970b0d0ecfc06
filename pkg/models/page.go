package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Page is keyed by internal_index, the content row id from the source file.
// That id is what chapter intervals are expressed in, so it has to stay
// unique across the whole destination; the runtime schema pass makes it the
// primary key on installs that predate it.
type Page struct {
	bun.BaseModel `bun:"table:pages,alias:p"`

	InternalIndex int       `bun:"internal_index,pk" json:"internal_index"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	BookID        int       `bun:",notnull" json:"book_id"`
	ChapterID     *int      `json:"chapter_id"`
	PageNumber    int       `bun:",notnull" json:"page_number"`
	Content       string    `json:"content"`
	ContentHTML   string    `bun:"content_html" json:"content_html,omitempty"`
	Part          *int      `json:"part,omitempty"`
}
