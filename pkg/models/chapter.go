package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Chapter struct {
	bun.BaseModel `bun:"table:chapters,alias:ch"`

	ID        int       `bun:",pk,autoincrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	BookID    int       `bun:",notnull" json:"book_id"`
	VolumeID  int       `bun:",nullzero" json:"volume_id"`
	Title     string    `bun:",nullzero" json:"title"`
	Level     int       `bun:",notnull" json:"level"`

	// PageStart/PageEnd hold source-id interval bounds at insert time and are
	// overwritten with sequential page numbers by the post-ingest refresh.
	PageStart int `json:"page_start"`
	PageEnd   int `json:"page_end"`
	Order     int `bun:"order,notnull" json:"order"`

	// The original source-id interval, kept so pages remain resolvable to
	// chapters after the refresh rewrites PageStart/PageEnd.
	InternalIndexStart int `bun:",nullzero" json:"internal_index_start,omitempty"`
	InternalIndexEnd   int `bun:",nullzero" json:"internal_index_end,omitempty"`
}
