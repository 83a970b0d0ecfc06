package models

import (
	"time"

	"github.com/uptrace/bun"
)

// PlaceholderAuthorName is used when a source file carries no author value.
const PlaceholderAuthorName = "مؤلف غير معروف"

type Author struct {
	bun.BaseModel `bun:"table:authors,alias:a"`

	ID        int       `bun:",pk,autoincrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	FullName  string    `bun:"full_name,nullzero" json:"full_name"`
}
