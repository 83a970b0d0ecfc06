package models

import (
	"time"

	"github.com/uptrace/bun"
)

// PlaceholderPublisherName is used when a source file carries no publisher value.
const PlaceholderPublisherName = "ناشر غير معروف"

type Publisher struct {
	bun.BaseModel `bun:"table:publishers,alias:pub"`

	ID        int       `bun:",pk,autoincrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `bun:",nullzero" json:"name"`
}
