package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Volume struct {
	bun.BaseModel `bun:"table:volumes,alias:v"`

	ID        int       `bun:",pk,autoincrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	BookID    int       `bun:",notnull" json:"book_id"`
	Number    int       `bun:",notnull" json:"number"`
	Title     string    `bun:",nullzero" json:"title"`
}
