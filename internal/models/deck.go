package models

import (
	"time"

	"github.com/google/uuid"
)

type Deck struct {
	ID          uuid.UUID `json:"id"`
	AuthorID    uuid.UUID `json:"author_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CardCount   int       `json:"card_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateDeckRequest struct {
	Title       string      `json:"title" validate:"required,max=255"`
	Description string      `json:"description"`
	CardIDs     []uuid.UUID `json:"card_ids"`
}

type AddCardRequest struct {
	CardID uuid.UUID `json:"card_id" validate:"required"`
}
