package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"devshub-backend/internal/models"
)

type DeckRepo struct {
	pool *pgxpool.Pool
}

func NewDeckRepo(pool *pgxpool.Pool) *DeckRepo {
	return &DeckRepo{pool: pool}
}

func (r *DeckRepo) Create(ctx context.Context, d *models.Deck) error {
	d.ID = uuid.New()
	query := `INSERT INTO decks (id, author_id, title, description)
		VALUES ($1, $2, $3, $4) RETURNING created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		d.ID, d.AuthorID, d.Title, d.Description,
	).Scan(&d.CreatedAt, &d.UpdatedAt)
}

func (r *DeckRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Deck, error) {
	d := &models.Deck{}
	query := `SELECT d.id, d.author_id, d.title, d.description,
			(SELECT COUNT(*) FROM deck_cards dc WHERE dc.deck_id = d.id),
			d.created_at, d.updated_at
		FROM decks d WHERE d.id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.AuthorID, &d.Title, &d.Description, &d.CardCount, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *DeckRepo) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*models.Deck, error) {
	query := `SELECT d.id, d.author_id, d.title, d.description,
			(SELECT COUNT(*) FROM deck_cards dc WHERE dc.deck_id = d.id),
			d.created_at, d.updated_at
		FROM decks d WHERE d.author_id = $1 ORDER BY d.created_at DESC`

	rows, err := r.pool.Query(ctx, query, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var decks []*models.Deck
	for rows.Next() {
		d := &models.Deck{}
		err := rows.Scan(&d.ID, &d.AuthorID, &d.Title, &d.Description, &d.CardCount, &d.CreatedAt, &d.UpdatedAt)
		if err != nil {
			return nil, err
		}
		decks = append(decks, d)
	}
	return decks, rows.Err()
}

func (r *DeckRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM decks WHERE id = $1", id)
	return err
}

// AddCard puts an existing card into the deck. Adding a card twice is a no-op.
func (r *DeckRepo) AddCard(ctx context.Context, deckID, cardID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO deck_cards (deck_id, card_id) VALUES ($1, $2)
		ON CONFLICT (deck_id, card_id) DO NOTHING
	`, deckID, cardID)
	return err
}

func (r *DeckRepo) RemoveCard(ctx context.Context, deckID, cardID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		"DELETE FROM deck_cards WHERE deck_id = $1 AND card_id = $2",
		deckID, cardID,
	)
	return err
}

// GetCards returns all cards currently belonging to the deck.
func (r *DeckRepo) GetCards(ctx context.Context, deckID uuid.UUID) ([]models.Card, error) {
	query := `SELECT c.id, c.author_id, c.question, c.answer, c.created_at, c.updated_at
		FROM cards c
		JOIN deck_cards dc ON dc.card_id = c.id
		WHERE dc.deck_id = $1
		ORDER BY c.created_at`

	rows, err := r.pool.Query(ctx, query, deckID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []models.Card
	for rows.Next() {
		c := models.Card{}
		if err := rows.Scan(&c.ID, &c.AuthorID, &c.Question, &c.Answer, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}
