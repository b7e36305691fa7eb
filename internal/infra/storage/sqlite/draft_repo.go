package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"charsmith/internal/core/domain"
)

// DraftRepository is the data access layer for the draft library.
type DraftRepository struct {
	db *DB
}

// NewDraftRepository creates a new DraftRepository.
func NewDraftRepository(db *DB) *DraftRepository {
	return &DraftRepository{db: db}
}

// Save inserts a draft into the library.
func (r *DraftRepository) Save(ctx context.Context, draft *domain.Draft) error {
	if draft.ID == "" {
		draft.ID = uuid.NewString()
	}
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO drafts (id, seed, name, content, path, created_at)
		VALUES (:id, :seed, :name, :content, :path, :created_at)`,
		draft)
	if err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// GetByID returns one draft, or nil when absent.
func (r *DraftRepository) GetByID(ctx context.Context, id string) (*domain.Draft, error) {
	var draft domain.Draft
	err := r.db.GetContext(ctx, &draft,
		`SELECT id, seed, name, content, path, created_at FROM drafts WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	return &draft, nil
}

// List returns the newest drafts up to limit.
func (r *DraftRepository) List(ctx context.Context, limit int) ([]domain.Draft, error) {
	if limit <= 0 {
		limit = 20
	}
	var drafts []domain.Draft
	err := r.db.SelectContext(ctx, &drafts,
		`SELECT id, seed, name, content, path, created_at
		 FROM drafts ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	return drafts, nil
}

// Search runs a full-text query over seed, name and content, best
// matches first.
func (r *DraftRepository) Search(ctx context.Context, query string, limit int) ([]domain.Draft, error) {
	if limit <= 0 {
		limit = 20
	}
	var drafts []domain.Draft
	err := r.db.SelectContext(ctx, &drafts,
		`SELECT d.id, d.seed, d.name, d.content, d.path, d.created_at
		 FROM drafts d
		 JOIN drafts_fts f ON d.rowid = f.rowid
		 WHERE drafts_fts MATCH ?
		 ORDER BY rank
		 LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search drafts: %w", err)
	}
	return drafts, nil
}

// Delete removes a draft from the library.
func (r *DraftRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM drafts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("draft %s not found", id)
	}
	return nil
}
