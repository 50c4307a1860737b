package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/promptgate/promptgate/pkg/domain/session"
	"gorm.io/gorm"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) session.Repository {
	return &SessionRepository{
		db: db,
	}
}

func (r *SessionRepository) Save(ctx context.Context, entity *session.Session) error {
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	entity := new(session.Session)
	if err := r.db.WithContext(ctx).First(entity, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, session.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch session: %w", err)
	}
	return entity, nil
}

// MarkRevoked is idempotent: revoking an already revoked session succeeds.
func (r *SessionRepository) MarkRevoked(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&session.Session{}).
		Where("id = ?", id).
		Update("revoked", true)
	if res.Error != nil {
		return fmt.Errorf("failed to revoke session: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return session.ErrNotFound
	}
	return nil
}

func (r *SessionRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at < ?", cutoff).
		Delete(&session.Session{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to prune expired sessions: %w", res.Error)
	}
	return res.RowsAffected, nil
}
