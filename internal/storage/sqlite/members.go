package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/billbuster/billbuster/internal/models"
	"github.com/billbuster/billbuster/internal/storage"
)

// UpsertMember creates or updates a member profile. The ID comes from the
// identity provider, so there is nothing to generate here.
func (s *SQLiteStore) UpsertMember(ctx context.Context, member *models.Member) error {
	if member.UpdatedAt == 0 {
		member.UpdatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO members (id, name, device_token, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, device_token = excluded.device_token, updated_at = excluded.updated_at`,
		member.ID, member.Name, member.DeviceToken, member.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert member: %w", err)
	}
	return nil
}

// GetMember retrieves a member profile by ID.
func (s *SQLiteStore) GetMember(ctx context.Context, memberID string) (*models.Member, error) {
	member := &models.Member{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, device_token, updated_at FROM members WHERE id = ?",
		memberID,
	).Scan(&member.ID, &member.Name, &member.DeviceToken, &member.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("member %s: %w", memberID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return member, nil
}
