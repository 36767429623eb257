package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/billbuster/billbuster/internal/models"
	"github.com/billbuster/billbuster/internal/storage"
)

const reminderColumns = "id, group_id, recipient_id, requester_id, amount, message, status, last_error, created_at"

// CreateReminder persists a new reminder.
func (s *SQLiteStore) CreateReminder(ctx context.Context, reminder *models.Reminder) error {
	if reminder.ID == "" {
		reminder.ID = uuid.New().String()
	}
	if reminder.CreatedAt == 0 {
		reminder.CreatedAt = time.Now().Unix()
	}
	if reminder.Status == "" {
		reminder.Status = models.ReminderPending
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reminders (`+reminderColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		reminder.ID, reminder.GroupID, reminder.RecipientID, reminder.RequesterID,
		reminder.Amount.StringFixed(2), reminder.Message, string(reminder.Status),
		reminder.LastError, reminder.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reminder: %w", err)
	}
	return nil
}

// GetReminder retrieves a reminder by ID.
func (s *SQLiteStore) GetReminder(ctx context.Context, reminderID string) (*models.Reminder, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+reminderColumns+" FROM reminders WHERE id = ?",
		reminderID,
	)
	reminder, err := scanReminder(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("reminder %s: %w", reminderID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}
	return reminder, nil
}

// UpdateReminderStatus transitions a reminder guarded by the expected
// current status, so concurrent updates can never regress a lifecycle.
func (s *SQLiteStore) UpdateReminderStatus(ctx context.Context, reminderID string, expected, next models.ReminderStatus, lastError string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE reminders SET status = ?, last_error = ? WHERE id = ? AND status = ?",
		string(next), lastError, reminderID, string(expected),
	)
	if err != nil {
		return fmt.Errorf("failed to update reminder status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		// Distinguish a missing row from a lost race.
		var exists int
		err := s.db.QueryRowContext(ctx, "SELECT 1 FROM reminders WHERE id = ?", reminderID).Scan(&exists)
		if err == sql.ErrNoRows {
			return fmt.Errorf("reminder %s: %w", reminderID, storage.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to check reminder existence: %w", err)
		}
		return fmt.Errorf("reminder %s: %w", reminderID, storage.ErrStatusConflict)
	}
	return nil
}

// ListRemindersByGroupStatus retrieves the group's reminders, optionally
// filtered to the given statuses, newest first.
func (s *SQLiteStore) ListRemindersByGroupStatus(ctx context.Context, groupID string, statuses ...models.ReminderStatus) ([]*models.Reminder, error) {
	query := "SELECT " + reminderColumns + " FROM reminders WHERE group_id = ?"
	args := []interface{}{groupID}
	if len(statuses) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(statuses)), ",")
		query += " AND status IN (" + placeholders + ")"
		for _, status := range statuses {
			args = append(args, string(status))
		}
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	defer rows.Close()

	var reminders []*models.Reminder
	for rows.Next() {
		reminder, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, reminder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reminders: %w", err)
	}
	return reminders, nil
}

// FindActiveReminder returns the unacknowledged (pending or sent) reminder
// for the debt tuple, or storage.ErrNotFound.
func (s *SQLiteStore) FindActiveReminder(ctx context.Context, groupID, recipientID, requesterID string) (*models.Reminder, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+reminderColumns+` FROM reminders
		 WHERE group_id = ? AND recipient_id = ? AND requester_id = ? AND status IN (?, ?)
		 ORDER BY created_at DESC LIMIT 1`,
		groupID, recipientID, requesterID,
		string(models.ReminderPending), string(models.ReminderSent),
	)
	reminder, err := scanReminder(row)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find active reminder: %w", err)
	}
	return reminder, nil
}

// scanTarget is satisfied by both *sql.Row and *sql.Rows.
type scanTarget interface {
	Scan(dest ...interface{}) error
}

func scanReminder(row scanTarget) (*models.Reminder, error) {
	reminder := &models.Reminder{}
	var amountStr, status string
	if err := row.Scan(&reminder.ID, &reminder.GroupID, &reminder.RecipientID, &reminder.RequesterID,
		&amountStr, &reminder.Message, &status, &reminder.LastError, &reminder.CreatedAt); err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("malformed amount: %w", err)
	}
	reminder.Amount = amount
	reminder.Status = models.ReminderStatus(status)
	return reminder, nil
}
