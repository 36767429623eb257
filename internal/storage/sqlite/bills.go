package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/billbuster/billbuster/internal/models"
	"github.com/billbuster/billbuster/internal/storage"
)

// CreateBill persists a new bill with its items and assignments in one
// transaction. The save is the commit point that freezes the bill.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = time.Now().Unix()
	}
	if bill.PayerID == "" {
		bill.PayerID = bill.CreatedBy
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertBill(ctx, tx, bill); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SupersedeBill atomically stamps the old bill version and inserts the
// replacement. History is never mutated in place.
func (s *SQLiteStore) SupersedeBill(ctx context.Context, oldID string, replacement *models.Bill) error {
	if replacement.ID == "" {
		replacement.ID = uuid.New().String()
	}
	if replacement.CreatedAt == 0 {
		replacement.CreatedAt = time.Now().Unix()
	}
	if replacement.PayerID == "" {
		replacement.PayerID = replacement.CreatedBy
	}
	replacement.Supersedes = oldID

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE bills SET superseded_at = ? WHERE id = ? AND superseded_at = 0",
		time.Now().Unix(), oldID,
	)
	if err != nil {
		return fmt.Errorf("failed to stamp superseded bill: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("bill %s: %w", oldID, storage.ErrNotFound)
	}

	if err := insertBill(ctx, tx, replacement); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertBill(ctx context.Context, tx *sql.Tx, bill *models.Bill) error {
	var supersedes interface{}
	if bill.Supersedes != "" {
		supersedes = bill.Supersedes
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO bills (id, group_id, payer_id, created_by, created_at, supersedes, superseded_at)
		 VALUES (?, ?, ?, ?, ?, ?, 0)`,
		bill.ID, bill.GroupID, bill.PayerID, bill.CreatedBy, bill.CreatedAt, supersedes,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}

	for i, item := range bill.Items {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO bill_items (bill_id, item_index, name, price) VALUES (?, ?, ?, ?)",
			bill.ID, i, item.Name, item.Price.StringFixed(2),
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}

		for _, member := range bill.Assignments[i].Assignees {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO item_assignments (bill_id, item_index, member_id) VALUES (?, ?, ?)",
				bill.ID, i, member,
			)
			if err != nil {
				return fmt.Errorf("failed to insert item assignment: %w", err)
			}
		}
	}
	return nil
}

// GetBill retrieves a bill by ID, including items and assignments.
func (s *SQLiteStore) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	bill := &models.Bill{}
	var supersedes sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, payer_id, created_by, created_at, supersedes, superseded_at
		 FROM bills WHERE id = ?`,
		billID,
	).Scan(&bill.ID, &bill.GroupID, &bill.PayerID, &bill.CreatedBy, &bill.CreatedAt, &supersedes, &bill.SupersededAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	if supersedes.Valid {
		bill.Supersedes = supersedes.String
	}

	if err := s.loadBillDetails(ctx, bill); err != nil {
		return nil, err
	}
	return bill, nil
}

// ListLiveBillsByGroup retrieves the group's non-superseded bills, oldest
// first.
func (s *SQLiteStore) ListLiveBillsByGroup(ctx context.Context, groupID string) ([]*models.Bill, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, payer_id, created_by, created_at, supersedes, superseded_at
		 FROM bills WHERE group_id = ? AND superseded_at = 0 ORDER BY created_at ASC, id ASC`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills by group: %w", err)
	}
	defer rows.Close()

	var bills []*models.Bill
	for rows.Next() {
		bill := &models.Bill{}
		var supersedes sql.NullString
		if err := rows.Scan(&bill.ID, &bill.GroupID, &bill.PayerID, &bill.CreatedBy, &bill.CreatedAt, &supersedes, &bill.SupersededAt); err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		if supersedes.Valid {
			bill.Supersedes = supersedes.String
		}
		bills = append(bills, bill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}

	for _, bill := range bills {
		if err := s.loadBillDetails(ctx, bill); err != nil {
			return nil, err
		}
	}
	return bills, nil
}

// loadBillDetails fills in items and assignments for a bill row.
func (s *SQLiteStore) loadBillDetails(ctx context.Context, bill *models.Bill) error {
	itemRows, err := s.db.QueryContext(ctx,
		"SELECT item_index, name, price FROM bill_items WHERE bill_id = ? ORDER BY item_index",
		bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var idx int
		var name, priceStr string
		if err := itemRows.Scan(&idx, &name, &priceStr); err != nil {
			return fmt.Errorf("failed to scan item: %w", err)
		}
		price, err := decimal.NewFromString(priceStr)
		if err != nil {
			return fmt.Errorf("malformed price for bill %s item %d: %w", bill.ID, idx, err)
		}
		bill.Items = append(bill.Items, models.LineItem{Name: name, Price: price})
	}
	if err := itemRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate items: %w", err)
	}

	assignRows, err := s.db.QueryContext(ctx,
		"SELECT item_index, member_id FROM item_assignments WHERE bill_id = ? ORDER BY item_index, member_id",
		bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get item assignments: %w", err)
	}
	defer assignRows.Close()

	bill.Assignments = make(map[int]models.Assignment)
	for assignRows.Next() {
		var idx int
		var member string
		if err := assignRows.Scan(&idx, &member); err != nil {
			return fmt.Errorf("failed to scan assignment: %w", err)
		}
		a := bill.Assignments[idx]
		a.ItemIndex = idx
		a.Assignees = append(a.Assignees, member)
		bill.Assignments[idx] = a
	}
	if err := assignRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate assignments: %w", err)
	}
	return nil
}
