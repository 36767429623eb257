package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/billbuster/billbuster/internal/ledger"
	"github.com/billbuster/billbuster/internal/models"
	"github.com/billbuster/billbuster/internal/notify"
	"github.com/billbuster/billbuster/internal/reminder"
	"github.com/billbuster/billbuster/internal/storage/sqlite"
)

type fakeQueue struct{ enqueued []string }

func (q *fakeQueue) EnqueueReminderDispatch(_ context.Context, reminderID string) error {
	q.enqueued = append(q.enqueued, reminderID)
	return nil
}

type fakeSender struct{ sent []notify.Message }

func (s *fakeSender) Send(_ context.Context, msg notify.Message) error {
	s.sent = append(s.sent, msg)
	return nil
}

func newGroupService(t *testing.T) (*GroupService, *reminder.Workflow, *sqlite.SQLiteStore) {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cache := ledger.NewCache(nil, 0)
	workflow := reminder.NewWorkflow(store, &fakeQueue{}, &fakeSender{}, nil)
	return NewGroupService(store, cache, workflow, nil), workflow, store
}

func TestCreateGroupDeduplicatesMembers(t *testing.T) {
	svc, _, _ := newGroupService(t)

	group, err := svc.CreateGroup(context.Background(), "ski trip", []string{"bob", "alice", "bob", ""}, "alice")
	if err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}
	if len(group.Members) != 2 {
		t.Fatalf("members = %v, want [alice bob]", group.Members)
	}
	if !group.HasMember("alice") || !group.HasMember("bob") {
		t.Errorf("members = %v, missing creator or bob", group.Members)
	}
}

func TestBalancesEndToEnd(t *testing.T) {
	svc, _, store := newGroupService(t)
	ctx := context.Background()

	group, err := svc.CreateGroup(ctx, "apartment", []string{"bob", "carol"}, "alice")
	if err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}

	bill := &models.Bill{
		GroupID: group.ID,
		Items:   []models.LineItem{{Name: "Utilities", Price: dec("90.00")}},
		Assignments: map[int]models.Assignment{
			0: {ItemIndex: 0, Assignees: []string{"alice", "bob", "carol"}},
		},
		CreatedBy: "alice",
	}
	if err := store.CreateBill(ctx, bill); err != nil {
		t.Fatalf("create bill: %v", err)
	}

	balances, err := svc.Balances(ctx, group.ID, "bob")
	if err != nil {
		t.Fatalf("Balances() error = %v", err)
	}
	if !balances["alice"].Equal(dec("60.00")) {
		t.Errorf("alice balance = %s, want 60.00", balances["alice"])
	}
	if !balances["bob"].Equal(dec("-30.00")) {
		t.Errorf("bob balance = %s, want -30.00", balances["bob"])
	}

	if _, err := svc.Balances(ctx, group.ID, "mallory"); !errors.Is(err, ErrNotGroupMember) {
		t.Errorf("Balances() as outsider error = %v, want ErrNotGroupMember", err)
	}
}

func TestRecordSettlementValidation(t *testing.T) {
	svc, _, _ := newGroupService(t)
	ctx := context.Background()

	group, err := svc.CreateGroup(ctx, "apartment", []string{"bob"}, "alice")
	if err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}

	tests := []struct {
		name       string
		settlement *models.Settlement
		wantErr    error
	}{
		{
			name: "recorder outside the group",
			settlement: &models.Settlement{
				GroupID: group.ID, FromMemberID: "bob", ToMemberID: "alice",
				Amount: dec("5.00"), CreatedBy: "mallory",
			},
			wantErr: ErrNotGroupMember,
		},
		{
			name: "payer outside the group",
			settlement: &models.Settlement{
				GroupID: group.ID, FromMemberID: "mallory", ToMemberID: "alice",
				Amount: dec("5.00"), CreatedBy: "alice",
			},
			wantErr: ErrInvalidSettlement,
		},
		{
			name: "self settlement",
			settlement: &models.Settlement{
				GroupID: group.ID, FromMemberID: "alice", ToMemberID: "alice",
				Amount: dec("5.00"), CreatedBy: "alice",
			},
			wantErr: ErrInvalidSettlement,
		},
		{
			name: "non-positive amount",
			settlement: &models.Settlement{
				GroupID: group.ID, FromMemberID: "bob", ToMemberID: "alice",
				Amount: dec("0.00"), CreatedBy: "alice",
			},
			wantErr: ErrInvalidSettlement,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.RecordSettlement(ctx, tt.settlement); !errors.Is(err, tt.wantErr) {
				t.Errorf("RecordSettlement() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// Recording the settlement that zeroes a debt acknowledges the sent
// reminder for that debt without the recipient doing anything.
func TestRecordSettlementAcknowledgesReminders(t *testing.T) {
	svc, workflow, store := newGroupService(t)
	ctx := context.Background()

	group, err := svc.CreateGroup(ctx, "apartment", []string{"bob"}, "alice")
	if err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}

	bill := &models.Bill{
		GroupID: group.ID,
		Items:   []models.LineItem{{Name: "Rent", Price: dec("30.00")}},
		Assignments: map[int]models.Assignment{
			0: {ItemIndex: 0, Assignees: []string{"alice", "bob"}},
		},
		CreatedBy: "alice",
	}
	if err := store.CreateBill(ctx, bill); err != nil {
		t.Fatalf("create bill: %v", err)
	}
	if err := store.UpsertMember(ctx, &models.Member{ID: "bob", DeviceToken: "bob-device"}); err != nil {
		t.Fatalf("upsert member: %v", err)
	}

	created, err := workflow.Create(ctx, reminder.CreateRequest{
		GroupID: group.ID, RequesterID: "alice", RecipientID: "bob", Amount: dec("15.00"),
	})
	if err != nil {
		t.Fatalf("create reminder: %v", err)
	}
	if err := workflow.Dispatch(ctx, created.ID); err != nil {
		t.Fatalf("dispatch reminder: %v", err)
	}

	if err := svc.RecordSettlement(ctx, &models.Settlement{
		GroupID: group.ID, FromMemberID: "bob", ToMemberID: "alice",
		Amount: dec("15.00"), CreatedBy: "bob",
	}); err != nil {
		t.Fatalf("RecordSettlement() error = %v", err)
	}

	loaded, err := store.GetReminder(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetReminder() error = %v", err)
	}
	if loaded.Status != models.ReminderAcknowledged {
		t.Errorf("status = %s, want acknowledged", loaded.Status)
	}
}
