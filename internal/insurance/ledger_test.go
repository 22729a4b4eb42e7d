package insurance

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

func newStubLedger(known ...string) (*Ledger, *fakeStore) {
	m := make(map[string]bool, len(known))
	for _, id := range known {
		m[id] = true
	}
	store := newFakeStore()
	l := NewLedger(store, stubResolver{known: m})
	l.now = fixedClock(testNow)
	return l, store
}

func TestAdd_Valid(t *testing.T) {
	t.Parallel()

	l, _ := newStubLedger("ph-1")
	c, err := l.Add(context.Background(), "ph-1", 1250.5, "windscreen", StatusApproved)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if c.ID == "" {
		t.Error("expected generated ID")
	}
	if c.PolicyholderID != "ph-1" || c.Amount != 1250.5 || c.Reason != "windscreen" || c.Status != StatusApproved {
		t.Errorf("unexpected claim %+v", *c)
	}
	if c.Date != "2026-03-15" {
		t.Errorf("Date = %q, want %q", c.Date, "2026-03-15")
	}
}

func TestAdd_EmptyStatusRejected(t *testing.T) {
	t.Parallel()

	l, store := newStubLedger("ph-1")
	_, err := l.Add(context.Background(), "ph-1", 10, "", "")
	wantValidation(t, err, "status")
	if len(store.claims) != 0 {
		t.Errorf("claims stored = %d, want 0", len(store.claims))
	}
}

func TestAdd_UnknownPolicyholder(t *testing.T) {
	t.Parallel()

	l, store := newStubLedger("ph-1")
	for _, id := range []string{"", "ph-2", "PH-1", "ph-1 "} {
		_, err := l.Add(context.Background(), id, 100, "x", StatusPending)
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			t.Fatalf("Add(%q) err = %v, want *NotFoundError", id, err)
		}
		if nf.ID != id {
			t.Errorf("NotFoundError.ID = %q, want %q", nf.ID, id)
		}
	}
	if len(store.claims) != 0 {
		t.Errorf("recorded %d claims, want 0", len(store.claims))
	}
}

func TestAdd_Amount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		amount  float64
		wantErr bool
	}{
		{"zero", 0, true},
		{"negative", -10, true},
		{"NaN", math.NaN(), true},
		{"infinity", math.Inf(1), true},
		{"cent", 0.01, false},
		{"large", 1e12, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			l, store := newStubLedger("ph")
			_, err := l.Add(context.Background(), "ph", tt.amount, "x", StatusPending)
			if tt.wantErr {
				wantValidation(t, err, "amount")
				if len(store.claims) != 0 {
					t.Error("rejected claim was recorded")
				}
				return
			}
			if err != nil {
				t.Fatalf("Add: %v", err)
			}
		})
	}
}

func TestAdd_Status(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status  ClaimStatus
		wantErr bool
	}{
		{StatusPending, false},
		{StatusApproved, false},
		{StatusRejected, false},
		{"", true},
		{"pending", true},
		{"Paid", true},
		{"Approved ", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			t.Parallel()
			l, _ := newStubLedger("ph")
			_, err := l.Add(context.Background(), "ph", 1, "x", tt.status)
			if tt.wantErr {
				wantValidation(t, err, "status")
				return
			}
			if err != nil {
				t.Fatalf("Add: %v", err)
			}
		})
	}
}

func TestAdd_ValidationOrder(t *testing.T) {
	t.Parallel()

	l, _ := newStubLedger("ph")
	ctx := context.Background()

	_, err := l.Add(ctx, "missing", -1, "x", "Bogus")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want *NotFoundError first", err)
	}

	_, err = l.Add(ctx, "ph", -1, "x", "Bogus")
	wantValidation(t, err, "amount")

	_, err = l.Add(ctx, "ph", 1, "x", "Bogus")
	wantValidation(t, err, "status")
}

func TestAdd_ResolverError(t *testing.T) {
	t.Parallel()

	boom := errors.New("resolver down")
	l := NewLedger(newFakeStore(), stubResolver{err: boom})
	_, err := l.Add(context.Background(), "ph", 1, "x", StatusPending)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped resolver error", err)
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		t.Error("resolver failure must not be a NotFoundError")
	}
}

func TestAdd_InsertionOrderWithinSameDay(t *testing.T) {
	t.Parallel()

	l, _ := newStubLedger("a", "b")
	ctx := context.Background()
	var want []string
	for i := range 6 {
		id := "a"
		if i%2 == 1 {
			id = "b"
		}
		c, err := l.Add(ctx, id, float64(i+1), "x", StatusPending)
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
		want = append(want, c.ID)
	}

	got, err := l.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Errorf("got[%d] = %s, want %s", i, got[i].ID, want[i])
		}
		if got[i].Date != "2026-03-15" {
			t.Errorf("got[%d].Date = %s", i, got[i].Date)
		}
	}
}

func TestAdd_DateUsesClockDay(t *testing.T) {
	t.Parallel()

	l, _ := newStubLedger("ph")
	l.now = fixedClock(time.Date(2025, time.January, 2, 23, 59, 59, 0, time.UTC))
	c, _ := l.Add(context.Background(), "ph", 1, "x", StatusPending)
	if c.Date != "2025-01-02" {
		t.Errorf("Date = %q, want %q", c.Date, "2025-01-02")
	}
	if c.Month() != "2025-01" {
		t.Errorf("Month = %q, want %q", c.Month(), "2025-01")
	}
}
