package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/llighterr/promo-task/internal/cohort"
	"github.com/llighterr/promo-task/internal/models"
	"go.uber.org/zap"
)

type fakeStore struct {
	created []models.PromoMessage
	err     error
}

var _ PromoMessageStore = (*fakeStore)(nil)

func (f *fakeStore) Create(ctx context.Context, m *models.PromoMessage) error {
	if f.err != nil {
		return f.err
	}
	m.ID = uuid.New()
	m.CreatedAt = time.Now()
	f.created = append(f.created, *m)
	return nil
}

type fakeCohort struct {
	users  []models.CohortUser
	phones []string
	err    error

	gotLimit  int
	gotOffset int
}

var _ CohortSource = (*fakeCohort)(nil)

func (f *fakeCohort) Page(ctx context.Context, rng cohort.Range, limit, offset int) ([]models.CohortUser, error) {
	f.gotLimit, f.gotOffset = limit, offset
	if f.err != nil {
		return nil, f.err
	}
	if offset >= len(f.users) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.users) {
		end = len(f.users)
	}
	return f.users[offset:end], nil
}

func (f *fakeCohort) Count(ctx context.Context, rng cohort.Range) (int, error) {
	return len(f.users), f.err
}

func (f *fakeCohort) Phones(ctx context.Context, rng cohort.Range) ([]string, error) {
	return f.phones, f.err
}

func (f *fakeCohort) ForEach(ctx context.Context, rng cohort.Range, batchSize int, fn func(models.CohortUser) error) error {
	if f.err != nil {
		return f.err
	}
	for _, u := range f.users {
		if err := fn(u); err != nil {
			return err
		}
	}
	return nil
}

type fakeQueue struct {
	enqueued []SendPromoPayload
	failFor  map[string]bool
}

func (f *fakeQueue) Enqueue(ctx context.Context, task string, payload any) error {
	p, ok := payload.(SendPromoPayload)
	if !ok {
		return errors.New("unexpected payload type")
	}
	if f.failFor[p.Phone] {
		return errors.New("queue unavailable")
	}
	f.enqueued = append(f.enqueued, p)
	return nil
}

func newTestService(store *fakeStore, cohorts *fakeCohort, q *fakeQueue) *PromoService {
	return NewPromoService(store, cohorts, q, 500, zap.NewNop())
}

func TestSubmitEmptyBody(t *testing.T) {
	store := &fakeStore{}
	q := &fakeQueue{}
	svc := newTestService(store, &fakeCohort{phones: []string{"+1"}}, q)

	for _, body := range []string{"", "   "} {
		_, err := svc.Submit(context.Background(), body, "2024-01-01", "2024-01-31")

		var verrs ValidationErrors
		if !errors.As(err, &verrs) {
			t.Fatalf("Submit(%q) error = %v, want ValidationErrors", body, err)
		}
		if len(verrs) == 0 {
			t.Fatal("expected at least one validation message")
		}
	}

	if len(store.created) != 0 {
		t.Errorf("invalid submit persisted %d messages, want 0", len(store.created))
	}
	if len(q.enqueued) != 0 {
		t.Errorf("invalid submit enqueued %d tasks, want 0", len(q.enqueued))
	}
}

func TestSubmitEnqueuesPerRecipient(t *testing.T) {
	store := &fakeStore{}
	q := &fakeQueue{}
	phones := []string{"+10", "+11", "+12"}
	svc := newTestService(store, &fakeCohort{phones: phones}, q)

	report, err := svc.Submit(context.Background(), "Big sale!", "2024-01-01", "2024-01-31")
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}

	if len(store.created) != 1 {
		t.Fatalf("persisted %d messages, want 1", len(store.created))
	}
	if store.created[0].DateFrom != "2024-01-01" || store.created[0].DateTo != "2024-01-31" {
		t.Errorf("stored bounds = (%q, %q), want raw submitted values",
			store.created[0].DateFrom, store.created[0].DateTo)
	}

	if report.Recipients != 3 || report.Enqueued != 3 || report.Failed != 0 {
		t.Errorf("report = %+v, want 3 recipients, 3 enqueued, 0 failed", report)
	}
	for i, want := range phones {
		if q.enqueued[i].Phone != want {
			t.Errorf("enqueued[%d].Phone = %q, want %q", i, q.enqueued[i].Phone, want)
		}
	}
}

func TestSubmitPartialEnqueueFailure(t *testing.T) {
	store := &fakeStore{}
	q := &fakeQueue{failFor: map[string]bool{"+11": true}}
	svc := newTestService(store, &fakeCohort{phones: []string{"+10", "+11", "+12"}}, q)

	report, err := svc.Submit(context.Background(), "Big sale!", "2024-01-01", "2024-01-31")
	if err != nil {
		t.Fatalf("one failed enqueue must not fail the submit, got error: %v", err)
	}

	if report.Recipients != 3 || report.Enqueued != 2 || report.Failed != 1 {
		t.Errorf("report = %+v, want 3 recipients, 2 enqueued, 1 failed", report)
	}
	if len(store.created) != 1 {
		t.Errorf("message save rolled back on enqueue failure: %d messages", len(store.created))
	}
	// Remaining recipients after the failure were still attempted.
	if got := []string{q.enqueued[0].Phone, q.enqueued[1].Phone}; got[0] != "+10" || got[1] != "+12" {
		t.Errorf("enqueued phones = %v, want [+10 +12]", got)
	}
}

func TestSubmitBadDatesSavesMessageWithEmptyCohort(t *testing.T) {
	store := &fakeStore{}
	q := &fakeQueue{}
	svc := newTestService(store, &fakeCohort{phones: []string{"+1", "+2"}}, q)

	report, err := svc.Submit(context.Background(), "Big sale!", "not-a-date", "2024-01-01")
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}

	if len(store.created) != 1 {
		t.Errorf("persisted %d messages, want 1", len(store.created))
	}
	if report.Recipients != 0 || len(q.enqueued) != 0 {
		t.Errorf("bad dates must select nobody: report=%+v enqueued=%d", report, len(q.enqueued))
	}
}

func TestSubmitStoreFailure(t *testing.T) {
	q := &fakeQueue{}
	svc := newTestService(&fakeStore{err: errors.New("insert failed")}, &fakeCohort{phones: []string{"+1"}}, q)

	if _, err := svc.Submit(context.Background(), "Big sale!", "2024-01-01", "2024-01-31"); err == nil {
		t.Fatal("expected error when the insert fails")
	}
	if len(q.enqueued) != 0 {
		t.Errorf("enqueued %d tasks despite failed save, want 0", len(q.enqueued))
	}
}

func TestPreviewBadDates(t *testing.T) {
	svc := newTestService(&fakeStore{}, &fakeCohort{users: []models.CohortUser{{Phone: "+1"}}}, &fakeQueue{})

	tests := []struct{ from, to string }{
		{"", ""},
		{"2024-01-01", ""},
		{"", "2024-01-31"},
		{"not-a-date", "2024-01-01"},
	}
	for _, tt := range tests {
		users, total, err := svc.Preview(context.Background(), tt.from, tt.to, 1, 25)
		if err != nil {
			t.Fatalf("Preview(%q, %q) error: %v", tt.from, tt.to, err)
		}
		if len(users) != 0 || total != 0 {
			t.Errorf("Preview(%q, %q) = %d users, total %d; want empty", tt.from, tt.to, len(users), total)
		}
	}
}

func TestPreviewPagination(t *testing.T) {
	users := make([]models.CohortUser, 7)
	for i := range users {
		users[i] = models.CohortUser{ID: uuid.New(), Phone: "+1", Name: "u"}
	}
	co := &fakeCohort{users: users}
	svc := newTestService(&fakeStore{}, co, &fakeQueue{})

	got, total, err := svc.Preview(context.Background(), "2024-01-01", "2024-01-31", 2, 5)
	if err != nil {
		t.Fatalf("Preview() error: %v", err)
	}
	if total != 7 {
		t.Errorf("total = %d, want 7", total)
	}
	if len(got) != 2 {
		t.Errorf("page 2 size = %d, want 2", len(got))
	}
	if co.gotLimit != 5 || co.gotOffset != 5 {
		t.Errorf("page 2 query = limit %d offset %d, want 5/5", co.gotLimit, co.gotOffset)
	}
}

func TestExportCSV(t *testing.T) {
	users := []models.CohortUser{
		{ID: uuid.New(), Phone: "+10", Name: "A"},
		{ID: uuid.New(), Phone: "+11", Name: "B"},
	}
	svc := newTestService(&fakeStore{}, &fakeCohort{users: users}, &fakeQueue{})

	var buf bytes.Buffer
	if err := svc.ExportCSV(context.Background(), "2024-01-01", "2024-01-31", &buf); err != nil {
		t.Fatalf("ExportCSV() error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("export is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(records))
	}
	if records[1][1] != "+10" || records[2][1] != "+11" {
		t.Errorf("rows out of cohort order: %v", records[1:])
	}
}

func TestExportCSVBadDatesHeaderOnly(t *testing.T) {
	svc := newTestService(&fakeStore{}, &fakeCohort{users: []models.CohortUser{{Phone: "+1"}}}, &fakeQueue{})

	var buf bytes.Buffer
	if err := svc.ExportCSV(context.Background(), "nope", "2024-01-01", &buf); err != nil {
		t.Fatalf("ExportCSV() error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("export is not valid CSV: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("bad dates: got %d rows, want header only", len(records))
	}
}
