package dietplan

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mealtrace/catering/internal/domain/order"
)

type mockPlanRepo struct {
	plans map[uuid.UUID]*Plan
}

func newMockPlanRepo() *mockPlanRepo {
	return &mockPlanRepo{plans: map[uuid.UUID]*Plan{}}
}

func (m *mockPlanRepo) Create(ctx context.Context, p *Plan) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.plans[p.ID] = p
	return nil
}

func (m *mockPlanRepo) GetByID(ctx context.Context, id uuid.UUID) (*Plan, error) {
	p, ok := m.plans[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	return p, nil
}

func (m *mockPlanRepo) List(ctx context.Context, hospitalID *uuid.UUID, limit int) ([]*Plan, error) {
	var out []*Plan
	for _, p := range m.plans {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockPlanRepo) ActiveOn(ctx context.Context, day time.Time) ([]*Plan, error) {
	var out []*Plan
	for _, p := range m.plans {
		if p.CoversDay(day) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPlanRepo) Update(ctx context.Context, p *Plan) error { return nil }
func (m *mockPlanRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.plans, id)
	return nil
}

type mockOrderRepo struct {
	orders []*order.Order
	err    error
}

func (m *mockOrderRepo) Create(ctx context.Context, o *order.Order) error {
	if m.err != nil {
		return m.err
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	m.orders = append(m.orders, o)
	return nil
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return nil, errors.New("no rows")
}

func (m *mockOrderRepo) ListByDate(ctx context.Context, hospitalID *uuid.UUID, date time.Time, limit int) ([]*order.Order, error) {
	return nil, nil
}

func (m *mockOrderRepo) Update(ctx context.Context, o *order.Order) error { return nil }

func (m *mockOrderRepo) BulkDeliver(ctx context.Context, ids []uuid.UUID) (int, error) {
	return 0, nil
}

func (m *mockOrderRepo) ExistsForPlanDate(ctx context.Context, sourcePlanID uuid.UUID, date time.Time, hospitalID *uuid.UUID) (bool, error) {
	for _, o := range m.orders {
		if o.SourcePlanID != nil && *o.SourcePlanID == sourcePlanID && o.Date.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}

func TestPlanItemDecodesStringAndObject(t *testing.T) {
	var m Meal
	raw := `{"slot":"breakfast","items":["aaa","bbb",{"id":"ccc","notes":"no salt"}]}`
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatal(err)
	}
	if len(m.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(m.Items))
	}
	if m.Items[0].ID != "aaa" || m.Items[2].ID != "ccc" || m.Items[2].Notes != "no salt" {
		t.Errorf("unexpected items: %+v", m.Items)
	}
}

func TestCreateWithPatientCutsImmediateOrder(t *testing.T) {
	planRepo := newMockPlanRepo()
	orderRepo := &mockOrderRepo{}
	svc := NewService(planRepo, orderRepo, zerolog.Nop())

	pid := uuid.New()
	item := uuid.New()
	res, err := svc.Create(context.Background(), nil, Input{
		PatientID: &pid,
		StartDate: "2024-06-10",
		Days: []Day{{DayIndex: 0, Meals: []Meal{
			{Slot: "breakfast", Items: []PlanItem{{ID: item.String()}, {ID: "not-a-uuid"}}},
		}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.CreatedOrder == nil {
		t.Fatal("expected immediate order")
	}
	o := res.CreatedOrder
	if len(o.Items) != 1 {
		t.Fatalf("unparseable item refs should be skipped, got %d items", len(o.Items))
	}
	if o.Items[0].Quantity != 1 || o.Items[0].MealSlot != "breakfast" {
		t.Errorf("unexpected item: %+v", o.Items[0])
	}
	if o.SourcePlanID == nil || *o.SourcePlanID != res.Plan.ID {
		t.Errorf("source plan not linked: %v", o.SourcePlanID)
	}
	if got := o.Date.UTC().Format(time.RFC3339); got != "2024-06-09T18:30:00Z" {
		t.Errorf("order date not plan start day: %s", got)
	}
}

func TestCreateWithoutItemsSkipsOrder(t *testing.T) {
	planRepo := newMockPlanRepo()
	orderRepo := &mockOrderRepo{}
	svc := NewService(planRepo, orderRepo, zerolog.Nop())

	pid := uuid.New()
	res, err := svc.Create(context.Background(), nil, Input{
		PatientID: &pid,
		StartDate: "2024-06-10",
		Days:      []Day{{DayIndex: 0, Meals: []Meal{{Slot: "lunch"}}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.CreatedOrder != nil {
		t.Error("expected no order for empty meal items")
	}
}

func TestCreateSurvivesOrderFailure(t *testing.T) {
	planRepo := newMockPlanRepo()
	orderRepo := &mockOrderRepo{err: errors.New("db down")}
	svc := NewService(planRepo, orderRepo, zerolog.Nop())

	pid := uuid.New()
	res, err := svc.Create(context.Background(), nil, Input{
		PatientID: &pid,
		StartDate: "2024-06-10",
		Days: []Day{{DayIndex: 0, Meals: []Meal{
			{Slot: "breakfast", Items: []PlanItem{{ID: uuid.New().String()}}},
		}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Plan == nil || res.CreatedOrder != nil {
		t.Errorf("plan should survive order failure: %+v", res)
	}
}

func TestCreateRejectsBadRecurrenceAndDates(t *testing.T) {
	svc := NewService(newMockPlanRepo(), &mockOrderRepo{}, zerolog.Nop())

	if _, err := svc.Create(context.Background(), nil, Input{StartDate: "2024-06-10", Recurrence: "yearly"}); err == nil {
		t.Error("expected invalid recurrence to be rejected")
	}
	if _, err := svc.Create(context.Background(), nil, Input{StartDate: "bad"}); err == nil {
		t.Error("expected invalid start date to be rejected")
	}
	if _, err := svc.Create(context.Background(), nil, Input{}); err == nil {
		t.Error("expected missing start date to be rejected")
	}
}

func TestCoversDay(t *testing.T) {
	start, _ := time.Parse(time.RFC3339, "2024-06-09T18:30:00Z")
	oneShot := &Plan{StartDate: start, Recurrence: RecurrenceNone}
	if !oneShot.CoversDay(start) {
		t.Error("one-shot plan should cover its start day")
	}
	if oneShot.CoversDay(start.Add(24 * time.Hour)) {
		t.Error("one-shot plan should not cover later days")
	}

	end := start.Add(7 * 24 * time.Hour)
	weekly := &Plan{StartDate: start, EndDate: &end, Recurrence: RecurrenceWeekly}
	if !weekly.CoversDay(start.Add(3 * 24 * time.Hour)) {
		t.Error("recurring plan should cover days inside the range")
	}
	if weekly.CoversDay(end.Add(24 * time.Hour)) {
		t.Error("recurring plan should not cover days past the end")
	}
}

func TestDayForFallsBackToFirstDay(t *testing.T) {
	p := &Plan{Days: []Day{{DayIndex: 2}, {DayIndex: 4}}}
	if d := p.DayFor(4); d == nil || d.DayIndex != 4 {
		t.Errorf("expected day 4, got %+v", d)
	}
	if d := p.DayFor(0); d == nil || d.DayIndex != 2 {
		t.Errorf("expected fallback to first day, got %+v", d)
	}
	empty := &Plan{}
	if d := empty.DayFor(0); d != nil {
		t.Errorf("expected nil for empty days, got %+v", d)
	}
}
