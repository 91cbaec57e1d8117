package diettype

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

type mockRepo struct {
	items []*DietType
}

func (m *mockRepo) Create(ctx context.Context, d *DietType) error {
	m.items = append(m.items, d)
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*DietType, error) {
	for _, d := range m.items {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) List(ctx context.Context, hospitalID *uuid.UUID) ([]*DietType, error) {
	if hospitalID == nil {
		return m.items, nil
	}
	var out []*DietType
	for _, d := range m.items {
		if d.HospitalID != nil && *d.HospitalID == *hospitalID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockRepo) All(ctx context.Context) ([]*DietType, error) {
	return m.items, nil
}

func (m *mockRepo) Update(ctx context.Context, d *DietType) error { return nil }

func (m *mockRepo) Delete(ctx context.Context, id uuid.UUID, hospitalID *uuid.UUID) error {
	return nil
}

func entry(hospitalID *uuid.UUID, name string, price float64) *DietType {
	return &DietType{ID: uuid.New(), HospitalID: hospitalID, Name: name, DefaultPrice: price, Active: true}
}

func TestResolveHospitalExactWinsOverGlobal(t *testing.T) {
	hid := uuid.New()
	repo := &mockRepo{items: []*DietType{
		entry(nil, "Diabetic", 100),
		entry(&hid, "Diabetic", 150),
	}}
	r := NewPriceResolver(repo)

	got, err := r.Resolve(context.Background(), &hid, "  diabetic ")
	if err != nil {
		t.Fatal(err)
	}
	if got != 150 {
		t.Errorf("expected hospital-scoped price 150, got %v", got)
	}
}

func TestResolveGlobalExact(t *testing.T) {
	other := uuid.New()
	hid := uuid.New()
	repo := &mockRepo{items: []*DietType{
		entry(&other, "Renal", 200),
		entry(nil, "Renal", 120),
	}}
	r := NewPriceResolver(repo)

	got, err := r.Resolve(context.Background(), &hid, "Renal")
	if err != nil {
		t.Fatal(err)
	}
	// No hospital-scoped match for hid; the first exact name match wins.
	if got != 200 {
		t.Errorf("expected 200, got %v", got)
	}
}

func TestResolveFuzzyContains(t *testing.T) {
	repo := &mockRepo{items: []*DietType{
		entry(nil, "Diabetic", 130),
	}}
	r := NewPriceResolver(repo)

	got, err := r.Resolve(context.Background(), nil, "Diabetic Diet - low salt")
	if err != nil {
		t.Fatal(err)
	}
	if got != 130 {
		t.Errorf("expected fuzzy match price 130, got %v", got)
	}
}

func TestResolveUnmatchedIsZero(t *testing.T) {
	repo := &mockRepo{items: []*DietType{entry(nil, "Renal", 120)}}
	r := NewPriceResolver(repo)

	got, err := r.Resolve(context.Background(), nil, "Keto")
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Errorf("expected 0 for unmatched diet, got %v", got)
	}
}

func TestResolveNonPositivePriceClampsToZero(t *testing.T) {
	repo := &mockRepo{items: []*DietType{entry(nil, "Free Diet", -5)}}
	r := NewPriceResolver(repo)

	got, err := r.Resolve(context.Background(), nil, "Free Diet")
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Errorf("expected clamp to 0, got %v", got)
	}
}

func TestResolveEmptyNameIsZero(t *testing.T) {
	repo := &mockRepo{items: []*DietType{entry(nil, "Renal", 120)}}
	r := NewPriceResolver(repo)

	got, err := r.Resolve(context.Background(), nil, "   ")
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Errorf("expected 0 for empty diet, got %v", got)
	}
}

func TestListNonAdminReturnsActiveNamesOnly(t *testing.T) {
	active := entry(nil, "Renal", 120)
	inactive := entry(nil, "Old Diet", 50)
	inactive.Active = false
	svc := NewService(&mockRepo{items: []*DietType{active, inactive}})

	out, err := svc.List(context.Background(), nil, false)
	if err != nil {
		t.Fatal(err)
	}
	refs, ok := out.([]NameRef)
	if !ok {
		t.Fatalf("expected []NameRef, got %T", out)
	}
	if len(refs) != 1 || refs[0].Name != "Renal" {
		t.Errorf("unexpected refs: %+v", refs)
	}
}
