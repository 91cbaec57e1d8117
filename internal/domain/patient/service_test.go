package patient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mealtrace/catering/internal/domain/audit"
)

type mockRepo struct {
	patients map[uuid.UUID]*Patient
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: map[uuid.UUID]*Patient{}}
}

func (m *mockRepo) Create(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	m.patients[p.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepo) List(ctx context.Context, f Filter, limit, offset int) ([]*Patient, int, error) {
	var out []*Patient
	for _, p := range m.patients {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (m *mockRepo) Update(ctx context.Context, p *Patient) error {
	if _, ok := m.patients[p.ID]; !ok {
		return errors.New("no rows")
	}
	cp := *p
	m.patients[p.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.patients, id)
	return nil
}

func (m *mockRepo) ActiveWithDiet(ctx context.Context, hospitalID *uuid.UUID) ([]*Patient, error) {
	var out []*Patient
	for _, p := range m.patients {
		if p.Status != StatusDischarged && p.Diet != nil && *p.Diet != "" {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockRepo) RoomTypes(ctx context.Context, hospitalID *uuid.UUID) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, p := range m.patients {
		if p.RoomType != nil && *p.RoomType != "" && !seen[*p.RoomType] {
			seen[*p.RoomType] = true
			out = append(out, *p.RoomType)
		}
	}
	return out, nil
}

func (m *mockRepo) AdmittedWithin(ctx context.Context, hospitalID *uuid.UUID, from, to time.Time) ([]*Patient, error) {
	var out []*Patient
	for _, p := range m.patients {
		if p.InDate == nil || p.DischargeDate == nil {
			continue
		}
		if !p.InDate.Before(from) && !p.InDate.After(to) &&
			!p.DischargeDate.Before(from) && !p.DischargeDate.After(to) {
			out = append(out, p)
		}
	}
	return out, nil
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func newSvc() (*Service, *mockRepo) {
	repo := newMockRepo()
	return NewService(repo, audit.NopRecorder{}), repo
}

func TestCreateRequiresName(t *testing.T) {
	svc, _ := newSvc()
	_, err := svc.Create(context.Background(), uuid.New(), Input{}, "u1")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if ve.Fields[0].Field != "name" {
		t.Errorf("expected name error, got %+v", ve.Fields)
	}
}

func TestCreateDefaultsStatus(t *testing.T) {
	svc, _ := newSvc()
	p, err := svc.Create(context.Background(), uuid.New(), Input{Name: strPtr("Asha Rao")}, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if p.Status != StatusInPatient {
		t.Errorf("expected default status in_patient, got %q", p.Status)
	}
}

func TestCreateValidatesFields(t *testing.T) {
	svc, _ := newSvc()
	cases := []struct {
		name  string
		in    Input
		field string
	}{
		{"bad phone", Input{Name: strPtr("A"), Phone: strPtr("abc")}, "phone"},
		{"bad time", Input{Name: strPtr("A"), InTime: strPtr("25:00")}, "inTime"},
		{"bad status", Input{Name: strPtr("A"), Status: strPtr("gone")}, "status"},
		{"bad txn", Input{Name: strPtr("A"), TransactionType: strPtr("upi")}, "transactionType"},
		{"age too high", Input{Name: strPtr("A"), Age: intPtr(151)}, "age"},
		{"negative age", Input{Name: strPtr("A"), Age: intPtr(-1)}, "age"},
		{"bad sex", Input{Name: strPtr("A"), Sex: strPtr("x")}, "sex"},
		{"bad in date", Input{Name: strPtr("A"), InDate: strPtr("2024-13-40")}, "inDate"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), uuid.New(), tc.in, "u1")
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected validation error, got %v", err)
			}
			found := false
			for _, f := range ve.Fields {
				if f.Field == tc.field {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on field %q, got %+v", tc.field, ve.Fields)
			}
		})
	}
}

func TestCreateAcceptsValidOptionalFields(t *testing.T) {
	svc, _ := newSvc()
	p, err := svc.Create(context.Background(), uuid.New(), Input{
		Name:            strPtr("Asha Rao"),
		Phone:           strPtr("+91 98765-43210"),
		InDate:          strPtr("2024-06-01"),
		InTime:          strPtr("09:30"),
		Status:          strPtr(StatusInPatient),
		TransactionType: strPtr("insurance"),
		Age:             intPtr(42),
		Sex:             strPtr("female"),
		RoomType:        strPtr("ICU"),
		Diet:            strPtr("Diabetic Diet"),
	}, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if p.InDate == nil || p.InDate.UTC().Format(time.RFC3339) != "2024-05-31T18:30:00Z" {
		t.Errorf("in date not normalized to regional day start: %v", p.InDate)
	}
	if p.TransactionType == nil || *p.TransactionType != "insurance" {
		t.Errorf("transaction type lost: %v", p.TransactionType)
	}
}

func TestUpdatePartial(t *testing.T) {
	svc, _ := newSvc()
	p, _ := svc.Create(context.Background(), uuid.New(), Input{Name: strPtr("Asha Rao"), RoomType: strPtr("Ward")}, "u1")

	got, err := svc.Update(context.Background(), p.ID, nil, Input{Bed: strPtr("12B")}, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Asha Rao" {
		t.Errorf("name clobbered: %q", got.Name)
	}
	if got.Bed == nil || *got.Bed != "12B" {
		t.Errorf("bed not applied: %v", got.Bed)
	}
	if got.RoomType == nil || *got.RoomType != "Ward" {
		t.Errorf("room type clobbered: %v", got.RoomType)
	}
}

func TestDischargeSetsDateAndStatus(t *testing.T) {
	svc, _ := newSvc()
	p, _ := svc.Create(context.Background(), uuid.New(), Input{Name: strPtr("Asha Rao")}, "u1")

	got, err := svc.Discharge(context.Background(), p.ID, nil, "2024-06-10", "u1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusDischarged {
		t.Errorf("expected discharged status, got %q", got.Status)
	}
	if got.DischargeDate == nil || got.DischargeDate.UTC().Format(time.RFC3339) != "2024-06-09T18:30:00Z" {
		t.Errorf("unexpected discharge date: %v", got.DischargeDate)
	}
}

func TestDischargeIsSetOnce(t *testing.T) {
	svc, _ := newSvc()
	p, _ := svc.Create(context.Background(), uuid.New(), Input{Name: strPtr("Asha Rao")}, "u1")

	if _, err := svc.Discharge(context.Background(), p.ID, nil, "2024-06-10", "u1"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Discharge(context.Background(), p.ID, nil, "2024-06-11", "u1"); err == nil {
		t.Fatal("expected second discharge to fail")
	}
}

func TestDischargeRejectsInvalidDate(t *testing.T) {
	svc, _ := newSvc()
	p, _ := svc.Create(context.Background(), uuid.New(), Input{Name: strPtr("Asha Rao")}, "u1")

	if _, err := svc.Discharge(context.Background(), p.ID, nil, "garbage", "u1"); err == nil {
		t.Fatal("expected invalid date to be rejected")
	}
}

func TestByIDOperationsEnforceHospitalScope(t *testing.T) {
	svc, _ := newSvc()
	home := uuid.New()
	p, _ := svc.Create(context.Background(), home, Input{Name: strPtr("Asha Rao")}, "u1")

	other := uuid.New()
	if _, err := svc.Get(context.Background(), p.ID, &other); !errors.Is(err, ErrNotFound) {
		t.Errorf("get from another hospital: expected not found, got %v", err)
	}
	if _, err := svc.Update(context.Background(), p.ID, &other, Input{Bed: strPtr("3A")}, "u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("update from another hospital: expected not found, got %v", err)
	}
	if _, err := svc.Discharge(context.Background(), p.ID, &other, "2024-06-10", "u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("discharge from another hospital: expected not found, got %v", err)
	}
	if err := svc.Delete(context.Background(), p.ID, &other, "u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete from another hospital: expected not found, got %v", err)
	}

	// The owning hospital and unscoped admins still see the record.
	if _, err := svc.Get(context.Background(), p.ID, &home); err != nil {
		t.Errorf("get from owning hospital: %v", err)
	}
	if _, err := svc.Get(context.Background(), p.ID, nil); err != nil {
		t.Errorf("unscoped get: %v", err)
	}
}
