package reports

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mealtrace/catering/internal/domain/assignment"
	"github.com/mealtrace/catering/internal/domain/patient"
	"github.com/mealtrace/catering/internal/platform/ist"
)

type mockAssignmentRepo struct {
	items []*assignment.Assignment
}

func (m *mockAssignmentRepo) Create(ctx context.Context, a *assignment.Assignment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	m.items = append(m.items, a)
	return nil
}

func (m *mockAssignmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*assignment.Assignment, error) {
	for _, a := range m.items {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, errors.New("no rows")
}

func (m *mockAssignmentRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, hospitalID *uuid.UUID) ([]*assignment.Assignment, error) {
	var out []*assignment.Assignment
	for _, a := range m.items {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockAssignmentRepo) ListByDate(ctx context.Context, hospitalID *uuid.UUID, date time.Time) ([]*assignment.Assignment, error) {
	var out []*assignment.Assignment
	for _, a := range m.items {
		if a.Date.Equal(date) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *mockAssignmentRepo) ListByDateRange(ctx context.Context, hospitalID *uuid.UUID, from, to time.Time) ([]*assignment.Assignment, error) {
	var out []*assignment.Assignment
	for _, a := range m.items {
		if !a.Date.Before(from) && !a.Date.After(to) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockAssignmentRepo) ExistsForPatientDate(ctx context.Context, patientID uuid.UUID, date time.Time, hospitalID *uuid.UUID) (bool, error) {
	return false, nil
}

func (m *mockAssignmentRepo) Update(ctx context.Context, a *assignment.Assignment) error { return nil }
func (m *mockAssignmentRepo) Delete(ctx context.Context, id uuid.UUID) error             { return nil }

type mockPatientRepo struct {
	patients map[uuid.UUID]*patient.Patient
	rooms    []string
}

func newMockPatientRepo() *mockPatientRepo {
	return &mockPatientRepo{patients: map[uuid.UUID]*patient.Patient{}}
}

func (m *mockPatientRepo) Create(ctx context.Context, p *patient.Patient) error { return nil }

func (m *mockPatientRepo) GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	return p, nil
}

func (m *mockPatientRepo) List(ctx context.Context, f patient.Filter, limit, offset int) ([]*patient.Patient, int, error) {
	return nil, 0, nil
}

func (m *mockPatientRepo) Update(ctx context.Context, p *patient.Patient) error { return nil }
func (m *mockPatientRepo) Delete(ctx context.Context, id uuid.UUID) error       { return nil }

func (m *mockPatientRepo) ActiveWithDiet(ctx context.Context, hospitalID *uuid.UUID) ([]*patient.Patient, error) {
	return nil, nil
}

func (m *mockPatientRepo) RoomTypes(ctx context.Context, hospitalID *uuid.UUID) ([]string, error) {
	return m.rooms, nil
}

func (m *mockPatientRepo) AdmittedWithin(ctx context.Context, hospitalID *uuid.UUID, from, to time.Time) ([]*patient.Patient, error) {
	var out []*patient.Patient
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

type mockResolver struct {
	prices map[string]float64
}

func (m *mockResolver) Resolve(ctx context.Context, hospitalID *uuid.UUID, dietName string) (float64, error) {
	return m.prices[dietName], nil
}

func dayStart(t *testing.T, ymd string) time.Time {
	t.Helper()
	d, err := ist.StartOfDayYMD(ymd)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func strPtr(s string) *string { return &s }

func setup() (*Service, *mockAssignmentRepo, *mockPatientRepo) {
	assignments := &mockAssignmentRepo{}
	patients := newMockPatientRepo()
	resolver := &mockResolver{prices: map[string]float64{"Normal Diet": 130, "Liquid Diet": 90}}
	return NewService(assignments, patients, resolver, zerolog.Nop()), assignments, patients
}

func addStay(t *testing.T, patients *mockPatientRepo, in, out string) *patient.Patient {
	t.Helper()
	p := &patient.Patient{ID: uuid.New(), Name: "Asha Rao", Status: patient.StatusDischarged}
	inDate := dayStart(t, in)
	p.InDate = &inDate
	if out != "" {
		outDate := dayStart(t, out)
		p.DischargeDate = &outDate
	}
	patients.patients[p.ID] = p
	return p
}

func TestBusinessRangeEndToEnd(t *testing.T) {
	svc, assignments, patients := setup()
	p := addStay(t, patients, "2024-06-01", "2024-06-04")

	// Four delivered assignments across the stay. Stored prices are stale
	// snapshots and must not influence the bill.
	for _, ymd := range []string{"2024-06-01", "2024-06-02", "2024-06-03", "2024-06-04"} {
		assignments.Create(context.Background(), &assignment.Assignment{
			PatientID: p.ID, Date: dayStart(t, ymd), Diet: "Normal Diet",
			Status: assignment.StatusDelivered, Price: 999,
		})
	}

	rows, err := svc.BusinessRange(context.Background(), nil, "2024-06-01", "2024-06-04")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].BillAmount != 520 {
		t.Errorf("expected bill 520, got %v", rows[0].BillAmount)
	}
	if rows[0].DeliveredCount != 4 {
		t.Errorf("expected 4 delivered, got %d", rows[0].DeliveredCount)
	}
}

func TestBusinessRangeOnlyDeliveredAndInStay(t *testing.T) {
	svc, assignments, patients := setup()
	p := addStay(t, patients, "2024-06-02", "2024-06-03")

	assignments.Create(context.Background(), &assignment.Assignment{
		PatientID: p.ID, Date: dayStart(t, "2024-06-02"), Diet: "Normal Diet",
		Status: assignment.StatusDelivered,
	})
	// Pending row does not bill.
	assignments.Create(context.Background(), &assignment.Assignment{
		PatientID: p.ID, Date: dayStart(t, "2024-06-03"), Diet: "Normal Diet",
		Status: assignment.StatusPending,
	})
	// Delivered but dated before admission.
	assignments.Create(context.Background(), &assignment.Assignment{
		PatientID: p.ID, Date: dayStart(t, "2024-06-01"), Diet: "Normal Diet",
		Status: assignment.StatusDelivered,
	})

	rows, err := svc.BusinessRange(context.Background(), nil, "2024-06-01", "2024-06-10")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].BillAmount != 130 || rows[0].DeliveredCount != 1 {
		t.Errorf("unexpected rows: %+v", rows)
	}
}

func TestBusinessRangeExcludesPartialStays(t *testing.T) {
	svc, _, patients := setup()
	// Admitted before the window opens.
	addStay(t, patients, "2024-05-20", "2024-06-03")

	rows, err := svc.BusinessRange(context.Background(), nil, "2024-06-01", "2024-06-10")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Errorf("partial-window stay should be excluded, got %+v", rows)
	}
}

func TestBusinessRangeDuplicatesDoubleCount(t *testing.T) {
	svc, assignments, patients := setup()
	p := addStay(t, patients, "2024-06-01", "2024-06-01")

	// Two delivered assignments on the same day both bill.
	for i := 0; i < 2; i++ {
		assignments.Create(context.Background(), &assignment.Assignment{
			PatientID: p.ID, Date: dayStart(t, "2024-06-01"), Diet: "Normal Diet",
			Status: assignment.StatusDelivered,
		})
	}
	rows, err := svc.BusinessRange(context.Background(), nil, "2024-06-01", "2024-06-02")
	if err != nil {
		t.Fatal(err)
	}
	if rows[0].BillAmount != 260 || rows[0].DeliveredCount != 2 {
		t.Errorf("expected literal double count, got %+v", rows[0])
	}
}

func TestBusinessRangeRequiresBothDates(t *testing.T) {
	svc, _, _ := setup()
	if _, err := svc.BusinessRange(context.Background(), nil, "2024-06-01", ""); err == nil {
		t.Fatal("expected missing to-date to be rejected")
	}
	if _, err := svc.BusinessRange(context.Background(), nil, "", "2024-06-10"); err == nil {
		t.Fatal("expected missing from-date to be rejected")
	}
}

func TestSupervisorTodayFiltersAndJoins(t *testing.T) {
	svc, assignments, patients := setup()
	icu := &patient.Patient{ID: uuid.New(), Name: "A", RoomType: strPtr("ICU"), RoomNo: strPtr("12")}
	ward := &patient.Patient{ID: uuid.New(), Name: "B", RoomType: strPtr("Ward"), RoomNo: strPtr("3")}
	patients.patients[icu.ID] = icu
	patients.patients[ward.ID] = ward

	day := dayStart(t, "2024-06-10")
	assignments.Create(context.Background(), &assignment.Assignment{
		PatientID: icu.ID, Date: day, Diet: "Normal Diet", Status: assignment.StatusPending,
	})
	assignments.Create(context.Background(), &assignment.Assignment{
		PatientID: ward.ID, Date: day, Diet: "Liquid Diet", Status: assignment.StatusPending,
	})
	// Different day must not show.
	assignments.Create(context.Background(), &assignment.Assignment{
		PatientID: icu.ID, Date: dayStart(t, "2024-06-11"), Diet: "Normal Diet", Status: assignment.StatusPending,
	})
	// Orphaned assignment drops out of the view.
	assignments.Create(context.Background(), &assignment.Assignment{
		PatientID: uuid.New(), Date: day, Diet: "Normal Diet", Status: assignment.StatusPending,
	})

	rows, err := svc.SupervisorToday(context.Background(), nil, "2024-06-10", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	rows, err = svc.SupervisorToday(context.Background(), nil, "2024-06-10", "ICU", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].PatientName != "A" {
		t.Errorf("room type filter failed: %+v", rows)
	}

	rows, err = svc.SupervisorToday(context.Background(), nil, "2024-06-10", "ICU", "99")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Errorf("room no filter failed: %+v", rows)
	}
}

func TestSupervisorTodayRejectsInvalidDate(t *testing.T) {
	svc, _, _ := setup()
	if _, err := svc.SupervisorToday(context.Background(), nil, "06/10/2024", "", ""); err == nil {
		t.Fatal("expected invalid date to be rejected")
	}
}

func TestAnalyticsBucketsAndZeroFill(t *testing.T) {
	svc, assignments, patients := setup()
	patients.rooms = []string{"Cabin", "ICU"}

	cash := &patient.Patient{ID: uuid.New(), Name: "A", RoomType: strPtr("ICU"), TransactionType: strPtr("cash")}
	noType := &patient.Patient{ID: uuid.New(), Name: "B"}
	patients.patients[cash.ID] = cash
	patients.patients[noType.ID] = noType

	assignments.Create(context.Background(), &assignment.Assignment{
		PatientID: cash.ID, Date: dayStart(t, "2024-06-10"), Diet: "Normal Diet",
		Status: assignment.StatusDelivered, Price: 130,
	})
	assignments.Create(context.Background(), &assignment.Assignment{
		PatientID: cash.ID, Date: dayStart(t, "2024-06-11"), Diet: "Normal Diet",
		Status: assignment.StatusDelivered, Price: 130,
	})
	assignments.Create(context.Background(), &assignment.Assignment{
		PatientID: noType.ID, Date: dayStart(t, "2024-06-11"), Diet: "Liquid Diet",
		Status: assignment.StatusDelivered, Price: 90,
	})
	// Pending rows are filtered by the default status.
	assignments.Create(context.Background(), &assignment.Assignment{
		PatientID: cash.ID, Date: dayStart(t, "2024-06-11"), Diet: "Normal Diet",
		Status: assignment.StatusPending, Price: 130,
	})

	out, err := svc.Analytics(context.Background(), nil, "2024-06-10", "2024-06-12", "day", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(out.OverTime) != 2 {
		t.Fatalf("expected 2 day buckets, got %+v", out.OverTime)
	}
	if out.OverTime[0].Bucket != "2024-06-10" || out.OverTime[0].Counts["Normal Diet"] != 1 {
		t.Errorf("unexpected first bucket: %+v", out.OverTime[0])
	}
	if out.OverTime[1].Revenue != 220 {
		t.Errorf("expected 220 revenue on second day, got %v", out.OverTime[1].Revenue)
	}

	// Cabin has no assignments but still appears zero-filled, and missing
	// room types roll into Unknown.
	byRoom := map[string]RoomTypeRow{}
	for _, r := range out.ByRoomType {
		byRoom[r.RoomType] = r
	}
	if r, ok := byRoom["Cabin"]; !ok || r.Total != 0 {
		t.Errorf("expected zero-filled Cabin, got %+v", out.ByRoomType)
	}
	if byRoom["ICU"].Total != 2 || byRoom["Unknown"].Total != 1 {
		t.Errorf("unexpected room totals: %+v", out.ByRoomType)
	}

	byPayer := map[string]PayerRow{}
	for _, p := range out.PayerMix {
		byPayer[p.Payer] = p
	}
	if byPayer["cash"].Count != 2 || byPayer["Unknown"].Count != 1 {
		t.Errorf("unexpected payer mix: %+v", out.PayerMix)
	}
	if byPayer["Unknown"].Revenue != 90 {
		t.Errorf("unexpected Unknown revenue: %v", byPayer["Unknown"].Revenue)
	}

	if out.Totals.DeliveredCount != 3 || out.Totals.PatientCount != 2 || out.Totals.TotalRevenue != 350 {
		t.Errorf("unexpected totals: %+v", out.Totals)
	}

	if len(out.DietDistribution) != 2 {
		t.Errorf("unexpected diet distribution: %+v", out.DietDistribution)
	}
}

func TestAnalyticsWeekAndMonthBuckets(t *testing.T) {
	svc, assignments, patients := setup()
	p := &patient.Patient{ID: uuid.New(), Name: "A"}
	patients.patients[p.ID] = p

	// 2024-06-10 is a Monday in ISO week 24.
	assignments.Create(context.Background(), &assignment.Assignment{
		PatientID: p.ID, Date: dayStart(t, "2024-06-10"), Diet: "Normal Diet",
		Status: assignment.StatusDelivered, Price: 130,
	})

	out, err := svc.Analytics(context.Background(), nil, "2024-06-01", "2024-06-30", "week", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(out.OverTime) != 1 || out.OverTime[0].Bucket != "2024-W24" {
		t.Errorf("unexpected week bucket: %+v", out.OverTime)
	}

	out, err = svc.Analytics(context.Background(), nil, "2024-06-01", "2024-06-30", "month", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(out.OverTime) != 1 || out.OverTime[0].Bucket != "2024-06" {
		t.Errorf("unexpected month bucket: %+v", out.OverTime)
	}
}

func TestAnalyticsStatusAll(t *testing.T) {
	svc, assignments, patients := setup()
	p := &patient.Patient{ID: uuid.New(), Name: "A"}
	patients.patients[p.ID] = p

	assignments.Create(context.Background(), &assignment.Assignment{
		PatientID: p.ID, Date: dayStart(t, "2024-06-10"), Diet: "Normal Diet",
		Status: assignment.StatusPending, Price: 130,
	})
	out, err := svc.Analytics(context.Background(), nil, "2024-06-01", "2024-06-30", "day", "all")
	if err != nil {
		t.Fatal(err)
	}
	if out.Totals.TotalRevenue != 130 || out.Totals.DeliveredCount != 0 {
		t.Errorf("status=all should include pending rows: %+v", out.Totals)
	}
}
