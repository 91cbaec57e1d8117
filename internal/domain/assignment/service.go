package assignment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mealtrace/catering/internal/domain/audit"
	"github.com/mealtrace/catering/internal/domain/diettype"
	"github.com/mealtrace/catering/internal/domain/patient"
	"github.com/mealtrace/catering/internal/platform/ist"
)

var (
	ErrNotFound        = errors.New("assignment not found")
	ErrPatientNotFound = errors.New("patient not found")
	ErrAfterDischarge  = errors.New("cannot assign diet after discharge")
	ErrNotPending      = errors.New("only pending assignments can be modified")
)

type CreateInput struct {
	PatientID uuid.UUID `json:"patientId"`
	Date      string    `json:"date"`
	FromTime  *string   `json:"fromTime"`
	ToTime    *string   `json:"toTime"`
	Diet      string    `json:"diet"`
	Note      *string   `json:"note"`
	Price     *float64  `json:"price"`
}

type UpdateInput struct {
	Date     *string  `json:"date"`
	FromTime *string  `json:"fromTime"`
	ToTime   *string  `json:"toTime"`
	Diet     *string  `json:"diet"`
	Note     *string  `json:"note"`
	Price    *float64 `json:"price"`
	Status   *string  `json:"status"`
}

type BulkInput struct {
	PatientID      uuid.UUID `json:"patientId"`
	StartDate      string    `json:"startDate"`
	Days           int       `json:"days"`
	UntilDischarge bool      `json:"untilDischarge"`
	Diet           string    `json:"diet"`
	Note           *string   `json:"note"`
}

type ChangeInput struct {
	PatientID      uuid.UUID `json:"patientId"`
	StartDate      string    `json:"startDate"`
	EndDate        *string   `json:"endDate"`
	UntilDischarge bool      `json:"untilDischarge"`
	NewDiet        string    `json:"newDiet"`
	Note           *string   `json:"note"`
}

type Service struct {
	repo     Repository
	patients patient.Repository
	prices   diettype.PriceResolver
	audit    audit.Recorder
	logger   zerolog.Logger
	now      func() time.Time
}

func NewService(repo Repository, patients patient.Repository, prices diettype.PriceResolver, rec audit.Recorder, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		prices:   prices,
		audit:    rec,
		logger:   logger,
		now:      time.Now,
	}
}

// scopedPatient loads a patient and enforces the hospital boundary. A patient
// in another hospital is indistinguishable from a missing one.
func (s *Service) scopedPatient(ctx context.Context, id uuid.UUID, hospitalID *uuid.UUID) (*patient.Patient, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, ErrPatientNotFound
	}
	if hospitalID != nil && p.HospitalID != *hospitalID {
		return nil, ErrPatientNotFound
	}
	return p, nil
}

// resolvePrice is best effort: a catalog lookup failure resolves to 0 and is
// logged, never surfaced.
func (s *Service) resolvePrice(ctx context.Context, hospitalID *uuid.UUID, diet string) float64 {
	price, err := s.prices.Resolve(ctx, hospitalID, diet)
	if err != nil {
		s.logger.Error().Err(err).Str("diet", diet).Msg("price resolution failed")
		return 0
	}
	return price
}

func (s *Service) Create(ctx context.Context, hospitalID *uuid.UUID, in CreateInput, userID string) (*Assignment, error) {
	if in.PatientID == uuid.Nil || in.Date == "" || in.Diet == "" {
		return nil, errors.New("patientId, date and diet are required")
	}
	p, err := s.scopedPatient(ctx, in.PatientID, hospitalID)
	if err != nil {
		return nil, err
	}
	date, err := ist.StartOfDayYMD(in.Date)
	if err != nil {
		return nil, err
	}
	if p.DischargeDate != nil && date.After(*p.DischargeDate) {
		return nil, ErrAfterDischarge
	}
	price := float64(0)
	if in.Price != nil && *in.Price > 0 {
		price = *in.Price
	} else {
		price = s.resolvePrice(ctx, hospitalID, in.Diet)
	}
	a := &Assignment{
		PatientID:  in.PatientID,
		HospitalID: hospitalID,
		Date:       date,
		FromTime:   in.FromTime,
		ToTime:     in.ToTime,
		Diet:       in.Diet,
		Note:       in.Note,
		Status:     StatusPending,
		Price:      price,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, "diet_assignment", a.ID.String(), "create", userID, a)
	return a, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, hospitalID *uuid.UUID) ([]*Assignment, error) {
	out, err := s.repo.ListByPatient(ctx, patientID, hospitalID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*Assignment{}
	}
	return out, nil
}

// scoped loads an assignment enforcing the hospital boundary.
func (s *Service) scoped(ctx context.Context, id uuid.UUID, hospitalID *uuid.UUID) (*Assignment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if hospitalID != nil && (a.HospitalID == nil || *a.HospitalID != *hospitalID) {
		return nil, ErrNotFound
	}
	return a, nil
}

func (s *Service) Deliver(ctx context.Context, id uuid.UUID, hospitalID *uuid.UUID, userID string) (*Assignment, error) {
	a, err := s.scoped(ctx, id, hospitalID)
	if err != nil {
		return nil, err
	}
	if a.Status != StatusPending {
		return nil, ErrNotPending
	}
	now := s.now()
	a.Status = StatusDelivered
	a.DeliveredAt = &now
	if userID != "" {
		a.DeliveredBy = &userID
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, "diet_assignment", a.ID.String(), "deliver", userID, a)
	return a, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, hospitalID *uuid.UUID, in UpdateInput, userID string) (*Assignment, error) {
	a, err := s.scoped(ctx, id, hospitalID)
	if err != nil {
		return nil, err
	}
	if a.Status != StatusPending {
		return nil, ErrNotPending
	}
	if in.Date != nil && *in.Date != "" {
		d, err := ist.StartOfDayYMD(*in.Date)
		if err != nil {
			return nil, err
		}
		a.Date = d
	}
	if in.Diet != nil && *in.Diet != "" {
		if !UpdateDiets[*in.Diet] {
			return nil, errors.New("diet is invalid")
		}
		a.Diet = *in.Diet
	}
	if in.FromTime != nil {
		a.FromTime = in.FromTime
	}
	if in.ToTime != nil {
		a.ToTime = in.ToTime
	}
	if in.Note != nil {
		a.Note = in.Note
	}
	if in.Price != nil && *in.Price >= 0 {
		a.Price = *in.Price
	}
	if in.Status != nil && *in.Status != "" {
		switch *in.Status {
		case StatusPending, StatusCancelled:
			a.Status = *in.Status
		default:
			return nil, errors.New("status is invalid")
		}
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, "diet_assignment", a.ID.String(), "update", userID, a)
	return a, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID, hospitalID *uuid.UUID, userID string) error {
	a, err := s.scoped(ctx, id, hospitalID)
	if err != nil {
		return err
	}
	if a.Status != StatusPending {
		return errors.New("only pending assignments can be deleted")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, "diet_assignment", id.String(), "delete", userID, map[string]string{"id": id.String()})
	return nil
}

// dateRange computes the inclusive day range for the batch operations. The
// patient's discharge day is an absolute ceiling on the end whenever set.
func dateRange(start time.Time, end time.Time, discharge *time.Time) (time.Time, time.Time) {
	if discharge != nil {
		d := ist.StartOfDay(*discharge)
		if end.After(d) {
			end = d
		}
	}
	return start, end
}

func (s *Service) BulkCreate(ctx context.Context, hospitalID *uuid.UUID, in BulkInput, userID string) (*BatchReport, error) {
	if in.PatientID == uuid.Nil || in.StartDate == "" || in.Diet == "" {
		return nil, errors.New("patientId, startDate and diet are required")
	}
	p, err := s.scopedPatient(ctx, in.PatientID, hospitalID)
	if err != nil {
		return nil, err
	}
	start, err := ist.StartOfDayYMD(in.StartDate)
	if err != nil {
		return nil, err
	}
	var end time.Time
	switch {
	case in.UntilDischarge && p.DischargeDate != nil:
		end = ist.StartOfDay(*p.DischargeDate)
	case in.Days > 0:
		end = ist.AddDays(start, in.Days-1)
	default:
		return nil, errors.New("provide days>0 or set untilDischarge with a discharge date")
	}
	start, end = dateRange(start, end, p.DischargeDate)

	price := s.resolvePrice(ctx, hospitalID, in.Diet)
	report := &BatchReport{Results: []RangeResult{}}
	created := 0
	for day := start; !day.After(end); day = ist.AddDays(day, 1) {
		a := &Assignment{
			PatientID:  in.PatientID,
			HospitalID: hospitalID,
			Date:       day,
			Diet:       in.Diet,
			Note:       in.Note,
			Status:     StatusPending,
			Price:      price,
		}
		if err := s.repo.Create(ctx, a); err != nil {
			report.Results = append(report.Results, RangeResult{Date: ist.DayString(day), Action: "skipped", Reason: err.Error()})
			continue
		}
		id := a.ID
		created++
		report.Results = append(report.Results, RangeResult{Date: ist.DayString(day), Action: "created", ID: &id})
	}
	report.Count = len(report.Results)
	s.audit.Record(ctx, "diet_assignment", in.PatientID.String(), "bulk_create", userID, map[string]interface{}{
		"diet": in.Diet, "from": ist.DayString(start), "to": ist.DayString(end), "created": created,
	})
	return report, nil
}

func (s *Service) ChangeDiet(ctx context.Context, hospitalID *uuid.UUID, in ChangeInput, userID string) (*BatchReport, error) {
	if in.PatientID == uuid.Nil || in.StartDate == "" || in.NewDiet == "" {
		return nil, errors.New("patientId, startDate and newDiet are required")
	}
	p, err := s.scopedPatient(ctx, in.PatientID, hospitalID)
	if err != nil {
		return nil, err
	}
	start, err := ist.StartOfDayYMD(in.StartDate)
	if err != nil {
		return nil, err
	}
	var end time.Time
	switch {
	case in.UntilDischarge && p.DischargeDate != nil:
		end = ist.StartOfDay(*p.DischargeDate)
	case in.EndDate != nil && *in.EndDate != "":
		end, err = ist.StartOfDayYMD(*in.EndDate)
		if err != nil {
			return nil, err
		}
	default:
		end = start
	}
	start, end = dateRange(start, end, p.DischargeDate)

	price := s.resolvePrice(ctx, hospitalID, in.NewDiet)
	report := &BatchReport{Results: []RangeResult{}}
	created := 0
	for day := start; !day.After(end); day = ist.AddDays(day, 1) {
		a := &Assignment{
			PatientID:  in.PatientID,
			HospitalID: hospitalID,
			Date:       day,
			Diet:       in.NewDiet,
			Note:       in.Note,
			Status:     StatusPending,
			Price:      price,
		}
		if err := s.repo.Create(ctx, a); err != nil {
			report.Results = append(report.Results, RangeResult{Date: ist.DayString(day), Action: "skipped", Reason: err.Error()})
			continue
		}
		id := a.ID
		created++
		report.Results = append(report.Results, RangeResult{Date: ist.DayString(day), Action: "created", ID: &id})
	}
	report.Count = len(report.Results)
	s.audit.Record(ctx, "diet_assignment", in.PatientID.String(), "change_diet", userID, map[string]interface{}{
		"newDiet": in.NewDiet, "from": ist.DayString(start), "to": ist.DayString(end), "created": created,
	})
	return report, nil
}

// GenerateToday materializes one assignment per eligible patient for today.
// A patient already holding an assignment dated today is skipped.
func (s *Service) GenerateToday(ctx context.Context, hospitalID *uuid.UUID, userID string) (*BatchReport, error) {
	today := ist.StartOfDay(s.now())
	patients, err := s.patients.ActiveWithDiet(ctx, hospitalID)
	if err != nil {
		return nil, err
	}
	report := &BatchReport{Results: []RangeResult{}}
	created := 0
	for _, p := range patients {
		pid := p.ID
		if p.DischargeDate != nil && p.DischargeDate.Before(today) {
			report.Results = append(report.Results, RangeResult{PatientID: &pid, Action: "skipped", Reason: "discharged"})
			continue
		}
		exists, err := s.repo.ExistsForPatientDate(ctx, p.ID, today, hospitalID)
		if err != nil {
			report.Results = append(report.Results, RangeResult{PatientID: &pid, Action: "skipped", Reason: err.Error()})
			continue
		}
		if exists {
			report.Results = append(report.Results, RangeResult{PatientID: &pid, Action: "skipped", Reason: "exists"})
			continue
		}
		note := ""
		if p.DietNote != nil {
			note = *p.DietNote
		}
		a := &Assignment{
			PatientID:  p.ID,
			HospitalID: hospitalID,
			Date:       today,
			Diet:       *p.Diet,
			Note:       &note,
			Status:     StatusPending,
			Price:      s.resolvePrice(ctx, hospitalID, *p.Diet),
		}
		if err := s.repo.Create(ctx, a); err != nil {
			report.Results = append(report.Results, RangeResult{PatientID: &pid, Action: "skipped", Reason: err.Error()})
			continue
		}
		id := a.ID
		created++
		report.Results = append(report.Results, RangeResult{PatientID: &pid, Action: "created", ID: &id})
	}
	report.Count = len(report.Results)
	s.audit.Record(ctx, "diet_assignment", ist.DayString(today), "generate", userID, map[string]interface{}{
		"created": created, "skipped": report.Count - created,
	})
	return report, nil
}
