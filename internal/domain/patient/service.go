package patient

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mealtrace/catering/internal/domain/audit"
	"github.com/mealtrace/catering/internal/platform/ist"
)

var ErrNotFound = errors.New("patient not found")

var (
	phoneRe = regexp.MustCompile(`^[0-9+()\-\s]{5,20}$`)
	timeRe  = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)
)

var validStatuses = map[string]bool{
	StatusInPatient: true, StatusDischarged: true, StatusOutpatient: true,
}

var validTransactionTypes = map[string]bool{
	"cash": true, "card": true, "insurance": true,
}

var validSexes = map[string]bool{
	"male": true, "female": true, "other": true,
}

type Service struct {
	repo  Repository
	audit audit.Recorder
}

func NewService(repo Repository, rec audit.Recorder) *Service {
	return &Service{repo: repo, audit: rec}
}

// apply validates in and copies the accepted fields onto p. requireName is
// set on create; updates may omit the name to leave it unchanged.
func apply(p *Patient, in Input, requireName bool) []FieldError {
	var errs []FieldError

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			errs = append(errs, FieldError{Field: "name", Message: "name is required"})
		} else {
			p.Name = name
		}
	} else if requireName {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	}

	if in.Phone != nil && *in.Phone != "" {
		phone := strings.TrimSpace(*in.Phone)
		if !phoneRe.MatchString(phone) {
			errs = append(errs, FieldError{Field: "phone", Message: "phone format is invalid"})
		} else {
			p.Phone = &phone
		}
	}

	if in.DOB != nil && *in.DOB != "" {
		d, err := parseDate(*in.DOB)
		if err != nil {
			errs = append(errs, FieldError{Field: "dob", Message: "dob is invalid"})
		} else {
			p.DOB = &d
		}
	}

	if in.InDate != nil && *in.InDate != "" {
		d, err := parseDate(*in.InDate)
		if err != nil {
			errs = append(errs, FieldError{Field: "inDate", Message: "inDate is invalid"})
		} else {
			p.InDate = &d
		}
	}

	if in.InTime != nil && *in.InTime != "" {
		t := strings.TrimSpace(*in.InTime)
		if !timeRe.MatchString(t) {
			errs = append(errs, FieldError{Field: "inTime", Message: "inTime must be HH:MM"})
		} else {
			p.InTime = &t
		}
	}

	if in.DischargeDate != nil && *in.DischargeDate != "" {
		d, err := parseDate(*in.DischargeDate)
		if err != nil {
			errs = append(errs, FieldError{Field: "dischargeDate", Message: "dischargeDate is invalid"})
		} else {
			p.DischargeDate = &d
		}
	}

	if in.Status != nil && *in.Status != "" {
		if !validStatuses[*in.Status] {
			errs = append(errs, FieldError{Field: "status", Message: "status is invalid"})
		} else {
			p.Status = *in.Status
		}
	}

	if in.TransactionType != nil && *in.TransactionType != "" {
		if !validTransactionTypes[*in.TransactionType] {
			errs = append(errs, FieldError{Field: "transactionType", Message: "transactionType is invalid"})
		} else {
			p.TransactionType = in.TransactionType
		}
	}

	if in.Age != nil {
		if *in.Age < 0 || *in.Age > 150 {
			errs = append(errs, FieldError{Field: "age", Message: "age is invalid"})
		} else {
			p.Age = in.Age
		}
	}

	if in.Sex != nil && *in.Sex != "" {
		if !validSexes[*in.Sex] {
			errs = append(errs, FieldError{Field: "sex", Message: "sex is invalid"})
		} else {
			p.Sex = in.Sex
		}
	}

	if in.RoomType != nil {
		p.RoomType = in.RoomType
	}
	if in.RoomNo != nil {
		p.RoomNo = in.RoomNo
	}
	if in.Bed != nil {
		p.Bed = in.Bed
	}
	if in.Diet != nil {
		p.Diet = in.Diet
	}
	if in.DietNote != nil {
		p.DietNote = in.DietNote
	}
	if in.Allergies != nil {
		p.Allergies = in.Allergies
	}
	if in.Notes != nil {
		p.Notes = in.Notes
	}

	return errs
}

// parseDate accepts YYYY-MM-DD or RFC 3339 admission dates and normalizes
// plain dates to the regional day start.
func parseDate(s string) (time.Time, error) {
	if len(s) == 10 {
		return ist.StartOfDayYMD(s)
	}
	return time.Parse(time.RFC3339, s)
}

type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid input"
	}
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return strings.Join(msgs, "; ")
}

func (s *Service) Create(ctx context.Context, hospitalID uuid.UUID, in Input, userID string) (*Patient, error) {
	p := &Patient{HospitalID: hospitalID, Status: StatusInPatient}
	if errs := apply(p, in, true); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, "patient", p.ID.String(), "create", userID, in)
	return p, nil
}

// scoped loads a patient and enforces the caller's hospital scope. A patient
// belonging to another hospital reads as not found.
func (s *Service) scoped(ctx context.Context, id uuid.UUID, hospitalID *uuid.UUID) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if hospitalID != nil && p.HospitalID != *hospitalID {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID, hospitalID *uuid.UUID) (*Patient, error) {
	return s.scoped(ctx, id, hospitalID)
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, hospitalID *uuid.UUID, in Input, userID string) (*Patient, error) {
	p, err := s.scoped(ctx, id, hospitalID)
	if err != nil {
		return nil, err
	}
	if errs := apply(p, in, false); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, "patient", p.ID.String(), "update", userID, in)
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID, hospitalID *uuid.UUID, userID string) error {
	if _, err := s.scoped(ctx, id, hospitalID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, "patient", id.String(), "delete", userID, nil)
	return nil
}

// Discharge marks the patient discharged on the given day. The discharge
// date is set once; a second discharge is rejected.
func (s *Service) Discharge(ctx context.Context, id uuid.UUID, hospitalID *uuid.UUID, ymd string, userID string) (*Patient, error) {
	p, err := s.scoped(ctx, id, hospitalID)
	if err != nil {
		return nil, err
	}
	if p.Status == StatusDischarged || p.DischargeDate != nil {
		return nil, errors.New("patient is already discharged")
	}
	d, err := ist.StartOfDayYMD(ymd)
	if err != nil {
		return nil, err
	}
	p.DischargeDate = &d
	p.Status = StatusDischarged
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, "patient", p.ID.String(), "discharge", userID, map[string]string{"date": ymd})
	return p, nil
}

func (s *Service) RoomTypes(ctx context.Context, hospitalID *uuid.UUID) ([]string, error) {
	return s.repo.RoomTypes(ctx, hospitalID)
}
