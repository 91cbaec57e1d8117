package dietplan

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mealtrace/catering/internal/domain/order"
	"github.com/mealtrace/catering/internal/platform/ist"
)

var ErrNotFound = errors.New("diet plan not found")

type Input struct {
	Name       *string    `json:"name"`
	PatientID  *uuid.UUID `json:"patientId"`
	StartDate  string     `json:"startDate"`
	EndDate    *string    `json:"endDate"`
	Recurrence string     `json:"recurrence"`
	Days       []Day      `json:"days"`
	Notes      *string    `json:"notes"`
}

// CreateResult carries the plan plus the immediate order, when one was made.
type CreateResult struct {
	Plan         *Plan        `json:"plan"`
	CreatedOrder *order.Order `json:"createdOrder"`
}

type Service struct {
	repo      Repository
	orderRepo order.Repository
	logger    zerolog.Logger
}

func NewService(repo Repository, orderRepo order.Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, orderRepo: orderRepo, logger: logger}
}

// Create stores the plan. When a patient is attached, an order for the start
// day is cut immediately from the first template day; a failure there is
// logged and does not fail the plan creation.
func (s *Service) Create(ctx context.Context, hospitalID *uuid.UUID, in Input) (*CreateResult, error) {
	if in.StartDate == "" {
		return nil, errors.New("startDate is required")
	}
	start, err := ist.StartOfDayYMD(in.StartDate)
	if err != nil {
		return nil, err
	}
	p := &Plan{
		HospitalID: hospitalID,
		Name:       in.Name,
		PatientID:  in.PatientID,
		StartDate:  start,
		Recurrence: in.Recurrence,
		Days:       in.Days,
		Notes:      in.Notes,
	}
	if p.Recurrence == "" {
		p.Recurrence = RecurrenceNone
	}
	if !ValidRecurrences[p.Recurrence] {
		return nil, errors.New("recurrence is invalid")
	}
	if in.EndDate != nil && *in.EndDate != "" {
		end, err := ist.StartOfDayYMD(*in.EndDate)
		if err != nil {
			return nil, err
		}
		p.EndDate = &end
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	res := &CreateResult{Plan: p}
	if p.PatientID != nil {
		if o, err := s.createImmediateOrder(ctx, p); err != nil {
			s.logger.Error().Err(err).Str("plan_id", p.ID.String()).Msg("immediate order failed")
		} else {
			res.CreatedOrder = o
		}
	}
	return res, nil
}

func (s *Service) createImmediateOrder(ctx context.Context, p *Plan) (*order.Order, error) {
	if len(p.Days) == 0 {
		return nil, nil
	}
	var items []order.Item
	for _, meal := range p.Days[0].Meals {
		for _, itm := range meal.Items {
			id, err := uuid.Parse(itm.ID)
			if err != nil {
				continue
			}
			items = append(items, order.Item{
				PatientID:  *p.PatientID,
				MenuItemID: id,
				Quantity:   1,
				MealSlot:   meal.Slot,
				Notes:      itm.Notes,
			})
		}
	}
	if len(items) == 0 {
		return nil, nil
	}
	notes := "Created from diet plan"
	o := &order.Order{
		HospitalID:     p.HospitalID,
		Date:           p.StartDate,
		Items:          items,
		KitchenStatus:  order.KitchenPending,
		DeliveryStatus: order.DeliveryPending,
		Notes:          &notes,
		SourcePlanID:   &p.ID,
	}
	if err := s.orderRepo.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Plan, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, hospitalID *uuid.UUID) ([]*Plan, error) {
	out, err := s.repo.List(ctx, hospitalID, 100)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*Plan{}
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}
