package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mealtrace/catering/internal/domain/audit"
	"github.com/mealtrace/catering/internal/platform/ist"
)

var ErrNotFound = errors.New("order not found")

type ItemInput struct {
	PatientID  uuid.UUID `json:"patientId"`
	MenuItemID uuid.UUID `json:"menuItemId"`
	Quantity   int       `json:"quantity"`
	Notes      string    `json:"notes"`
	MealSlot   string    `json:"mealSlot"`
}

type CreateInput struct {
	Date  string      `json:"date"`
	Items []ItemInput `json:"items"`
	Notes *string     `json:"notes"`
}

type Service struct {
	repo  Repository
	audit audit.Recorder
	now   func() time.Time
}

func NewService(repo Repository, rec audit.Recorder) *Service {
	return &Service{repo: repo, audit: rec, now: time.Now}
}

// Create records a manual order for a day. An empty date means today.
func (s *Service) Create(ctx context.Context, hospitalID *uuid.UUID, in CreateInput, userID string) (*Order, error) {
	if len(in.Items) == 0 {
		return nil, errors.New("items required")
	}
	var date time.Time
	if in.Date == "" {
		date = ist.StartOfDay(s.now())
	} else {
		var err error
		date, err = ist.StartOfDayYMD(in.Date)
		if err != nil {
			return nil, err
		}
	}
	items := make([]Item, 0, len(in.Items))
	for _, it := range in.Items {
		qty := it.Quantity
		if qty <= 0 {
			qty = 1
		}
		items = append(items, Item{
			PatientID:  it.PatientID,
			MenuItemID: it.MenuItemID,
			Quantity:   qty,
			Notes:      it.Notes,
			MealSlot:   it.MealSlot,
		})
	}
	o := &Order{
		HospitalID:     hospitalID,
		Date:           date,
		Items:          items,
		KitchenStatus:  KitchenPending,
		DeliveryStatus: DeliveryPending,
		Notes:          in.Notes,
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, "order", o.ID.String(), "create", userID, map[string]bool{"manual": true})
	return o, nil
}

// ListForDay returns the orders for a day string, defaulting to today.
func (s *Service) ListForDay(ctx context.Context, hospitalID *uuid.UUID, ymd string) ([]*Order, error) {
	var date time.Time
	if ymd == "" {
		date = ist.StartOfDay(s.now())
	} else {
		var err error
		date, err = ist.StartOfDayYMD(ymd)
		if err != nil {
			return nil, err
		}
	}
	out, err := s.repo.ListByDate(ctx, hospitalID, date, 500)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*Order{}
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return o, nil
}

func (s *Service) UpdateKitchenStatus(ctx context.Context, id uuid.UUID, status, userID string) (*Order, error) {
	if !ValidKitchenStatuses[status] {
		return nil, fmt.Errorf("invalid kitchen status: %s", status)
	}
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	o.KitchenStatus = status
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, "order", o.ID.String(), "kitchenStatus:"+status, userID, map[string]string{"kitchenStatus": status})
	return o, nil
}

func (s *Service) UpdateDeliveryStatus(ctx context.Context, id uuid.UUID, status, userID string) (*Order, error) {
	if !ValidDeliveryStatuses[status] {
		return nil, fmt.Errorf("invalid delivery status: %s", status)
	}
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	o.DeliveryStatus = status
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, "order", o.ID.String(), "deliveryStatus:"+status, userID, map[string]string{"deliveryStatus": status})
	return o, nil
}

// AdminStatusUpdate sets either status, leaving blank fields untouched.
func (s *Service) AdminStatusUpdate(ctx context.Context, id uuid.UUID, kitchenStatus, deliveryStatus, userID string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if kitchenStatus != "" {
		if !ValidKitchenStatuses[kitchenStatus] {
			return nil, fmt.Errorf("invalid kitchen status: %s", kitchenStatus)
		}
		o.KitchenStatus = kitchenStatus
	}
	if deliveryStatus != "" {
		if !ValidDeliveryStatuses[deliveryStatus] {
			return nil, fmt.Errorf("invalid delivery status: %s", deliveryStatus)
		}
		o.DeliveryStatus = deliveryStatus
	}
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, "order", o.ID.String(), "adminStatusUpdate", userID,
		map[string]string{"kitchenStatus": kitchenStatus, "deliveryStatus": deliveryStatus})
	return o, nil
}

func (s *Service) BulkDeliver(ctx context.Context, ids []uuid.UUID, userID string) (int, error) {
	if len(ids) == 0 {
		return 0, errors.New("ids required")
	}
	n, err := s.repo.BulkDeliver(ctx, ids)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		s.audit.Record(ctx, "order", id.String(), "deliveryStatus:delivered", userID, map[string]bool{"bulk": true})
	}
	return n, nil
}
