package diettype

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("diet type not found")

type CreateInput struct {
	Name         string  `json:"name"`
	DefaultPrice float64 `json:"defaultPrice"`
	Active       *bool   `json:"active"`
}

type UpdateInput struct {
	Name         *string  `json:"name"`
	DefaultPrice *float64 `json:"defaultPrice"`
	Active       *bool    `json:"active"`
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, hospitalID *uuid.UUID, in CreateInput) (*DietType, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errors.New("name is required")
	}
	if in.DefaultPrice < 0 {
		return nil, errors.New("defaultPrice cannot be negative")
	}
	d := &DietType{
		HospitalID:   hospitalID,
		Name:         name,
		DefaultPrice: in.DefaultPrice,
		Active:       in.Active == nil || *in.Active,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// List returns the full catalog for admins. Other roles get only the names
// of active entries.
func (s *Service) List(ctx context.Context, hospitalID *uuid.UUID, admin bool) (interface{}, error) {
	items, err := s.repo.List(ctx, hospitalID)
	if err != nil {
		return nil, err
	}
	if admin {
		if items == nil {
			items = []*DietType{}
		}
		return items, nil
	}
	refs := []NameRef{}
	for _, d := range items {
		if d.Active {
			refs = append(refs, NameRef{ID: d.ID, Name: d.Name})
		}
	}
	return refs, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, hospitalID *uuid.UUID, in UpdateInput) (*DietType, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if hospitalID != nil && (d.HospitalID == nil || *d.HospitalID != *hospitalID) {
		return nil, ErrNotFound
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, errors.New("name cannot be empty")
		}
		d.Name = name
	}
	if in.DefaultPrice != nil {
		if *in.DefaultPrice < 0 {
			return nil, errors.New("defaultPrice cannot be negative")
		}
		d.DefaultPrice = *in.DefaultPrice
	}
	if in.Active != nil {
		d.Active = *in.Active
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID, hospitalID *uuid.UUID) error {
	if err := s.repo.Delete(ctx, id, hospitalID); err != nil {
		return ErrNotFound
	}
	return nil
}
