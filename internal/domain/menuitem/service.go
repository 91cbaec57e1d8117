package menuitem

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("menu item not found")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, hospitalID *uuid.UUID, in Input) (*MenuItem, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, errors.New("name is required")
	}
	m := &MenuItem{HospitalID: hospitalID, Name: strings.TrimSpace(*in.Name)}
	applyOptional(m, in)
	if m.Price < 0 {
		return nil, errors.New("price cannot be negative")
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func applyOptional(m *MenuItem, in Input) {
	if in.Description != nil {
		m.Description = in.Description
	}
	if in.DietTags != nil {
		m.DietTags = in.DietTags
	}
	if in.Calories != nil {
		m.Calories = in.Calories
	}
	if in.Allergens != nil {
		m.Allergens = in.Allergens
	}
	if in.Price != nil {
		m.Price = *in.Price
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*MenuItem, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return m, nil
}

func (s *Service) List(ctx context.Context, hospitalID *uuid.UUID, limit, offset int) ([]*MenuItem, int, error) {
	return s.repo.List(ctx, hospitalID, limit, offset)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*MenuItem, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, errors.New("name cannot be empty")
		}
		m.Name = name
	}
	applyOptional(m, in)
	if m.Price < 0 {
		return nil, errors.New("price cannot be negative")
	}
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}
