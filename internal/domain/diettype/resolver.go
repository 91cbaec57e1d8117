package diettype

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// PriceResolver maps a free-text diet label to a catalog price.
type PriceResolver interface {
	Resolve(ctx context.Context, hospitalID *uuid.UUID, dietName string) (float64, error)
}

type resolver struct {
	repo Repository
}

func NewPriceResolver(repo Repository) PriceResolver {
	return &resolver{repo: repo}
}

// Resolve walks three tiers against the catalog:
//  1. hospital-scoped exact match (case-insensitive, trimmed)
//  2. global exact match
//  3. fuzzy match where the diet label contains the catalog name
//
// Unmatched labels and non-positive catalog prices resolve to 0.
func (r *resolver) Resolve(ctx context.Context, hospitalID *uuid.UUID, dietName string) (float64, error) {
	want := strings.ToLower(strings.TrimSpace(dietName))
	if want == "" {
		return 0, nil
	}
	all, err := r.repo.All(ctx)
	if err != nil {
		return 0, err
	}

	if hospitalID != nil {
		for _, d := range all {
			if d.HospitalID != nil && *d.HospitalID == *hospitalID &&
				strings.ToLower(strings.TrimSpace(d.Name)) == want {
				return clamp(d.DefaultPrice), nil
			}
		}
	}
	for _, d := range all {
		if strings.ToLower(strings.TrimSpace(d.Name)) == want {
			return clamp(d.DefaultPrice), nil
		}
	}
	for _, d := range all {
		catalog := strings.ToLower(strings.TrimSpace(d.Name))
		if catalog != "" && strings.Contains(want, catalog) {
			return clamp(d.DefaultPrice), nil
		}
	}
	return 0, nil
}

func clamp(price float64) float64 {
	if price <= 0 {
		return 0
	}
	return price
}
