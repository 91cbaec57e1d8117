// Package jobs holds the scheduled daily generation of orders from diet
// plans.
package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mealtrace/catering/internal/domain/dietplan"
	"github.com/mealtrace/catering/internal/domain/menuitem"
	"github.com/mealtrace/catering/internal/domain/order"
	"github.com/mealtrace/catering/internal/platform/ist"
)

// Result reports the outcome for one plan processed by a run.
type Result struct {
	PlanID uuid.UUID `json:"planId"`
	Action string    `json:"action"`
	Reason string    `json:"reason,omitempty"`
}

type Report struct {
	Count   int      `json:"count"`
	Results []Result `json:"results"`
}

type Generator struct {
	plans     dietplan.Repository
	orders    order.Repository
	menuItems menuitem.Repository
	logger    zerolog.Logger
	now       func() time.Time
}

func NewGenerator(plans dietplan.Repository, orders order.Repository, menuItems menuitem.Repository, logger zerolog.Logger) *Generator {
	return &Generator{
		plans:     plans,
		orders:    orders,
		menuItems: menuItems,
		logger:    logger,
		now:       time.Now,
	}
}

// Run expands every plan covering today into one order. Each plan is
// processed independently; a failing plan is reported and never aborts the
// batch.
func (g *Generator) Run(ctx context.Context) (*Report, error) {
	today := ist.StartOfDay(g.now())
	plans, err := g.plans.ActiveOn(ctx, today)
	if err != nil {
		return nil, err
	}

	report := &Report{Results: []Result{}}
	for _, p := range plans {
		res := g.processPlan(ctx, p, today)
		report.Results = append(report.Results, res)
		if res.Action == "skipped" && res.Reason != "" {
			g.logger.Debug().Str("plan_id", p.ID.String()).Str("reason", res.Reason).Msg("plan skipped")
		}
	}
	report.Count = len(report.Results)
	return report, nil
}

func (g *Generator) processPlan(ctx context.Context, p *dietplan.Plan, today time.Time) Result {
	// One-shot plans only fire on their exact start day.
	if (p.Recurrence == dietplan.RecurrenceNone || p.Recurrence == "") && !p.StartDate.Equal(today) {
		return Result{PlanID: p.ID, Action: "skipped", Reason: "one-shot plan not starting today"}
	}

	exists, err := g.orders.ExistsForPlanDate(ctx, p.ID, today, p.HospitalID)
	if err != nil {
		return Result{PlanID: p.ID, Action: "skipped", Reason: err.Error()}
	}
	if exists {
		return Result{PlanID: p.ID, Action: "skipped", Reason: "already generated"}
	}

	// Weekday remapped so Monday is 0, matching the template day indexes.
	dow, err := ist.DayOfWeekYMD(ist.DayString(today))
	if err != nil {
		return Result{PlanID: p.ID, Action: "skipped", Reason: err.Error()}
	}
	day := p.DayFor((dow + 6) % 7)
	if day == nil {
		return Result{PlanID: p.ID, Action: "skipped", Reason: "no template days"}
	}

	var ids []uuid.UUID
	type pending struct {
		id    uuid.UUID
		slot  string
		notes string
	}
	var wanted []pending
	for _, meal := range day.Meals {
		for _, itm := range meal.Items {
			id, err := uuid.Parse(itm.ID)
			if err != nil {
				continue
			}
			ids = append(ids, id)
			wanted = append(wanted, pending{id: id, slot: meal.Slot, notes: itm.Notes})
		}
	}
	menus, err := g.menuItems.GetByIDs(ctx, ids)
	if err != nil {
		return Result{PlanID: p.ID, Action: "skipped", Reason: err.Error()}
	}

	var items []order.Item
	for _, w := range wanted {
		menu, ok := menus[w.id]
		if !ok {
			// Referenced menu item no longer exists.
			continue
		}
		pid := uuid.Nil
		if p.PatientID != nil {
			pid = *p.PatientID
		}
		items = append(items, order.Item{
			PatientID:  pid,
			MenuItemID: menu.ID,
			Quantity:   1,
			MealSlot:   w.slot,
			Notes:      w.notes,
			UnitPrice:  menu.Price,
		})
	}
	if len(items) == 0 {
		return Result{PlanID: p.ID, Action: "skipped", Reason: "no resolvable items"}
	}

	notes := "Generated from diet plan"
	o := &order.Order{
		HospitalID:     p.HospitalID,
		Date:           today,
		Items:          items,
		KitchenStatus:  order.KitchenPending,
		DeliveryStatus: order.DeliveryPending,
		Notes:          &notes,
		SourcePlanID:   &p.ID,
	}
	if err := g.orders.Create(ctx, o); err != nil {
		return Result{PlanID: p.ID, Action: "skipped", Reason: err.Error()}
	}
	return Result{PlanID: p.ID, Action: "created"}
}
