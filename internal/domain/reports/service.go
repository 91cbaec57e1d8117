package reports

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mealtrace/catering/internal/domain/assignment"
	"github.com/mealtrace/catering/internal/domain/diettype"
	"github.com/mealtrace/catering/internal/domain/patient"
	"github.com/mealtrace/catering/internal/platform/ist"
)

type Service struct {
	assignments assignment.Repository
	patients    patient.Repository
	prices      diettype.PriceResolver
	logger      zerolog.Logger
	now         func() time.Time
}

func NewService(assignments assignment.Repository, patients patient.Repository, prices diettype.PriceResolver, logger zerolog.Logger) *Service {
	return &Service{
		assignments: assignments,
		patients:    patients,
		prices:      prices,
		logger:      logger,
		now:         time.Now,
	}
}

// patientMap resolves the distinct patients referenced by a set of
// assignments. Assignments whose patient is gone are simply left out of
// the map; callers drop those rows.
func (s *Service) patientMap(ctx context.Context, items []*assignment.Assignment) map[uuid.UUID]*patient.Patient {
	out := map[uuid.UUID]*patient.Patient{}
	for _, a := range items {
		if _, seen := out[a.PatientID]; seen {
			continue
		}
		p, err := s.patients.GetByID(ctx, a.PatientID)
		if err != nil {
			continue
		}
		out[a.PatientID] = p
	}
	return out
}

// SupervisorToday lists a day's assignments joined to patient room details.
// An empty ymd selects today.
func (s *Service) SupervisorToday(ctx context.Context, hospitalID *uuid.UUID, ymd, roomType, roomNo string) ([]SupervisorRow, error) {
	var day time.Time
	if ymd == "" {
		day = ist.StartOfDay(s.now())
	} else {
		var err error
		day, err = ist.StartOfDayYMD(ymd)
		if err != nil {
			return nil, err
		}
	}
	items, err := s.assignments.ListByDate(ctx, hospitalID, day)
	if err != nil {
		return nil, err
	}
	patients := s.patientMap(ctx, items)

	rows := []SupervisorRow{}
	for _, a := range items {
		p, ok := patients[a.PatientID]
		if !ok {
			continue
		}
		if roomType != "" && deref(p.RoomType) != roomType {
			continue
		}
		if roomNo != "" && deref(p.RoomNo) != roomNo {
			continue
		}
		rows = append(rows, SupervisorRow{
			ID:          a.ID,
			Date:        a.Date,
			PatientID:   p.ID,
			PatientName: p.Name,
			Phone:       deref(p.Phone),
			RoomType:    deref(p.RoomType),
			RoomNo:      deref(p.RoomNo),
			Bed:         deref(p.Bed),
			Diet:        a.Diet,
			Note:        deref(a.Note),
			Status:      a.Status,
			FromTime:    deref(a.FromTime),
			ToTime:      deref(a.ToTime),
		})
	}
	return rows, nil
}

// BusinessRange bills completed stays inside the window. Only patients with
// both admission and discharge inside [from, to] appear; each bill sums the
// current catalog price of every delivered assignment dated within the stay.
// Stored assignment prices are display snapshots and are deliberately not
// used here.
func (s *Service) BusinessRange(ctx context.Context, hospitalID *uuid.UUID, fromYMD, toYMD string) ([]BusinessRangeRow, error) {
	if fromYMD == "" || toYMD == "" {
		return nil, errors.New("from and to are required (YYYY-MM-DD)")
	}
	from, err := ist.StartOfDayYMD(fromYMD)
	if err != nil {
		return nil, err
	}
	to, err := ist.EndOfDayYMD(toYMD)
	if err != nil {
		return nil, err
	}
	patients, err := s.patients.AdmittedWithin(ctx, hospitalID, from, to)
	if err != nil {
		return nil, err
	}

	rows := []BusinessRangeRow{}
	for _, p := range patients {
		stayFrom := ist.DayString(*p.InDate)
		stayTo := ist.DayString(*p.DischargeDate)

		items, err := s.assignments.ListByPatient(ctx, p.ID, hospitalID)
		if err != nil {
			return nil, err
		}
		var bill float64
		count := 0
		for _, a := range items {
			if a.Status != assignment.StatusDelivered {
				continue
			}
			day := ist.DayString(a.Date)
			if day < stayFrom || day > stayTo {
				continue
			}
			price, err := s.prices.Resolve(ctx, hospitalID, a.Diet)
			if err != nil {
				s.logger.Error().Err(err).Str("diet", a.Diet).Msg("billing price resolution failed")
				price = 0
			}
			bill += price
			count++
		}
		rows = append(rows, BusinessRangeRow{
			Name:           p.Name,
			Phone:          deref(p.Phone),
			InDate:         *p.InDate,
			DischargeDate:  p.DischargeDate,
			BillAmount:     bill,
			DeliveredCount: count,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].InDate.Equal(rows[j].InDate) {
			return rows[i].InDate.Before(rows[j].InDate)
		}
		return rows[i].Name < rows[j].Name
	})
	return rows, nil
}

// bucketFor formats a day-start instant into the requested time bucket.
func bucketFor(date time.Time, granularity string) string {
	local := date.In(ist.Location)
	switch granularity {
	case "week":
		y, w := local.ISOWeek()
		return fmt.Sprintf("%d-W%02d", y, w)
	case "month":
		return local.Format("2006-01")
	default:
		return ist.DayString(date)
	}
}

// Analytics aggregates the ledger over [from, to]. The status filter
// defaults to delivered; "all" disables it.
func (s *Service) Analytics(ctx context.Context, hospitalID *uuid.UUID, fromYMD, toYMD, granularity, status string) (*Analytics, error) {
	if fromYMD == "" || toYMD == "" {
		return nil, errors.New("from and to are required (YYYY-MM-DD)")
	}
	from, err := ist.StartOfDayYMD(fromYMD)
	if err != nil {
		return nil, err
	}
	to, err := ist.StartOfDayYMD(toYMD)
	if err != nil {
		return nil, err
	}
	if status == "" {
		status = assignment.StatusDelivered
	}

	items, err := s.assignments.ListByDateRange(ctx, hospitalID, from, to)
	if err != nil {
		return nil, err
	}
	filtered := items[:0:0]
	for _, a := range items {
		if status != "all" && a.Status != status {
			continue
		}
		filtered = append(filtered, a)
	}
	patients := s.patientMap(ctx, filtered)

	// Time buckets keyed by bucket label, counts pivoted per diet.
	overMap := map[string]*OverTimePoint{}
	var bucketOrder []string
	dietDist := map[string]int{}
	payerMap := map[string]*PayerRow{}
	roomMap := map[string]*RoomTypeRow{}
	seenPatients := map[uuid.UUID]bool{}
	totals := Totals{}

	roomTypes, err := s.patients.RoomTypes(ctx, hospitalID)
	if err != nil {
		return nil, err
	}
	for _, rt := range roomTypes {
		roomMap[rt] = &RoomTypeRow{RoomType: rt, Counts: map[string]int{}}
	}
	roomMap["Unknown"] = &RoomTypeRow{RoomType: "Unknown", Counts: map[string]int{}}

	for _, a := range filtered {
		bucket := bucketFor(a.Date, granularity)
		pt, ok := overMap[bucket]
		if !ok {
			pt = &OverTimePoint{Bucket: bucket, Counts: map[string]int{}}
			overMap[bucket] = pt
			bucketOrder = append(bucketOrder, bucket)
		}
		pt.Counts[a.Diet]++
		pt.Revenue += a.Price

		dietDist[a.Diet]++

		room := "Unknown"
		payer := "Unknown"
		if p, ok := patients[a.PatientID]; ok {
			if p.RoomType != nil && *p.RoomType != "" {
				room = *p.RoomType
			}
			if p.TransactionType != nil && *p.TransactionType != "" {
				payer = *p.TransactionType
			}
		}
		row, ok := roomMap[room]
		if !ok {
			row = &RoomTypeRow{RoomType: room, Counts: map[string]int{}}
			roomMap[room] = row
		}
		row.Counts[a.Diet]++
		row.Total++

		pr, ok := payerMap[payer]
		if !ok {
			pr = &PayerRow{Payer: payer}
			payerMap[payer] = pr
		}
		pr.Count++
		pr.Revenue += a.Price

		if a.Status == assignment.StatusDelivered {
			totals.DeliveredCount++
		}
		if !seenPatients[a.PatientID] {
			seenPatients[a.PatientID] = true
		}
		totals.TotalRevenue += a.Price
	}
	totals.PatientCount = len(seenPatients)

	sort.Strings(bucketOrder)
	out := &Analytics{Totals: totals}
	out.OverTime = make([]OverTimePoint, 0, len(bucketOrder))
	for _, b := range bucketOrder {
		out.OverTime = append(out.OverTime, *overMap[b])
	}

	roomKeys := make([]string, 0, len(roomMap))
	for k := range roomMap {
		roomKeys = append(roomKeys, k)
	}
	sort.Strings(roomKeys)
	out.ByRoomType = make([]RoomTypeRow, 0, len(roomKeys))
	for _, k := range roomKeys {
		out.ByRoomType = append(out.ByRoomType, *roomMap[k])
	}

	dietKeys := make([]string, 0, len(dietDist))
	for k := range dietDist {
		dietKeys = append(dietKeys, k)
	}
	sort.Strings(dietKeys)
	out.DietDistribution = make([]LabelCount, 0, len(dietKeys))
	for _, k := range dietKeys {
		out.DietDistribution = append(out.DietDistribution, LabelCount{Label: k, Count: dietDist[k]})
	}

	payerKeys := make([]string, 0, len(payerMap))
	for k := range payerMap {
		payerKeys = append(payerKeys, k)
	}
	sort.Strings(payerKeys)
	out.PayerMix = make([]PayerRow, 0, len(payerKeys))
	for _, k := range payerKeys {
		out.PayerMix = append(out.PayerMix, *payerMap[k])
	}

	return out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
