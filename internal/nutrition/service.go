// ABOUTME: Nutrition logging service: alias and explicit-label paths.
// ABOUTME: Normalizes consumption times into a fixed local timezone.
package nutrition

import (
	"fmt"
	"time"

	"github.com/harperreed/hcbridge/internal/catalog"
	"github.com/harperreed/hcbridge/internal/estimator"
	"github.com/harperreed/hcbridge/internal/models"
	"github.com/harperreed/hcbridge/internal/storage"
)

// Service logs nutrition events against the store using an injected catalog.
// The location is the fixed local timezone used to derive local dates; it is
// captured once at construction and never changes afterwards.
type Service struct {
	store   *storage.DB
	catalog *catalog.Catalog
	loc     *time.Location
	now     func() time.Time
}

// NewService builds a logging service. A nil location means the process
// local zone.
func NewService(store *storage.DB, cat *catalog.Catalog, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{store: store, catalog: cat, loc: loc, now: time.Now}
}

// Location returns the fixed local timezone of this service.
func (s *Service) Location() *time.Location { return s.loc }

// Catalog returns the injected alias catalog.
func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

// LocalDate renders a timestamp as a local calendar date.
func (s *Service) LocalDate(t time.Time) string {
	return t.In(s.loc).Format("2006-01-02")
}

// NoonOf anchors a date-only backfill at 12:00 local time.
func (s *Service) NoonOf(localDate string) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", localDate, s.loc)
	if err != nil {
		return time.Time{}, models.Invalid("local_date", "invalid date: %s", localDate)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, s.loc), nil
}

// EventInput describes one explicit-label log request. Macro values are per
// unit; Count scales them.
type EventInput struct {
	ConsumedAt *time.Time
	Alias      *string
	Label      string
	Count      float64
	Unit       *string
	Kcal       *float64
	ProteinG   *float64
	FatG       *float64
	CarbsG     *float64
	Micros     map[string]float64
	Note       *string
}

// LogEvent persists one nutrition event with its exploded nutrient rows.
func (s *Service) LogEvent(in EventInput) (*models.NutritionEvent, error) {
	if in.Label == "" {
		return nil, models.Invalid("label", "required")
	}
	if in.Count <= 0 {
		return nil, models.Invalid("count", "must be > 0")
	}

	at := s.now().In(s.loc)
	if in.ConsumedAt != nil {
		at = in.ConsumedAt.In(s.loc)
	}

	ev := &models.NutritionEvent{
		ConsumedAt: at,
		LocalDate:  s.LocalDate(at),
		Alias:      in.Alias,
		Label:      in.Label,
		Count:      in.Count,
		Unit:       in.Unit,
		Kcal:       in.Kcal,
		ProteinG:   in.ProteinG,
		FatG:       in.FatG,
		CarbsG:     in.CarbsG,
		Micros:     in.Micros,
		Note:       in.Note,
	}
	if _, err := s.store.InsertNutritionEvent(ev); err != nil {
		return nil, fmt.Errorf("log event: %w", err)
	}
	return ev, nil
}

// LogAlias logs a catalog item by alias. Items without explicit micros get
// estimated micros so day totals do not report nutrients as missing.
func (s *Service) LogAlias(alias string, consumedAt *time.Time, count float64, note *string) (*models.NutritionEvent, error) {
	item, ok := s.catalog.Lookup(alias)
	if !ok {
		return nil, models.Invalid("alias", "unknown alias: %s", alias)
	}

	micros := item.Micros
	if micros == nil && item.Kcal != nil && *item.Kcal > 0 {
		micros = estimator.EstimateMicros(item.Label, item.Kcal, item.ProteinG, item.FatG, item.CarbsG)
	}

	a := item.Alias
	return s.LogEvent(EventInput{
		ConsumedAt: consumedAt,
		Alias:      &a,
		Label:      item.Label,
		Count:      count,
		Unit:       item.Unit,
		Kcal:       item.Kcal,
		ProteinG:   item.ProteinG,
		FatG:       item.FatG,
		CarbsG:     item.CarbsG,
		Micros:     micros,
		Note:       note,
	})
}

// DayEvents lists the day's events with labels normalized through the
// catalog, so old logs display the current catalog wording.
func (s *Service) DayEvents(localDate string) ([]*models.NutritionEvent, error) {
	events, err := s.store.DayEvents(localDate)
	if err != nil {
		return nil, err
	}
	for _, ev := range events {
		if ev.Alias != nil {
			if item, ok := s.catalog.Lookup(*ev.Alias); ok {
				ev.Label = item.Label
			}
		}
	}
	return events, nil
}

// DayTotals sums the day's nutrients from the exploded table.
func (s *Service) DayTotals(localDate string) (*models.DayTotals, error) {
	return s.store.DayTotals(localDate)
}

// DeleteEvent removes an event and its nutrient rows.
func (s *Service) DeleteEvent(id int64) error {
	return s.store.DeleteNutritionEvent(id)
}
