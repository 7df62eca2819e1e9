// ABOUTME: Idempotent automation ingest guarded by the event ledger.
// ABOUTME: Validation is all-or-nothing per payload; duplicates are no-ops.
package ingest

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harperreed/hcbridge/internal/estimator"
	"github.com/harperreed/hcbridge/internal/models"
	"github.com/harperreed/hcbridge/internal/nutrition"
	"github.com/harperreed/hcbridge/internal/recordkey"
	"github.com/harperreed/hcbridge/internal/storage"
)

// DefaultSource labels rows written by the automation channel when the
// payload does not name its own source.
const DefaultSource = "automation"

// Payload is one automation ingest request.
type Payload struct {
	EventID    string         `json:"event_id"`
	Source     string         `json:"source,omitempty"`
	LocalDate  string         `json:"local_date,omitempty"`
	Items      []Item         `json:"items"`
	IntakeKcal *float64       `json:"intake_kcal,omitempty"`
	IntakeNote *string        `json:"intake_note,omitempty"`
}

// Item is one nutrition entry inside a payload: either a catalog alias or an
// explicit label with macros/micros.
type Item struct {
	Alias      string             `json:"alias,omitempty"`
	Label      string             `json:"label,omitempty"`
	Count      *float64           `json:"count,omitempty"`
	ConsumedAt *time.Time         `json:"consumed_at,omitempty"`
	LocalDate  string             `json:"local_date,omitempty"`
	Note       *string            `json:"note,omitempty"`
	Kcal       *float64           `json:"kcal,omitempty"`
	ProteinG   *float64           `json:"protein_g,omitempty"`
	FatG       *float64           `json:"fat_g,omitempty"`
	CarbsG     *float64           `json:"carbs_g,omitempty"`
	Micros     map[string]any     `json:"micros,omitempty"`
}

// Result reports the outcome of one ingest call.
type Result struct {
	OK        bool   `json:"ok"`
	Ingested  int    `json:"ingested"`
	Duplicate int    `json:"duplicate"`
	EventID   string `json:"eventId"`
}

// Ingestor applies automation payloads exactly once per event id.
type Ingestor struct {
	store   *storage.DB
	service *nutrition.Service
	now     func() time.Time
}

// New builds an Ingestor over the store and logging service.
func New(store *storage.DB, service *nutrition.Service) *Ingestor {
	return &Ingestor{store: store, service: service, now: time.Now}
}

type normalizedItem struct {
	isAlias    bool
	alias      string
	label      string
	count      float64
	note       *string
	consumedAt *time.Time
	localDate  string
	kcal       *float64
	proteinG   *float64
	fatG       *float64
	carbsG     *float64
	micros     map[string]any
}

// Ingest validates and applies one payload. Validation happens before any
// mutation and fails the whole payload: an unknown alias in item 3 leaves
// items 1 and 2 unapplied. A known event id short-circuits with no side
// effects at all, not even logging.
//
// The whole call runs under the store write lock, so two concurrent ingests
// of the same event id cannot both pass the idempotency check.
func (g *Ingestor) Ingest(p *Payload) (*Result, error) {
	if p.EventID == "" {
		return nil, models.Invalid("event_id", "required")
	}
	source := p.Source
	if source == "" {
		source = DefaultSource
	}

	fallbackDate, err := normalizeDate(p.LocalDate, "local_date")
	if err != nil {
		return nil, err
	}

	if len(p.Items) == 0 {
		return nil, models.Invalid("items", "must be a non-empty array")
	}
	items := make([]normalizedItem, 0, len(p.Items))
	for i, raw := range p.Items {
		it, err := g.normalizeItem(raw, fallbackDate, i)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}

	intakeDay := fallbackDate
	if intakeDay == "" && len(items) > 0 {
		intakeDay = items[0].localDate
	}
	if p.IntakeKcal != nil && intakeDay == "" {
		return nil, models.Invalid("local_date", "required when intake_kcal is provided")
	}

	g.store.Lock()
	defer g.store.Unlock()

	seen, err := g.store.HasIngestEvent(p.EventID)
	if err != nil {
		return nil, err
	}
	if seen {
		return &Result{OK: true, Ingested: 0, Duplicate: 1, EventID: p.EventID}, nil
	}

	for _, it := range items {
		if it.isAlias {
			if _, err := g.service.LogAlias(it.alias, it.consumedAt, it.count, it.note); err != nil {
				return nil, err
			}
			continue
		}
		micros := estimator.MergeWithEstimate(it.label, it.kcal, it.proteinG, it.fatG, it.carbsG, it.micros)
		_, err := g.service.LogEvent(nutrition.EventInput{
			ConsumedAt: it.consumedAt,
			Label:      it.label,
			Count:      it.count,
			Kcal:       it.kcal,
			ProteinG:   it.proteinG,
			FatG:       it.fatG,
			CarbsG:     it.carbsG,
			Micros:     micros,
			Note:       it.note,
		})
		if err != nil {
			return nil, err
		}
	}

	if p.IntakeKcal != nil && intakeDay != "" {
		err := g.store.UpsertIntake(&models.IntakeDay{
			Day:        intakeDay,
			IntakeKcal: *p.IntakeKcal,
			Source:     source,
			Note:       p.IntakeNote,
			UpdatedAt:  g.now(),
		})
		if err != nil {
			return nil, err
		}
	}

	inserted, err := g.store.InsertIngestEvent(&models.IngestedEvent{
		EventID:     p.EventID,
		IngestedAt:  g.now(),
		Source:      &source,
		PayloadHash: payloadHash(p),
	})
	if err != nil {
		return nil, err
	}
	if !inserted {
		// A concurrent ingest inserted the ledger row first. The nutrition
		// rows written above may coexist with the winner's; accepted as a
		// known limitation of the conflict path, which the write lock makes
		// unreachable in normal operation.
		return &Result{OK: true, Ingested: 0, Duplicate: 1, EventID: p.EventID}, nil
	}

	return &Result{OK: true, Ingested: 1, Duplicate: 0, EventID: p.EventID}, nil
}

func (g *Ingestor) normalizeItem(raw Item, fallbackDate string, idx int) (normalizedItem, error) {
	var out normalizedItem

	switch {
	case raw.Alias != "":
		if _, ok := g.service.Catalog().Lookup(raw.Alias); !ok {
			return out, models.Invalid("alias", "unknown alias: %s", raw.Alias)
		}
		out.isAlias = true
		out.alias = raw.Alias
	case raw.Label != "":
		out.label = raw.Label
	default:
		return out, models.Invalid("items", "item %d requires alias or label", idx)
	}

	out.count = 1
	if raw.Count != nil {
		out.count = *raw.Count
	}
	if out.count <= 0 {
		return out, models.Invalid("count", "must be > 0")
	}

	itemDate, err := normalizeDate(raw.LocalDate, "local_date")
	if err != nil {
		return out, err
	}
	out.localDate = itemDate
	if out.localDate == "" {
		out.localDate = fallbackDate
	}

	out.consumedAt = raw.ConsumedAt
	if out.consumedAt == nil && out.localDate != "" {
		noon, err := g.service.NoonOf(out.localDate)
		if err != nil {
			return out, err
		}
		out.consumedAt = &noon
	}

	out.note = raw.Note
	out.kcal = raw.Kcal
	out.proteinG = raw.ProteinG
	out.fatG = raw.FatG
	out.carbsG = raw.CarbsG
	out.micros = raw.Micros
	return out, nil
}

func normalizeDate(raw, field string) (string, error) {
	if raw == "" {
		return "", nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return "", models.Invalid(field, "invalid date: %s", raw)
	}
	return t.Format("2006-01-02"), nil
}

// payloadHash fingerprints the payload for the ledger row. Struct field
// order is fixed and encoding/json sorts map keys, so identical payloads
// hash identically.
func payloadHash(p *Payload) string {
	b, err := json.Marshal(p)
	if err != nil {
		b = []byte(recordkey.CanonicalJSON(map[string]any{"event_id": p.EventID}))
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// LegacyEventID derives a deterministic fallback id for legacy imports that
// carry no event id of their own.
func LegacyEventID(fileName string, lineNo int, rawLine string) string {
	digest := sha1.Sum([]byte(rawLine))
	return fmt.Sprintf("legacy:%s:%d:%s", fileName, lineNo, hex.EncodeToString(digest[:])[:16])
}
