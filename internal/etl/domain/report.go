package domain

import (
	"sort"
	"time"

	analyticsdomain "github.com/amirpoori99/food-ordering-project-sub008/internal/analytics/domain"
	sourcedomain "github.com/amirpoori99/food-ordering-project-sub008/internal/source/domain"
)

// State état du job d'un type d'entité
type State string

const (
	StateIdle              State = "IDLE"
	StateExtracting        State = "EXTRACTING"
	StateTransforming      State = "TRANSFORMING"
	StateLoading           State = "LOADING"
	StateWatermarkAdvanced State = "WATERMARK_ADVANCED"
	StateFailed            State = "FAILED"
	StateDryRun            State = "DRY_RUN"
)

// OutcomeKind étiquette du résultat de transformation d'un enregistrement
type OutcomeKind int

const (
	OutcomeEmpty OutcomeKind = iota
	OutcomeFact
	OutcomeSkipped
)

// Outcome résultat de la transformation d'un enregistrement: un fait, un skip, ou rien (entrée nil)
type Outcome struct {
	Kind OutcomeKind
	Fact analyticsdomain.Fact
	Skip *TransformSkip
}

// FactOutcome enveloppe un fait produit
func FactOutcome(f analyticsdomain.Fact) Outcome {
	return Outcome{Kind: OutcomeFact, Fact: f}
}

// SkippedOutcome enveloppe un enregistrement écarté
func SkippedOutcome(skip *TransformSkip) Outcome {
	return Outcome{Kind: OutcomeSkipped, Skip: skip}
}

// EmptyOutcome entrée nil: aucun fait, pas une erreur
func EmptyOutcome() Outcome {
	return Outcome{Kind: OutcomeEmpty}
}

// SkipEntry trace d'un enregistrement écarté, exposée dans le rapport
type SkipEntry struct {
	RecordKey string `json:"record_key"`
	Reason    string `json:"reason"`
}

// RunRequest paramètres d'un run
type RunRequest struct {
	// EntityTypes vide = tous les types
	EntityTypes []sourcedomain.EntityType
	// AsOf horloge de référence; borne aussi l'extraction (created_at <= AsOf)
	AsOf   *time.Time
	DryRun bool
}

// EntityReport résultat d'un job pour un type d'entité
type EntityReport struct {
	EntityType        sourcedomain.EntityType `json:"entity_type"`
	State             State                   `json:"state"`
	Extracted         int                     `json:"extracted"`
	Transformed       int                     `json:"transformed"`
	Skipped           int                     `json:"skipped"`
	Loaded            int                     `json:"loaded"`
	Failed            int                     `json:"failed"`
	PreviousWatermark *time.Time              `json:"previous_watermark,omitempty"`
	NewWatermark      *time.Time              `json:"new_watermark,omitempty"`
	Skips             []SkipEntry             `json:"skips,omitempty"`
	Error             string                  `json:"error,omitempty"`
	Err               error                   `json:"-"`
	Duration          time.Duration           `json:"duration_ns"`
}

// NewEntityReport crée un rapport à l'état IDLE
func NewEntityReport(entityType sourcedomain.EntityType) *EntityReport {
	return &EntityReport{EntityType: entityType, State: StateIdle}
}

// Fail marque le job en échec
func (r *EntityReport) Fail(err error) {
	r.State = StateFailed
	r.Err = err
	if err != nil {
		r.Error = err.Error()
	}
	r.NewWatermark = nil
}

// Succeeded vrai si le job a avancé son watermark ou terminé un dry run
func (r *EntityReport) Succeeded() bool {
	return r.State == StateWatermarkAdvanced || r.State == StateDryRun
}

// RunReport rapport agrégé d'un run
type RunReport struct {
	StartedAt  time.Time                                 `json:"started_at"`
	FinishedAt time.Time                                 `json:"finished_at"`
	DryRun     bool                                      `json:"dry_run"`
	Entities   map[sourcedomain.EntityType]*EntityReport `json:"entities"`
}

// HasFailures vrai si au moins un type d'entité a échoué
func (r RunReport) HasFailures() bool {
	for _, e := range r.Entities {
		if e.State == StateFailed {
			return true
		}
	}
	return false
}

// EntityTypes types présents dans le rapport, triés
func (r RunReport) EntityTypes() []sourcedomain.EntityType {
	out := make([]sourcedomain.EntityType, 0, len(r.Entities))
	for et := range r.Entities {
		out = append(out, et)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
