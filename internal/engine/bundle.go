package engine

import (
	"errors"
	"fmt"
	"time"

	"campscore/internal/schema"
)

// ErrSchemaVersion rejects bundles trained against a different feature
// schema than the running binary.
var ErrSchemaVersion = errors.New("bundle schema version mismatch")

// Bundle is the serialized form of a trained engine: every frozen artifact
// plus the schema version it was trained against, as one versioned unit.
type Bundle struct {
	SchemaVersion string    `json:"schema_version"`
	Version       string    `json:"version"`
	CreatedAt     time.Time `json:"created_at"`

	Params   Params            `json:"params"`
	Stage    *StageEnsemble    `json:"stage"`
	Temporal *TemporalEnsemble `json:"temporal"`
	Industry *IndustryEnsemble `json:"industry"`
	DNA      *DNAAnalyzer      `json:"dna"`
	Combiner *Logit            `json:"combiner"`
	Report   *Report           `json:"report"`
}

// Snapshot exports every frozen artifact of the engine.
func (e *Engine) Snapshot() *Bundle {
	now := time.Now().UTC()
	return &Bundle{
		SchemaVersion: schema.Version,
		Version:       now.Format("20060102-150405"),
		CreatedAt:     now,
		Params:        e.params,
		Stage:         e.stage,
		Temporal:      e.temporal,
		Industry:      e.industry,
		DNA:           e.dna,
		Combiner:      e.combiner,
		Report:        e.report,
	}
}

// Restore rebuilds a scoring engine from a bundle. A schema-version mismatch
// fails fast rather than silently misscoring; a structurally incomplete
// bundle is rejected for the same reason.
func Restore(b *Bundle, metrics Recorder) (*Engine, error) {
	if b.SchemaVersion != schema.Version {
		return nil, fmt.Errorf("bundle %s: trained against schema %q, running %q: %w",
			b.Version, b.SchemaVersion, schema.Version, ErrSchemaVersion)
	}
	if b.Stage == nil || b.Temporal == nil || b.Industry == nil || b.DNA == nil || b.Combiner == nil {
		return nil, fmt.Errorf("bundle %s: missing trained artifacts", b.Version)
	}
	params := b.Params.withDefaults()
	params.Metrics = metrics
	return &Engine{
		params:   params,
		stage:    b.Stage,
		temporal: b.Temporal,
		industry: b.Industry,
		dna:      b.DNA,
		combiner: b.Combiner,
		report:   b.Report,
	}, nil
}
