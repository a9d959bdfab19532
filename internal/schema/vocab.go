package schema

import "strings"

// Canonical vocabulary values. Ordinals are the slice positions, so the
// ordering here is load-bearing and versioned together with the field
// registry.

const (
	StagePreSeed     = "pre-seed"
	StageSeed        = "seed"
	StageSeriesA     = "series-a"
	StageSeriesB     = "series-b"
	StageSeriesCPlus = "series-c-plus"
)

// Stages lists the five canonical funding-stage buckets.
var Stages = []string{StagePreSeed, StageSeed, StageSeriesA, StageSeriesB, StageSeriesCPlus}

const SectorGeneral = "other"

// Sectors lists the canonical sector vocabulary. SectorGeneral is the
// fallback bucket for anything unrecognized.
var Sectors = []string{"saas", "fintech", "healthtech", "ecommerce", "ai-ml", "marketplace", "edtech", SectorGeneral}

// ProductStages in rough maturity order.
var ProductStages = []string{"concept", "mvp", "beta", "launched", "growth", "mature"}

// InvestorTiers from unknown/angel up to tier-1 funds.
var InvestorTiers = []string{"unknown", "angel", "tier-3", "tier-2", "tier-1"}

// CanonicalStage resolves a free-form funding-stage string into one of the
// five canonical buckets via keyword matching. The function is total: any
// string, including garbage, lands in a bucket deterministically.
func CanonicalStage(s string) string {
	t := normToken(s)
	switch {
	case strings.Contains(t, "pre-seed") || strings.Contains(t, "preseed") ||
		strings.Contains(t, "angel") || strings.Contains(t, "friends"):
		return StagePreSeed
	case strings.Contains(t, "seed"):
		return StageSeed
	case strings.Contains(t, "series-a") || strings.Contains(t, "seriesa") || t == "a":
		return StageSeriesA
	case strings.Contains(t, "series-b") || strings.Contains(t, "seriesb") || t == "b":
		return StageSeriesB
	case strings.Contains(t, "series-c") || strings.Contains(t, "series-d") ||
		strings.Contains(t, "series-e") || strings.Contains(t, "growth") ||
		strings.Contains(t, "late") || strings.Contains(t, "ipo") ||
		strings.Contains(t, "mezzanine"):
		return StageSeriesCPlus
	default:
		// Unrecognized stages resolve to the earliest bucket rather than
		// erroring; pre-seed is the closest match for companies with no
		// recognizable funding history.
		return StagePreSeed
	}
}

// CanonicalSector maps a raw sector string into the fixed sector vocabulary,
// falling back to the general bucket for anything unseen.
func CanonicalSector(s string) string {
	t := normToken(s)
	switch {
	case strings.Contains(t, "saas") || strings.Contains(t, "software") || strings.Contains(t, "b2b"):
		return "saas"
	case strings.Contains(t, "fintech") || strings.Contains(t, "finance") || strings.Contains(t, "banking") ||
		strings.Contains(t, "payments") || strings.Contains(t, "insur"):
		return "fintech"
	case strings.Contains(t, "health") || strings.Contains(t, "medical") || strings.Contains(t, "biotech") ||
		strings.Contains(t, "pharma"):
		return "healthtech"
	case strings.Contains(t, "commerce") || strings.Contains(t, "retail") || strings.Contains(t, "d2c"):
		return "ecommerce"
	case t == "ai" || t == "ml" || strings.Contains(t, "ai-ml") || strings.HasPrefix(t, "ai-") ||
		strings.HasSuffix(t, "-ai") || strings.Contains(t, "machine-learning") ||
		strings.Contains(t, "artificial") || strings.Contains(t, "deep-learning"):
		return "ai-ml"
	case strings.Contains(t, "marketplace") || strings.Contains(t, "platform"):
		return "marketplace"
	case strings.Contains(t, "edtech") || strings.Contains(t, "education") || strings.Contains(t, "learning"):
		return "edtech"
	default:
		return SectorGeneral
	}
}

// CanonicalProductStage maps a raw product-stage string onto the fixed
// maturity vocabulary, defaulting to "concept".
func CanonicalProductStage(s string) string {
	t := normToken(s)
	switch {
	case strings.Contains(t, "mature") || strings.Contains(t, "scale"):
		return "mature"
	case strings.Contains(t, "growth") || strings.Contains(t, "expansion"):
		return "growth"
	case strings.Contains(t, "launch") || t == "ga" || strings.Contains(t, "live"):
		return "launched"
	case strings.Contains(t, "beta"):
		return "beta"
	case strings.Contains(t, "mvp") || strings.Contains(t, "prototype"):
		return "mvp"
	default:
		return "concept"
	}
}

// CanonicalTier maps a raw investor-tier string onto the fixed tier
// vocabulary, defaulting to "unknown".
func CanonicalTier(s string) string {
	t := normToken(s)
	switch {
	case strings.Contains(t, "tier-1") || strings.Contains(t, "tier1") || strings.Contains(t, "top"):
		return "tier-1"
	case strings.Contains(t, "tier-2") || strings.Contains(t, "tier2"):
		return "tier-2"
	case strings.Contains(t, "tier-3") || strings.Contains(t, "tier3"):
		return "tier-3"
	case strings.Contains(t, "angel"):
		return "angel"
	default:
		return "unknown"
	}
}

func ordinal(vocab []string, v string) int {
	for i, s := range vocab {
		if s == v {
			return i
		}
	}
	return 0
}

// StageOrdinal returns the vocabulary position of a canonical stage.
func StageOrdinal(v string) int { return ordinal(Stages, CanonicalStage(v)) }

// SectorOrdinal returns the vocabulary position of a canonical sector.
func SectorOrdinal(v string) int { return ordinal(Sectors, CanonicalSector(v)) }

// ProductStageOrdinal returns the vocabulary position of a canonical product stage.
func ProductStageOrdinal(v string) int { return ordinal(ProductStages, CanonicalProductStage(v)) }

// TierOrdinal returns the vocabulary position of a canonical investor tier.
func TierOrdinal(v string) int { return ordinal(InvestorTiers, CanonicalTier(v)) }
