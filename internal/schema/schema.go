// Package schema defines the canonical 45-attribute company record consumed
// by the prediction engine. Fields are partitioned into five semantic groups
// (Capital, Advantage, Market, People, Product). The field set is versioned:
// any change to the registry below requires a Version bump, and persisted
// model bundles carry the version they were trained against.
package schema

import (
	"fmt"
	"strings"
)

// Version identifies the current feature schema. Bundles trained against a
// different version are rejected at load time.
const Version = "camp-v2"

// Group tags a field with its semantic bucket.
type Group string

const (
	GroupCapital   Group = "capital"
	GroupAdvantage Group = "advantage"
	GroupMarket    Group = "market"
	GroupPeople    Group = "people"
	GroupProduct   Group = "product"
)

// Field describes one attribute of the canonical record.
type Field struct {
	Name        string
	Group       Group
	Categorical bool
}

// Fields is the ordered registry of all 45 attributes. Vector() flattens a
// Record in exactly this order, so the registry order is part of the schema
// contract.
var Fields = []Field{
	// Capital
	{"funding_stage", GroupCapital, true},
	{"total_capital_raised_usd", GroupCapital, false},
	{"cash_on_hand_usd", GroupCapital, false},
	{"monthly_burn_usd", GroupCapital, false},
	{"runway_months", GroupCapital, false},
	{"burn_multiple", GroupCapital, false},
	{"investor_tier", GroupCapital, true},

	// Advantage
	{"patent_count", GroupAdvantage, false},
	{"network_effect_score", GroupAdvantage, false},
	{"data_moat_score", GroupAdvantage, false},
	{"regulatory_advantage_score", GroupAdvantage, false},
	{"tech_differentiation_score", GroupAdvantage, false},
	{"switching_cost_score", GroupAdvantage, false},
	{"brand_strength_score", GroupAdvantage, false},
	{"scalability_score", GroupAdvantage, false},

	// Market
	{"sector", GroupMarket, true},
	{"tam_size_usd", GroupMarket, false},
	{"sam_size_usd", GroupMarket, false},
	{"som_size_usd", GroupMarket, false},
	{"market_growth_rate_pct", GroupMarket, false},
	{"customer_count", GroupMarket, false},
	{"customer_concentration_pct", GroupMarket, false},
	{"user_growth_rate_pct", GroupMarket, false},
	{"net_dollar_retention_pct", GroupMarket, false},
	{"competition_intensity", GroupMarket, false},
	{"competitor_count", GroupMarket, false},

	// People
	{"founder_count", GroupPeople, false},
	{"team_size", GroupPeople, false},
	{"years_experience_avg", GroupPeople, false},
	{"domain_expertise_years_avg", GroupPeople, false},
	{"prior_startup_count", GroupPeople, false},
	{"prior_successful_exits", GroupPeople, false},
	{"board_advisor_experience_score", GroupPeople, false},
	{"advisors_count", GroupPeople, false},
	{"team_diversity_pct", GroupPeople, false},
	{"key_person_dependency", GroupPeople, false},

	// Product
	{"product_stage", GroupProduct, true},
	{"product_retention_30d", GroupProduct, false},
	{"product_retention_90d", GroupProduct, false},
	{"revenue_growth_rate_pct", GroupProduct, false},
	{"annual_revenue_run_rate_usd", GroupProduct, false},
	{"gross_margin_pct", GroupProduct, false},
	{"ltv_cac_ratio", GroupProduct, false},
	{"dau_mau_ratio", GroupProduct, false},
	{"customer_churn_rate_pct", GroupProduct, false},
}

// FieldCount is the width of the canonical feature vector.
const FieldCount = 45

var fieldIndex = func() map[string]int {
	m := make(map[string]int, len(Fields))
	for i, f := range Fields {
		m[f.Name] = i
	}
	return m
}()

// Index returns the registry position of a field name, or -1 if unknown.
func Index(name string) int {
	if i, ok := fieldIndex[name]; ok {
		return i
	}
	return -1
}

// Record is one fully-populated company observation. Categorical fields hold
// canonical vocabulary values; unknown inputs must be resolved to a fallback
// bucket by Normalize before a Record reaches the engine.
type Record struct {
	// Capital
	FundingStage         string  `json:"funding_stage"`
	TotalCapitalRaised   float64 `json:"total_capital_raised_usd"`
	CashOnHand           float64 `json:"cash_on_hand_usd"`
	MonthlyBurn          float64 `json:"monthly_burn_usd"`
	RunwayMonths         float64 `json:"runway_months"`
	BurnMultiple         float64 `json:"burn_multiple"`
	InvestorTier         string  `json:"investor_tier"`

	// Advantage
	PatentCount          float64 `json:"patent_count"`
	NetworkEffectScore   float64 `json:"network_effect_score"`
	DataMoatScore        float64 `json:"data_moat_score"`
	RegulatoryAdvantage  float64 `json:"regulatory_advantage_score"`
	TechDifferentiation  float64 `json:"tech_differentiation_score"`
	SwitchingCostScore   float64 `json:"switching_cost_score"`
	BrandStrengthScore   float64 `json:"brand_strength_score"`
	ScalabilityScore     float64 `json:"scalability_score"`

	// Market
	Sector                string  `json:"sector"`
	TAMSize               float64 `json:"tam_size_usd"`
	SAMSize               float64 `json:"sam_size_usd"`
	SOMSize               float64 `json:"som_size_usd"`
	MarketGrowthRate      float64 `json:"market_growth_rate_pct"`
	CustomerCount         float64 `json:"customer_count"`
	CustomerConcentration float64 `json:"customer_concentration_pct"`
	UserGrowthRate        float64 `json:"user_growth_rate_pct"`
	NetDollarRetention    float64 `json:"net_dollar_retention_pct"`
	CompetitionIntensity  float64 `json:"competition_intensity"`
	CompetitorCount       float64 `json:"competitor_count"`

	// People
	FounderCount           float64 `json:"founder_count"`
	TeamSize               float64 `json:"team_size"`
	YearsExperienceAvg     float64 `json:"years_experience_avg"`
	DomainExpertiseYears   float64 `json:"domain_expertise_years_avg"`
	PriorStartupCount      float64 `json:"prior_startup_count"`
	PriorSuccessfulExits   float64 `json:"prior_successful_exits"`
	BoardAdvisorExperience float64 `json:"board_advisor_experience_score"`
	AdvisorsCount          float64 `json:"advisors_count"`
	TeamDiversity          float64 `json:"team_diversity_pct"`
	KeyPersonDependency    float64 `json:"key_person_dependency"`

	// Product
	ProductStage       string  `json:"product_stage"`
	Retention30d       float64 `json:"product_retention_30d"`
	Retention90d       float64 `json:"product_retention_90d"`
	RevenueGrowthRate  float64 `json:"revenue_growth_rate_pct"`
	AnnualRevenue      float64 `json:"annual_revenue_run_rate_usd"`
	GrossMargin        float64 `json:"gross_margin_pct"`
	LTVCACRatio        float64 `json:"ltv_cac_ratio"`
	DAUMAURatio        float64 `json:"dau_mau_ratio"`
	ChurnRate          float64 `json:"customer_churn_rate_pct"`
}

// Vector flattens the record into the canonical 45-wide feature vector.
// Categorical fields are encoded as their vocabulary ordinal so every column
// is numeric; ordinals are stable because vocabularies are part of the
// versioned schema.
func (r *Record) Vector() []float64 {
	v := make([]float64, 0, FieldCount)
	v = append(v,
		float64(StageOrdinal(r.FundingStage)),
		r.TotalCapitalRaised,
		r.CashOnHand,
		r.MonthlyBurn,
		r.RunwayMonths,
		r.BurnMultiple,
		float64(TierOrdinal(r.InvestorTier)),

		r.PatentCount,
		r.NetworkEffectScore,
		r.DataMoatScore,
		r.RegulatoryAdvantage,
		r.TechDifferentiation,
		r.SwitchingCostScore,
		r.BrandStrengthScore,
		r.ScalabilityScore,

		float64(SectorOrdinal(r.Sector)),
		r.TAMSize,
		r.SAMSize,
		r.SOMSize,
		r.MarketGrowthRate,
		r.CustomerCount,
		r.CustomerConcentration,
		r.UserGrowthRate,
		r.NetDollarRetention,
		r.CompetitionIntensity,
		r.CompetitorCount,

		r.FounderCount,
		r.TeamSize,
		r.YearsExperienceAvg,
		r.DomainExpertiseYears,
		r.PriorStartupCount,
		r.PriorSuccessfulExits,
		r.BoardAdvisorExperience,
		r.AdvisorsCount,
		r.TeamDiversity,
		r.KeyPersonDependency,

		float64(ProductStageOrdinal(r.ProductStage)),
		r.Retention30d,
		r.Retention90d,
		r.RevenueGrowthRate,
		r.AnnualRevenue,
		r.GrossMargin,
		r.LTVCACRatio,
		r.DAUMAURatio,
		r.ChurnRate,
	)
	return v
}

// Numeric returns the value of a field by registry name. Categorical fields
// come back as their vocabulary ordinal.
func (r *Record) Numeric(name string) float64 {
	idx := Index(name)
	if idx < 0 {
		return 0
	}
	return r.Vector()[idx]
}

// SchemaError reports a record that cannot be mapped onto the canonical
// schema even with defaulting and vocabulary fallbacks.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema: field %q: %s", e.Field, e.Reason)
}

// Normalize maps a raw heterogeneous record onto the canonical schema.
// Missing numeric fields default to 0; categorical strings are canonicalized
// through the fixed vocabularies with fallback to the "other"/general bucket.
// Only a value of an unusable type is a schema error.
func Normalize(raw map[string]any) (Record, error) {
	var r Record

	num := func(name string) (float64, error) {
		v, ok := raw[name]
		if !ok || v == nil {
			return 0, nil
		}
		switch x := v.(type) {
		case float64:
			return x, nil
		case float32:
			return float64(x), nil
		case int:
			return float64(x), nil
		case int64:
			return float64(x), nil
		case bool:
			if x {
				return 1, nil
			}
			return 0, nil
		default:
			return 0, &SchemaError{Field: name, Reason: fmt.Sprintf("unusable numeric type %T", v)}
		}
	}
	str := func(name string) (string, error) {
		v, ok := raw[name]
		if !ok || v == nil {
			return "", nil
		}
		s, ok := v.(string)
		if !ok {
			return "", &SchemaError{Field: name, Reason: fmt.Sprintf("unusable categorical type %T", v)}
		}
		return s, nil
	}

	var err error
	assignNum := func(dst *float64, name string) {
		if err != nil {
			return
		}
		*dst, err = num(name)
	}
	assignStr := func(dst *string, name string, canon func(string) string) {
		if err != nil {
			return
		}
		var s string
		s, err = str(name)
		if err == nil {
			*dst = canon(s)
		}
	}

	assignStr(&r.FundingStage, "funding_stage", CanonicalStage)
	assignNum(&r.TotalCapitalRaised, "total_capital_raised_usd")
	assignNum(&r.CashOnHand, "cash_on_hand_usd")
	assignNum(&r.MonthlyBurn, "monthly_burn_usd")
	assignNum(&r.RunwayMonths, "runway_months")
	assignNum(&r.BurnMultiple, "burn_multiple")
	assignStr(&r.InvestorTier, "investor_tier", CanonicalTier)

	assignNum(&r.PatentCount, "patent_count")
	assignNum(&r.NetworkEffectScore, "network_effect_score")
	assignNum(&r.DataMoatScore, "data_moat_score")
	assignNum(&r.RegulatoryAdvantage, "regulatory_advantage_score")
	assignNum(&r.TechDifferentiation, "tech_differentiation_score")
	assignNum(&r.SwitchingCostScore, "switching_cost_score")
	assignNum(&r.BrandStrengthScore, "brand_strength_score")
	assignNum(&r.ScalabilityScore, "scalability_score")

	assignStr(&r.Sector, "sector", CanonicalSector)
	assignNum(&r.TAMSize, "tam_size_usd")
	assignNum(&r.SAMSize, "sam_size_usd")
	assignNum(&r.SOMSize, "som_size_usd")
	assignNum(&r.MarketGrowthRate, "market_growth_rate_pct")
	assignNum(&r.CustomerCount, "customer_count")
	assignNum(&r.CustomerConcentration, "customer_concentration_pct")
	assignNum(&r.UserGrowthRate, "user_growth_rate_pct")
	assignNum(&r.NetDollarRetention, "net_dollar_retention_pct")
	assignNum(&r.CompetitionIntensity, "competition_intensity")
	assignNum(&r.CompetitorCount, "competitor_count")

	assignNum(&r.FounderCount, "founder_count")
	assignNum(&r.TeamSize, "team_size")
	assignNum(&r.YearsExperienceAvg, "years_experience_avg")
	assignNum(&r.DomainExpertiseYears, "domain_expertise_years_avg")
	assignNum(&r.PriorStartupCount, "prior_startup_count")
	assignNum(&r.PriorSuccessfulExits, "prior_successful_exits")
	assignNum(&r.BoardAdvisorExperience, "board_advisor_experience_score")
	assignNum(&r.AdvisorsCount, "advisors_count")
	assignNum(&r.TeamDiversity, "team_diversity_pct")
	assignNum(&r.KeyPersonDependency, "key_person_dependency")

	assignStr(&r.ProductStage, "product_stage", CanonicalProductStage)
	assignNum(&r.Retention30d, "product_retention_30d")
	assignNum(&r.Retention90d, "product_retention_90d")
	assignNum(&r.RevenueGrowthRate, "revenue_growth_rate_pct")
	assignNum(&r.AnnualRevenue, "annual_revenue_run_rate_usd")
	assignNum(&r.GrossMargin, "gross_margin_pct")
	assignNum(&r.LTVCACRatio, "ltv_cac_ratio")
	assignNum(&r.DAUMAURatio, "dau_mau_ratio")
	assignNum(&r.ChurnRate, "customer_churn_rate_pct")

	if err != nil {
		return Record{}, err
	}

	// Canonicalize categoricals that arrived pre-populated but empty.
	r.FundingStage = CanonicalStage(r.FundingStage)
	r.Sector = CanonicalSector(r.Sector)
	r.ProductStage = CanonicalProductStage(r.ProductStage)
	r.InvestorTier = CanonicalTier(r.InvestorTier)

	return r, nil
}

// Canonicalize rewrites a record's categorical fields onto the fixed
// vocabularies in place. Scoring paths call this so free-form strings can
// never reach an expert.
func Canonicalize(r *Record) {
	r.FundingStage = CanonicalStage(r.FundingStage)
	r.Sector = CanonicalSector(r.Sector)
	r.ProductStage = CanonicalProductStage(r.ProductStage)
	r.InvestorTier = CanonicalTier(r.InvestorTier)
}

func normToken(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", "-")
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	return s
}
