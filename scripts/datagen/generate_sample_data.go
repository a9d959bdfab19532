package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"

	"campscore/internal/schema"
)

// Generates a synthetic labeled company dataset for local development.
// Successful companies get healthy efficiency, growth and retention numbers,
// failed ones the opposite, with noise on everything else, so a freshly
// trained engine has a real signal to find.
func main() {
	var (
		out      = flag.String("out", "companies.csv", "Output CSV path")
		rows     = flag.Int("rows", 2000, "Number of rows to generate")
		seed     = flag.Int64("seed", 42, "Random seed")
		posRatio = flag.Float64("positive-ratio", 0.5, "Fraction of successful companies")
	)
	flag.Parse()

	fmt.Printf("Generating %d sample companies...\n", *rows)
	fmt.Printf("  Output: %s\n", *out)
	fmt.Printf("  Seed: %d\n", *seed)
	fmt.Printf("  Positive ratio: %.2f\n", *posRatio)

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := make([]string, 0, schema.FieldCount+1)
	for _, field := range schema.Fields {
		header = append(header, field.Name)
	}
	header = append(header, "label")
	if err := w.Write(header); err != nil {
		log.Fatalf("Failed to write header: %v", err)
	}

	rnd := rand.New(rand.NewSource(*seed))
	positives := 0
	for i := 0; i < *rows; i++ {
		label := 0
		if rnd.Float64() < *posRatio {
			label = 1
			positives++
		}
		rec := generateCompany(rnd, label)

		row := make([]string, 0, schema.FieldCount+1)
		vec := rec.Vector()
		for j, field := range schema.Fields {
			if field.Categorical {
				row = append(row, categoricalValue(&rec, field.Name))
			} else {
				row = append(row, strconv.FormatFloat(vec[j], 'f', -1, 64))
			}
		}
		row = append(row, strconv.Itoa(label))
		if err := w.Write(row); err != nil {
			log.Fatalf("Failed to write row %d: %v", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		log.Fatalf("Failed to flush output: %v", err)
	}

	fmt.Printf("✓ Wrote %d rows (%d successes, %d failures) to %s\n",
		*rows, positives, *rows-positives, *out)
}

func categoricalValue(r *schema.Record, name string) string {
	switch name {
	case "funding_stage":
		return r.FundingStage
	case "investor_tier":
		return r.InvestorTier
	case "sector":
		return r.Sector
	case "product_stage":
		return r.ProductStage
	}
	return ""
}

func generateCompany(rnd *rand.Rand, label int) schema.Record {
	r := schema.Record{
		FundingStage: schema.Stages[rnd.Intn(len(schema.Stages))],
		Sector:       schema.Sectors[rnd.Intn(len(schema.Sectors))],
		ProductStage: schema.ProductStages[rnd.Intn(len(schema.ProductStages))],
		InvestorTier: schema.InvestorTiers[rnd.Intn(len(schema.InvestorTiers))],

		TotalCapitalRaised:     1e6 * (1 + 19*rnd.Float64()),
		PatentCount:            float64(rnd.Intn(6)),
		NetworkEffectScore:     1 + 9*rnd.Float64(),
		DataMoatScore:          1 + 9*rnd.Float64(),
		RegulatoryAdvantage:    1 + 9*rnd.Float64(),
		TechDifferentiation:    1 + 9*rnd.Float64(),
		SwitchingCostScore:     1 + 9*rnd.Float64(),
		BrandStrengthScore:     1 + 9*rnd.Float64(),
		ScalabilityScore:       1 + 9*rnd.Float64(),
		TAMSize:                1e9 * (1 + 49*rnd.Float64()),
		MarketGrowthRate:       5 + 30*rnd.Float64(),
		CustomerCount:          100 + 2e4*rnd.Float64(),
		CustomerConcentration:  5 + 50*rnd.Float64(),
		CompetitionIntensity:   1 + 9*rnd.Float64(),
		CompetitorCount:        2 + 40*rnd.Float64(),
		FounderCount:           float64(1 + rnd.Intn(4)),
		TeamSize:               3 + 80*rnd.Float64(),
		YearsExperienceAvg:     3 + 15*rnd.Float64(),
		DomainExpertiseYears:   1 + 12*rnd.Float64(),
		PriorStartupCount:      float64(rnd.Intn(5)),
		BoardAdvisorExperience: 1 + 9*rnd.Float64(),
		AdvisorsCount:          float64(rnd.Intn(10)),
		TeamDiversity:          10 + 70*rnd.Float64(),
		KeyPersonDependency:    float64(rnd.Intn(2)),
		AnnualRevenue:          1e5 + 1e7*rnd.Float64(),
	}
	r.SAMSize = r.TAMSize * (0.05 + 0.15*rnd.Float64())
	r.SOMSize = r.SAMSize * (0.05 + 0.15*rnd.Float64())

	if label == 1 {
		r.CashOnHand = 1e6 + 5e6*rnd.Float64()
		r.MonthlyBurn = 8e4 + 1.2e5*rnd.Float64()
		r.RunwayMonths = 15 + 20*rnd.Float64()
		r.BurnMultiple = 0.6 + rnd.Float64()
		r.UserGrowthRate = 60 + 120*rnd.Float64()
		r.NetDollarRetention = 105 + 40*rnd.Float64()
		r.Retention30d = 0.5 + 0.35*rnd.Float64()
		r.Retention90d = 0.4 + 0.35*rnd.Float64()
		r.RevenueGrowthRate = 80 + 150*rnd.Float64()
		r.GrossMargin = 60 + 30*rnd.Float64()
		r.LTVCACRatio = 2.5 + 3*rnd.Float64()
		r.DAUMAURatio = 0.35 + 0.35*rnd.Float64()
		r.ChurnRate = 0.5 + 3*rnd.Float64()
		r.PriorSuccessfulExits = float64(rnd.Intn(3))
	} else {
		r.CashOnHand = 1e5 + 6e5*rnd.Float64()
		r.MonthlyBurn = 1.2e5 + 1.5e5*rnd.Float64()
		r.RunwayMonths = 2 + 8*rnd.Float64()
		r.BurnMultiple = 2 + 3*rnd.Float64()
		r.UserGrowthRate = 50 * rnd.Float64()
		r.NetDollarRetention = 60 + 35*rnd.Float64()
		r.Retention30d = 0.05 + 0.3*rnd.Float64()
		r.Retention90d = 0.02 + 0.25*rnd.Float64()
		r.RevenueGrowthRate = 50 * rnd.Float64()
		r.GrossMargin = 20 + 30*rnd.Float64()
		r.LTVCACRatio = 0.3 + 1.2*rnd.Float64()
		r.DAUMAURatio = 0.03 + 0.2*rnd.Float64()
		r.ChurnRate = 5 + 8*rnd.Float64()
		r.PriorSuccessfulExits = 0
	}
	return r
}
