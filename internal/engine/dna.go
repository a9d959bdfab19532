package engine

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"campscore/internal/schema"
)

// traitGroups name the five signature dimensions the pattern analyzer works
// in. Each group draws a fixed subset of the canonical fields; together they
// form the sub-matrix that gets scaled and projected.
var traitGroups = map[string][]string{
	"growth_velocity": {
		"user_growth_rate_pct",
		"revenue_growth_rate_pct",
		"net_dollar_retention_pct",
		"market_growth_rate_pct",
	},
	"efficiency": {
		"burn_multiple",
		"runway_months",
		"gross_margin_pct",
		"ltv_cac_ratio",
		"customer_churn_rate_pct",
	},
	"market_dominance": {
		"tam_size_usd",
		"som_size_usd",
		"customer_count",
		"competition_intensity",
		"competitor_count",
	},
	"founder_quality": {
		"prior_successful_exits",
		"prior_startup_count",
		"years_experience_avg",
		"domain_expertise_years_avg",
		"board_advisor_experience_score",
	},
	"product_evolution": {
		"product_stage",
		"product_retention_30d",
		"product_retention_90d",
		"dau_mau_ratio",
		"tech_differentiation_score",
	},
}

// traitGroupOrder fixes the column layout of the trait sub-matrix.
var traitGroupOrder = []string{
	"growth_velocity", "efficiency", "market_dominance", "founder_quality", "product_evolution",
}

// DNAAnalyzer captures similarity to historical success and failure
// signatures independent of any supervised boundary. The fitted scaler,
// projection and centroid sets are frozen after training and reapplied
// identically at score time.
type DNAAnalyzer struct {
	ProjectionDims int `json:"projection_dims"`
	MaxClusters    int `json:"max_clusters"`
	MinClusterRows int `json:"min_cluster_rows"`

	Scaler     *Scaler     `json:"scaler"`
	Projection *Projection `json:"projection"`
	Success    *ClusterSet `json:"success"`
	Failure    *ClusterSet `json:"failure"`
	Pattern    *Logit      `json:"pattern"`
}

func newDNAAnalyzer(p Params) *DNAAnalyzer {
	return &DNAAnalyzer{
		ProjectionDims: p.ProjectionDims,
		MaxClusters:    p.MaxClusters,
		MinClusterRows: p.MinClusterRows,
	}
}

// traitVector assembles the grouped numeric sub-matrix row for one record.
func traitVector(r *schema.Record) []float64 {
	full := r.Vector()
	var v []float64
	for _, g := range traitGroupOrder {
		for _, name := range traitGroups[g] {
			v = append(v, full[schema.Index(name)])
		}
	}
	return v
}

func (a *DNAAnalyzer) train(records []schema.Record, labels []int) error {
	X := make([][]float64, len(records))
	for i := range records {
		X[i] = traitVector(&records[i])
	}

	a.Scaler = FitScaler(X)
	scaled := a.Scaler.ApplyMatrix(X)

	proj, err := FitProjection(scaled, a.ProjectionDims)
	if err != nil {
		return fmt.Errorf("dna projection: %w", err)
	}
	a.Projection = proj
	projected := proj.ApplyMatrix(scaled)

	var pos, neg [][]float64
	for i, row := range projected {
		if labels[i] == 1 {
			pos = append(pos, row)
		} else {
			neg = append(neg, row)
		}
	}
	a.Success = a.clusterSide(pos)
	a.Failure = a.clusterSide(neg)

	log.Debug().
		Int("success_centroids", len(a.Success.Centroids)).
		Int("failure_centroids", len(a.Failure.Centroids)).
		Msg("dna centroids fitted")

	sim := make([][]float64, len(projected))
	for i, row := range projected {
		sim[i] = a.similarity(row)
	}
	pat := NewLogit()
	if err := pat.Fit(sim, labels); err != nil {
		return fmt.Errorf("dna pattern classifier: %w", err)
	}
	a.Pattern = pat
	return nil
}

// clusterSide clusters one label subset with an adaptively capped cluster
// count. Subsets below the minimum are left as an explicit empty set.
func (a *DNAAnalyzer) clusterSide(rows [][]float64) *ClusterSet {
	if len(rows) < a.MinClusterRows {
		return &ClusterSet{}
	}
	k := len(rows) / 10
	if k > a.MaxClusters {
		k = a.MaxClusters
	}
	if k < 1 {
		k = 1
	}
	return fitKMeans(rows, k)
}

// similarity derives the 6-dimensional distance feature vector against the
// frozen centroid sets.
func (a *DNAAnalyzer) similarity(projected []float64) []float64 {
	sMin, sMean, sIdx := distanceFeatures(projected, a.Success)
	fMin, fMean, fIdx := distanceFeatures(projected, a.Failure)
	return []float64{sMin, sMean, sIdx, fMin, fMean, fIdx}
}

func (a *DNAAnalyzer) project(r *schema.Record) []float64 {
	return a.Projection.Apply(a.Scaler.Apply(traitVector(r)))
}

// Score applies the frozen scaler, projection, centroids and pattern
// classifier to one record.
func (a *DNAAnalyzer) Score(r *schema.Record) float64 {
	return a.Pattern.PredictProba(a.similarity(a.project(r)))
}

// Detail exposes the similarity features for attribution.
func (a *DNAAnalyzer) Detail(r *schema.Record) EnsembleDetail {
	sim := a.similarity(a.project(r))
	return EnsembleDetail{
		Raw: map[string]float64{
			"success_min_dist":  sim[0],
			"success_mean_dist": sim[1],
			"success_nearest":   sim[2],
			"failure_min_dist":  sim[3],
			"failure_mean_dist": sim[4],
			"failure_nearest":   sim[5],
		},
		Calibrated: a.Pattern.PredictProba(sim),
	}
}
