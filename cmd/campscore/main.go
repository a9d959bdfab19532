package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"campscore/internal/cfg"
	"campscore/internal/dataset"
	"campscore/internal/engine"
	"campscore/internal/metrics"
	"campscore/internal/schema"
	"campscore/internal/storage"
)

func main() {
	_ = godotenv.Load()

	var (
		mode        = flag.String("mode", "train", "Mode: train, score, evaluate, versions, rollback")
		datasetPath = flag.String("dataset", "", "Path to CSV dataset (overrides config)")
		recordPath  = flag.String("record", "-", "Record JSON file for score mode, - for stdin")
		version     = flag.String("version", "", "Bundle version to load (default: active)")
		explain     = flag.Bool("explain", false, "Emit per-ensemble attribution in score mode")
		logLevel    = flag.String("log-level", "", "Log level: debug, info, warn, error")
		splitSeed   = flag.Int64("split-seed", 42, "Seed for the train/holdout split")
	)
	flag.Parse()

	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	lvlStr := c.LogLevel
	if *logLevel != "" {
		lvlStr = *logLevel
	}
	level, err := zerolog.ParseLevel(lvlStr)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *datasetPath != "" {
		c.DatasetPath = *datasetPath
	}

	switch *mode {
	case "train":
		runTrain(c, *splitSeed)
	case "score":
		runScore(c, *version, *recordPath, *explain)
	case "evaluate":
		runEvaluate(c, *version)
	case "versions":
		runVersions(c)
	case "rollback":
		runRollback(c)
	default:
		log.Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}

func engineParams(c cfg.Settings, rec engine.Recorder) engine.Params {
	return engine.Params{
		MinTrainingRows:  c.MinTrainingRows,
		MinBucketSamples: c.MinBucketSamples,
		MinSectorSamples: c.MinSectorSamples,
		ProjectionDims:   c.ProjectionDims,
		MaxClusters:      c.MaxClusters,
		MinClusterRows:   c.MinClusterRows,
		Metrics:          rec,
	}
}

func loadDataset(c cfg.Settings) ([]schema.Record, []int) {
	switch {
	case c.DatasetPath != "":
		records, labels, err := dataset.LoadCSV(c.DatasetPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", c.DatasetPath).Msg("dataset load failed")
		}
		return records, labels
	case c.DatasetURL != "":
		client := dataset.NewClient(c.DatasetURL, c.DatasetTimeout)
		records, labels, err := client.Fetch()
		if err != nil {
			log.Fatal().Err(err).Str("url", c.DatasetURL).Msg("dataset fetch failed")
		}
		return records, labels
	default:
		log.Fatal().Msg("no dataset configured: set -dataset, DATASET_PATH or DATASET_URL")
		return nil, nil
	}
}

func openStore(c cfg.Settings) *storage.Store {
	if c.DataPath == "" {
		log.Fatal().Msg("DATA_PATH is required for bundle storage")
	}
	store, err := storage.New(c.DataPath)
	if err != nil {
		log.Fatal().Err(err).Msg("storage initialization failed")
	}
	return store
}

func runTrain(c cfg.Settings, splitSeed int64) {
	records, labels := loadDataset(c)

	m := metrics.New()
	rec := metrics.NewRecorder(m)

	trainX, trainY, holdX, holdY := dataset.Split(records, labels, c.HoldoutRatio, splitSeed)
	log.Info().
		Int("train_rows", len(trainX)).
		Int("holdout_rows", len(holdX)).
		Msg("dataset split")

	eng, err := engine.Train(trainX, trainY, engineParams(c, rec))
	if err != nil {
		log.Fatal().Err(err).Msg("training failed")
	}

	if len(holdX) > 0 {
		res := eng.Evaluate(holdX, holdY)
		log.Info().
			Int("rows", res.Rows).
			Float64("auc", res.AUC).
			Float64("accuracy", res.Accuracy).
			Float64("brier", res.Brier).
			Msg("holdout evaluation")
	}

	store := openStore(c)
	defer store.Close()

	bundle := eng.Snapshot()
	if err := store.SaveBundle(bundle); err != nil {
		log.Fatal().Err(err).Msg("bundle save failed")
	}
	log.Info().Str("version", bundle.Version).Msg("bundle saved and activated")
}

func restoreEngine(c cfg.Settings, version string) (*engine.Engine, *storage.Store) {
	store := openStore(c)

	var (
		bundle *engine.Bundle
		err    error
	)
	if version != "" {
		bundle, err = store.LoadVersion(version)
	} else {
		bundle, err = store.LoadActive()
	}
	if err != nil {
		store.Close()
		log.Fatal().Err(err).Msg("bundle load failed")
	}

	m := metrics.New()
	rec := metrics.NewRecorder(m)
	rec.SetBundleAge(bundle.CreatedAt)

	eng, err := engine.Restore(bundle, rec)
	if err != nil {
		store.Close()
		log.Fatal().Err(err).Msg("bundle restore failed")
	}
	return eng, store
}

func runScore(c cfg.Settings, version, recordPath string, explain bool) {
	eng, store := restoreEngine(c, version)
	defer store.Close()

	var raw []byte
	var err error
	if recordPath == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(recordPath)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("record read failed")
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		log.Fatal().Err(err).Msg("record parse failed")
	}
	record, err := schema.Normalize(fields)
	if err != nil {
		log.Fatal().Err(err).Msg("record normalization failed")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if explain {
		exp := eng.Explain(record)
		if err := enc.Encode(exp); err != nil {
			log.Fatal().Err(err).Msg("output encode failed")
		}
		return
	}
	score := eng.Score(record)
	if err := enc.Encode(map[string]float64{"probability": score}); err != nil {
		log.Fatal().Err(err).Msg("output encode failed")
	}
}

func runEvaluate(c cfg.Settings, version string) {
	eng, store := restoreEngine(c, version)
	defer store.Close()

	records, labels := loadDataset(c)
	res := eng.Evaluate(records, labels)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		log.Fatal().Err(err).Msg("output encode failed")
	}
}

func runVersions(c cfg.Settings) {
	store := openStore(c)
	defer store.Close()

	infos, err := store.ListVersions()
	if err != nil {
		log.Fatal().Err(err).Msg("version listing failed")
	}
	for _, info := range infos {
		marker := " "
		if info.Active {
			marker = "*"
		}
		fmt.Printf("%s %s  schema=%s  rows=%d  skipped=%d  created=%s\n",
			marker, info.Version, info.SchemaVersion, info.Rows, info.Skipped,
			info.CreatedAt.Format("2006-01-02 15:04:05"))
	}
}

func runRollback(c cfg.Settings) {
	store := openStore(c)
	defer store.Close()

	version, err := store.Rollback()
	if err != nil {
		log.Fatal().Err(err).Msg("rollback failed")
	}
	log.Info().Str("version", version).Msg("rolled back active bundle")
}
