// cmd/trainer/main.go

// Binary trainer fits the churn prediction pipeline from a labeled CSV and
// writes the serving artifact. Runs offline; the api-server picks up the new
// artifact on its next start.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"churnshield/internal/common/config"
	"churnshield/internal/common/logger"
	"churnshield/internal/ml/training"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	trainCfg := training.DefaultConfig()
	trainCfg.DataPath = cfg.Model.DatasetPath
	trainCfg.ArtifactPath = cfg.Model.ArtifactPath

	flag.StringVar(&trainCfg.DataPath, "data", trainCfg.DataPath, "path to the labeled training CSV")
	flag.StringVar(&trainCfg.ArtifactPath, "out", trainCfg.ArtifactPath, "path to write the pipeline artifact")
	flag.Float64Var(&trainCfg.TestFraction, "test-fraction", trainCfg.TestFraction, "held-out fraction for evaluation")
	flag.Int64Var(&trainCfg.Seed, "seed", trainCfg.Seed, "random seed for the stratified split")
	flag.IntVar(&trainCfg.Boosting.NumTrees, "trees", trainCfg.Boosting.NumTrees, "number of boosting rounds")
	flag.IntVar(&trainCfg.Boosting.MaxDepth, "depth", trainCfg.Boosting.MaxDepth, "maximum tree depth")
	flag.Float64Var(&trainCfg.Boosting.LearningRate, "learning-rate", trainCfg.Boosting.LearningRate, "shrinkage applied to each tree")
	flag.Parse()

	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()
	log := logger.NewZapAdapter(zapLogger.With(zap.String("component", "trainer")))

	result, err := training.Run(trainCfg, log)
	if err != nil {
		log.Error("training run failed", map[string]interface{}{"error": err})
		os.Exit(1)
	}

	log.Info("training complete", map[string]interface{}{
		"artifact":  trainCfg.ArtifactPath,
		"trainRows": result.TrainRows,
		"testRows":  result.TestRows,
		"posWeight": result.PosWeight,
		"accuracy":  result.Metrics.Accuracy,
		"precision": result.Metrics.Precision,
		"recall":    result.Metrics.Recall,
		"f1":        result.Metrics.F1,
		"rocAuc":    result.Metrics.ROCAUC,
	})
}
