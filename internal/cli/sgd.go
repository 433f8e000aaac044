package cli

import (
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/dpvalidate/internal/config"
	"github.com/roach88/dpvalidate/internal/errs"
	"github.com/roach88/dpvalidate/internal/sgd"
)

// SGDOptions holds flags for the sgd command.
type SGDOptions struct {
	*RootOptions
	Data            string
	LearningRate    float64
	NoiseMultiplier float64
	ClipNorm        float64
	BatchSize       int
	Iterations      int
	Seed            uint64
	LabelColumn     int
}

// SGDResult holds a training outcome.
type SGDResult struct {
	Data       string      `json:"data"`
	Records    int         `json:"records"`
	Features   int         `json:"features"`
	Iterations int         `json:"iterations"`
	Seed       uint64      `json:"seed"`
	Theta      []float64   `json:"theta"`
	Trajectory [][]float64 `json:"trajectory,omitempty"`
}

// NewSGDCommand creates the sgd command.
func NewSGDCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SGDOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sgd --data <file.csv>",
		Short: "Train a logistic regression with DP-SGD",
		Long: `Train a logistic regression on a numeric CSV file with differentially
private stochastic gradient descent.

Hyperparameters default to the sgd section of the configuration; flags given
on the command line override it. The same seed reproduces the same
parameters. With --verbose every intermediate parameter vector is printed.

Exit codes:
  0 - Training completed
  1 - Invalid data or hyperparameters
  2 - Command error (file not found, bad config)`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSGD(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Data, "data", "", "CSV file with features and a 0/1 label column")
	cmd.Flags().Float64Var(&opts.LearningRate, "learning-rate", 0.1, "step size")
	cmd.Flags().Float64Var(&opts.NoiseMultiplier, "noise-multiplier", 1, "noise standard deviation as a multiple of the clip norm")
	cmd.Flags().Float64Var(&opts.ClipNorm, "clip-norm", 1, "per-example gradient L2 bound")
	cmd.Flags().IntVar(&opts.BatchSize, "batch-size", 32, "examples per iteration")
	cmd.Flags().IntVar(&opts.Iterations, "iterations", 100, "number of iterations")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed")
	cmd.Flags().IntVar(&opts.LabelColumn, "label-column", 0, "zero-based index of the label column")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

func runSGD(opts *SGDOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	cfg, err := opts.settings()
	if err != nil {
		return err
	}
	params := opts.hyperparameters(cmd, cfg.SGD)

	f, err := os.Open(opts.Data)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open data", err)
	}
	defer f.Close()

	data, err := sgd.ReadCSV(f, params.LabelColumn)
	if err != nil {
		return outputSGDError(formatter, err)
	}
	formatter.VerboseLog("Read %d record(s) with %d feature(s)", len(data.X), data.NumFeatures())

	trainCfg := sgd.Config{
		LearningRate:    params.LearningRate,
		NoiseMultiplier: params.NoiseMultiplier,
		ClipNorm:        params.ClipNorm,
		BatchSize:       params.BatchSize,
		Iterations:      params.Iterations,
	}
	theta0 := make([]float64, data.NumFeatures()+1)
	rng := rand.New(rand.NewPCG(params.Seed, params.Seed))

	trajectory, err := sgd.Run(data, theta0, trainCfg, rng)
	if err != nil {
		return outputSGDError(formatter, err)
	}
	opts.logger().Info("sgd finished",
		"records", len(data.X),
		"iterations", params.Iterations,
		"seed", params.Seed,
	)

	result := SGDResult{
		Data:       opts.Data,
		Records:    len(data.X),
		Features:   data.NumFeatures(),
		Iterations: params.Iterations,
		Seed:       params.Seed,
		Theta:      trajectory[len(trajectory)-1],
	}
	if opts.Verbose {
		result.Trajectory = trajectory
	}
	return outputSGDResult(formatter, result)
}

// hyperparameters starts from the configured values and applies the flags
// set on the command line.
func (o *SGDOptions) hyperparameters(cmd *cobra.Command, params config.SGDConfig) config.SGDConfig {
	flags := cmd.Flags()
	if flags.Changed("learning-rate") {
		params.LearningRate = o.LearningRate
	}
	if flags.Changed("noise-multiplier") {
		params.NoiseMultiplier = o.NoiseMultiplier
	}
	if flags.Changed("clip-norm") {
		params.ClipNorm = o.ClipNorm
	}
	if flags.Changed("batch-size") {
		params.BatchSize = o.BatchSize
	}
	if flags.Changed("iterations") {
		params.Iterations = o.Iterations
	}
	if flags.Changed("seed") {
		params.Seed = o.Seed
	}
	if flags.Changed("label-column") {
		params.LabelColumn = o.LabelColumn
	}
	return params
}

func outputSGDError(formatter *OutputFormatter, err error) error {
	_ = formatter.Error("E_SGD", err.Error(), map[string]string{"kind": string(errs.KindOf(err))})
	return WrapExitError(ExitFailure, "training failed", err)
}

func outputSGDResult(formatter *OutputFormatter, result SGDResult) error {
	if formatter.Format == "json" {
		return formatter.JSON(CLIResponse{Data: result})
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Trained on %d record(s), %d feature(s), %d iteration(s), seed %d\n",
		result.Records, result.Features, result.Iterations, result.Seed)
	for i, theta := range result.Trajectory {
		fmt.Fprintf(w, "  %4d %s\n", i+1, formatVector(theta))
	}
	fmt.Fprintf(w, "theta: %s\n", formatVector(result.Theta))
	return nil
}

func formatVector(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprintf("%.6g", x)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
