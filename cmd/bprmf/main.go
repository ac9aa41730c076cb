package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aouyang1/go-densematrix/factor"
	"github.com/goccy/go-json"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

type config struct {
	users      int
	items      int
	density    float64
	reportPath string
	chartPath  string
	profileDir string
	verbose    bool

	opt *factor.Options
}

func newRootCmd() *cobra.Command {
	cfg := &config{opt: factor.NewDefaultOptions()}

	cmd := &cobra.Command{
		Use:   "bprmf",
		Short: "train a BPR matrix factorization model on simulated implicit feedback",
		Long: `
  Simulates a users by items implicit feedback matrix with two planted
  communities, fits a BPR matrix factorization model and writes a JSON
  report of the per iteration objective, AUC and factor norms.
`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfg, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&cfg.users, "users", 200, "number of simulated users")
	flags.IntVar(&cfg.items, "items", 150, "number of simulated items")
	flags.Float64Var(&cfg.density, "density", 0.1, "expected fraction of positive feedback cells")
	flags.IntVar(&cfg.opt.NumFactors, "factors", cfg.opt.NumFactors, "number of latent factors")
	flags.IntVar(&cfg.opt.Iterations, "iterations", cfg.opt.Iterations, "number of passes over the positive feedback")
	flags.Float64Var(&cfg.opt.LearnRate, "learn-rate", cfg.opt.LearnRate, "stochastic gradient step size")
	flags.Float64Var(&cfg.opt.RegUser, "reg-user", cfg.opt.RegUser, "user factor regularization")
	flags.Float64Var(&cfg.opt.RegPositive, "reg-positive", cfg.opt.RegPositive, "positive item factor regularization")
	flags.Float64Var(&cfg.opt.RegNegative, "reg-negative", cfg.opt.RegNegative, "negative item factor regularization")
	flags.Float64Var(&cfg.opt.RegBias, "reg-bias", cfg.opt.RegBias, "item bias regularization")
	flags.IntVar(&cfg.opt.EvalSamples, "eval-samples", cfg.opt.EvalSamples, "number of triples scored per iteration")
	flags.Uint64Var(&cfg.opt.Seed, "seed", cfg.opt.Seed, "random seed for simulation and training")
	flags.StringVar(&cfg.reportPath, "report", "", "write the JSON report to this file instead of stdout")
	flags.StringVar(&cfg.chartPath, "chart", "", "write an html chart of the training history to this file")
	flags.StringVar(&cfg.profileDir, "cpuprofile", "", "write a cpu profile into this directory")
	flags.BoolVarP(&cfg.verbose, "verbose", "v", false, "log every training iteration")

	return cmd
}

func run(cfg *config, stdout io.Writer) error {
	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if cfg.profileDir != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(cfg.profileDir), profile.Quiet).Stop()
	}

	feedback, err := factor.Simulate(cfg.users, cfg.items, cfg.density, cfg.opt.Seed)
	if err != nil {
		return fmt.Errorf("unable to simulate feedback, %w", err)
	}

	model, err := factor.New(cfg.opt)
	if err != nil {
		return err
	}
	if err := model.Fit(feedback); err != nil {
		return fmt.Errorf("unable to fit model, %w", err)
	}

	report, err := model.Report()
	if err != nil {
		return err
	}
	bytes, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to encode report, %w", err)
	}

	if cfg.reportPath != "" {
		if err := os.WriteFile(cfg.reportPath, bytes, 0o644); err != nil {
			return err
		}
		slog.Info("wrote report", "path", cfg.reportPath)
	} else {
		if _, err := fmt.Fprintln(stdout, string(bytes)); err != nil {
			return err
		}
	}

	if cfg.chartPath != "" {
		if err := model.PlotHistory(cfg.chartPath); err != nil {
			return fmt.Errorf("unable to plot history, %w", err)
		}
		slog.Info("wrote chart", "path", cfg.chartPath)
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
