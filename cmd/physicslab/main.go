package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/san-kum/physicslab/internal/config"
	"github.com/san-kum/physicslab/internal/kernel"
	"github.com/san-kum/physicslab/internal/metrics"
	"github.com/san-kum/physicslab/internal/sim"
)

var (
	dataDir       string
	configFile    string
	preset        string
	logLevel      string
	integrator    string
	y0            float64
	vy0           float64
	dt            float64
	duration      float64
	stepsPerFrame uint32
	frameRate     int
	worlds        int
	outFile       string
	format        string
	phase         bool
	sweepDts      []float64
	sweepSteps    []float64
	sweepMetric   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "physicslab",
		Short:        "gravity kernel lab",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".physicslab", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a free-fall simulation and record it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot height and velocity of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportCmd.Flags().StringVarP(&format, "format", "f", "json", "export format (json, svg)")
	exportCmd.Flags().BoolVar(&phase, "phase", false, "svg: plot vy against y")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "step a world with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "step many worlds concurrently and report kernel metrics",
		Args:  cobra.NoArgs,
		RunE:  benchKernel,
	}
	addRunFlags(benchCmd)
	benchCmd.Flags().IntVar(&worlds, "worlds", 64, "number of concurrent worlds")

	compareCmd := &cobra.Command{
		Use:   "compare [integrator1] [integrator2] ...",
		Short: "compare integrators against the analytic solution",
		RunE:  compareIntegrators,
	}
	addRunFlags(compareCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid search dt and steps per frame for the lowest metric",
		Args:  cobra.NoArgs,
		RunE:  sweepParams,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().Float64SliceVar(&sweepDts, "dts", []float64{0.1, 0.05, 0.01, 0.005, 0.001}, "timesteps to try")
	sweepCmd.Flags().Float64SliceVar(&sweepSteps, "steps-grid", []float64{1, 10}, "steps per frame to try")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "energy_drift", "metric to minimise")

	scriptCmd := &cobra.Command{
		Use:   "script [scenario.yaml]",
		Short: "replay a scripted sequence of kernel calls",
		Args:  cobra.ExactArgs(1),
		RunE:  runScript,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				p := config.Presets[name]
				fmt.Printf("  %-8s y0=%-6g vy0=%-6g dt=%-6g duration=%gs\n", name, p.Y0, p.Vy0, p.Dt, p.Duration)
			}
			return nil
		},
	}

	configCmd := &cobra.Command{
		Use:   "config [path]",
		Short: "write the effective configuration as yaml",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return config.Save(args[0], cfg)
		},
	}
	addRunFlags(configCmd)

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, liveCmd, benchCmd, compareCmd, sweepCmd, scriptCmd, presetsCmd, configCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "use preset initial conditions")
	cmd.Flags().StringVar(&integrator, "integrator", "", "integrator")
	cmd.Flags().Float64Var(&y0, "y0", config.DefaultY0, "initial height")
	cmd.Flags().Float64Var(&vy0, "vy0", config.DefaultVy0, "initial vertical velocity")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().Uint32Var(&stepsPerFrame, "steps", config.DefaultStepsPerFrame, "integrator steps per kernel call")
}

// loadConfig resolves the configuration: file (or defaults), then preset,
// then any flag set on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if preset != "" {
		run, ok := config.Presets[preset]
		if !ok {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg.Run = run
	}

	flags := cmd.Flags()
	if flags.Changed("integrator") {
		cfg.Kernel.Integrator = integrator
	}
	if flags.Changed("log-level") {
		cfg.Kernel.LogLevel = logLevel
	}
	if flags.Changed("y0") {
		cfg.Run.Y0 = y0
	}
	if flags.Changed("vy0") {
		cfg.Run.Vy0 = vy0
	}
	if flags.Changed("dt") {
		cfg.Run.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Run.Duration = duration
	}
	if flags.Changed("steps") {
		cfg.Run.StepsPerFrame = stepsPerFrame
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	level, _ := config.ParseLevel(cfg.Kernel.LogLevel)
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newKernel(cfg *config.Config, m *metrics.Kernel) (*kernel.Kernel, error) {
	return kernel.New(cfg.Kernel,
		kernel.WithLogger(newLogger(cfg)),
		kernel.WithMetrics(m),
	)
}

func runConfig(cfg *config.Config) sim.Config {
	return sim.FromRunConfig(cfg.Run)
}
