package main

import (
	"fmt"
	"math"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/san-kum/physicslab/internal/integrators"
	"github.com/san-kum/physicslab/internal/metrics"
	"github.com/san-kum/physicslab/internal/optim"
	"github.com/san-kum/physicslab/internal/scenario"
	"github.com/san-kum/physicslab/internal/sim"
	"github.com/san-kum/physicslab/internal/storage"
	"github.com/san-kum/physicslab/internal/viz"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	k, err := newKernel(cfg, nil)
	if err != nil {
		return err
	}

	start := time.Now()
	result, err := sim.New(k).Run(cmd.Context(), runConfig(cfg))
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}
	elapsed := time.Since(start)

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(storage.RunMetadata{
		Preset:        preset,
		Integrator:    cfg.Kernel.Integrator,
		Gravity:       cfg.Kernel.Gravity,
		Y0:            cfg.Run.Y0,
		Vy0:           cfg.Run.Vy0,
		Dt:            cfg.Run.Dt,
		Duration:      cfg.Run.Duration,
		StepsPerFrame: cfg.Run.StepsPerFrame,
	}, result)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	final := result.Final()
	fmt.Printf("run: %s\n", runID)
	fmt.Printf("frames: %d (%v)\n", len(result.States), elapsed)
	fmt.Printf("final: %s\n", final)
	fmt.Printf("energy drift: %.3e\n\n", result.Metrics["energy_drift"])
	fmt.Println(asciigraph.Plot(result.Heights(),
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("y (height)"),
	))
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tY0\tVY0\tDT\tDURATION\tINTEG\tFINAL Y")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%g\t%g\t%.4fs\t%.2fs\t%s\t%.4f\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Y0,
			run.Vy0,
			run.Dt,
			run.Duration,
			run.Integrator,
			run.Final.Y,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	tr, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(tr.States) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("integrator: %s\n", meta.Integrator)
	fmt.Printf("samples: %d\n\n", len(tr.States))

	for _, series := range []struct {
		caption string
		data    []float64
	}{
		{"y (height)", tr.Heights()},
		{"vy (vertical velocity)", tr.Velocities()},
	} {
		fmt.Println(asciigraph.Plot(series.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(series.caption),
		))
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	tr, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		if outFile != "" {
			return storage.ExportJSONFile(outFile, *meta, tr)
		}
		return storage.ExportJSON(os.Stdout, *meta, tr)
	case "svg":
		opts := storage.DefaultSVGOptions()
		opts.Phase = phase
		if outFile != "" {
			return storage.ExportSVGFile(outFile, tr, opts)
		}
		return storage.ExportSVG(os.Stdout, tr, opts)
	default:
		return fmt.Errorf("unknown format: %s (available: json, svg)", format)
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// The TUI owns the terminal; kernel logs would corrupt it.
	cfg.Kernel.LogLevel = "error"

	k, err := newKernel(cfg, nil)
	if err != nil {
		return err
	}
	return viz.Run(k, runConfig(cfg), frameRate)
}

func benchKernel(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if worlds <= 0 {
		return fmt.Errorf("worlds must be positive, got %d", worlds)
	}

	reg := prometheus.NewRegistry()
	k, err := newKernel(cfg, metrics.NewKernel(reg))
	if err != nil {
		return err
	}

	runs := make([]sim.Config, worlds)
	for i := range runs {
		runs[i] = runConfig(cfg)
		runs[i].Y0 += float64(i)
	}

	start := time.Now()
	results, err := sim.NewEnsemble(sim.New(k), runs).Run(cmd.Context())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	steps := 0
	for _, r := range results {
		steps += (len(r.States) - 1) * int(cfg.Run.StepsPerFrame)
	}
	fmt.Printf("benchmarking %d worlds (%s)\n\n", worlds, cfg.Kernel.Integrator)
	fmt.Printf("integrator steps: %d\n", steps)
	fmt.Printf("elapsed: %v\n", elapsed)
	fmt.Printf("steps/sec: %.0f\n\n", float64(steps)/elapsed.Seconds())

	families, err := reg.Gather()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tLABELS\tVALUE")
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			var value float64
			switch {
			case m.GetCounter() != nil:
				value = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				value = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				value = float64(m.GetHistogram().GetSampleCount())
			}
			fmt.Fprintf(w, "%s\t%s\t%g\n", mf.GetName(), strings.Join(labels, ","), value)
		}
	}
	return w.Flush()
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	names := args
	if len(names) == 0 {
		names = integrators.Names()
	}

	rc := cfg.Run
	g := cfg.Kernel.Gravity
	fmt.Printf("comparing integrators (y0=%g, vy0=%g, dt=%.4f, duration=%.1fs)\n\n", rc.Y0, rc.Vy0, rc.Dt, rc.Duration)
	fmt.Printf("%-20s  %-14s  %-12s  %-12s  %-10s\n", "integrator", "final_y", "abs_error", "energy_drift", "time_ms")
	fmt.Println(strings.Repeat("-", 76))

	for _, name := range names {
		kcfg := *cfg
		kcfg.Kernel.Integrator = name
		k, err := newKernel(&kcfg, nil)
		if err != nil {
			fmt.Printf("%-20s  error: %v\n", name, err)
			continue
		}

		start := time.Now()
		result, err := sim.New(k).Run(cmd.Context(), runConfig(&kcfg))
		elapsed := time.Since(start)
		if err != nil {
			fmt.Printf("%-20s  error: %v\n", name, err)
			continue
		}

		final := result.Final()
		exact := rc.Y0 + rc.Vy0*final.T + 0.5*g*final.T*final.T
		fmt.Printf("%-20s  %14.6f  %12.2e  %12.2e  %10.2f\n",
			name, final.Y, math.Abs(final.Y-exact), result.Metrics["energy_drift"], float64(elapsed.Microseconds())/1000)
	}
	return nil
}

func sweepParams(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	k, err := newKernel(cfg, nil)
	if err != nil {
		return err
	}

	base := runConfig(cfg)
	build := func(params map[string]float64) (sim.Config, error) {
		c := base
		c.Dt = params["dt"]
		steps := params["steps_per_frame"]
		if steps < 1 || steps != math.Trunc(steps) {
			return c, fmt.Errorf("steps per frame must be a positive integer, got %g", steps)
		}
		c.StepsPerFrame = uint32(steps)
		return c, c.Validate()
	}

	g := optim.NewGridSearch(
		optim.Param{Name: "dt", Values: sweepDts},
		optim.Param{Name: "steps_per_frame", Values: sweepSteps},
	)

	start := time.Now()
	res, err := g.Search(cmd.Context(), sim.New(k), build, sweepMetric)
	if err != nil {
		return err
	}

	fmt.Printf("sweep (%s, y0=%g, vy0=%g, duration=%.1fs)\n\n", cfg.Kernel.Integrator, base.Y0, base.Vy0, base.Duration)
	fmt.Printf("evaluated: %d, rejected: %d (%v)\n", res.Evaluated, res.Rejected, time.Since(start))
	fmt.Printf("best %s: %.3e\n", sweepMetric, res.Value)
	fmt.Printf("  dt: %g\n", res.Params["dt"])
	fmt.Printf("  steps_per_frame: %g\n", res.Params["steps_per_frame"])
	return nil
}

func runScript(cmd *cobra.Command, args []string) error {
	sc, err := scenario.Load(args[0])
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	k, err := newKernel(cfg, nil)
	if err != nil {
		return err
	}

	report, err := scenario.Run(k.NewCaller(), sc, os.Stdout)
	if err != nil {
		return err
	}
	if !report.OK() {
		for _, f := range report.Failures {
			fmt.Fprintln(os.Stderr, f)
		}
		return fmt.Errorf("scenario %s: %d of %d calls returned an unexpected status", sc.Name, len(report.Failures), report.Calls)
	}
	return nil
}
