package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/parzivale/particlesim/internal/config"
	"github.com/parzivale/particlesim/internal/export"
	"github.com/parzivale/particlesim/internal/geom"
	"github.com/parzivale/particlesim/internal/metrics"
	"github.com/parzivale/particlesim/internal/sim"
	"github.com/parzivale/particlesim/internal/viz"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"
)

var (
	frameRate  int
	theme      string
	scale      float64
	format     string
	every      int
	runs       int
	speedLimit float64
)

// main registers the commands and runs the preset picker when no
// subcommand is given.
func main() {
	rootCmd := &cobra.Command{
		Use:          "particlesim",
		Short:        "2d bouncing ball simulation",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive(liveOptions(config.DefaultConfig()))
		},
	}
	rootCmd.Flags().IntVar(&frameRate, "fps", 60, "frame rate")
	rootCmd.Flags().StringVar(&theme, "theme", viz.ThemeCyberpunk.Name, "color theme")
	rootCmd.Flags().Float64Var(&scale, "scale", 2, "world units per braille dot")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the simulation in the terminal",
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 60, "frame rate")
	liveCmd.Flags().StringVar(&theme, "theme", viz.ThemeCyberpunk.Name, "color theme")
	liveCmd.Flags().Float64Var(&scale, "scale", 2, "world units per braille dot")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation",
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().StringVar(&format, "format", "text", "output format (text, json, csv)")
	runCmd.Flags().IntVar(&every, "every", 0, "print a summary row every n ticks (0 = ten rows)")
	runCmd.Flags().Float64Var(&speedLimit, "speed-limit", 50, "speed above which a tick counts as unstable")

	packCmd := &cobra.Command{
		Use:   "pack",
		Short: "scatter and pack balls without simulating",
		RunE:  runPack,
	}
	addSimFlags(packCmd)
	packCmd.Flags().StringVar(&format, "format", "text", "output format (text, svg)")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "run an ensemble of seeded simulations",
		RunE:  runBench,
	}
	addSimFlags(benchCmd)
	benchCmd.Flags().IntVar(&runs, "runs", 8, "number of runs")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PRESET\tBALLS\tSIZE\tMASS\tVELOCITY")
			for _, name := range config.ListPresets() {
				s := config.GetPreset(name).Simulation
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", name, s.BallCount, s.SizeRange, s.MassRange, s.VelocityRange)
			}
			return w.Flush()
		},
	}

	rootCmd.AddCommand(liveCmd, runCmd, packCmd, benchCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func liveOptions(cfg *config.Config) viz.LiveOptions {
	return viz.LiveOptions{
		Scale: float32(scale),
		Dt:    float32(cfg.Run.Dt),
		FPS:   frameRate,
		Theme: theme,
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	// the terminal belongs to the view
	s, err := sim.New(*cfg, sim.WithLogger(log.New(io.Discard)))
	if err != nil {
		return err
	}
	return viz.RunLive(s, liveOptions(cfg))
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := stderrLogger(cfg)
	if err != nil {
		return err
	}

	opts := []sim.Option{sim.WithLogger(logger), sim.WithMetric(metrics.NewStability(float32(speedLimit)))}
	for _, m := range metrics.Standard() {
		opts = append(opts, sim.WithMetric(m))
	}
	s, err := sim.New(*cfg, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := s.Run(ctx, fixedViewport(cfg), sim.RunConfig{Ticks: cfg.Run.Ticks, Dt: float32(cfg.Run.Dt)})
	if res == nil {
		return err
	}
	if err != nil {
		logger.Warn("run ended early", "err", err)
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		return writeJSON(out, res)
	case "csv":
		return writeCSV(out, res)
	case "text":
		return writeText(out, res)
	}
	return fmt.Errorf("unknown format: %s", format)
}

func writeText(out io.Writer, res *sim.Result) error {
	fmt.Fprintf(out, "seed: %d\n", res.Seed)
	fmt.Fprintf(out, "pack: %s\n", res.Pack)
	fmt.Fprintf(out, "ticks: %d in %v (%.0f ticks/sec)\n\n", res.Ticks, res.Elapsed, res.TicksPerSecond())

	n := every
	if n <= 0 {
		n = max(res.Ticks/10, 1)
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TICK\tENERGY\tMOMENTUM\tCONTACTS\tBALLS")
	for i := n - 1; i < res.Ticks; i += n {
		fmt.Fprintf(w, "%d\t%.3f\t%.3f\t%d\t%d\n", i+1, res.Energy[i], res.Momentum[i], res.Contacts[i], res.Balls[i])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	names := make([]string, 0, len(res.Metrics))
	for name := range res.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(out, "\nmetrics:")
	for _, name := range names {
		fmt.Fprintf(out, "  %s: %.6f\n", name, res.Metrics[name])
	}

	if len(res.Energy) > 1 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, asciigraph.Plot(res.Energy,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("kinetic energy"),
		))
	}
	return nil
}

type runSummary struct {
	Seed           uint64             `json:"seed"`
	Initial        int                `json:"initial"`
	Survivors      int                `json:"survivors"`
	RelaxSteps     int                `json:"relax_steps"`
	ResolvePasses  int                `json:"resolve_passes"`
	Converged      bool               `json:"converged"`
	Ticks          int                `json:"ticks"`
	TicksPerSecond float64            `json:"ticks_per_second"`
	Metrics        map[string]float64 `json:"metrics"`
	Energy         []float64          `json:"energy"`
	Contacts       []int              `json:"contacts"`
}

func writeJSON(out io.Writer, res *sim.Result) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(runSummary{
		Seed:           res.Seed,
		Initial:        res.Pack.Initial,
		Survivors:      res.Pack.Survivors,
		RelaxSteps:     res.Pack.RelaxSteps,
		ResolvePasses:  res.Pack.ResolvePasses,
		Converged:      res.Pack.Converged,
		Ticks:          res.Ticks,
		TicksPerSecond: res.TicksPerSecond(),
		Metrics:        res.Metrics,
		Energy:         res.Energy,
		Contacts:       res.Contacts,
	})
}

func writeCSV(out io.Writer, res *sim.Result) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"tick", "energy", "momentum", "contacts", "balls"}); err != nil {
		return err
	}
	for i := 0; i < res.Ticks; i++ {
		row := []string{
			strconv.Itoa(i + 1),
			strconv.FormatFloat(res.Energy[i], 'f', 6, 64),
			strconv.FormatFloat(res.Momentum[i], 'f', 6, 64),
			strconv.Itoa(res.Contacts[i]),
			strconv.Itoa(res.Balls[i]),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func runPack(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := stderrLogger(cfg)
	if err != nil {
		return err
	}
	s, err := sim.New(*cfg, sim.WithLogger(logger))
	if err != nil {
		return err
	}

	vp := fixedViewport(cfg)
	rep, err := s.Setup(vp)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case "svg":
		opts := export.DefaultSVGOptions()
		opts.Velocity = 10
		return export.WriteSVG(out, s.Balls(), geom.MustBounds(vp), opts)
	case "text":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	fmt.Fprintf(out, "seed: %d\n", s.Seed())
	fmt.Fprintf(out, "pack: %s\n\n", rep)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tX\tY\tRADIUS\tMASS\tVX\tVY")
	for _, e := range s.Balls() {
		b := e.Ball
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%d\t%d\t%.3f\t%.3f\n",
			e.ID, b.Position.X(), b.Position.Y(), b.Radius, b.Mass, b.Velocity[0], b.Velocity[1])
	}
	return w.Flush()
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := stderrLogger(cfg)
	if err != nil {
		return err
	}

	seedStart := cfg.Simulation.Seed
	if seedStart == 0 {
		seedStart = 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "benchmarking %d runs of %d balls, %d ticks\n\n", runs, cfg.Simulation.BallCount, cfg.Run.Ticks)
	results, err := sim.NewEnsemble(*cfg, runs, seedStart, logger).
		Run(ctx, fixedViewport(cfg), sim.RunConfig{Ticks: cfg.Run.Ticks, Dt: float32(cfg.Run.Dt)})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSEED\tSURVIVORS\tTICKS\tTIME\tTICKS/SEC")
	survivors := make([]float64, len(results))
	rates := make([]float64, len(results))
	for i, r := range results {
		survivors[i] = float64(r.Pack.Survivors)
		rates[i] = r.TicksPerSecond()
		fmt.Fprintf(w, "%d\t%d\t%d/%d\t%d\t%v\t%.0f\n", i, r.Seed, r.Pack.Survivors, r.Pack.Initial, r.Ticks, r.Elapsed, rates[i])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(results) > 1 {
		sm, ss := stat.MeanStdDev(survivors, nil)
		rm, rs := stat.MeanStdDev(rates, nil)
		fmt.Fprintf(cmd.OutOrStdout(), "\nsurvivors: %.1f ± %.1f\nticks/sec: %.0f ± %.0f\n", sm, ss, rm, rs)
	}
	return nil
}
