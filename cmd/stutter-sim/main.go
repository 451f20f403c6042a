//go:build !rp2040

// stutter-sim prints the long-run behaviour of a transition table and runs the
// generator for a number of simulated minutes and one simulated day.
package main

import (
	"flag"
	"fmt"
	"os"

	"stutterclock-go/analysis"
	"stutterclock-go/automaton"
	"stutterclock-go/services/config"
	"stutterclock-go/x/mathx"
	"stutterclock-go/x/strconvx"
)

func main() {
	var (
		mode     = flag.String("mode", "stutter", "Transition table: stutter or steady.")
		seed     = flag.String("seed", "0xACE1", "LFSR seed, non-zero 16 bits (decimal or 0x hex).")
		label    = flag.String("seed-label", "", "Derive the seed from a label instead of -seed.")
		dwell    = flag.Uint("dwell", config.DefaultDwell, "Firings per macro-state: 1, 2, 4, 8 or 16.")
		periodMs = flag.Uint("period-ms", config.DefaultPeriodMs, "Timer period in milliseconds.")
		minutes  = flag.Int("minutes", 20, "Simulated minutes to report one by one.")
		day      = flag.Bool("day", true, "Also simulate one full day.")
		hist     = flag.Bool("intervals", false, "Print the tick-interval histogram of the day run.")
	)
	flag.Parse()

	if err := run(*mode, *seed, *label, *dwell, *periodMs, *minutes, *day, *hist); err != nil {
		fmt.Fprintln(os.Stderr, "stutter-sim:", err)
		os.Exit(1)
	}
}

func run(modeName, seedText, label string, dwell, periodMs uint, minutes int, day, hist bool) error {
	mode, err := automaton.ParseMode(modeName)
	if err != nil {
		return err
	}
	seed, err := strconvx.ParseUint(seedText, 0, 16)
	if err != nil || seed == 0 {
		return fmt.Errorf("bad seed %q", seedText)
	}
	if label != "" {
		s, err := config.SeedFromLabel(label)
		if err != nil {
			return err
		}
		seed = uint64(s)
	}
	if dwell > 0xFF {
		return fmt.Errorf("dwell %d out of range", dwell)
	}
	k, err := config.SubstepBits(uint8(dwell))
	if err != nil {
		return err
	}
	if periodMs == 0 {
		return fmt.Errorf("period-ms must be > 0")
	}

	m := analysis.FromTable(mode.Table())
	l := analysis.Limit(m)
	fmt.Printf("limit matrix (P^%d):\n", analysis.LimitPower)
	for _, row := range l {
		fmt.Printf("  %.6f %.6f %.6f %.6f\n", row[0], row[1], row[2], row[3])
	}
	fmt.Printf("stationary = %.6f\n", analysis.Stationary(m))
	fmt.Printf("speed = %.9f\n", analysis.Speed(m))
	fmt.Printf("avg drift / day = %.6f s\n", analysis.DriftPerDay(m))

	sim, err := analysis.NewSimulator(analysis.Options{Seed: uint16(seed), Mode: mode, SubstepBits: k})
	if err != nil {
		return err
	}
	perMinute := uint32(mathx.CeilDiv(60*1000, periodMs))
	for i := 0; i < minutes; i++ {
		report("simulated minute", sim.Run(perMinute), k)
	}
	if day {
		r := sim.Run(perMinute * 60 * 24)
		report("simulated day", r, k)
		if hist {
			for _, iv := range r.IntervalKeys() {
				fmt.Printf("  %4d periods (%6.3f s): %d\n", iv, float64(iv)*float64(periodMs)/1000, r.Intervals[iv])
			}
		}
	}
	return nil
}

func report(what string, r analysis.Result, k uint8) {
	total := r.Snapshot.Total()
	var frac [automaton.MacroStates]float64
	for i, c := range r.Snapshot.Counts {
		if total > 0 {
			frac[i] = float64(c) / float64(total)
		}
	}
	fmt.Printf("%s %+d %.3f %.4f\n", what, r.Excess(k), r.Snapshot.Ratio(), frac)
}
