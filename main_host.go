//go:build !rp2040

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"stutterclock-go/bus"
	"stutterclock-go/platform"
	"stutterclock-go/services/clock"
	"stutterclock-go/services/config"
	"stutterclock-go/services/monitor"
	"stutterclock-go/types"
)

func main() {
	profile := flag.String("profile", "host", "Embedded board profile.")
	file := flag.String("file", "", "Load the profile from a YAML file instead.")
	runFor := flag.Duration("for", 0, "Stop after this long (0 = until interrupted).")
	quiet := flag.Bool("quiet", false, "Do not start the monitor service.")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if *runFor > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *runFor)
		defer cancel()
	}

	if err := run(ctx, *profile, *file, !*quiet); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, profile, file string, withMonitor bool) error {
	var (
		cfg types.BoardConfig
		err error
	)
	if file != "" {
		cfg, err = config.LoadFile(file)
	} else {
		cfg, err = config.Load(profile)
	}
	if err != nil {
		return err
	}

	board, err := platform.Setup(cfg)
	if err != nil {
		return err
	}
	if tr, ok := board.Transport.(*platform.HostTransport); ok {
		// A host run has a terminal attached from the start.
		tr.Open()
		tr.Start(ctx)
	}

	b := bus.NewBus(16)
	config.NewService(cfg).Start(ctx, b.NewConnection("config"))
	if withMonitor {
		if err := (&monitor.Service{}).Start(ctx, b.NewConnection("monitor")); err != nil {
			return err
		}
	}

	svc, err := clock.New(cfg, board)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx, b.NewConnection("clock")); err != nil {
		return err
	}

	<-ctx.Done()
	// Let the drain goroutine flush the last line.
	time.Sleep(50 * time.Millisecond)
	snap := svc.Snapshot()
	fmt.Fprintf(os.Stderr, "stopped: %d firings, %d ticks, counts %v, ratio %.3f\n",
		svc.Firings(), svc.Ticks(), snap.Counts, snap.Ratio())
	return nil
}
