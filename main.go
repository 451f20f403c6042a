//go:build rp2040

package main

import (
	"context"
	"time"

	"stutterclock-go/platform"
	"stutterclock-go/services/clock"
	"stutterclock-go/services/config"
)

// profile selects the board; set with -ldflags "-X main.profile=rp2040-zero".
var profile = config.DefaultProfile

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("[main] boot, profile", profile)

	cfg, err := config.Load(profile)
	if err != nil {
		halt("config", err)
	}
	board, err := platform.Setup(cfg)
	if err != nil {
		halt("platform", err)
	}
	svc, err := clock.New(cfg, board)
	if err != nil {
		halt("clock", err)
	}
	if err := svc.Setup(); err != nil {
		halt("setup", err)
	}

	// The idle context owns the core from here on; the walk runs in the
	// PWM wrap interrupt.
	_ = svc.Run(context.Background())
}

func halt(stage string, err error) {
	for {
		println("Error: [main]", stage, err.Error())
		time.Sleep(5 * time.Second)
	}
}
