// Package clock wires the automaton to a board: setup hands the pins and timer
// to the interrupt context, and the idle context reports statistics, publishes
// telemetry on the bus and keeps the status pixel current.
package clock

import (
	"context"
	"sync/atomic"

	"stutterclock-go/automaton"
	"stutterclock-go/bus"
	"stutterclock-go/errcode"
	"stutterclock-go/platform"
	"stutterclock-go/report"
	"stutterclock-go/services/config"
	"stutterclock-go/types"
	"stutterclock-go/x/timex"
)

var (
	TopicStats       = bus.T("clock", "stats")
	TopicTick        = bus.T("clock", "tick")
	TopicPositionGet = bus.T("clock", "position", "get")
)

type Service struct {
	cfg   types.BoardConfig
	board *platform.Board

	counters *automaton.Counters
	inbox    *automaton.Handoff[automaton.Handles]
	auto     *automaton.Automaton
	rep      *report.Reporter

	conn    *bus.Connection
	started atomic.Bool

	// idle context only
	lastTicks   uint32
	lastFirings uint32
}

// New builds the automaton for a finished profile. Nothing runs until Setup.
func New(cfg types.BoardConfig, board *platform.Board) (*Service, error) {
	if board == nil {
		return nil, errcode.New(errcode.InvalidParams, "clock.New", "nil board")
	}
	opts, err := config.Options(cfg)
	if err != nil {
		return nil, err
	}
	s := &Service{
		cfg:      cfg,
		board:    board,
		counters: &automaton.Counters{},
		inbox:    &automaton.Handoff[automaton.Handles]{},
	}
	if s.auto, err = automaton.New(s.counters, s.inbox, opts...); err != nil {
		return nil, err
	}
	s.rep = report.New(s.counters, board.Transport)
	s.rep.OnReport = s.publishStats
	return s, nil
}

// Setup hands the output lines and timer to the interrupt context and arms the
// timer. The caller must not touch the board's pins or timer afterwards.
func (s *Service) Setup() error {
	if !s.started.CompareAndSwap(false, true) {
		return errcode.TimerRunning
	}
	h := s.board.Handles()
	if err := h.Validate(); err != nil {
		return err
	}
	if err := s.inbox.Put(h); err != nil {
		return err
	}
	if err := s.board.Timer.Start(s.auto.Fire); err != nil {
		return errcode.Wrap(errcode.Of(err), "clock.Setup", err)
	}
	println("Info: [clock]", s.cfg.Name, "running, mode", s.cfg.Mode)
	return nil
}

// Run is the idle loop: wait for any interrupt, refresh telemetry, then write
// one status line if a session is up. It returns when ctx is done.
func (s *Service) Run(ctx context.Context) error {
	return s.rep.Run(ctx, s)
}

// Wait implements report.Waker around the board's waker so every wake also
// updates the pixel and tick telemetry.
func (s *Service) Wait(ctx context.Context) error {
	if err := s.board.Waker.Wait(ctx); err != nil {
		return err
	}
	s.observe()
	return nil
}

func (s *Service) observe() {
	firings := s.auto.Firings()
	if firings == s.lastFirings {
		return
	}
	s.lastFirings = firings

	ticks := s.auto.Ticks()
	ticked := ticks != s.lastTicks
	s.lastTicks = ticks

	if s.board.Pixel != nil {
		macro, _ := s.auto.Position()
		if err := s.board.Pixel.Show(macro, ticked); err != nil {
			println("Warn: [clock] pixel:", err.Error())
		}
	}
	if ticked && s.conn != nil {
		s.conn.Publish(s.conn.NewMessage(TopicTick, types.TickValue{
			Ticks:   ticks,
			Firings: firings,
			TSms:    timex.NowMs(),
		}, false))
	}
}

func (s *Service) publishStats(snap automaton.Snapshot) {
	if s.conn == nil {
		return
	}
	ratio, _ := snap.RatioMilli()
	s.conn.Publish(s.conn.NewMessage(TopicStats, types.StatsValue{
		RatioMilli: ratio,
		Counts:     snap.Counts,
		Total:      snap.Total(),
		TSms:       timex.NowMs(),
	}, true))
}

func (s *Service) position() types.PositionValue {
	m, sub := s.auto.Position()
	return types.PositionValue{Macro: m, Substep: sub}
}

func (s *Service) serveRequests(ctx context.Context, sub *bus.Subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.Channel():
			if !ok {
				return
			}
			s.conn.Reply(msg, s.position(), false)
		}
	}
}

// Start attaches the bus connection, performs Setup and runs the idle loop in
// a goroutine.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	s.conn = conn
	if err := s.Setup(); err != nil {
		return err
	}
	if conn != nil {
		sub := conn.Subscribe(TopicPositionGet)
		go func() {
			defer conn.Unsubscribe(sub)
			s.serveRequests(ctx, sub)
		}()
	}
	go func() {
		err := s.Run(ctx)
		s.board.Timer.Stop()
		println("Info: [clock] stopped:", err.Error())
	}()
	return nil
}

// Snapshot, Ticks, Firings, Position and Reporter are read-only views for the
// idle context and tools.
func (s *Service) Snapshot() automaton.Snapshot  { return s.counters.Snapshot() }
func (s *Service) Ticks() uint32                 { return s.auto.Ticks() }
func (s *Service) Firings() uint32               { return s.auto.Firings() }
func (s *Service) Position() types.PositionValue { return s.position() }
func (s *Service) Reporter() *report.Reporter    { return s.rep }
