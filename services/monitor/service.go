package monitor

import (
	"context"
	"time"

	"stutterclock-go/bus"
	"stutterclock-go/types"
	"stutterclock-go/x/mathx"
	"stutterclock-go/x/strconvx"
)

var (
	topicConfigMonitor = bus.T("config", "monitor")
	topicStats         = bus.T("clock", "stats")
	topicTick          = bus.T("clock", "tick")
	topicPositionGet   = bus.T("clock", "position", "get")
)

const (
	defaultInterval = 5 * time.Second
	minIntervalS    = 0.01
	maxIntervalS    = 3600
)

// Service logs a one-line summary of clock telemetry every interval.
type Service struct {
	// Log receives each summary; println when nil.
	Log func(line string)

	stats  types.StatsValue
	tick   types.TickValue
	seen   bool
	posReq time.Duration
}

func (s *Service) log(line string) {
	if s.Log != nil {
		s.Log(line)
		return
	}
	println(line)
}

func (s *Service) summary(pos *types.PositionValue) string {
	if !s.seen {
		return "Info: [monitor] waiting for clock"
	}
	b := make([]byte, 0, 96)
	b = append(b, "Info: [monitor] ratio="...)
	b = strconvx.AppendMilli(b, s.stats.RatioMilli)
	b = append(b, " total="...)
	b = strconvx.AppendUint(b, s.stats.Total, 10)
	b = append(b, " ticks="...)
	b = strconvx.AppendUint(b, uint64(s.tick.Ticks), 10)
	b = append(b, " firings="...)
	b = strconvx.AppendUint(b, uint64(s.tick.Firings), 10)
	if pos != nil {
		b = append(b, " at="...)
		b = strconvx.AppendUint(b, uint64(pos.Macro), 10)
		b = append(b, '.')
		b = strconvx.AppendUint(b, uint64(pos.Substep), 10)
	}
	return string(b)
}

func (s *Service) position(ctx context.Context, conn *bus.Connection) *types.PositionValue {
	if s.posReq <= 0 {
		return nil
	}
	rctx, cancel := context.WithTimeout(ctx, s.posReq)
	defer cancel()
	reply, err := conn.RequestWait(rctx, conn.NewMessage(topicPositionGet, nil, false))
	if err != nil {
		return nil
	}
	if pv, ok := reply.Payload.(types.PositionValue); ok {
		return &pv
	}
	return nil
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection, interval time.Duration) {
	cfgSub := conn.Subscribe(topicConfigMonitor)
	defer conn.Unsubscribe(cfgSub)
	statsSub := conn.Subscribe(topicStats)
	defer conn.Unsubscribe(statsSub)
	tickSub := conn.Subscribe(topicTick)
	defer conn.Unsubscribe(tickSub)

	tick := time.NewTicker(interval)
	defer tick.Stop()

	// loop until context is cancelled, respond to tick, telemetry and config changes
	for {
		select {
		case <-ctx.Done():
			println("Info: monitor service stopping")
			return
		case <-tick.C:
			s.log(s.summary(s.position(ctx, conn)))
		case msg := <-statsSub.Channel():
			if v, ok := msg.Payload.(types.StatsValue); ok {
				s.stats, s.seen = v, true
			}
		case msg := <-tickSub.Channel():
			if v, ok := msg.Payload.(types.TickValue); ok {
				s.tick, s.seen = v, true
			}
		case msg := <-cfgSub.Channel():
			// Change interval if needed
			if m, ok := msg.Payload.(map[string]any); ok {
				if iv, ok := m["interval"]; ok {
					if sec, ok := iv.(float64); ok && sec > 0 {
						sec = mathx.Clamp(sec, minIntervalS, maxIntervalS)
						tick.Reset(time.Duration(sec * float64(time.Second)))
						println("Info:", "Monitor interval set to", sec, "seconds")
					}
				}
				if q, ok := m["query_position"].(bool); ok {
					s.posReq = 0
					if q {
						s.posReq = 100 * time.Millisecond
					}
				}
			}
		}
	}
}

// Start the monitor service with the default interval; a retained
// config/monitor message overrides it immediately.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn, defaultInterval)
	return nil
}
