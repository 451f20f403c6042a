//go:build !rp2040

package platform

import (
	"context"
	"image/color"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"stutterclock-go/errcode"
	"stutterclock-go/types"
	"stutterclock-go/x/shmring"
	"stutterclock-go/x/timex"
)

// HostOutput receives status lines from the stdout transport.
var HostOutput io.Writer = os.Stdout

const hostMaxPin = 63

// ----------------------------- GPIO (host) -----------------------------------

// FakePin is an output line that remembers its level, its drive current and
// counts rising edges.
type FakePin struct {
	mu     sync.RWMutex
	number int
	level  bool
	rises  uint32
	drive  uint8
}

func NewFakePin(n int) *FakePin { return &FakePin{number: n, drive: 4} }

func (p *FakePin) SetDriveMilliamps(ma uint8) {
	p.mu.Lock()
	p.drive = ma
	p.mu.Unlock()
}

func (p *FakePin) DriveMilliamps() uint8 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.drive
}

func (p *FakePin) Set(level bool) {
	p.mu.Lock()
	if level && !p.level {
		p.rises++
	}
	p.level = level
	p.mu.Unlock()
}

func (p *FakePin) Get() bool {
	p.mu.RLock()
	v := p.level
	p.mu.RUnlock()
	return v
}

func (p *FakePin) Number() int { return p.number }

// Rises counts low-to-high transitions.
func (p *FakePin) Rises() uint32 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.rises
}

// ----------------------------- Wake (host) -----------------------------------

// HostWaker stands in for wait-for-interrupt: every simulated interrupt leaves
// one coalesced token.
type HostWaker struct {
	ch chan struct{}
}

func NewHostWaker() *HostWaker { return &HostWaker{ch: make(chan struct{}, 1)} }

// Signal never blocks; pending wakes coalesce.
func (w *HostWaker) Signal() {
	select {
	case w.ch <- struct{}{}:
	default:
	}
}

func (w *HostWaker) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-w.ch:
		return nil
	}
}

// ----------------------------- Timer (host) ----------------------------------

// HostTimer runs the handler from a ticker goroutine. A zero period gives a
// manual timer that only fires through FireN.
type HostTimer struct {
	period time.Duration
	waker  *HostWaker

	fireMu  sync.Mutex // firings never overlap
	handler atomic.Pointer[func()]
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex

	fired atomic.Uint32
	acks  atomic.Uint32
}

func NewHostTimer(period time.Duration, w *HostWaker) *HostTimer {
	return &HostTimer{period: period, waker: w}
}

func (t *HostTimer) Period() time.Duration { return t.period }

func (t *HostTimer) Start(handler func()) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		return errcode.TimerRunning
	}
	t.handler.Store(&handler)
	if t.period <= 0 {
		return nil
	}
	t.stop = make(chan struct{})
	t.done = make(chan struct{})
	go t.loop(t.stop, t.done)
	return nil
}

func (t *HostTimer) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	tick := time.NewTicker(t.period)
	defer tick.Stop()
	for {
		select {
		case <-stop:
			return
		case <-tick.C:
			t.fire()
		}
	}
}

// FireN delivers n interrupts synchronously.
func (t *HostTimer) FireN(n int) {
	for i := 0; i < n; i++ {
		t.fire()
	}
}

func (t *HostTimer) fire() {
	h := t.handler.Load()
	if h == nil {
		return
	}
	t.fireMu.Lock()
	(*h)()
	t.fired.Add(1)
	t.fireMu.Unlock()
	if t.waker != nil {
		t.waker.Signal()
	}
}

func (t *HostTimer) Stop() {
	t.mu.Lock()
	stop, done := t.stop, t.done
	t.stop, t.done = nil, nil
	t.mu.Unlock()
	if stop != nil {
		close(stop)
		<-done
	}
}

func (t *HostTimer) ClearInterrupt() { t.acks.Add(1) }

// Fired counts delivered interrupts; Acks counts ClearInterrupt calls.
func (t *HostTimer) Fired() uint32 { return t.fired.Load() }
func (t *HostTimer) Acks() uint32  { return t.acks.Load() }

// --------------------------- Transport (host) --------------------------------

// HostTransport models a serial session. Lines go through a ring and a drain
// goroutine so the reporter never blocks on the writer; inbound bytes pile up in
// a second ring until the next Poll throws them away.
type HostTransport struct {
	open atomic.Bool
	tx   *shmring.Ring
	rx   *shmring.Ring
	out  io.Writer

	mu      sync.Mutex // serialises writes to out
	started atomic.Bool
}

func NewHostTransport(out io.Writer, ringSize int) *HostTransport {
	return &HostTransport{
		tx:  shmring.New(ringSize),
		rx:  shmring.New(256),
		out: out,
	}
}

// Open and Close model a host terminal attaching and detaching.
func (t *HostTransport) Open()  { t.open.Store(true) }
func (t *HostTransport) Close() { t.open.Store(false) }

func (t *HostTransport) State() types.SessionState {
	if t.open.Load() {
		return types.SessionOpen
	}
	return types.SessionClosed
}

// Inject queues inbound bytes, as if typed on the host terminal.
func (t *HostTransport) Inject(p []byte) int { return t.rx.TryWriteFrom(p) }

// Poll discards pending inbound bytes.
func (t *HostTransport) Poll() bool {
	var scratch [64]byte
	got := false
	for t.rx.TryReadInto(scratch[:]) > 0 {
		got = true
	}
	return got
}

func (t *HostTransport) Ready() bool { return t.open.Load() }

func (t *HostTransport) Write(p []byte) (int, error) {
	if !t.open.Load() {
		return 0, errcode.TransportNotReady
	}
	// Lines go in whole or not at all.
	if t.tx.Space() < len(p) {
		return 0, errcode.ShortWrite
	}
	n := t.tx.TryWriteFrom(p)
	if !t.started.Load() {
		t.Flush()
	}
	return n, nil
}

// Start drains the ring to the writer in the background until ctx is done.
func (t *HostTransport) Start(ctx context.Context) {
	t.started.Store(true)
	go func() {
		defer t.Flush()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.tx.Readable():
				t.Flush()
			}
		}
	}()
}

// Flush copies everything buffered to the writer.
func (t *HostTransport) Flush() {
	t.mu.Lock()
	defer t.mu.Unlock()
	var chunk [128]byte
	for t.tx.Available() > 0 {
		n := t.tx.TryReadInto(chunk[:])
		if t.out != nil {
			_, _ = t.out.Write(chunk[:n])
		}
	}
}

// ----------------------------- Pixel (host) ----------------------------------

// FakePixel remembers the last colour shown.
type FakePixel struct {
	mu         sync.Mutex
	brightness uint8
	last       color.RGBA
	shows      int
}

func (p *FakePixel) Show(macro uint8, tick bool) error {
	p.mu.Lock()
	p.last = StateColour(macro, tick, p.brightness)
	p.shows++
	p.mu.Unlock()
	return nil
}

func (p *FakePixel) Last() (color.RGBA, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last, p.shows
}

// ------------------------------ Setup (host) ---------------------------------

// Setup builds a host board. Pins start low, the stdout transport starts with an
// open session, usb/uart transports start closed until Open is called, and a
// zero period yields a manual timer. The transport kind must be set; config.Finish
// defaults it.
func Setup(cfg types.BoardConfig) (*Board, error) {
	if err := ValidatePins(cfg.Pins, hostMaxPin); err != nil {
		return nil, err
	}
	w := NewHostWaker()
	b := &Board{
		Name:      cfg.Name,
		Indicator: NewFakePin(cfg.Pins.Indicator),
		ActuatorA: NewFakePin(cfg.Pins.ActuatorA),
		ActuatorB: NewFakePin(cfg.Pins.ActuatorB),
		Timer:     NewHostTimer(timex.Ms(cfg.PeriodMs), w),
		Waker:     w,
	}
	for _, p := range []OutputPin{b.Indicator, b.ActuatorA, b.ActuatorB} {
		p.Set(false)
	}
	limitActuators(b)
	if cfg.Pins.Pixel >= 0 {
		b.Pixel = &FakePixel{brightness: 0xFF}
	}

	switch cfg.Transport.Kind {
	case types.TransportStdout:
		tr := NewHostTransport(HostOutput, 1024)
		tr.Open()
		b.Transport = tr
	case types.TransportUSB, types.TransportUART, types.TransportNone:
		b.Transport = NewHostTransport(HostOutput, 1024)
	default:
		return nil, errcode.New(errcode.Unsupported, "platform.Setup", string(cfg.Transport.Kind))
	}
	return b, nil
}
