//go:build rp2040

package platform

import (
	"context"
	"device/arm"
	"device/rp"
	"image/color"
	"machine"
	"runtime/interrupt"
	"runtime/volatile"
	"time"
	"unsafe"

	"github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers/ws2812"

	"stutterclock-go/errcode"
	"stutterclock-go/types"
	"stutterclock-go/x/timex"
)

// RP2040 user GPIOs are GP0..GP29.
const rp2MaxPin = 29

// ---------------------------- GPIO (rp2040) ----------------------------------

type rp2Pin struct {
	p machine.Pin
	n int
}

func newRP2Output(n int) *rp2Pin {
	p := machine.Pin(n)
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	p.Low()
	return &rp2Pin{p: p, n: n}
}

// PADS_BANK0 GPIOn control registers are contiguous; DRIVE is bits 5:4
// (0=2 mA, 1=4 mA, 2=8 mA, 3=12 mA).
const (
	padDrivePos = 4
	padDriveMsk = 0x3
)

func (r *rp2Pin) padCtrl() *volatile.Register32 {
	return (*volatile.Register32)(unsafe.Add(unsafe.Pointer(&rp.PADS_BANK0.GPIO0), 4*r.n))
}

func (r *rp2Pin) SetDriveMilliamps(ma uint8) {
	var code uint32
	switch {
	case ma <= 2:
		code = 0
	case ma <= 4:
		code = 1
	case ma <= 8:
		code = 2
	default:
		code = 3
	}
	r.padCtrl().ReplaceBits(code, padDriveMsk, padDrivePos)
}

func (r *rp2Pin) Set(level bool) { r.p.Set(level) }
func (r *rp2Pin) Get() bool      { return r.p.Get() }
func (r *rp2Pin) Number() int    { return r.n }

// ---------------------------- Timer (rp2040) ---------------------------------

// The clock interrupt is the wrap of PWM slice 6, free-running with no pin
// attached. 125 ms is within a slice's reach at 125 MHz (max ~134 ms).
const clockSlice = 6

var wrapHandler func()

func pwmWrapISR(interrupt.Interrupt) {
	if h := wrapHandler; h != nil {
		h()
	}
}

type pwmTimer struct {
	period time.Duration
	irq    interrupt.Interrupt
}

func (t *pwmTimer) Period() time.Duration { return t.period }

func (t *pwmTimer) Start(handler func()) error {
	if wrapHandler != nil {
		return errcode.TimerRunning
	}
	wrapHandler = handler
	if err := machine.PWM6.Configure(machine.PWMConfig{Period: uint64(t.period.Nanoseconds())}); err != nil {
		wrapHandler = nil
		return errcode.Wrap(errcode.InvalidParams, "platform.pwmTimer", err)
	}
	rp.PWM.INTR.Set(1 << clockSlice)
	rp.PWM.INTE.SetBits(1 << clockSlice)
	t.irq = interrupt.New(rp.IRQ_PWM_IRQ_WRAP, pwmWrapISR)
	t.irq.SetPriority(0x00)
	t.irq.Enable()
	return nil
}

func (t *pwmTimer) Stop() {
	rp.PWM.INTE.ClearBits(1 << clockSlice)
	t.irq.Disable()
	wrapHandler = nil
}

func (t *pwmTimer) ClearInterrupt() { rp.PWM.INTR.Set(1 << clockSlice) }

// ---------------------------- Wake (rp2040) ----------------------------------

type wfiWaker struct{}

// Wait sleeps the core until the next interrupt of any source.
func (wfiWaker) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	arm.Asm("wfi")
	return nil
}

// ------------------------- Transports (rp2040) -------------------------------

// usbTransport is the CDC-ACM console. A session is "ready" once the host
// asserts DTR, i.e. a terminal has the port open.
type usbTransport struct{}

func (usbTransport) Poll() bool {
	got := false
	for machine.Serial.Buffered() > 0 {
		_, _ = machine.Serial.ReadByte()
		got = true
	}
	return got
}

func (usbTransport) Ready() bool {
	if d, ok := any(machine.Serial).(interface{ DTR() bool }); ok {
		return d.DTR()
	}
	return true
}

func (usbTransport) Write(p []byte) (int, error) { return machine.Serial.Write(p) }

// uartTransport has no session concept: once configured it is always ready.
type uartTransport struct{ u *uartx.UART }

func (t uartTransport) Poll() bool {
	got := false
	for t.u.Buffered() > 0 {
		_, _ = t.u.ReadByte()
		got = true
	}
	return got
}

func (t uartTransport) Ready() bool                 { return true }
func (t uartTransport) Write(p []byte) (int, error) { return t.u.Write(p) }

type noTransport struct{}

func (noTransport) Poll() bool                  { return false }
func (noTransport) Ready() bool                 { return false }
func (noTransport) Write(p []byte) (int, error) { return 0, errcode.TransportNotReady }

func newUART(cfg types.TransportConfig) (*uartx.UART, error) {
	var hw *uartx.UART
	switch cfg.Bus {
	case "uart0", "":
		hw = uartx.UART0
	case "uart1":
		hw = uartx.UART1
	default:
		return nil, errcode.New(errcode.InvalidParams, "platform.newUART", cfg.Bus)
	}
	// Defaults inside uartx apply if zero.
	if err := hw.Configure(uartx.UARTConfig{
		BaudRate: cfg.Baud,
		TX:       machine.Pin(cfg.TX),
		RX:       machine.Pin(cfg.RX),
	}); err != nil {
		return nil, err
	}
	return hw, nil
}

// ---------------------------- Pixel (rp2040) ---------------------------------

type ws2812Pixel struct {
	dev        ws2812.Device
	buf        [1]color.RGBA
	brightness uint8
}

func newWS2812Pixel(n int) *ws2812Pixel {
	p := machine.Pin(n)
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return &ws2812Pixel{dev: ws2812.New(p), brightness: 0x20}
}

func (p *ws2812Pixel) Show(macro uint8, tick bool) error {
	p.buf[0] = StateColour(macro, tick, p.brightness)
	return p.dev.WriteColors(p.buf[:])
}

// ---------------------------- Setup (rp2040) ---------------------------------

// Setup configures the outputs low, the status transport and the pixel. The
// timer is returned stopped; Start arms the wrap interrupt.
func Setup(cfg types.BoardConfig) (*Board, error) {
	if err := ValidatePins(cfg.Pins, rp2MaxPin); err != nil {
		return nil, err
	}
	b := &Board{
		Name:      cfg.Name,
		Indicator: newRP2Output(cfg.Pins.Indicator),
		ActuatorA: newRP2Output(cfg.Pins.ActuatorA),
		ActuatorB: newRP2Output(cfg.Pins.ActuatorB),
		Timer:     &pwmTimer{period: timex.Ms(cfg.PeriodMs)},
		Waker:     wfiWaker{},
	}
	limitActuators(b)
	if cfg.Pins.Pixel >= 0 {
		b.Pixel = newWS2812Pixel(cfg.Pins.Pixel)
	}

	switch cfg.Transport.Kind {
	case types.TransportUSB:
		b.Transport = usbTransport{}
	case types.TransportUART:
		u, err := newUART(cfg.Transport)
		if err != nil {
			return nil, err
		}
		b.Transport = uartTransport{u: u}
	case types.TransportNone:
		b.Transport = noTransport{}
	default:
		return nil, errcode.New(errcode.Unsupported, "platform.Setup", string(cfg.Transport.Kind))
	}
	return b, nil
}
