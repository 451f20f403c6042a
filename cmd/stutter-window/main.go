//go:build !rp2040

// stutter-window runs the clock on host fakes in a desktop window: the walk
// position as a coloured digit, the live status line, and a click per tick.
package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"stutterclock-go/bus"
	"stutterclock-go/platform"
	"stutterclock-go/services/clock"
	"stutterclock-go/services/config"
	"stutterclock-go/types"
	"stutterclock-go/x/strconvx"
)

const (
	width, height = 400, 300
	sampleRate    = 44100
	flashFrames   = 6
)

func main() {
	profile := flag.String("profile", "host", "Embedded board profile.")
	file := flag.String("file", "", "Load the profile from a YAML file instead.")
	mute := flag.Bool("mute", false, "Disable the tick click.")
	flag.Parse()

	if err := run(*profile, *file, *mute); err != nil {
		fmt.Fprintln(os.Stderr, "stutter-window:", err)
		os.Exit(1)
	}
}

func run(profile, file string, mute bool) error {
	cfg, err := loadProfile(profile, file)
	if err != nil {
		return err
	}
	// The window is the display: keep a session open so statistics flow, but
	// send the lines nowhere.
	cfg.Transport.Kind = types.TransportStdout
	platform.HostOutput = io.Discard

	board, err := platform.Setup(cfg)
	if err != nil {
		return err
	}
	svc, err := clock.New(cfg, board)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := bus.NewBus(16)
	ui := b.NewConnection("window")
	g := &game{
		svc:   svc,
		ticks: ui.Subscribe(clock.TopicTick),
		stats: ui.Subscribe(clock.TopicStats),
		glyph: ebiten.NewImage(8, 16),
	}
	if !mute {
		g.click = newClick()
	}
	if err := svc.Start(ctx, b.NewConnection("clock")); err != nil {
		return err
	}

	ebiten.SetWindowTitle("stutter clock (" + cfg.Name + ", " + cfg.Mode + ")")
	ebiten.SetWindowSize(width*2, height*2)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}

func loadProfile(profile, file string) (types.BoardConfig, error) {
	if file != "" {
		return config.LoadFile(file)
	}
	return config.Load(profile)
}

// newClick is two cycles of a sine over 100 samples, stereo 16-bit.
func newClick() *audio.Player {
	const n = 100
	pcm := make([]byte, 0, n*4)
	for i := 0; i < n; i++ {
		v := int16(math.Sin(4*math.Pi*float64(i)/(n-1)) * (1 << 14))
		lo, hi := byte(v), byte(uint16(v)>>8)
		pcm = append(pcm, lo, hi, lo, hi)
	}
	return audio.NewContext(sampleRate).NewPlayerFromBytes(pcm)
}

type game struct {
	svc   *clock.Service
	ticks *bus.Subscription
	stats *bus.Subscription
	click *audio.Player

	glyph *ebiten.Image
	line  string
	flash int
}

func (g *game) Update() error {
	for {
		select {
		case m := <-g.ticks.Channel():
			if _, ok := m.Payload.(types.TickValue); ok {
				g.flash = flashFrames
				if g.click != nil {
					_ = g.click.Rewind()
					g.click.Play()
				}
			}
			continue
		case m := <-g.stats.Channel():
			if v, ok := m.Payload.(types.StatsValue); ok {
				g.line = statusLine(v)
			}
			continue
		default:
		}
		break
	}
	if g.flash > 0 {
		g.flash--
	}
	return nil
}

func statusLine(v types.StatsValue) string {
	var sb strings.Builder
	sb.Write(strconvx.AppendMilli(nil, v.RatioMilli))
	for _, c := range v.Counts {
		sb.WriteByte(' ')
		sb.WriteString(strconvx.FormatUint(uint64(c), 10))
	}
	sb.WriteByte(' ')
	sb.WriteString(strconvx.FormatUint(v.Total, 10))
	return sb.String()
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)
	pos := g.svc.Position()
	c := platform.StateColour(pos.Macro, g.flash > 0, 0xFF)

	g.glyph.Clear()
	ebitenutil.DebugPrintAt(g.glyph, strconvx.Itoa(int(pos.Macro)), 1, 0)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(12, 12)
	op.GeoM.Translate(width/2-48, height/2-110)
	op.ColorScale.ScaleWithColor(c)
	screen.DrawImage(g.glyph, op)

	ebitenutil.DebugPrintAt(screen, g.line, 8, height-40)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("ticks %d  firings %d  substep %d",
		g.svc.Ticks(), g.svc.Firings(), pos.Substep), 8, height-20)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return width, height
}
