package main

import (
	"flag"
	"fmt"
	"image/color"

	"github.com/golang/freetype/truetype"
	"github.com/hajimehoshi/ebiten"
	"github.com/hajimehoshi/ebiten/ebitenutil"
	"github.com/hajimehoshi/ebiten/inpututil"
	"github.com/hajimehoshi/ebiten/text"
	log "github.com/sirupsen/logrus"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"github.com/zucenko/contagion/model"
	"github.com/zucenko/contagion/view"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const tick = float32(1.0 / 60)

type GameState int

const (
	CONNECTING GameState = iota + 1
	WATCHING
	PAUSED
	OVER
	DISCONNECTED
)

func (s GameState) Name() string {
	switch s {
	case CONNECTING:
		return "CONNECTING"
	case WATCHING:
		return "WATCHING"
	case PAUSED:
		return "PAUSED"
	case OVER:
		return "OVER"
	case DISCONNECTED:
		return "DISCONNECTED"
	default:
		return fmt.Sprintf("N/A(%d)", s)
	}
}

type Game struct {
	State   GameState
	Board   view.Board
	Link    *Link
	Panel   *Nine
	Font    font.Face
	Palette view.Palette
	Tweens  view.Tweens

	side      int
	cells     *ebiten.Image
	changes   *ebiten.Image
	pix       []byte
	changePix []byte
	highlight float64
	dirty     bool
}

func newFace(size float64) (font.Face, error) {
	tt, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(tt, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

func NewGame(link *Link, side int) (*Game, error) {
	face, err := newFace(16)
	if err != nil {
		return nil, err
	}
	panel, err := NewNine(24, 8)
	if err != nil {
		return nil, err
	}
	panel.SetPosition(8, side+8)
	panel.SetSize(side-16, panelHeight-16)
	return &Game{
		State:   CONNECTING,
		Link:    link,
		Panel:   panel,
		Font:    face,
		Palette: view.DefaultPalette,
		Tweens:  make(view.Tweens),
		side:    side,
	}, nil
}

func (g *Game) receive(mes model.ServerMessage) {
	size := g.Board.Size
	if err := g.Board.Apply(mes); err != nil {
		log.Warnf("Game.receive %v", err)
		return
	}
	if g.Board.Size != size || g.cells == nil {
		if err := g.allocate(g.Board.Size); err != nil {
			log.Errorf("Game.receive cannot allocate board: %v", err)
			return
		}
	}
	switch {
	case g.Board.Over != nil:
		g.State = OVER
	case g.Board.Paused:
		g.State = PAUSED
	default:
		g.State = WATCHING
	}
	if len(mes.Frames) > 0 {
		g.dirty = true
		if len(g.Board.Changed) > 0 {
			a := view.Action{OnChange: func(v float32) { g.highlight = float64(v) }}
			a.AddOnFinish(func() { g.highlight = 0 })
			g.Tweens.Restart(gween.New(0.6, 0, 0.3, ease.OutQuad), a)
		}
	}
}

func (g *Game) allocate(size int) error {
	var err error
	if g.cells, err = ebiten.NewImage(size, size, ebiten.FilterNearest); err != nil {
		return err
	}
	if g.changes, err = ebiten.NewImage(size, size, ebiten.FilterNearest); err != nil {
		return err
	}
	g.pix = make([]byte, 4*size*size)
	g.changePix = make([]byte, 4*size*size)
	return nil
}

// refresh uploads the board and the cells changed by the last frame.
func (g *Game) refresh() {
	for i, s := range g.Board.Cells {
		c := g.Palette.Color(s)
		g.pix[4*i], g.pix[4*i+1], g.pix[4*i+2], g.pix[4*i+3] = c.R, c.G, c.B, c.A
	}
	for i := range g.changePix {
		g.changePix[i] = 0
	}
	for _, i := range g.Board.Changed {
		copy(g.changePix[4*i:4*i+4], []byte{0xff, 0xff, 0xff, 0xff})
	}
	if err := g.cells.ReplacePixels(g.pix); err != nil {
		log.Warnf("Game.refresh %v", err)
	}
	if err := g.changes.ReplacePixels(g.changePix); err != nil {
		log.Warnf("Game.refresh %v", err)
	}
	g.dirty = false
}

func (g *Game) drain() {
	for {
		select {
		case mes, ok := <-g.Link.Incoming:
			if !ok {
				if g.State != OVER {
					g.State = DISCONNECTED
				}
				return
			}
			g.receive(mes)
		default:
			return
		}
	}
}

func (g *Game) input() {
	var cmd model.Command
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace) && g.State == WATCHING:
		cmd = model.CmdPause
	case inpututil.IsKeyJustPressed(ebiten.KeySpace) && g.State == PAUSED:
		cmd = model.CmdResume
	case inpututil.IsKeyJustPressed(ebiten.KeyR) && (g.State == WATCHING || g.State == PAUSED):
		cmd = model.CmdReset
	default:
		return
	}
	if err := g.Link.Send(cmd); err != nil {
		log.Warnf("Game.input send %s: %v", cmd.Name(), err)
	}
}

func (g *Game) label() string {
	c := g.Board.Counts
	return fmt.Sprintf("gen %d/%d   S %d   I %d   R %d   D %d",
		g.Board.Generation, g.Board.Frames, c.Susceptible, c.Infected, c.Recovered, c.Dead)
}

func (g *Game) update(screen *ebiten.Image) error {
	g.drain()
	g.input()
	g.Tweens.Update(tick)

	if ebiten.IsDrawingSkipped() {
		return nil
	}

	if err := screen.Fill(color.RGBA{20, 20, 24, 255}); err != nil {
		log.Printf("%v", err)
	}

	if g.cells != nil && g.Board.Size > 0 {
		if g.dirty {
			g.refresh()
		}
		scale := float64(g.side) / float64(g.Board.Size)
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(scale, scale)
		_ = screen.DrawImage(g.cells, op)

		if g.highlight > 0 {
			op = &ebiten.DrawImageOptions{}
			op.GeoM.Scale(scale, scale)
			op.ColorM.Scale(1, 1, 1, g.highlight)
			_ = screen.DrawImage(g.changes, op)
		}
	}

	g.Panel.Draw(screen)
	text.Draw(screen, g.label(), g.Font, 20, g.side+38, color.White)
	ebitenutil.DebugPrintAt(screen, g.State.Name(), g.side-100, g.side+14)

	return nil
}

func main() {
	cfg, err := loadViewerConfig()
	if err != nil {
		log.Fatal(err)
	}
	flag.StringVar(&cfg.Server, "server", cfg.Server, "simulation server websocket URL")
	flag.Parse()
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	link, err := Dial(cfg.Server)
	if err != nil {
		log.Fatal(err)
	}
	defer link.Close()

	game, err := NewGame(link, cfg.Board)
	if err != nil {
		log.Fatal(err)
	}
	if err := ebiten.Run(game.update, cfg.Board, cfg.Board+panelHeight, 1, "contagion"); err != nil {
		log.Fatal(err)
	}
}
