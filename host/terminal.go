package host

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/nf/ch8/chip8"
)

// Terminals report key presses but not releases, so a key is considered
// held for keyHold after its most recent press.
const keyHold = 200 * time.Millisecond

// Terminal shows a Runner's frames in a terminal and feeds it key events.
type Terminal struct {
	r    *Runner
	name string

	app    *tview.Application
	screen *tview.Box
	status *tview.TextView
	log    *tview.TextView
	rows   *tview.Flex

	mu    sync.Mutex
	frame Frame
	keys  keyHolder
}

func NewTerminal(r *Runner, name string) *Terminal {
	t := &Terminal{
		r:      r,
		name:   name,
		app:    tview.NewApplication(),
		screen: tview.NewBox(),
		status: tview.NewTextView().
			SetWrap(false),
		log: tview.NewTextView().
			SetMaxLines(1000),
		rows: tview.NewFlex().
			SetDirection(tview.FlexRow),
	}
	t.screen.SetDrawFunc(t.drawScreen)
	t.status.SetBackgroundColor(tcell.ColorDarkGrey)
	t.status.SetTextColor(tcell.ColorBlack)
	t.log.SetChangedFunc(func() { t.app.Draw() })
	t.rows.
		AddItem(tview.NewFlex().
			AddItem(t.screen, chip8.Width, 0, false).
			AddItem(nil, 0, 1, false), chip8.Height/2, 0, false).
		AddItem(t.status, 1, 0, false).
		AddItem(t.log, 0, 1, false)
	t.app.SetRoot(t.rows, true)
	t.app.SetInputCapture(t.input)
	return t
}

// Run takes over the terminal until Escape or Ctrl-C is pressed or the
// Runner stops. Log output is shown in the terminal meanwhile.
func (t *Terminal) Run() error {
	scr, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	t.app.SetScreen(scr)

	prefix := log.Prefix()
	log.SetPrefix("")
	log.SetOutput(t.log)
	defer func() {
		log.SetOutput(os.Stderr)
		log.SetPrefix(prefix)
	}()

	stop := make(chan bool)
	defer close(stop)
	go func() {
		tick := time.NewTicker(time.Second / FrameRate)
		defer tick.Stop()
		for {
			select {
			case f := <-t.r.Frames():
				t.update(scr, f)
			case now := <-tick.C:
				t.mu.Lock()
				released := t.keys.expired(now)
				t.mu.Unlock()
				for _, k := range released {
					t.r.SetKey(k, false)
				}
			case <-t.r.Done():
				t.app.Stop()
				return
			case <-stop:
				return
			}
		}
	}()

	return t.app.Run()
}

func (t *Terminal) update(scr tcell.Screen, f Frame) {
	t.mu.Lock()
	var (
		beep    = f.Sound && !t.frame.Sound
		changed = f.Ops != t.frame.Ops
		status  = statusText(t.name, f)
	)
	changed = changed || status != statusText(t.name, t.frame)
	t.frame = f
	t.mu.Unlock()

	if beep {
		scr.Beep()
	}
	if changed {
		t.app.QueueUpdateDraw(func() { t.status.SetText(status) })
	}
}

func (t *Terminal) input(ev *tcell.EventKey) *tcell.EventKey {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		t.app.Stop()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		t.r.Restart(nil)
	case tcell.KeyRune:
		k, ok := KeyForRune(ev.Rune())
		if !ok {
			return nil
		}
		t.mu.Lock()
		fresh := t.keys.press(k, time.Now())
		t.mu.Unlock()
		if fresh {
			t.r.SetKey(k, true)
		}
	default:
		return ev
	}
	return nil
}

// drawScreen paints the display using half blocks, two pixel rows per cell.
func (t *Terminal) drawScreen(s tcell.Screen, x, y, width, height int) (int, int, int, int) {
	t.mu.Lock()
	px := t.frame.Pixels
	t.mu.Unlock()
	for row := 0; row < chip8.Height/2 && row < height; row++ {
		for col := 0; col < chip8.Width && col < width; col++ {
			s.SetContent(x+col, y+row, '▀', nil, halfBlock(px[2*row][col], px[2*row+1][col]))
		}
	}
	return x, y, width, height
}

var (
	onColor  = tcell.NewRGBColor(int32(On.R), int32(On.G), int32(On.B))
	offColor = tcell.NewRGBColor(int32(Off.R), int32(Off.G), int32(Off.B))
)

// halfBlock returns the style for an upper half block whose top half
// shows the pixel top and bottom half shows the pixel bottom.
func halfBlock(top, bottom bool) tcell.Style {
	fg, bg := offColor, offColor
	if top {
		fg = onColor
	}
	if bottom {
		bg = onColor
	}
	return tcell.StyleDefault.Foreground(fg).Background(bg)
}

func statusText(name string, f Frame) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %.3x %s", name, f.PC, f.Op)
	if f.Waiting {
		b.WriteString("  [key?]")
	}
	if f.Sound {
		b.WriteString("  [beep]")
	}
	if f.Halt != nil {
		fmt.Fprintf(&b, "  [HALT] %v", f.Halt)
	}
	return b.String()
}

// keyHolder tracks the keys considered held down in a terminal.
type keyHolder struct {
	until [chip8.NumKeys]time.Time
}

// press extends the hold on k and reports whether k was not already held.
func (h *keyHolder) press(k chip8.Key, now time.Time) bool {
	fresh := h.until[k].IsZero()
	h.until[k] = now.Add(keyHold)
	return fresh
}

// expired releases and returns the keys whose hold has run out.
func (h *keyHolder) expired(now time.Time) (keys []chip8.Key) {
	for k, until := range h.until {
		if !until.IsZero() && !now.Before(until) {
			h.until[k] = time.Time{}
			keys = append(keys, chip8.Key(k))
		}
	}
	return keys
}
