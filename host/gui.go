package host

import (
	"image"
	"image/color"
	"log"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/nf/ch8/chip8"
)

// GUI shows a Runner's frames in a window and feeds it key events.
type GUI struct {
	Scale   int
	On, Off color.RGBA

	r *Runner
}

func NewGUI(r *Runner, scale int) *GUI {
	if scale < 1 {
		scale = 1
	}
	return &GUI{Scale: scale, On: On, Off: Off, r: r}
}

// Run opens the window and processes events until the window is closed,
// Escape is pressed, or the Runner stops. It must be called from the main
// goroutine.
func (g *GUI) Run() (err error) {
	driver.Main(func(s screen.Screen) {
		w, werr := s.NewWindow(&screen.NewWindowOptions{
			Title:  "ch8",
			Width:  chip8.Width * g.Scale,
			Height: chip8.Height * g.Scale,
		})
		if werr != nil {
			err = werr
			return
		}
		defer w.Release()

		type update struct{ Frame }
		stop := make(chan bool)
		defer close(stop)
		go func() {
			for {
				select {
				case f := <-g.r.Frames():
					w.Send(update{f})
				case <-g.r.Done():
					w.Send(lifecycle.Event{To: lifecycle.StageDead})
					return
				case <-stop:
					return
				}
			}
		}()

		var (
			sz    size.Event
			buf   screen.Buffer
			frame Frame
			ops   = -1 // frame.Ops last drawn into buf
		)
		defer func() {
			if buf != nil {
				buf.Release()
			}
		}()
		for {
			switch e := w.NextEvent().(type) {
			case lifecycle.Event:
				if e.To == lifecycle.StageDead {
					return
				}

			case size.Event:
				sz = e
				if sz.WidthPx+sz.HeightPx == 0 {
					return
				}
				if buf != nil {
					buf.Release()
					buf = nil
				}
				if sz.WidthPx == 0 || sz.HeightPx == 0 {
					break
				}
				if buf, err = s.NewBuffer(sz.Size()); err != nil {
					return
				}
				ops = -1

			case key.Event:
				switch {
				case e.Direction == key.DirNone:
					// Auto-repeat.
				case e.Code == key.CodeEscape:
					return
				case e.Code == key.CodeDeleteBackspace:
					if e.Direction == key.DirPress {
						g.r.Restart(nil)
					}
				default:
					if k, ok := KeyForCode(e.Code); ok {
						g.r.SetKey(k, e.Direction == key.DirPress)
					}
				}

			case update:
				frame = e.Frame
				if frame.Ops != ops {
					w.Send(paint.Event{})
				}

			case paint.Event:
				if buf == nil {
					break
				}
				if frame.Ops != ops {
					Scale(buf.RGBA(), FrameImage(&frame.Pixels, g.On, g.Off))
					ops = frame.Ops
				}
				w.Upload(image.Point{}, buf, buf.Bounds())
				w.Publish()

			case error:
				log.Print(e)
			}
		}
	})
	return err
}
