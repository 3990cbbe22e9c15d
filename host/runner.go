// Package host runs a CHIP-8 machine at a fixed frame rate and connects it
// to a window or a terminal.
package host

import (
	"log"
	"time"

	"github.com/nf/ch8/chip8"
)

// FrameRate is the rate, in Hz, at which frames are run and the machine's
// timers are decremented.
const FrameRate = 60

// KeyEvent reports a change in the state of a logical key.
type KeyEvent struct {
	Key  chip8.Key
	Down bool
}

// Frame is a snapshot of the machine taken at the end of a frame.
type Frame struct {
	Pixels  [chip8.Height][chip8.Width]bool
	Ops     int // display operation count; unchanged means Pixels is unchanged
	Sound   bool
	Waiting bool
	PC      uint16
	Op      chip8.Op
	Halt    error // non-nil if the machine has stopped
}

// Runner owns a chip8.Machine and drives it: each frame it applies pending
// key events, executes Speed instructions, ticks the timers once and
// publishes a Frame. The machine is only touched by the goroutine calling
// Frame or Run; frontends talk to it through SetKey, Restart and Frames.
type Runner struct {
	Speed int // instructions per frame

	// KeepAlive makes Run wait for a restart, rather than return,
	// when the machine halts.
	KeepAlive bool

	m    *chip8.Machine
	rom  []byte
	halt error

	keys     chan KeyEvent
	deferred []KeyEvent
	frames   chan Frame
	restart  chan []byte
	done     chan bool
}

// NewRunner returns a Runner with rom loaded into a freshly reset machine.
func NewRunner(rom []byte, speed int) (*Runner, error) {
	r := &Runner{
		Speed:   speed,
		m:       chip8.NewMachine(),
		keys:    make(chan KeyEvent, 64),
		frames:  make(chan Frame, 1),
		restart: make(chan []byte),
		done:    make(chan bool),
	}
	if err := r.load(rom); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Runner) load(rom []byte) error {
	r.m.Reset()
	r.deferred = r.deferred[:0]
	if err := r.m.Load(rom); err != nil {
		return err
	}
	r.rom = rom
	r.halt = nil
	return nil
}

// Frames returns the channel on which each completed frame is published.
// Only the most recent unread frame is kept.
func (r *Runner) Frames() <-chan Frame { return r.frames }

// Done returns a channel that is closed when Run returns.
func (r *Runner) Done() <-chan bool { return r.done }

// SetKey queues a key event to be applied at the start of the next frame.
func (r *Runner) SetKey(k chip8.Key, down bool) {
	select {
	case r.keys <- KeyEvent{Key: k, Down: down}:
	case <-r.done:
	}
}

// Restart asks Run to reset the machine and load rom.
// A nil rom reloads the current program.
func (r *Runner) Restart(rom []byte) {
	select {
	case r.restart <- rom:
	case <-r.done:
	}
}

// Run executes frames at FrameRate until exit is closed. It returns the
// error that halted the machine, unless KeepAlive is set, in which case it
// logs the error and idles until the next Restart.
func (r *Runner) Run(exit <-chan bool) error {
	defer close(r.done)

	t := time.NewTicker(time.Second / FrameRate)
	defer t.Stop()

	reported := false
	for {
		select {
		case <-exit:
			return nil
		case rom := <-r.restart:
			if rom == nil {
				rom = r.rom
			}
			if err := r.load(rom); err != nil {
				log.Printf("restart: %v", err)
				r.halt = err
				r.publish()
				break
			}
			log.Printf("restart: loaded %d bytes", len(rom))
			reported = false
		case <-t.C:
			err := r.Frame()
			if err == nil {
				break
			}
			if !r.KeepAlive {
				return err
			}
			if !reported {
				log.Printf("halted: %v", err)
				reported = true
			}
		}
	}
}

// Frame runs a single frame and returns the error that halted the
// machine, if any. Once halted, the machine stays halted until restarted.
func (r *Runner) Frame() error {
	r.applyKeys()
	if r.halt == nil {
		for i := 0; i < r.Speed; i++ {
			if err := r.m.Step(); err != nil {
				r.halt = err
				break
			}
		}
		r.m.TickTimers()
	}
	r.publish()
	return r.halt
}

// applyKeys hands queued key events to the machine. A key released in the
// same frame it was pressed is released a frame later instead, so that the
// program gets a chance to see it.
func (r *Runner) applyKeys() {
	var pressed, held [chip8.NumKeys]bool
	events := r.deferred
	r.deferred = nil
drain:
	for {
		select {
		case ev := <-r.keys:
			events = append(events, ev)
		default:
			break drain
		}
	}
	for _, ev := range events {
		if k := ev.Key; k < chip8.NumKeys && (held[k] || !ev.Down && pressed[k]) {
			// Keep later events for k in order behind the deferred release.
			held[k] = true
			r.deferred = append(r.deferred, ev)
			continue
		}
		if err := r.m.SetKey(ev.Key, ev.Down); err != nil {
			log.Printf("key: %v", err)
			continue
		}
		if ev.Down {
			pressed[ev.Key] = true
		}
	}
}

func (r *Runner) publish() {
	f := Frame{
		Pixels:  r.m.Display.Pixels(),
		Ops:     r.m.Display.Ops(),
		Sound:   r.m.SoundActive(),
		Waiting: r.m.Waiting(),
		PC:      r.m.PC,
		Op:      r.m.Op(),
		Halt:    r.halt,
	}
	select {
	case <-r.frames:
	default:
	}
	r.frames <- f
}
