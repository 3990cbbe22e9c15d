package host

import (
	"errors"
	"testing"
	"time"

	"github.com/nf/ch8/chip8"
)

func newTestRunner(t *testing.T, rom []byte, speed int) *Runner {
	t.Helper()
	r, err := NewRunner(rom, speed)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestNewRunnerTooLarge(t *testing.T) {
	_, err := NewRunner(make([]byte, chip8.MaxProgramSize+1), 10)
	var le *chip8.LoadError
	if !errors.As(err, &le) {
		t.Fatalf("NewRunner returned %v, want *chip8.LoadError", err)
	}
}

func TestFrame(t *testing.T) {
	r := newTestRunner(t, []byte{
		0x60, 0x05, // LD V0, 5
		0xf0, 0x15, // LD DT, V0
		0x71, 0x01, // ADD V1, 1
		0x12, 0x04, // JP 0x204
	}, 10)
	if err := r.Frame(); err != nil {
		t.Fatal(err)
	}
	// Two setup instructions, then four passes through the loop.
	if g := r.m.V[1]; g != 4 {
		t.Errorf("V1 = %d after one frame, want 4", g)
	}
	if g := r.m.Timers.Delay; g != 4 {
		t.Errorf("delay timer = %d after one frame, want 4", g)
	}
	f := <-r.Frames()
	if f.PC != 0x204 || f.Op != 0x7101 {
		t.Errorf("frame at %.3x %v, want 204 ADD V1, 0x01", f.PC, f.Op)
	}
	if f.Halt != nil {
		t.Errorf("frame halted: %v", f.Halt)
	}

	r.Frame()
	r.Frame()
	select {
	case f := <-r.Frames():
		if g := r.m.Timers.Delay; g != 2 {
			t.Errorf("delay timer = %d after three frames, want 2", g)
		}
		if f.Ops != r.m.Display.Ops() {
			t.Errorf("frame Ops = %d, want latest %d", f.Ops, r.m.Display.Ops())
		}
	default:
		t.Fatal("no frame published")
	}
}

func TestFrameKeys(t *testing.T) {
	r := newTestRunner(t, []byte{
		0x60, 0x05, // LD V0, 5
		0xe0, 0x9e, // SKP V0
		0x12, 0x02, // JP 0x202
		0x61, 0x01, // LD V1, 1
		0x12, 0x08, // JP 0x208
	}, 3)
	// A tap within a single frame is still seen by the program.
	r.SetKey(5, true)
	r.SetKey(5, false)
	r.Frame()
	if r.m.V[1] != 1 {
		t.Error("key press not seen by SKP")
	}
	if !r.m.Keys.Down[5] {
		t.Error("key released in the frame it was pressed")
	}
	r.Frame()
	if r.m.Keys.Down[5] {
		t.Error("key still down a frame after release")
	}

	// Invalid keys are dropped.
	r.SetKey(0x10, true)
	if err := r.Frame(); err != nil {
		t.Fatal(err)
	}
}

func TestFrameDeferredOrder(t *testing.T) {
	r := newTestRunner(t, []byte{0x12, 0x00}, 1)
	r.SetKey(3, true)
	r.SetKey(3, false)
	r.SetKey(3, true)
	r.Frame()
	r.Frame()
	if !r.m.Keys.Down[3] {
		t.Error("key 3 not down after press, release, press")
	}
}

func TestFrameHalt(t *testing.T) {
	r := newTestRunner(t, []byte{0x00, 0xee}, 10)
	err := r.Frame()
	var h chip8.HaltError
	if !errors.As(err, &h) || h.HaltCode != chip8.Underflow {
		t.Fatalf("Frame returned %v, want stack underflow", err)
	}
	if f := <-r.Frames(); f.Halt != err {
		t.Errorf("frame Halt = %v, want %v", f.Halt, err)
	}
	if err2 := r.Frame(); err2 != err {
		t.Errorf("second Frame returned %v, want %v", err2, err)
	}
}

func TestRunHalts(t *testing.T) {
	r := newTestRunner(t, []byte{0x00, 0xee}, 10)
	exit := make(chan bool)
	defer close(exit)
	errc := make(chan error, 1)
	go func() { errc <- r.Run(exit) }()
	select {
	case err := <-errc:
		if err == nil {
			t.Error("Run returned nil, want halt")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after halt")
	}
	select {
	case <-r.Done():
	default:
		t.Error("Done not closed after Run returned")
	}
	// Calls after Run has returned must not block.
	r.SetKey(1, true)
	r.Restart(nil)
}

func TestRunRestart(t *testing.T) {
	r := newTestRunner(t, []byte{0x00, 0xee}, 10)
	r.KeepAlive = true
	exit := make(chan bool)
	errc := make(chan error, 1)
	go func() { errc <- r.Run(exit) }()

	waitFrame := func(ok func(Frame) bool) {
		t.Helper()
		timeout := time.After(5 * time.Second)
		for {
			select {
			case f := <-r.Frames():
				if ok(f) {
					return
				}
			case <-timeout:
				t.Fatal("timed out waiting for frame")
			}
		}
	}
	waitFrame(func(f Frame) bool { return f.Halt != nil })

	r.Restart([]byte{0x12, 0x00})
	waitFrame(func(f Frame) bool { return f.Halt == nil && f.Op == 0x1200 })

	// Restarting with an oversized program halts with the load error.
	r.Restart(make([]byte, chip8.MaxProgramSize+1))
	waitFrame(func(f Frame) bool {
		var le *chip8.LoadError
		return errors.As(f.Halt, &le)
	})

	r.Restart(nil)
	waitFrame(func(f Frame) bool { return f.Halt == nil && f.Op == 0x1200 })

	close(exit)
	if err := <-errc; err != nil {
		t.Errorf("Run returned %v, want nil", err)
	}
}
