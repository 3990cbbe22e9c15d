package host

import (
	"errors"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/nf/ch8/chip8"
)

func TestHalfBlock(t *testing.T) {
	for _, c := range []struct {
		top, bottom bool
		fg, bg      tcell.Color
	}{
		{false, false, offColor, offColor},
		{true, false, onColor, offColor},
		{false, true, offColor, onColor},
		{true, true, onColor, onColor},
	} {
		fg, bg, _ := halfBlock(c.top, c.bottom).Decompose()
		if fg != c.fg || bg != c.bg {
			t.Errorf("halfBlock(%v, %v) = %v/%v, want %v/%v", c.top, c.bottom, fg, bg, c.fg, c.bg)
		}
	}
}

func TestStatusText(t *testing.T) {
	for _, c := range []struct {
		f    Frame
		want string
	}{
		{Frame{PC: 0x200, Op: 0x00e0}, "pong.ch8  200 CLS"},
		{Frame{PC: 0x2a4, Op: 0xf30a, Waiting: true, Sound: true}, "pong.ch8  2a4 LD V3, K  [key?]  [beep]"},
		{Frame{PC: 0x200, Op: 0x00ee, Halt: errors.New("boom")}, "pong.ch8  200 RET  [HALT] boom"},
	} {
		if got := statusText("pong.ch8", c.f); got != c.want {
			t.Errorf("statusText = %q, want %q", got, c.want)
		}
	}
}

func TestKeyHolder(t *testing.T) {
	var (
		h  keyHolder
		t0 = time.Unix(1000, 0)
	)
	if !h.press(5, t0) {
		t.Error("first press not fresh")
	}
	if h.press(5, t0.Add(keyHold/2)) {
		t.Error("repeat press reported fresh")
	}
	// The repeat extended the hold.
	if ks := h.expired(t0.Add(keyHold)); len(ks) != 0 {
		t.Errorf("expired %v, want none", ks)
	}
	h.press(9, t0.Add(keyHold))
	ks := h.expired(t0.Add(keyHold * 3 / 2))
	if len(ks) != 1 || ks[0] != chip8.Key(5) {
		t.Errorf("expired %v, want [5]", ks)
	}
	if !h.press(5, t0.Add(keyHold*2)) {
		t.Error("press after release not fresh")
	}
	ks = h.expired(t0.Add(keyHold * 4))
	if len(ks) != 2 || ks[0] != 5 || ks[1] != 9 {
		t.Errorf("expired %v, want [5 9]", ks)
	}
}
