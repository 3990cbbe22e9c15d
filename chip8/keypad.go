package chip8

import (
	"errors"
	"fmt"
)

// Key is one of the sixteen logical keys, 0x0 through 0xf.
type Key byte

const NumKeys = 16

func (k Key) String() string { return fmt.Sprintf("%X", byte(k)) }

var ErrInvalidKey = errors.New("invalid key index")

// Keypad holds the latched state of the sixteen keys and the
// awaiting-key state entered by FX0A.
type Keypad struct {
	Down [NumKeys]bool

	waiting bool
	reg     byte // register receiving the key
	pressed int  // key pressed while waiting, or -1
}

func (p *Keypad) set(k Key, pressed bool) {
	if pressed && !p.Down[k] && p.waiting && p.pressed < 0 {
		p.pressed = int(k)
	}
	p.Down[k] = pressed
}

func (p *Keypad) wait(reg byte) {
	p.waiting = true
	p.reg = reg
	p.pressed = -1
}

// resolve reports the key pressed since wait was called, if any,
// and leaves the awaiting-key state when there is one.
func (p *Keypad) resolve() (reg byte, k Key, ok bool) {
	if p.pressed < 0 {
		return 0, 0, false
	}
	reg, k = p.reg, Key(p.pressed)
	p.waiting = false
	p.pressed = -1
	return reg, k, true
}

func (p *Keypad) reset() {
	*p = Keypad{pressed: -1}
}
