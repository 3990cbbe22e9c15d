package chip8

// Timers holds the delay and sound countdown timers.
type Timers struct {
	Delay byte
	Sound byte
}

// Tick decrements each nonzero timer by one.
func (t *Timers) Tick() {
	if t.Delay > 0 {
		t.Delay--
	}
	if t.Sound > 0 {
		t.Sound--
	}
}
