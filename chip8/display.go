package chip8

const (
	Width  = 64
	Height = 32
)

// Display is the 64x32 monochrome frame buffer.
type Display struct {
	px  [Height][Width]bool
	ops int // total count of clear and blit operations
}

// At reports whether the pixel at x, y is set.
// Coordinates wrap around the edges of the display.
func (d *Display) At(x, y int) bool {
	return d.px[mod(y, Height)][mod(x, Width)]
}

// Pixels returns a copy of the frame buffer, indexed [y][x].
func (d *Display) Pixels() [Height][Width]bool { return d.px }

// Ops returns the number of mutating operations performed so far.
// Renderers compare it between frames to skip unchanged ones.
func (d *Display) Ops() int { return d.ops }

// Clear turns off every pixel.
func (d *Display) Clear() {
	d.px = [Height][Width]bool{}
	d.ops++
}

// Blit XORs sprite onto the display with its top-left corner at x, y.
// Each byte of sprite is one row of 8 pixels, most significant bit leftmost.
// Pixels that fall off an edge wrap around to the opposite edge.
// Blit reports whether any pixel that was set has been cleared.
func (d *Display) Blit(x, y byte, sprite []byte) (collision bool) {
	for row, bits := range sprite {
		py := (int(y) + row) % Height
		for col := 0; col < 8; col++ {
			if bits&(0x80>>col) == 0 {
				continue
			}
			px := (int(x) + col) % Width
			if d.px[py][px] {
				collision = true
			}
			d.px[py][px] = !d.px[py][px]
		}
	}
	d.ops++
	return collision
}

func mod(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
