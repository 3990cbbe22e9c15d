package host

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/nf/ch8/chip8"
)

// Default pixel colors.
var (
	On  = color.RGBA{0xe0, 0xf0, 0xd0, 0xff}
	Off = color.RGBA{0x10, 0x18, 0x10, 0xff}
)

// FrameImage returns a native resolution image of px.
func FrameImage(px *[chip8.Height][chip8.Width]bool, on, off color.RGBA) *image.RGBA {
	m := image.NewRGBA(image.Rect(0, 0, chip8.Width, chip8.Height))
	for y := range px {
		for x, set := range px[y] {
			c := off
			if set {
				c = on
			}
			m.SetRGBA(x, y, c)
		}
	}
	return m
}

// Scale draws src over the whole of dst, repeating pixels rather than
// smoothing them.
func Scale(dst draw.Image, src image.Image) {
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
}
