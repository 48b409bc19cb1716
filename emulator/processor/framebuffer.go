/*
Copyright (c) 2019-2021 Andreas T Jonsson

This software is provided 'as-is', without any express or implied
warranty. In no event will the authors be held liable for any damages
arising from the use of this software.

Permission is granted to anyone to use this software for any purpose,
including commercial applications, and to alter it and redistribute it
freely, subject to the following restrictions:

1. The origin of this software must not be misrepresented; you must not
   claim that you wrote the original software. If you use this software
   in a product, an acknowledgment in the product documentation would be
   appreciated but is not required.
2. Altered source versions must be plainly marked as such, and must not be
   misrepresented as being the original software.
3. This notice may not be removed or altered from any source distribution.
*/

package processor

const (
	ScreenWidth  = 64
	ScreenHeight = 32
)

// Framebuffer is the monochrome 64x32 display. Pixels are stored row-major,
// index = x + y*ScreenWidth.
type Framebuffer struct {
	pixels     [ScreenWidth * ScreenHeight]bool
	generation uint64
}

func (f *Framebuffer) Clear() {
	f.pixels = [ScreenWidth * ScreenHeight]bool{}
	f.generation++
}

// Draw XORs an 8 pixel wide sprite onto the screen. The origin wraps around
// the screen edges, sprite pixels that fall outside of the screen are clipped.
// It returns true if any lit pixel was turned off.
func (f *Framebuffer) Draw(x, y int, sprite []byte) bool {
	x %= ScreenWidth
	y %= ScreenHeight

	var collision bool
	for row, line := range sprite {
		py := y + row
		if py >= ScreenHeight {
			break
		}
		for bit := 0; bit < 8; bit++ {
			px := x + bit
			if px >= ScreenWidth {
				break
			}
			if line&(0x80>>bit) == 0 {
				continue
			}
			idx := px + py*ScreenWidth
			if f.pixels[idx] {
				collision = true
			}
			f.pixels[idx] = !f.pixels[idx]
		}
	}
	f.generation++
	return collision
}

func (f *Framebuffer) Pixel(x, y int) bool {
	if x < 0 || y < 0 || x >= ScreenWidth || y >= ScreenHeight {
		return false
	}
	return f.pixels[x+y*ScreenWidth]
}

func (f *Framebuffer) SetPixel(x, y int, b bool) {
	if x < 0 || y < 0 || x >= ScreenWidth || y >= ScreenHeight {
		return
	}
	f.pixels[x+y*ScreenWidth] = b
	f.generation++
}

// Pixels returns a copy of the screen content.
func (f *Framebuffer) Pixels() []bool {
	p := make([]bool, len(f.pixels))
	copy(p, f.pixels[:])
	return p
}

// Generation changes every time the framebuffer is modified.
func (f *Framebuffer) Generation() uint64 {
	return f.generation
}
