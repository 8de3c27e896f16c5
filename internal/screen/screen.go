// Package screen provides the CHIP-8 monochrome framebuffer. Sprites
// are composited onto the buffer with XOR, and a coarse dirty latch
// tells the renderer when the buffer has changed since it last looked.
package screen

import (
	"sync"

	"github.com/novoselov-ab/chip8-go/pkg/utils"
)

const (
	// Width is the width of the screen in pixels.
	Width = 64
	// Height is the height of the screen in pixels.
	Height = 32
)

// Screen represents the 64x32 1-bit display. Pixels are stored
// row-major, one byte per pixel (0 or 1). The buffer is guarded by a
// lock: the emulation loop draws while the renderer samples, and a ROM
// load clears it from a third goroutine.
type Screen struct {
	mu     sync.RWMutex
	buffer [Width * Height]uint8
	dirty  bool
}

// New returns a new cleared Screen. The dirty latch starts set so a
// renderer draws the initial blank frame.
func New() *Screen {
	return &Screen{
		dirty: true,
	}
}

// Clear resets every pixel to off and sets the dirty latch.
func (s *Screen) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffer = [Width * Height]uint8{}
	s.dirty = true
}

// IsDirty reports whether the buffer has changed since the last
// ResetDirty call.
func (s *Screen) IsDirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// ResetDirty clears the dirty latch. The consumer calls this after it
// has sampled the buffer.
func (s *Screen) ResetDirty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = false
}

// SetPixel sets the pixel at (x, y) and marks the screen dirty.
func (s *Screen) SetPixel(x, y int, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setPixel(x, y, on)
}

func (s *Screen) setPixel(x, y int, on bool) {
	var v uint8
	if on {
		v = 1
	}
	s.buffer[x+y*Width] = v
	s.dirty = true
}

// GetPixel returns true if the pixel at (x, y) is set.
func (s *Screen) GetPixel(x, y int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getPixel(x, y)
}

func (s *Screen) getPixel(x, y int) bool {
	return s.buffer[x+y*Width] == 1
}

// DrawSprite composites the sprite onto the screen at (x, y). Each
// byte of the sprite is one 8-pixel row, most significant bit first.
// Set sprite bits are XORed into the buffer, with coordinates wrapping
// around the screen edges. It returns true if any pixel that was set
// before the draw was cleared by it.
func (s *Screen) DrawSprite(x, y int, sprite []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	collision := false
	for j, row := range sprite {
		for i := 0; i < 8; i++ {
			if !utils.TestBit(row, uint8(7-i)) {
				continue
			}
			xi := (x + i) % Width
			yj := (y + j) % Height
			old := s.getPixel(xi, yj)
			if old {
				collision = true
			}
			s.setPixel(xi, yj, !old)
		}
	}
	return collision
}
