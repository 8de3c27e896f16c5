package views

import (
	"image"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/novoselov-ab/chip8-go/internal/chip8"
	"github.com/novoselov-ab/chip8-go/internal/screen"
	"github.com/novoselov-ab/chip8-go/pkg/display"
	"github.com/novoselov-ab/chip8-go/pkg/utils"
)

var _ display.View = (*Screen)(nil)

// phosphor is the colour lit pixels are rendered with.
var phosphor = color.RGBA{R: 0x17, G: 0x99, B: 0x00, A: 0xFF}

// keyMap translates the physical keyboard to the 16-key pad:
//
//	1 2 3 4        0 1 2 3
//	Q W E R   ->   4 5 6 7
//	A S D F        8 9 A B
//	Z X C V        C D E F
var keyMap = map[fyne.KeyName]uint8{
	fyne.Key1: 0x0, fyne.Key2: 0x1, fyne.Key3: 0x2, fyne.Key4: 0x3,
	fyne.KeyQ: 0x4, fyne.KeyW: 0x5, fyne.KeyE: 0x6, fyne.KeyR: 0x7,
	fyne.KeyA: 0x8, fyne.KeyS: 0x9, fyne.KeyD: 0xA, fyne.KeyF: 0xB,
	fyne.KeyZ: 0xC, fyne.KeyX: 0xD, fyne.KeyC: 0xE, fyne.KeyV: 0xF,
}

// Screen is the main emulator view. It drives the emulation once per
// frame event, re-uploads the framebuffer when the dirty latch is set
// and feeds keyboard state to the keypad.
type Screen struct {
	emu *chip8.Emulator

	frame     *image.RGBA
	img       *canvas.Image
	lastFrame time.Time
}

// NewScreen returns a screen view for the given emulator.
func NewScreen(emu *chip8.Emulator) *Screen {
	return &Screen{
		emu:   emu,
		frame: image.NewRGBA(image.Rect(0, 0, screen.Width, screen.Height)),
	}
}

func (s *Screen) Setup(w fyne.Window) error {
	s.img = canvas.NewImageFromImage(s.frame)
	s.img.ScaleMode = canvas.ImageScalePixels
	s.img.FillMode = canvas.ImageFillContain
	w.SetContent(s.img)
	w.SetPadded(false)

	if deskCanvas, ok := w.Canvas().(desktop.Canvas); ok {
		deskCanvas.SetOnKeyDown(func(e *fyne.KeyEvent) {
			if e.Name == fyne.KeyF12 {
				if err := utils.SaveImage(utils.Scale(s.frame, screen.Width*8, screen.Height*8)); err != nil {
					s.emu.Errorf("saving screenshot: %v", err)
				}
				return
			}
			if key, ok := keyMap[e.Name]; ok {
				s.emu.Keypad.Set(key, true)
			}
		})
		deskCanvas.SetOnKeyUp(func(e *fyne.KeyEvent) {
			if key, ok := keyMap[e.Name]; ok {
				s.emu.Keypad.Set(key, false)
			}
		})
	}

	s.lastFrame = time.Now()
	return nil
}

func (s *Screen) Run(events <-chan display.Event) error {
	for e := range events {
		switch e.Type {
		case display.EventTypeQuit:
			return nil
		case display.EventTypeFrame:
			now := time.Now()
			dt := now.Sub(s.lastFrame).Seconds()
			s.lastFrame = now
			// a stalled window shouldn't turn into a burst of cycles
			if dt > 0.25 {
				dt = 0.25
			}

			if err := s.emu.Update(dt); err != nil {
				s.emu.Errorf("emulation fault: %v", err)
			}

			if !s.emu.Screen.IsDirty() {
				continue
			}
			s.emu.Screen.ResetDirty()

			for y := 0; y < screen.Height; y++ {
				for x := 0; x < screen.Width; x++ {
					if s.emu.Screen.GetPixel(x, y) {
						s.frame.SetRGBA(x, y, phosphor)
					} else {
						s.frame.SetRGBA(x, y, color.RGBA{A: 0xFF})
					}
				}
			}
			canvas.Refresh(s.img)
		}
	}
	return nil
}
