package views

import (
	"bytes"
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
	"github.com/novoselov-ab/chip8-go/internal/chip8"
	"github.com/novoselov-ab/chip8-go/pkg/display"
	"github.com/novoselov-ab/chip8-go/pkg/utils"
)

var _ display.View = (*Code)(nil)

// Code is a debug view listing the loaded program as disassembly, with
// the instruction at the current PC selected.
type Code struct {
	emu *chip8.Emulator

	mu   sync.Mutex
	code []byte

	list *widget.List
}

// NewCode returns a code view for the given emulator.
func NewCode(emu *chip8.Emulator) *Code {
	return &Code{emu: emu}
}

func (c *Code) Setup(w fyne.Window) error {
	c.list = widget.NewList(
		func() int {
			c.mu.Lock()
			defer c.mu.Unlock()
			return len(c.code) / 2
		},
		func() fyne.CanvasObject {
			l := widget.NewLabel("")
			l.TextStyle = fyne.TextStyle{Monospace: true}
			return l
		},
		func(i widget.ListItemID, o fyne.CanvasObject) {
			c.mu.Lock()
			defer c.mu.Unlock()
			if i*2+1 >= len(c.code) {
				return
			}
			start, _ := c.emu.CodeRange()
			op := chip8.Opcode(utils.BytesToUint16(c.code[i*2], c.code[i*2+1]))
			o.(*widget.Label).SetText(fmt.Sprintf("0x%04X: %04X  %s", start+i*2, uint16(op), op))
		},
	)
	w.SetContent(c.list)
	return nil
}

func (c *Code) Run(events <-chan display.Event) error {
	for e := range events {
		switch e.Type {
		case display.EventTypeQuit:
			return nil
		case display.EventTypeFrame:
			code := c.emu.Code()
			c.mu.Lock()
			reload := !bytes.Equal(code, c.code)
			if reload {
				c.code = code
			}
			c.mu.Unlock()
			if reload {
				c.list.Refresh()
			}

			// follow the program counter
			start, end := c.emu.CodeRange()
			_, _, pc16, _ := c.emu.Registers()
			pc := int(pc16)
			if pc >= start && pc < end {
				c.list.Select((pc - start) / 2)
			}
		}
	}
	return nil
}
