package views

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/novoselov-ab/chip8-go/internal/chip8"
	"github.com/novoselov-ab/chip8-go/pkg/display"
)

var _ display.View = (*CPU)(nil)

// CPU is a debug view showing the register file, the delay timer and
// the call stack.
type CPU struct {
	emu *chip8.Emulator

	registers [16]*canvas.Text
	index     *canvas.Text
	pc        *canvas.Text
	delay     *canvas.Text
	stack     *canvas.Text

	content *fyne.Container
}

// NewCPU returns a CPU view for the given emulator.
func NewCPU(emu *chip8.Emulator) *CPU {
	return &CPU{emu: emu}
}

func monoText() *canvas.Text {
	t := canvas.NewText("", color.White)
	t.TextStyle = fyne.TextStyle{Monospace: true}
	return t
}

func (c *CPU) Setup(w fyne.Window) error {
	grid := container.NewVBox()
	w.SetContent(grid)

	// general purpose registers, 4 per row
	registerGrid := container.NewGridWithColumns(4)
	for i := range c.registers {
		c.registers[i] = monoText()
		registerGrid.Add(c.registers[i])
	}
	grid.Add(registerGrid)

	c.index = monoText()
	c.pc = monoText()
	c.delay = monoText()
	stateGrid := container.NewGridWithColumns(3)
	stateGrid.Add(container.NewHBox(widget.NewLabel("PC"), c.pc))
	stateGrid.Add(container.NewHBox(widget.NewLabel("I"), c.index))
	stateGrid.Add(container.NewHBox(widget.NewLabel("DT"), c.delay))
	grid.Add(stateGrid)

	c.stack = monoText()
	grid.Add(container.NewHBox(widget.NewLabel("Stack"), c.stack))

	c.content = grid
	return nil
}

func (c *CPU) Run(events <-chan display.Event) error {
	for e := range events {
		switch e.Type {
		case display.EventTypeQuit:
			return nil
		case display.EventTypeFrame:
			v, index, pc, delay := c.emu.Registers()
			for i, t := range c.registers {
				t.Text = fmt.Sprintf("V%X: %02X", i, v[i])
			}
			c.pc.Text = fmt.Sprintf("%04X", pc)
			c.index.Text = fmt.Sprintf("%04X", index)
			c.delay.Text = fmt.Sprintf("%02X", delay)

			stack := c.emu.Stack()
			s := fmt.Sprintf("(%d)", len(stack))
			for _, addr := range stack {
				s += fmt.Sprintf(" %03X", addr)
			}
			c.stack.Text = s

			c.content.Refresh()
		}
	}
	return nil
}
