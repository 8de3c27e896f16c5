package views

import (
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/novoselov-ab/chip8-go/internal/chip8"
	"github.com/novoselov-ab/chip8-go/pkg/display"
	"github.com/novoselov-ab/chip8-go/pkg/utils"
)

var _ display.View = (*ROMs)(nil)

const helpText = "Select a ROM file. Keypad:\n1 2 3 4\nQ W E R\nA S D F\nZ X C V\n\nHave fun!"

// ROMs is the ROM browser view. It lists the .ch8 files found under
// the ROM directory and loads one into the emulator on click.
type ROMs struct {
	emu *chip8.Emulator
	dir string
}

// NewROMs returns a ROM browser view over the given directory.
func NewROMs(emu *chip8.Emulator, dir string) *ROMs {
	return &ROMs{emu: emu, dir: dir}
}

func (r *ROMs) Setup(w fyne.Window) error {
	roms, err := utils.FindROMs(r.dir)
	if err != nil {
		r.emu.Errorf("scanning rom directory %q: %v", r.dir, err)
	}

	list := container.NewVBox()
	for _, rom := range roms {
		rom := rom
		list.Add(widget.NewButton(filepath.Base(rom), func() {
			r.load(w, rom)
		}))
	}

	open := widget.NewButton("Open...", func() {
		path, err := utils.AskForFile("Open ROM", r.dir)
		if err != nil {
			// cancelled
			return
		}
		r.load(w, path)
	})

	help := widget.NewLabel(helpText)

	w.SetContent(container.NewBorder(open, help, nil, nil, container.NewVScroll(list)))
	return nil
}

func (r *ROMs) load(w fyne.Window, path string) {
	if err := r.emu.LoadROM(path); err != nil {
		r.emu.Errorf("%v", err)
		dialog.ShowError(err, w)
	}
}

func (r *ROMs) Run(events <-chan display.Event) error {
	for e := range events {
		if e.Type == display.EventTypeQuit {
			return nil
		}
	}
	return nil
}
