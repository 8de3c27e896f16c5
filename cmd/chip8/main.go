package main

import (
	"flag"
	"net/http"
	_ "net/http/pprof"
	"os"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/novoselov-ab/chip8-go/internal/chip8"
	"github.com/novoselov-ab/chip8-go/internal/screen"
	"github.com/novoselov-ab/chip8-go/pkg/display"
	"github.com/novoselov-ab/chip8-go/pkg/display/views"
	"github.com/novoselov-ab/chip8-go/pkg/log"
)

// frameTime is the frame event cadence, the rate screen and debug
// views refresh and real time is fed to the emulator.
const frameTime = time.Second / 60

func main() {
	// start pprof
	go func() {
		err := http.ListenAndServe("localhost:6060", nil)
		if err != nil {
			return
		}
	}()

	romFile := flag.String("rom", "", "The rom file to load")
	romDir := flag.String("roms", "roms", "The directory to scan for rom files")
	clock := flag.Float64("clock", chip8.DefaultClockSpeed, "The CPU clock speed in Hz")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	logger := log.New()
	if *debug {
		logger = log.NewDebug()
	}

	emu := chip8.New(
		chip8.WithLogger(logger),
		chip8.WithClockSpeed(*clock),
	)

	if *romFile != "" {
		if err := emu.LoadROM(*romFile); err != nil {
			logger.Errorf("%v", err)
			os.Exit(1)
		}
	}

	a := display.NewApplication(app.NewWithID("com.github.novoselov-ab.chip8-go"))
	mainWindow := a.NewWindow("CHIP-8", views.NewScreen(emu))
	mainWindow.SetMaster()
	mainWindow.Resize(fyne.NewSize(screen.Width*12, screen.Height*12))

	a.NewWindow("ROMs", views.NewROMs(emu, *romDir))
	a.NewWindow("CPU", views.NewCPU(emu))
	a.NewWindow("Code", views.NewCode(emu))

	if err := a.Run(frameTime); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}
