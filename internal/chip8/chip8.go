// Package chip8 provides an emulation of the CHIP-8 virtual machine.
//
// The Emulator owns the memory, register file, call stack, screen,
// keypad and delay timer, and drives the fetch-decode-execute cycle.
// It never calls into presentation code; the surrounding application
// feeds it time and key events and reads its state back afterwards.
package chip8

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/cespare/xxhash"
	"github.com/novoselov-ab/chip8-go/internal/keypad"
	"github.com/novoselov-ab/chip8-go/internal/screen"
	"github.com/novoselov-ab/chip8-go/internal/timer"
	"github.com/novoselov-ab/chip8-go/pkg/log"
	"github.com/novoselov-ab/chip8-go/pkg/utils"
)

const (
	// MemorySize is the amount of addressable RAM in bytes.
	MemorySize = 4096
	// ProgramStart is the address programs are loaded at.
	ProgramStart = 0x200
	// StackDepth is the maximum number of nested subroutine calls.
	StackDepth = 16
	// DefaultClockSpeed is the default instruction rate of the CPU in Hz.
	DefaultClockSpeed = 700
	// FontOffset is the address the font glyphs are written to.
	FontOffset = 0x000
	// FontGlyphSize is the size of a single font glyph in bytes.
	FontGlyphSize = 5
)

// fontData holds the 16 builtin 8x5 glyphs for the hex digits 0-F.
var fontData = [80]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Emulator represents a CHIP-8 machine. It contains all the components
// of the machine and is the main entry point of the emulation.
type Emulator struct {
	// V contains the 16 general purpose registers V0..VF. VF doubles
	// as the flags register for carry, borrow, shift-out and sprite
	// collision.
	V [16]uint8
	// I is the 16-bit index register.
	I uint16
	// PC is the program counter, it points to the next instruction to
	// be executed.
	PC uint16

	Screen *screen.Screen
	Keypad *keypad.Keypad
	Delay  *timer.Timer

	// mu serializes the public entry points: the front end loads ROMs
	// from UI callbacks while Update runs on the frame loop goroutine.
	mu sync.Mutex

	memory  [MemorySize]byte
	stack   []uint16
	codeLen int
	halt    bool

	clockSpeed float64
	cycles     float64

	// unknownOpcodes counts decoded instructions with no defined
	// mapping. They execute as no-ops.
	unknownOpcodes uint64

	rand *rand.Rand

	log.Logger
}

// Opt is a function that modifies an Emulator instance.
type Opt func(e *Emulator)

// WithLogger sets the logger used by the emulator.
func WithLogger(l log.Logger) Opt {
	return func(e *Emulator) {
		e.Logger = l
	}
}

// WithClockSpeed sets the instruction rate of the CPU in Hz.
func WithClockSpeed(hz float64) Opt {
	return func(e *Emulator) {
		e.clockSpeed = hz
	}
}

// WithRandom sets the random source used by the RND instruction.
func WithRandom(r *rand.Rand) Opt {
	return func(e *Emulator) {
		e.rand = r
	}
}

// New returns a new halted Emulator with the font glyphs written to
// memory. Call LoadROM or LoadBytes to start execution.
func New(opts ...Opt) *Emulator {
	e := &Emulator{
		clockSpeed: DefaultClockSpeed,
		rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
		Logger:     log.NewNullLogger(),
	}
	e.reset()

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// reset returns the machine to its power-on state. The logger, random
// source and clock speed are kept.
func (e *Emulator) reset() {
	e.memory = [MemorySize]byte{}
	copy(e.memory[FontOffset:], fontData[:])

	e.V = [16]uint8{}
	e.I = 0
	e.PC = ProgramStart
	e.stack = e.stack[:0]
	e.codeLen = 0
	e.cycles = 0
	e.unknownOpcodes = 0
	e.halt = true

	// the components are reset in place rather than replaced, so view
	// goroutines never observe a stale pointer across a ROM load
	if e.Screen == nil {
		e.Screen = screen.New()
		e.Keypad = keypad.New()
		e.Delay = timer.New()
		return
	}
	e.Screen.Clear()
	e.Keypad.Reset()
	e.Delay.Reset()
}

// LoadROM reads the ROM file at the given path and loads it into the
// emulator. Compressed ROMs (.zip, .gz, .7z) are unpacked first. If
// the file can't be read the emulator state is left untouched.
func (e *Emulator) LoadROM(path string) error {
	rom, err := utils.LoadFile(path)
	if err != nil {
		return fmt.Errorf("reading rom %q: %w", path, err)
	}
	if err := e.LoadBytes(rom); err != nil {
		return fmt.Errorf("loading rom %q: %w", path, err)
	}
	e.Infof("loaded rom %q (%d bytes, hash %016x)", path, len(rom), xxhash.Sum64(rom))
	return nil
}

// LoadBytes resets the machine and loads the given ROM image into
// memory at ProgramStart. ROMs larger than the available program space
// are rejected, leaving the emulator state untouched.
func (e *Emulator) LoadBytes(rom []byte) error {
	if len(rom) > MemorySize-ProgramStart {
		return fmt.Errorf("rom size %d exceeds program space %d", len(rom), MemorySize-ProgramStart)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.reset()
	copy(e.memory[ProgramStart:], rom)
	e.codeLen = len(rom)
	e.halt = false
	return nil
}

// Update advances the emulation by dt seconds. The delay timer decays
// at 60 Hz in real time, while instructions execute at the configured
// clock speed, each driven by its own fixed-timestep accumulator. A
// memory fault or stack overflow halts the machine and is returned to
// the caller.
func (e *Emulator) Update(dt float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.halt {
		return nil
	}

	e.Delay.Update(dt)

	e.cycles += dt * e.clockSpeed
	for e.cycles >= 1 {
		e.cycles--
		if err := e.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Step fetches, decodes and executes a single instruction. Unlike
// Update it is not synchronized; callers stepping the machine by hand
// own it exclusively.
func (e *Emulator) Step() error {
	op, err := e.fetch()
	if err != nil {
		e.halt = true
		return err
	}
	// advance before dispatch so jumps and calls are not double
	// advanced
	e.PC += 2

	if err := e.execute(op); err != nil {
		e.halt = true
		return err
	}
	return nil
}

func (e *Emulator) fetch() (Opcode, error) {
	if int(e.PC)+1 >= MemorySize {
		return 0, &MemoryError{Addr: uint32(e.PC), Size: 2}
	}
	return Opcode(utils.BytesToUint16(e.memory[e.PC], e.memory[e.PC+1])), nil
}

// Halted reports whether the emulator is halted. The emulator starts
// halted and stays halted until a ROM is loaded, or after a fault.
func (e *Emulator) Halted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.halt
}

// Registers returns a consistent snapshot of the register file, the
// index register, the program counter and the delay timer. Debug views
// read the machine through this rather than the raw fields, which are
// only stable between Update calls.
func (e *Emulator) Registers() (v [16]uint8, i, pc uint16, delay uint8) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.V, e.I, e.PC, e.Delay.Value()
}

// CodeRange returns the memory window [start, end) holding the most
// recently loaded ROM.
func (e *Emulator) CodeRange() (start, end int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.codeRange()
}

func (e *Emulator) codeRange() (start, end int) {
	return ProgramStart, ProgramStart + e.codeLen
}

// Code returns a copy of the loaded program bytes.
func (e *Emulator) Code() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()

	start, end := e.codeRange()
	code := make([]byte, end-start)
	copy(code, e.memory[start:end])
	return code
}

// Stack returns a copy of the call stack, bottom first.
func (e *Emulator) Stack() []uint16 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]uint16(nil), e.stack...)
}

// UnknownOpcodes returns the number of unrecognized instructions
// executed (as no-ops) since the last ROM load.
func (e *Emulator) UnknownOpcodes() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.unknownOpcodes
}
