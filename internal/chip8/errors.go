package chip8

import "fmt"

// MemoryError is returned when an instruction addresses memory outside
// the 4KB RAM.
type MemoryError struct {
	// Addr is the first address of the failed access.
	Addr uint32
	// Size is the length of the failed access in bytes.
	Size int
}

func (e *MemoryError) Error() string {
	return fmt.Sprintf("chip8: memory access out of range: 0x%04X (%d bytes)", e.Addr, e.Size)
}

// StackOverflowError is returned when a subroutine call exceeds the
// hardware stack depth.
type StackOverflowError struct {
	// PC is the address of the call that overflowed the stack.
	PC uint16
}

func (e *StackOverflowError) Error() string {
	return fmt.Sprintf("chip8: call stack overflow at 0x%04X (depth %d)", e.PC, StackDepth)
}
