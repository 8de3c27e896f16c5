package chip8

import (
	"errors"
	"testing"
)

// step executes a single instruction, failing the test on a fault.
func step(t *testing.T, e *Emulator) {
	t.Helper()
	if err := e.Step(); err != nil {
		t.Fatalf("unexpected fault: %v", err)
	}
}

func TestInstruction_ClearScreen(t *testing.T) {
	e := newTestEmulator(t, 0x00E0)
	e.Screen.SetPixel(1, 1, true)
	step(t, e)
	if e.Screen.GetPixel(1, 1) {
		t.Error("expected screen to be cleared")
	}
	if !e.Screen.IsDirty() {
		t.Error("expected screen to be dirty")
	}
}

func TestInstruction_Jumps(t *testing.T) {
	// 0x1NNN - JP addr
	t.Run("JP addr", func(t *testing.T) {
		e := newTestEmulator(t, 0x1234)
		step(t, e)
		if e.PC != 0x234 {
			t.Errorf("expected PC 0x234, got 0x%04X", e.PC)
		}
	})
	// 0xBNNN - JP V0, addr
	t.Run("JP V0, addr", func(t *testing.T) {
		e := newTestEmulator(t, 0xB234)
		e.V[0] = 0x10
		step(t, e)
		if e.PC != 0x244 {
			t.Errorf("expected PC 0x244, got 0x%04X", e.PC)
		}
	})
}

func TestInstruction_Subroutines(t *testing.T) {
	t.Run("CALL and RET", func(t *testing.T) {
		// CALL 0x206, then NOPs, at 0x206 a RET
		e := newTestEmulator(t, 0x2206, 0x0000, 0x0000, 0x00EE)
		step(t, e)
		if e.PC != 0x206 {
			t.Fatalf("expected PC 0x206 after call, got 0x%04X", e.PC)
		}
		if stack := e.Stack(); len(stack) != 1 || stack[0] != 0x202 {
			t.Fatalf("expected return address 0x202 on the stack, got %#v", stack)
		}
		step(t, e)
		if e.PC != 0x202 {
			t.Errorf("expected PC 0x202 after ret, got 0x%04X", e.PC)
		}
		if len(e.Stack()) != 0 {
			t.Errorf("expected empty stack after ret, got %d entries", len(e.Stack()))
		}
	})

	t.Run("RET on empty stack is a no-op", func(t *testing.T) {
		e := newTestEmulator(t, 0x00EE)
		step(t, e)
		if e.PC != 0x202 {
			t.Errorf("expected PC 0x202, got 0x%04X", e.PC)
		}
	})

	t.Run("call stack overflows at depth 16", func(t *testing.T) {
		// a subroutine that calls itself
		e := newTestEmulator(t, 0x2200)
		for i := 0; i < StackDepth; i++ {
			step(t, e)
		}
		err := e.Step()
		if err == nil {
			t.Fatal("expected a stack overflow")
		}
		var overflow *StackOverflowError
		if !errors.As(err, &overflow) {
			t.Errorf("expected a *StackOverflowError, got %T", err)
		}
		if !e.Halted() {
			t.Error("expected emulator to halt")
		}
	})
}

func TestInstruction_Skips(t *testing.T) {
	tests := []struct {
		name  string
		op    uint16
		setup func(e *Emulator)
		skip  bool
	}{
		{"SE Vx, byte taken", 0x3042, func(e *Emulator) { e.V[0] = 0x42 }, true},
		{"SE Vx, byte not taken", 0x3042, func(e *Emulator) { e.V[0] = 0x41 }, false},
		{"SNE Vx, byte taken", 0x4042, func(e *Emulator) { e.V[0] = 0x41 }, true},
		{"SNE Vx, byte not taken", 0x4042, func(e *Emulator) { e.V[0] = 0x42 }, false},
		{"SE Vx, Vy taken", 0x5010, func(e *Emulator) { e.V[0], e.V[1] = 7, 7 }, true},
		{"SE Vx, Vy not taken", 0x5010, func(e *Emulator) { e.V[0], e.V[1] = 7, 8 }, false},
		{"SNE Vx, Vy taken", 0x9010, func(e *Emulator) { e.V[0], e.V[1] = 7, 8 }, true},
		{"SNE Vx, Vy not taken", 0x9010, func(e *Emulator) { e.V[0], e.V[1] = 7, 7 }, false},
		{"SKP Vx taken", 0xE29E, func(e *Emulator) { e.V[2] = 0xA; e.Keypad.Set(0xA, true) }, true},
		{"SKP Vx not taken", 0xE29E, func(e *Emulator) { e.V[2] = 0xA }, false},
		{"SKNP Vx taken", 0xE2A1, func(e *Emulator) { e.V[2] = 0xA }, true},
		{"SKNP Vx not taken", 0xE2A1, func(e *Emulator) { e.V[2] = 0xA; e.Keypad.Set(0xA, true) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEmulator(t, tt.op)
			tt.setup(e)
			step(t, e)
			want := uint16(0x202)
			if tt.skip {
				want = 0x204
			}
			if e.PC != want {
				t.Errorf("expected PC 0x%04X, got 0x%04X", want, e.PC)
			}
		})
	}
}

func TestInstruction_Loads(t *testing.T) {
	// 0x6XNN - LD Vx, byte
	t.Run("LD Vx, byte", func(t *testing.T) {
		e := newTestEmulator(t, 0x6A15)
		step(t, e)
		if e.V[0xA] != 0x15 {
			t.Errorf("expected VA 0x15, got 0x%02X", e.V[0xA])
		}
	})
	// 0x8XY0 - LD Vx, Vy
	t.Run("LD Vx, Vy", func(t *testing.T) {
		e := newTestEmulator(t, 0x8120)
		e.V[2] = 0x99
		step(t, e)
		if e.V[1] != 0x99 {
			t.Errorf("expected V1 0x99, got 0x%02X", e.V[1])
		}
	})
	// 0xANNN - LD I, addr
	t.Run("LD I, addr", func(t *testing.T) {
		e := newTestEmulator(t, 0xA123)
		step(t, e)
		if e.I != 0x123 {
			t.Errorf("expected I 0x123, got 0x%04X", e.I)
		}
	})
	// 0xFX07 / 0xFX15 - delay timer
	t.Run("delay timer", func(t *testing.T) {
		e := newTestEmulator(t, 0xF315, 0xF407)
		e.V[3] = 0x42
		step(t, e)
		if e.Delay.Value() != 0x42 {
			t.Errorf("expected delay 0x42, got 0x%02X", e.Delay.Value())
		}
		step(t, e)
		if e.V[4] != 0x42 {
			t.Errorf("expected V4 0x42, got 0x%02X", e.V[4])
		}
	})
	// 0xFX29 - LD F, Vx
	t.Run("LD F, Vx", func(t *testing.T) {
		e := newTestEmulator(t, 0xF529)
		e.V[5] = 0xA
		step(t, e)
		if e.I != 0xA*FontGlyphSize {
			t.Errorf("expected I 0x%X, got 0x%04X", 0xA*FontGlyphSize, e.I)
		}
	})
}

func TestInstruction_Arithmetic(t *testing.T) {
	t.Run("ADD Vx, byte wraps without flag", func(t *testing.T) {
		e := newTestEmulator(t, 0x7005)
		e.V[0] = 0xFE
		e.V[0xF] = 0
		step(t, e)
		if e.V[0] != 0x03 {
			t.Errorf("expected V0 0x03, got 0x%02X", e.V[0])
		}
		if e.V[0xF] != 0 {
			t.Errorf("expected VF untouched, got %d", e.V[0xF])
		}
	})

	t.Run("ADD Vx, Vy sets carry", func(t *testing.T) {
		e := newTestEmulator(t, 0x8014)
		e.V[0], e.V[1] = 0xFF, 0x01
		step(t, e)
		if e.V[0] != 0x00 || e.V[0xF] != 1 {
			t.Errorf("expected V0=0x00 VF=1, got V0=0x%02X VF=%d", e.V[0], e.V[0xF])
		}
	})

	t.Run("ADD Vx, Vy clears carry", func(t *testing.T) {
		e := newTestEmulator(t, 0x8014)
		e.V[0], e.V[1] = 0x01, 0x02
		e.V[0xF] = 1
		step(t, e)
		if e.V[0] != 0x03 || e.V[0xF] != 0 {
			t.Errorf("expected V0=0x03 VF=0, got V0=0x%02X VF=%d", e.V[0], e.V[0xF])
		}
	})

	t.Run("SUB Vx, Vy with borrow", func(t *testing.T) {
		e := newTestEmulator(t, 0x8015)
		e.V[0], e.V[1] = 0x01, 0x02
		step(t, e)
		if e.V[0] != 0xFF || e.V[0xF] != 0 {
			t.Errorf("expected V0=0xFF VF=0, got V0=0x%02X VF=%d", e.V[0], e.V[0xF])
		}
	})

	t.Run("SUB Vx, Vy without borrow", func(t *testing.T) {
		e := newTestEmulator(t, 0x8015)
		e.V[0], e.V[1] = 0x05, 0x05
		step(t, e)
		if e.V[0] != 0x00 || e.V[0xF] != 1 {
			t.Errorf("expected V0=0x00 VF=1, got V0=0x%02X VF=%d", e.V[0], e.V[0xF])
		}
	})

	t.Run("SUBN Vx, Vy", func(t *testing.T) {
		e := newTestEmulator(t, 0x8017)
		e.V[0], e.V[1] = 0x01, 0x03
		step(t, e)
		if e.V[0] != 0x02 || e.V[0xF] != 1 {
			t.Errorf("expected V0=0x02 VF=1, got V0=0x%02X VF=%d", e.V[0], e.V[0xF])
		}
	})

	t.Run("SUBN Vx, Vy with borrow", func(t *testing.T) {
		e := newTestEmulator(t, 0x8017)
		e.V[0], e.V[1] = 0x03, 0x01
		step(t, e)
		if e.V[0] != 0xFE || e.V[0xF] != 0 {
			t.Errorf("expected V0=0xFE VF=0, got V0=0x%02X VF=%d", e.V[0], e.V[0xF])
		}
	})

	t.Run("bitwise OR AND XOR", func(t *testing.T) {
		e := newTestEmulator(t, 0x8011, 0x8012, 0x8013)
		e.V[0], e.V[1] = 0b1010, 0b0110
		step(t, e)
		if e.V[0] != 0b1110 {
			t.Errorf("expected OR result 0b1110, got 0b%b", e.V[0])
		}
		e.V[0] = 0b1010
		step(t, e)
		if e.V[0] != 0b0010 {
			t.Errorf("expected AND result 0b0010, got 0b%b", e.V[0])
		}
		e.V[0] = 0b1010
		step(t, e)
		if e.V[0] != 0b1100 {
			t.Errorf("expected XOR result 0b1100, got 0b%b", e.V[0])
		}
	})
}

func TestInstruction_Shifts(t *testing.T) {
	t.Run("SHR shifts out the LSB", func(t *testing.T) {
		e := newTestEmulator(t, 0x8006)
		e.V[0] = 0x05
		step(t, e)
		if e.V[0] != 0x02 || e.V[0xF] != 1 {
			t.Errorf("expected V0=0x02 VF=1, got V0=0x%02X VF=%d", e.V[0], e.V[0xF])
		}
	})
	t.Run("SHL shifts out the MSB", func(t *testing.T) {
		e := newTestEmulator(t, 0x800E)
		e.V[0] = 0x81
		step(t, e)
		if e.V[0] != 0x02 || e.V[0xF] != 1 {
			t.Errorf("expected V0=0x02 VF=1, got V0=0x%02X VF=%d", e.V[0], e.V[0xF])
		}
	})
	t.Run("shift flags clear when nothing shifts out", func(t *testing.T) {
		e := newTestEmulator(t, 0x8006, 0x800E)
		e.V[0] = 0x02
		e.V[0xF] = 1
		step(t, e)
		if e.V[0] != 0x01 || e.V[0xF] != 0 {
			t.Errorf("expected V0=0x01 VF=0, got V0=0x%02X VF=%d", e.V[0], e.V[0xF])
		}
		step(t, e)
		if e.V[0] != 0x02 || e.V[0xF] != 0 {
			t.Errorf("expected V0=0x02 VF=0, got V0=0x%02X VF=%d", e.V[0], e.V[0xF])
		}
	})
}

func TestInstruction_Random(t *testing.T) {
	// 0xCXNN - RND Vx, byte: the mask must always hold
	e := newTestEmulator(t, 0xC00F, 0x1200)
	for i := 0; i < 50; i++ {
		step(t, e) // rnd
		if e.V[0]&0xF0 != 0 {
			t.Fatalf("expected masked random value, got 0x%02X", e.V[0])
		}
		step(t, e) // jump back
	}
}

func TestInstruction_AddIndex(t *testing.T) {
	// 0xFX1E - ADD I, Vx
	e := newTestEmulator(t, 0xF01E)
	e.I = 0x100
	e.V[0] = 0x20
	step(t, e)
	if e.I != 0x120 {
		t.Errorf("expected I 0x120, got 0x%04X", e.I)
	}
}

func TestInstruction_BCD(t *testing.T) {
	e := newTestEmulator(t, 0xF333)
	e.V[3] = 254
	e.I = 0x300
	step(t, e)
	if e.memory[0x300] != 2 || e.memory[0x301] != 5 || e.memory[0x302] != 4 {
		t.Errorf("expected BCD digits 2 5 4, got %d %d %d",
			e.memory[0x300], e.memory[0x301], e.memory[0x302])
	}
}

func TestInstruction_StoreLoadRegisters(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		// store V0..V3, then load them back from the same address
		e := newTestEmulator(t, 0xF355, 0xA300, 0xF365)
		e.V[0], e.V[1], e.V[2], e.V[3] = 1, 2, 3, 4
		e.I = 0x300
		step(t, e)
		if e.I != 0x304 {
			t.Errorf("expected I to advance to 0x304, got 0x%04X", e.I)
		}

		step(t, e) // reset I
		e.V[0], e.V[1], e.V[2], e.V[3] = 0, 0, 0, 0
		step(t, e)
		if e.V[0] != 1 || e.V[1] != 2 || e.V[2] != 3 || e.V[3] != 4 {
			t.Errorf("expected V0..V3 = 1 2 3 4, got %d %d %d %d",
				e.V[0], e.V[1], e.V[2], e.V[3])
		}
		if e.I != 0x304 {
			t.Errorf("expected I to advance to 0x304, got 0x%04X", e.I)
		}
	})

	t.Run("store past the end of memory faults", func(t *testing.T) {
		e := newTestEmulator(t, 0xFF55)
		e.I = MemorySize - 8
		err := e.Step()
		if err == nil {
			t.Fatal("expected a memory fault")
		}
		var memErr *MemoryError
		if !errors.As(err, &memErr) {
			t.Errorf("expected a *MemoryError, got %T", err)
		}
	})
}

func TestInstruction_Draw(t *testing.T) {
	t.Run("sets the collision flag", func(t *testing.T) {
		// draw the same glyph twice at the same position
		e := newTestEmulator(t, 0xD015, 0xD015)
		step(t, e)
		if e.V[0xF] != 0 {
			t.Errorf("expected VF=0 on first draw, got %d", e.V[0xF])
		}
		step(t, e)
		if e.V[0xF] != 1 {
			t.Errorf("expected VF=1 on overlapping draw, got %d", e.V[0xF])
		}
		// the XOR cancelled every pixel
		for y := 0; y < 5; y++ {
			for x := 0; x < 8; x++ {
				if e.Screen.GetPixel(x, y) {
					t.Fatalf("expected pixel (%d, %d) to be cleared", x, y)
				}
			}
		}
	})

	t.Run("sprite read past the end of memory faults", func(t *testing.T) {
		e := newTestEmulator(t, 0xD015)
		e.I = MemorySize - 2
		if err := e.Step(); err == nil {
			t.Fatal("expected a memory fault")
		}
	})
}

func TestInstruction_WaitForKey(t *testing.T) {
	e := newTestEmulator(t, 0xF50A)

	// with no key held the instruction re-executes itself
	for i := 0; i < 5; i++ {
		step(t, e)
		if e.PC != 0x200 {
			t.Fatalf("expected PC to stay at 0x200 while waiting, got 0x%04X", e.PC)
		}
	}

	// the lowest held key is reported
	e.Keypad.Set(0xB, true)
	e.Keypad.Set(0x7, true)
	step(t, e)
	if e.V[5] != 0x7 {
		t.Errorf("expected V5 0x7, got 0x%X", e.V[5])
	}
	if e.PC != 0x202 {
		t.Errorf("expected PC 0x202, got 0x%04X", e.PC)
	}
}

func TestInstruction_Unknown(t *testing.T) {
	// machine code routines and unmatched patterns execute as no-ops
	e := newTestEmulator(t, 0x0123, 0x8008, 0xE0FF, 0xF0FF)
	for i := 1; i <= 4; i++ {
		step(t, e)
		if e.PC != uint16(0x200+i*2) {
			t.Fatalf("expected PC 0x%04X, got 0x%04X", 0x200+i*2, e.PC)
		}
	}
	if e.UnknownOpcodes() != 4 {
		t.Errorf("expected 4 unknown opcodes counted, got %d", e.UnknownOpcodes())
	}
}
