package chip8

// execute decodes and executes a single instruction. The PC has
// already been advanced past the instruction word, so jumps and calls
// overwrite it directly and the wait-for-key instruction rewinds it to
// retry on the next cycle.
//
// Unrecognized patterns execute as no-ops so malformed ROMs degrade
// gracefully instead of aborting the interpreter; they are counted for
// diagnostics. The only failures are out-of-range memory accesses and
// call stack overflow.
func (e *Emulator) execute(op Opcode) error {
	x, y := op.X(), op.Y()

	switch uint8(op >> 12) {
	case 0x0:
		switch op {
		case 0x00E0:
			// CLS
			e.Screen.Clear()
		case 0x00EE:
			// RET, a no-op on an empty stack
			if n := len(e.stack); n > 0 {
				e.PC = e.stack[n-1]
				e.stack = e.stack[:n-1]
			}
		default:
			// 0NNN machine code routines are not supported
			e.unknownOp(op)
		}
	case 0x1:
		// JP addr
		e.PC = op.NNN()
	case 0x2:
		// CALL addr
		if len(e.stack) >= StackDepth {
			return &StackOverflowError{PC: e.PC - 2}
		}
		e.stack = append(e.stack, e.PC)
		e.PC = op.NNN()
	case 0x3:
		// SE Vx, byte
		if e.V[x] == op.NN() {
			e.PC += 2
		}
	case 0x4:
		// SNE Vx, byte
		if e.V[x] != op.NN() {
			e.PC += 2
		}
	case 0x5:
		// SE Vx, Vy
		if op.N() != 0 {
			e.unknownOp(op)
			break
		}
		if e.V[x] == e.V[y] {
			e.PC += 2
		}
	case 0x6:
		// LD Vx, byte
		e.V[x] = op.NN()
	case 0x7:
		// ADD Vx, byte (wrapping, no flag)
		e.V[x] += op.NN()
	case 0x8:
		switch op.N() {
		case 0x0:
			// LD Vx, Vy
			e.V[x] = e.V[y]
		case 0x1:
			// OR Vx, Vy
			e.V[x] |= e.V[y]
		case 0x2:
			// AND Vx, Vy
			e.V[x] &= e.V[y]
		case 0x3:
			// XOR Vx, Vy
			e.V[x] ^= e.V[y]
		case 0x4:
			// ADD Vx, Vy; VF = carry
			sum := uint16(e.V[x]) + uint16(e.V[y])
			var carry uint8
			if sum > 0xFF {
				carry = 1
			}
			e.V[x] = uint8(sum)
			e.V[0xF] = carry
		case 0x5:
			// SUB Vx, Vy; VF = not borrow
			var noBorrow uint8
			if e.V[x] >= e.V[y] {
				noBorrow = 1
			}
			e.V[x] -= e.V[y]
			e.V[0xF] = noBorrow
		case 0x6:
			// SHR Vx; VF = shifted-out bit
			lsb := e.V[x] & 0x01
			e.V[x] >>= 1
			e.V[0xF] = lsb
		case 0x7:
			// SUBN Vx, Vy; VF = not borrow
			var noBorrow uint8
			if e.V[y] >= e.V[x] {
				noBorrow = 1
			}
			e.V[x] = e.V[y] - e.V[x]
			e.V[0xF] = noBorrow
		case 0xE:
			// SHL Vx; VF = shifted-out bit
			msb := e.V[x] >> 7
			e.V[x] <<= 1
			e.V[0xF] = msb
		default:
			e.unknownOp(op)
		}
	case 0x9:
		// SNE Vx, Vy
		if op.N() != 0 {
			e.unknownOp(op)
			break
		}
		if e.V[x] != e.V[y] {
			e.PC += 2
		}
	case 0xA:
		// LD I, addr
		e.I = op.NNN()
	case 0xB:
		// JP V0, addr
		e.PC = op.NNN() + uint16(e.V[0])
	case 0xC:
		// RND Vx, byte
		e.V[x] = uint8(e.rand.Intn(256)) & op.NN()
	case 0xD:
		// DRW Vx, Vy, nibble; VF = collision
		n := uint32(op.N())
		if uint32(e.I)+n > MemorySize {
			return &MemoryError{Addr: uint32(e.I), Size: int(n)}
		}
		sprite := e.memory[e.I : uint32(e.I)+n]
		var collision uint8
		if e.Screen.DrawSprite(int(e.V[x]), int(e.V[y]), sprite) {
			collision = 1
		}
		e.V[0xF] = collision
	case 0xE:
		switch op.NN() {
		case 0x9E:
			// SKP Vx
			if e.Keypad.IsPressed(e.V[x]) {
				e.PC += 2
			}
		case 0xA1:
			// SKNP Vx
			if !e.Keypad.IsPressed(e.V[x]) {
				e.PC += 2
			}
		default:
			e.unknownOp(op)
		}
	case 0xF:
		switch op.NN() {
		case 0x07:
			// LD Vx, DT
			e.V[x] = e.Delay.Value()
		case 0x0A:
			// LD Vx, K. Rewinding the PC re-executes the instruction
			// next cycle, a cooperative busy-wait that keeps the host
			// frame loop responsive.
			if key, ok := e.Keypad.PressedKey(); ok {
				e.V[x] = key
			} else {
				e.PC -= 2
			}
		case 0x15:
			// LD DT, Vx
			e.Delay.Set(e.V[x])
		case 0x18:
			// LD ST, Vx: no sound timer
		case 0x1E:
			// ADD I, Vx
			e.I += uint16(e.V[x])
		case 0x29:
			// LD F, Vx: point I at the font glyph for digit Vx
			e.I = uint16(e.V[x]) * FontGlyphSize
		case 0x33:
			// LD B, Vx: BCD digits of Vx at I, I+1, I+2
			if uint32(e.I)+3 > MemorySize {
				return &MemoryError{Addr: uint32(e.I), Size: 3}
			}
			e.memory[e.I] = e.V[x] / 100
			e.memory[e.I+1] = (e.V[x] / 10) % 10
			e.memory[e.I+2] = e.V[x] % 10
		case 0x55:
			// LD [I], Vx: store V0..Vx, I advances past the block
			count := uint32(x) + 1
			if uint32(e.I)+count > MemorySize {
				return &MemoryError{Addr: uint32(e.I), Size: int(count)}
			}
			copy(e.memory[e.I:uint32(e.I)+count], e.V[:count])
			e.I += uint16(count)
		case 0x65:
			// LD Vx, [I]: load V0..Vx, I advances past the block
			count := uint32(x) + 1
			if uint32(e.I)+count > MemorySize {
				return &MemoryError{Addr: uint32(e.I), Size: int(count)}
			}
			copy(e.V[:count], e.memory[e.I:uint32(e.I)+count])
			e.I += uint16(count)
		default:
			e.unknownOp(op)
		}
	}
	return nil
}

func (e *Emulator) unknownOp(op Opcode) {
	e.unknownOpcodes++
	e.Debugf("unknown opcode 0x%04X at 0x%04X", uint16(op), e.PC-2)
}
