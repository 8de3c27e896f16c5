package chip8

import "fmt"

// Opcode is a single 16-bit CHIP-8 instruction word, decoded by
// nibble pattern.
type Opcode uint16

// X returns the second nibble, the Vx register selector.
func (op Opcode) X() uint8 {
	return uint8(op>>8) & 0x0F
}

// Y returns the third nibble, the Vy register selector.
func (op Opcode) Y() uint8 {
	return uint8(op>>4) & 0x0F
}

// N returns the trailing nibble.
func (op Opcode) N() uint8 {
	return uint8(op) & 0x0F
}

// NN returns the trailing byte, the 8-bit immediate.
func (op Opcode) NN() uint8 {
	return uint8(op)
}

// NNN returns the trailing three nibbles, the 12-bit address.
func (op Opcode) NNN() uint16 {
	return uint16(op) & 0x0FFF
}

// String returns the instruction in conventional CHIP-8 assembly
// notation, or a raw word for unrecognized patterns.
func (op Opcode) String() string {
	x, y := op.X(), op.Y()

	switch uint8(op >> 12) {
	case 0x0:
		switch op {
		case 0x00E0:
			return "CLS"
		case 0x00EE:
			return "RET"
		}
	case 0x1:
		return fmt.Sprintf("JP 0x%03X", op.NNN())
	case 0x2:
		return fmt.Sprintf("CALL 0x%03X", op.NNN())
	case 0x3:
		return fmt.Sprintf("SE V%X, 0x%02X", x, op.NN())
	case 0x4:
		return fmt.Sprintf("SNE V%X, 0x%02X", x, op.NN())
	case 0x5:
		if op.N() == 0 {
			return fmt.Sprintf("SE V%X, V%X", x, y)
		}
	case 0x6:
		return fmt.Sprintf("LD V%X, 0x%02X", x, op.NN())
	case 0x7:
		return fmt.Sprintf("ADD V%X, 0x%02X", x, op.NN())
	case 0x8:
		switch op.N() {
		case 0x0:
			return fmt.Sprintf("LD V%X, V%X", x, y)
		case 0x1:
			return fmt.Sprintf("OR V%X, V%X", x, y)
		case 0x2:
			return fmt.Sprintf("AND V%X, V%X", x, y)
		case 0x3:
			return fmt.Sprintf("XOR V%X, V%X", x, y)
		case 0x4:
			return fmt.Sprintf("ADD V%X, V%X", x, y)
		case 0x5:
			return fmt.Sprintf("SUB V%X, V%X", x, y)
		case 0x6:
			return fmt.Sprintf("SHR V%X", x)
		case 0x7:
			return fmt.Sprintf("SUBN V%X, V%X", x, y)
		case 0xE:
			return fmt.Sprintf("SHL V%X", x)
		}
	case 0x9:
		if op.N() == 0 {
			return fmt.Sprintf("SNE V%X, V%X", x, y)
		}
	case 0xA:
		return fmt.Sprintf("LD I, 0x%03X", op.NNN())
	case 0xB:
		return fmt.Sprintf("JP V0, 0x%03X", op.NNN())
	case 0xC:
		return fmt.Sprintf("RND V%X, 0x%02X", x, op.NN())
	case 0xD:
		return fmt.Sprintf("DRW V%X, V%X, 0x%X", x, y, op.N())
	case 0xE:
		switch op.NN() {
		case 0x9E:
			return fmt.Sprintf("SKP V%X", x)
		case 0xA1:
			return fmt.Sprintf("SKNP V%X", x)
		}
	case 0xF:
		switch op.NN() {
		case 0x07:
			return fmt.Sprintf("LD V%X, DT", x)
		case 0x0A:
			return fmt.Sprintf("LD V%X, K", x)
		case 0x15:
			return fmt.Sprintf("LD DT, V%X", x)
		case 0x18:
			return fmt.Sprintf("LD ST, V%X", x)
		case 0x1E:
			return fmt.Sprintf("ADD I, V%X", x)
		case 0x29:
			return fmt.Sprintf("LD F, V%X", x)
		case 0x33:
			return fmt.Sprintf("LD B, V%X", x)
		case 0x55:
			return fmt.Sprintf("LD [I], V%X", x)
		case 0x65:
			return fmt.Sprintf("LD V%X, [I]", x)
		}
	}
	return fmt.Sprintf(".DW 0x%04X", uint16(op))
}
