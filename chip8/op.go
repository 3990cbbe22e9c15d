package chip8

import "fmt"

// Op represents a CHIP-8 instruction.
type Op uint16

// Family returns the high nibble, which selects the instruction family.
func (o Op) Family() byte { return byte(o >> 12) }

// X returns the register index in bits 8-11.
func (o Op) X() byte { return byte(o>>8) & 0xf }

// Y returns the register index in bits 4-7.
func (o Op) Y() byte { return byte(o>>4) & 0xf }

// N returns the low nibble.
func (o Op) N() byte { return byte(o) & 0xf }

// NN returns the low byte.
func (o Op) NN() byte { return byte(o) }

// NNN returns the 12-bit address field.
func (o Op) NNN() uint16 { return uint16(o) & 0xfff }

// Valid reports whether o is one of the 35 CHIP-8 instructions.
func (o Op) Valid() bool { return o.mnemonic() != "" }

// String returns the assembler form of o, for example "DRW V0, V1, 5".
// Undefined instructions are shown as a data word.
func (o Op) String() string {
	m := o.mnemonic()
	if m == "" {
		return fmt.Sprintf("DW 0x%.4x", uint16(o))
	}
	return m
}

func (o Op) mnemonic() string {
	x, y := o.X(), o.Y()
	switch o.Family() {
	case 0x0:
		switch o {
		case 0x00e0:
			return "CLS"
		case 0x00ee:
			return "RET"
		}
		return fmt.Sprintf("SYS 0x%.3x", o.NNN())
	case 0x1:
		return fmt.Sprintf("JP 0x%.3x", o.NNN())
	case 0x2:
		return fmt.Sprintf("CALL 0x%.3x", o.NNN())
	case 0x3:
		return fmt.Sprintf("SE V%X, 0x%.2x", x, o.NN())
	case 0x4:
		return fmt.Sprintf("SNE V%X, 0x%.2x", x, o.NN())
	case 0x5:
		if o.N() == 0 {
			return fmt.Sprintf("SE V%X, V%X", x, y)
		}
	case 0x6:
		return fmt.Sprintf("LD V%X, 0x%.2x", x, o.NN())
	case 0x7:
		return fmt.Sprintf("ADD V%X, 0x%.2x", x, o.NN())
	case 0x8:
		var name string
		switch o.N() {
		case 0x0:
			name = "LD"
		case 0x1:
			name = "OR"
		case 0x2:
			name = "AND"
		case 0x3:
			name = "XOR"
		case 0x4:
			name = "ADD"
		case 0x5:
			name = "SUB"
		case 0x6:
			return fmt.Sprintf("SHR V%X", x)
		case 0x7:
			name = "SUBN"
		case 0xe:
			return fmt.Sprintf("SHL V%X", x)
		default:
			return ""
		}
		return fmt.Sprintf("%s V%X, V%X", name, x, y)
	case 0x9:
		if o.N() == 0 {
			return fmt.Sprintf("SNE V%X, V%X", x, y)
		}
	case 0xa:
		return fmt.Sprintf("LD I, 0x%.3x", o.NNN())
	case 0xb:
		return fmt.Sprintf("JP V0, 0x%.3x", o.NNN())
	case 0xc:
		return fmt.Sprintf("RND V%X, 0x%.2x", x, o.NN())
	case 0xd:
		return fmt.Sprintf("DRW V%X, V%X, %d", x, y, o.N())
	case 0xe:
		switch o.NN() {
		case 0x9e:
			return fmt.Sprintf("SKP V%X", x)
		case 0xa1:
			return fmt.Sprintf("SKNP V%X", x)
		}
	case 0xf:
		switch o.NN() {
		case 0x07:
			return fmt.Sprintf("LD V%X, DT", x)
		case 0x0a:
			return fmt.Sprintf("LD V%X, K", x)
		case 0x15:
			return fmt.Sprintf("LD DT, V%X", x)
		case 0x18:
			return fmt.Sprintf("LD ST, V%X", x)
		case 0x1e:
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
	return ""
}
