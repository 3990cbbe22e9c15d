package chip8

import "fmt"

const (
	MemSize     = 0x1000
	ProgramBase = 0x200
	FontBase    = 0x000

	// MaxProgramSize is the largest program Load will accept.
	MaxProgramSize = MemSize - ProgramBase

	addrMask = MemSize - 1
)

// Memory is the 4K byte address space of a CHIP-8 machine.
type Memory [MemSize]byte

// Byte returns the byte at addr, masked to 12 bits.
func (m *Memory) Byte(addr uint16) byte { return m[addr&addrMask] }

// SetByte stores v at addr, masked to 12 bits.
func (m *Memory) SetByte(addr uint16, v byte) { m[addr&addrMask] = v }

// WriteRange copies b into memory starting at offset. It returns a
// *LoadError, and writes nothing, if b does not fit below 0x1000.
func (m *Memory) WriteRange(offset uint16, b []byte) error {
	if int(offset)+len(b) > MemSize {
		return &LoadError{Offset: offset, Size: len(b)}
	}
	copy(m[offset:], b)
	return nil
}

// LoadError reports a program that does not fit in memory.
type LoadError struct {
	Offset uint16
	Size   int
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("program of %d bytes at %.3x exceeds memory (max %d bytes)",
		e.Size, e.Offset, MemSize-int(e.Offset))
}

// font holds the sixteen 4x5 hexadecimal digit sprites.
var font = [16 * 5]byte{
	0xf0, 0x90, 0x90, 0x90, 0xf0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xf0, 0x10, 0xf0, 0x80, 0xf0, // 2
	0xf0, 0x10, 0xf0, 0x10, 0xf0, // 3
	0x90, 0x90, 0xf0, 0x10, 0x10, // 4
	0xf0, 0x80, 0xf0, 0x10, 0xf0, // 5
	0xf0, 0x80, 0xf0, 0x90, 0xf0, // 6
	0xf0, 0x10, 0x20, 0x40, 0x40, // 7
	0xf0, 0x90, 0xf0, 0x90, 0xf0, // 8
	0xf0, 0x90, 0xf0, 0x10, 0xf0, // 9
	0xf0, 0x90, 0xf0, 0x90, 0x90, // A
	0xe0, 0x90, 0xe0, 0x90, 0xe0, // B
	0xf0, 0x80, 0x80, 0x80, 0xf0, // C
	0xe0, 0x90, 0x90, 0x90, 0xe0, // D
	0xf0, 0x80, 0xf0, 0x80, 0xf0, // E
	0xf0, 0x80, 0xf0, 0x80, 0x80, // F
}

// FontAddr returns the address of the sprite for hex digit d.
func FontAddr(d byte) uint16 { return FontBase + uint16(d&0xf)*5 }
