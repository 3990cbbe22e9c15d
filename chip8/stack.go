package chip8

import (
	"fmt"
	"strings"
)

const StackSize = 16

// Stack holds subroutine return addresses.
type Stack struct {
	Addrs [StackSize]uint16
	Depth byte
}

func (s *Stack) push(addr uint16) {
	if s.Depth == StackSize {
		panic(Overflow)
	}
	s.Depth++
	s.Addrs[s.Depth-1] = addr
}

func (s *Stack) pop() uint16 {
	if s.Depth == 0 {
		panic(Underflow)
	}
	s.Depth--
	return s.Addrs[s.Depth]
}

func (s Stack) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for _, v := range s.Addrs[:s.Depth] {
		b.WriteByte(' ')
		fmt.Fprintf(&b, "%.3x", v)
	}
	b.WriteByte(' ')
	b.WriteByte(')')
	return b.String()
}
