/*
Copyright (c) 2019-2021 Andreas T Jonsson

This software is provided 'as-is', without any express or implied
warranty. In no event will the authors be held liable for any damages
arising from the use of this software.

Permission is granted to anyone to use this software for any purpose,
including commercial applications, and to alter it and redistribute it
freely, subject to the following restrictions:

1. The origin of this software must not be misrepresented; you must not
   claim that you wrote the original software. If you use this software
   in a product, an acknowledgment in the product documentation would be
   appreciated but is not required.
2. Altered source versions must be plainly marked as such, and must not be
   misrepresented as being the original software.
3. This notice may not be removed or altered from any source distribution.
*/

package processor

import (
	"fmt"

	"github.com/andreas-jonsson/virtualc8/emulator/memory"
)

const (
	NumRegisters = 16
	StackSize    = 16

	// FlagRegister is VF, the carry/borrow/collision flag.
	FlagRegister = 0xF
)

type Registers struct {
	V  [NumRegisters]byte
	I  uint16
	PC uint16

	DT, ST byte
}

func (r *Registers) Reset() {
	*r = Registers{PC: uint16(memory.ProgramStart)}
}

// TickTimers decrements the delay and sound timers, stopping at zero.
func (r *Registers) TickTimers() {
	if r.DT > 0 {
		r.DT--
	}
	if r.ST > 0 {
		r.ST--
	}
}

func (r *Registers) String() string {
	s := fmt.Sprintf("PC 0x%03X  I 0x%03X  DT %d  ST %d\n", r.PC, r.I, r.DT, r.ST)
	for i, v := range r.V {
		s += fmt.Sprintf("V%X 0x%02X", i, v)
		if i%8 == 7 {
			s += "\n"
		} else {
			s += "  "
		}
	}
	return s
}

type Stack struct {
	entries [StackSize]uint16
	sp      int
}

func (s *Stack) Reset() {
	*s = Stack{}
}

func (s *Stack) Len() int {
	return s.sp
}

func (s *Stack) Push(addr uint16) error {
	if s.sp == StackSize {
		return ErrStackOverflow
	}
	s.entries[s.sp] = addr
	s.sp++
	return nil
}

func (s *Stack) Pop() (uint16, error) {
	if s.sp == 0 {
		return 0, ErrStackUnderflow
	}
	s.sp--
	return s.entries[s.sp], nil
}
