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

package validator

import (
	"math"

	"github.com/andreas-jonsson/virtualc8/emulator/processor"
)

const (
	DefaultQueueSize  = 1024
	DefaultBufferSize = 0x100000 // 1MB
)

// MaxMemOps covers the widest instruction, Fx55/Fx65 with x = F.
const MaxMemOps = 16

type Event struct {
	Opcode        uint16
	Regs          [2]processor.Registers
	Reads, Writes [MaxMemOps]MemOp
}

type MemOp struct {
	Addr uint32
	Data byte
}

var emptyMemOp = MemOp{math.MaxUint32, 0}

func newEvent(opcode uint16, regs processor.Registers) Event {
	ev := Event{Opcode: opcode}
	ev.Regs[0] = regs
	for i := range ev.Reads {
		ev.Reads[i] = emptyMemOp
		ev.Writes[i] = emptyMemOp
	}
	return ev
}

// Location returns the address the instruction was fetched from.
func (ev *Event) Location() uint16 {
	return ev.Regs[0].PC
}
