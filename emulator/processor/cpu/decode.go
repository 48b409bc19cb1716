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

package cpu

import (
	"fmt"

	"github.com/andreas-jonsson/virtualc8/emulator/memory"
	"github.com/andreas-jonsson/virtualc8/emulator/processor"
	"github.com/andreas-jonsson/virtualc8/emulator/processor/validator"
)

// Instruction is a decoded 16-bit instruction word.
type Instruction struct {
	Word uint16

	Op, X, Y, N byte
	NN          byte
	NNN         uint16

	Operation Operation
}

// Decode splits an instruction word into its fields and selects the
// operation. Every word decodes; unknown patterns get OpInvalid.
func Decode(word uint16) Instruction {
	in := Instruction{
		Word: word,
		Op:   byte(word >> 12),
		X:    byte(word>>8) & 0xF,
		Y:    byte(word>>4) & 0xF,
		N:    byte(word) & 0xF,
		NN:   byte(word),
		NNN:  word & 0xFFF,
	}
	in.Operation = in.lookup()
	return in
}

func (in Instruction) String() string {
	if ops := in.operands(); ops != "" {
		return fmt.Sprintf("%s %s", in.Operation, ops)
	}
	return in.Operation.String()
}

func (in Instruction) lookup() Operation {
	switch in.Op {
	case 0x0:
		switch in.Word {
		case 0x00E0:
			return OpClear
		case 0x00EE:
			return OpReturn
		}
	case 0x1:
		return OpJump
	case 0x2:
		return OpCall
	case 0x3:
		return OpSkipEqualImm
	case 0x4:
		return OpSkipNotEqualImm
	case 0x5:
		if in.N == 0 {
			return OpSkipEqualReg
		}
	case 0x6:
		return OpLoadImm
	case 0x7:
		return OpAddImm
	case 0x8:
		return aluLookup[in.N]
	case 0x9:
		if in.N == 0 {
			return OpSkipNotEqualReg
		}
	case 0xA:
		return OpLoadIndex
	case 0xB:
		return OpJumpOffset
	case 0xC:
		return OpRandom
	case 0xD:
		return OpDraw
	case 0xE:
		switch in.NN {
		case 0x9E:
			return OpSkipKey
		case 0xA1:
			return OpSkipNotKey
		}
	case 0xF:
		return miscLookup[in.NN]
	}
	return OpInvalid
}

// Unlisted entries are OpInvalid (zero value).
var aluLookup = [0x10]Operation{
	0x0: OpMove,
	0x1: OpOr,
	0x2: OpAnd,
	0x3: OpXor,
	0x4: OpAdd,
	0x5: OpSub,
	0x6: OpShiftRight,
	0x7: OpSubReverse,
	0xE: OpShiftLeft,
}

var miscLookup = [0x100]Operation{
	0x07: OpLoadDelay,
	0x0A: OpWaitKey,
	0x15: OpSetDelay,
	0x18: OpSetSound,
	0x1E: OpAddIndex,
	0x29: OpLoadGlyph,
	0x33: OpStoreBCD,
	0x55: OpStoreRegisters,
	0x65: OpLoadRegisters,
}

type instructionState struct {
	Instruction

	decodeAt   memory.Address
	cycleCount int
}

// InstructionError is returned from Step when an instruction could not
// be executed.
type InstructionError struct {
	Addr        memory.Address
	Instruction Instruction
	Err         error
}

func (e *InstructionError) Error() string {
	in := e.Instruction
	return fmt.Sprintf(
		"%v: 0x%04X (%v) at %v [op: %X, x: %X, y: %X, n: %X, nn: %02X, nnn: %03X]",
		e.Err, in.Word, in, e.Addr, in.Op, in.X, in.Y, in.N, in.NN, in.NNN,
	)
}

func (e *InstructionError) Unwrap() error {
	return e.Err
}

func (p *CPU) fetch() uint16 {
	p.decodeAt = memory.Wrap(p.PC)
	word := p.mem.ReadWord(p.decodeAt)
	p.PC = uint16(p.decodeAt.AddInt(2))
	return word
}

// Step executes a single instruction and then steps all peripherals.
// Peripherals are stepped after recoverable errors as well.
func (p *CPU) Step() (int, error) {
	// Reset cycle counter.
	p.cycleCount = 0

	before := p.Registers
	p.Instruction = Decode(p.fetch())

	read, write := p.Operation.MemoryAccess()
	validator.Begin(p.Word, before, read, write)

	var stepErr error
	if err := p.execute(); err != nil {
		validator.Discard()
		stepErr = &InstructionError{Addr: p.decodeAt, Instruction: p.Instruction, Err: err}
		if !processor.IsRecoverable(err) {
			return p.cycleCount, stepErr
		}
	} else {
		validator.End(p.Registers)
	}

	for _, d := range p.peripherals {
		if err := d.Step(p.cycleCount); err != nil {
			return p.cycleCount, err
		}
	}
	return p.cycleCount, stepErr
}
