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
	"strings"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Operation identifies one CHIP-8 instruction. The decoder picks it from the
// class nibble and, where the class is shared, the trailing fields.
type Operation byte

const (
	OpInvalid Operation = iota
	OpClear
	OpReturn
	OpJump
	OpCall
	OpSkipEqualImm
	OpSkipNotEqualImm
	OpSkipEqualReg
	OpSkipNotEqualReg
	OpLoadImm
	OpAddImm
	OpMove
	OpOr
	OpAnd
	OpXor
	OpAdd
	OpSub
	OpShiftRight
	OpSubReverse
	OpShiftLeft
	OpLoadIndex
	OpJumpOffset
	OpRandom
	OpDraw
	OpSkipKey
	OpSkipNotKey
	OpLoadDelay
	OpWaitKey
	OpSetDelay
	OpSetSound
	OpAddIndex
	OpLoadGlyph
	OpStoreBCD
	OpStoreRegisters
	OpLoadRegisters

	numOperations
)

type operandFormat byte

const (
	formatNone operandFormat = iota
	formatAddr
	formatRegImm
	formatRegReg
	formatReg
	formatIndexAddr
	formatOffsetAddr
	formatDraw
	formatRegDelay
	formatRegKey
	formatDelayReg
	formatSoundReg
	formatIndexReg
	formatGlyphReg
	formatBCDReg
	formatMemReg
	formatRegMem
)

var opcodeTable = [numOperations]struct {
	ins    *chip8.Instruction
	format operandFormat
}{
	OpInvalid:         {nil, formatNone},
	OpClear:           {chip8.Cls, formatNone},
	OpReturn:          {chip8.Ret, formatNone},
	OpJump:            {chip8.Jp, formatAddr},
	OpCall:            {chip8.Call, formatAddr},
	OpSkipEqualImm:    {chip8.Se, formatRegImm},
	OpSkipNotEqualImm: {chip8.Sne, formatRegImm},
	OpSkipEqualReg:    {chip8.Se, formatRegReg},
	OpSkipNotEqualReg: {chip8.Sne, formatRegReg},
	OpLoadImm:         {chip8.Ld, formatRegImm},
	OpAddImm:          {chip8.Add, formatRegImm},
	OpMove:            {chip8.Ld, formatRegReg},
	OpOr:              {chip8.Or, formatRegReg},
	OpAnd:             {chip8.And, formatRegReg},
	OpXor:             {chip8.Xor, formatRegReg},
	OpAdd:             {chip8.Add, formatRegReg},
	OpSub:             {chip8.Sub, formatRegReg},
	OpShiftRight:      {chip8.Shr, formatRegReg},
	OpSubReverse:      {chip8.Subn, formatRegReg},
	OpShiftLeft:       {chip8.Shl, formatRegReg},
	OpLoadIndex:       {chip8.Ld, formatIndexAddr},
	OpJumpOffset:      {chip8.Jp, formatOffsetAddr},
	OpRandom:          {chip8.Rnd, formatRegImm},
	OpDraw:            {chip8.Drw, formatDraw},
	OpSkipKey:         {chip8.Skp, formatReg},
	OpSkipNotKey:      {chip8.Sknp, formatReg},
	OpLoadDelay:       {chip8.Ld, formatRegDelay},
	OpWaitKey:         {chip8.Ld, formatRegKey},
	OpSetDelay:        {chip8.Ld, formatDelayReg},
	OpSetSound:        {chip8.Ld, formatSoundReg},
	OpAddIndex:        {chip8.Add, formatIndexReg},
	OpLoadGlyph:       {chip8.Ld, formatGlyphReg},
	OpStoreBCD:        {chip8.Ld, formatBCDReg},
	OpStoreRegisters:  {chip8.Ld, formatMemReg},
	OpLoadRegisters:   {chip8.Ld, formatRegMem},
}

func (op Operation) instruction() *chip8.Instruction {
	if op >= numOperations {
		return nil
	}
	return opcodeTable[op].ins
}

func (op Operation) String() string {
	if ins := op.instruction(); ins != nil {
		return strings.ToUpper(ins.Name)
	}
	return "???"
}

// MemoryAccess reports whether the operation may read or write main
// memory. Display memory is not included.
func (op Operation) MemoryAccess() (read, write bool) {
	ins := op.instruction()
	if ins == nil {
		return false, false
	}
	return chip8.MemoryReadInstructions.Contains(ins.Name), chip8.MemoryWriteInstructions.Contains(ins.Name)
}

func (in Instruction) operands() string {
	format := formatNone
	if in.Operation < numOperations {
		format = opcodeTable[in.Operation].format
	}

	switch format {
	case formatAddr:
		return fmt.Sprintf("0x%03X", in.NNN)
	case formatRegImm:
		return fmt.Sprintf("V%X, 0x%02X", in.X, in.NN)
	case formatRegReg:
		return fmt.Sprintf("V%X, V%X", in.X, in.Y)
	case formatReg:
		return fmt.Sprintf("V%X", in.X)
	case formatIndexAddr:
		return fmt.Sprintf("I, 0x%03X", in.NNN)
	case formatOffsetAddr:
		return fmt.Sprintf("V0, 0x%03X", in.NNN)
	case formatDraw:
		return fmt.Sprintf("V%X, V%X, %d", in.X, in.Y, in.N)
	case formatRegDelay:
		return fmt.Sprintf("V%X, DT", in.X)
	case formatRegKey:
		return fmt.Sprintf("V%X, K", in.X)
	case formatDelayReg:
		return fmt.Sprintf("DT, V%X", in.X)
	case formatSoundReg:
		return fmt.Sprintf("ST, V%X", in.X)
	case formatIndexReg:
		return fmt.Sprintf("I, V%X", in.X)
	case formatGlyphReg:
		return fmt.Sprintf("F, V%X", in.X)
	case formatBCDReg:
		return fmt.Sprintf("B, V%X", in.X)
	case formatMemReg:
		return fmt.Sprintf("[I], V%X", in.X)
	case formatRegMem:
		return fmt.Sprintf("V%X, [I]", in.X)
	}
	return ""
}
