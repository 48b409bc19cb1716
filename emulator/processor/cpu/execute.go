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
	"github.com/andreas-jonsson/virtualc8/emulator/memory"
	"github.com/andreas-jonsson/virtualc8/emulator/processor"
)

const vf = processor.FlagRegister

func b2b(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func (p *CPU) skipIf(b bool) {
	if b {
		p.PC = uint16(memory.Wrap(p.PC + 2))
	}
}

func (p *CPU) indexPointer(offset int) memory.Address {
	return memory.Wrap(p.I).AddInt(offset)
}

func (p *CPU) execute() error {
	// All instructions are 1 cycle.
	p.cycleCount++
	p.stats.NumInstructions++

	in := &p.Instruction
	x, y := in.X, in.Y

	switch in.Operation {
	case OpClear: // 00E0
		p.fb.Clear()
	case OpReturn: // 00EE
		addr, err := p.stack.Pop()
		if err != nil {
			return err
		}
		p.PC = addr
	case OpJump: // 1nnn
		p.PC = in.NNN
	case OpCall: // 2nnn
		if err := p.stack.Push(p.PC); err != nil {
			return err
		}
		p.PC = in.NNN
	case OpSkipEqualImm: // 3xnn
		p.skipIf(p.V[x] == in.NN)
	case OpSkipNotEqualImm: // 4xnn
		p.skipIf(p.V[x] != in.NN)
	case OpSkipEqualReg: // 5xy0
		p.skipIf(p.V[x] == p.V[y])
	case OpSkipNotEqualReg: // 9xy0
		p.skipIf(p.V[x] != p.V[y])
	case OpLoadImm: // 6xnn
		p.V[x] = in.NN
	case OpAddImm: // 7xnn
		p.V[x] += in.NN
	case OpMove: // 8xy0
		p.V[x] = p.V[y]
	case OpOr: // 8xy1
		p.V[x] |= p.V[y]
	case OpAnd: // 8xy2
		p.V[x] &= p.V[y]
	case OpXor: // 8xy3
		p.V[x] ^= p.V[y]
	case OpAdd: // 8xy4
		res := int(p.V[x]) + int(p.V[y])
		p.V[x] = byte(res)
		p.V[vf] = b2b(res > 0xFF)
	case OpSub: // 8xy5
		a, b := p.V[x], p.V[y]
		p.V[x] = a - b
		p.V[vf] = b2b(a >= b)
	case OpSubReverse: // 8xy7
		a, b := p.V[x], p.V[y]
		p.V[x] = b - a
		p.V[vf] = b2b(b >= a)
	case OpShiftRight: // 8xy6
		v := p.V[y]
		p.V[x] = v >> 1
		if !p.shiftQuirk {
			p.V[vf] = v & 1
		}
	case OpShiftLeft: // 8xyE
		v := p.V[y]
		p.V[x] = v << 1
		if !p.shiftQuirk {
			p.V[vf] = v >> 7
		}
	case OpLoadIndex: // Annn
		p.I = in.NNN
	case OpJumpOffset: // Bnnn
		p.PC = uint16(memory.Wrap(uint16(p.V[0]) + in.NNN))
	case OpRandom: // Cxnn
		p.V[x] = byte(p.rnd.Intn(0x100)) & in.NN
	case OpDraw: // Dxyn
		p.draw(x, y, in.N)
	case OpSkipKey: // Ex9E
		if p.keypad == nil {
			return processor.ErrNotSupported
		}
		p.skipIf(p.keypad.IsKeyDown(p.V[x] & 0xF))
	case OpSkipNotKey: // ExA1
		if p.keypad == nil {
			return processor.ErrNotSupported
		}
		p.skipIf(!p.keypad.IsKeyDown(p.V[x] & 0xF))
	case OpLoadDelay: // Fx07
		p.V[x] = p.DT
	case OpWaitKey: // Fx0A
		if p.keypad == nil {
			return processor.ErrNotSupported
		}
		if key, ok := p.keypad.PressedKey(); ok {
			p.V[x] = key & 0xF
		} else {
			// Repeat this instruction until a key is down.
			p.PC = uint16(p.decodeAt)
		}
	case OpSetDelay: // Fx15
		p.DT = p.V[x]
	case OpSetSound: // Fx18
		p.ST = p.V[x]
	case OpAddIndex: // Fx1E
		p.I += uint16(p.V[x])
	case OpLoadGlyph: // Fx29
		if p.font == nil {
			return processor.ErrNotSupported
		}
		p.I = uint16(p.font.GlyphAddress(p.V[x] & 0xF))
	case OpStoreBCD: // Fx33
		v := p.V[x]
		p.WriteByte(p.indexPointer(0), v/100)
		p.WriteByte(p.indexPointer(1), (v/10)%10)
		p.WriteByte(p.indexPointer(2), v%10)
	case OpStoreRegisters: // Fx55
		for i := 0; i <= int(x); i++ {
			p.WriteByte(p.indexPointer(i), p.V[i])
		}
	case OpLoadRegisters: // Fx65
		for i := 0; i <= int(x); i++ {
			p.V[i] = p.ReadByte(p.indexPointer(i))
		}
	default:
		return processor.ErrInvalidOpcode
	}
	return nil
}

func (p *CPU) draw(x, y, n byte) {
	p.stats.NumDraws++

	var sprite [0xF]byte
	for i := 0; i < int(n); i++ {
		sprite[i] = p.ReadByte(p.indexPointer(i))
	}
	collision := p.fb.Draw(int(p.V[x]), int(p.V[y]), sprite[:n])
	p.V[vf] = b2b(collision)
}
