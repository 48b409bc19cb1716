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
	"errors"

	"github.com/andreas-jonsson/virtualc8/emulator/memory"
)

type Stats struct {
	NumInstructions uint64
	NumDraws        uint64
	RX, TX          uint64
}

var (
	ErrInvalidOpcode  = errors.New("invalid opcode")
	ErrStackOverflow  = errors.New("stack overflow")
	ErrStackUnderflow = errors.New("stack underflow")
	ErrNotSupported   = errors.New("operation not supported")
)

// IsRecoverable reports whether execution may continue after err.
// Only a return with an empty stack qualifies.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrStackUnderflow)
}

// Keypad is the contract the input layer has to satisfy for the
// key-skip and key-wait instructions.
type Keypad interface {
	IsKeyDown(key byte) bool
	PressedKey() (byte, bool)
}

// Font locates the built-in hexadecimal glyphs.
type Font interface {
	GlyphAddress(digit byte) memory.Address
}

type Debug interface {
	GetStats() Stats
}

type Processor interface {
	Debug

	ReadByte(addr memory.Address) byte
	WriteByte(addr memory.Address, data byte)
	LoadProgram(offset memory.Address, data []byte) int

	GetRegisters() *Registers
	GetFramebuffer() *Framebuffer
	TickTimers()

	InstallKeypad(k Keypad) error
	InstallFont(f Font) error
}
