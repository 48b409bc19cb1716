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

package memory

import (
	"fmt"
)

const (
	Size         = 0x1000
	ProgramStart = Address(0x200)
	FontStart    = Address(0x050)
)

// Address is a location in the 12-bit CHIP-8 address space.
type Address uint16

// Wrap folds any 16-bit value into the address space.
func Wrap(v uint16) Address {
	return Address(v & (Size - 1))
}

func (a Address) String() string {
	return fmt.Sprintf("0x%03X", uint16(a))
}

func (a Address) AddInt(i int) Address {
	return Wrap(uint16(int(a) + i))
}

type Memory interface {
	ReadByte(addr Address) byte
	WriteByte(addr Address, data byte)
}

// Space is the full 4KB address space. Accesses wrap so nothing can
// index past 0xFFF.
type Space [Size]byte

func (m *Space) ReadByte(addr Address) byte {
	return m[addr&(Size-1)]
}

func (m *Space) WriteByte(addr Address, data byte) {
	m[addr&(Size-1)] = data
}

func (m *Space) ReadWord(addr Address) uint16 {
	return uint16(m.ReadByte(addr))<<8 | uint16(m.ReadByte(addr.AddInt(1)))
}

// Load copies data into memory starting at offset. Bytes that would land
// beyond the end of the address space are dropped. The number of bytes
// copied is returned.
func (m *Space) Load(offset Address, data []byte) int {
	start := int(offset & (Size - 1))
	return copy(m[start:], data)
}

func (m *Space) Clear() {
	*m = Space{}
}
