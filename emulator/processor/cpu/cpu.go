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
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/andreas-jonsson/virtualc8/emulator/memory"
	"github.com/andreas-jonsson/virtualc8/emulator/peripheral"
	"github.com/andreas-jonsson/virtualc8/emulator/processor"
	"github.com/andreas-jonsson/virtualc8/emulator/processor/validator"
)

var _ processor.Processor = (*CPU)(nil)

type CPU struct {
	processor.Registers
	instructionState

	shiftQuirk bool

	stack processor.Stack
	mem   memory.Space
	fb    processor.Framebuffer

	keypad processor.Keypad
	font   processor.Font
	rnd    *rand.Rand

	stats       processor.Stats
	peripherals []peripheral.Peripheral
}

func NewCPU(peripherals []peripheral.Peripheral) (*CPU, []error) {
	p := &CPU{
		peripherals: peripherals,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	p.Registers.Reset()
	return p, p.installPeripherals()
}

// SetShiftFlagQuirk makes 8xy6 and 8xyE leave VF untouched instead of
// storing the bit that was shifted out.
func (p *CPU) SetShiftFlagQuirk(b bool) {
	p.shiftQuirk = b
}

func (p *CPU) SetRandomSource(src rand.Source) {
	p.rnd = rand.New(src)
}

func (p *CPU) installPeripherals() []error {
	var errs []error
	for _, d := range p.peripherals {
		if err := d.Install(p); err != nil {
			errs = append(errs, fmt.Errorf("failed to install %s: %w", d.Name(), err))
		}
	}
	return errs
}

func (p *CPU) Close() {
	for _, d := range p.peripherals {
		if cd, b := d.(peripheral.PeripheralCloser); b {
			if err := cd.Close(); err != nil {
				log.Print("Failed to close peripheral: ", err)
			}
		}
	}
}

func (p *CPU) GetStats() processor.Stats {
	s := p.stats
	p.stats = processor.Stats{}
	return s
}

// Reset clears all machine state and lets every peripheral restore
// its part of it.
func (p *CPU) Reset() {
	log.Print("CPU reset!")

	p.Registers.Reset()
	p.instructionState = instructionState{}
	p.stack.Reset()
	p.mem.Clear()
	p.fb.Clear()

	for _, d := range p.peripherals {
		d.Reset()
	}
}

func (p *CPU) InstallKeypad(k processor.Keypad) error {
	if k == nil {
		return errors.New("invalid keypad")
	}
	p.keypad = k
	return nil
}

func (p *CPU) InstallFont(f processor.Font) error {
	if f == nil {
		return errors.New("invalid font")
	}
	p.font = f
	return nil
}

func (p *CPU) GetRegisters() *processor.Registers {
	return &p.Registers
}

// GetFramebuffer gives access to the display. It must not be read
// while Step is running.
func (p *CPU) GetFramebuffer() *processor.Framebuffer {
	return &p.fb
}

func (p *CPU) StackDepth() int {
	return p.stack.Len()
}

func (p *CPU) TickTimers() {
	p.Registers.TickTimers()
}

func (p *CPU) LoadProgram(offset memory.Address, data []byte) int {
	return p.mem.Load(offset, data)
}

func (p *CPU) ReadByte(addr memory.Address) byte {
	p.stats.RX++
	data := p.mem.ReadByte(addr)
	validator.ReadByte(uint16(addr), data)
	return data
}

func (p *CPU) WriteByte(addr memory.Address, data byte) {
	p.stats.TX++
	validator.WriteByte(uint16(addr), data)
	p.mem.WriteByte(addr, data)
}
