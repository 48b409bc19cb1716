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

package rom

import (
	"errors"
	"io"
	"io/ioutil"
	"log"

	"github.com/andreas-jonsson/virtualc8/emulator/memory"
	"github.com/andreas-jonsson/virtualc8/emulator/processor"
)

// Device holds a program image and copies it into memory on every reset.
type Device struct {
	p   processor.Processor
	mem []byte

	Base    memory.Address
	RomName string
	Reader  io.Reader
}

func (m *Device) Install(p processor.Processor) error {
	if m.Reader == nil {
		return errors.New("no ROM reader")
	}

	var err error
	if m.mem, err = ioutil.ReadAll(m.Reader); err != nil {
		return err
	}
	if m.RomName == "" {
		m.RomName = "ROM"
	}
	if m.Base == 0 {
		m.Base = memory.ProgramStart
	}

	m.p = p
	m.load()
	return nil
}

func (m *Device) load() {
	if n := m.p.LoadProgram(m.Base, m.mem); n < len(m.mem) {
		log.Printf("%s is truncated! Loaded %d of %d bytes at %v.", m.RomName, n, len(m.mem), m.Base)
	}
}

func (m *Device) Size() int {
	return len(m.mem)
}

func (m *Device) Name() string {
	return m.RomName
}

func (m *Device) Reset() {
	m.load()
}

func (m *Device) Step(int) error {
	return nil
}
