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

package timer

import (
	"time"

	"github.com/andreas-jonsson/virtualc8/emulator/processor"
)

const DefaultFrequency = 60

// Device decrements the delay and sound timers at a fixed rate.
type Device struct {
	p    processor.Processor
	last time.Time

	Frequency int
	Now       func() time.Time
}

func (m *Device) Install(p processor.Processor) error {
	if m.Frequency <= 0 {
		m.Frequency = DefaultFrequency
	}
	if m.Now == nil {
		m.Now = time.Now
	}
	m.p = p
	m.last = m.Now()
	return nil
}

func (m *Device) Name() string {
	return "Delay & Sound Timer"
}

func (m *Device) Reset() {
	m.last = m.Now()
}

func (m *Device) Step(int) error {
	period := time.Second / time.Duration(m.Frequency)
	n := m.Now().Sub(m.last) / period
	if n <= 0 {
		return nil
	}
	m.last = m.last.Add(n * period)

	// Timers are 8-bit so there is no point in catching up further.
	if n > 0xFF {
		n = 0xFF
	}
	for i := time.Duration(0); i < n; i++ {
		m.p.TickTimers()
	}
	return nil
}
