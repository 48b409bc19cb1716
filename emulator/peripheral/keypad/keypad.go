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

package keypad

import (
	"errors"

	"github.com/andreas-jonsson/virtualc8/emulator/processor"
)

const (
	MaxEvents = 64
	NumKeys   = 16
)

type keyEvent struct {
	key  byte
	down bool
}

// Device is the hexadecimal keypad. Key events may be sent from any
// goroutine and are applied between instructions.
type Device struct {
	state    [NumKeys]bool
	released int
	events   chan keyEvent
}

func (m *Device) Install(p processor.Processor) error {
	m.events = make(chan keyEvent, MaxEvents)
	m.released = -1
	return p.InstallKeypad(m)
}

func (m *Device) Name() string {
	return "Hexadecimal Keypad"
}

func (m *Device) Reset() {
	m.state = [NumKeys]bool{}
	m.released = -1
	for {
		select {
		case <-m.events:
		default:
			return
		}
	}
}

func (m *Device) pushEvent(ev keyEvent) error {
	select {
	case m.events <- ev:
		return nil
	default:
		return errors.New("event queue is full")
	}
}

// SendKey queues a key press or release.
func (m *Device) SendKey(key byte, down bool) error {
	if key >= NumKeys {
		return errors.New("invalid key")
	}
	return m.pushEvent(keyEvent{key, down})
}

// Step applies queued events. A release is only visible to the
// instruction that follows it.
func (m *Device) Step(int) error {
	m.released = -1
	for {
		select {
		case ev := <-m.events:
			if m.state[ev.key] && !ev.down {
				m.released = int(ev.key)
			}
			m.state[ev.key] = ev.down
		default:
			return nil
		}
	}
}

func (m *Device) IsKeyDown(key byte) bool {
	return m.state[key&0xF]
}

// PressedKey reports a key that was pressed and then released.
func (m *Device) PressedKey() (byte, bool) {
	if m.released < 0 {
		return 0, false
	}
	key := byte(m.released)
	m.released = -1
	return key, true
}
