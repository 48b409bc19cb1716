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

package video

import (
	"errors"
	"fmt"
	"image/color"
	"time"

	"github.com/andreas-jonsson/virtualc8/emulator/processor"
	"github.com/andreas-jonsson/virtualc8/platform"
	"github.com/andreas-jonsson/virtualc8/platform/dialog"
)

const (
	frameRate   = 60
	titlePeriod = time.Second
	hintPeriod  = 10 * time.Second

	menuHint = " (Press F12 for menu)"
)

var (
	DefaultForeground = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	DefaultBackground = color.RGBA{0x00, 0x00, 0x00, 0xFF}
)

type Renderer interface {
	RenderGraphics(backBuffer []byte)
	SetTitle(title string)
}

type Device struct {
	p          processor.Processor
	backBuffer [platform.BackBufferSize]byte
	generation uint64

	lastFrame, lastTitle time.Time
	installed            time.Time
	menuSeen             bool

	Title                  string
	Renderer               Renderer
	Foreground, Background color.RGBA
	Now                    func() time.Time
}

func (m *Device) Install(p processor.Processor) error {
	if m.Renderer == nil {
		if platform.Instance == nil {
			return errors.New("no renderer")
		}
		m.Renderer = platform.Instance
	}
	if m.Now == nil {
		m.Now = time.Now
	}
	if m.Foreground == (color.RGBA{}) {
		m.Foreground = DefaultForeground
	}
	if m.Background == (color.RGBA{}) {
		m.Background = DefaultBackground
	}
	if m.Title == "" {
		m.Title = "VirtualC8"
	}
	m.p = p
	m.installed = m.Now()
	m.Reset()
	return nil
}

func (m *Device) Name() string {
	return "Display"
}

func (m *Device) Reset() {
	now := m.Now()
	m.lastFrame = now
	m.lastTitle = now
	m.generation = ^uint64(0)
	m.p.GetStats()
}

func (m *Device) Step(int) error {
	now := m.Now()

	if d := now.Sub(m.lastTitle); d >= titlePeriod {
		stats := m.p.GetStats()
		sec := d.Seconds()

		hlp := menuHint
		if m.menuSeen = m.menuSeen || dialog.MainMenuWasOpen(); m.menuSeen || now.Sub(m.installed) > hintPeriod {
			hlp = ""
		}
		m.Renderer.SetTitle(fmt.Sprintf("%s - %.0f IPS, %.0f DPS, R/W %.0f/%.0f B/s%s",
			m.Title, float64(stats.NumInstructions)/sec, float64(stats.NumDraws)/sec,
			float64(stats.RX)/sec, float64(stats.TX)/sec, hlp))
		m.lastTitle = now
	}

	if now.Sub(m.lastFrame) < time.Second/frameRate {
		return nil
	}
	m.lastFrame = now

	fb := m.p.GetFramebuffer()
	if gen := fb.Generation(); gen != m.generation {
		m.generation = gen
		m.blit(fb)
		m.Renderer.RenderGraphics(m.backBuffer[:])
	}
	return nil
}

func (m *Device) blit(fb *processor.Framebuffer) {
	for i, px := range fb.Pixels() {
		c := m.Background
		if px {
			c = m.Foreground
		}
		offset := i * 4
		m.backBuffer[offset] = c.R
		m.backBuffer[offset+1] = c.G
		m.backBuffer[offset+2] = c.B
		m.backBuffer[offset+3] = c.A
	}
}
