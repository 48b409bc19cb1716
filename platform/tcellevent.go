//go:build !js
// +build !js

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

package platform

import (
	"log"
	"os"
	"time"

	"github.com/andreas-jonsson/virtualc8/platform/dialog"
	"github.com/gdamore/tcell"
)

const upperHalfBlock = '▀'

func (p *tcellPlatform) initializeTcellEvents() error {
	go func() {
		for {
			ev := p.screen.PollEvent()
			if ev == nil {
				return
			}
			if !p.handleEvent(ev) {
				go func() {
					time.Sleep(3 * time.Second)
					os.Exit(-1)
				}()
				return
			}
		}
	}()
	return nil
}

func (p *tcellPlatform) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			dialog.Quit()
			return false
		case tcell.KeyF12:
			if err := dialog.MainMenu(); err != nil {
				log.Print(err)
			}
			return true
		}
		p.pushKeyEvent(ev)
	case *tcell.EventResize:
		p.screen.Sync()
	case *tcell.EventInterrupt:
		if data, ok := ev.Data().(*[BackBufferSize]byte); ok {
			p.drawFrame(data)
		}
	}
	return true
}

// drawFrame packs two pixel rows into every terminal cell. The upper
// pixel is the foreground of a half block and the lower one its background.
func (p *tcellPlatform) drawFrame(data *[BackBufferSize]byte) {
	p.Lock()
	defer p.Unlock()

	s := p.screen
	for y := 0; y < ScreenHeight/2; y++ {
		for x := 0; x < ScreenWidth; x++ {
			style := tcell.StyleDefault.
				Foreground(pixelColor(data, x, y*2)).
				Background(pixelColor(data, x, y*2+1))
			s.SetContent(x, y, upperHalfBlock, nil, style)
		}
	}

	for x := 0; x < ScreenWidth; x++ {
		r := ' '
		if x < len(p.title) {
			r = rune(p.title[x])
		}
		s.SetContent(x, ScreenHeight/2, r, nil, tcell.StyleDefault)
	}
	s.Show()
}

func pixelColor(data *[BackBufferSize]byte, x, y int) tcell.Color {
	offset := (y*ScreenWidth + x) * 4
	return tcell.NewRGBColor(int32(data[offset]), int32(data[offset+1]), int32(data[offset+2]))
}

func (p *tcellPlatform) pushKeyEvent(ev *tcell.EventKey) {
	if ev.Key() != tcell.KeyRune {
		return
	}

	key := keyFromRune(ev.Rune())
	if key == KeyInvalid {
		return
	}

	p.Lock()
	defer p.Unlock()

	if p.keyboardHandler == nil {
		return
	}
	p.keyboardHandler(key, true)

	time.AfterFunc(p.releaseDelay, func() {
		p.Lock()
		defer p.Unlock()
		if p.keyboardHandler != nil {
			p.keyboardHandler(key, false)
		}
	})
}
