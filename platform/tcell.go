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
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/andreas-jonsson/virtualc8/platform/dialog"
	"github.com/gdamore/tcell"
	"github.com/spf13/afero"
)

// Terminals never report key releases so they are synthesized.
const defaultReleaseDelay = 100 * time.Millisecond

type tcellPlatform struct {
	sync.Mutex

	backBuffer [BackBufferSize]byte
	screen     tcell.Screen
	fileSystem afero.Fs
	title      string

	releaseDelay    time.Duration
	keyboardHandler func(Key, bool)
}

var tcellPlatformInstance tcellPlatform

func newTcellPlatform(s tcell.Screen, fs afero.Fs) *tcellPlatform {
	return &tcellPlatform{
		screen:       s,
		fileSystem:   fs,
		releaseDelay: defaultReleaseDelay,
	}
}

func tcellStart(mainLoop func(Platform), configs ...Config) {
	tcell.SetEncodingFallback(tcell.EncodingFallbackASCII)

	s, err := tcell.NewScreen()
	if err != nil {
		log.Fatal(err)
	}
	if err := runTcell(s, afero.NewOsFs(), os.Stderr, mainLoop, configs...); err != nil {
		log.Fatal(err)
	}
}

// runTcell owns the screen until mainLoop returns. Error messages shown
// meanwhile are written to msgOut once the screen is restored.
func runTcell(s tcell.Screen, fs afero.Fs, msgOut io.Writer, mainLoop func(Platform), configs ...Config) error {
	tcellPlatformInstance = *newTcellPlatform(s, fs)
	p := &tcellPlatformInstance

	for _, cfg := range configs {
		if err := cfg(p); err != nil {
			return err
		}
	}

	Instance = p

	if err := s.Init(); err != nil {
		return err
	}

	defer dialog.HoldMessages(msgOut)()
	defer s.Fini()

	s.HideCursor()
	s.DisableMouse()
	s.Clear()

	if err := p.initializeTcellEvents(); err != nil {
		return err
	}
	mainLoop(Instance)
	return nil
}

func (p *tcellPlatform) FileSystem() afero.Fs {
	return p.fileSystem
}

func (p *tcellPlatform) RenderGraphics(backBuffer []byte) {
	p.Lock()
	copy(p.backBuffer[:], backBuffer)
	p.Unlock()
	p.screen.PostEvent(tcell.NewEventInterrupt(&p.backBuffer))
}

func (p *tcellPlatform) SetTitle(title string) {
	p.Lock()
	p.title = title
	p.Unlock()
}

func (p *tcellPlatform) SetKeyboardHandler(h func(Key, bool)) {
	p.Lock()
	p.keyboardHandler = h
	p.Unlock()
}

// IsTerminal reports if p draws to a text terminal.
func IsTerminal(p Platform) bool {
	_, ok := p.(*tcellPlatform)
	return ok
}
