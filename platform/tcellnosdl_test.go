//go:build !js && !sdl
// +build !js,!sdl

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
	"bytes"
	"strings"
	"testing"

	"github.com/andreas-jonsson/virtualc8/platform/dialog"
	"github.com/gdamore/tcell"
	"github.com/spf13/afero"
)

type finiScreen struct {
	tcell.SimulationScreen
	out           *bytes.Buffer
	writtenAtFini int
}

func (s *finiScreen) Fini() {
	s.writtenAtFini = s.out.Len()
	s.SimulationScreen.Fini()
}

func TestTcellErrorMessage(t *testing.T) {
	var out bytes.Buffer
	s := &finiScreen{SimulationScreen: tcell.NewSimulationScreen(""), out: &out}

	const msg = "execution stopped: invalid opcode: 0x0123"
	err := runTcell(s, afero.NewMemMapFs(), &out, func(p Platform) {
		if !IsTerminal(p) {
			t.Error("expected the terminal platform")
		}
		dialog.ShowErrorMessage(msg)
	})
	if err != nil {
		t.Fatal(err)
	}

	if s.writtenAtFini != 0 {
		t.Error("message written while the screen was active")
	}
	if !strings.Contains(out.String(), msg) {
		t.Errorf("message not written after the screen was restored: %q", out.String())
	}
}

func TestTcellMenu(t *testing.T) {
	p, s := newTestPlatform(t)
	defer s.Fini()

	dialog.RestartRequested()
	if !p.handleEvent(tcell.NewEventKey(tcell.KeyF12, 0, tcell.ModNone)) {
		t.Fatal("menu key should not stop the event loop")
	}
	if !dialog.RestartRequested() {
		t.Error("menu key should reset the machine")
	}
	if !dialog.MainMenuWasOpen() {
		t.Error("menu flag not set")
	}
}
