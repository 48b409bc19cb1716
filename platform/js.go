//go:build js
// +build js

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
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"syscall/js"

	"github.com/spf13/afero"
)

type jsPlatform struct {
	canvas, context js.Value
	fileSystem      afero.Fs

	keyboardHandler func(Key, bool)
}

var jsPlatformInstance jsPlatform

func ConfigWithWindowSize(w, h int) Config {
	return func(p internalPlatform) error {
		if jp, ok := p.(*jsPlatform); ok && !jp.canvas.IsUndefined() {
			style := jp.canvas.Get("style")
			style.Set("width", strconv.Itoa(w)+"px")
			style.Set("height", strconv.Itoa(h)+"px")
		}
		return nil
	}
}

func ConfigWithFullscreen(p internalPlatform) error {
	return nil
}

func IsTerminal(Platform) bool {
	return false
}

func Start(mainLoop func(Platform), configs ...Config) {
	p := &jsPlatformInstance
	p.fileSystem = &downloadFs{Fs: afero.NewMemMapFs()}

	document := js.Global().Get("document")
	canvas := document.Call("getElementById", "virtualc8-canvas")
	if canvas.IsNull() {
		log.Fatal("Could not find \"virtualc8-canvas\"")
	}
	p.canvas = canvas

	canvas.Call("setAttribute", "width", strconv.Itoa(ScreenWidth))
	canvas.Call("setAttribute", "height", strconv.Itoa(ScreenHeight))
	canvas.Set("imageSmoothingEnabled", false)

	style := canvas.Get("style")
	style.Set("width", "640px")
	style.Set("height", "320px")
	style.Set("image-rendering", "pixelated")

	for _, cfg := range configs {
		if err := cfg(p); err != nil {
			log.Fatal(err)
		}
	}

	p.context = canvas.Call("getContext", "2d")

	keyHandler := func(down bool) js.Func {
		return js.FuncOf(func(_ js.Value, e []js.Value) interface{} {
			a := e[0]
			if h := p.keyboardHandler; h != nil && !a.Get("repeat").Bool() {
				if k := toKey(a.Get("key").String()); k != KeyInvalid {
					a.Call("preventDefault")
					h(k, down)
				}
			}
			return nil
		})
	}
	document.Set("onkeydown", keyHandler(true))
	document.Set("onkeyup", keyHandler(false))

	Instance = p
	mainLoop(Instance)
}

// downloadFs fetches files missing from the in-memory file system
// from the server that hosts the page.
type downloadFs struct {
	afero.Fs
}

func (fs *downloadFs) download(name string) error {
	resp, err := http.Get(name)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := fs.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return err
	}

	fp, err := fs.Create(name)
	if err != nil {
		return err
	}
	defer fp.Close()

	_, err = io.Copy(fp, resp.Body)
	return err
}

func (fs *downloadFs) Open(name string) (afero.File, error) {
	if fp, err := fs.Fs.Open(name); err == nil {
		return fp, nil
	}
	if err := fs.download(name); err != nil {
		return nil, err
	}
	return fs.Fs.Open(name)
}

func (fs *downloadFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if fp, err := fs.Fs.OpenFile(name, flag, perm); err == nil {
		return fp, nil
	}
	if err := fs.download(name); err != nil {
		return nil, err
	}
	return fs.Fs.OpenFile(name, flag, perm)
}

func (p *jsPlatform) FileSystem() afero.Fs {
	return p.fileSystem
}

func (p *jsPlatform) RenderGraphics(backBuffer []byte) {
	img := p.context.Call("getImageData", 0, 0, ScreenWidth, ScreenHeight)
	data := img.Get("data")

	js.CopyBytesToJS(data, backBuffer)
	p.context.Call("putImageData", img, 0, 0)
}

func (p *jsPlatform) SetTitle(title string) {
	js.Global().Get("document").Set("title", title)
}

func (p *jsPlatform) SetKeyboardHandler(h func(Key, bool)) {
	p.keyboardHandler = h
}

func toKey(key string) Key {
	r := []rune(key)
	if len(r) != 1 {
		return KeyInvalid
	}
	return keyFromRune(r[0])
}
