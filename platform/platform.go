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
	"github.com/spf13/afero"
)

const (
	ScreenWidth    = 64
	ScreenHeight   = 32
	BackBufferSize = ScreenWidth * ScreenHeight * 4
)

type internalPlatform interface{}

type Config func(internalPlatform) error

type Platform interface {
	FileSystem() afero.Fs

	// RenderGraphics presents a RGBA back buffer of BackBufferSize bytes.
	RenderGraphics(backBuffer []byte)
	SetTitle(title string)
	SetKeyboardHandler(h func(key Key, down bool))
}

var Instance Platform

// Key is one of the 16 keys on the hexadecimal keypad.
type Key byte

const KeyInvalid Key = 0xFF

const (
	Key0 Key = iota
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
)

// The keypad is mapped to the left side of a QWERTY keyboard.
//
//	1 2 3 C    1 2 3 4
//	4 5 6 D    Q W E R
//	7 8 9 E    A S D F
//	A 0 B F    Z X C V
var keyLayout = map[rune]Key{
	'1': Key1, '2': Key2, '3': Key3, '4': KeyC,
	'q': Key4, 'w': Key5, 'e': Key6, 'r': KeyD,
	'a': Key7, 's': Key8, 'd': Key9, 'f': KeyE,
	'z': KeyA, 'x': Key0, 'c': KeyB, 'v': KeyF,
}

func keyFromRune(r rune) Key {
	if r >= 'A' && r <= 'Z' {
		r += 'a' - 'A'
	}
	if k, ok := keyLayout[r]; ok {
		return k
	}
	return KeyInvalid
}
