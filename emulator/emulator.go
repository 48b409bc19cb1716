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

package emulator

import (
	"errors"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/andreas-jonsson/virtualc8/emulator/peripheral"
	"github.com/andreas-jonsson/virtualc8/emulator/peripheral/font"
	"github.com/andreas-jonsson/virtualc8/emulator/peripheral/keypad"
	"github.com/andreas-jonsson/virtualc8/emulator/peripheral/rom"
	"github.com/andreas-jonsson/virtualc8/emulator/peripheral/timer"
	"github.com/andreas-jonsson/virtualc8/emulator/peripheral/video"
	"github.com/andreas-jonsson/virtualc8/emulator/processor"
	"github.com/andreas-jonsson/virtualc8/emulator/processor/cpu"
	"github.com/andreas-jonsson/virtualc8/emulator/processor/validator"
	"github.com/andreas-jonsson/virtualc8/platform"
	"github.com/andreas-jonsson/virtualc8/platform/dialog"
)

const DefaultIPS = 700

// Falling further behind than this resets the speed limiter.
const maxLag = 100 * time.Millisecond

var (
	romImage  = ""
	limitIPS  = DefaultIPS
	traceFile = ""
	logFile   = ""

	shiftQuirk bool
)

func init() {
	if p, ok := os.LookupEnv("VC8_DEFAULT_ROM"); ok {
		romImage = p
	}

	limitIPS = lookupEnvInt("VC8_DEFAULT_IPS", limitIPS)

	flag.StringVar(&romImage, "rom", romImage, "Path to CHIP-8 program")
	flag.IntVar(&limitIPS, "ips", limitIPS, "Instructions per second (0 is unlimited)")
	flag.BoolVar(&shiftQuirk, "shift-quirk", false, "Shift instructions leave VF untouched")
	flag.StringVar(&logFile, "log", "", "Write log output to file")

	if validator.Enabled {
		flag.StringVar(&traceFile, "trace", "virtualc8.json", "Record execution trace to file")
	}
}

func lookupEnvInt(name string, def int) int {
	s, ok := os.LookupEnv(name)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Ignoring %s: %v", name, err)
		return def
	}
	return n
}

func Start(p platform.Platform) {
	if err := emuLoop(p); err != nil {
		// The terminal platform prints the message once the screen is restored.
		if !platform.IsTerminal(p) {
			log.Print(err)
		}
		dialog.ShowErrorMessage(err.Error())
	}
}

func emuLoop(pf platform.Platform) error {
	fs := pf.FileSystem()

	if logFile != "" {
		fp, err := fs.Create(logFile)
		if err != nil {
			return err
		}
		defer fp.Close()
		log.SetOutput(fp)
		defer log.SetOutput(os.Stderr)
	} else if platform.IsTerminal(pf) {
		log.SetOutput(ioutil.Discard)
		defer log.SetOutput(os.Stderr)
	}

	if romImage == "" {
		return errors.New("no program selected")
	}

	fp, err := fs.Open(romImage)
	if err != nil {
		return err
	}
	defer fp.Close()

	validator.Initialize(traceFile, validator.DefaultQueueSize, validator.DefaultBufferSize)
	defer validator.Shutdown()

	kp := &keypad.Device{}
	peripherals := []peripheral.Peripheral{
		&font.Device{}, // Needs to go before the program so it can't be overwritten.
		&rom.Device{
			RomName: filepath.Base(romImage),
			Reader:  fp,
		},
		kp,
		&timer.Device{},
		&video.Device{Renderer: pf},
	}

	p, errs := cpu.NewCPU(peripherals)
	if len(errs) > 0 {
		return errs[0]
	}
	defer p.Close()

	p.SetShiftFlagQuirk(shiftQuirk)
	p.Reset()

	pf.SetKeyboardHandler(func(k platform.Key, down bool) {
		if err := kp.SendKey(byte(k), down); err != nil {
			log.Print(err)
		}
	})
	defer pf.SetKeyboardHandler(nil)

	return runLoop(p, limitIPS)
}

func runLoop(p *cpu.CPU, ips int) error {
	var limitSpeed int64
	if ips > 0 {
		limitSpeed = int64(time.Second) / int64(ips)
	}

	var cycles int64
	t := time.Now()

	for !dialog.ShutdownRequested() {
		if dialog.RestartRequested() {
			p.Reset()
			cycles, t = 0, time.Now()
		}

		c, err := p.Step()
		if err != nil {
			if !processor.IsRecoverable(err) {
				return fmt.Errorf("execution stopped: %w", err)
			}
			log.Print(err)
		}
		if limitSpeed == 0 {
			continue
		}
		cycles += int64(c)

	wait:
		d := time.Duration(limitSpeed*cycles) - time.Since(t)
		switch {
		case d < -maxLag:
			cycles, t = 0, time.Now()
		case d > time.Millisecond:
			time.Sleep(d)
		case d > 0:
			runtime.Gosched()
			goto wait
		}
	}
	return nil
}
