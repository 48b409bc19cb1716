//go:build validator
// +build validator

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

package validator

import (
	"bufio"
	"encoding/json"
	"log"
	"math"
	"os"

	"github.com/andreas-jonsson/virtualc8/emulator/processor"
)

const Enabled = true

var outputFile string

var (
	inScope      bool
	currentEvent Event
	outputChan   chan Event
	quitChan     chan struct{}

	mayRead, mayWrite bool
)

// Initialize starts recording one JSON event per executed instruction to output.
func Initialize(output string, queueSize, bufferSize int) {
	if outputFile = output; output == "" {
		return
	}

	outputChan = make(chan Event, queueSize)
	quitChan = make(chan struct{})

	fp, err := os.Create(outputFile)
	if err != nil {
		log.Panic(err)
	}

	go func() {
		buffer := bufio.NewWriterSize(fp, bufferSize)

		defer fp.Close()
		defer func() {
			if err := buffer.Flush(); err != nil {
				log.Print(err)
			}
			quitChan <- struct{}{}
		}()

		enc := json.NewEncoder(buffer)
		for ev := range outputChan {
			if err := enc.Encode(ev); err != nil {
				log.Print(err)
				return
			}
		}
	}()
}

// Begin opens the event for one instruction. Memory operations the
// instruction is not expected to perform are logged.
func Begin(opcode uint16, regs processor.Registers, read, write bool) {
	if outputFile == "" {
		return
	}

	inScope = true
	mayRead, mayWrite = read, write
	currentEvent = newEvent(opcode, regs)
}

func End(regs processor.Registers) {
	if !inScope {
		return
	}

	inScope = false
	currentEvent.Regs[1] = regs
	outputChan <- currentEvent
}

func Discard() {
	inScope = false
}

func pushMemOp(ops *[MaxMemOps]MemOp, addr uint16, data byte) {
	for i, op := range ops {
		if op.Addr == math.MaxUint32 {
			ops[i] = MemOp{uint32(addr), data}
			return
		}
	}
	log.Panic("Max memory operations!")
}

func ReadByte(addr uint16, data byte) {
	if inScope {
		if !mayRead {
			log.Printf("Unexpected memory read at 0x%03X by opcode 0x%04X", addr, currentEvent.Opcode)
		}
		pushMemOp(&currentEvent.Reads, addr, data)
	}
}

func WriteByte(addr uint16, data byte) {
	if inScope {
		if !mayWrite {
			log.Printf("Unexpected memory write at 0x%03X by opcode 0x%04X", addr, currentEvent.Opcode)
		}
		pushMemOp(&currentEvent.Writes, addr, data)
	}
}

func Shutdown() {
	if outputFile == "" {
		return
	}
	close(outputChan)
	<-quitChan
}
