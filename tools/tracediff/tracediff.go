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

package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/andreas-jonsson/virtualc8/emulator/processor/validator"
)

var (
	traceInput = "virtualc8.json"
	refInput   = "reference.json"
	maxReport  = 10
	matchMode  = "all"
)

func init() {
	flag.StringVar(&traceInput, "trace", traceInput, "Trace recorded with the validator build tag")
	flag.StringVar(&refInput, "reference", refInput, "Trace from the reference interpreter")
	flag.IntVar(&maxReport, "max", maxReport, "Stop after this many mismatches")
	flag.StringVar(&matchMode, "match", matchMode, "Comparison: all, location or registers")
}

type comparer func(a, b *validator.Event) bool

var comparers = map[string]comparer{
	"all":       equalAll,
	"location":  equalOpcodeAndLocation,
	"registers": equalRegisters,
}

func main() {
	flag.Parse()
	log.SetFlags(0)

	cmp, ok := comparers[matchMode]
	if !ok {
		log.Fatal("invalid match mode: ", matchMode)
	}

	traceFp, err := os.Open(traceInput)
	if err != nil {
		log.Fatal(err)
	}
	defer traceFp.Close()

	refFp, err := os.Open(refInput)
	if err != nil {
		log.Fatal(err)
	}
	defer refFp.Close()

	res, err := compare(traceFp, refFp, cmp, maxReport)
	if err != nil {
		log.Fatal(err)
	}
	for _, m := range res.Mismatches {
		log.Print(m)
	}
	log.Printf("Compared: %d, Equal: %d", res.NumCompared, res.NumEqual)

	if len(res.Mismatches) > 0 {
		os.Exit(1)
	}
}

type result struct {
	NumCompared, NumEqual int
	Mismatches            []string
}

// compare walks both traces in lockstep until one of them ends.
func compare(trace, ref io.Reader, cmp comparer, max int) (result, error) {
	var res result
	traceDec := json.NewDecoder(trace)
	refDec := json.NewDecoder(ref)

	for len(res.Mismatches) < max {
		var a, b validator.Event
		if err := traceDec.Decode(&a); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return res, err
		}
		if err := refDec.Decode(&b); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return res, err
		}

		res.NumCompared++
		if cmp(&a, &b) {
			res.NumEqual++
			continue
		}
		res.Mismatches = append(res.Mismatches, describe(res.NumCompared-1, &a, &b))
	}
	return res, nil
}

func describe(index int, a, b *validator.Event) string {
	return fmt.Sprintf("#%d at 0x%03X: opcode 0x%04X/0x%04X\n  got:  %v\n  want: %v",
		index, a.Location(), a.Opcode, b.Opcode, &a.Regs[1], &b.Regs[1])
}

func equalAll(a, b *validator.Event) bool {
	return *a == *b
}

func equalOpcodeAndLocation(a, b *validator.Event) bool {
	return a.Opcode == b.Opcode && a.Location() == b.Location()
}

func equalRegisters(a, b *validator.Event) bool {
	return equalOpcodeAndLocation(a, b) && a.Regs[1] == b.Regs[1]
}
