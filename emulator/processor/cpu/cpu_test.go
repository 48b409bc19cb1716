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

package cpu

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/andreas-jonsson/virtualc8/emulator/memory"
	"github.com/andreas-jonsson/virtualc8/emulator/peripheral"
	"github.com/andreas-jonsson/virtualc8/emulator/processor"
)

func assemble(program ...uint16) []byte {
	bin := make([]byte, 0, len(program)*2)
	for _, w := range program {
		bin = append(bin, byte(w>>8), byte(w))
	}
	return bin
}

func newTestCPU(t *testing.T, program ...uint16) *CPU {
	p, errs := NewCPU(nil)
	for _, err := range errs {
		t.Error(err)
	}
	p.LoadProgram(memory.ProgramStart, assemble(program...))
	return p
}

func runSteps(t *testing.T, p *CPU, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if _, err := p.Step(); err != nil {
			t.Fatal(err)
		}
	}
}

func expectError(t *testing.T, p *CPU, target error) *InstructionError {
	t.Helper()
	_, err := p.Step()
	if !errors.Is(err, target) {
		t.Fatalf("expected %v, got %v", target, err)
	}
	var ie *InstructionError
	if !errors.As(err, &ie) {
		t.Fatalf("error is not an InstructionError: %v", err)
	}
	return ie
}

type fakeKeypad struct {
	down [16]bool
}

func (k *fakeKeypad) IsKeyDown(key byte) bool {
	return k.down[key&0xF]
}

func (k *fakeKeypad) PressedKey() (byte, bool) {
	for i, d := range k.down {
		if d {
			return byte(i), true
		}
	}
	return 0, false
}

type fakeFont struct{}

func (fakeFont) GlyphAddress(digit byte) memory.Address {
	return memory.FontStart + memory.Address(digit)*5
}

type countingDevice struct {
	installed     bool
	steps, resets int
}

func (d *countingDevice) Install(processor.Processor) error {
	d.installed = true
	return nil
}

func (d *countingDevice) Name() string {
	return "Counter"
}

func (d *countingDevice) Reset() {
	d.resets++
}

func (d *countingDevice) Step(int) error {
	d.steps++
	return nil
}

func TestInitialState(t *testing.T) {
	p := newTestCPU(t)
	if p.PC != 0x200 || p.I != 0 || p.DT != 0 || p.ST != 0 || p.StackDepth() != 0 {
		t.Errorf("unexpected initial state:\n%v", p.GetRegisters())
	}
	for i, v := range p.V {
		if v != 0 {
			t.Errorf("V%X = %d", i, v)
		}
	}
}

func TestClearScreenProgram(t *testing.T) {
	p, _ := NewCPU(nil)
	if n := p.LoadProgram(0x200, []byte{0x00, 0xE0}); n != 2 {
		t.Fatalf("loaded %d bytes", n)
	}

	fb := p.GetFramebuffer()
	for y := 0; y < processor.ScreenHeight; y++ {
		for x := 0; x < processor.ScreenWidth; x++ {
			fb.SetPixel(x, y, true)
		}
	}

	runSteps(t, p, 1)
	for i, px := range fb.Pixels() {
		if px {
			t.Fatalf("pixel %d still lit", i)
		}
	}
	if p.PC != 0x202 {
		t.Errorf("PC = 0x%X", p.PC)
	}
}

func TestJump(t *testing.T) {
	p := newTestCPU(t, 0x1234)
	p.LoadProgram(0x234, assemble(0x6042))

	runSteps(t, p, 1)
	if p.PC != 0x234 {
		t.Fatalf("PC = 0x%X after jump", p.PC)
	}
	runSteps(t, p, 1)
	if p.V[0] != 0x42 {
		t.Error("instruction at jump target was not executed")
	}
}

func TestJumpOffset(t *testing.T) {
	p := newTestCPU(t, 0x6010, 0xB300)
	runSteps(t, p, 2)
	if p.PC != 0x310 {
		t.Errorf("PC = 0x%X", p.PC)
	}

	p = newTestCPU(t, 0x60FF, 0xBFFF)
	runSteps(t, p, 2)
	if p.PC != 0x0FE {
		t.Errorf("PC = 0x%X, should wrap to 0x0FE", p.PC)
	}
}

func TestCallReturn(t *testing.T) {
	p := newTestCPU(t, 0x2300, 0x6001)
	p.LoadProgram(0x300, assemble(0x00EE))

	runSteps(t, p, 1)
	if p.PC != 0x300 || p.StackDepth() != 1 {
		t.Fatalf("after call: PC 0x%X depth %d", p.PC, p.StackDepth())
	}
	runSteps(t, p, 1)
	if p.PC != 0x202 || p.StackDepth() != 0 {
		t.Fatalf("after return: PC 0x%X depth %d", p.PC, p.StackDepth())
	}
	runSteps(t, p, 1)
	if p.V[0] != 1 {
		t.Error("instruction after call was not executed")
	}
}

func TestStackErrors(t *testing.T) {
	t.Run("Underflow", func(t *testing.T) {
		p := newTestCPU(t, 0x00EE, 0x6007)
		ie := expectError(t, p, processor.ErrStackUnderflow)
		if !processor.IsRecoverable(ie) {
			t.Error("underflow should be recoverable")
		}
		if ie.Addr != 0x200 {
			t.Errorf("error address %v", ie.Addr)
		}
		if p.PC != 0x202 {
			t.Errorf("PC = 0x%X", p.PC)
		}

		// Execution continues with the next instruction.
		runSteps(t, p, 1)
		if p.V[0] != 7 {
			t.Error("execution did not continue")
		}
	})

	t.Run("Overflow", func(t *testing.T) {
		p := newTestCPU(t, 0x2200)
		runSteps(t, p, processor.StackSize)

		ie := expectError(t, p, processor.ErrStackOverflow)
		if processor.IsRecoverable(ie) {
			t.Error("overflow should be fatal")
		}
		if p.StackDepth() != processor.StackSize {
			t.Errorf("depth = %d", p.StackDepth())
		}
	})
}

func TestSkip(t *testing.T) {
	cases := []struct {
		name  string
		word  uint16
		vx    byte
		vy    byte
		skips bool
	}{
		{"SE imm taken", 0x3142, 0x42, 0, true},
		{"SE imm not taken", 0x3142, 0x41, 0, false},
		{"SNE imm taken", 0x4142, 0x41, 0, true},
		{"SNE imm not taken", 0x4142, 0x42, 0, false},
		{"SE reg taken", 0x5120, 9, 9, true},
		{"SE reg not taken", 0x5120, 9, 8, false},
		{"SNE reg taken", 0x9120, 9, 8, true},
		{"SNE reg not taken", 0x9120, 9, 9, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := newTestCPU(t, c.word)
			p.V[1], p.V[2] = c.vx, c.vy
			runSteps(t, p, 1)

			want := uint16(0x202)
			if c.skips {
				want = 0x204
			}
			if p.PC != want {
				t.Errorf("PC = 0x%X, want 0x%X", p.PC, want)
			}
		})
	}
}

func TestLoadAndAddImmediate(t *testing.T) {
	p := newTestCPU(t, 0x60FF, 0x7002, 0x6F05, 0x7F01)
	runSteps(t, p, 2)
	if p.V[0] != 0x01 {
		t.Errorf("V0 = 0x%X, add should wrap", p.V[0])
	}
	if p.V[0xF] != 0 {
		t.Error("7xnn must not touch VF")
	}
	runSteps(t, p, 2)
	if p.V[0xF] != 6 {
		t.Errorf("VF = %d", p.V[0xF])
	}
}

func TestLogic(t *testing.T) {
	cases := []struct {
		word uint16
		want byte
	}{
		{0x8120, 0x0C},
		{0x8121, 0x0C | 0x0A},
		{0x8122, 0x0C & 0x0A},
		{0x8123, 0x0C ^ 0x0A},
	}
	for _, c := range cases {
		p := newTestCPU(t, c.word)
		p.V[1], p.V[2] = 0x0A, 0x0C
		p.V[0xF] = 0x55
		runSteps(t, p, 1)
		if p.V[1] != c.want {
			t.Errorf("0x%04X: V1 = 0x%X, want 0x%X", c.word, p.V[1], c.want)
		}
		if p.V[0xF] != 0x55 {
			t.Errorf("0x%04X: VF changed", c.word)
		}
	}
}

func TestArithmetic(t *testing.T) {
	p := newTestCPU(t)

	exec := func(t *testing.T, word uint16, a, b byte) {
		p.LoadProgram(0x200, assemble(word))
		p.PC = 0x200
		p.V[1], p.V[2] = a, b
		runSteps(t, p, 1)
	}

	t.Run("Add", func(t *testing.T) {
		for a := 0; a < 0x100; a++ {
			for b := 0; b < 0x100; b++ {
				exec(t, 0x8124, byte(a), byte(b))
				if p.V[1] != byte((a+b)%256) {
					t.Fatalf("%d + %d = %d", a, b, p.V[1])
				}
				if want := b2b(a+b > 255); p.V[0xF] != want {
					t.Fatalf("%d + %d: VF = %d", a, b, p.V[0xF])
				}
			}
		}
	})

	t.Run("Sub", func(t *testing.T) {
		for a := 0; a < 0x100; a++ {
			for b := 0; b < 0x100; b++ {
				exec(t, 0x8125, byte(a), byte(b))
				if p.V[1] != byte((a-b+256)%256) {
					t.Fatalf("%d - %d = %d", a, b, p.V[1])
				}
				if want := b2b(a >= b); p.V[0xF] != want {
					t.Fatalf("%d - %d: VF = %d", a, b, p.V[0xF])
				}
			}
		}
	})

	t.Run("SubReverse", func(t *testing.T) {
		for a := 0; a < 0x100; a++ {
			for b := 0; b < 0x100; b++ {
				exec(t, 0x8127, byte(a), byte(b))
				if p.V[1] != byte((b-a+256)%256) {
					t.Fatalf("%d - %d = %d", b, a, p.V[1])
				}
				if want := b2b(b >= a); p.V[0xF] != want {
					t.Fatalf("%d - %d: VF = %d", b, a, p.V[0xF])
				}
			}
		}
	})

	t.Run("FlagWins", func(t *testing.T) {
		p := newTestCPU(t, 0x8F14)
		p.V[0xF], p.V[1] = 0xFF, 0x01
		runSteps(t, p, 1)
		if p.V[0xF] != 1 {
			t.Errorf("VF = %d, carry flag should overwrite the sum", p.V[0xF])
		}
	})
}

func TestShift(t *testing.T) {
	cases := []struct {
		name     string
		word     uint16
		vy       byte
		wantX    byte
		wantFlag byte
	}{
		{"ShrOut1", 0x8126, 0x81, 0x40, 1},
		{"ShrOut0", 0x8126, 0x80, 0x40, 0},
		{"ShlOut1", 0x812E, 0x81, 0x02, 1},
		{"ShlOut0", 0x812E, 0x41, 0x82, 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := newTestCPU(t, c.word)
			p.V[1], p.V[2] = 0xAA, c.vy
			runSteps(t, p, 1)
			if p.V[1] != c.wantX {
				t.Errorf("V1 = 0x%X, want 0x%X", p.V[1], c.wantX)
			}
			if p.V[2] != c.vy {
				t.Error("source register modified")
			}
			if p.V[0xF] != c.wantFlag {
				t.Errorf("VF = %d, want %d", p.V[0xF], c.wantFlag)
			}
		})
	}

	t.Run("Quirk", func(t *testing.T) {
		p := newTestCPU(t, 0x8126, 0x812E)
		p.SetShiftFlagQuirk(true)
		p.V[2] = 0xFF
		p.V[0xF] = 0x55
		runSteps(t, p, 2)
		if p.V[0xF] != 0x55 {
			t.Errorf("VF = 0x%X, should be untouched", p.V[0xF])
		}
		if p.V[1] != 0xFE {
			t.Errorf("V1 = 0x%X", p.V[1])
		}
	})
}

func TestIndex(t *testing.T) {
	p := newTestCPU(t, 0xAFFF, 0x6002, 0xF01E)
	runSteps(t, p, 3)
	if p.I != 0x1001 {
		t.Errorf("I = 0x%X", p.I)
	}
	if p.V[0xF] != 0 {
		t.Error("Fx1E must not touch VF")
	}
}

func TestRandom(t *testing.T) {
	p := newTestCPU(t, 0xC100, 0xC20F)
	p.SetRandomSource(rand.NewSource(1))
	p.V[1] = 0xFF
	runSteps(t, p, 2)
	if p.V[1] != 0 {
		t.Errorf("V1 = 0x%X, mask 0 should yield 0", p.V[1])
	}

	ref := rand.New(rand.NewSource(1))
	ref.Intn(0x100)
	if want := byte(ref.Intn(0x100)) & 0x0F; p.V[2] != want {
		t.Errorf("V2 = 0x%X, want 0x%X", p.V[2], want)
	}
}

func TestDraw(t *testing.T) {
	p := newTestCPU(t, 0xA300, 0x6005, 0x6103, 0xD015, 0xD015)
	p.LoadProgram(0x300, []byte{0xF0, 0x90, 0x90, 0x90, 0xF0})
	fb := p.GetFramebuffer()

	runSteps(t, p, 4)
	if p.V[0xF] != 0 {
		t.Error("collision on empty screen")
	}
	for _, pt := range [][2]int{{5, 3}, {8, 3}, {5, 5}, {8, 7}} {
		if !fb.Pixel(pt[0], pt[1]) {
			t.Errorf("pixel %v not lit", pt)
		}
	}
	if fb.Pixel(6, 5) {
		t.Error("hole in glyph is lit")
	}

	runSteps(t, p, 1)
	if p.V[0xF] != 1 {
		t.Error("no collision when erasing sprite")
	}
	for i, px := range fb.Pixels() {
		if px {
			t.Fatalf("pixel %d still lit after redraw", i)
		}
	}

	t.Run("OriginWraps", func(t *testing.T) {
		p := newTestCPU(t, 0xA300, 0x6045, 0x6123, 0xD011)
		p.LoadProgram(0x300, []byte{0x80})
		runSteps(t, p, 4)
		if !p.GetFramebuffer().Pixel(5, 3) {
			t.Error("origin did not wrap")
		}
	})
}

func TestTimers(t *testing.T) {
	p := newTestCPU(t, 0x6A20, 0xFA15, 0xFA18, 0xFB07)
	runSteps(t, p, 3)
	if p.DT != 0x20 || p.ST != 0x20 {
		t.Fatalf("DT=%d ST=%d", p.DT, p.ST)
	}

	p.TickTimers()
	runSteps(t, p, 1)
	if p.V[0xB] != 0x1F {
		t.Errorf("VB = 0x%X", p.V[0xB])
	}
	if p.ST != 0x1F {
		t.Errorf("ST = 0x%X", p.ST)
	}
}

func TestBCD(t *testing.T) {
	cases := map[byte][3]byte{
		234: {2, 3, 4},
		255: {2, 5, 5},
		100: {1, 0, 0},
		7:   {0, 0, 7},
		0:   {0, 0, 0},
	}
	for v, want := range cases {
		p := newTestCPU(t, 0xA400, 0xF033)
		p.V[0] = v
		runSteps(t, p, 2)

		got := [3]byte{p.mem.ReadByte(0x400), p.mem.ReadByte(0x401), p.mem.ReadByte(0x402)}
		if got != want {
			t.Errorf("BCD(%d) = %v, want %v", v, got, want)
		}
		if p.I != 0x400 {
			t.Error("I modified")
		}
	}
}

func TestStoreLoadRegisters(t *testing.T) {
	p := newTestCPU(t, 0xA500, 0xF355, 0xF365)
	for i := range p.V {
		p.V[i] = byte(0x10 + i)
	}
	p.mem.WriteByte(0x504, 0xEE)

	runSteps(t, p, 2)
	for i := 0; i <= 3; i++ {
		if b := p.mem.ReadByte(memory.Address(0x500 + i)); b != byte(0x10+i) {
			t.Errorf("mem[0x%X] = 0x%X", 0x500+i, b)
		}
	}
	if p.mem.ReadByte(0x504) != 0xEE {
		t.Error("store went past Vx")
	}

	for i := range p.V {
		p.V[i] = 0
	}
	runSteps(t, p, 1)
	for i := 0; i <= 3; i++ {
		if p.V[i] != byte(0x10+i) {
			t.Errorf("V%X = 0x%X", i, p.V[i])
		}
	}
	if p.V[4] != 0 {
		t.Error("load went past Vx")
	}
	if p.I != 0x500 {
		t.Errorf("I = 0x%X", p.I)
	}
}

func TestIndexWraps(t *testing.T) {
	p := newTestCPU(t, 0xAFFF, 0xF155)
	p.V[0], p.V[1] = 0x11, 0x22
	runSteps(t, p, 2)
	if p.mem.ReadByte(0xFFF) != 0x11 || p.mem.ReadByte(0x000) != 0x22 {
		t.Error("store did not wrap around the address space")
	}
}

func TestNotSupported(t *testing.T) {
	for _, word := range []uint16{0xE09E, 0xE0A1, 0xF00A, 0xF029} {
		p := newTestCPU(t, word)
		ie := expectError(t, p, processor.ErrNotSupported)
		if processor.IsRecoverable(ie) {
			t.Errorf("0x%04X: should not be recoverable", word)
		}
	}
}

func TestKeypad(t *testing.T) {
	kp := &fakeKeypad{}

	t.Run("Skip", func(t *testing.T) {
		p := newTestCPU(t, 0x6105, 0xE19E, 0x0000, 0xE1A1)
		if err := p.InstallKeypad(kp); err != nil {
			t.Fatal(err)
		}
		kp.down[5] = true
		runSteps(t, p, 2)
		if p.PC != 0x206 {
			t.Fatalf("PC = 0x%X, SKP should have skipped", p.PC)
		}
		runSteps(t, p, 1)
		if p.PC != 0x208 {
			t.Errorf("PC = 0x%X, SKNP should not have skipped", p.PC)
		}
		kp.down[5] = false
	})

	t.Run("Wait", func(t *testing.T) {
		p := newTestCPU(t, 0xF30A)
		p.InstallKeypad(kp)

		runSteps(t, p, 3)
		if p.PC != 0x200 {
			t.Fatalf("PC = 0x%X, should wait for key", p.PC)
		}

		kp.down[0xC] = true
		runSteps(t, p, 1)
		if p.PC != 0x202 || p.V[3] != 0xC {
			t.Errorf("PC = 0x%X V3 = 0x%X", p.PC, p.V[3])
		}
	})
}

func TestFont(t *testing.T) {
	p := newTestCPU(t, 0x6A0A, 0xFA29, 0x601F, 0xF029)
	if err := p.InstallFont(fakeFont{}); err != nil {
		t.Fatal(err)
	}
	runSteps(t, p, 2)
	if p.I != 0x050+50 {
		t.Errorf("I = 0x%X", p.I)
	}
	runSteps(t, p, 2)
	if p.I != 0x050+75 {
		t.Errorf("I = 0x%X, digit should be masked to the low nibble", p.I)
	}
}

func TestInvalidOpcode(t *testing.T) {
	p := newTestCPU(t, 0x0123)
	ie := expectError(t, p, processor.ErrInvalidOpcode)
	if ie.Instruction.Word != 0x0123 || ie.Instruction.NNN != 0x123 {
		t.Errorf("unexpected instruction in error: %+v", ie.Instruction)
	}
	if msg := ie.Error(); !strings.Contains(msg, "0x0123") || !strings.Contains(msg, "nnn: 123") {
		t.Errorf("diagnostic lacks opcode fields: %s", msg)
	}
}

func TestPeripherals(t *testing.T) {
	dev := &countingDevice{}
	p, errs := NewCPU([]peripheral.Peripheral{dev})
	if len(errs) != 0 {
		t.Fatal(errs)
	}
	if !dev.installed {
		t.Fatal("device not installed")
	}

	p.LoadProgram(0x200, assemble(0x1200))
	runSteps(t, p, 3)
	if dev.steps != 3 {
		t.Errorf("device stepped %d times", dev.steps)
	}

	p.V[1] = 1
	p.Reset()
	if dev.resets != 1 {
		t.Errorf("device reset %d times", dev.resets)
	}
	if p.V[1] != 0 || p.PC != 0x200 {
		t.Error("registers not reset")
	}
	if p.mem.ReadWord(0x200) != 0 {
		t.Error("memory not cleared")
	}

	if s := p.GetStats(); s.NumInstructions != 3 {
		t.Errorf("stats: %+v", s)
	}
	if s := p.GetStats(); s.NumInstructions != 0 {
		t.Error("stats not cleared")
	}

	t.Run("RecoverableError", func(t *testing.T) {
		dev.steps = 0
		p.LoadProgram(0x200, assemble(0x00EE))
		if _, err := p.Step(); !processor.IsRecoverable(err) {
			t.Fatalf("unexpected error: %v", err)
		}
		if dev.steps != 1 {
			t.Errorf("device stepped %d times after a recoverable error", dev.steps)
		}
	})

	t.Run("FatalError", func(t *testing.T) {
		dev.steps = 0
		p.Reset()
		p.LoadProgram(0x200, assemble(0x0123))
		if _, err := p.Step(); err == nil || processor.IsRecoverable(err) {
			t.Fatalf("unexpected error: %v", err)
		}
		if dev.steps != 0 {
			t.Errorf("device stepped %d times after a fatal error", dev.steps)
		}
	})
}

func BenchmarkStep(b *testing.B) {
	p, _ := NewCPU(nil)
	p.LoadProgram(0x200, assemble(0x6001, 0x7101, 0x8014, 0x1200))
	for i := 0; i < b.N; i++ {
		if _, err := p.Step(); err != nil {
			b.Fatal(err)
		}
	}
}
