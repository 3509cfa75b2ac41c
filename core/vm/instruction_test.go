package vm

import (
	"bytes"
	"errors"
	"testing"

	"github.com/holiman/uint256"
)

// allInstructions returns one instance of every instruction kind, with
// distinct immediates for pushes.
func allInstructions() []Instruction {
	var out []Instruction
	for _, m := range Mnemonics() {
		if _, family := m.FamilyIndex(); !family {
			out = append(out, MustFixed(m))
		}
	}
	for n := 0; n <= 32; n++ {
		imm := make([]byte, n)
		for i := range imm {
			imm[i] = byte(n*7 + i)
		}
		p, err := NewPush(n, imm)
		if err != nil {
			panic(err)
		}
		out = append(out, p)
	}
	for n := 1; n <= 16; n++ {
		d, _ := NewDup(n)
		s, _ := NewSwap(n)
		out = append(out, d, s)
	}
	for n := 0; n <= 4; n++ {
		l, _ := NewLog(n)
		out = append(out, l)
	}
	for i := 0; i < 256; i++ {
		if _, ok := LookupMnemonic(byte(i)); !ok {
			out = append(out, NewUnknown(byte(i)))
		}
	}
	return out
}

func TestInstructionRoundTrip(t *testing.T) {
	for _, ins := range allInstructions() {
		code := ins.Assemble()
		if len(code) != ins.Size() {
			t.Errorf("%v: assembled %d bytes, Size() = %d", ins, len(code), ins.Size())
		}
		if ins.Size() != ins.ImmediateSize()+1 {
			t.Errorf("%v: Size() = %d, ImmediateSize() = %d", ins, ins.Size(), ins.ImmediateSize())
		}
		if code[0] != ins.OpCode().Byte() {
			t.Errorf("%v: first byte 0x%02x, opcode 0x%02x", ins, code[0], ins.OpCode().Byte())
		}
		got, err := Decode(code)
		if err != nil {
			t.Errorf("Decode(%x): %v", code, err)
			continue
		}
		if got != ins {
			t.Errorf("Decode(Assemble(%v)) = %v", ins, got)
		}
	}
}

func TestTypedDecodeRoundTrip(t *testing.T) {
	for _, ins := range allInstructions() {
		code := ins.Assemble()
		got, err := Template(ins.OpCode()).decode(code)
		if err != nil {
			t.Fatalf("%v: %v", ins, err)
		}
		if got != ins {
			t.Errorf("typed decode of %v = %v", ins, got)
		}
	}
}

func TestPushAssemble(t *testing.T) {
	p, err := NewPush(2, []byte{0x0a, 0x0b})
	if err != nil {
		t.Fatal(err)
	}
	code := p.Assemble()
	if want := []byte{0x61, 0x0a, 0x0b}; !bytes.Equal(code, want) {
		t.Fatalf("Assemble() = %x, want %x", code, want)
	}
	got, err := Push{n: 2}.Decode(code)
	if err != nil {
		t.Fatal(err)
	}
	if got != p {
		t.Errorf("Decode = %v, want %v", got, p)
	}
	if s := got.String(); s != "PUSH2 0x0a0b" {
		t.Errorf("String() = %q", s)
	}
	if got.Value().Uint64() != 0x0a0b {
		t.Errorf("Value() = %v", got.Value())
	}
}

func TestPush0(t *testing.T) {
	var p Push
	if p.OpCode() != KnownOpCode(PUSH0) {
		t.Errorf("zero Push opcode = %v", p.OpCode())
	}
	if p.Size() != 1 || p.ImmediateSize() != 0 {
		t.Errorf("PUSH0 size = %d/%d", p.Size(), p.ImmediateSize())
	}
	if !bytes.Equal(p.Assemble(), []byte{0x5f}) {
		t.Errorf("PUSH0 assembles to %x", p.Assemble())
	}
	if len(p.Immediate()) != 0 {
		t.Error("PUSH0 immediate should be empty")
	}
	// PUSH1 0x00 pushes the same number but is a different instruction.
	if MustPush(0x00) == p {
		t.Error("PUSH1 0x00 should differ from PUSH0")
	}
}

func TestPushValue(t *testing.T) {
	tests := []struct {
		v    *uint256.Int
		want []byte
	}{
		{uint256.NewInt(0), []byte{0x5f}},
		{uint256.NewInt(1), []byte{0x60, 0x01}},
		{uint256.NewInt(0x100), []byte{0x61, 0x01, 0x00}},
		{new(uint256.Int).SetAllOne(), append([]byte{0x7f}, bytes.Repeat([]byte{0xff}, 32)...)},
	}
	for _, tt := range tests {
		p := PushValue(tt.v)
		if got := p.Assemble(); !bytes.Equal(got, tt.want) {
			t.Errorf("PushValue(%v) = %x, want %x", tt.v, got, tt.want)
		}
		if !p.Value().Eq(tt.v) {
			t.Errorf("PushValue(%v).Value() = %v", tt.v, p.Value())
		}
	}
}

func TestPushImmediateIsCopied(t *testing.T) {
	code := []byte{0x60, 0xaa}
	p, err := Push{n: 1}.Decode(code)
	if err != nil {
		t.Fatal(err)
	}
	code[1] = 0xbb
	if imm := p.Immediate(); imm[0] != 0xaa {
		t.Errorf("decoded push aliases source buffer: %x", imm)
	}
	imm := p.Immediate()
	imm[0] = 0xcc
	if p.Immediate()[0] != 0xaa {
		t.Error("Immediate() exposes internal storage")
	}
}

func TestDecodeErrors(t *testing.T) {
	var lenErr *UnexpectedLengthError
	_, err := Decode(nil)
	if !errors.As(err, &lenErr) || lenErr.Got != 0 || lenErr.Expected != 1 {
		t.Errorf("Decode(nil) = %v, want UnexpectedLength{0,1}", err)
	}

	_, err = Push{n: 4}.Decode([]byte{0x63, 0x01})
	if !errors.As(err, &lenErr) || lenErr.Got != 2 || lenErr.Expected != 5 {
		t.Errorf("short PUSH4 = %v, want UnexpectedLength{2,5}", err)
	}
	if !errors.Is(err, ErrUnexpectedLength) {
		t.Errorf("errors.Is(%v, ErrUnexpectedLength) = false", err)
	}

	var opErr *UnexpectedOpcodeError
	_, err = MustFixed(ADD).Decode([]byte{0x02})
	if !errors.As(err, &opErr) || opErr.Got != KnownOpCode(MUL) || opErr.Expected != KnownOpCode(ADD) {
		t.Errorf("ADD.Decode(MUL) = %v", err)
	}
	if !errors.Is(err, ErrUnexpectedOpcode) {
		t.Errorf("errors.Is(%v, ErrUnexpectedOpcode) = false", err)
	}

	d3, _ := NewDup(3)
	if _, err := d3.Decode([]byte{0x81}); !errors.Is(err, ErrUnexpectedOpcode) {
		t.Errorf("DUP3.Decode(DUP2) = %v", err)
	}
	// Length is checked before the opcode.
	if _, err := d3.Decode(nil); !errors.Is(err, ErrUnexpectedLength) {
		t.Errorf("DUP3.Decode(nil) = %v", err)
	}
}

func TestUnknownDecode(t *testing.T) {
	for i := 0; i < 256; i++ {
		u, err := Unknown{}.Decode([]byte{byte(i), 0xff})
		if err != nil {
			t.Fatalf("Unknown.Decode(0x%02x): %v", i, err)
		}
		if u.Byte() != byte(i) || u.OpCode() != UnknownOpCode(byte(i)) {
			t.Errorf("Unknown.Decode(0x%02x) = %v", i, u)
		}
	}
	if _, err := (Unknown{}).Decode(nil); !errors.Is(err, ErrUnexpectedLength) {
		t.Errorf("Unknown.Decode(nil) = %v", err)
	}
}

func TestFamilyConstruction(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"PUSH-1", func() error { _, err := NewPush(-1, nil); return err }()},
		{"PUSH33", func() error { _, err := NewPush(33, make([]byte, 33)); return err }()},
		{"DUP0", func() error { _, err := NewDup(0); return err }()},
		{"DUP17", func() error { _, err := NewDup(17); return err }()},
		{"SWAP0", func() error { _, err := NewSwap(0); return err }()},
		{"SWAP17", func() error { _, err := NewSwap(17); return err }()},
		{"LOG5", func() error { _, err := NewLog(5); return err }()},
	}
	for _, tt := range tests {
		if !errors.Is(tt.err, ErrInvalidFamilyIndex) {
			t.Errorf("%s: err = %v, want ErrInvalidFamilyIndex", tt.name, tt.err)
		}
	}

	var idxErr *InvalidFamilyIndexError
	if _, err := NewDup(17); !errors.As(err, &idxErr) || idxErr.Family != "DUP" || idxErr.Max != 16 {
		t.Errorf("NewDup(17) = %v", err)
	}
	if _, err := NewPush(2, []byte{1}); !errors.Is(err, ErrImmediateSize) {
		t.Errorf("NewPush(2, 1 byte) = %v, want ErrImmediateSize", err)
	}
	if _, err := NewFixed(PUSH1); !errors.Is(err, ErrNotFixed) {
		t.Errorf("NewFixed(PUSH1) = %v, want ErrNotFixed", err)
	}
	if _, err := NewFixed(Mnemonic(0x0c)); !errors.Is(err, ErrUndefinedMnemonic) {
		t.Errorf("NewFixed(0x0c) = %v, want ErrUndefinedMnemonic", err)
	}
}

func TestMustPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustPush with 33 bytes should panic")
		}
	}()
	MustPush(make([]byte, 33)...)
}

func TestFamilyOpcodes(t *testing.T) {
	for n := 1; n <= 16; n++ {
		d, _ := NewDup(n)
		if d.N() != n || d.OpCode() != KnownOpCode(DUP1+Mnemonic(n-1)) {
			t.Errorf("DUP%d = %v", n, d)
		}
		s, _ := NewSwap(n)
		if s.N() != n || s.OpCode() != KnownOpCode(SWAP1+Mnemonic(n-1)) {
			t.Errorf("SWAP%d = %v", n, s)
		}
	}
	for n := 0; n <= 4; n++ {
		l, _ := NewLog(n)
		if l.N() != n || l.String() != (LOG0+Mnemonic(n)).String() {
			t.Errorf("LOG%d = %v", n, l)
		}
	}
	if (Dup{}).String() != "DUP1" || (Swap{}).String() != "SWAP1" || (Log{}).String() != "LOG0" {
		t.Error("zero values should be DUP1, SWAP1, LOG0")
	}
}

func TestTemplate(t *testing.T) {
	tests := []struct {
		op   OpCode
		want Instruction
	}{
		{KnownOpCode(ADD), MustFixed(ADD)},
		{KnownOpCode(PUSH3), Push{n: 3}},
		{KnownOpCode(DUP16), Dup{idx: 15}},
		{KnownOpCode(SWAP2), Swap{idx: 1}},
		{KnownOpCode(LOG4), Log{n: 4}},
		{UnknownOpCode(0xef), NewUnknown(0xef)},
		{UnknownOpCode(0x01), NewUnknown(0x01)},
	}
	for _, tt := range tests {
		if got := Template(tt.op); got != tt.want {
			t.Errorf("Template(%v) = %v, want %v", tt.op, got, tt.want)
		}
	}
}

func TestAppendTo(t *testing.T) {
	var code []byte
	code = MustPush(0x01).AppendTo(code)
	code = MustFixed(ADD).AppendTo(code)
	code = Dup{}.AppendTo(code)
	if want := []byte{0x60, 0x01, 0x01, 0x80}; !bytes.Equal(code, want) {
		t.Errorf("AppendTo chain = %x, want %x", code, want)
	}
}
