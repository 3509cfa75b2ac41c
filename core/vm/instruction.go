package vm

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

// Instruction is a single decoded EVM instruction. The set of implementations
// is closed: Fixed, Push, Dup, Swap, Log and Unknown. All of them are small
// comparable values, so two instructions can be compared with ==.
type Instruction interface {
	// OpCode returns the opcode the instruction encodes to.
	OpCode() OpCode
	// ImmediateSize returns the number of immediate bytes after the opcode.
	ImmediateSize() int
	// Size returns the encoded length, always ImmediateSize()+1.
	Size() int
	// Immediate returns a copy of the immediate bytes.
	Immediate() []byte
	// Assemble returns the canonical encoding of the instruction.
	Assemble() []byte
	// AppendTo appends the encoding of the instruction to dst.
	AppendTo(dst []byte) []byte
	String() string

	decode(code []byte) (Instruction, error)
}

// checkWindow verifies that code holds at least size bytes and starts with op.
func checkWindow(code []byte, op OpCode, size int) error {
	if len(code) < size {
		return &UnexpectedLengthError{Got: len(code), Expected: size}
	}
	if code[0] != op.Byte() {
		return &UnexpectedOpcodeError{Got: OpCodeFromByte(code[0]), Expected: op}
	}
	return nil
}

// Fixed is an instruction without immediates that is not part of a
// parameterized family, e.g. ADD or JUMPDEST. The zero value is STOP.
type Fixed struct {
	m Mnemonic
}

// NewFixed returns the fixed instruction for m. Family members (PUSHn, DUPn,
// SWAPn, LOGn) and undefined mnemonics are rejected.
func NewFixed(m Mnemonic) (Fixed, error) {
	if !m.Valid() {
		return Fixed{}, fmt.Errorf("%w: 0x%02x", ErrUndefinedMnemonic, byte(m))
	}
	if _, family := m.FamilyIndex(); family {
		return Fixed{}, fmt.Errorf("%w: %s", ErrNotFixed, m)
	}
	return Fixed{m: m}, nil
}

// MustFixed is like NewFixed but panics on error.
func MustFixed(m Mnemonic) Fixed {
	f, err := NewFixed(m)
	if err != nil {
		panic(err)
	}
	return f
}

func (f Fixed) Mnemonic() Mnemonic         { return f.m }
func (f Fixed) OpCode() OpCode             { return KnownOpCode(f.m) }
func (f Fixed) ImmediateSize() int         { return 0 }
func (f Fixed) Size() int                  { return 1 }
func (f Fixed) Immediate() []byte          { return nil }
func (f Fixed) Assemble() []byte           { return f.AppendTo(make([]byte, 0, 1)) }
func (f Fixed) AppendTo(dst []byte) []byte { return append(dst, byte(f.m)) }
func (f Fixed) String() string             { return f.m.String() }

// Decode decodes f from the start of code.
func (f Fixed) Decode(code []byte) (Fixed, error) {
	if err := checkWindow(code, f.OpCode(), 1); err != nil {
		return Fixed{}, err
	}
	return f, nil
}

func (f Fixed) decode(code []byte) (Instruction, error) {
	out, err := f.Decode(code)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Push is PUSHn: the opcode followed by n immediate bytes, 0 <= n <= 32.
// PUSH0 carries an empty immediate. The zero value is PUSH0.
type Push struct {
	n   uint8
	imm [32]byte // only imm[:n] is used; the rest stays zero
}

// NewPush returns PUSHn carrying imm, which must be exactly n bytes long.
func NewPush(n int, imm []byte) (Push, error) {
	if err := checkFamilyIndex("PUSH", n, 0, 32); err != nil {
		return Push{}, err
	}
	if len(imm) != n {
		return Push{}, fmt.Errorf("%w: PUSH%d takes %d bytes, got %d", ErrImmediateSize, n, n, len(imm))
	}
	p := Push{n: uint8(n)}
	copy(p.imm[:], imm)
	return p, nil
}

// MustPush returns the push instruction whose immediate is imm. It panics if
// imm is longer than 32 bytes.
func MustPush(imm ...byte) Push {
	p, err := NewPush(len(imm), imm)
	if err != nil {
		panic(err)
	}
	return p
}

// PushValue returns the shortest push instruction that places v on the
// stack. Zero is encoded as PUSH0.
func PushValue(v *uint256.Int) Push {
	b := v.Bytes()
	p := Push{n: uint8(len(b))}
	copy(p.imm[:], b)
	return p
}

// N returns the immediate size of the push.
func (p Push) N() int { return int(p.n) }

// Value interprets the immediate as a big-endian 256-bit word.
func (p Push) Value() *uint256.Int {
	return new(uint256.Int).SetBytes(p.imm[:p.n])
}

func (p Push) OpCode() OpCode     { return KnownOpCode(PUSH0 + Mnemonic(p.n)) }
func (p Push) ImmediateSize() int { return int(p.n) }
func (p Push) Size() int          { return int(p.n) + 1 }

func (p Push) Immediate() []byte {
	out := make([]byte, p.n)
	copy(out, p.imm[:p.n])
	return out
}

func (p Push) Assemble() []byte { return p.AppendTo(make([]byte, 0, p.Size())) }

func (p Push) AppendTo(dst []byte) []byte {
	dst = append(dst, byte(PUSH0)+p.n)
	return append(dst, p.imm[:p.n]...)
}

func (p Push) String() string {
	if p.n == 0 {
		return PUSH0.String()
	}
	return fmt.Sprintf("%s %s", PUSH0+Mnemonic(p.n), hexutil.Encode(p.imm[:p.n]))
}

// Decode decodes a PUSHn with the receiver's n from the start of code,
// copying the immediate bytes.
func (p Push) Decode(code []byte) (Push, error) {
	size := p.Size()
	if err := checkWindow(code, p.OpCode(), size); err != nil {
		return Push{}, err
	}
	out := Push{n: p.n}
	copy(out.imm[:], code[1:size])
	return out, nil
}

func (p Push) decode(code []byte) (Instruction, error) {
	out, err := p.Decode(code)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Dup is DUPn, 1 <= n <= 16. The zero value is DUP1.
type Dup struct {
	idx uint8 // n-1
}

// NewDup returns DUPn.
func NewDup(n int) (Dup, error) {
	if err := checkFamilyIndex("DUP", n, 1, 16); err != nil {
		return Dup{}, err
	}
	return Dup{idx: uint8(n - 1)}, nil
}

func (d Dup) N() int                     { return int(d.idx) + 1 }
func (d Dup) OpCode() OpCode             { return KnownOpCode(DUP1 + Mnemonic(d.idx)) }
func (d Dup) ImmediateSize() int         { return 0 }
func (d Dup) Size() int                  { return 1 }
func (d Dup) Immediate() []byte          { return nil }
func (d Dup) Assemble() []byte           { return d.AppendTo(make([]byte, 0, 1)) }
func (d Dup) AppendTo(dst []byte) []byte { return append(dst, byte(DUP1)+d.idx) }
func (d Dup) String() string             { return (DUP1 + Mnemonic(d.idx)).String() }

// Decode decodes a DUPn with the receiver's n from the start of code.
func (d Dup) Decode(code []byte) (Dup, error) {
	if err := checkWindow(code, d.OpCode(), 1); err != nil {
		return Dup{}, err
	}
	return d, nil
}

func (d Dup) decode(code []byte) (Instruction, error) {
	out, err := d.Decode(code)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Swap is SWAPn, 1 <= n <= 16. The zero value is SWAP1.
type Swap struct {
	idx uint8 // n-1
}

// NewSwap returns SWAPn.
func NewSwap(n int) (Swap, error) {
	if err := checkFamilyIndex("SWAP", n, 1, 16); err != nil {
		return Swap{}, err
	}
	return Swap{idx: uint8(n - 1)}, nil
}

func (s Swap) N() int                     { return int(s.idx) + 1 }
func (s Swap) OpCode() OpCode             { return KnownOpCode(SWAP1 + Mnemonic(s.idx)) }
func (s Swap) ImmediateSize() int         { return 0 }
func (s Swap) Size() int                  { return 1 }
func (s Swap) Immediate() []byte          { return nil }
func (s Swap) Assemble() []byte           { return s.AppendTo(make([]byte, 0, 1)) }
func (s Swap) AppendTo(dst []byte) []byte { return append(dst, byte(SWAP1)+s.idx) }
func (s Swap) String() string             { return (SWAP1 + Mnemonic(s.idx)).String() }

// Decode decodes a SWAPn with the receiver's n from the start of code.
func (s Swap) Decode(code []byte) (Swap, error) {
	if err := checkWindow(code, s.OpCode(), 1); err != nil {
		return Swap{}, err
	}
	return s, nil
}

func (s Swap) decode(code []byte) (Instruction, error) {
	out, err := s.Decode(code)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Log is LOGn, 0 <= n <= 4, where n is the number of topics. The zero value
// is LOG0.
type Log struct {
	n uint8
}

// NewLog returns LOGn.
func NewLog(n int) (Log, error) {
	if err := checkFamilyIndex("LOG", n, 0, 4); err != nil {
		return Log{}, err
	}
	return Log{n: uint8(n)}, nil
}

func (l Log) N() int                     { return int(l.n) }
func (l Log) OpCode() OpCode             { return KnownOpCode(LOG0 + Mnemonic(l.n)) }
func (l Log) ImmediateSize() int         { return 0 }
func (l Log) Size() int                  { return 1 }
func (l Log) Immediate() []byte          { return nil }
func (l Log) Assemble() []byte           { return l.AppendTo(make([]byte, 0, 1)) }
func (l Log) AppendTo(dst []byte) []byte { return append(dst, byte(LOG0)+l.n) }
func (l Log) String() string             { return (LOG0 + Mnemonic(l.n)).String() }

// Decode decodes a LOGn with the receiver's n from the start of code.
func (l Log) Decode(code []byte) (Log, error) {
	if err := checkWindow(code, l.OpCode(), 1); err != nil {
		return Log{}, err
	}
	return l, nil
}

func (l Log) decode(code []byte) (Instruction, error) {
	out, err := l.Decode(code)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Unknown wraps a byte that could not be decoded as an instruction. It is
// always one byte long and its opcode is always tagged unknown.
type Unknown struct {
	b byte
}

// NewUnknown wraps b.
func NewUnknown(b byte) Unknown { return Unknown{b: b} }

func (u Unknown) Byte() byte                 { return u.b }
func (u Unknown) OpCode() OpCode             { return UnknownOpCode(u.b) }
func (u Unknown) ImmediateSize() int         { return 0 }
func (u Unknown) Size() int                  { return 1 }
func (u Unknown) Immediate() []byte          { return nil }
func (u Unknown) Assemble() []byte           { return u.AppendTo(make([]byte, 0, 1)) }
func (u Unknown) AppendTo(dst []byte) []byte { return append(dst, u.b) }
func (u Unknown) String() string             { return fmt.Sprintf("opcode 0x%02x", u.b) }

// Decode wraps the first byte of code, whatever it is. It fails only on an
// empty window.
func (u Unknown) Decode(code []byte) (Unknown, error) {
	if len(code) == 0 {
		return Unknown{}, &UnexpectedLengthError{Got: 0, Expected: 1}
	}
	return Unknown{b: code[0]}, nil
}

func (u Unknown) decode(code []byte) (Instruction, error) {
	out, err := u.Decode(code)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Template returns the instruction that decodes op, with a zeroed immediate
// for pushes. Unknown opcodes map to Unknown.
func Template(op OpCode) Instruction {
	m, ok := op.Mnemonic()
	if !ok {
		return Unknown{b: op.Byte()}
	}
	switch {
	case m.IsPush():
		return Push{n: uint8(m - PUSH0)}
	case m.IsDup():
		return Dup{idx: uint8(m - DUP1)}
	case m.IsSwap():
		return Swap{idx: uint8(m - SWAP1)}
	case m.IsLog():
		return Log{n: uint8(m - LOG0)}
	}
	return Fixed{m: m}
}

// Decode decodes the instruction at the start of code, selecting its type
// from the leading byte. Unmapped bytes decode as Unknown. The only errors
// are an empty window and a push whose immediate runs past the end of code.
func Decode(code []byte) (Instruction, error) {
	if len(code) == 0 {
		return nil, &UnexpectedLengthError{Got: 0, Expected: 1}
	}
	return Template(OpCodeFromByte(code[0])).decode(code)
}
