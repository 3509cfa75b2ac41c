// Package asm turns EVM bytecode into positioned instructions and back.
//
// Disassembly never fails: every byte of the input is covered by exactly one
// instruction. A push whose immediate runs past the end of the code is
// reported as an Unknown instruction of size one at its offset, and decoding
// resumes at the following byte.
package asm

import (
	"errors"
	"fmt"
	"io"

	"github.com/eth2030/evmkit/core/vm"
	"github.com/eth2030/evmkit/log"
)

func logger() *log.Logger { return log.Default().Module("asm") }

// PositionedInstruction pairs an instruction with its byte offset in the
// code it was decoded from.
type PositionedInstruction struct {
	pos int
	ins vm.Instruction
}

// At returns a PositionedInstruction for ins at offset pos.
func At(pos int, ins vm.Instruction) PositionedInstruction {
	return PositionedInstruction{pos: pos, ins: ins}
}

// Position returns the byte offset of the instruction.
func (p PositionedInstruction) Position() int { return p.pos }

// Instruction returns the decoded instruction.
func (p PositionedInstruction) Instruction() vm.Instruction { return p.ins }

// End returns the offset just past the instruction.
func (p PositionedInstruction) End() int { return p.pos + p.ins.Size() }

func (p PositionedInstruction) String() string {
	return fmt.Sprintf("%06x: %v", p.pos, p.ins)
}

// Iterator walks code one instruction at a time. It holds its own cursor;
// separate iterators over the same code are independent.
type Iterator struct {
	code []byte
	pc   int
	cur  PositionedInstruction
}

// NewIterator returns an iterator positioned before the first instruction of
// code. The code is not copied and must not be modified during iteration.
func NewIterator(code []byte) *Iterator {
	return &Iterator{code: code}
}

// Next advances to the next instruction. It returns false once the code is
// exhausted.
func (it *Iterator) Next() bool {
	if it.pc >= len(it.code) {
		return false
	}
	window := it.code[it.pc:]
	ins, err := vm.Decode(window)
	if err != nil {
		var lenErr *vm.UnexpectedLengthError
		if errors.As(err, &lenErr) {
			logger().Debug("Truncated immediate", "pc", it.pc, "op", vm.OpCodeFromByte(window[0]).String(),
				"have", lenErr.Got, "want", lenErr.Expected)
		} else {
			logger().Debug("Undecodable instruction", "pc", it.pc, "err", err)
		}
		ins = vm.NewUnknown(window[0])
	}
	it.cur = PositionedInstruction{pos: it.pc, ins: ins}
	it.pc += ins.Size()
	return true
}

// Instruction returns the instruction the last call to Next moved to.
func (it *Iterator) Instruction() PositionedInstruction { return it.cur }

// PC returns the offset of the next undecoded byte.
func (it *Iterator) PC() int { return it.pc }

// Disassemble decodes code into a sequence of positioned instructions that
// tiles it exactly: the first starts at 0, each next one starts where the
// previous ends, and the last ends at len(code).
func Disassemble(code []byte) []PositionedInstruction {
	out := make([]PositionedInstruction, 0, len(code)/2+1)
	it := NewIterator(code)
	for it.Next() {
		out = append(out, it.Instruction())
	}
	return out
}

// Assemble concatenates the encodings of ins.
func Assemble(ins ...vm.Instruction) []byte {
	size := 0
	for _, in := range ins {
		size += in.Size()
	}
	code := make([]byte, 0, size)
	for _, in := range ins {
		code = in.AppendTo(code)
	}
	return code
}

// Reassemble encodes a disassembled program back to bytes.
func Reassemble(prog []PositionedInstruction) []byte {
	ins := make([]vm.Instruction, len(prog))
	for i, p := range prog {
		ins[i] = p.ins
	}
	return Assemble(ins...)
}

// Format writes prog to w, one instruction per line.
func Format(w io.Writer, prog []PositionedInstruction) error {
	for _, p := range prog {
		if _, err := fmt.Fprintln(w, p); err != nil {
			return err
		}
	}
	return nil
}
