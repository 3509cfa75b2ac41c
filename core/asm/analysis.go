package asm

import (
	"fmt"
	"math"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/eth2030/evmkit/core/vm"
)

// JumpDests returns the offsets of every JUMPDEST that is an instruction in
// prog. A 0x5b byte inside push data is not a jump destination.
func JumpDests(prog []PositionedInstruction) mapset.Set[int] {
	dests := mapset.NewThreadUnsafeSet[int]()
	dataEnd := 0
	for _, p := range prog {
		if p.pos < dataEnd {
			continue
		}
		if p.ins.OpCode() == vm.KnownOpCode(vm.JUMPDEST) {
			dests.Add(p.pos)
		}
		dataEnd = pushDataEnd(p)
	}
	return dests
}

// pushDataEnd returns the offset just past the data of p. For a push cut
// short by the end of the code, which disassembles as an unknown byte, the
// data still spans the immediate the opcode declares.
func pushDataEnd(p PositionedInstruction) int {
	u, ok := p.ins.(vm.Unknown)
	if !ok {
		return p.End()
	}
	m, ok := vm.LookupMnemonic(u.Byte())
	if !ok || !m.IsPush() {
		return p.End()
	}
	return p.pos + 1 + m.ImmediateSize()
}

// BasicBlock is a maximal straight-line run of instructions. It starts at
// offset 0 or at a JUMPDEST, and ends after a terminator, a jump, or right
// before the next JUMPDEST.
type BasicBlock struct {
	Start        int
	End          int
	Instructions []PositionedInstruction

	// JumpTarget is the static destination of a trailing JUMP or JUMPI fed
	// directly by a push, or -1 when there is none.
	JumpTarget int
}

// Terminal returns the last instruction of the block.
func (b *BasicBlock) Terminal() PositionedInstruction {
	return b.Instructions[len(b.Instructions)-1]
}

// FallsThrough reports whether execution can continue into the block that
// follows b in code order.
func (b *BasicBlock) FallsThrough() bool {
	op := b.Terminal().ins.OpCode()
	return !op.IsTerminator() && op != vm.KnownOpCode(vm.JUMP)
}

// BasicBlocks splits prog into basic blocks in code order. The bytes after
// a truncated push belong to its data: they extend the block the push ends
// and do not appear among its instructions.
func BasicBlocks(prog []PositionedInstruction) []*BasicBlock {
	var (
		blocks  []*BasicBlock
		cur     *BasicBlock
		dataEnd int
	)
	flush := func() {
		if cur != nil && len(cur.Instructions) > 0 {
			cur.End = cur.Terminal().End()
			cur.JumpTarget = staticTarget(cur.Instructions)
			blocks = append(blocks, cur)
		}
		cur = nil
	}
	for _, p := range prog {
		if p.pos < dataEnd && len(blocks) > 0 {
			blocks[len(blocks)-1].End = p.End()
			continue
		}
		dataEnd = pushDataEnd(p)
		op := p.ins.OpCode()
		if op == vm.KnownOpCode(vm.JUMPDEST) {
			flush()
		}
		if cur == nil {
			cur = &BasicBlock{Start: p.pos, JumpTarget: -1}
		}
		cur.Instructions = append(cur.Instructions, p)
		if op.IsTerminator() || op == vm.KnownOpCode(vm.JUMP) || op == vm.KnownOpCode(vm.JUMPI) {
			flush()
		}
	}
	flush()
	return blocks
}

func staticTarget(ins []PositionedInstruction) int {
	n := len(ins)
	if n < 2 {
		return -1
	}
	op := ins[n-1].ins.OpCode()
	if op != vm.KnownOpCode(vm.JUMP) && op != vm.KnownOpCode(vm.JUMPI) {
		return -1
	}
	push, ok := ins[n-2].ins.(vm.Push)
	if !ok {
		return -1
	}
	v := push.Value()
	if !v.IsUint64() || v.Uint64() > math.MaxInt32 {
		return -1
	}
	return int(v.Uint64())
}

// StackBounds summarises a linear stack walk.
type StackBounds struct {
	Final int
	Max   int
	Min   int
}

// ValidateStack walks prog linearly from the given initial stack depth,
// checking every instruction for underflow and overflow. Control flow is
// not followed. On error the bounds reflect the walk up to the failing
// instruction.
func ValidateStack(prog []PositionedInstruction, initialDepth int) (StackBounds, error) {
	b := StackBounds{Final: initialDepth, Max: initialDepth, Min: initialDepth}
	for _, p := range prog {
		op := p.ins.OpCode()
		if err := vm.CheckStack(op, b.Final); err != nil {
			return b, fmt.Errorf("at offset %d: %w", p.pos, err)
		}
		m, _ := op.Mnemonic()
		b.Final += m.StackRequirement().Delta
		b.Max = max(b.Max, b.Final)
		b.Min = min(b.Min, b.Final)
	}
	return b, nil
}

// Unsupported returns the instructions of prog that supports rejects.
// Unknown instructions are always included.
func Unsupported(prog []PositionedInstruction, supports func(vm.Mnemonic) bool) []PositionedInstruction {
	var out []PositionedInstruction
	for _, p := range prog {
		m, ok := p.ins.OpCode().Mnemonic()
		if !ok || !supports(m) {
			out = append(out, p)
		}
	}
	return out
}

// Stats counts instructions per opcode.
type Stats struct {
	Instructions int
	Unknown      int
	PushBytes    int
	Counts       map[vm.OpCode]int
}

// Collect gathers Stats over prog.
func Collect(prog []PositionedInstruction) Stats {
	s := Stats{Counts: make(map[vm.OpCode]int)}
	for _, p := range prog {
		op := p.ins.OpCode()
		s.Instructions++
		s.Counts[op]++
		if !op.IsKnown() {
			s.Unknown++
		}
		s.PushBytes += p.ins.ImmediateSize()
	}
	return s
}
