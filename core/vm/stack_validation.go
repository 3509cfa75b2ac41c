package vm

// stack_validation.go holds per-mnemonic stack requirements and the depth
// check used by static stack analysis of disassembled code.

import (
	"errors"
	"fmt"
)

// StackLimit is the maximum number of items on the EVM stack.
const StackLimit = 1024

// Stack validation errors.
var (
	ErrStackUnderflow   = errors.New("stack validation: underflow")
	ErrStackOverflow    = errors.New("stack validation: overflow")
	ErrStackUndefinedOp = errors.New("stack validation: undefined opcode")
)

// StackRequirement describes the stack effect of a single operation: how
// many items it pops, how many it pushes, and the net delta.
type StackRequirement struct {
	Pops   int
	Pushes int
	Delta  int
}

var stackRequirements [256]StackRequirement

func init() {
	reg := func(m Mnemonic, pops, pushes int) {
		stackRequirements[m] = StackRequirement{
			Pops:   pops,
			Pushes: pushes,
			Delta:  pushes - pops,
		}
	}

	reg(STOP, 0, 0)

	// Arithmetic
	for _, m := range []Mnemonic{ADD, MUL, SUB, DIV, SDIV, MOD, SMOD, EXP, SIGNEXTEND} {
		reg(m, 2, 1)
	}
	reg(ADDMOD, 3, 1)
	reg(MULMOD, 3, 1)

	// Comparison and bitwise
	for _, m := range []Mnemonic{LT, GT, SLT, SGT, EQ, AND, OR, XOR, BYTE, SHL, SHR, SAR} {
		reg(m, 2, 1)
	}
	reg(ISZERO, 1, 1)
	reg(NOT, 1, 1)

	reg(KECCAK256, 2, 1)

	// Environment
	for _, m := range []Mnemonic{ADDRESS, ORIGIN, CALLER, CALLVALUE, CALLDATASIZE, CODESIZE, GASPRICE, RETURNDATASIZE} {
		reg(m, 0, 1)
	}
	for _, m := range []Mnemonic{BALANCE, CALLDATALOAD, EXTCODESIZE, EXTCODEHASH} {
		reg(m, 1, 1)
	}
	reg(CALLDATACOPY, 3, 0)
	reg(CODECOPY, 3, 0)
	reg(RETURNDATACOPY, 3, 0)
	reg(EXTCODECOPY, 4, 0)

	// Block
	for _, m := range []Mnemonic{COINBASE, TIMESTAMP, NUMBER, PREVRANDAO, GASLIMIT, CHAINID, SELFBALANCE, BASEFEE, BLOBBASEFEE} {
		reg(m, 0, 1)
	}
	reg(BLOCKHASH, 1, 1)
	reg(BLOBHASH, 1, 1)

	// Stack, memory, storage, flow
	reg(POP, 1, 0)
	reg(MLOAD, 1, 1)
	reg(MSTORE, 2, 0)
	reg(MSTORE8, 2, 0)
	reg(SLOAD, 1, 1)
	reg(SSTORE, 2, 0)
	reg(JUMP, 1, 0)
	reg(JUMPI, 2, 0)
	reg(PC, 0, 1)
	reg(MSIZE, 0, 1)
	reg(GAS, 0, 1)
	reg(JUMPDEST, 0, 0)
	reg(TLOAD, 1, 1)
	reg(TSTORE, 2, 0)
	reg(MCOPY, 3, 0)

	for m := PUSH0; m <= PUSH32; m++ {
		reg(m, 0, 1)
	}
	// DUPn peeks n items and pushes a copy.
	for i := 1; i <= 16; i++ {
		reg(DUP1+Mnemonic(i-1), i, i+1)
	}
	// SWAPn touches n+1 items.
	for i := 1; i <= 16; i++ {
		reg(SWAP1+Mnemonic(i-1), i+1, i+1)
	}
	for i := 0; i <= 4; i++ {
		reg(LOG0+Mnemonic(i), 2+i, 0)
	}

	reg(CREATE, 3, 1)
	reg(CALL, 7, 1)
	reg(CALLCODE, 7, 1)
	reg(RETURN, 2, 0)
	reg(DELEGATECALL, 6, 1)
	reg(CREATE2, 4, 1)
	reg(STATICCALL, 6, 1)
	reg(REVERT, 2, 0)
	reg(INVALID, 0, 0)
	reg(SELFDESTRUCT, 1, 0)
}

// StackRequirement returns the stack effect of m. Undefined mnemonics report
// the zero requirement.
func (m Mnemonic) StackRequirement() StackRequirement {
	return stackRequirements[m]
}

// CheckStack verifies that op can run with depth items on the stack without
// underflowing or exceeding StackLimit. Unknown opcodes are rejected.
func CheckStack(op OpCode, depth int) error {
	m, ok := op.Mnemonic()
	if !ok {
		return fmt.Errorf("%w: 0x%02x", ErrStackUndefinedOp, op.Byte())
	}
	req := m.StackRequirement()
	if depth < req.Pops {
		return fmt.Errorf("%w: %s needs %d items, stack has %d",
			ErrStackUnderflow, m, req.Pops, depth)
	}
	if next := depth + req.Delta; next > StackLimit {
		return fmt.Errorf("%w: %s would produce depth %d (limit %d)",
			ErrStackOverflow, m, next, StackLimit)
	}
	return nil
}
