// Package geth converts between evmkit's instruction set and upgrade history
// and their go-ethereum counterparts. It is the only package that imports
// go-ethereum's core/vm and params.
package geth

import (
	"math/big"

	gethvm "github.com/ethereum/go-ethereum/core/vm"
	"github.com/holiman/uint256"

	"github.com/eth2030/evmkit/core/vm"
)

// --- Opcode conversion (same byte encoding) ---

// ToGethOpCode converts an opcode to go-ethereum's representation.
func ToGethOpCode(op vm.OpCode) gethvm.OpCode {
	return gethvm.OpCode(op.Byte())
}

// FromGethOpCode converts a go-ethereum opcode. Bytes without an evmkit
// mnemonic become unknown opcodes.
func FromGethOpCode(op gethvm.OpCode) vm.OpCode {
	return vm.OpCodeFromByte(byte(op))
}

// MnemonicFromGeth resolves a go-ethereum opcode name to a mnemonic.
// go-ethereum's legacy names (DIFFICULTY, SHA3, SUICIDE) are accepted.
func MnemonicFromGeth(name string) (vm.Mnemonic, bool) {
	op := gethvm.StringToOp(name)
	if op.String() != name {
		// StringToOp maps unknown names to STOP.
		return vm.MnemonicByName(name)
	}
	return vm.LookupMnemonic(byte(op))
}

// --- Push value conversion ---

// ToUint256 converts *big.Int to *uint256.Int. Values that do not fit in
// 256 bits are reported with ok == false.
func ToUint256(b *big.Int) (u *uint256.Int, ok bool) {
	if b == nil {
		return new(uint256.Int), true
	}
	if b.Sign() < 0 {
		return nil, false
	}
	u, overflow := uint256.FromBig(b)
	return u, !overflow
}

// FromUint256 converts *uint256.Int to *big.Int.
func FromUint256(u *uint256.Int) *big.Int {
	if u == nil {
		return new(big.Int)
	}
	return u.ToBig()
}

// PushBig returns the shortest push of v, or false if v is negative or
// wider than 256 bits.
func PushBig(v *big.Int) (vm.Push, bool) {
	u, ok := ToUint256(v)
	if !ok {
		return vm.Push{}, false
	}
	return vm.PushValue(u), true
}

// PushToBig returns the value a push places on the stack.
func PushToBig(p vm.Push) *big.Int {
	return FromUint256(p.Value())
}
