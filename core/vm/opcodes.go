// Package vm defines the EVM instruction set: the opcode table, the typed
// instruction model and its byte-level encoding.
package vm

import (
	"fmt"
	"strings"
)

// Mnemonic is the symbolic name of an EVM operation. Its value is the byte
// that encodes it. Not every byte has a mnemonic; see Valid.
type Mnemonic byte

const (
	STOP       Mnemonic = 0x00
	ADD        Mnemonic = 0x01
	MUL        Mnemonic = 0x02
	SUB        Mnemonic = 0x03
	DIV        Mnemonic = 0x04
	SDIV       Mnemonic = 0x05
	MOD        Mnemonic = 0x06
	SMOD       Mnemonic = 0x07
	ADDMOD     Mnemonic = 0x08
	MULMOD     Mnemonic = 0x09
	EXP        Mnemonic = 0x0a
	SIGNEXTEND Mnemonic = 0x0b

	LT     Mnemonic = 0x10
	GT     Mnemonic = 0x11
	SLT    Mnemonic = 0x12
	SGT    Mnemonic = 0x13
	EQ     Mnemonic = 0x14
	ISZERO Mnemonic = 0x15
	AND    Mnemonic = 0x16
	OR     Mnemonic = 0x17
	XOR    Mnemonic = 0x18
	NOT    Mnemonic = 0x19
	BYTE   Mnemonic = 0x1a
	SHL    Mnemonic = 0x1b // EIP-145
	SHR    Mnemonic = 0x1c // EIP-145
	SAR    Mnemonic = 0x1d // EIP-145

	KECCAK256 Mnemonic = 0x20

	ADDRESS        Mnemonic = 0x30
	BALANCE        Mnemonic = 0x31
	ORIGIN         Mnemonic = 0x32
	CALLER         Mnemonic = 0x33
	CALLVALUE      Mnemonic = 0x34
	CALLDATALOAD   Mnemonic = 0x35
	CALLDATASIZE   Mnemonic = 0x36
	CALLDATACOPY   Mnemonic = 0x37
	CODESIZE       Mnemonic = 0x38
	CODECOPY       Mnemonic = 0x39
	GASPRICE       Mnemonic = 0x3a
	EXTCODESIZE    Mnemonic = 0x3b
	EXTCODECOPY    Mnemonic = 0x3c
	RETURNDATASIZE Mnemonic = 0x3d // EIP-211
	RETURNDATACOPY Mnemonic = 0x3e // EIP-211
	EXTCODEHASH    Mnemonic = 0x3f // EIP-1052

	BLOCKHASH   Mnemonic = 0x40
	COINBASE    Mnemonic = 0x41
	TIMESTAMP   Mnemonic = 0x42
	NUMBER      Mnemonic = 0x43
	PREVRANDAO  Mnemonic = 0x44 // was DIFFICULTY pre-merge
	GASLIMIT    Mnemonic = 0x45
	CHAINID     Mnemonic = 0x46 // EIP-1344
	SELFBALANCE Mnemonic = 0x47 // EIP-1884
	BASEFEE     Mnemonic = 0x48 // EIP-3198
	BLOBHASH    Mnemonic = 0x49 // EIP-4844
	BLOBBASEFEE Mnemonic = 0x4a // EIP-7516

	POP      Mnemonic = 0x50
	MLOAD    Mnemonic = 0x51
	MSTORE   Mnemonic = 0x52
	MSTORE8  Mnemonic = 0x53
	SLOAD    Mnemonic = 0x54
	SSTORE   Mnemonic = 0x55
	JUMP     Mnemonic = 0x56
	JUMPI    Mnemonic = 0x57
	PC       Mnemonic = 0x58
	MSIZE    Mnemonic = 0x59
	GAS      Mnemonic = 0x5a
	JUMPDEST Mnemonic = 0x5b
	TLOAD    Mnemonic = 0x5c // EIP-1153
	TSTORE   Mnemonic = 0x5d // EIP-1153
	MCOPY    Mnemonic = 0x5e // EIP-5656

	PUSH0  Mnemonic = 0x5f // EIP-3855
	PUSH1  Mnemonic = 0x60
	PUSH2  Mnemonic = 0x61
	PUSH3  Mnemonic = 0x62
	PUSH4  Mnemonic = 0x63
	PUSH5  Mnemonic = 0x64
	PUSH6  Mnemonic = 0x65
	PUSH7  Mnemonic = 0x66
	PUSH8  Mnemonic = 0x67
	PUSH9  Mnemonic = 0x68
	PUSH10 Mnemonic = 0x69
	PUSH11 Mnemonic = 0x6a
	PUSH12 Mnemonic = 0x6b
	PUSH13 Mnemonic = 0x6c
	PUSH14 Mnemonic = 0x6d
	PUSH15 Mnemonic = 0x6e
	PUSH16 Mnemonic = 0x6f
	PUSH17 Mnemonic = 0x70
	PUSH18 Mnemonic = 0x71
	PUSH19 Mnemonic = 0x72
	PUSH20 Mnemonic = 0x73
	PUSH21 Mnemonic = 0x74
	PUSH22 Mnemonic = 0x75
	PUSH23 Mnemonic = 0x76
	PUSH24 Mnemonic = 0x77
	PUSH25 Mnemonic = 0x78
	PUSH26 Mnemonic = 0x79
	PUSH27 Mnemonic = 0x7a
	PUSH28 Mnemonic = 0x7b
	PUSH29 Mnemonic = 0x7c
	PUSH30 Mnemonic = 0x7d
	PUSH31 Mnemonic = 0x7e
	PUSH32 Mnemonic = 0x7f

	DUP1  Mnemonic = 0x80
	DUP2  Mnemonic = 0x81
	DUP3  Mnemonic = 0x82
	DUP4  Mnemonic = 0x83
	DUP5  Mnemonic = 0x84
	DUP6  Mnemonic = 0x85
	DUP7  Mnemonic = 0x86
	DUP8  Mnemonic = 0x87
	DUP9  Mnemonic = 0x88
	DUP10 Mnemonic = 0x89
	DUP11 Mnemonic = 0x8a
	DUP12 Mnemonic = 0x8b
	DUP13 Mnemonic = 0x8c
	DUP14 Mnemonic = 0x8d
	DUP15 Mnemonic = 0x8e
	DUP16 Mnemonic = 0x8f

	SWAP1  Mnemonic = 0x90
	SWAP2  Mnemonic = 0x91
	SWAP3  Mnemonic = 0x92
	SWAP4  Mnemonic = 0x93
	SWAP5  Mnemonic = 0x94
	SWAP6  Mnemonic = 0x95
	SWAP7  Mnemonic = 0x96
	SWAP8  Mnemonic = 0x97
	SWAP9  Mnemonic = 0x98
	SWAP10 Mnemonic = 0x99
	SWAP11 Mnemonic = 0x9a
	SWAP12 Mnemonic = 0x9b
	SWAP13 Mnemonic = 0x9c
	SWAP14 Mnemonic = 0x9d
	SWAP15 Mnemonic = 0x9e
	SWAP16 Mnemonic = 0x9f

	LOG0 Mnemonic = 0xa0
	LOG1 Mnemonic = 0xa1
	LOG2 Mnemonic = 0xa2
	LOG3 Mnemonic = 0xa3
	LOG4 Mnemonic = 0xa4

	CREATE       Mnemonic = 0xf0
	CALL         Mnemonic = 0xf1
	CALLCODE     Mnemonic = 0xf2
	RETURN       Mnemonic = 0xf3
	DELEGATECALL Mnemonic = 0xf4 // EIP-7
	CREATE2      Mnemonic = 0xf5 // EIP-1014
	STATICCALL   Mnemonic = 0xfa // EIP-214
	REVERT       Mnemonic = 0xfd // EIP-140
	INVALID      Mnemonic = 0xfe
	SELFDESTRUCT Mnemonic = 0xff
)

// mnemonicNames holds the canonical name of every defined mnemonic. An empty
// entry means the byte has no mnemonic.
var mnemonicNames = [256]string{
	STOP: "STOP", ADD: "ADD", MUL: "MUL", SUB: "SUB",
	DIV: "DIV", SDIV: "SDIV", MOD: "MOD", SMOD: "SMOD",
	ADDMOD: "ADDMOD", MULMOD: "MULMOD", EXP: "EXP", SIGNEXTEND: "SIGNEXTEND",
	LT: "LT", GT: "GT", SLT: "SLT", SGT: "SGT",
	EQ: "EQ", ISZERO: "ISZERO", AND: "AND", OR: "OR",
	XOR: "XOR", NOT: "NOT", BYTE: "BYTE",
	SHL: "SHL", SHR: "SHR", SAR: "SAR",
	KECCAK256: "KECCAK256",
	ADDRESS:   "ADDRESS", BALANCE: "BALANCE", ORIGIN: "ORIGIN",
	CALLER: "CALLER", CALLVALUE: "CALLVALUE",
	CALLDATALOAD: "CALLDATALOAD", CALLDATASIZE: "CALLDATASIZE", CALLDATACOPY: "CALLDATACOPY",
	CODESIZE: "CODESIZE", CODECOPY: "CODECOPY", GASPRICE: "GASPRICE",
	EXTCODESIZE: "EXTCODESIZE", EXTCODECOPY: "EXTCODECOPY",
	RETURNDATASIZE: "RETURNDATASIZE", RETURNDATACOPY: "RETURNDATACOPY",
	EXTCODEHASH: "EXTCODEHASH",
	BLOCKHASH:   "BLOCKHASH", COINBASE: "COINBASE", TIMESTAMP: "TIMESTAMP",
	NUMBER: "NUMBER", PREVRANDAO: "PREVRANDAO", GASLIMIT: "GASLIMIT",
	CHAINID: "CHAINID", SELFBALANCE: "SELFBALANCE", BASEFEE: "BASEFEE",
	BLOBHASH: "BLOBHASH", BLOBBASEFEE: "BLOBBASEFEE",
	POP: "POP", MLOAD: "MLOAD", MSTORE: "MSTORE", MSTORE8: "MSTORE8",
	SLOAD: "SLOAD", SSTORE: "SSTORE",
	JUMP: "JUMP", JUMPI: "JUMPI", PC: "PC", MSIZE: "MSIZE", GAS: "GAS",
	JUMPDEST: "JUMPDEST", TLOAD: "TLOAD", TSTORE: "TSTORE", MCOPY: "MCOPY",
	PUSH0: "PUSH0",
	PUSH1: "PUSH1", PUSH2: "PUSH2", PUSH3: "PUSH3", PUSH4: "PUSH4",
	PUSH5: "PUSH5", PUSH6: "PUSH6", PUSH7: "PUSH7", PUSH8: "PUSH8",
	PUSH9: "PUSH9", PUSH10: "PUSH10", PUSH11: "PUSH11", PUSH12: "PUSH12",
	PUSH13: "PUSH13", PUSH14: "PUSH14", PUSH15: "PUSH15", PUSH16: "PUSH16",
	PUSH17: "PUSH17", PUSH18: "PUSH18", PUSH19: "PUSH19", PUSH20: "PUSH20",
	PUSH21: "PUSH21", PUSH22: "PUSH22", PUSH23: "PUSH23", PUSH24: "PUSH24",
	PUSH25: "PUSH25", PUSH26: "PUSH26", PUSH27: "PUSH27", PUSH28: "PUSH28",
	PUSH29: "PUSH29", PUSH30: "PUSH30", PUSH31: "PUSH31", PUSH32: "PUSH32",
	DUP1: "DUP1", DUP2: "DUP2", DUP3: "DUP3", DUP4: "DUP4",
	DUP5: "DUP5", DUP6: "DUP6", DUP7: "DUP7", DUP8: "DUP8",
	DUP9: "DUP9", DUP10: "DUP10", DUP11: "DUP11", DUP12: "DUP12",
	DUP13: "DUP13", DUP14: "DUP14", DUP15: "DUP15", DUP16: "DUP16",
	SWAP1: "SWAP1", SWAP2: "SWAP2", SWAP3: "SWAP3", SWAP4: "SWAP4",
	SWAP5: "SWAP5", SWAP6: "SWAP6", SWAP7: "SWAP7", SWAP8: "SWAP8",
	SWAP9: "SWAP9", SWAP10: "SWAP10", SWAP11: "SWAP11", SWAP12: "SWAP12",
	SWAP13: "SWAP13", SWAP14: "SWAP14", SWAP15: "SWAP15", SWAP16: "SWAP16",
	LOG0: "LOG0", LOG1: "LOG1", LOG2: "LOG2", LOG3: "LOG3", LOG4: "LOG4",
	CREATE: "CREATE", CALL: "CALL", CALLCODE: "CALLCODE", RETURN: "RETURN",
	DELEGATECALL: "DELEGATECALL", CREATE2: "CREATE2",
	STATICCALL: "STATICCALL", REVERT: "REVERT",
	INVALID: "INVALID", SELFDESTRUCT: "SELFDESTRUCT",
}

// mnemonicAliases maps historical names to their current mnemonic.
var mnemonicAliases = map[string]Mnemonic{
	"SHA3":       KECCAK256,
	"DIFFICULTY": PREVRANDAO,
	"RANDOM":     PREVRANDAO,
	"SUICIDE":    SELFDESTRUCT,
}

var mnemonicsByName map[string]Mnemonic

func init() {
	mnemonicsByName = make(map[string]Mnemonic, len(mnemonicNames)+len(mnemonicAliases))
	for b, name := range mnemonicNames {
		if name != "" {
			mnemonicsByName[name] = Mnemonic(b)
		}
	}
	for alias, m := range mnemonicAliases {
		mnemonicsByName[alias] = m
	}
}

// LookupMnemonic returns the mnemonic encoded by b, if there is one.
func LookupMnemonic(b byte) (Mnemonic, bool) {
	if mnemonicNames[b] == "" {
		return 0, false
	}
	return Mnemonic(b), true
}

// MnemonicByName resolves a mnemonic from its name. The match is
// case-insensitive and accepts historical aliases such as SHA3.
func MnemonicByName(name string) (Mnemonic, bool) {
	m, ok := mnemonicsByName[strings.ToUpper(strings.TrimSpace(name))]
	return m, ok
}

// Mnemonics returns every defined mnemonic in byte order.
func Mnemonics() []Mnemonic {
	out := make([]Mnemonic, 0, 150)
	for b, name := range mnemonicNames {
		if name != "" {
			out = append(out, Mnemonic(b))
		}
	}
	return out
}

// Valid reports whether m names an operation.
func (m Mnemonic) Valid() bool {
	return mnemonicNames[m] != ""
}

// Byte returns the encoding of m.
func (m Mnemonic) Byte() byte {
	return byte(m)
}

// String returns the name of the mnemonic.
func (m Mnemonic) String() string {
	if name := mnemonicNames[m]; name != "" {
		return name
	}
	return fmt.Sprintf("opcode 0x%02x", byte(m))
}

// IsPush reports whether m is one of PUSH0..PUSH32.
func (m Mnemonic) IsPush() bool {
	return m >= PUSH0 && m <= PUSH32
}

// IsDup reports whether m is one of DUP1..DUP16.
func (m Mnemonic) IsDup() bool {
	return m >= DUP1 && m <= DUP16
}

// IsSwap reports whether m is one of SWAP1..SWAP16.
func (m Mnemonic) IsSwap() bool {
	return m >= SWAP1 && m <= SWAP16
}

// IsLog reports whether m is one of LOG0..LOG4.
func (m Mnemonic) IsLog() bool {
	return m >= LOG0 && m <= LOG4
}

// IsTerminator reports whether execution halts at m.
func (m Mnemonic) IsTerminator() bool {
	switch m {
	case STOP, RETURN, REVERT, INVALID, SELFDESTRUCT:
		return true
	}
	return false
}

// IsControlFlow reports whether m is a jump or a jump destination.
func (m Mnemonic) IsControlFlow() bool {
	switch m {
	case JUMP, JUMPI, JUMPDEST:
		return true
	}
	return false
}

// ImmediateSize returns the number of immediate bytes following m in code.
// Only PUSH1..PUSH32 carry immediates.
func (m Mnemonic) ImmediateSize() int {
	if m > PUSH0 && m <= PUSH32 {
		return int(m - PUSH0)
	}
	return 0
}

// FamilyIndex returns the index of m within its parameterized family (the N
// of PUSHn, DUPn, SWAPn or LOGn). The bool is false for fixed mnemonics.
func (m Mnemonic) FamilyIndex() (int, bool) {
	switch {
	case m.IsPush():
		return int(m - PUSH0), true
	case m.IsDup():
		return int(m-DUP1) + 1, true
	case m.IsSwap():
		return int(m-SWAP1) + 1, true
	case m.IsLog():
		return int(m - LOG0), true
	}
	return 0, false
}

// OpCode is the byte identifying an operation, tagged as known (it has a
// mnemonic) or unknown. The zero value is Known(STOP).
type OpCode struct {
	b       byte
	unknown bool
}

// KnownOpCode returns the opcode of a mnemonic.
func KnownOpCode(m Mnemonic) OpCode {
	return OpCode{b: byte(m)}
}

// UnknownOpCode returns an opcode tagged unknown for b, whether or not b has
// a mnemonic. Use OpCodeFromByte to classify a byte.
func UnknownOpCode(b byte) OpCode {
	return OpCode{b: b, unknown: true}
}

// OpCodeFromByte classifies b. It is total: unmapped bytes yield an unknown
// opcode.
func OpCodeFromByte(b byte) OpCode {
	if m, ok := LookupMnemonic(b); ok {
		return KnownOpCode(m)
	}
	return UnknownOpCode(b)
}

// Byte returns the encoding of the opcode.
func (op OpCode) Byte() byte {
	return op.b
}

// Mnemonic returns the mnemonic of a known opcode.
func (op OpCode) Mnemonic() (Mnemonic, bool) {
	if op.unknown {
		return 0, false
	}
	return Mnemonic(op.b), true
}

// IsKnown reports whether the opcode carries a mnemonic.
func (op OpCode) IsKnown() bool {
	return !op.unknown
}

// String returns the mnemonic name, or "opcode 0x.." for unknown opcodes.
func (op OpCode) String() string {
	if op.unknown {
		return fmt.Sprintf("opcode 0x%02x", op.b)
	}
	return Mnemonic(op.b).String()
}

// IsPush reports whether op is a known PUSH0..PUSH32.
func (op OpCode) IsPush() bool { return !op.unknown && Mnemonic(op.b).IsPush() }

// IsDup reports whether op is a known DUPn.
func (op OpCode) IsDup() bool { return !op.unknown && Mnemonic(op.b).IsDup() }

// IsSwap reports whether op is a known SWAPn.
func (op OpCode) IsSwap() bool { return !op.unknown && Mnemonic(op.b).IsSwap() }

// IsLog reports whether op is a known LOGn.
func (op OpCode) IsLog() bool { return !op.unknown && Mnemonic(op.b).IsLog() }

// IsControlFlow reports whether op is a known JUMP, JUMPI or JUMPDEST.
func (op OpCode) IsControlFlow() bool { return !op.unknown && Mnemonic(op.b).IsControlFlow() }

// IsTerminator reports whether execution cannot continue past op. Unknown
// opcodes always terminate.
func (op OpCode) IsTerminator() bool {
	return op.unknown || Mnemonic(op.b).IsTerminator()
}
