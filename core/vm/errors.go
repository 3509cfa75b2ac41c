package vm

import (
	"errors"
	"fmt"
)

// Instruction decoding and construction errors. The typed errors below match
// these sentinels with errors.Is.
var (
	ErrUnexpectedLength   = errors.New("unexpected length")
	ErrUnexpectedOpcode   = errors.New("unexpected opcode")
	ErrInvalidFamilyIndex = errors.New("invalid family index")
	ErrImmediateSize      = errors.New("immediate size mismatch")
	ErrNotFixed           = errors.New("not a fixed instruction")
	ErrUndefinedMnemonic  = errors.New("undefined mnemonic")
)

// UnexpectedLengthError is returned when the code window is shorter than the
// instruction being decoded.
type UnexpectedLengthError struct {
	Got      int
	Expected int
}

func (e *UnexpectedLengthError) Error() string {
	return fmt.Sprintf("unexpected length: got %d bytes, expected %d", e.Got, e.Expected)
}

func (e *UnexpectedLengthError) Is(target error) bool {
	return target == ErrUnexpectedLength
}

// UnexpectedOpcodeError is returned when the leading byte of the window is
// not the opcode of the instruction being decoded.
type UnexpectedOpcodeError struct {
	Got      OpCode
	Expected OpCode
}

func (e *UnexpectedOpcodeError) Error() string {
	return fmt.Sprintf("unexpected opcode: got %v (0x%02x), expected %v (0x%02x)",
		e.Got, e.Got.Byte(), e.Expected, e.Expected.Byte())
}

func (e *UnexpectedOpcodeError) Is(target error) bool {
	return target == ErrUnexpectedOpcode
}

// InvalidFamilyIndexError is returned when a parameterized instruction is
// constructed with an index outside its family's range.
type InvalidFamilyIndexError struct {
	Family string // PUSH, DUP, SWAP or LOG
	Index  int
	Min    int
	Max    int
}

func (e *InvalidFamilyIndexError) Error() string {
	return fmt.Sprintf("invalid family index: %s%d (want %d..%d)", e.Family, e.Index, e.Min, e.Max)
}

func (e *InvalidFamilyIndexError) Is(target error) bool {
	return target == ErrInvalidFamilyIndex
}

func checkFamilyIndex(family string, n, lo, hi int) error {
	if n < lo || n > hi {
		return &InvalidFamilyIndexError{Family: family, Index: n, Min: lo, Max: hi}
	}
	return nil
}
