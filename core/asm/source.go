package asm

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ErrEmptyInput is returned when a hex source holds no characters at all.
var ErrEmptyInput = errors.New("asm: empty input")

// ParseHex decodes hex-encoded bytecode. The 0x prefix is optional and
// leading and trailing whitespace is trimmed. "0x" alone is valid empty
// code.
func ParseHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrEmptyInput
	}
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	} else {
		s = "0x" + s[2:]
	}
	code, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("asm: invalid hex bytecode: %w", err)
	}
	return code, nil
}

// LoadFile reads bytecode from path. Files holding hex text are decoded;
// anything else is taken as raw bytes.
func LoadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("asm: read %s: %w", path, err)
	}
	if code, err := ParseHex(string(data)); err == nil {
		return code, nil
	}
	logger().Debug("Loading raw bytecode", "path", path, "size", len(data))
	return data, nil
}
