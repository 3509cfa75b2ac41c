package asm

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    []byte
		wantErr bool
	}{
		{"0x600100", []byte{0x60, 0x01, 0x00}, false},
		{"600100", []byte{0x60, 0x01, 0x00}, false},
		{"0X6001", []byte{0x60, 0x01}, false},
		{"  0x600100\n", []byte{0x60, 0x01, 0x00}, false},
		{"60 01", nil, true},
		{"0x60\n01", nil, true},
		{"0x", []byte{}, false},
		{"0x6", nil, true},
		{"0xzz", nil, true},
		{"", nil, true},
	}
	for _, tt := range tests {
		got, err := ParseHex(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseHex(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && !bytes.Equal(got, tt.want) {
			t.Errorf("ParseHex(%q) = %x, want %x", tt.in, got, tt.want)
		}
	}
	if _, err := ParseHex("  \n"); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("ParseHex(blank) = %v, want ErrEmptyInput", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	hexPath := filepath.Join(dir, "code.hex")
	if err := os.WriteFile(hexPath, []byte("0x6001\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	code, err := LoadFile(hexPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(code, []byte{0x60, 0x01}) {
		t.Errorf("hex file = %x", code)
	}

	rawPath := filepath.Join(dir, "code.bin")
	raw := []byte{0x60, 0x01, 0xfe, 0x00}
	if err := os.WriteFile(rawPath, raw, 0o644); err != nil {
		t.Fatal(err)
	}
	code, err = LoadFile(rawPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(code, raw) {
		t.Errorf("raw file = %x", code)
	}

	if _, err := LoadFile(filepath.Join(dir, "missing")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file err = %v", err)
	}
}
