package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/cpu/models"
)

func TestParseInstruction(t *testing.T) {
	tests := []struct {
		line string
		want models.Instruction
	}{
		{"PROCESS 3 bin/hello 0x10000", models.Instruction{Op: models.OpProcess, PID: 3, Path: "bin/hello", HeapStart: 0x10000}},
		{"sbrk 3 4", models.Instruction{Op: models.OpSbrk, PID: 3, Pages: 4}},
		{"READ 3 4096 16", models.Instruction{Op: models.OpRead, PID: 3, Address: 4096, Size: 16}},
		{"FAULT 3 0x2000", models.Instruction{Op: models.OpFault, PID: 3, Address: 0x2000}},
		{"DUMP 3", models.Instruction{Op: models.OpDump, PID: 3}},
		{"EXIT 3", models.Instruction{Op: models.OpExit, PID: 3}},
	}

	for _, tt := range tests {
		got, err := ParseInstruction(tt.line)
		if err != nil {
			t.Errorf("%q: unexpected error %v", tt.line, err)
			continue
		}
		if got.Op != tt.want.Op || got.PID != tt.want.PID || got.Path != tt.want.Path ||
			got.HeapStart != tt.want.HeapStart || got.Pages != tt.want.Pages ||
			got.Address != tt.want.Address || got.Size != tt.want.Size {
			t.Errorf("%q: expected %+v, got %+v", tt.line, tt.want, got)
		}
	}
}

func TestParseInstruction_WriteKeepsSpaces(t *testing.T) {
	got, err := ParseInstruction("WRITE 1 0x10000   hola  mundo")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if string(got.Data) != "hola  mundo" || got.Address != 0x10000 {
		t.Errorf("Expected 'hola  mundo' at 0x10000, got %q at 0x%x", got.Data, got.Address)
	}
}

func TestParseInstruction_Errors(t *testing.T) {
	tests := []struct {
		line string
		want error
	}{
		{"", models.ErrInvalidInstruction},
		{"JUMP 1 2", models.ErrInvalidInstruction},
		{"SBRK 1", models.ErrInvalidInstruction},
		{"SBRK 1 0", models.ErrInvalidInstruction},
		{"EXIT 1 2", models.ErrInvalidInstruction},
		{"EXIT uno", models.ErrInvalidInstruction},
		{"READ 1 0xZZ 4", models.ErrInvalidAddress},
		{"WRITE 1 0x10", models.ErrInvalidInstruction},
	}

	for _, tt := range tests {
		if _, err := ParseInstruction(tt.line); !errors.Is(err, tt.want) {
			t.Errorf("%q: expected %v, got %v", tt.line, tt.want, err)
		}
	}
}

func TestParseScript(t *testing.T) {
	script := `# comentario
PROCESS 1 hello 0x10000

SBRK 1 2
EXIT 1
`
	instructions, err := ParseScript(strings.NewReader(script))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(instructions) != 3 {
		t.Fatalf("Expected 3 instructions, got %d", len(instructions))
	}
	if instructions[1].Op != models.OpSbrk || instructions[1].Line != 4 {
		t.Errorf("Expected SBRK at line 4, got %+v", instructions[1])
	}

	_, err = ParseScript(strings.NewReader("EXIT 1\nMAL 1\n"))
	if err == nil || !strings.Contains(err.Error(), "línea 2") {
		t.Errorf("Expected error at line 2, got %v", err)
	}
}
