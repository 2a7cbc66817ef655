package services

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/cpu/models"
)

// argumentos mínimos por operación, sin contar el código de operación
var instructionArgs = map[string]int{
	models.OpProcess: 3,
	models.OpSbrk:    2,
	models.OpRead:    3,
	models.OpWrite:   3,
	models.OpFault:   2,
	models.OpDump:    1,
	models.OpExit:    1,
}

// ParseInstruction interpreta una línea del script. En WRITE todo lo que sigue a la dirección es el
// texto a escribir, espacios incluidos.
func ParseInstruction(line string) (models.Instruction, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return models.Instruction{}, fmt.Errorf("%w: línea vacía", models.ErrInvalidInstruction)
	}

	op := strings.ToUpper(fields[0])
	want, known := instructionArgs[op]
	if !known {
		return models.Instruction{}, fmt.Errorf("%w: %s", models.ErrInvalidInstruction, fields[0])
	}
	if len(fields)-1 < want || (op != models.OpWrite && len(fields)-1 > want) {
		return models.Instruction{}, fmt.Errorf("%w: %s espera %d argumentos, recibió %d",
			models.ErrInvalidInstruction, op, want, len(fields)-1)
	}

	pid, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return models.Instruction{}, fmt.Errorf("%w: pid %q", models.ErrInvalidInstruction, fields[1])
	}
	inst := models.Instruction{Op: op, PID: uint(pid)}

	switch op {
	case models.OpProcess:
		inst.Path = fields[2]
		inst.HeapStart, err = parseAddress(fields[3])
	case models.OpSbrk:
		inst.Pages, err = parsePositive(fields[2])
	case models.OpRead:
		if inst.Address, err = parseAddress(fields[2]); err == nil {
			inst.Size, err = parsePositive(fields[3])
		}
	case models.OpWrite:
		if inst.Address, err = parseAddress(fields[2]); err == nil {
			inst.Data = []byte(textAfter(line, 3))
		}
	case models.OpFault:
		inst.Address, err = parseAddress(fields[2])
	}
	if err != nil {
		return models.Instruction{}, err
	}
	return inst, nil
}

// ParseScript parsea un script completo. Se ignoran las líneas vacías y los comentarios con #.
func ParseScript(r io.Reader) ([]models.Instruction, error) {
	var instructions []models.Instruction

	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		inst, err := ParseInstruction(line)
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", lineNumber, err)
		}
		inst.Line = lineNumber
		instructions = append(instructions, inst)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error leyendo script: %w", err)
	}
	return instructions, nil
}

// parseAddress acepta decimal o hexadecimal con prefijo 0x.
func parseAddress(s string) (uint64, error) {
	addr, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", models.ErrInvalidAddress, s)
	}
	return addr, nil
}

func parsePositive(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: se esperaba un entero positivo, recibió %q", models.ErrInvalidInstruction, s)
	}
	return n, nil
}

// textAfter devuelve lo que queda de line después de saltear skip campos.
func textAfter(line string, skip int) string {
	rest := strings.TrimLeft(line, " \t")
	for i := 0; i < skip; i++ {
		idx := strings.IndexAny(rest, " \t")
		if idx == -1 {
			return ""
		}
		rest = strings.TrimLeft(rest[idx:], " \t")
	}
	return rest
}
