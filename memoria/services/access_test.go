package services

import (
	"bytes"
	"debug/elf"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
)

func TestUserAccess_WriteAndReadAcrossPages(t *testing.T) {
	m := newTestManager(t, testConfig(t), nil, nil)
	p := newHeapProcess(t, m, 1, 2)

	data := []byte("dato que cruza dos paginas")
	addr := heapPage(1) - 10
	if err := m.WriteUser(1, addr, data); err != nil {
		t.Fatalf("Error writing: %v", err)
	}
	if p.ResidentHeapPages != 2 {
		t.Errorf("Expected both pages faulted in, got %d", p.ResidentHeapPages)
	}

	out, err := m.ReadUser(1, addr, len(data))
	if err != nil {
		t.Fatalf("Error reading: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Errorf("Expected %q, got %q", data, out)
	}
}

func TestUserAccess_SurvivesEviction(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxResident = 1
	m := newTestManager(t, cfg, nil, nil)
	newHeapProcess(t, m, 1, 3)

	for i := 0; i < 3; i++ {
		if err := m.WriteUser(1, heapPage(i), []byte{byte('a' + i)}); err != nil {
			t.Fatalf("Error writing page %d: %v", i, err)
		}
	}
	for i := 0; i < 3; i++ {
		out, err := m.ReadUser(1, heapPage(i), 1)
		if err != nil {
			t.Fatalf("Error reading page %d: %v", i, err)
		}
		if out[0] != byte('a'+i) {
			t.Errorf("Page %d: expected %q, got %q", i, 'a'+i, out[0])
		}
	}
}

func TestUserAccess_WriteToReadOnlyImageKills(t *testing.T) {
	cfg := testConfig(t)
	m := newTestManager(t, cfg, nil, nil)
	writeProgram(t, cfg.ProgramsPath, "hello", buildElf(t, []testSegment{
		{vaddr: 0x1000, data: []byte("texto"), memsz: 64, flags: elf.PF_R | elf.PF_X},
	}))
	p, err := m.CreateProcess(1, "hello", testHeapStart)
	if err != nil {
		t.Fatalf("Error creating process: %v", err)
	}

	out, err := m.ReadUser(1, 0x1000, 5)
	if err != nil || string(out) != "texto" {
		t.Fatalf("Expected to read 'texto', got %q (%v)", out, err)
	}

	err = m.WriteUser(1, 0x1000, []byte("x"))
	if !errors.Is(err, models.ErrProcessKilled) || !errors.Is(err, models.ErrInvariantViolation) {
		t.Fatalf("Expected killed process on write to text, got %v", err)
	}
	if !p.Killed {
		t.Errorf("Expected process to be killed")
	}
	if _, err := m.ReadUser(1, 0x1000, 1); !errors.Is(err, models.ErrProcessKilled) {
		t.Errorf("Expected ErrProcessKilled after termination, got %v", err)
	}
}

func TestUserAccess_FaultOutsideAddressSpace(t *testing.T) {
	m := newTestManager(t, testConfig(t), nil, nil)
	p := newHeapProcess(t, m, 1, 1)

	_, err := m.ReadUser(1, heapPage(5), 4)
	if !errors.Is(err, models.ErrProcessKilled) {
		t.Fatalf("Expected ErrProcessKilled, got %v", err)
	}
	if !p.Killed || !allFramesFree(m) {
		t.Errorf("Expected killed process with frames released")
	}
}

func TestDumpHeap(t *testing.T) {
	cfg := testConfig(t)
	m := newTestManager(t, cfg, nil, nil)
	newHeapProcess(t, m, 1, 3)

	for i := 0; i < 3; i++ {
		if err := m.WriteUser(1, heapPage(i), []byte("HEAP")); err != nil {
			t.Fatalf("Error writing page %d: %v", i, err)
		}
	}

	path, err := m.DumpHeap(1)
	if err != nil {
		t.Fatalf("Error dumping heap: %v", err)
	}
	if !strings.HasPrefix(path, cfg.DumpPath) {
		t.Errorf("Expected dump under %s, got %s", cfg.DumpPath, path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Error reading dump: %v", err)
	}
	text := string(content)
	if !strings.HasPrefix(text, "PID 1 - prog") {
		t.Errorf("Unexpected dump header: %q", strings.SplitN(text, "\n", 2)[0])
	}
	// Dos residentes con contenido, una página en swap sin volcado.
	if got := strings.Count(text, "|HEAP"); got != 2 {
		t.Errorf("Expected 2 dumped pages, got %d", got)
	}
	if got := strings.Count(text, "swap=-1"); got != 2 {
		t.Errorf("Expected 2 resident entries, got %d", got)
	}

	if _, err := m.DumpHeap(42); !errors.Is(err, models.ErrProcessNotFound) {
		t.Errorf("Expected ErrProcessNotFound, got %v", err)
	}
}
