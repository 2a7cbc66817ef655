package services

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/cpu/models"
	memoriaHandlers "github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/handlers"
	memoriaModel "github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
	memoriaServices "github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/services"
)

// startMemory levanta memoria completa sobre un httptest.Server y devuelve la config de la CPU que
// apunta a ella.
func startMemory(t *testing.T) (*models.Config, *memoriaServices.MemoryManager) {
	t.Helper()

	cfg := memoriaModel.Config{
		MemorySize:   64 * 16,
		PageSize:     64,
		BlockSize:    32,
		PsaSize:      32,
		MaxHeap:      8,
		MaxResident:  2,
		ProgramsPath: t.TempDir(),
		DumpPath:     t.TempDir(),
		TlbEntries:   4,
	}
	if err := os.WriteFile(filepath.Join(cfg.ProgramsPath, "hello"), []byte("x"), 0644); err != nil {
		t.Fatalf("Error writing program: %v", err)
	}
	manager, err := memoriaServices.NewMemoryManager(cfg, memoriaServices.NewMemBlockDevice(cfg.BlockSize, cfg.PsaSize), nil)
	if err != nil {
		t.Fatalf("Error creating memory: %v", err)
	}

	mux := http.NewServeMux()
	memoriaHandlers.Register(mux, manager)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		manager.Close()
	})

	u, _ := url.Parse(srv.URL)
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("Failed to parse port: %v", err)
	}
	return &models.Config{IpMemory: u.Hostname(), PortMemory: port}, manager
}

func TestRequestMemoryConfig(t *testing.T) {
	cpuConfig, _ := startMemory(t)

	if err := RequestMemoryConfig(cpuConfig); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if models.MemConfig.PageSize != 64 || models.MemConfig.MaxResident != 2 {
		t.Errorf("Unexpected memory config %+v", models.MemConfig)
	}
}

func TestRunScript_HeapWithSwap(t *testing.T) {
	cpuConfig, manager := startMemory(t)

	script := `PROCESS 1 hello 0x1000
SBRK 1 4
WRITE 1 0x1000 uno
WRITE 1 0x1040 dos
WRITE 1 0x1080 tres
WRITE 1 0x10c0 cuatro
DUMP 1
`
	if err := RunScript(strings.NewReader(script), cpuConfig); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if used := manager.Swap().UsedBlocks(); used != 4 {
		t.Errorf("Expected 2 pages in swap (4 blocks), got %d blocks", used)
	}

	for addr, want := range map[uint64]string{0x1000: "uno", 0x1040: "dos", 0x10c0: "cuatro"} {
		data, err := ExecuteInstruction(models.Instruction{Op: models.OpRead, PID: 1, Address: addr, Size: len(want)}, cpuConfig)
		if err != nil || string(data) != want {
			t.Errorf("0x%x: expected %q, got %q (%v)", addr, want, data, err)
		}
	}

	if _, err := ExecuteInstruction(models.Instruction{Op: models.OpExit, PID: 1}, cpuConfig); err != nil {
		t.Fatalf("Unexpected error on exit: %v", err)
	}
	if manager.Swap().UsedBlocks() != 0 {
		t.Errorf("Expected swap to be released after exit")
	}
}

func TestRunScript_ContinuesAfterErrors(t *testing.T) {
	cpuConfig, manager := startMemory(t)

	script := `PROCESS 1 hello 0x1000
SBRK 9 1
FAULT 1 0x500000
PROCESS 2 hello 0x1000
SBRK 2 1
`
	err := RunScript(strings.NewReader(script), cpuConfig)
	if err == nil {
		t.Fatalf("Expected errors from the script")
	}
	if !strings.Contains(err.Error(), "línea 2") || !strings.Contains(err.Error(), "línea 3") {
		t.Errorf("Expected errors at lines 2 and 3, got %v", err)
	}

	status, statusErr := manager.HeapStatus(2)
	if statusErr != nil || status.HeapEnd != 0x1040 {
		t.Errorf("Expected PID 2 to run after the errors, got %+v (%v)", status, statusErr)
	}
}
