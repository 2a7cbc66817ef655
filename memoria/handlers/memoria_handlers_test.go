package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/services"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/utils/web/server"
)

const heapStart = 0x10000

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := models.Config{
		MemorySize:   64 * 16,
		PageSize:     64,
		BlockSize:    16,
		PsaSize:      32,
		MaxHeap:      4,
		MaxResident:  1,
		ProgramsPath: t.TempDir(),
		DumpPath:     t.TempDir(),
		TlbEntries:   4,
	}
	// El ejecutable no se parsea hasta el primer fault de imagen.
	if err := os.WriteFile(filepath.Join(cfg.ProgramsPath, "prog"), []byte("x"), 0644); err != nil {
		t.Fatalf("Error writing program: %v", err)
	}

	manager, err := services.NewMemoryManager(cfg, services.NewMemBlockDevice(cfg.BlockSize, cfg.PsaSize), nil)
	if err != nil {
		t.Fatalf("Error creating manager: %v", err)
	}

	mux := http.NewServeMux()
	Register(mux, manager)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		manager.Close()
	})
	return srv
}

func postJson(t *testing.T, srv *httptest.Server, path string, body interface{}, out interface{}) int {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Error marshalling body: %v", err)
	}
	resp, err := http.Post(srv.URL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("Error on POST %s: %v", path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("Error decoding response of %s: %v", path, err)
		}
	}
	return resp.StatusCode
}

func getJson(t *testing.T, srv *httptest.Server, path string, out interface{}) int {
	t.Helper()

	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("Error on GET %s: %v", path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("Error decoding response of %s: %v", path, err)
		}
	}
	return resp.StatusCode
}

func TestProcessLifecycle(t *testing.T) {
	srv := newTestServer(t)

	var status models.HeapStatus
	if code := postJson(t, srv, "/memoria/proceso", models.CreateProcessRequest{PID: 1, Path: "prog", HeapStart: heapStart}, &status); code != http.StatusOK {
		t.Fatalf("Expected 200 creating process, got %d", code)
	}
	if status.HeapStart != heapStart || status.HeapEnd != heapStart {
		t.Errorf("Expected empty heap, got %+v", status)
	}

	var sbrk models.SbrkResponse
	postJson(t, srv, "/memoria/sbrk", models.SbrkRequest{PID: 1, Pages: 2}, &sbrk)
	if sbrk.HeapEnd != heapStart+128 {
		t.Errorf("Expected heap end 0x%x, got 0x%x", heapStart+128, sbrk.HeapEnd)
	}

	if code := postJson(t, srv, "/memoria/escribir", models.WriteRequest{PID: 1, Address: heapStart, Data: []byte("hola")}, nil); code != http.StatusOK {
		t.Fatalf("Expected 200 writing, got %d", code)
	}
	var fault models.FaultResponse
	postJson(t, srv, "/memoria/fault", models.FaultRequest{PID: 1, Address: heapStart + 64}, &fault)
	if fault.Outcome != models.OutcomeHeapMapped.String() || fault.Kind != models.KindNone {
		t.Errorf("Unexpected fault response %+v", fault)
	}

	var read models.ReadResponse
	postJson(t, srv, "/memoria/leer", models.ReadRequest{PID: 1, Address: heapStart, Size: 4}, &read)
	if string(read.Data) != "hola" {
		t.Errorf("Expected 'hola' after swap round trip, got %q", read.Data)
	}

	var swap models.SwapStatus
	getJson(t, srv, "/memoria/swap", &swap)
	if swap.BlocksPerPage != 4 || swap.UsedBlocks != 4 {
		t.Errorf("Expected one swapped page, got %+v", swap)
	}

	var events []services.TraceEvent
	getJson(t, srv, "/memoria/trace?pid=1", &events)
	if len(events) == 0 {
		t.Errorf("Expected trace events for PID 1")
	}

	var heap models.HeapStatus
	if code := getJson(t, srv, "/memoria/heap?pid=1", &heap); code != http.StatusOK || len(heap.Entries) != 2 {
		t.Errorf("Expected 2 heap entries, got %d (%d)", len(heap.Entries), code)
	}

	var dump map[string]string
	if code := postJson(t, srv, "/memoria/dump", models.PIDRequest{PID: 1}, &dump); code != http.StatusOK || dump["dump"] == "" {
		t.Errorf("Expected dump path, got %v (%d)", dump, code)
	}

	if code := postJson(t, srv, "/memoria/finalizar", models.PIDRequest{PID: 1}, nil); code != http.StatusOK {
		t.Errorf("Expected 200 on exit, got %d", code)
	}
	getJson(t, srv, "/memoria/swap", &swap)
	if swap.UsedBlocks != 0 {
		t.Errorf("Expected swap to be released, got %d", swap.UsedBlocks)
	}
}

func TestFatalFaultIsReported(t *testing.T) {
	srv := newTestServer(t)
	postJson(t, srv, "/memoria/proceso", models.CreateProcessRequest{PID: 1, Path: "prog", HeapStart: heapStart}, nil)

	// "prog" no es un ELF: cualquier fault fuera del heap es fatal.
	var fault models.FaultResponse
	if code := postJson(t, srv, "/memoria/fault", models.FaultRequest{PID: 1, Address: 0x1000}, &fault); code != http.StatusOK {
		t.Fatalf("Expected 200 for an attended fault, got %d", code)
	}
	if fault.Outcome != models.OutcomeFatal.String() || fault.Kind != models.KindMalformedImage || fault.Error == "" {
		t.Errorf("Unexpected fault response %+v", fault)
	}

	var errResp server.ErrorResponse
	if code := postJson(t, srv, "/memoria/leer", models.ReadRequest{PID: 1, Address: heapStart, Size: 1}, &errResp); code != http.StatusConflict {
		t.Errorf("Expected 409 reading from a killed process, got %d", code)
	}
}

func TestTraceReset(t *testing.T) {
	srv := newTestServer(t)
	postJson(t, srv, "/memoria/proceso", models.CreateProcessRequest{PID: 1, Path: "prog", HeapStart: heapStart}, nil)
	postJson(t, srv, "/memoria/sbrk", models.SbrkRequest{PID: 1, Pages: 1}, nil)
	postJson(t, srv, "/memoria/fault", models.FaultRequest{PID: 1, Address: heapStart}, nil)

	var events []services.TraceEvent
	if code := getJson(t, srv, "/memoria/trace?pid=1&reset=1", &events); code != http.StatusOK || len(events) == 0 {
		t.Fatalf("Expected trace events before reset, got %d (%d)", len(events), code)
	}

	events = nil
	getJson(t, srv, "/memoria/trace", &events)
	if len(events) != 0 {
		t.Errorf("Expected an empty trace after reset, got %+v", events)
	}
}

func TestErrorStatuses(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		body   interface{}
		status int
	}{
		{"proceso inexistente", "/memoria/sbrk", models.SbrkRequest{PID: 9, Pages: 1}, http.StatusNotFound},
		{"programa inexistente", "/memoria/proceso", models.CreateProcessRequest{PID: 2, Path: "nada", HeapStart: heapStart}, http.StatusNotFound},
		{"heap lleno", "/memoria/sbrk", models.SbrkRequest{PID: 1, Pages: 5}, http.StatusInsufficientStorage},
		{"pid repetido", "/memoria/proceso", models.CreateProcessRequest{PID: 1, Path: "prog", HeapStart: heapStart}, http.StatusConflict},
	}

	postJson(t, srv, "/memoria/proceso", models.CreateProcessRequest{PID: 1, Path: "prog", HeapStart: heapStart}, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errResp server.ErrorResponse
			if code := postJson(t, srv, tt.path, tt.body, &errResp); code != tt.status {
				t.Errorf("Expected %d, got %d (%+v)", tt.status, code, errResp)
			}
			if errResp.Error == "" {
				t.Errorf("Expected an error message")
			}
		})
	}

	resp, err := http.Post(srv.URL+"/memoria/fault", "application/json", bytes.NewBufferString("{"))
	if err != nil {
		t.Fatalf("Error on POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid JSON, got %d", resp.StatusCode)
	}

	if code := getJson(t, srv, "/memoria/heap?pid=abc", nil); code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid pid, got %d", code)
	}
}
