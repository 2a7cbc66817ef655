package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/services"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/utils/web/server"
)

// Register da de alta todos los endpoints de memoria sobre mux.
func Register(mux *http.ServeMux, manager *services.MemoryManager) {
	mux.HandleFunc("GET /config/memoria", MemoryConfigHandler(manager))
	mux.HandleFunc("POST /memoria/proceso", CreateProcessHandler(manager))
	mux.HandleFunc("POST /memoria/sbrk", SbrkHandler(manager))
	mux.HandleFunc("POST /memoria/finalizar", ExitProcessHandler(manager))
	mux.HandleFunc("POST /memoria/fault", PageFaultHandler(manager))
	mux.HandleFunc("POST /memoria/leer", ReadMemoryHandler(manager))
	mux.HandleFunc("POST /memoria/escribir", WriteMemoryHandler(manager))
	mux.HandleFunc("GET /memoria/heap", HeapStatusHandler(manager))
	mux.HandleFunc("GET /memoria/swap", SwapStatusHandler(manager))
	mux.HandleFunc("GET /memoria/trace", TraceHandler(manager))
	mux.HandleFunc("POST /memoria/dump", DumpMemoryHandler(manager))
}

func MemoryConfigHandler(manager *services.MemoryManager) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		server.SendJsonResponse(w, manager.Config())
	}
}

// decodeRequest decodifica el body en req; si falla ya respondió 400.
func decodeRequest(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		slog.Error("Invalid request", "path", r.URL.Path, "error", err)
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return false
	}
	return true
}

func pidFromQuery(w http.ResponseWriter, r *http.Request) (uint, bool) {
	pid, err := strconv.ParseUint(r.URL.Query().Get("pid"), 10, 64)
	if err != nil {
		http.Error(w, "pid inválido", http.StatusBadRequest)
		return 0, false
	}
	return uint(pid), true
}

// sendError traduce los errores de servicios a un status HTTP.
func sendError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrProcessNotFound), errors.Is(err, models.ErrProgramNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrProcessExists), errors.Is(err, models.ErrProcessKilled):
		status = http.StatusConflict
	case errors.Is(err, models.ErrResourceExhausted):
		status = http.StatusInsufficientStorage
	}
	slog.Warn("Request de memoria rechazada", "status", status, "error", err)
	server.SendJsonError(w, status, string(models.ClassifyFaultError(err)), err)
}
