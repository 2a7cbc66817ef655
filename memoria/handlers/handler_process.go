package handlers

import (
	"fmt"
	"net/http"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/services"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/utils/web/server"
)

func CreateProcessHandler(manager *services.MemoryManager) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.CreateProcessRequest
		if !decodeRequest(w, r, &req) {
			return
		}

		if _, err := manager.CreateProcess(req.PID, req.Path, req.HeapStart); err != nil {
			sendError(w, err)
			return
		}
		status, err := manager.HeapStatus(req.PID)
		if err != nil {
			sendError(w, err)
			return
		}
		server.SendJsonResponse(w, status)
	}
}

func SbrkHandler(manager *services.MemoryManager) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.SbrkRequest
		if !decodeRequest(w, r, &req) {
			return
		}

		heapEnd, err := manager.Sbrk(req.PID, req.Pages)
		if err != nil {
			sendError(w, err)
			return
		}
		server.SendJsonResponse(w, models.SbrkResponse{PID: req.PID, HeapEnd: heapEnd})
	}
}

func ExitProcessHandler(manager *services.MemoryManager) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.PIDRequest
		if !decodeRequest(w, r, &req) {
			return
		}

		if err := manager.Exit(req.PID); err != nil {
			sendError(w, err)
			return
		}
		server.SendJsonResponse(w, fmt.Sprintf("PID %d finalizado", req.PID))
	}
}
