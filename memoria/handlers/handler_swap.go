package handlers

import (
	"net/http"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/services"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/utils/web/server"
)

func HeapStatusHandler(manager *services.MemoryManager) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		pid, ok := pidFromQuery(w, r)
		if !ok {
			return
		}

		status, err := manager.HeapStatus(pid)
		if err != nil {
			sendError(w, err)
			return
		}
		server.SendJsonResponse(w, status)
	}
}

func SwapStatusHandler(manager *services.MemoryManager) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		server.SendJsonResponse(w, manager.SwapStatus())
	}
}

// TraceHandler devuelve los eventos de diagnóstico; con ?pid=N solo los de ese proceso. Con ?reset=1
// además vacía el registro completo.
func TraceHandler(manager *services.MemoryManager) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		filter := func(services.TraceEvent) bool { return true }
		if query.Has("pid") {
			pid, ok := pidFromQuery(w, r)
			if !ok {
				return
			}
			filter = func(e services.TraceEvent) bool { return e.PID == pid }
		}

		var events []services.TraceEvent
		if query.Get("reset") == "1" {
			events = manager.Tracer().Drain()
		} else {
			events = manager.Tracer().Events()
		}

		filtered := make([]services.TraceEvent, 0, len(events))
		for _, e := range events {
			if filter(e) {
				filtered = append(filtered, e)
			}
		}
		server.SendJsonResponse(w, filtered)
	}
}

func DumpMemoryHandler(manager *services.MemoryManager) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.PIDRequest
		if !decodeRequest(w, r, &req) {
			return
		}

		path, err := manager.DumpHeap(req.PID)
		if err != nil {
			sendError(w, err)
			return
		}
		server.SendJsonResponse(w, map[string]string{"dump": path})
	}
}
