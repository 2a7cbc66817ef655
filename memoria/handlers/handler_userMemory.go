package handlers

import (
	"net/http"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/services"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/utils/web/server"
)

func ReadMemoryHandler(manager *services.MemoryManager) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.ReadRequest
		if !decodeRequest(w, r, &req) {
			return
		}

		data, err := manager.ReadUser(req.PID, req.Address, req.Size)
		if err != nil {
			sendError(w, err)
			return
		}
		server.SendJsonResponse(w, models.ReadResponse{PID: req.PID, Data: data})
	}
}

func WriteMemoryHandler(manager *services.MemoryManager) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.WriteRequest
		if !decodeRequest(w, r, &req) {
			return
		}

		if err := manager.WriteUser(req.PID, req.Address, req.Data); err != nil {
			sendError(w, err)
			return
		}
		server.SendJsonResponse(w, "OK")
	}
}
