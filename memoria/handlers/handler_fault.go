package handlers

import (
	"net/http"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/services"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/utils/web/server"
)

// PageFaultHandler recibe un fault ya detectado por la CPU. Un fault fatal se responde con 200 y el
// resultado: el fault se atendió, lo que terminó fue el proceso.
func PageFaultHandler(manager *services.MemoryManager) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.FaultRequest
		if !decodeRequest(w, r, &req) {
			return
		}

		result := manager.HandleFault(req.PID, req.Address)
		response := models.FaultResponse{
			PID:     req.PID,
			Address: req.Address,
			Outcome: result.Outcome.String(),
			Kind:    result.Kind(),
		}
		if result.Err != nil {
			response.Error = result.Err.Error()
		}
		server.SendJsonResponse(w, response)
	}
}
