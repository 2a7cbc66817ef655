package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
)

// InitServer levanta el servidor HTTP sobre el DefaultServeMux. Solo retorna si no se pudo escuchar en
// el puerto.
//
// Ejemplo:
//
//	func main() {
//		err := server.InitServer(models.MemoryConfig.PortMemory)
//		if err != nil {
//			panic(err)
//		}
//	}
func InitServer(port int) error {
	addr := ":" + strconv.Itoa(port)

	err := http.ListenAndServe(addr, nil)
	if err != nil {
		slog.Error("Error al escuchar en el puerto "+addr, "error", err)
	}
	return err
}

// SendJsonResponse retorna la respuesta del servidor en formato JSON con status 200.
//
// Parámetros:
//   - writer: el http.ResponseWriter con el que se escribe la respuesta HTTP
//   - data: cualquier estructura de datos, se convierte automáticamente a JSON.
func SendJsonResponse(writer http.ResponseWriter, data interface{}) {
	SendJsonWithStatus(writer, http.StatusOK, data)
}

// SendJsonWithStatus igual que SendJsonResponse pero con un status a elección.
func SendJsonWithStatus(writer http.ResponseWriter, status int, data interface{}) {
	response, err := json.Marshal(data)
	if err != nil {
		http.Error(writer, "Error al convertir datos a JSON", http.StatusInternalServerError)
		return
	}

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	writer.Write(response)
}

// ErrorResponse es el cuerpo que se devuelve ante cualquier error de negocio.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// SendJsonError escribe un ErrorResponse con el status indicado.
func SendJsonError(writer http.ResponseWriter, status int, kind string, err error) {
	SendJsonWithStatus(writer, status, ErrorResponse{Error: err.Error(), Kind: kind})
}
