package handlers

import (
	"net/http"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/utils/web/server"
)

// HandshakeHandler se usa para chequear la conexión al servidor
//
// Parámetros:
//   - message: el mensaje que querés devolver en la respuesta
//
// Ejemplo:
//
//	func main() {
//		http.HandleFunc("GET /", handlers.HandshakeHandler("Bienvenido al módulo de Memoria"))
//	}
func HandshakeHandler(message string) func(http.ResponseWriter, *http.Request) {
	return func(writer http.ResponseWriter, request *http.Request) {
		server.SendJsonResponse(writer, message)
	}
}
