package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

// DoRequest es una función genérica para realizar peticiones HTTP (GET, POST, PUT, DELETE, etc.) desde un cliente.
// Retorna la respuesta del servidor. Si el servidor responde con un status distinto de 200 se devuelve
// la respuesta (para poder leer el cuerpo del error) junto con un error.
//
// Parámetros:
//   - port: el puerto al que se hará la petición
//   - ip: la IP o dominio del servidor
//   - metodo: metodo HTTP
//   - query: parte final de la URL
//   - bodies ...[]byte: (opcional) body del request, puede pasarse vacío.
//
// Ejemplo:
//
//	response, err := client.DoRequest(8002, "127.0.0.1", "GET", "memoria/swap")
//	if err != nil {
//		slog.Error(fmt.Sprintf("Ocurrió un error: %v", err))
//		return
//	}
//	defer response.Body.Close()
func DoRequest(port int, ip string, metodo string, query string, bodies ...[]byte) (*http.Response, error) {
	url := fmt.Sprintf("http://%s:%d/%s", ip, port, query)

	req, err := http.NewRequest(metodo, url, ifBody(bodies...))
	if err != nil {
		slog.Error(fmt.Sprintf("error creando request a ip: %s puerto: %d", ip, port))
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	respuesta, err := httpClient.Do(req)
	if err != nil {
		slog.Error(fmt.Sprintf("error enviando request a ip: %s puerto: %d - %v", ip, port, err))
		return nil, err
	}

	if respuesta.StatusCode != http.StatusOK {
		errorMsg := fmt.Errorf("Status Error: %d %s", respuesta.StatusCode, http.StatusText(respuesta.StatusCode))
		slog.Error(errorMsg.Error(), "query", query)
		return respuesta, errorMsg
	}

	return respuesta, nil
}

// PostJson serializa body, lo envía por POST y decodifica la respuesta en out (si out no es nil).
// Ante un status de error el cuerpo se agrega al mensaje de error.
func PostJson(port int, ip string, query string, body interface{}, out interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("error serializando request para %s: %w", query, err)
	}

	resp, err := DoRequest(port, ip, http.MethodPost, query, jsonBody)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			detail, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("%w: %s", err, bytes.TrimSpace(detail))
		}
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decodificando respuesta de %s: %w", query, err)
	}
	return nil
}

func ifBody(bodies ...[]byte) io.Reader {
	if len(bodies) == 0 || bodies[0] == nil {
		return nil
	}
	return bytes.NewBuffer(bodies[0])
}
