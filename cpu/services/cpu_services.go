package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/cpu/models"
	memoriaModel "github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/utils/web/client"
)

// RequestMemoryConfig pide a memoria el tamaño de página y los límites del heap.
func RequestMemoryConfig(cpuConfig *models.Config) error {
	resp, err := client.DoRequest(cpuConfig.PortMemory, cpuConfig.IpMemory, "GET", "config/memoria")
	if err != nil {
		slog.Error("Error solicitando configuración de Memoria")
		return err
	}
	defer resp.Body.Close()

	var config models.MemoryConfig
	if err := json.NewDecoder(resp.Body).Decode(&config); err != nil {
		slog.Error("Error decodificando configuración de Memoria")
		return err
	}

	models.MemConfig = &config
	slog.Debug("MemConfig cargada", slog.Any("config", models.MemConfig))
	return nil
}

// ExecuteInstruction manda la instrucción a memoria. Devuelve los bytes leídos en un READ.
func ExecuteInstruction(inst models.Instruction, cpuConfig *models.Config) ([]byte, error) {
	port, ip := cpuConfig.PortMemory, cpuConfig.IpMemory
	slog.Info(fmt.Sprintf("## PID: %d - Ejecutando: %s", inst.PID, inst.Op), "linea", inst.Line)

	switch inst.Op {
	case models.OpProcess:
		request := memoriaModel.CreateProcessRequest{PID: inst.PID, Path: inst.Path, HeapStart: inst.HeapStart}
		return nil, client.PostJson(port, ip, "memoria/proceso", request, nil)

	case models.OpSbrk:
		var response memoriaModel.SbrkResponse
		request := memoriaModel.SbrkRequest{PID: inst.PID, Pages: inst.Pages}
		if err := client.PostJson(port, ip, "memoria/sbrk", request, &response); err != nil {
			return nil, err
		}
		slog.Debug("Heap extendido", "pid", inst.PID, "heap_end", fmt.Sprintf("0x%x", response.HeapEnd))
		return nil, nil

	case models.OpRead:
		var response memoriaModel.ReadResponse
		request := memoriaModel.ReadRequest{PID: inst.PID, Address: inst.Address, Size: inst.Size}
		if err := client.PostJson(port, ip, "memoria/leer", request, &response); err != nil {
			return nil, err
		}
		slog.Info(fmt.Sprintf("PID: %d - Acción: LEER - Dirección: 0x%x - Valor: %q", inst.PID, inst.Address, response.Data))
		return response.Data, nil

	case models.OpWrite:
		request := memoriaModel.WriteRequest{PID: inst.PID, Address: inst.Address, Data: inst.Data}
		if err := client.PostJson(port, ip, "memoria/escribir", request, nil); err != nil {
			return nil, err
		}
		slog.Info(fmt.Sprintf("PID: %d - Acción: ESCRIBIR - Dirección: 0x%x - Valor: %q", inst.PID, inst.Address, inst.Data))
		return nil, nil

	case models.OpFault:
		var response memoriaModel.FaultResponse
		request := memoriaModel.FaultRequest{PID: inst.PID, Address: inst.Address}
		if err := client.PostJson(port, ip, "memoria/fault", request, &response); err != nil {
			return nil, err
		}
		if response.Error != "" {
			return nil, fmt.Errorf("fault fatal (%s): %s", response.Kind, response.Error)
		}
		return nil, nil

	case models.OpDump:
		return nil, client.PostJson(port, ip, "memoria/dump", memoriaModel.PIDRequest{PID: inst.PID}, nil)

	case models.OpExit:
		return nil, client.PostJson(port, ip, "memoria/finalizar", memoriaModel.PIDRequest{PID: inst.PID}, nil)
	}

	return nil, fmt.Errorf("%w: %s", models.ErrInvalidInstruction, inst.Op)
}

// RunScript ejecuta el script entero. Un error en una instrucción no corta la ejecución: los errores se
// loguean y se devuelven todos juntos al final.
func RunScript(r io.Reader, cpuConfig *models.Config) error {
	instructions, err := ParseScript(r)
	if err != nil {
		return err
	}

	var errs []error
	for _, inst := range instructions {
		if _, err := ExecuteInstruction(inst, cpuConfig); err != nil {
			slog.Error(fmt.Sprintf("## PID: %d - Falló %s", inst.PID, inst.Op), "linea", inst.Line, "error", err)
			errs = append(errs, fmt.Errorf("línea %d: %w", inst.Line, err))
		}
	}
	slog.Info("Script finalizado", "instrucciones", len(instructions), "errores", len(errs))
	return errors.Join(errs...)
}
