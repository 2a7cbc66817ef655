package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	memoriaModel "github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/utils/config"
)

// Para su uso se debe posicionar en la carpeta scripts
// > go run . ip_memory 192.168.1.100
// > go run . max_resident 8 swap_delay 50
// > go run . ip_memory 127.0.0.1 port_memory 8002

// Carpetas de los módulos cuyos configs se actualizan.
var modules = []string{"cpu", "memoria"}

func main() {
	// Verificar que se pasen argumentos en pares: clave1 valor1 clave2 valor2 ...
	if len(os.Args) < 3 || len(os.Args)%2 != 1 {
		fmt.Println("Uso: update_config <clave_1> <valor_1> [<clave_2> <valor_2> ...]")
		fmt.Println("Ejemplo: update_config ip_memory 192.168.0.10 max_resident 8")
		return
	}

	updates := parseUpdates(os.Args[1:])

	fmt.Println("Valores a actualizar:")
	for k, v := range updates {
		fmt.Printf("  %s: %v\n", k, v)
	}

	for _, module := range modules {
		moduleConfigPath := filepath.Join("..", module, "configs")
		fmt.Printf("\nProcesando módulo: %s (en %s)\n", module, moduleConfigPath)

		err := filepath.Walk(moduleConfigPath, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				fmt.Printf("  Error al acceder %s: %v\n", path, err)
				return nil
			}
			if info.IsDir() || filepath.Ext(path) != ".json" {
				return nil
			}

			modified, err := updateFile(path, updates, module == "memoria")
			switch {
			case err != nil:
				fmt.Printf("  Error en %s: %v\n", path, err)
			case modified:
				fmt.Printf("  El archivo %s ha sido actualizado correctamente.\n", path)
			default:
				fmt.Printf("  No se encontraron claves a actualizar en %s.\n", path)
			}
			return nil
		})
		if err != nil {
			fmt.Printf("Error al buscar archivos en la carpeta %s: %v\n", moduleConfigPath, err)
		}
	}

	fmt.Println("\nProceso de actualización de configuraciones finalizado.")
}

// parseUpdates arma el mapa clave -> valor. Cada valor se intenta interpretar como JSON (números,
// booleanos); si no lo es queda como string, como pasa con las IPs.
func parseUpdates(args []string) map[string]interface{} {
	updates := make(map[string]interface{})
	for i := 0; i+1 < len(args); i += 2 {
		var parsedValue interface{}
		if err := json.Unmarshal([]byte(args[i+1]), &parsedValue); err != nil {
			parsedValue = args[i+1]
		}
		updates[args[i]] = parsedValue
	}
	return updates
}

// updateFile pisa en path solo las claves que ya existen. Con validate el resultado tiene que ser una
// configuración de memoria válida; si no lo es el archivo no se toca.
func updateFile(path string, updates map[string]interface{}, validate bool) (bool, error) {
	var data map[string]interface{}
	if err := config.LoadConfig(path, &data); err != nil {
		return false, err
	}

	modified := false
	for key, value := range updates {
		if _, ok := data[key]; ok {
			data[key] = value
			fmt.Printf("    Modificada '%s' en %s a '%v'\n", key, path, value)
			modified = true
		}
	}
	if !modified {
		return false, nil
	}

	if validate {
		raw, err := json.Marshal(data)
		if err != nil {
			return false, err
		}
		var memoryConfig memoriaModel.Config
		if err := json.Unmarshal(raw, &memoryConfig); err != nil {
			return false, fmt.Errorf("tipos inválidos: %w", err)
		}
		if err := memoryConfig.Validate(); err != nil {
			return false, fmt.Errorf("la configuración resultante es inválida: %w", err)
		}
	}

	if err := config.SaveConfig(path, data); err != nil {
		return false, err
	}
	return true, nil
}
