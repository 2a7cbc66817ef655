package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// InitConfig lee el archivo de configuración y carga sus valores en config. Si el archivo no existe o
// no es un JSON válido el módulo no puede arrancar, así que se corta con panic.
//
// Parámetros:
//   - filePath: ubicación donde se encuentra el archivo de configuración
//   - config: puntero a cualquier estructura
//
// Ejemplo:
//
//	func main() {
//		config.InitConfig("memoria/configs/memoria.json", &models.MemoryConfig)
//	}
func InitConfig(filePath string, config interface{}) {
	if err := LoadConfig(filePath, config); err != nil {
		panic(fmt.Errorf("error al configurar el archivo %s: %w", filePath, err))
	}
}

// LoadConfig es la variante sin panic de InitConfig, pensada para herramientas y tests.
func LoadConfig(filePath string, config interface{}) error {
	configFile, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer configFile.Close()

	jsonParser := json.NewDecoder(configFile)
	if err := jsonParser.Decode(config); err != nil {
		return fmt.Errorf("json inválido en %s: %w", filePath, err)
	}

	return nil
}

// SaveConfig escribe config en filePath con indentación, pisando el contenido anterior.
func SaveConfig(filePath string, config interface{}) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}
