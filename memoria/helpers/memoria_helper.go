package helpers

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/utils/config"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/utils/log"
)

// CreateDirectory crea un directorio en el path especificado.
func CreateDirectory(dir string) error {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		slog.Error(fmt.Sprintf("Error al crear el directorio %s: %v", dir, err))
		return err
	}

	slog.Debug(fmt.Sprintf("Directorio %s creado o ya existía.", dir))
	return nil
}

// InitMemory carga la configuración, el logger y prepara los directorios que usa memoria. Corta con
// panic si la configuración es inválida.
func InitMemory(configPath string, logPath string) {
	config.InitConfig(configPath, &models.MemoryConfig)
	log.InitLogger(logPath, models.MemoryConfig.LogLevel)

	if err := models.MemoryConfig.Validate(); err != nil {
		slog.Error("Configuración de memoria inválida", "error", err)
		panic(err)
	}

	slog.Debug(fmt.Sprintf("Port Memory: %d", models.MemoryConfig.PortMemory))
	if err := CreateDirectory(models.MemoryConfig.DumpPath); err != nil {
		panic(err)
	}
	slog.Debug(fmt.Sprintf("Swap: %s", models.MemoryConfig.SwapFilePath))
}

func GetDumpName(pid uint) string {
	timestamp := time.Now().Format("20060102-150405")
	return fmt.Sprintf("%d-%s.dmp", pid, timestamp)
}
