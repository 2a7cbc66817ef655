package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/cpu/models"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/cpu/services"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/utils/config"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/utils/log"
)

const (
	//NO borrar el comentario de ConfigPath
	ConfigPath = "cpu/configs/cpu.json" //"./configs/cpu.json"
	LogPath    = "./logs/cpu.log"
)

func main() {
	config.InitConfig(ConfigPath, &models.CpuConfig)
	log.InitLogger(LogPath, models.CpuConfig.LogLevel)

	scriptPath := models.CpuConfig.ScriptPath
	if len(os.Args) > 1 {
		scriptPath = os.Args[1]
	}
	slog.Debug(fmt.Sprintf("Memoria en %s:%d", models.CpuConfig.IpMemory, models.CpuConfig.PortMemory))

	if err := run(scriptPath); err != nil {
		slog.Error("La CPU terminó con errores", "error", err)
		os.Exit(1)
	}
}

func run(scriptPath string) error {
	if err := services.RequestMemoryConfig(models.CpuConfig); err != nil {
		return fmt.Errorf("no se pudo conectar con memoria: %w", err)
	}

	script, err := os.Open(scriptPath)
	if err != nil {
		return fmt.Errorf("no se pudo abrir el script %s: %w", scriptPath, err)
	}
	defer script.Close()

	return services.RunScript(script, models.CpuConfig)
}
