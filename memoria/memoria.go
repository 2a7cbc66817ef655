package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	memoryHandler "github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/handlers"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/helpers"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/services"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/utils/web/handlers"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/utils/web/server"
)

const (
	//NO borrar el comentario de ConfigPath
	ConfigPath = "memoria/configs/memoria.json" //"./configs/memoria.json"
	LogPath    = "./logs/memoria.log"           //"./memoria.log"
)

func main() {
	configPath := ConfigPath
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	helpers.InitMemory(configPath, LogPath)
	cfg := *models.MemoryConfig

	if err := helpers.CreateDirectory(filepath.Dir(cfg.SwapFilePath)); err != nil {
		panic(err)
	}
	device, err := services.OpenFileBlockDevice(cfg.SwapFilePath, cfg.BlockSize, cfg.PsaStart, cfg.PsaSize,
		time.Duration(cfg.SwapDelay)*time.Millisecond)
	if err != nil {
		slog.Error("No se pudo abrir el archivo de swap", "path", cfg.SwapFilePath, "error", err)
		panic(err)
	}

	manager, err := services.NewMemoryManager(cfg, device, nil)
	if err != nil {
		device.Close()
		slog.Error("No se pudo inicializar memoria", "error", err)
		panic(err)
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-shutdown
		slog.Debug("Señal recibida, cerrando módulo Memoria", "signal", sig)

		// Libera los procesos y cierra el swapfile
		if err := manager.Close(); err != nil {
			slog.Error("Error al cerrar memoria", "error", err)
			os.Exit(1)
		}
		os.Exit(0)
	}()

	http.HandleFunc("GET /", handlers.HandshakeHandler("Bienvenido al módulo de Memoria"))
	http.HandleFunc("GET /memoria", handlers.HandshakeHandler("Memoria en funcionamiento 🚀"))
	memoryHandler.Register(http.DefaultServeMux, manager)

	slog.Info(fmt.Sprintf("Memoria escuchando en el puerto %d", cfg.PortMemory))
	if err := server.InitServer(cfg.PortMemory); err != nil {
		slog.Error(fmt.Sprintf("error initializing server: %v", err))
		manager.Close()
		panic(err)
	}
}
