package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// InitLogger permite loguear tanto en consola como en archivo según el nivel que se le pase.
//
// Parámetros:
//   - logPath: la ubicación donde se va encontrar el archivo
//   - logLevel: nivel de logueo, este dato viene definido en el archivo de config.
//
// Ejemplo:
//
//	func main() {
//		log.InitLogger("./logs/memoria.log", "INFO")
//	}
func InitLogger(logPath string, logLevel string) {
	if dir := filepath.Dir(logPath); dir != "." {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			panic(err)
		}
	}

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0666)
	if err != nil {
		panic(err)
	}

	level, err := ConvertStringToLogLevel(logLevel)
	slog.SetDefault(NewLogger(io.MultiWriter(os.Stdout, logFile), level))

	// El warning recién se puede escribir una vez configurado el handler.
	if err != nil {
		slog.Warn(err.Error())
	}

	slog.Debug("Se ha configurado correctamente el logger y el archivo de configuración. ")
}

// NewLogger arma un logger de texto sobre cualquier writer. Los tests lo usan con un bytes.Buffer.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}

// ConvertStringToLogLevel traduce el log_level del config al tipo slog.Level.
func ConvertStringToLogLevel(levelStr string) (slog.Level, error) {
	switch levelStr {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("No existe %s, se coloca INFO por defecto. ", levelStr)
	}
}
