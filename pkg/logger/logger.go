package logger

import (
	"io"
	"os"

	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the process-wide logger. Until Init is called it writes JSON to
// stdout only; Init adds a size-rotated log file.
var Log = slog.New(slog.NewJSONHandler(os.Stdout, nil))

func Init(logFilePath string) {
	var writer io.Writer = os.Stdout
	if logFilePath != "" {
		rotator := &lumberjack.Logger{
			Filename:   logFilePath,
			MaxSize:    10, // MB
			MaxBackups: 3,
			Compress:   false,
		}
		writer = io.MultiWriter(os.Stdout, rotator)
	}
	Log = slog.New(slog.NewJSONHandler(writer, nil))
	slog.SetDefault(Log)
}
