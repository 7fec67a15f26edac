package logging

import (
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// LogLevel is a logger verbosity level.
type LogLevel int

const (
	TRACE LogLevel = iota
	DEBUG
	INFO
	WARN
	ERROR
)

func (l LogLevel) String() string {
	switch l {
	case TRACE:
		return "TRACE"
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger writes every level to a timestamped file and INFO-and-above
// to the console.
type Logger struct {
	consoleLogger *log.Logger
	fileLogger    *log.Logger
	file          *os.File
}

var globalLogger *Logger

// InitLogger opens logs/<component>_<timestamp>.log and installs it
// as the package-level logger used by LogInfo/LogError/etc.
func InitLogger(component string) error {
	if err := os.MkdirAll("logs", 0755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := filepath.Join("logs", fmt.Sprintf("%s_%s.log", component, timestamp))

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	globalLogger = &Logger{
		consoleLogger: log.New(os.Stdout, "", log.LstdFlags),
		fileLogger:    log.New(file, "", log.LstdFlags),
		file:          file,
	}
	return nil
}

func CloseLogger() {
	if globalLogger != nil && globalLogger.file != nil {
		globalLogger.file.Close()
	}
}

func LogTrace(format string, args ...interface{}) { logMessage(TRACE, format, args...) }
func LogDebug(format string, args ...interface{}) { logMessage(DEBUG, format, args...) }
func LogInfo(format string, args ...interface{})  { logMessage(INFO, format, args...) }
func LogWarn(format string, args ...interface{})  { logMessage(WARN, format, args...) }
func LogError(format string, args ...interface{}) { logMessage(ERROR, format, args...) }

func logMessage(level LogLevel, format string, args ...interface{}) {
	if globalLogger == nil {
		return
	}
	message := fmt.Sprintf("[%s] %s", level.String(), fmt.Sprintf(format, args...))
	globalLogger.fileLogger.Println(message)
	if level >= INFO {
		globalLogger.consoleLogger.Println(message)
	}
}

// LogPacket logs a decoded packet's type and a hex dump of its payload
// at DEBUG, for wire-format troubleshooting.
func LogPacket(peer, direction string, typ interface{}, payload []byte) {
	LogDebug("=== %s packet %s: %v (%d bytes) ===", direction, peer, typ, len(payload))
	if len(payload) > 0 {
		LogDebug("%s", HexDump(payload))
	}
}

// HexDump renders up to 256 bytes of data as a hex dump.
func HexDump(data []byte) string {
	if len(data) == 0 {
		return "no data"
	}
	size := len(data)
	if size > 256 {
		size = 256
	}
	return hex.Dump(data[:size])
}

// LogProtocolError logs a dropped malformed packet (spec §7: protocol
// violations are silently dropped by the caller, but still worth a
// debug-level record for diagnosis).
func LogProtocolError(peer string, err error, data []byte) {
	LogDebug("protocol error from %s: %v", peer, err)
	if len(data) > 0 {
		LogDebug("%s", HexDump(data))
	}
}

// LogEntityMovement traces one entity's simulated displacement for one
// tick.
func LogEntityMovement(entityID uint64, from, to [3]float64) {
	LogTrace("entity %d moved (%.2f,%.2f,%.2f) -> (%.2f,%.2f,%.2f)",
		entityID, from[0], from[1], from[2], to[0], to[1], to[2])
}

// LogChunkRequest traces a chunk becoming due for streaming to a peer.
func LogChunkRequest(peer string, cx, cy, cz int) {
	LogDebug("chunk due for %s: (%d,%d,%d)", peer, cx, cy, cz)
}

// LogChunkSent traces a completed outbound chunk transmission.
func LogChunkSent(peer string, cx, cy, cz int, byteCount int) {
	LogDebug("chunk sent to %s: (%d,%d,%d), %d bytes", peer, cx, cy, cz, byteCount)
}
