// utils/safelog.go
// ============================================================================
// SAFE LOGGING - masks personal data in production
// ============================================================================
// Loggers are zap loggers. In production, emails and user ids are masked
// before they reach a log line.
// ============================================================================

package utils

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ============================================================================
// CONFIGURATION
// ============================================================================

// IsProduction switches masking on. NewLogger sets it.
var IsProduction bool

// NewLogger builds the process logger. Production uses JSON output, anything
// else the console encoder.
func NewLogger(level string, production bool) (*zap.Logger, error) {
	IsProduction = production

	var cfg zap.Config
	if production {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "WARN", "WARNING":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// ============================================================================
// MASKING
// ============================================================================

var (
	emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	uuidRegex  = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
)

// MaskString hides emails and shortens UUIDs found in free text.
func MaskString(input string) string {
	if !IsProduction {
		return input
	}
	result := emailRegex.ReplaceAllString(input, "***@***.***")
	return uuidRegex.ReplaceAllStringFunc(result, shortenID)
}

// MaskID keeps the first 8 characters of an id.
func MaskID(id string) string {
	if !IsProduction {
		return id
	}
	return shortenID(id)
}

func MaskEmail(email string) string {
	if !IsProduction {
		return email
	}
	return "***@***.***"
}

func shortenID(id string) string {
	if len(id) <= 8 {
		return "***"
	}
	return id[:8] + "..."
}

// ============================================================================
// DOMAIN LOG HELPERS
// ============================================================================

// LogAuthAction logs a signup or login attempt.
func LogAuthAction(logger *zap.Logger, action, email string, success bool) {
	status := "SUCCESS"
	if !success {
		status = "FAILED"
	}
	logger.Info("auth",
		zap.String("action", action),
		zap.String("email", MaskEmail(email)),
		zap.String("status", status))
}

// LogTripAction logs a state change on a trip.
func LogTripAction(logger *zap.Logger, action, tripID, userID string) {
	logger.Info("trip",
		zap.String("action", action),
		zap.String("trip_id", MaskID(tripID)),
		zap.String("user_id", MaskID(userID)))
}

// LogAPIRequest logs one HTTP request, ids in the path masked.
func LogAPIRequest(logger *zap.Logger, method, path, userID string, status int, fields ...zap.Field) {
	fields = append([]zap.Field{
		zap.String("method", method),
		zap.String("path", MaskString(path)),
		zap.String("user_id", MaskID(userID)),
		zap.Int("status", status),
	}, fields...)
	switch {
	case status >= 500:
		logger.Error("request", fields...)
	case status >= 400:
		logger.Warn("request", fields...)
	default:
		logger.Info("request", fields...)
	}
}

func GetEnvMode() string {
	if IsProduction {
		return "production"
	}
	return "development"
}

// LogStartup logs the boot banner.
func LogStartup(logger *zap.Logger, appName, version, port string) {
	logger.Info(appName+" starting",
		zap.String("version", version),
		zap.String("mode", GetEnvMode()),
		zap.String("port", port))
	if IsProduction {
		logger.Info("production mode: personal data is masked in logs")
	}
}
