package utils

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	logLevelDebugStringConstant          = "debug"
	logLevelInfoStringConstant           = "info"
	logLevelWarnStringConstant           = "warn"
	logLevelErrorStringConstant          = "error"
	logFormatStructuredStringConstant    = "structured"
	logFormatConsoleStringConstant       = "console"
	jsonZapEncodingStringConstant        = "json"
	consoleZapEncodingStringConstant     = "console"
	standardErrorOutputPathConstant      = "stderr"
	timestampEncoderKeyConstant          = "timestamp"
	unsupportedLogLevelTemplateConstant  = "unsupported log level: %s"
	unsupportedLogFormatTemplateConstant = "unsupported log format: %s"
)

// LogLevel enumerates supported logging granularities.
type LogLevel string

// Exported log level constants for reuse across packages.
const (
	LogLevelDebug LogLevel = LogLevel(logLevelDebugStringConstant)
	LogLevelInfo  LogLevel = LogLevel(logLevelInfoStringConstant)
	LogLevelWarn  LogLevel = LogLevel(logLevelWarnStringConstant)
	LogLevelError LogLevel = LogLevel(logLevelErrorStringConstant)
)

// LogFormat enumerates supported logger output encodings.
type LogFormat string

// Exported log format constants for reuse across packages.
const (
	LogFormatStructured LogFormat = LogFormat(logFormatStructuredStringConstant)
	LogFormatConsole    LogFormat = LogFormat(logFormatConsoleStringConstant)
)

var logLevelMapping = map[LogLevel]zapcore.Level{
	LogLevelDebug: zapcore.DebugLevel,
	LogLevelInfo:  zapcore.InfoLevel,
	LogLevelWarn:  zapcore.WarnLevel,
	LogLevelError: zapcore.ErrorLevel,
}

var logFormatEncodingMapping = map[LogFormat]string{
	LogFormatStructured: jsonZapEncodingStringConstant,
	LogFormatConsole:    consoleZapEncodingStringConstant,
}

// LoggerFactory builds zap.Logger instances with consistent configuration.
type LoggerFactory struct {
	outputPaths []string
}

// NewLoggerFactory constructs a logger factory writing to standard error.
func NewLoggerFactory() *LoggerFactory {
	return &LoggerFactory{outputPaths: []string{standardErrorOutputPathConstant}}
}

// NewLoggerFactoryWithOutputPaths constructs a logger factory writing to the provided zap sink paths.
func NewLoggerFactoryWithOutputPaths(outputPaths []string) *LoggerFactory {
	if len(outputPaths) == 0 {
		return NewLoggerFactory()
	}
	duplicatedOutputPaths := make([]string, len(outputPaths))
	copy(duplicatedOutputPaths, outputPaths)
	return &LoggerFactory{outputPaths: duplicatedOutputPaths}
}

// ParseLogLevel normalizes textual log level values.
func ParseLogLevel(logLevelValue string) (LogLevel, error) {
	candidateLevel := LogLevel(strings.ToLower(strings.TrimSpace(logLevelValue)))
	if _, levelExists := logLevelMapping[candidateLevel]; !levelExists {
		return "", fmt.Errorf(unsupportedLogLevelTemplateConstant, logLevelValue)
	}
	return candidateLevel, nil
}

// ParseLogFormat normalizes textual log format values.
func ParseLogFormat(logFormatValue string) (LogFormat, error) {
	candidateFormat := LogFormat(strings.ToLower(strings.TrimSpace(logFormatValue)))
	if _, formatExists := logFormatEncodingMapping[candidateFormat]; !formatExists {
		return "", fmt.Errorf(unsupportedLogFormatTemplateConstant, logFormatValue)
	}
	return candidateFormat, nil
}

// CreateLogger produces a zap.Logger honoring the requested log level and format.
func (factory *LoggerFactory) CreateLogger(requestedLogLevel LogLevel, requestedLogFormat LogFormat) (*zap.Logger, error) {
	zapLogLevel, levelExists := logLevelMapping[requestedLogLevel]
	if !levelExists {
		return nil, fmt.Errorf(unsupportedLogLevelTemplateConstant, requestedLogLevel)
	}

	encoding, formatExists := logFormatEncodingMapping[requestedLogFormat]
	if !formatExists {
		return nil, fmt.Errorf(unsupportedLogFormatTemplateConstant, requestedLogFormat)
	}

	configuration := zap.NewProductionConfig()
	configuration.Level = zap.NewAtomicLevelAt(zapLogLevel)
	configuration.Encoding = encoding
	configuration.OutputPaths = append([]string{}, factory.outputPaths...)
	configuration.EncoderConfig.TimeKey = timestampEncoderKeyConstant
	configuration.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if requestedLogFormat == LogFormatConsole {
		configuration.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		configuration.DisableStacktrace = true
	}

	logger, buildError := configuration.Build()
	if buildError != nil {
		return nil, buildError
	}

	return logger, nil
}
