package utils_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/metapr/internal/utils"
)

const (
	testLoggerFactoryCaseSupportedFormatConstant   = "supported_log_level_%s_format_%s"
	testLoggerFactoryCaseUnsupportedLevelConstant  = "unsupported_log_level"
	testLoggerFactoryCaseUnsupportedFormatConstant = "unsupported_log_format"
	testLoggerFactorySubtestTemplateConstant       = "%d_%s"
	testInvalidLogLevelConstant                    = "invalid"
	testInvalidLogFormatConstant                   = "invalid"
	testLogMessageConstant                         = "logger_factory_test_message"
	testLogFileNameConstant                        = "metapr.log"
)

func TestLoggerFactoryCreateLogger(testInstance *testing.T) {
	testCases := []struct {
		name                string
		requestedLogLevel   utils.LogLevel
		requestedLogFormat  utils.LogFormat
		expectError         bool
		expectStructuredLog bool
	}{
		{
			name:                fmt.Sprintf(testLoggerFactoryCaseSupportedFormatConstant, utils.LogLevelDebug, utils.LogFormatStructured),
			requestedLogLevel:   utils.LogLevelDebug,
			requestedLogFormat:  utils.LogFormatStructured,
			expectStructuredLog: true,
		},
		{
			name:                fmt.Sprintf(testLoggerFactoryCaseSupportedFormatConstant, utils.LogLevelInfo, utils.LogFormatStructured),
			requestedLogLevel:   utils.LogLevelInfo,
			requestedLogFormat:  utils.LogFormatStructured,
			expectStructuredLog: true,
		},
		{
			name:                fmt.Sprintf(testLoggerFactoryCaseSupportedFormatConstant, utils.LogLevelInfo, utils.LogFormatConsole),
			requestedLogLevel:   utils.LogLevelInfo,
			requestedLogFormat:  utils.LogFormatConsole,
			expectStructuredLog: false,
		},
		{
			name:               testLoggerFactoryCaseUnsupportedLevelConstant,
			requestedLogLevel:  utils.LogLevel(testInvalidLogLevelConstant),
			requestedLogFormat: utils.LogFormatStructured,
			expectError:        true,
		},
		{
			name:               testLoggerFactoryCaseUnsupportedFormatConstant,
			requestedLogLevel:  utils.LogLevelInfo,
			requestedLogFormat: utils.LogFormat(testInvalidLogFormatConstant),
			expectError:        true,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testLoggerFactorySubtestTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			logFilePath := filepath.Join(testInstance.TempDir(), testLogFileNameConstant)
			loggerFactory := utils.NewLoggerFactoryWithOutputPaths([]string{logFilePath})

			logger, creationError := loggerFactory.CreateLogger(testCase.requestedLogLevel, testCase.requestedLogFormat)
			if testCase.expectError {
				require.Error(testInstance, creationError)
				require.Nil(testInstance, logger)
				return
			}

			require.NoError(testInstance, creationError)
			require.NotNil(testInstance, logger)

			logger.Info(testLogMessageConstant)
			syncError := logger.Sync()
			if syncError != nil {
				require.True(testInstance, errors.Is(syncError, syscall.ENOTSUP) || errors.Is(syncError, syscall.EINVAL))
			}

			capturedOutput, readError := os.ReadFile(logFilePath)
			require.NoError(testInstance, readError)

			trimmedOutput := bytes.TrimSpace(capturedOutput)
			require.NotEmpty(testInstance, trimmedOutput)
			require.Contains(testInstance, string(trimmedOutput), testLogMessageConstant)
			require.Equal(testInstance, testCase.expectStructuredLog, json.Valid(trimmedOutput))
		})
	}
}

func TestParseLogLevelAndFormat(testInstance *testing.T) {
	parsedLevel, levelError := utils.ParseLogLevel("  DEBUG ")
	require.NoError(testInstance, levelError)
	require.Equal(testInstance, utils.LogLevelDebug, parsedLevel)

	_, invalidLevelError := utils.ParseLogLevel(testInvalidLogLevelConstant)
	require.Error(testInstance, invalidLevelError)

	parsedFormat, formatError := utils.ParseLogFormat("Console")
	require.NoError(testInstance, formatError)
	require.Equal(testInstance, utils.LogFormatConsole, parsedFormat)

	_, invalidFormatError := utils.ParseLogFormat(testInvalidLogFormatConstant)
	require.Error(testInstance, invalidFormatError)
}
