package flags_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/metapr/internal/utils/flags"
)

func TestFormatChoiceUsage(testInstance *testing.T) {
	testCases := []struct {
		name           string
		defaultChoice  string
		choices        []string
		description    string
		expectedOutput string
	}{
		{
			name:           "default_first",
			defaultChoice:  "info",
			choices:        []string{"info", "debug"},
			description:    "Log level.",
			expectedOutput: "`<INFO|debug>` Log level.",
		},
		{
			name:           "default_last",
			defaultChoice:  "console",
			choices:        []string{"structured", "console"},
			description:    "Log format.",
			expectedOutput: "`<structured|CONSOLE>` Log format.",
		},
		{
			name:           "empty_description",
			defaultChoice:  "warn",
			choices:        []string{"warn", "error"},
			expectedOutput: "`<WARN|error>`",
		},
		{
			name:           "duplicates_and_blanks_dropped",
			defaultChoice:  "error",
			choices:        []string{" error ", "ERROR", "", "debug"},
			description:    "Pick one.",
			expectedOutput: "`<ERROR|debug>` Pick one.",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			require.Equal(subTest, testCase.expectedOutput, flags.FormatChoiceUsage(testCase.defaultChoice, testCase.choices, testCase.description))
		})
	}
}
