package flags

import (
	"fmt"
	"strings"
)

const (
	choicePlaceholderPrefixConstant  = "<"
	choicePlaceholderSuffixConstant  = ">"
	choiceSeparatorConstant          = "|"
	choiceUsageEmptyTemplateConstant = "`%s`"
	choiceUsageFullTemplateConstant  = "`%s` %s"
)

// FormatChoiceUsage renders "`<a|B|c>` description" where the default choice is upper-cased.
// Blank and duplicate choices are dropped; comparison ignores case.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))
	displayedChoices := make([]string, 0, len(choices))
	seenChoices := make(map[string]struct{}, len(choices))

	for _, choice := range choices {
		trimmedChoice := strings.TrimSpace(choice)
		normalizedChoice := strings.ToLower(trimmedChoice)
		if len(normalizedChoice) == 0 {
			continue
		}
		if _, seen := seenChoices[normalizedChoice]; seen {
			continue
		}
		seenChoices[normalizedChoice] = struct{}{}

		if normalizedChoice == normalizedDefault {
			trimmedChoice = strings.ToUpper(trimmedChoice)
		}
		displayedChoices = append(displayedChoices, trimmedChoice)
	}

	placeholder := choicePlaceholderPrefixConstant + strings.Join(displayedChoices, choiceSeparatorConstant) + choicePlaceholderSuffixConstant
	trimmedDescription := strings.TrimSpace(description)
	if len(trimmedDescription) == 0 {
		return fmt.Sprintf(choiceUsageEmptyTemplateConstant, placeholder)
	}
	return fmt.Sprintf(choiceUsageFullTemplateConstant, placeholder, trimmedDescription)
}
