package flags

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/pflag"
)

const (
	toggleTrueValueConstant          = "true"
	toggleFalseValueConstant         = "false"
	toggleTypeConstant               = "bool"
	toggleParseErrorTemplateConstant = "invalid toggle value %q"
	toggleTruePlaceholderConstant    = "<YES|no>"
	toggleFalsePlaceholderConstant   = "<yes|NO>"
	toggleUsageEmptyTemplateConstant = "`%s`"
	toggleUsageFullTemplateConstant  = "`%s` %s"
	longFlagPrefixConstant           = "--"
	flagValueSeparatorConstant       = "="
)

var (
	toggleLiterals = map[string]bool{
		"true":  true,
		"yes":   true,
		"on":    true,
		"1":     true,
		"t":     true,
		"y":     true,
		"false": false,
		"no":    false,
		"off":   false,
		"0":     false,
		"f":     false,
		"n":     false,
	}

	toggleRegistryMutex sync.RWMutex
	toggleFlagNames     = map[string]struct{}{}
)

// AddToggleFlag registers a boolean flag that also accepts yes/no, on/off and 1/0.
// A bare "--name" sets the flag to true. Use NormalizeToggleArguments so "--name no" parses as a value.
func AddToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, defaultValue bool, usage string) {
	if flagSet == nil || len(name) == 0 {
		return
	}

	flagSet.Var(newToggleValue(defaultValue, target), name, formatToggleUsage(usage, defaultValue))
	if registeredFlag := flagSet.Lookup(name); registeredFlag != nil {
		registeredFlag.NoOptDefVal = toggleTrueValueConstant
	}

	toggleRegistryMutex.Lock()
	defer toggleRegistryMutex.Unlock()
	toggleFlagNames[name] = struct{}{}
}

// NormalizeToggleArguments joins "--toggle value" into "--toggle=value" for registered toggle flags.
// Arguments after "--" are left untouched. The result is never nil.
func NormalizeToggleArguments(arguments []string) []string {
	normalized := make([]string, 0, len(arguments))
	for argumentIndex := 0; argumentIndex < len(arguments); argumentIndex++ {
		currentArgument := arguments[argumentIndex]
		if currentArgument == longFlagPrefixConstant {
			normalized = append(normalized, arguments[argumentIndex:]...)
			break
		}

		if argumentIndex+1 < len(arguments) && isDetachedToggle(currentArgument) && isToggleLiteral(arguments[argumentIndex+1]) {
			normalized = append(normalized, currentArgument+flagValueSeparatorConstant+arguments[argumentIndex+1])
			argumentIndex++
			continue
		}

		normalized = append(normalized, currentArgument)
	}
	return normalized
}

func isDetachedToggle(argument string) bool {
	if !strings.HasPrefix(argument, longFlagPrefixConstant) || strings.Contains(argument, flagValueSeparatorConstant) {
		return false
	}
	flagName := strings.TrimPrefix(argument, longFlagPrefixConstant)

	toggleRegistryMutex.RLock()
	defer toggleRegistryMutex.RUnlock()
	_, registered := toggleFlagNames[flagName]
	return registered
}

func isToggleLiteral(value string) bool {
	_, known := toggleLiterals[strings.ToLower(strings.TrimSpace(value))]
	return known
}

func formatToggleUsage(description string, defaultValue bool) string {
	placeholder := toggleFalsePlaceholderConstant
	if defaultValue {
		placeholder = toggleTruePlaceholderConstant
	}
	trimmedDescription := strings.TrimSpace(description)
	if len(trimmedDescription) == 0 {
		return fmt.Sprintf(toggleUsageEmptyTemplateConstant, placeholder)
	}
	return fmt.Sprintf(toggleUsageFullTemplateConstant, placeholder, trimmedDescription)
}

type toggleValue struct {
	currentValue bool
	target       *bool
}

func newToggleValue(defaultValue bool, target *bool) *toggleValue {
	if target != nil {
		*target = defaultValue
	}
	return &toggleValue{currentValue: defaultValue, target: target}
}

func (value *toggleValue) Set(rawValue string) error {
	trimmedValue := strings.ToLower(strings.TrimSpace(rawValue))
	if len(trimmedValue) == 0 {
		trimmedValue = toggleTrueValueConstant
	}
	parsedValue, known := toggleLiterals[trimmedValue]
	if !known {
		return fmt.Errorf(toggleParseErrorTemplateConstant, rawValue)
	}

	value.currentValue = parsedValue
	if value.target != nil {
		*value.target = parsedValue
	}
	return nil
}

func (value *toggleValue) String() string {
	if value != nil && value.currentValue {
		return toggleTrueValueConstant
	}
	return toggleFalseValueConstant
}

func (value *toggleValue) Type() string {
	return toggleTypeConstant
}
