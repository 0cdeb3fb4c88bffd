package utils

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	environmentKeySeparatorOldConstant              = "."
	environmentKeySeparatorNewConstant              = "_"
	listSeparatorConstant                           = ","
	configurationReadErrorTemplateConstant          = "failed to read configuration: %w"
	configurationUnmarshalErrorTemplateConstant     = "failed to parse configuration: %w"
	embeddedConfigurationMergeErrorTemplateConstant = "failed to merge embedded configuration: %w"
	configurationTargetMissingMessageConstant       = "configuration target must be provided"
)

// ConfigurationLoader wraps Viper to load the embedded defaults, a configuration file, and environment overrides.
type ConfigurationLoader struct {
	configurationName         string
	configurationType         string
	environmentPrefix         string
	searchPaths               []string
	environmentKeyReplacer    *strings.Replacer
	embeddedConfiguration     []byte
	embeddedConfigurationType string
}

// LoadedConfiguration surfaces metadata about the resolved configuration.
type LoadedConfiguration struct {
	ConfigFileUsed    string
	EnvironmentPrefix string
}

// NewConfigurationLoader creates a loader that searches known paths and respects an environment prefix.
func NewConfigurationLoader(configurationName string, configurationType string, environmentPrefix string, searchPaths []string) *ConfigurationLoader {
	duplicatedSearchPaths := make([]string, 0, len(searchPaths))
	for _, searchPath := range searchPaths {
		trimmedSearchPath := strings.TrimSpace(searchPath)
		if len(trimmedSearchPath) == 0 {
			continue
		}
		duplicatedSearchPaths = append(duplicatedSearchPaths, trimmedSearchPath)
	}

	return &ConfigurationLoader{
		configurationName:      configurationName,
		configurationType:      configurationType,
		environmentPrefix:      environmentPrefix,
		searchPaths:            duplicatedSearchPaths,
		environmentKeyReplacer: strings.NewReplacer(environmentKeySeparatorOldConstant, environmentKeySeparatorNewConstant),
	}
}

// SetEmbeddedConfiguration stores configuration data merged before user-provided configuration files.
func (loader *ConfigurationLoader) SetEmbeddedConfiguration(configurationData []byte, configurationType string) {
	if loader == nil {
		return
	}

	loader.embeddedConfiguration = nil
	loader.embeddedConfigurationType = strings.TrimSpace(configurationType)

	if len(configurationData) == 0 {
		return
	}

	loader.embeddedConfiguration = append([]byte{}, configurationData...)
}

// LoadConfiguration populates targetConfiguration from embedded defaults, defaultValues, a configuration file, and the environment.
// Durations such as "30s" and comma separated lists decode into time.Duration and []string fields.
func (loader *ConfigurationLoader) LoadConfiguration(configurationFilePath string, defaultValues map[string]any, targetConfiguration any) (LoadedConfiguration, error) {
	if targetConfiguration == nil {
		return LoadedConfiguration{}, errors.New(configurationTargetMissingMessageConstant)
	}

	viperInstance := viper.New()
	viperInstance.SetConfigName(loader.configurationName)
	viperInstance.SetConfigType(loader.configurationType)

	for defaultKey, defaultValue := range defaultValues {
		viperInstance.SetDefault(defaultKey, defaultValue)
	}

	if mergeError := loader.mergeEmbeddedConfiguration(viperInstance); mergeError != nil {
		return LoadedConfiguration{}, mergeError
	}

	for _, searchPath := range loader.searchPaths {
		viperInstance.AddConfigPath(searchPath)
	}

	viperInstance.SetEnvPrefix(loader.environmentPrefix)
	viperInstance.SetEnvKeyReplacer(loader.environmentKeyReplacer)
	viperInstance.AutomaticEnv()

	trimmedConfigurationFilePath := strings.TrimSpace(configurationFilePath)
	if len(trimmedConfigurationFilePath) > 0 {
		viperInstance.SetConfigFile(trimmedConfigurationFilePath)
	}

	readError := viperInstance.MergeInConfig()
	if readError != nil {
		var notFoundError viper.ConfigFileNotFoundError
		if !errors.As(readError, &notFoundError) {
			return LoadedConfiguration{}, fmt.Errorf(configurationReadErrorTemplateConstant, readError)
		}
	}

	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(listSeparatorConstant),
	))
	if unmarshalError := viperInstance.Unmarshal(targetConfiguration, decodeHook); unmarshalError != nil {
		return LoadedConfiguration{}, fmt.Errorf(configurationUnmarshalErrorTemplateConstant, unmarshalError)
	}

	return LoadedConfiguration{
		ConfigFileUsed:    viperInstance.ConfigFileUsed(),
		EnvironmentPrefix: loader.environmentPrefix,
	}, nil
}

func (loader *ConfigurationLoader) mergeEmbeddedConfiguration(viperInstance *viper.Viper) error {
	if len(loader.embeddedConfiguration) == 0 {
		return nil
	}

	configurationType := loader.configurationType
	if len(loader.embeddedConfigurationType) > 0 {
		configurationType = loader.embeddedConfigurationType
	}

	viperInstance.SetConfigType(configurationType)
	defer viperInstance.SetConfigType(loader.configurationType)

	if mergeError := viperInstance.MergeConfig(bytes.NewReader(loader.embeddedConfiguration)); mergeError != nil {
		return fmt.Errorf(embeddedConfigurationMergeErrorTemplateConstant, mergeError)
	}
	return nil
}
