package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/metapr/internal/codemeta"
	"github.com/temirov/metapr/internal/utils"
	"github.com/temirov/metapr/internal/utils/flags"
	pathutils "github.com/temirov/metapr/internal/utils/path"
)

const (
	applicationNameConstant                 = "metapr"
	applicationShortDescriptionConstant     = "Propose codemeta.json files to GitHub repositories"
	applicationLongDescriptionConstant      = "metapr reads a manifest of JSON metadata documents and opens pull requests that add each document as codemeta.json to the GitHub repository it describes."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level"
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format"
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	environmentPrefixConstant               = "METAPR"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	rootCommandDebugMessageConstant         = "metapr CLI diagnostics"
	logFieldCommandNameConstant             = "command_name"
	logFieldArgumentsConstant               = "arguments"
	loggerNotInitializedMessageConstant     = "logger not initialized"
	defaultConfigurationSearchPathConstant  = "."
	userConfigurationDirectoryConstant      = "~/.metapr"
	toolsConfigurationKeyConstant           = "tools"
	publishConfigurationKeyConstant         = toolsConfigurationKeyConstant + ".publish"
	versionTemplateConstant                 = "{{.Name}} version: {{.Version}}\n"
)

// Version is the application version reported by --version. Release builds override it with -ldflags.
var Version = "dev"

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Tools  ApplicationToolsConfiguration  `mapstructure:"tools"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationToolsConfiguration holds configuration for CLI subcommands.
type ApplicationToolsConfiguration struct {
	Publish codemeta.Configuration `mapstructure:"publish"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	configurationFilePath  string
	logLevelFlagValue      string
	logFormatFlagValue     string
	commandContextAccessor utils.CommandContextAccessor
	runIdentifierGenerator func() string
	homeExpander           *pathutils.HomeExpander
	arguments              []string
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	homeExpander := pathutils.NewHomeExpander()
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		configurationSearchPaths(homeExpander),
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader:    configurationLoader,
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
		runIdentifierGenerator: uuid.NewString,
		homeExpander:           homeExpander,
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetVersionTemplate(versionTemplateConstant)
	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(
		&application.logLevelFlagValue,
		logLevelFlagNameConstant,
		"",
		flags.FormatChoiceUsage(string(utils.LogLevelInfo), []string{
			string(utils.LogLevelDebug),
			string(utils.LogLevelInfo),
			string(utils.LogLevelWarn),
			string(utils.LogLevelError),
		}, logLevelFlagUsageConstant),
	)
	cobraCommand.PersistentFlags().StringVar(
		&application.logFormatFlagValue,
		logFormatFlagNameConstant,
		"",
		flags.FormatChoiceUsage(string(utils.LogFormatStructured), []string{
			string(utils.LogFormatStructured),
			string(utils.LogFormatConsole),
		}, logFormatFlagUsageConstant),
	)

	publishBuilder := codemeta.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConfigurationProvider: func() codemeta.Configuration {
			return application.configuration.Tools.Publish
		},
	}
	publishCommand, publishBuildError := publishBuilder.Build()
	if publishBuildError == nil {
		cobraCommand.AddCommand(publishCommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
// SIGINT and SIGTERM cancel the command context so an in-flight run stops dispatching items.
func (application *Application) Execute() error {
	signalContext, stopSignals := signal.NotifyContext(application.rootCommand.Context(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	commandArguments := application.arguments
	if commandArguments == nil {
		commandArguments = os.Args[1:]
	}
	application.rootCommand.SetArgs(flags.NormalizeToggleArguments(commandArguments))

	executionError := application.rootCommand.ExecuteContext(signalContext)
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func configurationSearchPaths(homeExpander *pathutils.HomeExpander) []string {
	searchPaths := []string{defaultConfigurationSearchPathConstant}
	if userDirectory := homeExpander.Expand(userConfigurationDirectoryConstant); userDirectory != userConfigurationDirectoryConstant {
		searchPaths = append(searchPaths, userDirectory)
	}
	return searchPaths
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatStructured),
	}
	for configurationKey, configurationValue := range codemeta.DefaultConfigurationValues(publishConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}

	configurationFilePath := application.homeExpander.Expand(application.configurationFilePath)
	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logLevel, logLevelError := utils.ParseLogLevel(application.configuration.Common.LogLevel)
	if logLevelError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, logLevelError)
	}
	logFormat, logFormatError := utils.ParseLogFormat(application.configuration.Common.LogFormat)
	if logFormatError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, logFormatError)
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(logLevel, logFormat)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	if command != nil {
		executionContext := command.Context()
		if executionContext == nil {
			executionContext = context.Background()
		}
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
			executionContext,
			application.configurationMetadata.ConfigFileUsed,
		)
		updatedContext = application.commandContextAccessor.WithRunIdentifier(updatedContext, application.runIdentifierGenerator())
		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	application.logger.Debug(
		rootCommandDebugMessageConstant,
		zap.String(logFieldCommandNameConstant, command.Name()),
		zap.Strings(logFieldArgumentsConstant, arguments),
	)

	return command.Help()
}

func (application *Application) flushLogger() error {
	if syncError := application.syncLoggerInstance(application.logger); syncError != nil {
		return syncError
	}
	return nil
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
