// Package utils exposes reusable helpers consumed by the metapr commands.
//
// It houses ConfigurationLoader, which layers the embedded defaults, an
// optional configuration file, and METAPR_* environment variables through
// Viper, and LoggerFactory, which builds zap loggers for the requested level
// and encoding. FlushingWriter serializes and flushes progress output.
//
// Subpackage path expands "~" in file paths and subpackage flags holds
// the yes/no toggle and choice usage helpers for pflag.
package utils
