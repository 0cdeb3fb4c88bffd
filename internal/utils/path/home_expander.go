package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	tildeSymbolConstant             = "~"
	tildeForwardSlashPrefixConstant = "~/"
)

var tildeWithPathSeparatorPrefix = tildeSymbolConstant + string(os.PathSeparator)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// HomeExpander resolves leading "~" in token file and configuration file paths.
// The home directory is looked up once and cached.
type HomeExpander struct {
	homeDirectoryProvider HomeDirectoryProvider
	homeDirectory         string
	homeDirectoryError    error
	initializationGuard   sync.Once
}

// NewHomeExpander constructs a HomeExpander backed by os.UserHomeDir.
func NewHomeExpander() *HomeExpander {
	return NewHomeExpanderWithProvider(os.UserHomeDir)
}

// NewHomeExpanderWithProvider constructs a HomeExpander with a custom provider; nil selects os.UserHomeDir.
func NewHomeExpanderWithProvider(provider HomeDirectoryProvider) *HomeExpander {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &HomeExpander{homeDirectoryProvider: provider}
}

// Expand replaces a bare "~", "~/" or "~" followed by the OS separator with the home directory.
// Paths are returned unchanged when the home directory cannot be resolved or when "~" names another user.
func (expander *HomeExpander) Expand(candidatePath string) string {
	if expander == nil || !strings.HasPrefix(candidatePath, tildeSymbolConstant) {
		return candidatePath
	}

	resolvedHomeDirectory := expander.resolveHomeDirectory()
	if len(resolvedHomeDirectory) == 0 {
		return candidatePath
	}

	switch {
	case candidatePath == tildeSymbolConstant:
		return resolvedHomeDirectory
	case strings.HasPrefix(candidatePath, tildeForwardSlashPrefixConstant):
		return filepath.Join(resolvedHomeDirectory, strings.TrimPrefix(candidatePath, tildeForwardSlashPrefixConstant))
	case strings.HasPrefix(candidatePath, tildeWithPathSeparatorPrefix):
		return filepath.Join(resolvedHomeDirectory, strings.TrimPrefix(candidatePath, tildeWithPathSeparatorPrefix))
	default:
		return candidatePath
	}
}

func (expander *HomeExpander) resolveHomeDirectory() string {
	expander.initializationGuard.Do(func() {
		expander.homeDirectory, expander.homeDirectoryError = expander.homeDirectoryProvider()
	})
	if expander.homeDirectoryError != nil {
		return ""
	}
	return expander.homeDirectory
}
