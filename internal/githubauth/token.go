package githubauth

import (
	"errors"
	"fmt"
	"os"
	"strings"

	pathutils "github.com/temirov/metapr/internal/utils/path"
)

// Environment variable names consulted when no token source is configured.
const (
	EnvGitHubCLIToken = "GH_TOKEN"
	EnvGitHubToken    = "GITHUB_TOKEN"
	EnvGitHubAPIToken = "GITHUB_API_TOKEN"
)

const (
	tokenSourceSeparatorConstant               = ":"
	environmentTokenSourceTypeValueConstant    = "env"
	fileTokenSourceTypeValueConstant           = "file"
	environmentNameMissingErrorMessageConstant = "environment variable name must be provided"
	filePathMissingErrorMessageConstant        = "token file path must be provided"
	tokenNotFoundErrorMessageConstant          = "no GitHub token found in GH_TOKEN, GITHUB_TOKEN, or GITHUB_API_TOKEN"
	environmentTokenMissingTemplateConstant    = "environment variable %s is not set"
	fileReadErrorTemplateConstant              = "unable to read token file %s: %w"
	fileTokenEmptyErrorTemplateConstant        = "token file %s is empty"
	unsupportedTokenSourceTemplateConstant     = "unsupported token source type %q"
)

// ErrTokenNotFound indicates that none of the default environment variables carried a token.
var ErrTokenNotFound = errors.New(tokenNotFoundErrorMessageConstant)

var tokenPreference = []string{
	EnvGitHubCLIToken,
	EnvGitHubToken,
	EnvGitHubAPIToken,
}

// TokenSourceType enumerates the supported token retrieval mechanisms.
type TokenSourceType string

// Token source type enumerations.
const (
	TokenSourceTypeDefault     TokenSourceType = TokenSourceType("")
	TokenSourceTypeEnvironment TokenSourceType = TokenSourceType(environmentTokenSourceTypeValueConstant)
	TokenSourceTypeFile        TokenSourceType = TokenSourceType(fileTokenSourceTypeValueConstant)
)

// TokenSource specifies where a token is read from.
type TokenSource struct {
	Type      TokenSourceType
	Reference string
}

// EnvironmentLookup obtains an environment variable value.
type EnvironmentLookup func(key string) (string, bool)

// FileReader reads the contents of a file path.
type FileReader func(path string) ([]byte, error)

// ParseTokenSource interprets env:NAME, file:/path, or a bare variable name.
// An empty declaration selects the default environment variable chain.
func ParseTokenSource(sourceValue string) (TokenSource, error) {
	trimmedValue := strings.TrimSpace(sourceValue)
	if len(trimmedValue) == 0 {
		return TokenSource{Type: TokenSourceTypeDefault}, nil
	}

	components := strings.SplitN(trimmedValue, tokenSourceSeparatorConstant, 2)
	if len(components) == 1 {
		return TokenSource{Type: TokenSourceTypeEnvironment, Reference: trimmedValue}, nil
	}

	sourceType := strings.ToLower(strings.TrimSpace(components[0]))
	reference := strings.TrimSpace(components[1])

	switch TokenSourceType(sourceType) {
	case TokenSourceTypeEnvironment:
		if len(reference) == 0 {
			return TokenSource{}, errors.New(environmentNameMissingErrorMessageConstant)
		}
		return TokenSource{Type: TokenSourceTypeEnvironment, Reference: reference}, nil
	case TokenSourceTypeFile:
		if len(reference) == 0 {
			return TokenSource{}, errors.New(filePathMissingErrorMessageConstant)
		}
		return TokenSource{Type: TokenSourceTypeFile, Reference: reference}, nil
	default:
		return TokenSource{}, fmt.Errorf(unsupportedTokenSourceTemplateConstant, sourceType)
	}
}

// TokenResolver reads tokens from the environment or from files.
type TokenResolver struct {
	environmentLookup EnvironmentLookup
	fileReader        FileReader
	homeExpander      *pathutils.HomeExpander
}

// NewTokenResolver creates a token resolver; nil collaborators fall back to os.LookupEnv, os.ReadFile, and pathutils.NewHomeExpander.
func NewTokenResolver(environmentLookup EnvironmentLookup, fileReader FileReader, homeExpander *pathutils.HomeExpander) *TokenResolver {
	if environmentLookup == nil {
		environmentLookup = os.LookupEnv
	}
	if fileReader == nil {
		fileReader = os.ReadFile
	}
	if homeExpander == nil {
		homeExpander = pathutils.NewHomeExpander()
	}
	return &TokenResolver{environmentLookup: environmentLookup, fileReader: fileReader, homeExpander: homeExpander}
}

// ResolveToken returns the token described by source.
func (resolver *TokenResolver) ResolveToken(source TokenSource) (string, error) {
	switch source.Type {
	case TokenSourceTypeDefault:
		for _, environmentName := range tokenPreference {
			if value, found := resolver.lookupEnvironment(environmentName); found {
				return value, nil
			}
		}
		return "", ErrTokenNotFound
	case TokenSourceTypeEnvironment:
		value, found := resolver.lookupEnvironment(source.Reference)
		if !found {
			return "", fmt.Errorf(environmentTokenMissingTemplateConstant, source.Reference)
		}
		return value, nil
	case TokenSourceTypeFile:
		tokenFilePath := resolver.homeExpander.Expand(source.Reference)
		contents, readError := resolver.fileReader(tokenFilePath)
		if readError != nil {
			return "", fmt.Errorf(fileReadErrorTemplateConstant, tokenFilePath, readError)
		}
		trimmedValue := strings.TrimSpace(string(contents))
		if len(trimmedValue) == 0 {
			return "", fmt.Errorf(fileTokenEmptyErrorTemplateConstant, tokenFilePath)
		}
		return trimmedValue, nil
	default:
		return "", fmt.Errorf(unsupportedTokenSourceTemplateConstant, source.Type)
	}
}

func (resolver *TokenResolver) lookupEnvironment(key string) (string, bool) {
	value, exists := resolver.environmentLookup(key)
	if !exists {
		return "", false
	}
	value = strings.TrimSpace(value)
	if len(value) == 0 {
		return "", false
	}
	return value, true
}
