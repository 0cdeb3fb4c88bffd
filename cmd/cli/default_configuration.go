package cli

import (
	"bytes"
	_ "embed"
)

//go:embed default_config.yaml
var embeddedMetaprDefaults []byte

// EmbeddedDefaultConfiguration returns a copy of the metapr defaults (common logging and tools.publish)
// together with their format, ready for ConfigurationLoader.SetEmbeddedConfiguration.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	return bytes.Clone(embeddedMetaprDefaults), configurationTypeConstant
}
