package codemeta

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	manifestLineSeparatorConstant      = "\n"
	documentURLFieldConstant           = "url"
	jsonNullLiteralConstant            = "null"
	missingURLFieldMessageConstant     = "document has no string url field"
	nullDocumentMessageConstant        = "document is null"
	documentParseErrorTemplateConstant = "document is not a JSON object: %s"
)

// ErrURLFieldMissing indicates a document without a string "url" field.
var ErrURLFieldMissing = errors.New(missingURLFieldMessageConstant)

var errNullDocument = errors.New(nullDocumentMessageConstant)

// DocumentParseError reports a document that is not a well-formed JSON object.
type DocumentParseError struct {
	Cause error
}

// Error describes the parse failure.
func (parseError DocumentParseError) Error() string {
	return fmt.Sprintf(documentParseErrorTemplateConstant, parseError.Cause)
}

// Unwrap exposes the decoder error.
func (parseError DocumentParseError) Unwrap() error {
	return parseError.Cause
}

// ParseManifest returns the trimmed, non-empty lines of a manifest in order.
func ParseManifest(content string) []string {
	rawLines := strings.Split(content, manifestLineSeparatorConstant)
	entries := make([]string, 0, len(rawLines))
	for _, rawLine := range rawLines {
		trimmedLine := strings.TrimSpace(rawLine)
		if len(trimmedLine) == 0 {
			continue
		}
		entries = append(entries, trimmedLine)
	}
	return entries
}

// ParseDocumentURL extracts the "url" field of a JSON object; other fields are ignored.
func ParseDocumentURL(content string) (string, error) {
	var document map[string]json.RawMessage
	if decodeError := json.Unmarshal([]byte(content), &document); decodeError != nil {
		return "", DocumentParseError{Cause: decodeError}
	}
	if document == nil {
		return "", DocumentParseError{Cause: errNullDocument}
	}

	rawURL, present := document[documentURLFieldConstant]
	if !present || strings.TrimSpace(string(rawURL)) == jsonNullLiteralConstant {
		return "", ErrURLFieldMissing
	}

	var documentURL string
	if decodeError := json.Unmarshal(rawURL, &documentURL); decodeError != nil {
		return "", ErrURLFieldMissing
	}
	return documentURL, nil
}
