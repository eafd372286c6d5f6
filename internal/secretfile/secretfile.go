// Package secretfile parses the flat key/value secrets files read by the
// file provider.
//
// JSON files are validated against a schema that only admits an object of
// string values. Files ending in .yaml or .yml must hold the same flat shape;
// null, boolean and numeric YAML values are rejected.
package secretfile

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// flatSchema admits a single JSON object whose values are all strings.
const flatSchema = `{
  "type": "object",
  "additionalProperties": {"type": "string"}
}`

var schemaLoader = gojsonschema.NewStringLoader(flatSchema)

// Format identifies a secrets file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatError reports content that is not a flat map of strings.
type FormatError struct {
	Format  Format
	File    string
	Details []string
	Err     error
}

func (e *FormatError) Error() string {
	msg := fmt.Sprintf("invalid %s in secrets file %s", strings.ToUpper(string(e.Format)), e.File)
	if len(e.Details) > 0 {
		msg += ": " + strings.Join(e.Details, "; ")
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// DetectFormat picks the encoding from the file extension. Anything that is
// not .yaml or .yml is treated as JSON.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Parse decodes data read from path. Errors name only the base name of
// path.
func Parse(path string, data []byte) (map[string]string, error) {
	name := filepath.Base(path)

	switch DetectFormat(path) {
	case FormatYAML:
		return parseYAML(name, data)
	default:
		return parseJSON(name, data)
	}
}

func parseJSON(name string, data []byte) (map[string]string, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, &FormatError{Format: FormatJSON, File: name, Err: err}
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return nil, &FormatError{Format: FormatJSON, File: name, Details: details}
	}

	secrets := make(map[string]string)
	if err := json.Unmarshal(data, &secrets); err != nil {
		return nil, &FormatError{Format: FormatJSON, File: name, Err: err}
	}
	return secrets, nil
}

// parseYAML only admits string scalars. Untagged scalars that YAML would
// resolve as null, bool or number are rejected, as the JSON schema does.
func parseYAML(name string, data []byte) (map[string]string, error) {
	nodes := make(map[string]yaml.Node)
	if err := yaml.Unmarshal(data, &nodes); err != nil {
		return nil, &FormatError{Format: FormatYAML, File: name, Err: err}
	}

	keys := make([]string, 0, len(nodes))
	for key := range nodes {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	secrets := make(map[string]string, len(nodes))
	var details []string
	for _, key := range keys {
		node := nodes[key]
		if node.Kind != yaml.ScalarNode || node.ShortTag() != "!!str" {
			details = append(details, fmt.Sprintf("%s: expected string, given %s", key, yamlKind(&node)))
			continue
		}
		secrets[key] = node.Value
	}
	if len(details) > 0 {
		return nil, &FormatError{Format: FormatYAML, File: name, Details: details}
	}
	return secrets, nil
}

func yamlKind(node *yaml.Node) string {
	switch node.Kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.AliasNode:
		return "alias"
	}
	return strings.TrimPrefix(node.ShortTag(), "!!")
}
