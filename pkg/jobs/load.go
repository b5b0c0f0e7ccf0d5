package jobs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadDefinitions reads a job-definition document from the given file
// path. The format is chosen by extension: .yaml/.yml for YAML, anything
// else JSON.
//
// Shape violations are reported as the distinct structural error kinds in
// this package. An empty job list is accepted here - it is a valid
// discovery outcome - and rejected only by the iterator.
func LoadDefinitions(path string) (*DefinitionSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("job definitions file not found: %s", path)
		}
		return nil, fmt.Errorf("read job definitions: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseDefinitionsYAML(data)
	default:
		return ParseDefinitionsJSON(data)
	}
}

// ParseDefinitionsJSON parses a JSON job-definition document, checking
// the document shape before decoding into the typed set.
func ParseDefinitionsJSON(data []byte) (*DefinitionSet, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotObject, err)
	}

	if _, ok := raw["prefixes"]; !ok {
		return nil, ErrMissingPrefixes
	}
	jobsRaw, ok := raw["jobs"]
	if !ok {
		return nil, ErrMissingJobs
	}

	var jobList []json.RawMessage
	if err := json.Unmarshal(jobsRaw, &jobList); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrJobsNotList, err)
	}

	var set DefinitionSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("decode job definitions: %w", err)
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return &set, nil
}

// ParseDefinitionsYAML parses a YAML job-definition document with the
// same shape checks as the JSON path.
func ParseDefinitionsYAML(data []byte) (*DefinitionSet, error) {
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotObject, err)
	}

	if _, ok := raw["prefixes"]; !ok {
		return nil, ErrMissingPrefixes
	}
	jobsNode, ok := raw["jobs"]
	if !ok {
		return nil, ErrMissingJobs
	}
	if jobsNode.Kind != yaml.SequenceNode && !(jobsNode.Kind == yaml.ScalarNode && jobsNode.Tag == "!!null") {
		return nil, fmt.Errorf("%w: found %s", ErrJobsNotList, jobsNode.Tag)
	}

	var set DefinitionSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("decode job definitions: %w", err)
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return &set, nil
}
