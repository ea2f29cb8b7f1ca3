package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// format is an on-disk encoding.
type format int

const (
	formatYAML format = iota
	formatJSON
	formatJSONLines
)

// maxLineSize bounds a single JSON-lines record.
const maxLineSize = 10 << 20

// formatOf returns the encoding implied by a file extension.
func formatOf(path string) (format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML, true
	case ".json":
		return formatJSON, true
	case ".jsonl", ".ndjson":
		return formatJSONLines, true
	default:
		return 0, false
	}
}

// rawEntity is one entity of a file, not yet decoded.
type rawEntity struct {
	decode func(v any) error
}

// peekString returns the first non-empty string value among keys, for
// naming entities that fail to decode.
func (e rawEntity) peekString(keys ...string) string {
	var fields map[string]any
	if err := e.decode(&fields); err != nil {
		return ""
	}
	for _, key := range keys {
		if s, ok := fields[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// splitEntities splits file content into independently decodable entities.
// A top-level list yields one entity per element; any other document yields
// one entity. YAML files may hold several documents.
func splitEntities(data []byte, f format) ([]rawEntity, error) {
	switch f {
	case formatJSON:
		return splitJSON(data)
	case formatJSONLines:
		return splitJSONLines(data)
	default:
		return splitYAML(data)
	}
}

func splitJSON(data []byte) ([]rawEntity, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] != '[' {
		if !json.Valid(trimmed) {
			return nil, fmt.Errorf("invalid JSON document")
		}
		return []rawEntity{jsonEntity(trimmed)}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("invalid JSON array: %w", err)
	}
	entities := make([]rawEntity, len(items))
	for i, item := range items {
		entities[i] = jsonEntity(item)
	}
	return entities, nil
}

func splitJSONLines(data []byte) ([]rawEntity, error) {
	var entities []rawEntity

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		// Scanner reuses its buffer
		entities = append(entities, jsonEntity(bytes.Clone(line)))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read JSON lines: %w", err)
	}
	return entities, nil
}

func jsonEntity(raw []byte) rawEntity {
	return rawEntity{decode: func(v any) error {
		return json.Unmarshal(raw, v)
	}}
}

func splitYAML(data []byte) ([]rawEntity, error) {
	var entities []rawEntity

	dec := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}

		root := &doc
		if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
			root = root.Content[0]
		}

		switch root.Kind {
		case yaml.SequenceNode:
			for _, item := range root.Content {
				entities = append(entities, yamlEntity(item))
			}
		case yaml.MappingNode:
			entities = append(entities, yamlEntity(root))
		case yaml.ScalarNode:
			if root.Tag == "!!null" || root.Value == "" {
				continue
			}
			return nil, fmt.Errorf("line %d: expected a mapping or a list, got a scalar", root.Line)
		default:
			return nil, fmt.Errorf("line %d: expected a mapping or a list", root.Line)
		}
	}
	return entities, nil
}

func yamlEntity(node *yaml.Node) rawEntity {
	return rawEntity{decode: func(v any) error {
		if node.Kind != yaml.MappingNode {
			return fmt.Errorf("line %d: expected a mapping", node.Line)
		}
		return node.Decode(v)
	}}
}
