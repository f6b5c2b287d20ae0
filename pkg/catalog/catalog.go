// Package catalog implements the index catalog document validator of §6
// (the `asIndexCatalog` contract): the on-disk manifest recording which
// secondary indexes (bloom/FTS/geo) exist per namespace, and the schema
// its entries must conform to.
package catalog

import (
	"bytes"
	"encoding/json"

	"github.com/parquedb/parquedb/pkg/errors"
)

// Definition describes one index's shape: its name, kind
// ("bloom"/"fts"/"geo"), and the fields it covers.
type Definition struct {
	Name   string   `json:"name"`
	Type   string   `json:"type"`
	Fields []string `json:"fields"`
}

// IndexEntry pairs a Definition with free-form operational metadata
// (build timestamp, size, version) the engine doesn't interpret itself.
type IndexEntry struct {
	Definition Definition     `json:"definition"`
	Metadata   map[string]any `json:"metadata"`
}

// Catalog is the decoded `{version, indexes}` document.
type Catalog struct {
	Version int                     `json:"version"`
	Indexes map[string][]IndexEntry `json:"indexes"`
}

// rawCatalog decodes into loosely-typed fields first so DecodeIndexCatalog
// can report exactly which constraint a malformed document violates,
// rather than letting encoding/json's generic type-mismatch error surface.
type rawCatalog struct {
	Version json.RawMessage           `json:"version"`
	Indexes map[string]json.RawMessage `json:"indexes"`
}

// DecodeIndexCatalog parses and validates an index catalog document,
// rejecting inputs where version isn't a number, indexes isn't a plain
// record (arrays refused), any namespace entry isn't an array, or any
// entry lacks an object definition (with string name/type and array
// fields) and an object metadata.
func DecodeIndexCatalog(data []byte) (*Catalog, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var raw rawCatalog
	if err := decoder.Decode(&raw); err != nil {
		return nil, errors.NewValidationError(
			err, errors.ErrorCodeInvalidInput, "index catalog must be an object with a numeric version and a record-shaped indexes field",
		).WithField("$").WithRule("json_document")
	}

	// Only a JSON number literal decodes to json.Number here; a quoted
	// string such as "1", null, or a missing version does not.
	var versionValue any
	versionDecoder := json.NewDecoder(bytes.NewReader(raw.Version))
	versionDecoder.UseNumber()
	_ = versionDecoder.Decode(&versionValue)
	versionNumber, isNumber := versionValue.(json.Number)
	versionFloat, floatErr := versionNumber.Float64()
	if !isNumber || floatErr != nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "catalog version must be a number",
		).WithField("version").WithRule("type_number").WithProvided(string(raw.Version))
	}

	catalog := &Catalog{Version: int(versionFloat), Indexes: make(map[string][]IndexEntry, len(raw.Indexes))}

	for namespace, rawEntries := range raw.Indexes {
		var entries []json.RawMessage
		if err := json.Unmarshal(rawEntries, &entries); err != nil {
			return nil, errors.NewValidationError(
				err, errors.ErrorCodeInvalidInput, "namespace entry must be an array",
			).WithField("indexes." + namespace).WithRule("type_array")
		}

		parsed := make([]IndexEntry, 0, len(entries))
		for i, rawEntry := range entries {
			entry, err := decodeEntry(rawEntry, namespace, i)
			if err != nil {
				return nil, err
			}
			parsed = append(parsed, entry)
		}
		catalog.Indexes[namespace] = parsed
	}

	return catalog, nil
}

func decodeEntry(raw json.RawMessage, namespace string, index int) (IndexEntry, error) {
	fieldPath := func(suffix string) string {
		return namespace + "[" + itoa(index) + "]" + suffix
	}

	var shape struct {
		Definition *struct {
			Name   *string  `json:"name"`
			Type   *string  `json:"type"`
			Fields []string `json:"fields"`
		} `json:"definition"`
		Metadata map[string]any `json:"metadata"`
	}

	if err := json.Unmarshal(raw, &shape); err != nil {
		return IndexEntry{}, errors.NewValidationError(
			err, errors.ErrorCodeInvalidInput, "catalog entry is not a valid object",
		).WithField(fieldPath("")).WithRule("type_object")
	}

	if shape.Definition == nil {
		return IndexEntry{}, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "catalog entry is missing definition",
		).WithField(fieldPath(".definition")).WithRule("required")
	}
	if shape.Definition.Name == nil {
		return IndexEntry{}, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "definition.name must be a string",
		).WithField(fieldPath(".definition.name")).WithRule("type_string")
	}
	if shape.Definition.Type == nil {
		return IndexEntry{}, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "definition.type must be a string",
		).WithField(fieldPath(".definition.type")).WithRule("type_string")
	}
	if shape.Definition.Fields == nil {
		return IndexEntry{}, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "definition.fields must be an array",
		).WithField(fieldPath(".definition.fields")).WithRule("type_array")
	}
	if shape.Metadata == nil {
		return IndexEntry{}, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "entry.metadata must be an object",
		).WithField(fieldPath(".metadata")).WithRule("type_object")
	}

	return IndexEntry{
		Definition: Definition{Name: *shape.Definition.Name, Type: *shape.Definition.Type, Fields: shape.Definition.Fields},
		Metadata:   shape.Metadata,
	}, nil
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}
