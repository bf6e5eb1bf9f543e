package serialization

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"papergraph-backend/internal/errors"
)

// Format selects a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" and "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", errors.Validation(errors.CodeUnsupportedFormat.String(), "unsupported document format").
		WithDetailsf("format %q", s).
		Build()
}

// FormatFromPath picks the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Marshal encodes doc.
func Marshal(doc Document, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, errors.Wrap(err, "Marshal", "failed to encode yaml document")
		}
		if err := enc.Close(); err != nil {
			return nil, errors.Wrap(err, "Marshal", "failed to encode yaml document")
		}
		return buf.Bytes(), nil
	case FormatJSON, "":
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, errors.Wrap(err, "Marshal", "failed to encode json document")
		}
		return data, nil
	}
	_, err := ParseFormat(string(format))
	return nil, err
}

// Unmarshal decodes exactly one document. Undecodable input or trailing
// data after the document is INVALID_EXPORT_DOCUMENT.
func Unmarshal(data []byte, format Format) (Document, error) {
	var doc Document
	var err error
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		if err = dec.Decode(&doc); err == io.EOF {
			// An empty YAML stream is an empty document.
			err = nil
		} else if err == nil {
			err = expectEOF(dec.Decode(new(yaml.Node)))
		}
	case FormatJSON, "":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err = dec.Decode(&doc); err == nil {
			err = expectEOF(dec.Decode(new(json.RawMessage)))
		}
	default:
		_, perr := ParseFormat(string(format))
		return Document{}, perr
	}
	if err != nil {
		return Document{}, invalidDocument("decode", err)
	}
	return doc, nil
}

func expectEOF(err error) error {
	switch err {
	case io.EOF:
		return nil
	case nil:
		return fmt.Errorf("unexpected data after document")
	}
	return fmt.Errorf("unexpected data after document: %w", err)
}
