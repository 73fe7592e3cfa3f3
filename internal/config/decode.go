package config

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/vroute/internal/errors"
)

// Format is a file format understood by the decoders.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatOf returns the format selected by name's extension. Unknown
// extensions are read as YAML, which also accepts plain JSON.
func FormatOf(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".jsonc":
		return FormatJSON
	case ".toml":
		return FormatTOML
	default:
		return FormatYAML
	}
}

// decode unmarshals data into v with the decoder for name's extension.
// Decoder failures become R102 errors located in name.
func decode(name string, data []byte, v any) error {
	return decodeAs(name, data, v, errors.CodeConfigParse)
}

func decodeAs(name string, data []byte, v any, code string) error {
	var err error
	switch FormatOf(name) {
	case FormatJSON:
		// Comments and trailing commas are allowed.
		dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		dec.DisallowUnknownFields()
		err = dec.Decode(v)
	case FormatTOML:
		err = toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(v)
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(v)
		if stderrors.Is(err, io.EOF) {
			// An empty document leaves the defaults in place.
			err = nil
		}
	}
	if err == nil {
		return nil
	}

	rerr := errors.New(code).Wrap(err)
	var de *toml.DecodeError
	if stderrors.As(err, &de) {
		row, col := de.Position()
		return rerr.WithSource(name, data, row, col)
	}
	return rerr.WithLocationFromError(name, data, err)
}
