package compiler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/sparcsched/internal/ir"
)

// Format identifies a routine description encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatCUE  Format = "cue"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".cue":
		return FormatCUE, nil
	default:
		return "", fmt.Errorf("unsupported routine file %s: expected .yaml, .yml, .json or .cue", path)
	}
}

// LoadFile reads and compiles a routine description.
func LoadFile(path string) (*ir.Routine, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read routine: %w", err)
	}
	return Parse(data, format, path)
}

// Parse compiles a routine description held in memory. filename is used in
// CUE positions only.
func Parse(data []byte, format Format, filename string) (*ir.Routine, error) {
	switch format {
	case FormatCUE:
		ctx := cuecontext.New()
		v := ctx.CompileBytes(data, cue.Filename(filename))
		return CompileCUE(v)
	case FormatYAML:
		desc, err := DecodeYAML(data)
		if err != nil {
			return nil, err
		}
		return CompileRoutine(desc)
	case FormatJSON:
		desc, err := DecodeJSON(data)
		if err != nil {
			return nil, err
		}
		return CompileRoutine(desc)
	default:
		return nil, fmt.Errorf("unknown routine format %q", format)
	}
}

// DecodeYAML decodes a YAML description, rejecting unknown fields.
func DecodeYAML(data []byte) (*RoutineDesc, error) {
	var desc RoutineDesc
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&desc); err != nil {
		return nil, fmt.Errorf("parse routine yaml: %w", err)
	}
	return &desc, nil
}

// DecodeJSON decodes a JSON description, rejecting unknown fields.
func DecodeJSON(data []byte) (*RoutineDesc, error) {
	var desc RoutineDesc
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&desc); err != nil {
		return nil, fmt.Errorf("parse routine json: %w", err)
	}
	return &desc, nil
}

// CompileCUE compiles a CUE value holding a routine description at its top
// level. Compile errors carry the CUE position of the offending field.
func CompileCUE(v cue.Value) (*ir.Routine, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var desc RoutineDesc
	if err := v.Decode(&desc); err != nil {
		return nil, formatCUEError(err)
	}

	r, err := CompileRoutine(&desc)
	if err != nil {
		var ce *CompileError
		if errors.As(err, &ce) && !ce.Pos.IsValid() {
			ce.Pos = positionOf(v, ce.Field)
		}
		return nil, err
	}
	return r, nil
}

// positionOf returns the position of the value at field, falling back to
// the root position.
func positionOf(v cue.Value, field string) token.Pos {
	if p := cue.ParsePath(field); p.Err() == nil {
		if fv := v.LookupPath(p); fv.Exists() && fv.Pos().IsValid() {
			return fv.Pos()
		}
	}
	return v.Pos()
}
