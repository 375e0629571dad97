package artifact

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// Format identifies the bundle encoding.
type Format int

// Supported encodings.
const (
	FormatJSON Format = iota
	FormatYAML
)

// requiredFields must be present in every bundle, in reporting order.
var requiredFields = []string{"model", "scaler", "feature_names", "numeric_cols"}

//go:embed schema.json
var schemaJSON []byte

var bundleSchema = mustCompileSchema(schemaJSON, "bundle.schema.json")

func mustCompileSchema(raw []byte, name string) *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, doc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}
	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// Load reads, decompresses, decodes and validates the bundle at path.
// Compression is chosen by a trailing .gz or .zst extension and the encoding
// by the remaining .json, .yaml or .yml extension.
func Load(ctx context.Context, path string) (*Bundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	defer f.Close()

	name := strings.ToLower(filepath.Base(path))
	var r io.Reader = f
	switch {
	case strings.HasSuffix(name, ".gz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrRead, path, err)
		}
		defer gz.Close()
		r = gz
		name = strings.TrimSuffix(name, ".gz")
	case strings.HasSuffix(name, ".zst"):
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrRead, path, err)
		}
		defer dec.Close()
		r = dec
		name = strings.TrimSuffix(name, ".zst")
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRead, path, err)
	}

	format := FormatJSON
	switch filepath.Ext(name) {
	case ".yaml", ".yml":
		format = FormatYAML
	case ".json", "":
	default:
		return nil, fmt.Errorf("%w: %s: unsupported extension %q", ErrRead, path, filepath.Ext(name))
	}

	return Parse(path, data, format)
}

// Parse decodes and validates a bundle held in memory.
func Parse(source string, data []byte, format Format) (*Bundle, error) {
	if format == FormatYAML {
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidBundle, source, err)
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidBundle, source, err)
		}
		data = b
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidBundle, source, err)
	}
	obj, ok := inst.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s: top level must be an object", ErrInvalidBundle, source)
	}
	var missing []string
	for _, field := range requiredFields {
		if v, ok := obj[field]; !ok || v == nil {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s: %s", ErrMissingField, source, strings.Join(missing, ", "))
	}
	if err := bundleSchema.Validate(inst); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidBundle, source, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidBundle, source, err)
	}
	b, err := New(source, doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return b, nil
}

// Encode writes doc as indented JSON. Used by tooling and tests to produce
// bundles the loader accepts.
func Encode(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
