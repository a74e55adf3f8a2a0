package deckfill

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Context maps keys to the values substituted into a deck.
//
// A value is either a scalar, stringified at substitution time, or a list of
// Records. A key bound to a list of records is a relationship and drives table
// row expansion:
//
//	ctx := deckfill.Context{
//	    "name": "Ann",
//	    "relationship_people": []deckfill.Record{
//	        {"id": "1", "first_name": "Ann"},
//	    },
//	}
type Context map[string]any

// Record is one row's worth of relationship data
type Record map[string]any

// Stringify renders a context value the way it appears in the deck
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case []byte:
		return string(val)
	default:
		return fmt.Sprint(val)
	}
}

// Keys returns the context keys in sorted order
func (c Context) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Relationship returns the records bound to name.
// It fails with ErrUnboundRelationship when name is absent or nil, and with
// ErrNotRelationship when the value is not a list of records.
func (c Context) Relationship(name string) ([]Record, error) {
	v, ok := c[name]
	if !ok || v == nil {
		return nil, ErrUnboundRelationship
	}
	records, ok := asRecords(v)
	if !ok {
		return nil, fmt.Errorf("%w: %q holds %T", ErrNotRelationship, name, v)
	}
	return records, nil
}

// asRecords converts the list shapes produced by Go code, JSON and YAML into records
func asRecords(v any) ([]Record, bool) {
	switch list := v.(type) {
	case []Record:
		return list, true
	case []map[string]any:
		out := make([]Record, len(list))
		for i, m := range list {
			out[i] = Record(m)
		}
		return out, true
	case []map[string]string:
		out := make([]Record, len(list))
		for i, m := range list {
			r := make(Record, len(m))
			for k, v := range m {
				r[k] = v
			}
			out[i] = r
		}
		return out, true
	case []any:
		out := make([]Record, len(list))
		for i, item := range list {
			switch m := item.(type) {
			case Record:
				out[i] = m
			case map[string]any:
				out[i] = Record(m)
			default:
				return nil, false
			}
		}
		return out, true
	default:
		return nil, false
	}
}

// NormalizeContext converts relationship lists of any supported shape into []Record.
// The input is not modified.
func NormalizeContext(in map[string]any) Context {
	out := make(Context, len(in))
	for k, v := range in {
		if records, ok := asRecords(v); ok {
			out[k] = records
			continue
		}
		out[k] = v
	}
	return out
}

// ContextFormat selects the decoder used by LoadContext
type ContextFormat string

const (
	FormatJSON ContextFormat = "json"
	FormatYAML ContextFormat = "yaml"
)

// FormatFromPath picks a context format from a file extension, defaulting to JSON
func FormatFromPath(path string) ContextFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// LoadContext decodes a context document. The root must be a mapping;
// anything else fails with ErrInvalidContext.
func LoadContext(r io.Reader, format ContextFormat) (Context, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read context: %w", err)
	}

	var root any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &root); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidContext, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&root); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidContext, err)
		}
	}

	if root == nil {
		return Context{}, nil
	}
	m, ok := root.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: root is %T, not a mapping", ErrInvalidContext, root)
	}
	return NormalizeContext(m), nil
}

// LoadContextFile reads a JSON or YAML context file, chosen by extension
func LoadContextFile(path string) (Context, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open context file: %w", err)
	}
	defer f.Close()
	return LoadContext(f, FormatFromPath(path))
}

// substituter replaces every token of a context in one left-to-right pass.
// Substituted values are never re-scanned.
type substituter struct {
	codec    Codec
	keys     []string
	replacer *strings.Replacer
}

func newSubstituter(codec Codec, ctx Context) *substituter {
	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		if codec.ValidKey(k) {
			keys = append(keys, k)
		}
	}
	// Longest first so that, at one position, the longer token wins.
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, codec.Wrap(k), Stringify(ctx[k]))
	}
	return &substituter{codec: codec, keys: keys, replacer: strings.NewReplacer(pairs...)}
}

// Replace substitutes tokens in text and reports how many were replaced
func (s *substituter) Replace(text string) (string, int) {
	if len(s.keys) == 0 || !strings.Contains(text, s.codec.Delimiter()) {
		return text, 0
	}
	out := s.replacer.Replace(text)
	if out == text {
		return text, 0
	}
	return out, s.count(text)
}

// count returns the number of tokens Replace substitutes in text
func (s *substituter) count(text string) int {
	n := 0
	d := s.codec.Delimiter()
	for i := 0; i < len(text); {
		matched := false
		if strings.HasPrefix(text[i:], d) {
			for _, k := range s.keys {
				if tok := s.codec.Wrap(k); strings.HasPrefix(text[i:], tok) {
					n++
					i += len(tok)
					matched = true
					break
				}
			}
		}
		if !matched {
			i++
		}
	}
	return n
}

// ContainsAnyKey reports whether text contains at least one key as a raw substring
func (s *substituter) ContainsAnyKey(text string) bool {
	for _, k := range s.keys {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
