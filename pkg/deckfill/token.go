package deckfill

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultDelimiter bounds tokens when no delimiter is configured
const DefaultDelimiter = "$"

// Codec wraps context keys into tokens ("magic words") and back.
// A token is the key with the delimiter on both sides: $name$.
type Codec struct {
	delim string
}

// NewCodec creates a codec for a single-character delimiter
func NewCodec(delim string) (Codec, error) {
	if utf8.RuneCountInString(delim) != 1 {
		return Codec{}, fmt.Errorf("delimiter must be exactly one character, got %q", delim)
	}
	return Codec{delim: delim}, nil
}

// MustCodec is like NewCodec but panics on an invalid delimiter
func MustCodec(delim string) Codec {
	c, err := NewCodec(delim)
	if err != nil {
		panic(err)
	}
	return c
}

// Delimiter returns the delimiter, DefaultDelimiter for the zero Codec.
func (c Codec) Delimiter() string {
	if c.delim == "" {
		return DefaultDelimiter
	}
	return c.delim
}

// Wrap turns a key into its token
func (c Codec) Wrap(key string) string {
	d := c.Delimiter()
	return d + key + d
}

// Unwrap returns the key of a token. ok is false when token is not delimiter-bounded.
func (c Codec) Unwrap(token string) (key string, ok bool) {
	d := c.Delimiter()
	if len(token) < 2*len(d) || !strings.HasPrefix(token, d) || !strings.HasSuffix(token, d) {
		return "", false
	}
	return token[len(d) : len(token)-len(d)], true
}

// Strip removes every delimiter from text
func (c Codec) Strip(text string) string {
	return strings.ReplaceAll(text, c.Delimiter(), "")
}

// Scan returns the keys of the delimiter-bounded tokens in text, left to right.
// Delimiters pair up in order, so "$a$ and $b$" yields a and b. Empty keys ($$)
// and keys spanning a line break are skipped.
func (c Codec) Scan(text string) []string {
	var keys []string
	_, _ = c.ReplaceFunc(text, func(key string) (string, bool, error) {
		keys = append(keys, key)
		return "", false, nil
	})
	return keys
}

// ReplaceFunc calls fn for every token in text, in the order Scan reports them.
// When fn returns ok the token is replaced by the returned value; otherwise it
// is kept. The first error from fn stops the scan and is returned.
func (c Codec) ReplaceFunc(text string, fn func(key string) (value string, ok bool, err error)) (string, error) {
	d := c.Delimiter()
	var sb strings.Builder
	for {
		start := strings.Index(text, d)
		if start < 0 {
			break
		}
		rest := text[start+len(d):]
		end := strings.Index(rest, d)
		if end < 0 {
			break
		}
		key := rest[:end]
		token := text[start : start+len(d)+end+len(d)]
		sb.WriteString(text[:start])
		if key == "" || strings.ContainsAny(key, "\n\v") {
			sb.WriteString(token)
		} else {
			value, ok, err := fn(key)
			if err != nil {
				return "", err
			}
			if ok {
				sb.WriteString(value)
			} else {
				sb.WriteString(token)
			}
		}
		text = rest[end+len(d):]
	}
	sb.WriteString(text)
	return sb.String(), nil
}

// ValidKey reports whether key can be wrapped unambiguously
func (c Codec) ValidKey(key string) bool {
	return key != "" && !strings.Contains(key, c.Delimiter())
}
