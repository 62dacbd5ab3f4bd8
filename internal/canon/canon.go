// Package canon splits URLs into the five-part tuple used as the identity of a
// short link, and rebuilds URLs from stored tuples.
//
// No normalisation is applied beyond parsing: percent-encoding, trailing
// slashes and default ports are kept exactly as given, so two URLs that differ
// only in those details produce different tuples.
package canon

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// MaxURLLength bounds the raw input accepted by Parse.
const MaxURLLength = 2048

// ErrInvalidURL is returned (wrapped) for input that cannot be split into a tuple.
var ErrInvalidURL = errors.New("invalid url")

// digestDomain separates tuple digests from any other sha256 use.
const digestDomain = "urlshortener/tuple/v1"

// netlocSchemes keep the "//" delimiter on rebuild even with an empty authority,
// so "file:///etc/hosts" survives a round trip.
var netlocSchemes = map[string]bool{
	"http":  true,
	"https": true,
	"ftp":   true,
	"file":  true,
	"ws":    true,
	"wss":   true,
}

// Query maps a key to its values in the order they appeared.
// Key order carries no meaning.
type Query map[string][]string

// Tuple is the canonical decomposition of a URL.
type Tuple struct {
	Scheme    string
	Authority string
	Path      string
	Query     Query
	Fragment  string
}

// Parse splits raw into a Tuple. A missing scheme or authority is kept as an
// empty string; only input the URI grammar rejects outright is an error.
func Parse(raw string) (Tuple, error) {
	if raw == "" {
		return Tuple{}, fmt.Errorf("%w: url cannot be empty", ErrInvalidURL)
	}
	if len(raw) > MaxURLLength {
		return Tuple{}, fmt.Errorf("%w: url too long (max %d characters)", ErrInvalidURL, MaxURLLength)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Tuple{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	q, err := parseQuery(u.RawQuery)
	if err != nil {
		return Tuple{}, fmt.Errorf("%w: query: %v", ErrInvalidURL, err)
	}

	path := u.EscapedPath()
	if u.Opaque != "" {
		path = u.Opaque
	}

	return Tuple{
		Scheme:    u.Scheme,
		Authority: authority(u),
		Path:      path,
		Query:     q,
		Fragment:  u.EscapedFragment(),
	}, nil
}

// parseQuery splits raw on '&' only. A ';' stays part of the value and a '%'
// that does not start a valid escape is taken literally. Decoded keys and
// values must be valid UTF-8 without NUL bytes, since the store keeps them as
// JSON text.
func parseQuery(raw string) (Query, error) {
	q := Query{}
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		key, value = unescapeLenient(key), unescapeLenient(value)
		for _, part := range [2]string{key, value} {
			if !utf8.ValidString(part) {
				return nil, fmt.Errorf("%q is not valid UTF-8 once decoded", pair)
			}
			if strings.IndexByte(part, 0) >= 0 {
				return nil, fmt.Errorf("%q contains a NUL byte", pair)
			}
		}
		q[key] = append(q[key], value)
	}
	return q, nil
}

// unescapeLenient decodes '+' and %XX escapes and copies anything else,
// including malformed escapes, unchanged.
func unescapeLenient(s string) string {
	if !strings.ContainsAny(s, "%+") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '+':
			b.WriteByte(' ')
		case c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case c >= 'a':
		return c - 'a' + 10
	case c >= 'A':
		return c - 'A' + 10
	default:
		return c - '0'
	}
}

func authority(u *url.URL) string {
	if u.User == nil {
		return u.Host
	}
	return u.User.String() + "@" + u.Host
}

// String rebuilds an absolute URL. Every value of a repeated key is emitted
// in stored order; keys are sorted.
func (t Tuple) String() string {
	var b strings.Builder

	if t.Scheme != "" {
		b.WriteString(t.Scheme)
		b.WriteByte(':')
	}
	// A path starting with "//" needs the delimiter too, or its first
	// segment would be read back as the host.
	if t.Authority != "" || strings.HasPrefix(t.Path, "//") ||
		(netlocSchemes[t.Scheme] && strings.HasPrefix(t.Path, "/")) {
		b.WriteString("//")
		b.WriteString(t.Authority)
		if t.Path != "" && !strings.HasPrefix(t.Path, "/") {
			b.WriteByte('/')
		}
	}
	b.WriteString(t.Path)

	if qs := t.Query.Encode(); qs != "" {
		b.WriteByte('?')
		b.WriteString(qs)
	}
	if t.Fragment != "" {
		b.WriteByte('#')
		b.WriteString(t.Fragment)
	}
	return b.String()
}

// Equal compares tuples component by component. Values of a key must match
// in order; key order is ignored.
func (t Tuple) Equal(o Tuple) bool {
	return t.Scheme == o.Scheme &&
		t.Authority == o.Authority &&
		t.Path == o.Path &&
		t.Fragment == o.Fragment &&
		t.Query.Equal(o.Query)
}

// Digest is a domain-separated sha256 over the serialized tuple. Equal tuples
// always have equal digests.
func (t Tuple) Digest() ([]byte, error) {
	q, err := t.Query.Serialize()
	if err != nil {
		return nil, err
	}

	h := sha256.New()
	h.Write([]byte(digestDomain))
	for _, part := range [][]byte{[]byte(t.Scheme), []byte(t.Authority), []byte(t.Path), q, []byte(t.Fragment)} {
		h.Write([]byte{0x00})
		h.Write(part)
	}
	return h.Sum(nil), nil
}

// Encode flattens the query back into a query string.
func (q Query) Encode() string {
	return url.Values(q).Encode()
}

// Equal reports whether both queries hold the same keys with the same
// values in the same order. A nil and an empty query are equal.
func (q Query) Equal(o Query) bool {
	if len(q) != len(o) {
		return false
	}
	for k, vs := range q {
		ovs, ok := o[k]
		if !ok || len(vs) != len(ovs) {
			return false
		}
		for i := range vs {
			if vs[i] != ovs[i] {
				return false
			}
		}
	}
	return true
}

// Serialize renders the query as JSON with sorted keys and no HTML escaping.
// The output is deterministic and is what the store compares for equality.
// Invalid UTF-8 and NUL bytes are refused rather than replaced.
func (q Query) Serialize() ([]byte, error) {
	if len(q) == 0 {
		return []byte("{}"), nil
	}
	for k, vs := range q {
		for _, s := range append([]string{k}, vs...) {
			if !utf8.ValidString(s) || strings.IndexByte(s, 0) >= 0 {
				return nil, fmt.Errorf("serialize query: key %q holds text that cannot be stored", k)
			}
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(map[string][]string(q)); err != nil {
		return nil, fmt.Errorf("serialize query: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// ParseSerialized is the inverse of Serialize. Empty input and JSON null
// decode to an empty query.
func ParseSerialized(data []byte) (Query, error) {
	q := Query{}
	if len(bytes.TrimSpace(data)) == 0 {
		return q, nil
	}

	var m map[string][]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode query: %w", err)
	}
	for k, vs := range m {
		q[k] = vs
	}
	return q, nil
}
