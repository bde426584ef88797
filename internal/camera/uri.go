package camera

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// URI is a parsed camera driver URI.
type URI struct {
	Driver string
	Params map[string]string
	Path   string
}

// ParseURI parses "driver:[k=v,...]//path". The parameter block and the
// path are optional; "synthetic:" and "synthetic://" are both valid.
// The path is kept verbatim so it may itself be a driver URI.
func ParseURI(s string) (URI, error) {
	u := URI{Params: map[string]string{}}
	s = strings.TrimSpace(s)
	if s == "" {
		return u, fmt.Errorf("empty camera URI")
	}

	colon := strings.IndexByte(s, ':')
	if colon <= 0 {
		return u, fmt.Errorf("camera URI %q: missing driver name", s)
	}
	u.Driver = s[:colon]
	rest := s[colon+1:]

	if strings.HasPrefix(rest, "[") {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return u, fmt.Errorf("camera URI %q: unterminated parameter list", s)
		}
		for _, kv := range strings.Split(rest[1:end], ",") {
			kv = strings.TrimSpace(kv)
			if kv == "" {
				continue
			}
			k, v, ok := strings.Cut(kv, "=")
			if !ok || k == "" {
				return u, fmt.Errorf("camera URI %q: bad parameter %q", s, kv)
			}
			u.Params[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
		rest = rest[end+1:]
	}

	switch {
	case rest == "":
	case strings.HasPrefix(rest, "//"):
		u.Path = rest[2:]
	default:
		return u, fmt.Errorf("camera URI %q: expected // before path", s)
	}
	return u, nil
}

// String renders the URI back in driver:[k=v]//path form with sorted keys.
func (u URI) String() string {
	var b strings.Builder
	b.WriteString(u.Driver)
	b.WriteByte(':')
	if len(u.Params) > 0 {
		keys := make([]string, 0, len(u.Params))
		for k := range u.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('[')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(k + "=" + u.Params[k])
		}
		b.WriteByte(']')
	}
	b.WriteString("//")
	b.WriteString(u.Path)
	return b.String()
}

// Int returns an integer parameter or def when absent.
func (u URI) Int(key string, def int) (int, error) {
	v, ok := u.Params[key]
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parameter %s=%q: %w", key, v, err)
	}
	return n, nil
}

// Get returns a string parameter or def when absent.
func (u URI) Get(key, def string) string {
	if v, ok := u.Params[key]; ok && v != "" {
		return v
	}
	return def
}
