package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Config file sections.
const (
	SectionConfig    = "config"
	SectionTemplates = "filename_templates"
	SectionUserEnv   = "user_env_vars"
)

// ErrMissingKey is returned when a required key has no value.
var ErrMissingKey = errors.New("required key is not set")

// Store is a sectioned key/value configuration source with typed lookups.
// Keys are case-insensitive.
type Store interface {
	// String returns the value with {ENV[NAME]} references expanded.
	String(section, key, def string) string
	// Raw returns the value verbatim, leaving filename template tags intact.
	Raw(section, key, def string) string
	// Dir returns a cleaned directory path. It fails when the key is unset
	// and def is empty.
	Dir(section, key, def string) (string, error)
	Int(section, key string, def int) (int, error)
	Bool(section, key string, def bool) (bool, error)
	// List splits comma-separated values, keeping commas nested in
	// parentheses or brackets. Array values are returned element-wise.
	List(section, key string) ([]string, error)
	Has(section, key string) bool
	// Keys lists the keys of a section, sorted and upper-cased.
	Keys(section string) []string
}

// ViperStore implements Store on a viper instance.
type ViperStore struct {
	v *viper.Viper
}

// OpenStore reads a TOML, YAML or JSON config file.
func OpenStore(path string) (*ViperStore, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return NewStore(v), nil
}

// NewStore wraps an already populated viper instance.
func NewStore(v *viper.Viper) *ViperStore {
	return &ViperStore{v: v}
}

func path(section, key string) string {
	return strings.ToLower(section + "." + key)
}

func (s *ViperStore) Has(section, key string) bool {
	return s.v.IsSet(path(section, key))
}

func (s *ViperStore) Raw(section, key, def string) string {
	if !s.Has(section, key) {
		return def
	}
	str, err := cast.ToStringE(s.v.Get(path(section, key)))
	if err != nil {
		return def
	}
	return str
}

func (s *ViperStore) String(section, key, def string) string {
	return expandEnv(s.Raw(section, key, def))
}

func (s *ViperStore) Dir(section, key, def string) (string, error) {
	dir := s.String(section, key, def)
	if dir == "" {
		return "", &ConfigError{Section: section, Key: key, Err: ErrMissingKey}
	}
	return filepath.Clean(dir), nil
}

func (s *ViperStore) Int(section, key string, def int) (int, error) {
	if !s.Has(section, key) {
		return def, nil
	}
	n, err := cast.ToIntE(s.v.Get(path(section, key)))
	if err != nil {
		return def, &ConfigError{Section: section, Key: key, Err: err}
	}
	return n, nil
}

func (s *ViperStore) Bool(section, key string, def bool) (bool, error) {
	if !s.Has(section, key) {
		return def, nil
	}
	b, err := cast.ToBoolE(s.v.Get(path(section, key)))
	if err != nil {
		return def, &ConfigError{Section: section, Key: key, Err: err}
	}
	return b, nil
}

func (s *ViperStore) List(section, key string) ([]string, error) {
	if !s.Has(section, key) {
		return nil, nil
	}
	switch val := s.v.Get(path(section, key)).(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			str, err := cast.ToStringE(item)
			if err != nil {
				return nil, &ConfigError{Section: section, Key: key, Err: err}
			}
			if str = strings.TrimSpace(str); str != "" {
				out = append(out, str)
			}
		}
		return out, nil
	default:
		str, err := cast.ToStringE(val)
		if err != nil {
			return nil, &ConfigError{Section: section, Key: key, Err: err}
		}
		return SplitList(str), nil
	}
}

func (s *ViperStore) Keys(section string) []string {
	m := s.v.GetStringMap(section)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, strings.ToUpper(k))
	}
	sort.Strings(keys)
	return keys
}

var envRef = regexp.MustCompile(`\{ENV\[([A-Za-z_][A-Za-z0-9_]*)\]\}`)

func expandEnv(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		return os.Getenv(envRef.FindStringSubmatch(ref)[1])
	})
}

// SplitList splits s on commas that are not nested in () or [], trimming
// each item and dropping empty ones. A list wrapped in [] is unwrapped.
func SplitList(s string) []string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") && closingBracket(s) == len(s)-1 {
		s = s[1 : len(s)-1]
	}

	var out []string
	depth, start := 0, 0
	add := func(item string) {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	for i, r := range s {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				add(s[start:i])
				start = i + 1
			}
		}
	}
	add(s[start:])
	return out
}

// closingBracket returns the index of the bracket closing s[0], or -1.
func closingBracket(s string) int {
	depth := 0
	for i, r := range s {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
