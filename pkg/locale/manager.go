package locale

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/killallgit/scribe/pkg/logger"
)

// Manager loads and caches per-locale translation data from a directory
// layout of locales/<locale-id>/*.yaml. The locales directory is an
// explicit constructor argument; there is no implicit filesystem probing.
//
// The internal cache is guarded by a RWMutex so a single Manager can be
// shared across concurrent renders.
type Manager struct {
	dir           string
	defaultLocale string

	mu    sync.RWMutex
	cache map[string]*Data
}

// NewManager creates a Manager rooted at dir with the given default
// locale. The directory must exist.
func NewManager(dir, defaultLocale string) (*Manager, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("locales directory does not exist: %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("locales path is not a directory: %s", dir)
	}
	return &Manager{
		dir:           dir,
		defaultLocale: defaultLocale,
		cache:         make(map[string]*Data),
	}, nil
}

// DefaultLocale returns the configured default locale id.
func (m *Manager) DefaultLocale() string {
	return m.defaultLocale
}

// Resolve applies the fallback chain for a requested locale: the
// requested id, its language-only prefix, then the default locale. The
// first candidate whose backing directory exists wins.
func (m *Manager) Resolve(requested string) (string, error) {
	for _, candidate := range m.fallbackChain(requested) {
		if candidate == "" {
			continue
		}
		if m.dirExists(candidate) {
			return candidate, nil
		}
	}
	return "", &NotFoundError{Locale: requested}
}

// Get returns the locale data for the given id, loading and caching it
// on first access. The id is resolved through the fallback chain before
// loading, so requesting "es-MX" with only an "es" directory present
// loads the "es" data.
func (m *Manager) Get(id string) (*Data, error) {
	m.mu.RLock()
	if data, ok := m.cache[id]; ok {
		m.mu.RUnlock()
		return data, nil
	}
	m.mu.RUnlock()

	resolved, err := m.Resolve(id)
	if err != nil {
		return nil, err
	}

	data, err := m.load(resolved)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.cache[id] = data
	m.mu.Unlock()

	logger.Debug("loaded locale %q (resolved from %q)", resolved, id)
	return data, nil
}

// IsValidLocale reports whether the id has a plausible locale shape:
// alphanumeric characters, hyphens and underscores, with no trailing
// separator.
func (m *Manager) IsValidLocale(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if !isAlnum(r) && r != '-' && r != '_' {
			return false
		}
	}
	return !strings.HasSuffix(id, "-") && !strings.HasSuffix(id, "_")
}

// CacheSize returns the number of cached locales.
func (m *Manager) CacheSize() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.cache)
}

func (m *Manager) fallbackChain(requested string) []string {
	return []string{requested, languagePrefix(requested), m.defaultLocale}
}

func (m *Manager) dirExists(id string) bool {
	info, err := os.Stat(filepath.Join(m.dir, id))
	return err == nil && info.IsDir()
}

// load merges every YAML file in the locale's directory into one table.
// Files are merged in lexicographic filename order with later files
// overriding earlier ones on top-level key collision, so merge results
// do not depend on platform directory enumeration order.
func (m *Manager) load(id string) (*Data, error) {
	dir := filepath.Join(m.dir, id)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading locale directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	merged := make(map[string]any)
	for _, name := range names {
		path := filepath.Join(dir, name)
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading locale file %s: %w", path, err)
		}
		table := make(map[string]any)
		if err := yaml.Unmarshal(raw, &table); err != nil {
			return nil, fmt.Errorf("parsing locale file %s: %w", path, err)
		}
		for k, v := range table {
			merged[k] = v
		}
	}

	return &Data{
		locale:    id,
		strings:   merged,
		direction: directionFor(id, merged),
	}, nil
}

// languagePrefix extracts the language subtag from a locale id, using
// BCP 47 parsing when possible ("es-MX" -> "es").
func languagePrefix(id string) string {
	if tag, err := language.Parse(id); err == nil {
		base, conf := tag.Base()
		if conf != language.No {
			return base.String()
		}
	}
	prefix, _, _ := strings.Cut(id, "-")
	return prefix
}

func isAlnum(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
}
