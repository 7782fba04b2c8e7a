package template

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/tmc/langchaingo/schema"

	"github.com/killallgit/scribe/pkg/locale"
	"github.com/killallgit/scribe/pkg/logger"
)

// conversationsDir is the subdirectory holding conversation templates.
const conversationsDir = "conversations"

// TemplateSet is a directory-scoped registry of compiled templates and
// conversation templates with bulk locale switching. The mutex guards
// the maps for the optional file watcher; individual templates stay
// immutable.
type TemplateSet struct {
	mu            sync.RWMutex
	templates     map[string]*PromptTemplate
	conversations map[string]*ConversationTemplate
	baseDir       string
	localeID      string
	locales       *locale.Manager
}

// Builder configures a TemplateSet before loading.
type Builder struct {
	dir           string
	defaultLocale string
	localePaths   []string
	autoLocales   bool
}

// NewBuilder returns a Builder with the default locale preset.
func NewBuilder() *Builder {
	return &Builder{defaultLocale: DefaultLocale}
}

// Directory sets the template directory. Required.
func (b *Builder) Directory(dir string) *Builder {
	b.dir = dir
	return b
}

// DefaultLocale sets the locale templates are initially bound to.
func (b *Builder) DefaultLocale(id string) *Builder {
	b.defaultLocale = id
	return b
}

// LocalePaths sets explicit candidate locale directories; the first one
// that exists is used.
func (b *Builder) LocalePaths(paths ...string) *Builder {
	b.localePaths = paths
	return b
}

// AutoConfigureLocales looks for a locales/ subdirectory under the
// template directory and wires it up when present.
func (b *Builder) AutoConfigureLocales() *Builder {
	b.autoLocales = true
	return b
}

// Build loads the set. A missing template directory yields an empty set
// rather than an error.
func (b *Builder) Build() (*TemplateSet, error) {
	if b.dir == "" {
		return nil, fmt.Errorf("template directory must be specified")
	}

	var manager *locale.Manager
	candidates := b.localePaths
	if b.autoLocales {
		candidates = append(candidates, filepath.Join(b.dir, "locales"))
	}
	for _, path := range candidates {
		m, err := locale.NewManager(path, b.defaultLocale)
		if err != nil {
			continue
		}
		manager = m
		break
	}

	s := &TemplateSet{
		templates:     map[string]*PromptTemplate{},
		conversations: map[string]*ConversationTemplate{},
		baseDir:       b.dir,
		localeID:      b.defaultLocale,
		locales:       manager,
	}
	if err := s.loadAll(); err != nil {
		return nil, err
	}
	return s, nil
}

// FromDir loads every top-level .md file as a template and every .md
// file under conversations/ as a conversation template, auto-detecting
// a locales/ subdirectory.
func FromDir(dir string) (*TemplateSet, error) {
	return NewBuilder().Directory(dir).AutoConfigureLocales().Build()
}

func (s *TemplateSet) loadAll() error {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		logger.Debug("template directory %s not readable: %v", s.baseDir, err)
		return nil
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".md" {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".md")
		t, err := s.loadTemplate(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			return err
		}
		s.templates[name] = t
		logger.Debug("loaded template %q", name)
	}

	convDir := filepath.Join(s.baseDir, conversationsDir)
	convEntries, err := os.ReadDir(convDir)
	if err != nil {
		return nil
	}
	for _, entry := range convEntries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".md" {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".md")
		c, err := s.loadConversation(filepath.Join(convDir, entry.Name()))
		if err != nil {
			return err
		}
		s.conversations[name] = c
		logger.Debug("loaded conversation template %q", name)
	}
	return nil
}

func (s *TemplateSet) loadTemplate(path string) (*PromptTemplate, error) {
	t, err := Load(path)
	if err != nil {
		return nil, err
	}
	t = t.WithLocale(s.localeID)
	if s.locales != nil {
		t = t.WithLocales(s.locales)
	}
	return t, nil
}

func (s *TemplateSet) loadConversation(path string) (*ConversationTemplate, error) {
	c, err := LoadConversation(path)
	if err != nil {
		return nil, err
	}
	c = c.WithLocale(s.localeID)
	if s.locales != nil {
		c = c.WithLocales(s.locales)
	}
	return c, nil
}

// WithLocale returns a new set with every member template rebound to
// the given locale.
func (s *TemplateSet) WithLocale(id string) *TemplateSet {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := &TemplateSet{
		templates:     make(map[string]*PromptTemplate, len(s.templates)),
		conversations: make(map[string]*ConversationTemplate, len(s.conversations)),
		baseDir:       s.baseDir,
		localeID:      id,
		locales:       s.locales,
	}
	for name, t := range s.templates {
		out.templates[name] = t.WithLocale(id)
	}
	for name, c := range s.conversations {
		out.conversations[name] = c.WithLocale(id)
	}
	return out
}

// Locale returns the locale the set's templates are bound to.
func (s *TemplateSet) Locale() string {
	return s.localeID
}

// Locales returns the set's locale manager, or nil when no locale
// directory was configured.
func (s *TemplateSet) Locales() *locale.Manager {
	return s.locales
}

// Get returns a template by name.
func (s *TemplateSet) Get(name string) (*PromptTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.templates[name]
	if !ok {
		return nil, fmt.Errorf("template not found: %s", name)
	}
	return t, nil
}

// Render renders a template by name.
func (s *TemplateSet) Render(name string, vars map[string]any) (string, error) {
	t, err := s.Get(name)
	if err != nil {
		return "", err
	}
	return t.Render(vars)
}

// RenderConversation renders a conversation template by name into
// role-tagged segments.
func (s *TemplateSet) RenderConversation(name string, vars map[string]any) ([]Segment, error) {
	s.mu.RLock()
	c, ok := s.conversations[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("conversation template not found: %s", name)
	}
	return c.Render(vars)
}

// RenderConversationMessages renders a conversation template by name as
// langchaingo chat messages.
func (s *TemplateSet) RenderConversationMessages(name string, vars map[string]any) ([]schema.ChatMessage, error) {
	s.mu.RLock()
	c, ok := s.conversations[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("conversation template not found: %s", name)
	}
	return c.RenderMessages(vars)
}

// ListTemplates returns all template names in sorted order.
func (s *TemplateSet) ListTemplates() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.templates))
	for name := range s.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TemplateExists reports whether a template is registered.
func (s *TemplateSet) TemplateExists(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.templates[name]
	return ok
}

// ListConversations returns all conversation template names in sorted order.
func (s *TemplateSet) ListConversations() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.conversations))
	for name := range s.conversations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ConversationExists reports whether a conversation template is registered.
func (s *TemplateSet) ConversationExists(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.conversations[name]
	return ok
}

// reload re-compiles a single template file in place. Used by the
// watcher; load failures leave the previous version registered.
func (s *TemplateSet) reload(path string) {
	name := strings.TrimSuffix(filepath.Base(path), ".md")

	if filepath.Base(filepath.Dir(path)) == conversationsDir {
		c, err := s.loadConversation(path)
		if err != nil {
			logger.Warn("reload of conversation %q failed: %v", name, err)
			return
		}
		s.mu.Lock()
		s.conversations[name] = c
		s.mu.Unlock()
		logger.Info("reloaded conversation template %q", name)
		return
	}

	t, err := s.loadTemplate(path)
	if err != nil {
		logger.Warn("reload of template %q failed: %v", name, err)
		return
	}
	s.mu.Lock()
	s.templates[name] = t
	s.mu.Unlock()
	logger.Info("reloaded template %q", name)
}
