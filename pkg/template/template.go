package template

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/killallgit/scribe/pkg/locale"
)

// DefaultLocale is the locale a template renders with until WithLocale
// is called.
const DefaultLocale = "en"

// Frontmatter is template metadata from the optional YAML block
// delimited by --- lines at the top of a template file.
type Frontmatter struct {
	Variables         map[string]any `yaml:"variables"`
	RequiredVariables []string       `yaml:"required_variables"`
	I18nKey           string         `yaml:"i18n_key"`
	Includes          []string       `yaml:"includes"`
}

// PromptTemplate is a compiled template: parsed frontmatter plus the
// node tree, bound to a locale. It is immutable after construction;
// WithLocale, WithLocales and Var return updated copies, so the same
// template value can be rendered concurrently without coordination.
type PromptTemplate struct {
	frontmatter *Frontmatter
	nodes       []Node
	defaults    map[string]any
	required    []string
	baseDir     string
	sourcePath  string
	localeID    string
	locales     *locale.Manager
}

// Load reads and compiles a template file. Includes resolve relative to
// the file's directory, and any includes declared in frontmatter are
// validated eagerly.
func Load(path string) (*PromptTemplate, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template %s: %w", path, err)
	}
	t, err := FromContent(string(raw))
	if err != nil {
		return nil, fmt.Errorf("compiling template %s: %w", path, err)
	}
	t, err = t.WithBaseDir(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	t.sourcePath = filepath.Clean(path)
	return t, nil
}

// FromContent compiles a template from source text. Includes resolve
// relative to the working directory until WithBaseDir is called.
func FromContent(content string) (*PromptTemplate, error) {
	fm, body, err := parseFrontmatter(content)
	if err != nil {
		return nil, err
	}
	nodes, err := Parse(body)
	if err != nil {
		return nil, err
	}

	t := &PromptTemplate{
		frontmatter: fm,
		nodes:       nodes,
		defaults:    map[string]any{},
		localeID:    DefaultLocale,
	}
	if fm != nil {
		for k, v := range fm.Variables {
			t.defaults[k] = v
		}
		t.required = fm.RequiredVariables
	}
	return t, nil
}

// WithBaseDir returns a copy whose includes resolve relative to dir.
// Includes declared in frontmatter are checked for existence.
func (t *PromptTemplate) WithBaseDir(dir string) (*PromptTemplate, error) {
	if t.frontmatter != nil {
		for _, inc := range t.frontmatter.Includes {
			if _, err := os.Stat(filepath.Join(dir, inc)); err != nil {
				return nil, fmt.Errorf("declared include not found: %s: %w", inc, err)
			}
		}
	}
	out := t.clone()
	out.baseDir = dir
	return out, nil
}

// WithLocale returns a copy bound to the given locale.
func (t *PromptTemplate) WithLocale(id string) *PromptTemplate {
	out := t.clone()
	out.localeID = id
	return out
}

// WithLocales returns a copy that consults the given locale manager for
// translation and locale-conditional directives.
func (t *PromptTemplate) WithLocales(m *locale.Manager) *PromptTemplate {
	out := t.clone()
	out.locales = m
	return out
}

// Var returns a copy with an additional default variable binding.
// Values supplied at render time still win.
func (t *PromptTemplate) Var(name string, value any) *PromptTemplate {
	out := t.clone()
	out.defaults = copyVars(t.defaults)
	out.defaults[name] = value
	return out
}

// Locale returns the locale this template renders with.
func (t *PromptTemplate) Locale() string {
	return t.localeID
}

// RequiredVariables returns the names that must be present in the
// merged variable set before rendering begins.
func (t *PromptTemplate) RequiredVariables() []string {
	return t.required
}

// I18nKey returns the frontmatter i18n_key, if declared.
func (t *PromptTemplate) I18nKey() string {
	if t.frontmatter == nil {
		return ""
	}
	return t.frontmatter.I18nKey
}

// ValidateVariables checks the merged variable set against the required
// list, reporting every missing name at once.
func (t *PromptTemplate) ValidateVariables(vars map[string]any) error {
	var missing []string
	for _, name := range t.required {
		if _, ok := vars[name]; ok {
			continue
		}
		if _, ok := t.defaults[name]; ok {
			continue
		}
		missing = append(missing, name)
	}
	if len(missing) > 0 {
		return &RequiredVariablesMissingError{Names: missing}
	}
	return nil
}

// Render merges the supplied variables over frontmatter defaults and
// executes the node tree. It is deterministic given identical inputs.
func (t *PromptTemplate) Render(vars map[string]any) (string, error) {
	if err := t.ValidateVariables(vars); err != nil {
		return "", err
	}

	merged := copyVars(t.defaults)
	for k, v := range vars {
		merged[k] = v
	}

	r := &renderer{
		locale:  t.localeID,
		locales: t.locales,
		baseDir: t.baseDir,
	}
	// The template's own file participates in cycle detection, so a
	// template that includes itself hits the guard on the first descent.
	if t.sourcePath != "" {
		r.stack = []string{t.sourcePath}
	}
	return r.renderNodes(t.nodes, merged)
}

// RenderWithContext renders against any JSON-serializable value,
// typically a struct with json tags.
func (t *PromptTemplate) RenderWithContext(ctx any) (string, error) {
	raw, err := json.Marshal(ctx)
	if err != nil {
		return "", fmt.Errorf("serializing render context: %w", err)
	}
	vars := map[string]any{}
	if err := json.Unmarshal(raw, &vars); err != nil {
		return "", fmt.Errorf("render context must serialize to an object: %w", err)
	}
	return t.Render(vars)
}

func (t *PromptTemplate) clone() *PromptTemplate {
	out := *t
	return &out
}

// parseFrontmatter splits an optional leading YAML block from the
// template body. Content that does not start with --- has no
// frontmatter.
func parseFrontmatter(content string) (*Frontmatter, string, error) {
	if !strings.HasPrefix(content, "---") {
		return nil, content, nil
	}
	parts := strings.SplitN(content, "---", 3)
	if len(parts) < 3 {
		return nil, content, nil
	}

	yamlContent := strings.TrimSpace(parts[1])
	// Drop the newline that terminates the closing delimiter line so the
	// body starts at its first real line. Further blank lines are kept.
	body := strings.TrimPrefix(parts[2], "\n")
	if yamlContent == "" {
		return nil, body, nil
	}

	fm := &Frontmatter{}
	if err := yaml.Unmarshal([]byte(yamlContent), fm); err != nil {
		return nil, "", fmt.Errorf("invalid YAML frontmatter: %w", err)
	}
	return fm, body, nil
}
