package template

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, src string, vars map[string]any) (string, error) {
	t.Helper()
	tmpl, err := FromContent(src)
	require.NoError(t, err)
	return tmpl.Render(vars)
}

func TestRenderVariables(t *testing.T) {
	t.Run("plain substitution", func(t *testing.T) {
		out, err := render(t, "Hello {{name}}!", map[string]any{"name": "Alice"})
		require.NoError(t, err)
		assert.Equal(t, "Hello Alice!", out)
	})

	t.Run("missing variable fails", func(t *testing.T) {
		_, err := render(t, "Hello {{name}}!", map[string]any{})
		var verr *VariableNotFoundError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "name", verr.Name)
	})

	t.Run("nested substitution", func(t *testing.T) {
		out, err := render(t, "{{user.name}}", map[string]any{
			"user": map[string]any{"name": "Alice"},
		})
		require.NoError(t, err)
		assert.Equal(t, "Alice", out)
	})

	t.Run("missing nested leaf fails with full path", func(t *testing.T) {
		_, err := render(t, "{{user.name}}", map[string]any{
			"user": map[string]any{},
		})
		var verr *VariableNotFoundError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "user.name", verr.Name)
	})

	t.Run("traversal through non-object fails", func(t *testing.T) {
		_, err := render(t, "{{user.name.first}}", map[string]any{
			"user": map[string]any{"name": "Alice"},
		})
		var verr *VariableNotFoundError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("scalar stringification", func(t *testing.T) {
		out, err := render(t, "{{n}}|{{f}}|{{b}}|{{z}}", map[string]any{
			"n": 42, "f": 2.5, "b": true, "z": nil,
		})
		require.NoError(t, err)
		assert.Equal(t, "42|2.5|true|", out)
	})

	t.Run("whole float renders without decimals", func(t *testing.T) {
		out, err := render(t, "{{f}}", map[string]any{"f": 5.0})
		require.NoError(t, err)
		assert.Equal(t, "5", out)
	})

	t.Run("array is not directly printable", func(t *testing.T) {
		_, err := render(t, "{{items}}", map[string]any{"items": []any{"a"}})
		require.Error(t, err)
	})
}

func TestRenderIf(t *testing.T) {
	src := "{{#if debug}}X{{/if}}"

	t.Run("true renders body", func(t *testing.T) {
		out, err := render(t, src, map[string]any{"debug": true})
		require.NoError(t, err)
		assert.Equal(t, "X", out)
	})

	t.Run("false renders nothing", func(t *testing.T) {
		out, err := render(t, src, map[string]any{"debug": false})
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("missing condition is false, not an error", func(t *testing.T) {
		out, err := render(t, src, map[string]any{})
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("else arm", func(t *testing.T) {
		out, err := render(t, "{{#if on}}yes{{else}}no{{/if}}", map[string]any{"on": false})
		require.NoError(t, err)
		assert.Equal(t, "no", out)
	})

	t.Run("truthiness table", func(t *testing.T) {
		cases := []struct {
			value  any
			expect bool
		}{
			{nil, false},
			{"", false},
			{"x", true},
			{0, false},
			{3, true},
			{0.0, false},
			{0.1, true},
			{[]any{}, false},
			{[]any{1}, true},
			{map[string]any{}, false},
			{map[string]any{"k": 1}, true},
		}
		for _, tc := range cases {
			out, err := render(t, "{{#if v}}T{{else}}F{{/if}}", map[string]any{"v": tc.value})
			require.NoError(t, err)
			if tc.expect {
				assert.Equal(t, "T", out, "value %#v", tc.value)
			} else {
				assert.Equal(t, "F", out, "value %#v", tc.value)
			}
		}
	})
}

func TestRenderEach(t *testing.T) {
	t.Run("iterates with this binding", func(t *testing.T) {
		out, err := render(t, "{{#each items}}{{this}}{{/each}}", map[string]any{
			"items": []any{"a", "b"},
		})
		require.NoError(t, err)
		assert.Equal(t, "ab", out)
	})

	t.Run("object elements expose this.property", func(t *testing.T) {
		out, err := render(t, "{{#each users}}{{this.name}};{{/each}}", map[string]any{
			"users": []any{
				map[string]any{"name": "Alice"},
				map[string]any{"name": "Bob"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "Alice;Bob;", out)
	})

	t.Run("missing source renders empty", func(t *testing.T) {
		out, err := render(t, "{{#each items}}{{this}}{{/each}}", map[string]any{})
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("non-array source renders empty", func(t *testing.T) {
		out, err := render(t, "{{#each items}}{{this}}{{/each}}", map[string]any{"items": "oops"})
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("outer variables stay visible inside the loop", func(t *testing.T) {
		out, err := render(t, "{{#each items}}{{prefix}}{{this}}{{/each}}", map[string]any{
			"items":  []any{"1", "2"},
			"prefix": "#",
		})
		require.NoError(t, err)
		assert.Equal(t, "#1#2", out)
	})
}

func TestRenderSwitch(t *testing.T) {
	src := `{{#switch kind}}{{#case "a"}}alpha{{/case}}{{#case "2"}}two{{/case}}{{/switch}}`

	t.Run("matches string literal", func(t *testing.T) {
		out, err := render(t, src, map[string]any{"kind": "a"})
		require.NoError(t, err)
		assert.Equal(t, "alpha", out)
	})

	t.Run("matches stringified number", func(t *testing.T) {
		out, err := render(t, src, map[string]any{"kind": 2})
		require.NoError(t, err)
		assert.Equal(t, "two", out)
	})

	t.Run("no match renders empty", func(t *testing.T) {
		out, err := render(t, src, map[string]any{"kind": "z"})
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("missing source renders empty", func(t *testing.T) {
		out, err := render(t, src, map[string]any{})
		require.NoError(t, err)
		assert.Empty(t, out)
	})
}

func TestRenderIfLocale(t *testing.T) {
	src := `{{#if_locale "ar"}}rtl{{else}}ltr{{/if_locale}}`

	t.Run("matching locale", func(t *testing.T) {
		tmpl, err := FromContent(src)
		require.NoError(t, err)
		out, err := tmpl.WithLocale("ar").Render(nil)
		require.NoError(t, err)
		assert.Equal(t, "rtl", out)
	})

	t.Run("non-matching locale takes else", func(t *testing.T) {
		tmpl, err := FromContent(src)
		require.NoError(t, err)
		out, err := tmpl.Render(nil)
		require.NoError(t, err)
		assert.Equal(t, "ltr", out)
	})

	t.Run("comparison is exact, not prefix", func(t *testing.T) {
		tmpl, err := FromContent(src)
		require.NoError(t, err)
		out, err := tmpl.WithLocale("ar-EG").Render(nil)
		require.NoError(t, err)
		assert.Equal(t, "ltr", out)
	})
}

func TestRenderInclude(t *testing.T) {
	writeFile := func(t *testing.T, dir, name, content string) {
		t.Helper()
		require.NoError(t, os.MkdirAll(filepath.Dir(filepath.Join(dir, name)), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}

	t.Run("renders included file with params", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "partials/header.md", "# {{title}}\n")
		writeFile(t, dir, "page.md", `{{> partials/header.md title="Intro"}}body`)

		tmpl, err := Load(filepath.Join(dir, "page.md"))
		require.NoError(t, err)
		out, err := tmpl.Render(nil)
		require.NoError(t, err)
		assert.Equal(t, "# Intro\nbody", out)
	})

	t.Run("include params resolve variables", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "partials/header.md", "by {{author}}")
		writeFile(t, dir, "page.md", "{{> partials/header.md author=user.name}}")

		tmpl, err := Load(filepath.Join(dir, "page.md"))
		require.NoError(t, err)
		out, err := tmpl.Render(map[string]any{
			"user": map[string]any{"name": "Alice"},
		})
		require.NoError(t, err)
		assert.Equal(t, "by Alice", out)
	})

	t.Run("included frontmatter defaults fill gaps", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "partials/note.md", "---\nvariables:\n  tone: friendly\n---\n{{tone}} note")
		writeFile(t, dir, "page.md", "{{> partials/note.md}}")

		tmpl, err := Load(filepath.Join(dir, "page.md"))
		require.NoError(t, err)
		out, err := tmpl.Render(nil)
		require.NoError(t, err)
		assert.Contains(t, out, "friendly note")
	})

	t.Run("missing include degrades to inline marker", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "page.md", "before {{> missing.md}} after")

		tmpl, err := Load(filepath.Join(dir, "page.md"))
		require.NoError(t, err)
		out, err := tmpl.Render(nil)
		require.NoError(t, err)
		assert.Equal(t, "before <!-- include not found: missing.md --> after", out)
	})

	t.Run("self-referential include terminates with marker", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.md", "A{{> a.md}}")

		tmpl, err := Load(filepath.Join(dir, "a.md"))
		require.NoError(t, err)
		out, err := tmpl.Render(nil)
		require.NoError(t, err)
		// The root file is on the cycle stack from the start, so its
		// body renders exactly once.
		assert.Equal(t, "A<!-- circular include: a.md -->", out)
	})

	t.Run("mutual include cycle terminates", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.md", "A{{> b.md}}")
		writeFile(t, dir, "b.md", "B{{> a.md}}")

		tmpl, err := Load(filepath.Join(dir, "a.md"))
		require.NoError(t, err)
		out, err := tmpl.Render(nil)
		require.NoError(t, err)
		assert.Contains(t, out, "circular include")
	})
}

func TestRenderHelper(t *testing.T) {
	t.Run("percent style", func(t *testing.T) {
		out, err := render(t, `{{format_number v style="percent"}}`, map[string]any{"v": 0.75})
		require.NoError(t, err)
		assert.Equal(t, "75%", out)

		out, err = render(t, `{{format_number v style="percent"}}`, map[string]any{"v": 0.847})
		require.NoError(t, err)
		assert.Equal(t, "84.7%", out)
	})

	t.Run("currency style", func(t *testing.T) {
		out, err := render(t, `{{format_number v style="currency"}}`, map[string]any{"v": 12.5})
		require.NoError(t, err)
		assert.Equal(t, "$12.50", out)

		out, err = render(t, `{{format_number v style="currency" currency="EUR"}}`, map[string]any{"v": 12.5})
		require.NoError(t, err)
		assert.Equal(t, "12.50 EUR", out)
	})

	t.Run("decimal style with precision", func(t *testing.T) {
		out, err := render(t, `{{format_number v style="decimal"}}`, map[string]any{"v": 3.14159})
		require.NoError(t, err)
		assert.Equal(t, "3.14", out)

		out, err = render(t, `{{format_number v style="decimal" precision="4"}}`, map[string]any{"v": 3.14159})
		require.NoError(t, err)
		assert.Equal(t, "3.1416", out)
	})

	t.Run("missing numeric variable degrades to marker", func(t *testing.T) {
		out, err := render(t, `{{format_number v style="percent"}}`, map[string]any{})
		require.NoError(t, err)
		assert.Equal(t, "<!-- format_number: v is not a number -->", out)
	})
}

func TestRenderDeterminism(t *testing.T) {
	src := `{{#if a}}{{x}}{{/if}}{{#each items}}{{this}}{{/each}}`
	vars := map[string]any{
		"a":     true,
		"x":     "val",
		"items": []any{"1", "2", "3"},
	}

	tmpl, err := FromContent(src)
	require.NoError(t, err)

	first, err := tmpl.Render(vars)
	require.NoError(t, err)
	second, err := tmpl.Render(vars)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.NotContains(t, first, "{{")
	assert.NotContains(t, first, "}}")
}
