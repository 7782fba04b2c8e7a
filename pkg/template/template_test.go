package template

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrontmatter(t *testing.T) {
	t.Run("defaults fill missing variables", func(t *testing.T) {
		src := "---\nvariables:\n  greeting: Hello\n---\n{{greeting}}, {{name}}!"
		tmpl, err := FromContent(src)
		require.NoError(t, err)

		out, err := tmpl.Render(map[string]any{"name": "Alice"})
		require.NoError(t, err)
		assert.Equal(t, "Hello, Alice!", out)
	})

	t.Run("supplied variables override defaults", func(t *testing.T) {
		src := "---\nvariables:\n  greeting: Hello\n---\n{{greeting}}"
		tmpl, err := FromContent(src)
		require.NoError(t, err)

		out, err := tmpl.Render(map[string]any{"greeting": "Hola"})
		require.NoError(t, err)
		assert.Equal(t, "Hola", out)
	})

	t.Run("body starts after the closing delimiter line", func(t *testing.T) {
		src := "---\nvariables:\n  a: x\n---\n\n{{a}}"
		tmpl, err := FromContent(src)
		require.NoError(t, err)

		out, err := tmpl.Render(nil)
		require.NoError(t, err)
		assert.Equal(t, "\nx", out)
	})

	t.Run("no frontmatter", func(t *testing.T) {
		tmpl, err := FromContent("plain body")
		require.NoError(t, err)
		out, err := tmpl.Render(nil)
		require.NoError(t, err)
		assert.Equal(t, "plain body", out)
	})

	t.Run("body starting with dashes but no closing delimiter", func(t *testing.T) {
		tmpl, err := FromContent("--- not frontmatter")
		require.NoError(t, err)
		out, err := tmpl.Render(nil)
		require.NoError(t, err)
		assert.Equal(t, "--- not frontmatter", out)
	})

	t.Run("invalid YAML is a load error", func(t *testing.T) {
		_, err := FromContent("---\nvariables: [unclosed\n---\nbody")
		require.Error(t, err)
	})

	t.Run("i18n_key exposed", func(t *testing.T) {
		tmpl, err := FromContent("---\ni18n_key: prompts.summary\n---\nbody")
		require.NoError(t, err)
		assert.Equal(t, "prompts.summary", tmpl.I18nKey())
	})
}

func TestValidateVariables(t *testing.T) {
	src := "---\nrequired_variables:\n  - name\n  - topic\n---\n{{name}} {{topic}}"

	t.Run("all missing names reported together", func(t *testing.T) {
		tmpl, err := FromContent(src)
		require.NoError(t, err)

		_, err = tmpl.Render(map[string]any{})
		var merr *RequiredVariablesMissingError
		require.ErrorAs(t, err, &merr)
		assert.ElementsMatch(t, []string{"name", "topic"}, merr.Names)
	})

	t.Run("defaults satisfy required names", func(t *testing.T) {
		tmpl, err := FromContent(src)
		require.NoError(t, err)

		tmpl = tmpl.Var("topic", "weather")
		_, err = tmpl.Render(map[string]any{"name": "Alice"})
		require.NoError(t, err)
	})

	t.Run("required check runs before rendering", func(t *testing.T) {
		tmpl, err := FromContent(src)
		require.NoError(t, err)

		out, err := tmpl.Render(nil)
		require.Error(t, err)
		assert.Empty(t, out)
	})
}

func TestFunctionalUpdates(t *testing.T) {
	t.Run("WithLocale does not mutate the original", func(t *testing.T) {
		tmpl, err := FromContent("body")
		require.NoError(t, err)

		fr := tmpl.WithLocale("fr")
		assert.Equal(t, DefaultLocale, tmpl.Locale())
		assert.Equal(t, "fr", fr.Locale())
	})

	t.Run("Var does not mutate the original", func(t *testing.T) {
		tmpl, err := FromContent("{{x}}")
		require.NoError(t, err)

		bound := tmpl.Var("x", "v")
		out, err := bound.Render(nil)
		require.NoError(t, err)
		assert.Equal(t, "v", out)

		_, err = tmpl.Render(nil)
		require.Error(t, err)
	})
}

func TestRenderWithContext(t *testing.T) {
	type report struct {
		Title string  `json:"title"`
		Score float64 `json:"score"`
	}

	tmpl, err := FromContent(`{{title}}: {{format_number score style="percent"}}`)
	require.NoError(t, err)

	out, err := tmpl.RenderWithContext(report{Title: "Accuracy", Score: 0.93})
	require.NoError(t, err)
	assert.Equal(t, "Accuracy: 93%", out)

	t.Run("non-object context rejected", func(t *testing.T) {
		_, err := tmpl.RenderWithContext([]string{"not", "an", "object"})
		require.Error(t, err)
	})
}

func TestLoad(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.md"))
		require.Error(t, err)
	})

	t.Run("declared include validated eagerly", func(t *testing.T) {
		dir := t.TempDir()
		src := "---\nincludes:\n  - partials/header.md\n---\nbody"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "page.md"), []byte(src), 0644))

		_, err := Load(filepath.Join(dir, "page.md"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "declared include not found")

		require.NoError(t, os.MkdirAll(filepath.Join(dir, "partials"), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "partials", "header.md"), []byte("h"), 0644))
		_, err = Load(filepath.Join(dir, "page.md"))
		require.NoError(t, err)
	})
}
