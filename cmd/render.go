package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/killallgit/scribe/pkg/config"
	"github.com/killallgit/scribe/pkg/template"
)

var (
	renderVars         []string
	renderConversation bool
)

var renderCmd = &cobra.Command{
	Use:   "render <template>",
	Short: "Render a template to stdout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		set, err := loadSet(cmd)
		if err != nil {
			return err
		}

		vars, err := parseVars(renderVars)
		if err != nil {
			return err
		}

		if renderConversation {
			segments, err := set.RenderConversation(args[0], vars)
			if err != nil {
				return err
			}
			for _, seg := range segments {
				fmt.Printf("[%s]\n%s\n\n", seg.Role, seg.Content)
			}
			return nil
		}

		out, err := set.Render(args[0], vars)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

func init() {
	renderCmd.Flags().StringArrayVar(&renderVars, "var", nil, "variable binding key=value (value may be JSON)")
	renderCmd.Flags().BoolVar(&renderConversation, "conversation", false, "render a conversation template")
	rootCmd.AddCommand(renderCmd)
}

func loadSet(cmd *cobra.Command) (*template.TemplateSet, error) {
	b := template.NewBuilder().
		Directory(templatesDir(cmd)).
		DefaultLocale(activeLocale(cmd)).
		AutoConfigureLocales()
	if dir := config.Get().Locales.Directory; dir != "" {
		b.LocalePaths(dir)
	}
	return b.Build()
}

// parseVars turns key=value flags into a variable map. Values that
// parse as JSON keep their JSON type; everything else is a string.
func parseVars(pairs []string) (map[string]any, error) {
	vars := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --var %q: expected key=value", pair)
		}
		var parsed any
		if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
			vars[key] = parsed
		} else {
			vars[key] = raw
		}
	}
	return vars, nil
}
