// Package template implements a locale-aware prompt template engine for
// parameterized Markdown documents.
//
// Templates are compiled once into a node tree and rendered repeatedly
// against different variable bindings and locales. The directive syntax
// supports variable substitution, conditionals, iteration, multi-way
// branching, locale branching, cross-file inclusion, translation lookup
// and formatting helpers:
//
//	{{name}}  {{user.name}}
//	{{#if debug}}...{{else}}...{{/if}}
//	{{#each items}}{{this}} {{this.field}}{{/each}}
//	{{#switch kind}}{{#case "a"}}...{{/case}}{{/switch}}
//	{{#if_locale "ar"}}...{{else}}...{{/if_locale}}
//	{{> partials/header.md title="Intro"}}
//	{{i18n "system.greeting" name=user.name}}
//	{{format_number score style="percent"}}
//
// Basic Usage:
//
//	t, _ := template.FromContent("Hello {{name}}!")
//	out, _ := t.Render(map[string]any{"name": "Alice"})
//
// Templates may carry YAML frontmatter declaring default variables, a
// required-variable list, and static includes:
//
//	---
//	variables:
//	  role: "assistant"
//	required_variables:
//	  - domain
//	---
//	You are a {{role}} specializing in {{domain}}.
//
// Directory loading:
//
//	set, _ := template.FromDir("./prompts")
//	out, _ := set.Render("greeting", vars)
//	msgs, _ := set.RenderConversationMessages("tutor", vars)
//
// Plain and nested variable lookups are strict: a missing binding fails
// the render. Conditionals, loops, includes and helpers are lenient;
// see the individual node documentation.
//
// Rendering is deterministic and templates are immutable values, safe
// to share across goroutines. Locale data is loaded through
// pkg/locale's Manager, which caches per-locale translation tables and
// resolves fallback chains (es-MX -> es -> default).
package template
