package template

// Node is any node in a parsed template. The tree is acyclic by
// construction; cycles can only arise dynamically through include
// resolution at render time.
type Node interface {
	node()
}

// TextNode is literal text between directives.
type TextNode struct {
	Text string
}

func (*TextNode) node() {}

// VariableNode is a plain substitution: {{name}}
type VariableNode struct {
	Name string
}

func (*VariableNode) node() {}

// NestedVariableNode is a dotted-path substitution: {{a.b.c}}
type NestedVariableNode struct {
	Path []string
}

func (*NestedVariableNode) node() {}

// IfNode is a conditional block: {{#if cond}}...{{else}}...{{/if}}
// Else is nil when no else arm was written.
type IfNode struct {
	Condition string
	Then      []Node
	Else      []Node
}

func (*IfNode) node() {}

// EachNode is an iteration block: {{#each arr}}...{{/each}}
type EachNode struct {
	Source string
	Body   []Node
}

func (*EachNode) node() {}

// CaseClause is one arm of a switch block.
type CaseClause struct {
	Value string
	Body  []Node
}

// SwitchNode is a multi-way branch: {{#switch v}}{{#case "x"}}...{{/case}}{{/switch}}
// Cases are matched in order by exact string equality; an unmatched
// value renders to the empty string.
type SwitchNode struct {
	Source string
	Cases  []CaseClause
}

func (*SwitchNode) node() {}

// IfLocaleNode branches on the executor's active locale:
// {{#if_locale "en"}}...{{else}}...{{/if_locale}}
type IfLocaleNode struct {
	Locale string
	Then   []Node
	Else   []Node
}

func (*IfLocaleNode) node() {}

// IncludeNode composes another template file: {{> path/file.md param=value}}
// Params map parameter names to their raw, unresolved expressions.
type IncludeNode struct {
	Path   string
	Params map[string]string
}

func (*IncludeNode) node() {}

// I18nNode is a translation lookup: {{i18n "dotted.key" name=value}}
type I18nNode struct {
	Key    string
	Params map[string]string
}

func (*I18nNode) node() {}

// HelperNode invokes a formatting helper:
// {{format_number value style="percent"}}
type HelperNode struct {
	Name   string
	Args   []string
	Params map[string]string
}

func (*HelperNode) node() {}
