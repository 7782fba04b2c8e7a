package template

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/killallgit/scribe/pkg/locale"
)

// renderer walks a node tree against a variable context and an active
// locale. It is created fresh per render call; the include stack tracks
// in-flight include paths to break file-graph cycles.
type renderer struct {
	locale  string
	locales *locale.Manager
	baseDir string
	stack   []string
}

func (r *renderer) renderNodes(nodes []Node, vars map[string]any) (string, error) {
	var b strings.Builder
	for _, node := range nodes {
		s, err := r.renderNode(node, vars)
		if err != nil {
			return "", err
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

func (r *renderer) renderNode(node Node, vars map[string]any) (string, error) {
	switch n := node.(type) {
	case *TextNode:
		return n.Text, nil

	case *VariableNode:
		v, ok := vars[n.Name]
		if !ok {
			return "", &VariableNotFoundError{Name: n.Name}
		}
		s, ok := valueToString(v)
		if !ok {
			return "", fmt.Errorf("variable %q is not a printable value; use nested or #each access", n.Name)
		}
		return s, nil

	case *NestedVariableNode:
		v, ok := resolveNested(vars, n.Path)
		if !ok {
			return "", &VariableNotFoundError{Name: strings.Join(n.Path, ".")}
		}
		s, ok := valueToString(v)
		if !ok {
			return "", fmt.Errorf("variable %q is not a printable value; use nested or #each access", strings.Join(n.Path, "."))
		}
		return s, nil

	case *IfNode:
		// A missing condition variable is false, not an error.
		if truthy(lookupPath(vars, n.Condition)) {
			return r.renderNodes(n.Then, vars)
		}
		return r.renderNodes(n.Else, vars)

	case *EachNode:
		arr, ok := lookupPath(vars, n.Source).([]any)
		if !ok {
			return "", nil
		}
		var b strings.Builder
		for _, elem := range arr {
			child := copyVars(vars)
			child["this"] = elem
			s, err := r.renderNodes(n.Body, child)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		}
		return b.String(), nil

	case *SwitchNode:
		v, found := lookupPathOK(vars, n.Source)
		if !found {
			return "", nil
		}
		value, ok := valueToString(v)
		if !ok {
			return "", nil
		}
		for _, c := range n.Cases {
			if c.Value == value {
				return r.renderNodes(c.Body, vars)
			}
		}
		return "", nil

	case *IfLocaleNode:
		if r.locale == n.Locale {
			return r.renderNodes(n.Then, vars)
		}
		return r.renderNodes(n.Else, vars)

	case *IncludeNode:
		return r.renderInclude(n, vars)

	case *I18nNode:
		return r.renderI18n(n, vars)

	case *HelperNode:
		return r.evalHelper(n, vars), nil

	default:
		return "", fmt.Errorf("unknown node type %T", node)
	}
}

// renderInclude resolves parameters, guards against include cycles, then
// reads and parses the target file fresh and renders it with a child
// context. Missing files and cycles degrade to inline markers instead of
// failing the whole render.
func (r *renderer) renderInclude(n *IncludeNode, vars map[string]any) (string, error) {
	full := filepath.Clean(filepath.Join(r.baseDir, n.Path))
	for _, inFlight := range r.stack {
		if inFlight == full {
			return fmt.Sprintf("<!-- circular include: %s -->", n.Path), nil
		}
	}

	raw, err := os.ReadFile(full)
	if err != nil {
		return fmt.Sprintf("<!-- include not found: %s -->", n.Path), nil
	}

	fm, body, err := parseFrontmatter(string(raw))
	if err != nil {
		return "", fmt.Errorf("parsing included file %s: %w", n.Path, err)
	}
	nodes, err := Parse(body)
	if err != nil {
		return "", fmt.Errorf("parsing included file %s: %w", n.Path, err)
	}

	child := copyVars(vars)
	if fm != nil {
		for k, v := range fm.Variables {
			if _, exists := child[k]; !exists {
				child[k] = v
			}
		}
	}
	for name, expr := range n.Params {
		child[name] = r.resolveParam(expr, vars)
	}

	r.stack = append(r.stack, full)
	out, err := r.renderNodes(nodes, child)
	r.stack = r.stack[:len(r.stack)-1]
	return out, err
}

// renderI18n resolves parameters and delegates to the locale manager. A
// missing key is a hard failure, unlike includes.
func (r *renderer) renderI18n(n *I18nNode, vars map[string]any) (string, error) {
	if r.locales == nil {
		return "", fmt.Errorf("i18n %q used without configured locales", n.Key)
	}
	data, err := r.locales.Get(r.locale)
	if err != nil {
		return "", err
	}
	params := make(map[string]any, len(n.Params))
	for name, raw := range n.Params {
		params[name] = r.resolveParam(raw, vars)
	}
	return data.Interpolate(n.Key, params)
}

// evalHelper dispatches a helper invocation. Helper failures degrade to
// inline diagnostic markers rather than aborting the render.
func (r *renderer) evalHelper(n *HelperNode, vars map[string]any) string {
	if n.Name != "format_number" {
		return fmt.Sprintf("<!-- unknown helper: %s -->", n.Name)
	}
	if len(n.Args) == 0 {
		return "<!-- format_number: missing argument -->"
	}

	value, ok := toFloat(lookupPath(vars, n.Args[0]))
	if !ok {
		return fmt.Sprintf("<!-- format_number: %s is not a number -->", n.Args[0])
	}

	style, _ := r.resolveParam(n.Params["style"], vars).(string)
	switch style {
	case "percent":
		pct := math.Round(value*1000) / 10
		s := strconv.FormatFloat(pct, 'f', 1, 64)
		return strings.TrimSuffix(s, ".0") + "%"
	case "currency":
		code, _ := r.resolveParam(n.Params["currency"], vars).(string)
		if code == "" {
			code = "USD"
		}
		s := strconv.FormatFloat(value, 'f', 2, 64)
		if code == "USD" {
			return "$" + s
		}
		return s + " " + code
	default:
		precision := 2
		if raw, ok := n.Params["precision"]; ok {
			if s, ok := r.resolveParam(raw, vars).(string); ok {
				if p, err := strconv.Atoi(s); err == nil {
					precision = p
				}
			}
		}
		return strconv.FormatFloat(value, 'f', precision, 64)
	}
}

// resolveParam resolves a raw parameter expression shared by include and
// i18n directives: a quoted literal, a bare variable name, a dotted
// path, or a parenthesized helper call. Anything unresolvable is used as
// literal text.
func (r *renderer) resolveParam(raw string, vars map[string]any) any {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if s, ok := unquote(raw); ok {
		return s
	}
	if strings.HasPrefix(raw, "(") && strings.HasSuffix(raw, ")") {
		fields := splitArgs(raw[1 : len(raw)-1])
		if len(fields) == 0 {
			return raw
		}
		helper, _ := parseHelper(fields).(*HelperNode)
		return r.evalHelper(helper, vars)
	}
	if v, ok := lookupPathOK(vars, raw); ok {
		return v
	}
	return raw
}

// lookupPath resolves a plain or dotted name, returning nil when absent.
func lookupPath(vars map[string]any, name string) any {
	v, _ := lookupPathOK(vars, name)
	return v
}

func lookupPathOK(vars map[string]any, name string) (any, bool) {
	if strings.Contains(name, ".") {
		return resolveNested(vars, strings.Split(name, "."))
	}
	v, ok := vars[name]
	return v, ok
}

// resolveNested walks a dotted path through nested object values.
func resolveNested(vars map[string]any, path []string) (any, bool) {
	if len(path) == 0 {
		return nil, false
	}
	current, ok := vars[path[0]]
	if !ok {
		return nil, false
	}
	for _, seg := range path[1:] {
		obj, isObj := current.(map[string]any)
		if !isObj {
			return nil, false
		}
		current, ok = obj[seg]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// truthy: booleans as-is, null false, strings true iff non-empty,
// numbers true iff nonzero, arrays and objects true iff non-empty.
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case int:
		return val != 0
	case int64:
		return val != 0
	case float64:
		return val != 0
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}

// valueToString stringifies a scalar for substitution and switch
// comparison. Arrays and objects are not directly stringifiable.
func valueToString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case bool:
		return strconv.FormatBool(val), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case nil:
		return "", true
	default:
		return "", false
	}
}

func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	default:
		return 0, false
	}
}

func copyVars(vars map[string]any) map[string]any {
	out := make(map[string]any, len(vars)+1)
	for k, v := range vars {
		out[k] = v
	}
	return out
}
