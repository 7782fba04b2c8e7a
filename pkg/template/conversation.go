package template

import (
	"strings"

	"github.com/tmc/langchaingo/schema"

	"github.com/killallgit/scribe/pkg/locale"
)

// Roles recognized in conversation section headers.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleDeveloper = "developer"
)

// Segment is one role-tagged turn of a rendered conversation.
type Segment struct {
	Role    string
	Content string
}

// ConversationTemplate renders a template and partitions the output
// into role-tagged turns using level-2 markdown headers (## System,
// ## User, ## Assistant, ## Developer; case-insensitive). Content before
// the first header becomes an implicit system segment.
type ConversationTemplate struct {
	template *PromptTemplate
}

// LoadConversation reads and compiles a conversation template file.
func LoadConversation(path string) (*ConversationTemplate, error) {
	t, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &ConversationTemplate{template: t}, nil
}

// ConversationFromContent compiles a conversation template from source text.
func ConversationFromContent(content string) (*ConversationTemplate, error) {
	t, err := FromContent(content)
	if err != nil {
		return nil, err
	}
	return &ConversationTemplate{template: t}, nil
}

// WithLocale returns a copy bound to the given locale.
func (c *ConversationTemplate) WithLocale(id string) *ConversationTemplate {
	return &ConversationTemplate{template: c.template.WithLocale(id)}
}

// WithLocales returns a copy that consults the given locale manager.
func (c *ConversationTemplate) WithLocales(m *locale.Manager) *ConversationTemplate {
	return &ConversationTemplate{template: c.template.WithLocales(m)}
}

// RequiredVariables returns the underlying template's required list.
func (c *ConversationTemplate) RequiredVariables() []string {
	return c.template.RequiredVariables()
}

// Render renders the underlying template and splits the output into
// role-tagged segments.
func (c *ConversationTemplate) Render(vars map[string]any) ([]Segment, error) {
	content, err := c.template.Render(vars)
	if err != nil {
		return nil, err
	}
	return splitSegments(content), nil
}

// RenderMessages renders the conversation as langchaingo chat messages,
// ready to hand to an LLM client.
func (c *ConversationTemplate) RenderMessages(vars map[string]any) ([]schema.ChatMessage, error) {
	segments, err := c.Render(vars)
	if err != nil {
		return nil, err
	}

	messages := make([]schema.ChatMessage, 0, len(segments))
	for _, seg := range segments {
		switch seg.Role {
		case RoleSystem:
			messages = append(messages, schema.SystemChatMessage{Content: seg.Content})
		case RoleUser:
			messages = append(messages, schema.HumanChatMessage{Content: seg.Content})
		case RoleAssistant:
			messages = append(messages, schema.AIChatMessage{Content: seg.Content})
		case RoleDeveloper:
			messages = append(messages, schema.GenericChatMessage{Role: RoleDeveloper, Content: seg.Content})
		}
	}
	return messages, nil
}

// splitSegments partitions rendered text on recognized role headers.
// Lines under an unrecognized ## header are dropped until the next
// recognized one.
func splitSegments(content string) []Segment {
	var segments []Segment
	var current []string
	role := ""
	seenHeader := false

	flush := func() {
		text := strings.TrimSpace(strings.Join(current, "\n"))
		current = nil
		if text == "" {
			return
		}
		if role != "" {
			segments = append(segments, Segment{Role: role, Content: text})
		} else if !seenHeader {
			// Content before any header is an implicit system segment.
			segments = append(segments, Segment{Role: RoleSystem, Content: text})
		}
	}

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "## ") {
			flush()
			seenHeader = true
			switch strings.ToLower(trimmed) {
			case "## system":
				role = RoleSystem
			case "## user":
				role = RoleUser
			case "## assistant":
				role = RoleAssistant
			case "## developer":
				role = RoleDeveloper
			default:
				role = ""
			}
			continue
		}
		current = append(current, line)
	}
	flush()

	return segments
}
