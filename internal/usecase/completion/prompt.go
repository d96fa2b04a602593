package completion

import (
	"fmt"
	"strings"

	"github.com/prof-ramos/sherlock/internal/domain"
)

// Persona is the assistant identity used in prompt assembly.
type Persona struct {
	Name         string
	Instructions string
	// Examples are few-shot conversations shown before the live one.
	Examples [][]domain.Turn
}

const contextUsageInstructions = "Use the documents inside <relevant_context> " +
	"when they help answer the conversation. Ignore documents that are not " +
	"relevant, and never mention the context block itself."

// buildPrompt assembles the provider message list: system instructions,
// few-shot examples, retrieved context, then the live conversation.
//
// Providers with structured system parts get the invariant prefix (persona
// instructions) as its own system message so provider-side prompt caching
// can anchor on it, with the per-request context in a second system
// message. Others get a single folded system message.
func buildPrompt(
	persona Persona,
	provider domain.Provider,
	results []domain.RankedResult,
	snapshot domain.Snapshot,
) []domain.PromptMessage {
	instructions := systemInstructions(persona)
	contextBlock := renderContext(results)

	var messages []domain.PromptMessage
	if provider.StructuredSystemParts() && contextBlock != "" {
		messages = append(messages,
			domain.PromptMessage{Role: domain.RoleSystem, Content: instructions},
			domain.PromptMessage{Role: domain.RoleSystem, Content: contextBlock},
		)
	} else {
		content := instructions
		if contextBlock != "" {
			content += "\n\n" + contextBlock
		}
		messages = append(messages, domain.PromptMessage{Role: domain.RoleSystem, Content: content})
	}

	for _, example := range persona.Examples {
		messages = append(messages, turnsToMessages(example)...)
	}

	messages = append(messages, turnsToMessages(snapshot.Turns)...)
	return messages
}

func systemInstructions(persona Persona) string {
	if persona.Instructions != "" {
		return persona.Instructions
	}
	return fmt.Sprintf("You are %s. Reply to the conversation in character, "+
		"concisely and helpfully.", persona.Name)
}

// renderContext formats retrieved documents as an XML-style block the model
// can cite from. Document content is escaped so corpus text cannot break
// out of its tag.
func renderContext(results []domain.RankedResult) string {
	if len(results) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(contextUsageInstructions)
	b.WriteString("\n<relevant_context>\n")
	for i, r := range results {
		fmt.Fprintf(&b, "<doc index='%d'>%s</doc>\n", i+1, escapeXML(r.Document.Content))
	}
	b.WriteString("</relevant_context>")
	return b.String()
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}

// turnsToMessages maps conversation turns to chat messages. Assistant turns
// become assistant messages; everything else is a user message attributed
// via Name.
func turnsToMessages(turns []domain.Turn) []domain.PromptMessage {
	out := make([]domain.PromptMessage, 0, len(turns))
	for _, t := range turns {
		if t.Role == domain.RoleAssistant {
			out = append(out, domain.PromptMessage{
				Role:    domain.RoleAssistant,
				Content: t.Text,
			})
			continue
		}
		out = append(out, domain.PromptMessage{
			Role:    domain.RoleUser,
			Name:    sanitizeName(t.Author),
			Content: t.Text,
		})
	}
	return out
}

// sanitizeName keeps only characters the chat API accepts in a name field.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}
