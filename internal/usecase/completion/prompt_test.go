package completion

import (
	"strings"
	"testing"

	"github.com/prof-ramos/sherlock/internal/domain"
)

func TestBuildPrompt_Layout(t *testing.T) {
	persona := Persona{
		Name:         "Sherlock",
		Instructions: "You are Sherlock Holmes.",
		Examples: [][]domain.Turn{
			{
				{Role: domain.RoleUser, Author: "watson", Text: "example question"},
				{Role: domain.RoleAssistant, Text: "example answer"},
			},
		},
	}
	results := []domain.RankedResult{
		{Document: domain.Document{ID: "d1", Content: "clue one"}},
		{Document: domain.Document{ID: "d2", Content: "clue two"}},
	}
	snap := domain.Snapshot{Turns: []domain.Turn{
		{Role: domain.RoleUser, Author: "watson", Text: "real question"},
	}}

	messages := buildPrompt(persona, domain.ProviderOpenAI, results, snap)

	// system, example user, example assistant, live user
	if len(messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(messages))
	}

	system := messages[0]
	if system.Role != domain.RoleSystem {
		t.Fatalf("first message role = %v, want system", system.Role)
	}
	if !strings.Contains(system.Content, "You are Sherlock Holmes.") {
		t.Error("system message missing instructions")
	}
	if !strings.Contains(system.Content, "<relevant_context>") {
		t.Error("system message missing context block")
	}
	if !strings.Contains(system.Content, "<doc index='1'>clue one</doc>") ||
		!strings.Contains(system.Content, "<doc index='2'>clue two</doc>") {
		t.Errorf("context docs missing or misnumbered:\n%s", system.Content)
	}

	if messages[1].Role != domain.RoleUser || messages[1].Name != "watson" {
		t.Errorf("example user turn malformed: %+v", messages[1])
	}
	if messages[2].Role != domain.RoleAssistant || messages[2].Content != "example answer" {
		t.Errorf("example assistant turn malformed: %+v", messages[2])
	}
	if messages[3].Content != "real question" {
		t.Errorf("live turn malformed: %+v", messages[3])
	}
}

func TestBuildPrompt_StructuredSystemParts(t *testing.T) {
	persona := Persona{Name: "Sherlock", Instructions: "Stay in character."}
	results := []domain.RankedResult{
		{Document: domain.Document{ID: "d1", Content: "clue"}},
	}
	snap := domain.Snapshot{Turns: []domain.Turn{
		{Role: domain.RoleUser, Author: "watson", Text: "q"},
	}}

	messages := buildPrompt(persona, domain.ProviderAnthropic, results, snap)

	if len(messages) != 3 {
		t.Fatalf("expected 3 messages (2 system + 1 user), got %d", len(messages))
	}
	if messages[0].Role != domain.RoleSystem || messages[1].Role != domain.RoleSystem {
		t.Fatal("expected two leading system messages")
	}
	if strings.Contains(messages[0].Content, "<relevant_context>") {
		t.Error("invariant prefix must not contain the per-request context")
	}
	if !strings.Contains(messages[1].Content, "<relevant_context>") {
		t.Error("second system message must carry the context block")
	}
}

func TestBuildPrompt_NoContextBlockWhenEmpty(t *testing.T) {
	persona := Persona{Name: "Sherlock"}
	snap := domain.Snapshot{Turns: []domain.Turn{
		{Role: domain.RoleUser, Author: "watson", Text: "q"},
	}}

	for _, provider := range []domain.Provider{domain.ProviderOpenAI, domain.ProviderAnthropic} {
		messages := buildPrompt(persona, provider, nil, snap)
		if len(messages) != 2 {
			t.Fatalf("provider %v: expected 2 messages, got %d", provider, len(messages))
		}
		if strings.Contains(messages[0].Content, "<relevant_context>") {
			t.Errorf("provider %v: context block emitted with no results", provider)
		}
	}
}

func TestRenderContext_EscapesContent(t *testing.T) {
	results := []domain.RankedResult{
		{Document: domain.Document{ID: "d1", Content: "use <b>bold</b> & more"}},
	}

	block := renderContext(results)
	if !strings.Contains(block, "use &lt;b&gt;bold&lt;/b&gt; &amp; more") {
		t.Fatalf("content not escaped:\n%s", block)
	}
	if strings.Contains(block, "<b>") {
		t.Fatal("raw markup leaked into context block")
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"watson", "watson"},
		{"dr. watson", "drwatson"},
		{"user_42-x", "user_42-x"},
		{"émile", "mile"},
	}
	for _, tt := range tests {
		if got := sanitizeName(tt.in); got != tt.want {
			t.Errorf("sanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
