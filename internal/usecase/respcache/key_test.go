package respcache

import (
	"testing"

	"github.com/prof-ramos/sherlock/internal/domain"
)

func snapshotWith(texts ...string) domain.Snapshot {
	s := domain.Snapshot{ConversationID: "c1"}
	for _, text := range texts {
		s.Turns = append(s.Turns, domain.Turn{Role: domain.RoleUser, Author: "watson", Text: text})
	}
	return s
}

func baseConfig() domain.GenerationConfig {
	return domain.GenerationConfig{
		Model:       "gpt-4o",
		Provider:    domain.ProviderOpenAI,
		Temperature: 1.0,
		MaxTokens:   512,
	}
}

func TestKey_Deterministic(t *testing.T) {
	snap := snapshotWith("hello", "how are you")
	cfg := baseConfig()

	if Key(snap, cfg) != Key(snap, cfg) {
		t.Fatal("identical inputs must produce the same key")
	}
}

func TestKey_SensitiveToInputs(t *testing.T) {
	snap := snapshotWith("hello")
	base := Key(snap, baseConfig())

	t.Run("model", func(t *testing.T) {
		cfg := baseConfig()
		cfg.Model = "gpt-4o-mini"
		if Key(snap, cfg) == base {
			t.Error("model change must change the key")
		}
	})

	t.Run("temperature", func(t *testing.T) {
		cfg := baseConfig()
		cfg.Temperature = 0.5
		if Key(snap, cfg) == base {
			t.Error("temperature change must change the key")
		}
	})

	t.Run("max tokens", func(t *testing.T) {
		cfg := baseConfig()
		cfg.MaxTokens = 1024
		if Key(snap, cfg) == base {
			t.Error("max tokens change must change the key")
		}
	})

	t.Run("last turn", func(t *testing.T) {
		if Key(snapshotWith("goodbye"), baseConfig()) == base {
			t.Error("turn text change must change the key")
		}
	})
}

func TestKey_OnlyTrailingWindowMatters(t *testing.T) {
	// Turns beyond the trailing window must not affect the key.
	long := snapshotWith("t1", "t2", "t3", "t4", "t5", "t6", "t7")
	sameTail := snapshotWith("x1", "x2", "t3", "t4", "t5", "t6", "t7")
	differentTail := snapshotWith("t1", "t2", "t3", "t4", "t5", "t6", "DIFFERENT")

	cfg := baseConfig()
	if Key(long, cfg) != Key(sameTail, cfg) {
		t.Error("turns outside the window must not affect the key")
	}
	if Key(long, cfg) == Key(differentTail, cfg) {
		t.Error("turns inside the window must affect the key")
	}
}

func TestKey_AuthorAndRoleMatter(t *testing.T) {
	cfg := baseConfig()
	a := domain.Snapshot{Turns: []domain.Turn{{Role: domain.RoleUser, Author: "watson", Text: "hi"}}}
	b := domain.Snapshot{Turns: []domain.Turn{{Role: domain.RoleUser, Author: "lestrade", Text: "hi"}}}
	c := domain.Snapshot{Turns: []domain.Turn{{Role: domain.RoleAssistant, Author: "watson", Text: "hi"}}}

	if Key(a, cfg) == Key(b, cfg) {
		t.Error("author change must change the key")
	}
	if Key(a, cfg) == Key(c, cfg) {
		t.Error("role change must change the key")
	}
}
