package respcache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/prof-ramos/sherlock/internal/domain"
)

// keyTurnWindow is how many trailing turns feed the cache key. Earlier
// turns rarely change the reply, and a shorter window raises the hit rate
// on long conversations.
const keyTurnWindow = 5

// Key fingerprints a completion request: generation parameters plus the
// trailing conversation window. Identical requests map to the same key;
// any change to the model, sampling settings, or recent turns changes it.
func Key(snapshot domain.Snapshot, cfg domain.GenerationConfig) string {
	var b strings.Builder
	b.WriteString(cfg.Model)
	b.WriteByte('\x1f')
	b.WriteString(strconv.FormatFloat(float64(cfg.Temperature), 'g', -1, 32))
	b.WriteByte('\x1f')
	b.WriteString(strconv.Itoa(cfg.MaxTokens))

	for _, turn := range snapshot.Window(keyTurnWindow) {
		b.WriteByte('\x1e')
		b.WriteString(string(turn.Role))
		b.WriteByte('\x1f')
		b.WriteString(turn.Author)
		b.WriteByte('\x1f')
		b.WriteString(turn.Text)
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
