package voicequota

import (
	"context"

	"github.com/book-expert/logger"

	"github.com/vocalbrand/voice-service/internal/core"
)

// DefaultMaxCustomVoices is the provider's standard-plan ceiling on
// simultaneously held custom voices.
const DefaultMaxCustomVoices = 30

// Guard answers whether the account has headroom for one more custom
// voice. The ceiling is injected so it can track the provider tier
// without code changes.
type Guard struct {
	directory *Directory
	maxCustom int
	log       *logger.Logger
}

// NewGuard creates a guard with the given ceiling. A non-positive
// ceiling selects DefaultMaxCustomVoices.
func NewGuard(directory *Directory, maxCustom int, log *logger.Logger) *Guard {
	if maxCustom <= 0 {
		maxCustom = DefaultMaxCustomVoices
	}

	return &Guard{
		directory: directory,
		maxCustom: maxCustom,
		log:       log,
	}
}

// Snapshot computes a fresh quota view. When the inventory cannot be
// read the snapshot reports no space and FetchFailed=true: preferring a
// speculative cleanup over silently overrunning the ceiling.
func (g *Guard) Snapshot(ctx context.Context) core.QuotaSnapshot {
	voices, err := g.directory.ListAll(ctx)
	if err != nil {
		g.log.Warn("Quota check could not read inventory: %v", err)

		return core.QuotaSnapshot{
			CustomCount:    0,
			PremadeCount:   0,
			TotalCount:     0,
			MaxCustom:      g.maxCustom,
			SpaceRemaining: 0,
			HasSpace:       false,
			FetchFailed:    true,
		}
	}

	customCount := 0

	for _, voice := range voices {
		if voice.IsCustom() {
			customCount++
		}
	}

	remaining := g.maxCustom - customCount
	if remaining < 0 {
		remaining = 0
	}

	return core.QuotaSnapshot{
		CustomCount:    customCount,
		PremadeCount:   len(voices) - customCount,
		TotalCount:     len(voices),
		MaxCustom:      g.maxCustom,
		SpaceRemaining: remaining,
		HasSpace:       customCount < g.maxCustom,
		FetchFailed:    false,
	}
}
