// Package voicequota manages the provider-side voice quota lifecycle:
// inventory classification, headroom checks, oldest-first eviction, and
// the clone coordinator that retries once after a quota cleanup.
package voicequota

import (
	"context"

	"github.com/book-expert/logger"

	"github.com/vocalbrand/voice-service/internal/core"
)

// Directory is a read-only view over the provider's voice inventory.
// It performs no retries; retry policy belongs to its callers.
type Directory struct {
	lister core.VoiceLister
	log    *logger.Logger
}

// NewDirectory creates a directory over the given inventory source.
func NewDirectory(lister core.VoiceLister, log *logger.Logger) *Directory {
	return &Directory{
		lister: lister,
		log:    log,
	}
}

// ListAll fetches the full voice inventory. Provider failures are
// returned as-is so callers can decide how conservative to be.
func (d *Directory) ListAll(ctx context.Context) ([]core.Voice, error) {
	voices, err := d.lister.ListVoices(ctx)
	if err != nil {
		return nil, err
	}

	return voices, nil
}

// ListCustom returns only the user-created voices, the ones that count
// against the ceiling and are eligible for eviction. A fetch failure
// yields an empty list: toward eviction it is safer to find nothing to
// delete than to block the clone flow.
func (d *Directory) ListCustom(ctx context.Context) []core.Voice {
	voices, err := d.ListAll(ctx)
	if err != nil {
		d.log.Warn("Failed to fetch voice inventory, treating as empty: %v", err)

		return nil
	}

	custom := make([]core.Voice, 0, len(voices))

	for _, voice := range voices {
		if voice.IsCustom() {
			custom = append(custom, voice)
		}
	}

	return custom
}
