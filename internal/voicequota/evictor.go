package voicequota

import (
	"context"
	"fmt"
	"sort"

	"github.com/book-expert/logger"

	"github.com/vocalbrand/voice-service/internal/core"
)

// Eviction report messages.
const (
	msgNoCleanupNeeded = "only %d custom voices, no cleanup needed"
	msgCleanedUp       = "cleaned up %d old voices"
)

// Evictor deletes the oldest custom voices down to a target keep count.
// Each deletion is an independent remote call: the provider offers no
// batch delete, so one flaky call must not block quota recovery for the
// remaining candidates.
type Evictor struct {
	directory *Directory
	deleter   core.VoiceDeleter
	log       *logger.Logger
}

// NewEvictor creates an evictor over the given inventory and deleter.
func NewEvictor(directory *Directory, deleter core.VoiceDeleter, log *logger.Logger) *Evictor {
	return &Evictor{
		directory: directory,
		deleter:   deleter,
		log:       log,
	}
}

// EvictTo deletes the oldest custom voices until at most keepCount
// remain. Premade voices are never candidates. When the inventory is
// already at or below keepCount no provider call is made, so the pass is
// safe to run speculatively.
func (e *Evictor) EvictTo(ctx context.Context, keepCount int) core.EvictionReport {
	if keepCount < 0 {
		keepCount = 0
	}

	custom := e.directory.ListCustom(ctx)

	if len(custom) <= keepCount {
		return core.EvictionReport{
			Deleted:       0,
			Failed:        0,
			DeletedVoices: nil,
			FailedVoices:  nil,
			Message:       fmt.Sprintf(msgNoCleanupNeeded, len(custom)),
		}
	}

	// Oldest first; creation-time ties break by id so candidate selection
	// is reproducible.
	sort.Slice(custom, func(i, j int) bool {
		if custom[i].CreatedAt != custom[j].CreatedAt {
			return custom[i].CreatedAt < custom[j].CreatedAt
		}

		return custom[i].ID < custom[j].ID
	})

	excess := len(custom) - keepCount
	candidates := custom[:excess]

	report := core.EvictionReport{
		Deleted:       0,
		Failed:        0,
		DeletedVoices: nil,
		FailedVoices:  nil,
		Message:       "",
	}

	for _, voice := range candidates {
		ref := core.VoiceRef{ID: voice.ID, Name: voice.Name}

		if e.deleteVoice(ctx, voice.ID) {
			report.Deleted++
			report.DeletedVoices = append(report.DeletedVoices, ref)
			e.log.Info("Evicted old voice %q (%s)", voice.Name, voice.ID)
		} else {
			report.Failed++
			report.FailedVoices = append(report.FailedVoices, ref)
		}
	}

	report.Message = fmt.Sprintf(msgCleanedUp, report.Deleted)

	return report
}

// deleteVoice issues a single delete call and reports success as a bool,
// so the eviction loop needs no per-item error handling. A voice already
// removed by a concurrent pass simply fails here and is tolerated.
func (e *Evictor) deleteVoice(ctx context.Context, voiceID string) bool {
	err := e.deleter.DeleteVoice(ctx, voiceID)
	if err != nil {
		e.log.Warn("Failed to delete voice %s: %v", voiceID, err)

		return false
	}

	return true
}
