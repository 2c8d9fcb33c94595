package voicequota_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vocalbrand/voice-service/internal/core"
	"github.com/vocalbrand/voice-service/internal/voicequota"
)

var errDeleteRefused = errors.New("delete refused")

func newEvictor(t *testing.T, provider *fakeVoiceAPI) *voicequota.Evictor {
	t.Helper()

	log := testLogger(t)
	directory := voicequota.NewDirectory(provider, log)

	return voicequota.NewEvictor(directory, provider, log)
}

func TestEvictor_EvictTo_DeletesOldestFirst(t *testing.T) {
	t.Parallel()

	voices := make([]core.Voice, 0, 28)
	voices = append(voices, premadeVoice("narrator", 0))

	for index := 1; index <= 27; index++ {
		voices = append(voices, customVoice(fmt.Sprintf("voice-%02d", index), int64(index)))
	}

	provider := &fakeVoiceAPI{voices: voices}
	evictor := newEvictor(t, provider)

	report := evictor.EvictTo(context.Background(), 25)

	require.Equal(t, 2, report.Deleted)
	assert.Zero(t, report.Failed)
	assert.Equal(t, []string{"voice-01", "voice-02"}, provider.deleteCalls,
		"oldest customs go first")
	require.Len(t, report.DeletedVoices, 2)
	assert.Equal(t, "voice-01", report.DeletedVoices[0].ID)
	assert.Equal(t, "cleaned up 2 old voices", report.Message)
}

func TestEvictor_EvictTo_NothingToDo(t *testing.T) {
	t.Parallel()

	provider := &fakeVoiceAPI{
		voices: []core.Voice{
			customVoice("c1", 1),
			customVoice("c2", 2),
		},
	}
	evictor := newEvictor(t, provider)

	report := evictor.EvictTo(context.Background(), 25)

	assert.Zero(t, report.Deleted)
	assert.Empty(t, provider.deleteCalls, "no provider call below the keep count")
	assert.Equal(t, "only 2 custom voices, no cleanup needed", report.Message)
}

func TestEvictor_EvictTo_PremadeNeverCandidates(t *testing.T) {
	t.Parallel()

	provider := &fakeVoiceAPI{
		voices: []core.Voice{
			premadeVoice("ancient-premade", 0),
			customVoice("c1", 10),
			customVoice("c2", 20),
			customVoice("c3", 30),
		},
	}
	evictor := newEvictor(t, provider)

	report := evictor.EvictTo(context.Background(), 1)

	assert.Equal(t, 2, report.Deleted)
	assert.Equal(t, []string{"c1", "c2"}, provider.deleteCalls,
		"premade voices stay even when oldest")
}

func TestEvictor_EvictTo_PartialFailureIsolated(t *testing.T) {
	t.Parallel()

	provider := &fakeVoiceAPI{
		voices: []core.Voice{
			customVoice("c1", 1),
			customVoice("c2", 2),
			customVoice("c3", 3),
			customVoice("c4", 4),
		},
		deleteErrs: map[string]error{"c2": errDeleteRefused},
	}
	evictor := newEvictor(t, provider)

	report := evictor.EvictTo(context.Background(), 1)

	assert.Equal(t, 2, report.Deleted)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, []string{"c1", "c2", "c3"}, provider.deleteCalls,
		"one refused delete must not stop the pass")
	require.Len(t, report.FailedVoices, 1)
	assert.Equal(t, "c2", report.FailedVoices[0].ID)
}

func TestEvictor_EvictTo_TiesBreakByID(t *testing.T) {
	t.Parallel()

	provider := &fakeVoiceAPI{
		voices: []core.Voice{
			customVoice("zulu", 7),
			customVoice("alpha", 7),
			customVoice("mike", 7),
		},
	}
	evictor := newEvictor(t, provider)

	evictor.EvictTo(context.Background(), 1)

	assert.Equal(t, []string{"alpha", "mike"}, provider.deleteCalls)
}

func TestEvictor_EvictTo_NegativeKeepCountClearsAll(t *testing.T) {
	t.Parallel()

	provider := &fakeVoiceAPI{
		voices: []core.Voice{
			customVoice("c1", 1),
			customVoice("c2", 2),
		},
	}
	evictor := newEvictor(t, provider)

	report := evictor.EvictTo(context.Background(), -3)

	assert.Equal(t, 2, report.Deleted)
}
