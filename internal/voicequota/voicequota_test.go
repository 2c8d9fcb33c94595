// Package voicequota_test tests the quota lifecycle components against a
// scripted in-memory provider.
package voicequota_test

import (
	"context"
	"sync"
	"testing"

	"github.com/book-expert/logger"

	"github.com/vocalbrand/voice-service/internal/core"
	"github.com/vocalbrand/voice-service/internal/elevenlabs"
)

// fakeVoiceAPI is a scripted stand-in for the provider client. AddVoice
// calls consume addErrs in order; once the script is exhausted the call
// succeeds with addVoiceID.
type fakeVoiceAPI struct {
	mu sync.Mutex

	voices  []core.Voice
	listErr error

	addErrs    []error
	addVoiceID string

	deleteErrs map[string]error

	listCalls   int
	addCalls    int
	deleteCalls []string
}

func (f *fakeVoiceAPI) ListVoices(_ context.Context) ([]core.Voice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.listCalls++

	if f.listErr != nil {
		return nil, f.listErr
	}

	return append([]core.Voice(nil), f.voices...), nil
}

func (f *fakeVoiceAPI) AddVoice(_ context.Context, _ string, _ []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.addCalls++

	if len(f.addErrs) > 0 {
		err := f.addErrs[0]
		f.addErrs = f.addErrs[1:]

		if err != nil {
			return "", err
		}
	}

	return f.addVoiceID, nil
}

func (f *fakeVoiceAPI) DeleteVoice(_ context.Context, voiceID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deleteCalls = append(f.deleteCalls, voiceID)

	return f.deleteErrs[voiceID]
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()

	log, err := logger.New(t.TempDir(), "voicequota-test.log")
	if err != nil {
		t.Fatalf("Failed to create test logger: %v", err)
	}

	t.Cleanup(func() { _ = log.Close() })

	return log
}

func customVoice(id string, createdAt int64) core.Voice {
	return core.Voice{
		ID:        id,
		Name:      "voice-" + id,
		Category:  core.CategoryCloned,
		CreatedAt: createdAt,
	}
}

func premadeVoice(id string, createdAt int64) core.Voice {
	return core.Voice{
		ID:        id,
		Name:      "stock-" + id,
		Category:  core.CategoryPremade,
		CreatedAt: createdAt,
	}
}

func capacityError() error {
	return &elevenlabs.APIError{
		StatusCode: 400,
		Status:     "voice_limit_reached",
		Message:    "maximum amount of custom voices reached",
		Body:       "",
	}
}
