package elevenlabs_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vocalbrand/voice-service/internal/elevenlabs"
)

func TestAPIError_Classification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		err          *elevenlabs.APIError
		wantCapacity bool
		wantPerm     bool
	}{
		{
			name: "voice limit reached",
			err: &elevenlabs.APIError{
				StatusCode: http.StatusBadRequest,
				Status:     "voice_limit_reached",
				Message:    "maximum amount of custom voices reached",
				Body:       "",
			},
			wantCapacity: true,
			wantPerm:     false,
		},
		{
			name: "legacy capacity status",
			err: &elevenlabs.APIError{
				StatusCode: http.StatusBadRequest,
				Status:     "maximum_voice_count_reached",
				Message:    "",
				Body:       "",
			},
			wantCapacity: true,
			wantPerm:     false,
		},
		{
			name: "unauthorized",
			err: &elevenlabs.APIError{
				StatusCode: http.StatusUnauthorized,
				Status:     "invalid_api_key",
				Message:    "invalid api key",
				Body:       "",
			},
			wantCapacity: false,
			wantPerm:     true,
		},
		{
			name: "server error",
			err: &elevenlabs.APIError{
				StatusCode: http.StatusBadGateway,
				Status:     "",
				Message:    "502 Bad Gateway",
				Body:       "",
			},
			wantCapacity: false,
			wantPerm:     false,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.wantCapacity, testCase.err.CapacityError())
			assert.Equal(t, testCase.wantPerm, testCase.err.Permanent())
		})
	}
}

func TestAPIError_ErrorString(t *testing.T) {
	t.Parallel()

	withStatus := &elevenlabs.APIError{
		StatusCode: http.StatusBadRequest,
		Status:     "voice_limit_reached",
		Message:    "limit reached",
		Body:       "",
	}
	assert.Contains(t, withStatus.Error(), `"voice_limit_reached"`)
	assert.Contains(t, withStatus.Error(), "HTTP 400")

	bare := &elevenlabs.APIError{
		StatusCode: http.StatusInternalServerError,
		Status:     "",
		Message:    "500 Internal Server Error",
		Body:       "",
	}
	assert.Contains(t, bare.Error(), "HTTP 500")
}
