package main

import (
	"strings"
	"testing"
)

// TestArgumentValidation verifies the required and conflicting argument
// rules at the application's boundary.
func TestArgumentValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		flags         appFlags
		expectedError string
		wantErr       bool
	}{
		{
			name:          "quota action alone",
			flags:         appFlags{quota: true, evictTo: evictToUnset},
			wantErr:       false,
			expectedError: "",
		},
		{
			name:          "list action alone",
			flags:         appFlags{list: true, evictTo: evictToUnset},
			wantErr:       false,
			expectedError: "",
		},
		{
			name:          "evict-to zero is a valid action",
			flags:         appFlags{evictTo: 0},
			wantErr:       false,
			expectedError: "",
		},
		{
			name: "clone with name",
			flags: appFlags{
				clone:   "sample.wav",
				name:    "Maria",
				evictTo: evictToUnset,
			},
			wantErr:       false,
			expectedError: "",
		},
		{
			name: "tts with voice",
			flags: appFlags{
				tts:     "hello",
				voice:   "v1",
				evictTo: evictToUnset,
			},
			wantErr:       false,
			expectedError: "",
		},
		{
			name:          "usage action alone",
			flags:         appFlags{usage: true, evictTo: evictToUnset},
			wantErr:       false,
			expectedError: "",
		},
		{
			name:          "no action",
			flags:         appFlags{evictTo: evictToUnset},
			wantErr:       true,
			expectedError: errNoAction,
		},
		{
			name:          "two actions",
			flags:         appFlags{quota: true, list: true, evictTo: evictToUnset},
			wantErr:       true,
			expectedError: errMultipleActions,
		},
		{
			name:          "clone without name",
			flags:         appFlags{clone: "sample.wav", evictTo: evictToUnset},
			wantErr:       true,
			expectedError: errCloneNeedsName,
		},
		{
			name:          "tts without voice",
			flags:         appFlags{tts: "hello", evictTo: evictToUnset},
			wantErr:       true,
			expectedError: errTTSNeedsVoice,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			err := validateArgumentsOnly(testCase.flags)

			if !testCase.wantErr {
				if err != nil {
					t.Errorf("Did not expect an error, but got: %v", err)
				}

				return
			}

			if err == nil {
				t.Errorf("Expected an error but got none")

				return
			}

			if !strings.Contains(err.Error(), testCase.expectedError) {
				t.Errorf(
					"Expected error to contain %q, but got %q",
					testCase.expectedError,
					err.Error(),
				)
			}
		})
	}
}
