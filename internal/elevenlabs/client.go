// Package elevenlabs provides an HTTP client for the ElevenLabs voice API.
//
// The client covers the four operations the service depends on (list,
// add, delete, synthesize) plus the account subscription read used by the
// operator CLI. Provider failures are returned as *APIError values so
// callers can classify them without string matching.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/book-expert/logger"

	"github.com/vocalbrand/voice-service/internal/core"
)

// API endpoints and paths.
const (
	apiVoices       = "/v1/voices"
	apiVoiceAdd     = "/v1/voices/add"
	apiVoiceByID    = "/v1/voices/%s"
	apiTextToSpeech = "/v1/text-to-speech/%s"
	apiUser         = "/v1/user"
)

// HTTP headers.
const (
	headerAPIKey      = "xi-api-key"
	headerContentType = "Content-Type"
	headerAccept      = "Accept"
	contentTypeJSON   = "application/json"
	contentTypeMPEG   = "audio/mpeg"
)

// Multipart form field names for the add-voice endpoint.
const (
	formFieldFiles = "files"
	formFieldName  = "name"
)

// Default values.
const (
	// DefaultBaseURL is the production API endpoint.
	DefaultBaseURL = "https://api.elevenlabs.io"

	// DefaultModelID is the synthesis model used when none is configured.
	DefaultModelID = "eleven_monolingual_v1"

	// sampleFileName is the filename reported in the multipart upload.
	// The provider only requires a recognizable audio extension.
	sampleFileName = "sample.wav"

	// minSynthesizedBytes guards against success responses carrying a
	// body too small to be playable audio.
	minSynthesizedBytes = 50
)

// Static errors.
var (
	ErrVoiceNameEmpty = errors.New("voice name cannot be empty")
	ErrSampleEmpty    = errors.New("audio sample cannot be empty")
	ErrVoiceIDEmpty   = errors.New("voice id cannot be empty")
	ErrTextEmpty      = errors.New("text cannot be empty")
	ErrNoVoiceID      = errors.New("add-voice response contained no voice id")
	ErrUnexpectedJSON = errors.New("expected audio body, got JSON")
	ErrEmptyAudio     = errors.New("received empty audio data")
	ErrAudioTooSmall  = errors.New("received implausibly small audio data")
)

// Client is an HTTP client for the ElevenLabs voice API. The configured
// timeout bounds every call; the client performs no retries of its own,
// retry policy belongs to the caller.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	modelID    string
	log        *logger.Logger
}

// Option adjusts optional client settings.
type Option func(*Client)

// WithModelID overrides the synthesis model id.
func WithModelID(modelID string) Option {
	return func(c *Client) {
		c.modelID = modelID
	}
}

// WithLogger enables diagnostic logging for conditions the client
// tolerates, such as audio bodies with an unrecognized header.
func WithLogger(log *logger.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// New creates a client for the voice API at baseURL. An empty baseURL
// selects the production endpoint.
func New(baseURL, apiKey string, timeout time.Duration, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		modelID: DefaultModelID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// voicesResponse is the list-voices envelope. core.Voice carries the
// provider's wire tags, so inventory entries decode straight into the
// domain type.
type voicesResponse struct {
	Voices []core.Voice `json:"voices"`
}

// addVoiceResponse covers both response shapes the add endpoint has used:
// a top-level voice_id and a nested voice object.
type addVoiceResponse struct {
	VoiceID string `json:"voice_id"`
	Voice   struct {
		VoiceID string `json:"voice_id"`
	} `json:"voice"`
}

// Subscription is the account usage summary from the user endpoint.
type Subscription struct {
	Tier           string `json:"tier"`
	CharacterCount int64  `json:"character_count"`
	CharacterLimit int64  `json:"character_limit"`
	VoiceLimit     int    `json:"voice_limit"`
}

type userResponse struct {
	Subscription Subscription `json:"subscription"`
}

// ListVoices fetches the account's full voice inventory.
func (c *Client) ListVoices(ctx context.Context) ([]core.Voice, error) {
	req, err := c.newRequest(ctx, http.MethodGet, apiVoices, http.NoBody)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list voices request failed: %w", err)
	}
	defer closeBody(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, parseAPIError(resp)
	}

	var body voicesResponse

	err = json.NewDecoder(resp.Body).Decode(&body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode voices response: %w", err)
	}

	return body.Voices, nil
}

// AddVoice clones a new voice from a raw audio sample and returns the
// provider-assigned voice id. Capacity rejections come back as an
// *APIError recognized by core.IsCapacityError.
func (c *Client) AddVoice(ctx context.Context, name string, sample []byte) (string, error) {
	if name == "" {
		return "", ErrVoiceNameEmpty
	}

	if len(sample) == 0 {
		return "", ErrSampleEmpty
	}

	body, contentType, err := buildAddVoiceForm(name, sample)
	if err != nil {
		return "", err
	}

	req, err := c.newRequest(ctx, http.MethodPost, apiVoiceAdd, body)
	if err != nil {
		return "", err
	}

	req.Header.Set(headerContentType, contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("add voice request failed: %w", err)
	}
	defer closeBody(resp)

	if resp.StatusCode != http.StatusOK {
		return "", parseAPIError(resp)
	}

	var parsed addVoiceResponse

	err = json.NewDecoder(resp.Body).Decode(&parsed)
	if err != nil {
		return "", fmt.Errorf("failed to decode add-voice response: %w", err)
	}

	voiceID := parsed.VoiceID
	if voiceID == "" {
		voiceID = parsed.Voice.VoiceID
	}

	if voiceID == "" {
		return "", ErrNoVoiceID
	}

	return voiceID, nil
}

// DeleteVoice removes a single voice by id.
func (c *Client) DeleteVoice(ctx context.Context, voiceID string) error {
	if voiceID == "" {
		return ErrVoiceIDEmpty
	}

	path := fmt.Sprintf(apiVoiceByID, voiceID)

	req, err := c.newRequest(ctx, http.MethodDelete, path, http.NoBody)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete voice request failed: %w", err)
	}
	defer closeBody(resp)

	if resp.StatusCode != http.StatusOK {
		return parseAPIError(resp)
	}

	return nil
}

// ttsRequest is the synthesis payload.
type ttsRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// Synthesize converts text to MP3 audio using an existing voice.
func (c *Client) Synthesize(ctx context.Context, voiceID, text string) ([]byte, error) {
	if voiceID == "" {
		return nil, ErrVoiceIDEmpty
	}

	if text == "" {
		return nil, ErrTextEmpty
	}

	payload, err := json.Marshal(ttsRequest{Text: text, ModelID: c.modelID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal synthesis request: %w", err)
	}

	path := fmt.Sprintf(apiTextToSpeech, voiceID)

	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	req.Header.Set(headerContentType, contentTypeJSON)
	req.Header.Set(headerAccept, contentTypeMPEG)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesis request failed: %w", err)
	}
	defer closeBody(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, parseAPIError(resp)
	}

	// A success status with a JSON body means the provider answered with
	// an error envelope anyway; surface it instead of fake audio.
	if strings.Contains(strings.ToLower(resp.Header.Get(headerContentType)), "json") {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

		return nil, fmt.Errorf("%w: %s", ErrUnexpectedJSON, string(snippet))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}

	if len(audio) == 0 {
		return nil, ErrEmptyAudio
	}

	if len(audio) < minSynthesizedBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrAudioTooSmall, len(audio))
	}

	// The provider has served playable audio in containers other than
	// bare MP3, so an unrecognized header is logged and passed through
	// rather than rejected.
	if c.log != nil && !looksLikeMPEG(audio) {
		c.log.Warn(
			"Synthesized audio for voice %s does not start with an MP3 header (%d bytes)",
			voiceID, len(audio),
		)
	}

	return audio, nil
}

// looksLikeMPEG reports whether the body starts like an MP3 stream:
// an ID3 tag or an MPEG frame sync.
func looksLikeMPEG(data []byte) bool {
	if len(data) < 4 {
		return false
	}

	if bytes.HasPrefix(data, []byte("ID3")) {
		return true
	}

	return data[0] == 0xFF && data[1]&0xE0 == 0xE0
}

// Subscription fetches the account's character-quota usage.
func (c *Client) Subscription(ctx context.Context) (Subscription, error) {
	req, err := c.newRequest(ctx, http.MethodGet, apiUser, http.NoBody)
	if err != nil {
		return Subscription{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Subscription{}, fmt.Errorf("user request failed: %w", err)
	}
	defer closeBody(resp)

	if resp.StatusCode != http.StatusOK {
		return Subscription{}, parseAPIError(resp)
	}

	var body userResponse

	err = json.NewDecoder(resp.Body).Decode(&body)
	if err != nil {
		return Subscription{}, fmt.Errorf("failed to decode user response: %w", err)
	}

	return body.Subscription, nil
}

// newRequest builds an API request with the auth header set.
func (c *Client) newRequest(
	ctx context.Context,
	method, path string,
	body io.Reader,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set(headerAPIKey, c.apiKey)

	return req, nil
}

// buildAddVoiceForm assembles the multipart body for the add endpoint.
func buildAddVoiceForm(name string, sample []byte) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer

	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile(formFieldFiles, sampleFileName)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}

	_, err = part.Write(sample)
	if err != nil {
		return nil, "", fmt.Errorf("failed to write sample data: %w", err)
	}

	err = writer.WriteField(formFieldName, name)
	if err != nil {
		return nil, "", fmt.Errorf("failed to write name field: %w", err)
	}

	err = writer.Close()
	if err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return &buf, writer.FormDataContentType(), nil
}

func closeBody(resp *http.Response) {
	_ = resp.Body.Close()
}
