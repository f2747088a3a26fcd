package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hammamikhairi/ottocoach/internal/logger"
)

const (
	synthesizePath = "/cognitiveservices/v1"
	voiceListPath  = "/cognitiveservices/voices/list"

	ssmlTemplate = `<speak version='1.0' xml:lang='en-US'><voice xml:lang='en-US' name='%s'><prosody rate='%s' pitch='%s'>%s</prosody></voice></speak>`
)

// StatusError is a non-200 reply from the speech service.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("azure %s: status %d: %s", e.Op, e.Status, strings.TrimSpace(e.Body))
}

// AzureOption configures the Azure TTS client.
type AzureOption func(*AzureClient)

// WithVoice sets the TTS voice.
func WithVoice(voice string) AzureOption {
	return func(c *AzureClient) {
		c.voice = voice
	}
}

// WithAudioFormat sets the X-Microsoft-OutputFormat requested.
func WithAudioFormat(format string) AzureOption {
	return func(c *AzureClient) {
		c.format = format
	}
}

// WithHTTPTimeout bounds each request.
func WithHTTPTimeout(d time.Duration) AzureOption {
	return func(c *AzureClient) {
		c.client.Timeout = d
	}
}

// WithBaseURL replaces the regional endpoint.
func WithBaseURL(url string) AzureOption {
	return func(c *AzureClient) {
		c.endpoint = strings.TrimRight(url, "/")
	}
}

// AzureClient renders speech with the Azure Speech REST API.
type AzureClient struct {
	key      string
	endpoint string
	format   string
	client   *http.Client
	log      *logger.Logger

	mu    sync.RWMutex
	voice string
}

// NewAzureClient creates a client for the given subscription key and
// region.
func NewAzureClient(key, region string, log *logger.Logger, opts ...AzureOption) *AzureClient {
	c := &AzureClient{
		key:      key,
		endpoint: "https://" + region + ".tts.speech.microsoft.com",
		format:   DefaultAudioFormat,
		client:   &http.Client{Timeout: 30 * time.Second},
		log:      log,
		voice:    DefaultVoice,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Voice returns the voice used for new requests.
func (c *AzureClient) Voice() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.voice
}

// SetVoice switches the voice used for new requests.
func (c *AzureClient) SetVoice(voice string) {
	c.mu.Lock()
	c.voice = voice
	c.mu.Unlock()
	c.log.Debug("azure: voice %s", voice)
}

// call sends one authenticated request and returns the reply body.
func (c *AzureClient) call(ctx context.Context, op, method, path string, body []byte, header http.Header) ([]byte, error) {
	var payload io.Reader
	if body != nil {
		payload = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, payload)
	if err != nil {
		return nil, fmt.Errorf("azure %s: %w", op, err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("azure %s: %w", op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Op: op, Status: resp.StatusCode, Body: string(data)}
	}
	if err != nil {
		return nil, fmt.Errorf("azure %s: read reply: %w", op, err)
	}
	return data, nil
}

// Synthesize renders text as WAV audio with the profile's prosody.
func (c *AzureClient) Synthesize(ctx context.Context, text string, profile Profile) ([]byte, error) {
	voice := c.Voice()
	header := http.Header{}
	header.Set("Content-Type", "application/ssml+xml")
	header.Set("X-Microsoft-OutputFormat", c.format)
	header.Set("User-Agent", "OttoCoach/1.0")

	wav, err := c.call(ctx, "synthesize", http.MethodPost, synthesizePath, []byte(buildSSML(voice, text, profile)), header)
	if err != nil {
		return nil, err
	}
	c.log.Debug("azure: %q in %s (%s): %d bytes", preview(text), voice, profile, len(wav))
	return wav, nil
}

// ListVoices returns every voice the region offers.
func (c *AzureClient) ListVoices(ctx context.Context) ([]Voice, error) {
	data, err := c.call(ctx, "voices", http.MethodGet, voiceListPath, nil, nil)
	if err != nil {
		return nil, err
	}
	var voices []Voice
	if err := json.Unmarshal(data, &voices); err != nil {
		return nil, fmt.Errorf("azure voices: decode: %w", err)
	}
	c.log.Debug("azure: %d voices listed", len(voices))
	return voices, nil
}

func buildSSML(voice, text string, profile Profile) string {
	var body strings.Builder
	_ = xml.EscapeText(&body, []byte(text))
	rate, pitch := profile.prosody()
	return fmt.Sprintf(ssmlTemplate, voice, rate, pitch, body.String())
}
