package providers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TTSProvider calls an HTTP speech-synthesis endpoint that returns raw
// 16-bit PCM, base64-encoded.
type TTSProvider struct {
	endpoint   string
	apiKey     string
	voice      string
	sampleRate int
	client     *http.Client
}

// NewTTSProvider creates a new TTS provider
func NewTTSProvider(endpoint, apiKey, voice string, sampleRate int) *TTSProvider {
	return &TTSProvider{
		endpoint:   endpoint,
		apiKey:     apiKey,
		voice:      voice,
		sampleRate: sampleRate,
		client: &http.Client{
			Timeout: 120 * time.Second, // narration synthesis can be slow
		},
	}
}

type ttsRequest struct {
	Text       string `json:"text"`
	Voice      string `json:"voice"`
	SampleRate int    `json:"sample_rate"`
}

type ttsResponse struct {
	Audio string `json:"audio"`
	Error string `json:"error,omitempty"`
}

// Narrate synthesizes narration audio for the given text
func (t *TTSProvider) Narrate(ctx context.Context, text string) ([]byte, error) {
	if t.endpoint == "" {
		return nil, fmt.Errorf("narration endpoint not configured")
	}

	reqBody := ttsRequest{
		Text:       "Read this cinematic movie review with a professional, deep-toned narrator voice. Be dramatic and clear: " + text,
		Voice:      t.voice,
		SampleRate: t.sampleRate,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", t.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call TTS endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("TTS endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var ttsResp ttsResponse
	if err := json.Unmarshal(body, &ttsResp); err != nil {
		return nil, fmt.Errorf("failed to parse TTS response: %w", err)
	}
	if ttsResp.Error != "" {
		return nil, fmt.Errorf("TTS error: %s", ttsResp.Error)
	}
	if ttsResp.Audio == "" {
		return nil, fmt.Errorf("audio generation failed: no data returned")
	}

	audio, err := base64.StdEncoding.DecodeString(ttsResp.Audio)
	if err != nil {
		return nil, fmt.Errorf("failed to decode audio payload: %w", err)
	}

	return audio, nil
}
