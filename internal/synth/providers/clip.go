package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Rendering is slow; the operation is started once and polled until
// the backend reports completion.
const defaultClipPollInterval = 10 * time.Second

// clipWaitingStatuses rotate through the status callback while the
// render operation is pending.
var clipWaitingStatuses = []string{
	"Calibrating Neural Frames...",
	"Rendering Cinematic Textures...",
	"Polishing Visual Fidelity...",
	"Synthesizing Audio Harmonics...",
	"Finalizing Frame Sequence...",
	"Applying Color Grading...",
}

// ClipRequest describes one video clip to render. Empty Resolution or
// AspectRatio fall back to the provider's configured defaults.
type ClipRequest struct {
	Prompt      string
	Resolution  string // "720p" or "1080p"
	AspectRatio string // "16:9" or "9:16"
}

// ClipProvider calls an HTTP video-synthesis endpoint that renders
// short clips asynchronously: a start call returns an operation id,
// which is polled until the clip is ready for download.
type ClipProvider struct {
	endpoint     string
	apiKey       string
	resolution   string
	aspectRatio  string
	pollInterval time.Duration
	client       *http.Client
}

// NewClipProvider creates a new clip provider
func NewClipProvider(endpoint, apiKey, resolution, aspectRatio string, pollInterval time.Duration) *ClipProvider {
	if resolution == "" {
		resolution = "720p"
	}
	if aspectRatio == "" {
		aspectRatio = "16:9"
	}
	if pollInterval <= 0 {
		pollInterval = defaultClipPollInterval
	}
	return &ClipProvider{
		endpoint:     endpoint,
		apiKey:       apiKey,
		resolution:   resolution,
		aspectRatio:  aspectRatio,
		pollInterval: pollInterval,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type clipStartRequest struct {
	Prompt      string `json:"prompt"`
	Resolution  string `json:"resolution"`
	AspectRatio string `json:"aspect_ratio"`
	ClipCount   int    `json:"clip_count"`
}

type clipStartResponse struct {
	ID    string `json:"id"`
	Error string `json:"error,omitempty"`
}

type clipOperationResponse struct {
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
	VideoURL string `json:"video_url,omitempty"`
}

// RenderClip renders one clip for the prompt, reporting progress
// through onStatus, and returns the finished video bytes.
func (c *ClipProvider) RenderClip(ctx context.Context, req ClipRequest, onStatus func(string)) ([]byte, error) {
	if c.endpoint == "" {
		return nil, fmt.Errorf("clip endpoint not configured")
	}
	if onStatus == nil {
		onStatus = func(string) {}
	}

	resolution := req.Resolution
	if resolution == "" {
		resolution = c.resolution
	}
	aspectRatio := req.AspectRatio
	if aspectRatio == "" {
		aspectRatio = c.aspectRatio
	}
	if resolution != "720p" && resolution != "1080p" {
		return nil, fmt.Errorf("unsupported clip resolution %q", resolution)
	}
	if aspectRatio != "16:9" && aspectRatio != "9:16" {
		return nil, fmt.Errorf("unsupported clip aspect ratio %q", aspectRatio)
	}

	onStatus("Initializing Cinematic Core...")

	start := clipStartRequest{
		Prompt: fmt.Sprintf("Cinematic high-quality movie scene: %s, 8k, photorealistic, highly detailed, dramatic lighting, professional cinematography",
			req.Prompt),
		Resolution:  resolution,
		AspectRatio: aspectRatio,
		ClipCount:   1,
	}

	var started clipStartResponse
	if err := c.post(ctx, c.endpoint, start, &started); err != nil {
		return nil, fmt.Errorf("failed to start clip render: %w", err)
	}
	if started.Error != "" {
		return nil, fmt.Errorf("clip render rejected: %s", started.Error)
	}
	if started.ID == "" {
		return nil, fmt.Errorf("clip render returned no operation id")
	}

	videoURL, err := c.poll(ctx, started.ID, onStatus)
	if err != nil {
		return nil, err
	}

	return c.download(ctx, videoURL)
}

// poll waits for the render operation to finish, cycling the waiting
// statuses between checks.
func (c *ClipProvider) poll(ctx context.Context, operationID string, onStatus func(string)) (string, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		onStatus(clipWaitingStatuses[i%len(clipWaitingStatuses)])

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}

		var op clipOperationResponse
		if err := c.getJSON(ctx, c.endpoint+"/"+operationID, &op); err != nil {
			return "", fmt.Errorf("failed to poll clip operation: %w", err)
		}
		if op.Error != "" {
			return "", fmt.Errorf("clip render failed: %s", op.Error)
		}
		if op.Done {
			if op.VideoURL == "" {
				return "", fmt.Errorf("clip render finished without a video URL")
			}
			return op.VideoURL, nil
		}
	}
}

func (c *ClipProvider) download(ctx context.Context, videoURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", videoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rendered clip: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("clip download returned status %d", resp.StatusCode)
	}

	video, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read clip payload: %w", err)
	}
	if len(video) == 0 {
		return nil, fmt.Errorf("clip download returned no data")
	}
	return video, nil
}

func (c *ClipProvider) post(ctx context.Context, url string, in, out any) error {
	jsonBody, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	return c.do(req, out)
}

func (c *ClipProvider) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	return c.do(req, out)
}

func (c *ClipProvider) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call clip endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("clip endpoint returned status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse clip response: %w", err)
	}
	return nil
}
