// Package synth generates long-form review posts and narration audio
// through pluggable providers.
package synth

import (
	"context"
	"fmt"
	"time"

	"github.com/amirkhadim36-creator/reelpress/internal/catalog"
	"github.com/amirkhadim36-creator/reelpress/internal/config"
	"github.com/amirkhadim36-creator/reelpress/internal/synth/providers"
)

// ReviewRequest carries the title and contextual metadata for one
// review generation.
type ReviewRequest = providers.ReviewRequest

// ReviewPayload is the structured post returned by a provider.
type ReviewPayload = providers.ReviewPayload

// ClipRequest describes one video clip to render.
type ClipRequest = providers.ClipRequest

// Provider defines the interface for review generation backends
type Provider interface {
	Review(ctx context.Context, req ReviewRequest) (*ReviewPayload, error)
}

// Narrator turns review text into narrated audio (raw PCM16)
type Narrator interface {
	Narrate(ctx context.Context, text string) ([]byte, error)
}

// ClipRenderer renders short video clips from a visual prompt,
// reporting progress through the status callback
type ClipRenderer interface {
	RenderClip(ctx context.Context, req ClipRequest, onStatus func(string)) ([]byte, error)
}

// Synthesizer bundles the review provider, the narrator and the clip
// renderer
type Synthesizer struct {
	provider Provider
	narrator Narrator
	clips    ClipRenderer
}

// New creates a Synthesizer with the provider selected by config
func New(cfg config.SynthesisConfig, narrationCfg config.NarrationConfig, clipCfg config.ClipConfig) (*Synthesizer, error) {
	var provider Provider

	switch cfg.Provider {
	case config.ProviderAnthropic:
		provider = providers.NewAnthropicProvider(cfg.APIKey, cfg.Model, cfg.MaxTokens)
	default:
		return nil, fmt.Errorf("unknown synthesis provider: %s", cfg.Provider)
	}

	return &Synthesizer{
		provider: provider,
		narrator: providers.NewTTSProvider(narrationCfg.Endpoint, narrationCfg.APIKey, narrationCfg.Voice, narrationCfg.SampleRate),
		clips: providers.NewClipProvider(clipCfg.Endpoint, clipCfg.APIKey, clipCfg.Resolution, clipCfg.AspectRatio,
			time.Duration(clipCfg.PollIntervalMS)*time.Millisecond),
	}, nil
}

// NewWith creates a Synthesizer from explicit implementations.
// Used by tests to inject fakes.
func NewWith(provider Provider, narrator Narrator, clips ClipRenderer) *Synthesizer {
	return &Synthesizer{provider: provider, narrator: narrator, clips: clips}
}

// Review generates a structured review post for a catalog entry
func (s *Synthesizer) Review(ctx context.Context, title string, catalogID int64, rating float64, details *catalog.Details) (*ReviewPayload, error) {
	return s.provider.Review(ctx, ReviewRequest{
		Title:     title,
		CatalogID: catalogID,
		Rating:    rating,
		Details:   details,
	})
}

// Narrate produces narration audio for the given text
func (s *Synthesizer) Narrate(ctx context.Context, text string) ([]byte, error) {
	return s.narrator.Narrate(ctx, text)
}

// RenderClip renders one video clip for a visual prompt
func (s *Synthesizer) RenderClip(ctx context.Context, req ClipRequest, onStatus func(string)) ([]byte, error) {
	return s.clips.RenderClip(ctx, req, onStatus)
}
