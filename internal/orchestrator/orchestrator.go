// Package orchestrator owns the generation lifecycle: target
// selection, the single-flight pipeline, retry surfacing, and the
// autopilot timer.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/amirkhadim36-creator/reelpress/internal/audio"
	"github.com/amirkhadim36-creator/reelpress/internal/catalog"
	"github.com/amirkhadim36-creator/reelpress/internal/feedstate"
	"github.com/amirkhadim36-creator/reelpress/internal/store"
	"github.com/amirkhadim36-creator/reelpress/internal/synth"
)

// Session status labels surfaced to the presentation layer.
const (
	StatusReady           = "System Ready: Connection Secure."
	StatusAutopilotScan   = "Auto-pilot scanning..."
	StatusManualSync      = "Manual sync initiated..."
	StatusArchiveComplete = "ARCHIVE_COMPLETE: All trending topics recorded."
	StatusWriting         = "Writing deep-dive review..."
	StatusFinalizing      = "Finalizing record..."
	StatusAutopilotFault  = "SYSTEM_FAULT: Protocol failed."
	StatusManualFault     = "SYNTHESIS_ERROR: Process interrupted."
)

// Progress checkpoints of the pipeline state machine.
const (
	progressIdle       = 0
	progressScanning   = 10
	progressDetails    = 25
	progressWriting    = 50
	progressFinalizing = 80
	progressPublished  = 100
)

const (
	defaultRating    = 7.0
	archiveResetWait = 2 * time.Second
)

// ErrBusy is returned to a manual caller when a generation is already
// in flight. The invocation is a no-op.
var ErrBusy = errors.New("generation already in flight")

// Catalog is the slice of the gateway the orchestrator needs
type Catalog interface {
	Details(ctx context.Context, id int64) (*catalog.Details, error)
	TrendingTopics(ctx context.Context) ([]catalog.Topic, error)
	ImageURL(size, path string) string
	FallbackImageURL(id int64) string
}

// PostStore is the persistence contract
type PostStore interface {
	InsertPost(p *store.Post) (*store.Post, error)
	FindByCatalogID(catalogID int64) (*store.Post, error)
	FindByID(id string) (*store.Post, error)
	UpdateAudio(postID string, audio []byte) error
}

// Synthesizer is the content generation contract
type Synthesizer interface {
	Review(ctx context.Context, title string, catalogID int64, rating float64, details *catalog.Details) (*synth.ReviewPayload, error)
	Narrate(ctx context.Context, text string) ([]byte, error)
	RenderClip(ctx context.Context, req synth.ClipRequest, onStatus func(string)) ([]byte, error)
}

// Orchestrator drives review generation. A single global in-flight
// flag serializes the whole pipeline; overlapping invocations are
// dropped, not queued.
type Orchestrator struct {
	state   *feedstate.State
	catalog Catalog
	store   PostStore
	synth   Synthesizer
	rng     *rand.Rand

	inFlight     atomic.Bool
	clipInFlight atomic.Bool

	publishDelay time.Duration
	interval     time.Duration
	sampleRate   int

	mu         sync.Mutex
	cron       *cron.Cron
	entryID    cron.EntryID
	resetTimer *time.Timer
}

// Options configures an Orchestrator
type Options struct {
	PublishDelay time.Duration // progress display delay after a terminal state
	Interval     time.Duration // autopilot cadence
	SampleRate   int           // narration PCM sample rate
	Rand         *rand.Rand    // injectable source for target selection
}

// New creates an Orchestrator. The cron scheduler starts immediately
// but carries no entries until autopilot is enabled.
func New(state *feedstate.State, cat Catalog, posts PostStore, syn Synthesizer, opts Options) *Orchestrator {
	if opts.PublishDelay <= 0 {
		opts.PublishDelay = 3 * time.Second
	}
	if opts.Interval <= 0 {
		opts.Interval = 180 * time.Second
	}
	if opts.SampleRate <= 0 {
		opts.SampleRate = 24000
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	c := cron.New()
	c.Start()

	return &Orchestrator{
		state:        state,
		catalog:      cat,
		store:        posts,
		synth:        syn,
		rng:          opts.Rand,
		publishDelay: opts.PublishDelay,
		interval:     opts.Interval,
		sampleRate:   opts.SampleRate,
		cron:         c,
	}
}

// Close cancels the autopilot timer and any pending progress reset.
func (o *Orchestrator) Close() {
	o.StopAutopilot()

	o.mu.Lock()
	if o.resetTimer != nil {
		o.resetTimer.Stop()
		o.resetTimer = nil
	}
	o.mu.Unlock()

	<-o.cron.Stop().Done()
}

// StartAutopilot enables the recurring generation loop: one immediate
// tick, then a fixed cadence. Idempotent; at most one timer is ever
// registered.
func (o *Orchestrator) StartAutopilot() {
	o.mu.Lock()
	if o.entryID != 0 {
		o.mu.Unlock()
		return
	}

	spec := fmt.Sprintf("@every %ds", int(o.interval.Seconds()))
	entryID, err := o.cron.AddFunc(spec, func() {
		o.Tick(context.Background())
	})
	if err != nil {
		o.mu.Unlock()
		log.Printf("[orchestrator] Failed to schedule autopilot: %v", err)
		return
	}
	o.entryID = entryID
	o.mu.Unlock()

	o.state.SetAutopilot(true)
	log.Printf("[orchestrator] Autopilot enabled (%s)", spec)

	go o.Tick(context.Background())
}

// StopAutopilot cancels the pending recurrence. Idempotent.
func (o *Orchestrator) StopAutopilot() {
	o.mu.Lock()
	if o.entryID != 0 {
		o.cron.Remove(o.entryID)
		o.entryID = 0
		o.mu.Unlock()
		o.state.SetAutopilot(false)
		log.Println("[orchestrator] Autopilot disabled")
		return
	}
	o.mu.Unlock()
}

// target is what the pipeline needs to know about the entry being
// written up, regardless of whether it came from a topic or a movie.
type target struct {
	ID       int64
	Title    string
	Rating   float64
	Backdrop string
	Poster   string
}

func topicTarget(t catalog.Topic) target {
	return target{ID: t.ID, Title: t.Title, Rating: t.Rating, Backdrop: t.BackdropPath, Poster: t.PosterPath}
}

func movieTarget(m *catalog.Movie) target {
	return target{ID: m.ID, Title: m.Title, Rating: m.VoteAverage, Backdrop: m.BackdropPath, Poster: m.PosterPath}
}

// Tick runs one autopilot pass: pick a fresh trending target and run
// the pipeline. Faults are logged and reflected in session state but
// never returned; the next tick reselects from scratch. A tick that
// arrives while a generation is in flight is dropped.
func (o *Orchestrator) Tick(ctx context.Context) {
	if !o.inFlight.CompareAndSwap(false, true) {
		return
	}
	defer o.inFlight.Store(false)

	o.state.SetError(false)
	o.state.SetSession(StatusAutopilotScan, progressScanning)

	snap := o.state.Snapshot()
	topics := snap.Topics
	if len(topics) == 0 {
		fetched, err := o.catalog.TrendingTopics(ctx)
		if err != nil {
			o.fault(err, false)
			return
		}
		topics = fetched
		o.state.SetTopics(topics)
	}

	covered := make(map[int64]bool, len(snap.Posts))
	for _, p := range snap.Posts {
		covered[p.CatalogID] = true
	}

	var fresh []catalog.Topic
	for _, t := range topics {
		if !covered[t.ID] {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) == 0 {
		o.state.SetSession(StatusArchiveComplete, progressPublished)
		o.scheduleProgressReset(archiveResetWait)
		return
	}

	// Uniform random pick spreads coverage across the fresh set
	// instead of hammering the head of the list.
	selected := fresh[o.rng.Intn(len(fresh))]

	if _, err := o.runPipeline(ctx, topicTarget(selected), false); err != nil {
		// fault state already set by runPipeline
		return
	}
}

// GenerateFor handles a manual request for a specific catalog entry.
// Cache first: an existing post for the id is returned without
// touching the synthesizer or the visible session. A miss runs the
// full pipeline. Session state and the retry target are only written
// once this call owns the in-flight flag, so a dropped request leaves
// the running generation's status and target alone.
func (o *Orchestrator) GenerateFor(ctx context.Context, m *catalog.Movie) (*store.Post, error) {
	existing, err := o.store.FindByCatalogID(m.ID)
	if err == nil && existing != nil {
		return existing, nil
	}
	if err != nil {
		log.Printf("[orchestrator] Archive lookup failed: %v", err)
	}

	if !o.inFlight.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer o.inFlight.Store(false)

	// Re-check under the in-flight flag so two near-simultaneous
	// manual requests for the same uncovered id cannot both insert.
	if existing, err := o.store.FindByCatalogID(m.ID); err == nil && existing != nil {
		return existing, nil
	}

	o.state.SetLastTarget(m)
	o.state.SetError(false)
	o.state.SetSession(StatusManualSync, progressScanning)
	o.state.SetSession(fmt.Sprintf("Scanning archive for %q...", m.Title), progressScanning)

	return o.runPipeline(ctx, movieTarget(m), true)
}

// RetryLast re-attempts the last manually attempted target.
func (o *Orchestrator) RetryLast(ctx context.Context) (*store.Post, error) {
	snap := o.state.Snapshot()
	if snap.Session.LastTarget == nil {
		return nil, errors.New("no attempted target to retry")
	}
	return o.GenerateFor(ctx, snap.Session.LastTarget)
}

// runPipeline executes the generation steps for one target. All
// faults collapse into a single generation-fault kind.
func (o *Orchestrator) runPipeline(ctx context.Context, t target, manual bool) (*store.Post, error) {
	o.state.SetSession(fmt.Sprintf("Processing: %s...", t.Title), progressDetails)
	details, err := o.catalog.Details(ctx, t.ID)
	if err != nil {
		return nil, o.fault(err, manual)
	}

	rating := t.Rating
	if rating == 0 {
		rating = defaultRating
	}

	o.state.SetSession(StatusWriting, progressWriting)
	review, err := o.synth.Review(ctx, t.Title, t.ID, rating, details)
	if err != nil {
		return nil, o.fault(err, manual)
	}

	o.state.SetSession(StatusFinalizing, progressFinalizing)

	post := &store.Post{
		CatalogID: t.ID,
		Title:     review.Title,
		Preview:   review.Preview,
		Content:   review.Content,
		Image:     o.imageURL(t, details),
		Sentiment: int(math.Round(rating * 10)),
		Category:  review.Category,
		Keywords:  review.Keywords,
		Budget:    review.Budget,
		Revenue:   review.Revenue,
		Runtime:   review.Runtime,
		Status:    review.Status,
		Tagline:   review.Tagline,
	}
	if post.Budget == 0 && details != nil {
		post.Budget = details.Budget
	}
	if post.Revenue == 0 && details != nil {
		post.Revenue = details.Revenue
	}
	if post.Runtime == 0 && details != nil {
		post.Runtime = details.Runtime
	}

	saved, err := o.store.InsertPost(post)
	if err != nil {
		return nil, o.fault(err, manual)
	}

	o.state.PrependPost(*saved)
	o.state.SetSession(fmt.Sprintf("PUBLISHED: %q", t.Title), progressPublished)
	o.scheduleProgressReset(o.publishDelay)
	log.Printf("[orchestrator] Published review for %q (catalog id %d)", t.Title, t.ID)

	return saved, nil
}

// imageURL picks the best available artwork: detail backdrop, detail
// poster, target backdrop, target poster, then a deterministic
// fallback derived from the id.
func (o *Orchestrator) imageURL(t target, details *catalog.Details) string {
	path := ""
	if details != nil {
		if details.BackdropPath != "" {
			path = details.BackdropPath
		} else if details.PosterPath != "" {
			path = details.PosterPath
		}
	}
	if path == "" {
		if t.Backdrop != "" {
			path = t.Backdrop
		} else if t.Poster != "" {
			path = t.Poster
		}
	}
	if path == "" {
		return o.catalog.FallbackImageURL(t.ID)
	}
	return o.catalog.ImageURL("w1280", path)
}

// fault records a generation fault in session state. Manual callers
// get the wrapped error back for display and retry; autopilot ticks
// swallow it and reselect next time.
func (o *Orchestrator) fault(err error, manual bool) error {
	log.Printf("[orchestrator] Generation fault: %v", err)
	o.state.SetError(true)
	if manual {
		o.state.SetSession(StatusManualFault, progressIdle)
	} else {
		o.state.SetSession(StatusAutopilotFault, progressIdle)
	}
	return fmt.Errorf("generation fault: %w", err)
}

// scheduleProgressReset clears the progress bar after a display
// delay. A newer terminal state replaces any pending reset.
func (o *Orchestrator) scheduleProgressReset(delay time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.resetTimer != nil {
		o.resetTimer.Stop()
	}
	o.resetTimer = time.AfterFunc(delay, func() {
		o.state.SetProgress(progressIdle)
	})
}

// RenderClip drives one vision-lab video synthesis: the prompt is
// rendered into a short clip, with progress reported through onStatus.
// Clips run independently of the review pipeline but are themselves
// single-flight; an overlapping request gets ErrBusy. Session state is
// never touched.
func (o *Orchestrator) RenderClip(ctx context.Context, req synth.ClipRequest, onStatus func(string)) ([]byte, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, errors.New("empty clip prompt")
	}

	if !o.clipInFlight.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer o.clipInFlight.Store(false)

	video, err := o.synth.RenderClip(ctx, req, onStatus)
	if err != nil {
		log.Printf("[orchestrator] Clip render fault: %v", err)
		return nil, fmt.Errorf("clip render fault: %w", err)
	}
	log.Printf("[orchestrator] Rendered clip (%d bytes)", len(video))
	return video, nil
}

// NarrationPCM returns the raw narration audio for a post,
// synthesizing and caching it on first request. Faults here never
// touch session state.
func (o *Orchestrator) NarrationPCM(ctx context.Context, postID string) ([]byte, error) {
	post, err := o.store.FindByID(postID)
	if err != nil {
		return nil, fmt.Errorf("narration lookup failed: %w", err)
	}
	if post == nil {
		return nil, fmt.Errorf("no post with id %s", postID)
	}

	data := post.Audio
	if len(data) == 0 {
		text := post.Title + ". " + post.Preview
		data, err = o.synth.Narrate(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("narration synthesis failed: %w", err)
		}
		if err := o.store.UpdateAudio(post.ID, data); err != nil {
			// The clip is still playable this session; only the cache
			// write failed.
			log.Printf("[orchestrator] Failed to cache narration audio: %v", err)
		}
	}

	return data, nil
}

// Narration returns the decoded, playable narration buffer for a post.
func (o *Orchestrator) Narration(ctx context.Context, postID string) (*audio.Buffer, error) {
	data, err := o.NarrationPCM(ctx, postID)
	if err != nil {
		return nil, err
	}
	return audio.DecodePCM16(data, o.sampleRate)
}

// SampleRate reports the narration PCM sample rate.
func (o *Orchestrator) SampleRate() int {
	return o.sampleRate
}
