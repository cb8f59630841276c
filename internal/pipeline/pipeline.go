// Package pipeline implements the debounced search-and-fetch cycle:
// query, debounce, geocode search, selection, weather fetch. The last
// fetched coordinates are persisted and replayed on start and refresh.
//
// A single goroutine (Run) owns all state. Public methods enqueue events;
// network and storage calls run on worker goroutines and post their results
// back to the loop, so every mutation happens in order on one queue.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/valpere/pogoda/internal/storage"
	"github.com/valpere/pogoda/pkg/format"
	"github.com/valpere/pogoda/pkg/metrics"
	"github.com/valpere/pogoda/pkg/weather"
)

const (
	// DefaultDebounce is the quiet interval before a query is searched.
	DefaultDebounce = 500 * time.Millisecond

	persistTimeout = 5 * time.Second
	eventBuffer    = 64
)

var (
	ErrAlreadyRunning = errors.New("pipeline is already running")
	ErrStopped        = errors.New("pipeline is stopped")
	ErrNoSuggestion   = errors.New("no suggestion at that position")
)

// Persistence loads and saves the last selected coordinates.
type Persistence interface {
	Load(ctx context.Context) (weather.Coordinates, error)
	Save(ctx context.Context, coords weather.Coordinates) error
}

type Option func(*Pipeline)

func WithDebounce(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.debounce = d
		}
	}
}

func WithLogger(logger *zerolog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger.With().Str("component", "pipeline").Str("session_id", p.sessionID).Logger()
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

type Pipeline struct {
	api       weather.API
	persist   Persistence
	debounce  time.Duration
	logger    zerolog.Logger
	metrics   *metrics.Metrics
	sessionID string

	events  chan func()
	done    chan struct{}
	started atomic.Bool

	mu        sync.RWMutex
	published State
	subs      map[int]func(State)
	nextSub   int

	// Owned by the Run goroutine.
	runCtx        context.Context
	state         State
	timer         *time.Timer
	timerC        <-chan time.Time
	searchGen     uint64
	weatherGen    uint64
	searchCancel  context.CancelFunc
	weatherCancel context.CancelFunc
	workers       sync.WaitGroup
	afterPublish  []func()
}

func New(api weather.API, persist Persistence, opts ...Option) *Pipeline {
	p := &Pipeline{
		api:       api,
		persist:   persist,
		debounce:  DefaultDebounce,
		logger:    zerolog.Nop(),
		sessionID: uuid.NewString(),
		events:    make(chan func(), eventBuffer),
		done:      make(chan struct{}),
		subs:      make(map[int]func(State)),
		state:     State{Phase: PhaseIdle},
	}
	p.published = p.state.clone()

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// SessionID identifies this pipeline instance in logs.
func (p *Pipeline) SessionID() string {
	return p.sessionID
}

// Run processes events until ctx is done. It restores the last saved
// coordinates first. On return the debounce timer is stopped, in-flight
// calls are cancelled and all workers have exited.
func (p *Pipeline) Run(ctx context.Context) error {
	if !p.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	p.runCtx = ctx
	defer p.teardown()

	p.logger.Info().Dur("debounce", p.debounce).Msg("Pipeline started")
	p.restore(nil)
	p.publish()

	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-p.events:
			fn()
			p.publish()
		case <-p.timerC:
			p.timerC = nil
			p.onDebounce()
			p.publish()
		}
	}
}

// later runs fn once the current event's state has been published.
func (p *Pipeline) later(fn func()) {
	p.afterPublish = append(p.afterPublish, fn)
}

// Done is closed once Run has returned.
func (p *Pipeline) Done() <-chan struct{} {
	return p.done
}

func (p *Pipeline) teardown() {
	p.stopDebounce()
	if p.searchCancel != nil {
		p.searchCancel()
	}
	if p.weatherCancel != nil {
		p.weatherCancel()
	}
	p.workers.Wait()
	close(p.done)
	p.logger.Info().Msg("Pipeline stopped")
}

// State returns a copy of the current state.
func (p *Pipeline) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.published.clone()
}

// Subscribe registers fn to receive a copy of the state after every
// processed event. fn runs on the pipeline goroutine and must not block.
func (p *Pipeline) Subscribe(fn func(State)) (unsubscribe func()) {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.subs, id)
			p.mu.Unlock()
		})
	}
}

func (p *Pipeline) publish() {
	p.mu.Lock()
	p.published = p.state.clone()
	subs := make([]func(State), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(p.state.clone())
	}

	pending := p.afterPublish
	p.afterPublish = nil
	for _, fn := range pending {
		fn()
	}
}

// send queues fn for the loop. It reports false once the pipeline stopped.
func (p *Pipeline) send(fn func()) bool {
	select {
	case <-p.done:
		return false
	default:
	}

	select {
	case p.events <- fn:
		return true
	case <-p.done:
		return false
	}
}

// post is send for workers: results are dropped once Run is shutting down.
func (p *Pipeline) post(fn func()) bool {
	select {
	case p.events <- fn:
		return true
	case <-p.runCtx.Done():
		return false
	}
}

func (p *Pipeline) count(event string) {
	p.metrics.IncrementCounter(metrics.PipelineEventsTotal, event)
}

// SetQuery updates the query text and restarts the debounce interval.
// It never issues a request by itself.
func (p *Pipeline) SetQuery(text string) {
	p.send(func() {
		p.count("query")
		p.state.Query = text
		p.cancelSearch()
		p.resetDebounce()
	})
}

// Focus marks the input as focused.
func (p *Pipeline) Focus() {
	p.send(func() {
		p.state.Focused = true
	})
}

// Blur clears the input focus flag.
func (p *Pipeline) Blur() {
	p.send(func() {
		p.state.Focused = false
	})
}

// ResetSuggestions dismisses the suggestion list without selecting. Query,
// coordinates and weather are kept.
func (p *Pipeline) ResetSuggestions() {
	p.send(func() {
		p.count("reset")
		p.state.Suggestions = nil
		p.state.Focused = false
		if p.state.Phase == PhaseSuggestionsReady {
			p.state.Phase = p.restingPhase()
		}
	})
}

// SelectLocation sets the coordinates from loc. The weather fetch follows
// from the coordinates change.
func (p *Pipeline) SelectLocation(loc weather.Location) {
	p.send(func() {
		p.selectLocation(loc)
	})
}

// SelectIndex selects the i-th current suggestion.
func (p *Pipeline) SelectIndex(i int) error {
	reply := make(chan error, 1)
	if !p.send(func() {
		if i < 0 || i >= len(p.state.Suggestions) {
			reply <- fmt.Errorf("%w: %d", ErrNoSuggestion, i)
			return
		}
		p.selectLocation(p.state.Suggestions[i])
		p.later(func() { reply <- nil })
	}) {
		return ErrStopped
	}

	select {
	case err := <-reply:
		return err
	case <-p.done:
		return ErrStopped
	}
}

func (p *Pipeline) selectLocation(loc weather.Location) {
	p.count("select")
	p.logger.Debug().Str("location", loc.Label()).Msg("Location selected")
	p.state.Focused = false
	p.setCoordinates(loc.Coordinates())
}

// Refresh re-reads the persisted coordinates. The returned channel is
// closed once the read has completed, whatever its outcome, or when the
// pipeline stops.
func (p *Pipeline) Refresh() <-chan struct{} {
	done := make(chan struct{})
	if !p.send(func() {
		p.count("refresh")
		p.state.Refreshing = true
		p.restore(done)
	}) {
		close(done)
		return done
	}

	out := make(chan struct{})
	go func() {
		defer close(out)
		select {
		case <-done:
		case <-p.done:
		}
	}()
	return out
}

// setCoordinates is the only place coordinates are assigned. Every
// non-empty assignment triggers exactly one fetch, even for equal values.
func (p *Pipeline) setCoordinates(coords weather.Coordinates) {
	p.state.Coordinates = &coords
	if format.IsEmpty(p.state.Coordinates) {
		return
	}
	p.fetchWeather(coords)
}

func (p *Pipeline) restingPhase() Phase {
	if p.state.Weather != nil {
		return PhaseWeatherReady
	}
	return PhaseIdle
}

func (p *Pipeline) resetDebounce() {
	if p.timer == nil {
		p.timer = time.NewTimer(p.debounce)
	} else {
		p.timer.Stop()
		p.timer.Reset(p.debounce)
	}
	p.timerC = p.timer.C
}

func (p *Pipeline) stopDebounce() {
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timerC = nil
}

func (p *Pipeline) onDebounce() {
	query := p.state.Query
	if strings.TrimSpace(query) == "" {
		return
	}
	p.startSearch(query)
}

// cancelSearch makes any in-flight search stale.
func (p *Pipeline) cancelSearch() {
	p.searchGen++
	if p.searchCancel != nil {
		p.searchCancel()
		p.searchCancel = nil
	}
	if p.state.Phase == PhaseSearching {
		p.state.Phase = p.restingPhase()
	}
}

func (p *Pipeline) startSearch(query string) {
	p.cancelSearch()
	gen := p.searchGen

	ctx, cancel := context.WithCancel(p.runCtx)
	p.searchCancel = cancel
	p.state.Phase = PhaseSearching
	p.count("search")

	p.logger.Debug().Str("query", query).Uint64("generation", gen).Msg("Searching locations")

	p.workers.Add(1)
	go func() {
		defer p.workers.Done()
		defer cancel()

		locations, err := p.api.SearchLocations(ctx, query)
		p.post(func() {
			p.onSearchResult(gen, query, locations, err)
		})
	}()
}

func (p *Pipeline) onSearchResult(gen uint64, query string, locations []weather.Location, err error) {
	if gen != p.searchGen {
		p.metrics.IncrementCounter(metrics.StaleResponsesTotal, "search")
		p.logger.Debug().Str("query", query).Msg("Dropped stale search result")
		return
	}
	p.searchCancel = nil

	if err != nil {
		p.logger.Warn().Err(err).Str("query", query).Msg("Location search failed")
		p.state.Error = err.Error()
		p.state.Phase = PhaseError
		return
	}

	if locations == nil {
		locations = []weather.Location{}
	}
	p.state.Suggestions = locations
	p.state.Phase = PhaseSuggestionsReady
}

func (p *Pipeline) fetchWeather(coords weather.Coordinates) {
	p.weatherGen++
	gen := p.weatherGen
	if p.weatherCancel != nil {
		p.weatherCancel()
	}

	ctx, cancel := context.WithCancel(p.runCtx)
	p.weatherCancel = cancel
	p.state.Loading = true
	p.state.Phase = PhaseFetchingWeather
	p.count("fetch")

	p.logger.Debug().Stringer("coordinates", coords).Uint64("generation", gen).Msg("Fetching weather")

	p.workers.Add(1)
	go func() {
		defer p.workers.Done()
		defer cancel()

		snapshot, err := p.api.GetCurrentWeather(ctx, coords)
		if err == nil && snapshot == nil {
			err = errors.New("empty weather response")
		}
		p.post(func() {
			p.onWeatherResult(gen, coords, snapshot, err)
		})
	}()
}

func (p *Pipeline) onWeatherResult(gen uint64, coords weather.Coordinates, snapshot *weather.Snapshot, err error) {
	if gen != p.weatherGen {
		p.metrics.IncrementCounter(metrics.StaleResponsesTotal, "weather")
		p.logger.Debug().Stringer("coordinates", coords).Msg("Dropped stale weather result")
		return
	}
	p.weatherCancel = nil

	if err != nil {
		p.logger.Warn().Err(err).Stringer("coordinates", coords).Msg("Weather fetch failed")
		p.state.Error = err.Error()
		p.state.Phase = PhaseError
	} else {
		w := *snapshot
		p.state.Weather = &w
		p.state.Error = ""
		p.state.Phase = PhaseWeatherReady
		p.save(coords)
	}

	p.state.Loading = false
	p.state.Suggestions = nil
	p.state.Query = ""
	p.stopDebounce()
	p.cancelSearch()
}

// save persists coords in the background. Failures are logged only.
func (p *Pipeline) save(coords weather.Coordinates) {
	if p.persist == nil {
		return
	}

	p.workers.Add(1)
	go func() {
		defer p.workers.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(p.runCtx), persistTimeout)
		defer cancel()

		if err := p.persist.Save(ctx, coords); err != nil {
			p.metrics.IncrementCounter(metrics.PersistenceErrorsTotal, "save")
			p.logger.Error().Err(err).Stringer("coordinates", coords).Msg("Failed to persist last location")
		}
	}()
}

// restore reads the persisted coordinates in the background and, when they
// are valid, assigns them. done, if set, is closed once the read finished.
func (p *Pipeline) restore(done chan struct{}) {
	p.count("restore")

	if p.persist == nil {
		p.finishRestore(done)
		return
	}

	p.workers.Add(1)
	go func() {
		defer p.workers.Done()

		ctx, cancel := context.WithTimeout(p.runCtx, persistTimeout)
		defer cancel()

		coords, err := p.persist.Load(ctx)
		if !p.post(func() {
			p.onRestored(coords, err)
			p.finishRestore(done)
		}) && done != nil {
			close(done)
		}
	}()
}

func (p *Pipeline) onRestored(coords weather.Coordinates, err error) {
	switch {
	case err == nil:
		p.logger.Debug().Stringer("coordinates", coords).Msg("Restored last location")
		p.setCoordinates(coords)
	case errors.Is(err, storage.ErrNotFound):
		p.logger.Debug().Msg("No saved location")
	default:
		p.metrics.IncrementCounter(metrics.PersistenceErrorsTotal, "load")
		p.logger.Warn().Err(err).Msg("Failed to restore last location")
	}
}

func (p *Pipeline) finishRestore(done chan struct{}) {
	if done == nil {
		return
	}
	p.state.Refreshing = false
	p.later(func() { close(done) })
}
