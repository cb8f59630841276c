package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/pogoda/internal/storage"
	"github.com/valpere/pogoda/pkg/metrics"
	"github.com/valpere/pogoda/pkg/weather"
	"github.com/valpere/pogoda/tests/helpers"
)

const (
	testDebounce = 20 * time.Millisecond
	waitFor      = 2 * time.Second
	tick         = 5 * time.Millisecond
)

var (
	kyiv = weather.Location{Name: "Kyiv", Country: "UA", State: "Kyiv", Lat: 50.45, Lon: 30.52}
	lviv = weather.Location{Name: "Lviv", Country: "UA", Lat: 49.84, Lon: 24.03}
)

type fakeAPI struct {
	mu           sync.Mutex
	searchCalls  []string
	weatherCalls []weather.Coordinates
	searchFn     func(ctx context.Context, query string) ([]weather.Location, error)
	weatherFn    func(ctx context.Context, coords weather.Coordinates) (*weather.Snapshot, error)
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		searchFn: func(_ context.Context, query string) ([]weather.Location, error) {
			return []weather.Location{kyiv, lviv}, nil
		},
		weatherFn: func(_ context.Context, coords weather.Coordinates) (*weather.Snapshot, error) {
			return snapshotFor(coords), nil
		},
	}
}

func snapshotFor(coords weather.Coordinates) *weather.Snapshot {
	return &weather.Snapshot{Name: "Kyiv", Country: "UA", Coordinates: coords, Temperature: 21.7, WindSpeed: 3.4, WindDeg: 250}
}

func (f *fakeAPI) SearchLocations(ctx context.Context, query string) ([]weather.Location, error) {
	f.mu.Lock()
	f.searchCalls = append(f.searchCalls, query)
	fn := f.searchFn
	f.mu.Unlock()
	return fn(ctx, query)
}

func (f *fakeAPI) GetCurrentWeather(ctx context.Context, coords weather.Coordinates) (*weather.Snapshot, error) {
	f.mu.Lock()
	f.weatherCalls = append(f.weatherCalls, coords)
	fn := f.weatherFn
	f.mu.Unlock()
	return fn(ctx, coords)
}

func (f *fakeAPI) searches() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.searchCalls...)
}

func (f *fakeAPI) fetches() []weather.Coordinates {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]weather.Coordinates(nil), f.weatherCalls...)
}

type fakePersistence struct {
	mu      sync.Mutex
	stored  *weather.Coordinates
	saved   []weather.Coordinates
	loadErr error
	saveErr error
	loads   int
	gate    chan struct{}
}

func (f *fakePersistence) Load(ctx context.Context) (weather.Coordinates, error) {
	f.mu.Lock()
	f.loads++
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return weather.Coordinates{}, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return weather.Coordinates{}, f.loadErr
	}
	if f.stored == nil {
		return weather.Coordinates{}, storage.ErrNotFound
	}
	return *f.stored, nil
}

func (f *fakePersistence) Save(_ context.Context, coords weather.Coordinates) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, coords)
	c := coords
	f.stored = &c
	return nil
}

func (f *fakePersistence) savedCoords() []weather.Coordinates {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]weather.Coordinates(nil), f.saved...)
}

func (f *fakePersistence) loadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads
}

// start runs p until the test ends.
func start(t *testing.T, p *Pipeline) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = p.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-p.Done()
	})
	return cancel
}

func newTestPipeline(api *fakeAPI, persist *fakePersistence, opts ...Option) *Pipeline {
	opts = append([]Option{WithDebounce(testDebounce), WithLogger(helpers.NewSilentTestLogger())}, opts...)
	return New(api, persist, opts...)
}

func eventually(t *testing.T, p *Pipeline, cond func(State) bool, msg string) {
	t.Helper()
	require.Eventually(t, func() bool { return cond(p.State()) }, waitFor, tick, msg)
}

func TestNew_Defaults(t *testing.T) {
	p := New(newFakeAPI(), nil)

	assert.Equal(t, DefaultDebounce, p.debounce)
	assert.NotEmpty(t, p.SessionID())
	assert.Equal(t, PhaseIdle, p.State().Phase)
	assert.False(t, p.State().Loading)
}

func TestPipeline_DebounceCollapsesRapidTyping(t *testing.T) {
	api := newFakeAPI()
	p := newTestPipeline(api, &fakePersistence{})
	start(t, p)

	p.SetQuery("Ky")
	p.SetQuery("Kyiv")

	eventually(t, p, func(s State) bool { return s.Phase == PhaseSuggestionsReady }, "suggestions never arrived")
	time.Sleep(5 * testDebounce)

	assert.Equal(t, []string{"Kyiv"}, api.searches())
	assert.Equal(t, []weather.Location{kyiv, lviv}, p.State().Suggestions)
}

func TestPipeline_SetQueryEchoesImmediately(t *testing.T) {
	api := newFakeAPI()
	p := newTestPipeline(api, &fakePersistence{}, WithDebounce(time.Hour))
	start(t, p)

	p.SetQuery("Kyi")

	eventually(t, p, func(s State) bool { return s.Query == "Kyi" }, "query not echoed")
	assert.Empty(t, api.searches())
	assert.Equal(t, PhaseIdle, p.State().Phase)
}

func TestPipeline_BlankQueryNeverSearches(t *testing.T) {
	api := newFakeAPI()
	p := newTestPipeline(api, &fakePersistence{})
	start(t, p)

	for _, q := range []string{"", "   ", "\t\n"} {
		p.SetQuery(q)
	}
	time.Sleep(5 * testDebounce)

	assert.Empty(t, api.searches())
	assert.Equal(t, PhaseIdle, p.State().Phase)
}

func TestPipeline_EmptyResultIsNotAnError(t *testing.T) {
	api := newFakeAPI()
	api.searchFn = func(context.Context, string) ([]weather.Location, error) { return nil, nil }
	p := newTestPipeline(api, &fakePersistence{})
	start(t, p)

	p.SetQuery("Atlantis")

	eventually(t, p, func(s State) bool { return s.Phase == PhaseSuggestionsReady }, "search never completed")
	state := p.State()
	assert.NotNil(t, state.Suggestions)
	assert.Empty(t, state.Suggestions)
	assert.Empty(t, state.Error)
}

func TestPipeline_SearchFailureKeepsSuggestions(t *testing.T) {
	api := newFakeAPI()
	p := newTestPipeline(api, &fakePersistence{})
	start(t, p)

	p.SetQuery("Kyiv")
	eventually(t, p, func(s State) bool { return len(s.Suggestions) == 2 }, "first search never completed")

	api.mu.Lock()
	api.searchFn = func(context.Context, string) ([]weather.Location, error) {
		return nil, &weather.APIError{StatusCode: 500, Message: "internal error"}
	}
	api.mu.Unlock()

	p.SetQuery("Lviv")

	eventually(t, p, func(s State) bool { return s.Phase == PhaseError }, "failure not reported")
	state := p.State()
	assert.Equal(t, "API request failed with status: 500 (internal error)", state.Error)
	assert.Equal(t, []weather.Location{kyiv, lviv}, state.Suggestions)
	assert.Equal(t, "Lviv", state.Query)
}

func TestPipeline_StaleSearchResultIsDropped(t *testing.T) {
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	m := metrics.New()

	release := make(chan struct{})
	slowStarted := make(chan struct{})

	api := newFakeAPI()
	api.searchFn = func(_ context.Context, query string) ([]weather.Location, error) {
		if query == "Lv" {
			close(slowStarted)
			<-release
			return []weather.Location{lviv}, nil
		}
		return []weather.Location{kyiv}, nil
	}
	p := newTestPipeline(api, &fakePersistence{}, WithMetrics(m))
	start(t, p)
	defer func() {
		select {
		case <-release:
		default:
			close(release)
		}
	}()

	p.SetQuery("Lv")
	<-slowStarted

	p.SetQuery("Kyiv")
	eventually(t, p, func(s State) bool {
		return s.Phase == PhaseSuggestionsReady && len(s.Suggestions) == 1 && s.Suggestions[0].Name == "Kyiv"
	}, "newer search never applied")

	close(release)
	require.Eventually(t, func() bool {
		return m.CounterValue(metrics.StaleResponsesTotal, "search") == 1
	}, waitFor, tick)

	assert.Equal(t, []weather.Location{kyiv}, p.State().Suggestions)
	assert.Equal(t, []string{"Lv", "Kyiv"}, api.searches())
}

func TestPipeline_SelectFetchesWeather(t *testing.T) {
	release := make(chan struct{})
	api := newFakeAPI()
	api.weatherFn = func(_ context.Context, coords weather.Coordinates) (*weather.Snapshot, error) {
		<-release
		return snapshotFor(coords), nil
	}
	persist := &fakePersistence{}
	p := newTestPipeline(api, persist)
	start(t, p)

	p.Focus()
	p.SetQuery("Kyiv")
	eventually(t, p, func(s State) bool { return s.Phase == PhaseSuggestionsReady }, "no suggestions")

	require.NoError(t, p.SelectIndex(0))

	state := p.State()
	assert.True(t, state.Loading)
	assert.Equal(t, PhaseFetchingWeather, state.Phase)
	assert.False(t, state.Focused)
	require.NotNil(t, state.Coordinates)
	assert.Equal(t, weather.Coordinates{Lat: 50.45, Lon: 30.52}, *state.Coordinates)

	close(release)

	eventually(t, p, func(s State) bool { return !s.Loading }, "fetch never resolved")
	state = p.State()
	assert.Equal(t, PhaseWeatherReady, state.Phase)
	assert.Empty(t, state.Suggestions)
	assert.Empty(t, state.Query)
	assert.Empty(t, state.Error)
	require.NotNil(t, state.Weather)
	assert.Equal(t, 21.7, state.Weather.Temperature)

	require.Eventually(t, func() bool { return len(persist.savedCoords()) == 1 }, waitFor, tick)
	assert.Equal(t, weather.Coordinates{Lat: 50.45, Lon: 30.52}, persist.savedCoords()[0])
	assert.Equal(t, []weather.Coordinates{{Lat: 50.45, Lon: 30.52}}, api.fetches())
}

func TestPipeline_SameCoordinatesFetchAgain(t *testing.T) {
	api := newFakeAPI()
	p := newTestPipeline(api, &fakePersistence{})
	start(t, p)

	p.SelectLocation(kyiv)
	eventually(t, p, func(s State) bool { return s.Phase == PhaseWeatherReady }, "first fetch")

	p.SelectLocation(kyiv)
	require.Eventually(t, func() bool { return len(api.fetches()) == 2 }, waitFor, tick)
	eventually(t, p, func(s State) bool { return !s.Loading }, "second fetch")
}

func TestPipeline_FailedFetchKeepsPreviousWeather(t *testing.T) {
	api := newFakeAPI()
	persist := &fakePersistence{}
	p := newTestPipeline(api, persist)
	start(t, p)

	p.SelectLocation(kyiv)
	eventually(t, p, func(s State) bool { return s.Phase == PhaseWeatherReady }, "first fetch")
	previous := p.State().Weather

	api.mu.Lock()
	api.weatherFn = func(context.Context, weather.Coordinates) (*weather.Snapshot, error) {
		return nil, &weather.APIError{StatusCode: 404, Message: "city not found"}
	}
	api.mu.Unlock()

	p.SetQuery("Lviv")
	eventually(t, p, func(s State) bool { return s.Phase == PhaseSuggestionsReady }, "search")
	p.SelectLocation(lviv)

	eventually(t, p, func(s State) bool { return s.Phase == PhaseError }, "failure not reported")
	state := p.State()
	assert.False(t, state.Loading)
	assert.Equal(t, "API request failed with status: 404 (city not found)", state.Error)
	assert.Equal(t, previous, state.Weather)
	assert.Empty(t, state.Suggestions)
	assert.Empty(t, state.Query)

	time.Sleep(2 * testDebounce)
	assert.Len(t, persist.savedCoords(), 1)
}

func TestPipeline_StaleWeatherResultIsDropped(t *testing.T) {
	release := make(chan struct{})
	slowStarted := make(chan struct{})

	api := newFakeAPI()
	api.weatherFn = func(_ context.Context, coords weather.Coordinates) (*weather.Snapshot, error) {
		if coords == lviv.Coordinates() {
			close(slowStarted)
			<-release
		}
		return snapshotFor(coords), nil
	}
	persist := &fakePersistence{}
	p := newTestPipeline(api, persist)
	start(t, p)

	p.SelectLocation(lviv)
	<-slowStarted
	p.SelectLocation(kyiv)

	eventually(t, p, func(s State) bool { return s.Phase == PhaseWeatherReady }, "newer fetch never applied")
	close(release)

	time.Sleep(5 * testDebounce)
	state := p.State()
	require.NotNil(t, state.Weather)
	assert.Equal(t, kyiv.Coordinates(), state.Weather.Coordinates)
	assert.Equal(t, kyiv.Coordinates(), *state.Coordinates)
	assert.False(t, state.Loading)
	assert.Equal(t, []weather.Coordinates{kyiv.Coordinates()}, persist.savedCoords())
}

func TestPipeline_LoadingStaysForNewerFetch(t *testing.T) {
	releaseKyiv := make(chan struct{})
	api := newFakeAPI()
	api.weatherFn = func(_ context.Context, coords weather.Coordinates) (*weather.Snapshot, error) {
		if coords == kyiv.Coordinates() {
			<-releaseKyiv
		}
		return snapshotFor(coords), nil
	}
	p := newTestPipeline(api, &fakePersistence{})
	start(t, p)

	p.SelectLocation(lviv)
	p.SelectLocation(kyiv)

	require.Eventually(t, func() bool { return len(api.fetches()) == 2 }, waitFor, tick)
	time.Sleep(2 * testDebounce)
	assert.True(t, p.State().Loading)

	close(releaseKyiv)
	eventually(t, p, func(s State) bool { return !s.Loading }, "fetch never resolved")
}

func TestPipeline_StartupRestoresLastCoordinates(t *testing.T) {
	api := newFakeAPI()
	persist := &fakePersistence{stored: &weather.Coordinates{Lat: 50.45, Lon: 30.52}}
	p := newTestPipeline(api, persist)
	start(t, p)

	eventually(t, p, func(s State) bool { return s.Phase == PhaseWeatherReady }, "restore never fetched")
	time.Sleep(5 * testDebounce)

	assert.Equal(t, []weather.Coordinates{{Lat: 50.45, Lon: 30.52}}, api.fetches())
	assert.Empty(t, api.searches())
}

func TestPipeline_RestoreFailuresStaySilent(t *testing.T) {
	tests := []struct {
		name    string
		persist *fakePersistence
		log     string
	}{
		{name: "nothing saved", persist: &fakePersistence{}, log: "No saved location"},
		{name: "unreadable value", persist: &fakePersistence{loadErr: storage.ErrInvalidCoordinates}, log: "Failed to restore last location"},
		{name: "backend down", persist: &fakePersistence{loadErr: errors.New("connection refused")}, log: "Failed to restore last location"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := helpers.NewTestLogger()
			api := newFakeAPI()
			p := newTestPipeline(api, tt.persist, WithLogger(logs.Logger))
			start(t, p)

			require.Eventually(t, func() bool { return logs.ContainsLog(tt.log) }, waitFor, tick)
			time.Sleep(2 * testDebounce)

			state := p.State()
			assert.Empty(t, state.Error)
			assert.Nil(t, state.Coordinates)
			assert.False(t, state.Loading)
			assert.Empty(t, api.fetches())
		})
	}
}

func TestPipeline_PersistFailureIsNotUserVisible(t *testing.T) {
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	m := metrics.New()
	logs := helpers.NewTestLogger()

	api := newFakeAPI()
	p := newTestPipeline(api, &fakePersistence{saveErr: errors.New("disk full")}, WithLogger(logs.Logger), WithMetrics(m))
	start(t, p)

	p.SelectLocation(kyiv)

	eventually(t, p, func(s State) bool { return s.Phase == PhaseWeatherReady }, "fetch never completed")
	require.Eventually(t, func() bool {
		return m.CounterValue(metrics.PersistenceErrorsTotal, "save") == 1
	}, waitFor, tick)

	assert.Empty(t, p.State().Error)
	logs.AssertLogContains(t, "Failed to persist last location")
	logs.AssertLogLevel(t, "error")
}

func TestPipeline_Refresh(t *testing.T) {
	api := newFakeAPI()
	persist := &fakePersistence{stored: &weather.Coordinates{Lat: 50.45, Lon: 30.52}}
	p := newTestPipeline(api, persist)
	start(t, p)

	eventually(t, p, func(s State) bool { return s.Phase == PhaseWeatherReady }, "startup restore")

	select {
	case <-p.Refresh():
	case <-time.After(waitFor):
		t.Fatal("refresh never completed")
	}

	assert.False(t, p.State().Refreshing)
	require.Eventually(t, func() bool { return len(api.fetches()) == 2 }, waitFor, tick)
	assert.Equal(t, 2, persist.loadCount())
	assert.Empty(t, api.searches())
}

func TestPipeline_RefreshFlagClearsOnFailure(t *testing.T) {
	gate := make(chan struct{})
	api := newFakeAPI()
	persist := &fakePersistence{loadErr: errors.New("connection refused")}
	p := newTestPipeline(api, persist)
	start(t, p)

	require.Eventually(t, func() bool { return persist.loadCount() == 1 }, waitFor, tick)

	persist.mu.Lock()
	persist.gate = gate
	persist.mu.Unlock()

	done := p.Refresh()
	eventually(t, p, func(s State) bool { return s.Refreshing }, "refreshing never set")

	close(gate)
	select {
	case <-done:
	case <-time.After(waitFor):
		t.Fatal("refresh never completed")
	}

	eventually(t, p, func(s State) bool { return !s.Refreshing }, "refreshing never cleared")
	assert.Empty(t, p.State().Error)
	assert.Empty(t, api.fetches())
}

func TestPipeline_ResetSuggestions(t *testing.T) {
	api := newFakeAPI()
	p := newTestPipeline(api, &fakePersistence{stored: &weather.Coordinates{Lat: 50.45, Lon: 30.52}})
	start(t, p)

	eventually(t, p, func(s State) bool { return s.Phase == PhaseWeatherReady }, "startup restore")

	p.Focus()
	p.SetQuery("Lviv")
	eventually(t, p, func(s State) bool { return s.Phase == PhaseSuggestionsReady }, "search")

	p.ResetSuggestions()

	eventually(t, p, func(s State) bool { return s.Suggestions == nil }, "suggestions not cleared")
	state := p.State()
	assert.False(t, state.Focused)
	assert.Equal(t, "Lviv", state.Query)
	assert.Equal(t, PhaseWeatherReady, state.Phase)
	require.NotNil(t, state.Coordinates)
	assert.Equal(t, 50.45, state.Coordinates.Lat)
	assert.NotNil(t, state.Weather)
}

func TestPipeline_FocusAndBlur(t *testing.T) {
	p := newTestPipeline(newFakeAPI(), &fakePersistence{})
	start(t, p)

	p.Focus()
	eventually(t, p, func(s State) bool { return s.Focused }, "focus")
	p.Blur()
	eventually(t, p, func(s State) bool { return !s.Focused }, "blur")
}

func TestPipeline_SelectIndexOutOfRange(t *testing.T) {
	api := newFakeAPI()
	p := newTestPipeline(api, &fakePersistence{})
	start(t, p)

	err := p.SelectIndex(0)
	assert.ErrorIs(t, err, ErrNoSuggestion)

	p.SetQuery("Kyiv")
	eventually(t, p, func(s State) bool { return s.Phase == PhaseSuggestionsReady }, "search")

	assert.ErrorIs(t, p.SelectIndex(2), ErrNoSuggestion)
	assert.ErrorIs(t, p.SelectIndex(-1), ErrNoSuggestion)
	assert.Empty(t, api.fetches())
}

func TestPipeline_SubscribeReceivesCopies(t *testing.T) {
	p := newTestPipeline(newFakeAPI(), &fakePersistence{})

	var mu sync.Mutex
	var seen []State
	unsubscribe := p.Subscribe(func(s State) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, s)
	})
	start(t, p)

	p.SetQuery("Kyiv")
	eventually(t, p, func(s State) bool { return s.Phase == PhaseSuggestionsReady }, "search")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) > 0 && seen[len(seen)-1].Phase == PhaseSuggestionsReady
	}, waitFor, tick)

	mu.Lock()
	last := seen[len(seen)-1]
	mu.Unlock()
	last.Suggestions[0].Name = "mutated"
	assert.Equal(t, "Kyiv", p.State().Suggestions[0].Name)

	unsubscribe()
	unsubscribe()
	mu.Lock()
	count := len(seen)
	mu.Unlock()

	p.Focus()
	eventually(t, p, func(s State) bool { return s.Focused }, "focus")
	mu.Lock()
	assert.Equal(t, count, len(seen))
	mu.Unlock()
}

func TestPipeline_StateIsACopy(t *testing.T) {
	p := newTestPipeline(newFakeAPI(), &fakePersistence{})
	start(t, p)

	p.SetQuery("Kyiv")
	eventually(t, p, func(s State) bool { return s.Phase == PhaseSuggestionsReady }, "search")

	state := p.State()
	state.Suggestions[0].Name = "changed"
	state.Suggestions = append(state.Suggestions, lviv)

	assert.Equal(t, []weather.Location{kyiv, lviv}, p.State().Suggestions)
}

func TestPipeline_RunTwice(t *testing.T) {
	p := newTestPipeline(newFakeAPI(), &fakePersistence{})
	start(t, p)

	require.Eventually(t, func() bool { return p.started.Load() }, waitFor, tick)
	assert.ErrorIs(t, p.Run(context.Background()), ErrAlreadyRunning)
}

func TestPipeline_TeardownCancelsDebounce(t *testing.T) {
	api := newFakeAPI()
	p := newTestPipeline(api, &fakePersistence{}, WithDebounce(50*time.Millisecond))
	cancel := start(t, p)

	p.SetQuery("Kyiv")
	eventually(t, p, func(s State) bool { return s.Query == "Kyiv" }, "query")
	cancel()

	select {
	case <-p.Done():
	case <-time.After(waitFor):
		t.Fatal("pipeline did not stop")
	}
	time.Sleep(150 * time.Millisecond)

	assert.Empty(t, api.searches())
}

func TestPipeline_TeardownCancelsInFlightCalls(t *testing.T) {
	started := make(chan struct{})
	api := newFakeAPI()
	api.weatherFn = func(ctx context.Context, _ weather.Coordinates) (*weather.Snapshot, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	p := newTestPipeline(api, &fakePersistence{})
	cancel := start(t, p)

	p.SelectLocation(kyiv)
	<-started
	cancel()

	select {
	case <-p.Done():
	case <-time.After(waitFor):
		t.Fatal("in-flight fetch was not cancelled")
	}
}

func TestPipeline_CallsAfterStop(t *testing.T) {
	p := newTestPipeline(newFakeAPI(), &fakePersistence{})
	cancel := start(t, p)
	cancel()
	<-p.Done()

	p.SetQuery("Kyiv")
	p.ResetSuggestions()
	assert.ErrorIs(t, p.SelectIndex(0), ErrStopped)

	select {
	case <-p.Refresh():
	case <-time.After(waitFor):
		t.Fatal("refresh channel not closed after stop")
	}
}
