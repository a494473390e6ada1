package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/couchcryptid/weather-now/internal/domain"
	"github.com/couchcryptid/weather-now/internal/observability"
	"github.com/google/uuid"
)

// Entry points, also used as the "entry" metric label.
const (
	EntryCity     = "city"
	EntryLocation = "location"
)

// User-facing messages.
const (
	msgCityNotFound     = "City not found"
	msgFetchFailed      = "Failed to fetch weather data"
	msgLocationFailed   = "Failed to fetch weather for your location"
	msgUnsupported      = "Geolocation is not supported on this host"
	msgPermissionDenied = "Unable to access your location"
)

// ErrSuperseded is returned by a search that succeeded after a newer search
// had started. Its snapshot was dropped.
var ErrSuperseded = errors.New("search superseded by a newer search")

// State is the widget state observed by presentation code. Snapshot is nil
// until the first successful search and is never mutated in place.
type State struct {
	Snapshot  *domain.WeatherSnapshot `json:"snapshot"`
	IsLoading bool                    `json:"isLoading"`
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLocator enables current-location searches.
func WithLocator(l domain.Locator) Option {
	return func(o *Orchestrator) { o.locator = l }
}

// WithNotifier sets the collaborator that receives success and error notices.
func WithNotifier(n domain.Notifier) Option {
	return func(o *Orchestrator) { o.notifier = n }
}

// WithHourResolver replaces the default wall-clock hour index.
func WithHourResolver(r domain.HourResolver) Option {
	return func(o *Orchestrator) { o.hours = r }
}

// Orchestrator runs searches and owns the live snapshot and loading flag.
//
// Overlapping searches are not cancelled. Each search takes a monotonic token
// and only the most recently started search may publish its snapshot or emit
// notices; older results are dropped when they settle.
type Orchestrator struct {
	geocoder domain.Geocoder
	forecast domain.ForecastProvider
	locator  domain.Locator
	notifier domain.Notifier
	hours    domain.HourResolver
	logger   *slog.Logger
	metrics  *observability.Metrics

	// emitMu serializes mutation plus subscriber delivery so subscribers see
	// states in mutation order. mu guards the fields below.
	emitMu   sync.Mutex
	mu       sync.Mutex
	state    State
	inFlight int
	latest   uint64
	subs     map[int]func(State)
	nextSub  int
}

// New creates an Orchestrator. Without WithLocator, current-location searches
// fail as unsupported; without WithNotifier, notices are only logged.
func New(geocoder domain.Geocoder, forecast domain.ForecastProvider, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		geocoder: geocoder,
		forecast: forecast,
		hours:    domain.WallClockHour{},
		logger:   logger,
		metrics:  metrics,
		subs:     make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.notifier == nil {
		o.notifier = NewLogNotifier(logger)
	}
	return o
}

// State returns the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Subscribe registers fn to receive every state change and returns a function
// that removes it. fn runs synchronously and must not start a search.
func (o *Orchestrator) Subscribe(fn func(State)) (unsubscribe func()) {
	o.mu.Lock()
	id := o.nextSub
	o.nextSub++
	o.subs[id] = fn
	o.mu.Unlock()

	return func() {
		o.mu.Lock()
		delete(o.subs, id)
		o.mu.Unlock()
	}
}

// CheckReadiness returns nil once a snapshot is live.
func (o *Orchestrator) CheckReadiness(_ context.Context) error {
	if o.State().Snapshot == nil {
		return errors.New("no weather snapshot published yet")
	}
	return nil
}

// SearchByCity resolves city by name and publishes its current conditions.
// The returned error is also reported to the notifier; the previous snapshot
// is kept on failure.
func (o *Orchestrator) SearchByCity(ctx context.Context, city string) error {
	s := o.begin(EntryCity)
	city = strings.TrimSpace(city)
	s.logger.Info("search started", "city", city)

	loc, err := o.resolveByCity(ctx, city)
	if err != nil {
		return o.settle(ctx, s, nil, err)
	}
	snap, err := o.fetchSnapshot(ctx, loc, msgFetchFailed)
	return o.settle(ctx, s, snap, err)
}

// SearchByCurrentLocation resolves the host position and publishes its
// current conditions. Loading is entered before the capability check so
// every path, including an unsupported host, enters and leaves loading.
func (o *Orchestrator) SearchByCurrentLocation(ctx context.Context) error {
	s := o.begin(EntryLocation)
	s.logger.Info("search started")

	loc, err := o.resolveByCurrentPosition(ctx)
	if err != nil {
		return o.settle(ctx, s, nil, err)
	}
	snap, err := o.fetchSnapshot(ctx, loc, msgLocationFailed)
	return o.settle(ctx, s, snap, err)
}

func (o *Orchestrator) resolveByCity(ctx context.Context, city string) (domain.Location, error) {
	if city == "" {
		return domain.Location{}, domain.NotFound(msgCityNotFound)
	}

	match, err := o.geocoder.ForwardGeocode(ctx, city)
	switch {
	case errors.Is(err, domain.ErrNoMatch):
		return domain.Location{}, domain.NotFound(msgCityNotFound)
	case err != nil:
		return domain.Location{}, domain.Network(msgFetchFailed, fmt.Errorf("forward geocode %q: %w", city, err))
	}
	return domain.LocationFromForward(match), nil
}

func (o *Orchestrator) resolveByCurrentPosition(ctx context.Context) (domain.Location, error) {
	if o.locator == nil {
		return domain.Location{}, domain.Unsupported(msgUnsupported)
	}

	pos, err := o.locator.CurrentPosition(ctx)
	if err != nil {
		return domain.Location{}, domain.Permission(msgPermissionDenied, err)
	}

	match, err := o.geocoder.ReverseGeocode(ctx, pos.Lat, pos.Lon)
	switch {
	case errors.Is(err, domain.ErrNoMatch):
		o.logger.Debug("reverse geocoding found nothing, using placeholder name", "lat", pos.Lat, "lon", pos.Lon)
		return domain.LocationFromReverse(pos, nil), nil
	case err != nil:
		return domain.Location{}, domain.Network(msgLocationFailed, fmt.Errorf("reverse geocode: %w", err))
	}
	return domain.LocationFromReverse(pos, &match), nil
}

func (o *Orchestrator) fetchSnapshot(ctx context.Context, loc domain.Location, failMsg string) (*domain.WeatherSnapshot, error) {
	f, err := o.forecast.CurrentConditions(ctx, loc.Geo.Lat, loc.Geo.Lon)
	if err != nil {
		return nil, domain.Network(failMsg, fmt.Errorf("fetch conditions: %w", err))
	}
	snap := domain.Normalize(f, loc, o.hours.ResolveHour(f))
	return &snap, nil
}

// search carries per-search bookkeeping from begin to settle.
type search struct {
	id     string
	token  uint64
	entry  string
	start  time.Time
	logger *slog.Logger
}

// begin enters the loading state and issues the search token.
func (o *Orchestrator) begin(entry string) search {
	s := search{
		id:    uuid.NewString(),
		entry: entry,
		start: time.Now(),
	}
	s.logger = o.logger.With("search_id", s.id, "entry", entry)

	o.mutate(func(st *State) {
		o.latest++
		s.token = o.latest
		o.inFlight++
		st.IsLoading = true
	})
	o.metrics.SearchesRunning.Inc()
	return s
}

// settle leaves the loading state, publishes snap if s is still the newest
// search, and reports the outcome.
func (o *Orchestrator) settle(ctx context.Context, s search, snap *domain.WeatherSnapshot, err error) error {
	var stale bool
	o.mutate(func(st *State) {
		o.inFlight--
		stale = s.token != o.latest
		if !stale && err == nil {
			st.Snapshot = snap
		}
		st.IsLoading = o.inFlight > 0
	})
	o.metrics.SearchesRunning.Dec()
	o.metrics.SearchDuration.WithLabelValues(s.entry).Observe(time.Since(s.start).Seconds())

	if stale {
		o.metrics.Searches.WithLabelValues(s.entry, "stale").Inc()
		s.logger.Debug("search superseded, result dropped", "error", err)
		if err == nil {
			return ErrSuperseded
		}
		return err
	}

	if err != nil {
		o.metrics.Searches.WithLabelValues(s.entry, string(domain.KindOf(err))).Inc()
		s.logger.Warn("search failed", "error", err)
		o.notify(ctx, s, errorNotice(err))
		return err
	}

	o.metrics.Searches.WithLabelValues(s.entry, "success").Inc()
	s.logger.Info("search complete", "city", snap.City, "country", snap.Country, "condition", snap.Condition)
	o.notify(ctx, s, successNotice(s.entry, snap))
	return nil
}

// mutate is the single mutation point for state. Subscribers are called
// after the change, in mutation order.
func (o *Orchestrator) mutate(fn func(*State)) {
	o.emitMu.Lock()
	defer o.emitMu.Unlock()

	o.mu.Lock()
	fn(&o.state)
	st := o.state
	subs := make([]func(State), 0, len(o.subs))
	for _, sub := range o.subs {
		subs = append(subs, sub)
	}
	o.mu.Unlock()

	for _, sub := range subs {
		sub(st)
	}
}

func (o *Orchestrator) notify(ctx context.Context, s search, n domain.Notice) {
	n.SearchID = s.id
	n.EmittedAt = domain.Now()
	o.metrics.Notices.WithLabelValues(string(n.Kind)).Inc()
	if err := o.notifier.Notify(ctx, n); err != nil {
		s.logger.Warn("notify failed", "error", err)
	}
}

func successNotice(entry string, snap *domain.WeatherSnapshot) domain.Notice {
	n := domain.Notice{
		Kind:    domain.NoticeSuccess,
		City:    snap.City,
		Country: snap.Country,
	}
	if entry == EntryLocation {
		n.Title = "Location Weather"
		n.Message = "Found weather data for your current location"
		return n
	}
	n.Title = "Weather Updated"
	n.Message = fmt.Sprintf("Found weather data for %s, %s", snap.City, snap.Country)
	return n
}

func errorNotice(err error) domain.Notice {
	kind := domain.KindOf(err)
	title := "Error"
	switch kind {
	case domain.KindUnsupported:
		title = "Geolocation Error"
	case domain.KindPermission:
		title = "Location Error"
	}
	return domain.Notice{
		Kind:      domain.NoticeError,
		Title:     title,
		Message:   domain.UserMessage(err),
		ErrorKind: kind,
	}
}
