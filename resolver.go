package main

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrEmptyDriverID is returned by Resolve when no driver id is given.
var ErrEmptyDriverID = errors.New("driver id is required")

type resolutionRecorder interface {
	recordResolution(ctx context.Context, res Resolution) error
}

// imageResolver turns a driver id into a displayable portrait URL. Lookups go
// to the image source with progressively looser search terms; anything that
// goes wrong ends in a generated placeholder, which is cached like a real hit.
type imageResolver struct {
	source         ImageSource
	cache          *imageCache
	timeout        time.Duration
	placeholderTTL time.Duration
	recorder       resolutionRecorder
	logger         *zap.Logger

	group singleflight.Group
	// inflight tracks ids with a lookup in progress; true marks a lookup
	// invalidated while running, whose result must not be cached.
	inflightMu sync.Mutex
	inflight   map[string]bool
}

type flightResult struct {
	imageURL string
	stale    bool
}

type resolverOption func(*imageResolver)

func withLookupTimeout(d time.Duration) resolverOption {
	return func(r *imageResolver) { r.timeout = d }
}

func withPlaceholderTTL(d time.Duration) resolverOption {
	return func(r *imageResolver) { r.placeholderTTL = d }
}

func withRecorder(rec resolutionRecorder) resolverOption {
	return func(r *imageResolver) { r.recorder = rec }
}

func withLogger(l *zap.Logger) resolverOption {
	return func(r *imageResolver) { r.logger = l }
}

func newImageResolver(source ImageSource, cache *imageCache, opts ...resolverOption) *imageResolver {
	r := &imageResolver{
		source:   source,
		cache:    cache,
		timeout:  8 * time.Second,
		logger:   zap.NewNop(),
		inflight: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the portrait URL for driverID. The only error is
// ErrEmptyDriverID; lookup failures produce a placeholder instead.
func (r *imageResolver) Resolve(ctx context.Context, driverID, displayName string) (string, error) {
	if driverID == "" {
		return "", ErrEmptyDriverID
	}

	if entry, err := r.cache.get(driverID); err == nil {
		return entry.imageURL, nil
	}

	// A flight invalidated mid-way is joined again once so callers see a
	// lookup that started after the invalidation.
	var res flightResult
	for attempt := 0; attempt < 2; attempt++ {
		ch := r.group.DoChan(driverID, func() (any, error) {
			// An earlier flight may have filled the cache after our miss above.
			if entry, err := r.cache.get(driverID); err == nil {
				return flightResult{imageURL: entry.imageURL}, nil
			}
			r.markInFlight(driverID)
			imageURL := r.lookup(context.WithoutCancel(ctx), driverID, displayName)
			return flightResult{imageURL: imageURL, stale: r.clearInFlight(driverID)}, nil
		})

		select {
		case v := <-ch:
			res = v.Val.(flightResult)
		case <-ctx.Done():
			r.logger.Debug("caller gave up waiting for portrait",
				zap.String("driver_id", driverID), zap.Error(ctx.Err()))
			return placeholderImage(driverID), nil
		}
		if !res.stale {
			break
		}
	}
	return res.imageURL, nil
}

// Invalidate drops the cached portrait so the next Resolve looks it up again.
// A lookup running for driverID keeps going but its result is not cached.
// It reports whether there was anything to invalidate.
func (r *imageResolver) Invalidate(driverID string) bool {
	r.inflightMu.Lock()
	_, running := r.inflight[driverID]
	if running {
		r.inflight[driverID] = true
	}
	r.inflightMu.Unlock()

	cached := r.cache.invalidate(driverID)
	return running || cached
}

// InFlight reports how many driver ids are currently being looked up.
func (r *imageResolver) InFlight() int {
	r.inflightMu.Lock()
	defer r.inflightMu.Unlock()
	return len(r.inflight)
}

func (r *imageResolver) markInFlight(driverID string) {
	r.inflightMu.Lock()
	r.inflight[driverID] = false
	r.inflightMu.Unlock()
}

// clearInFlight ends the lookup for driverID and reports whether it was
// invalidated while running.
func (r *imageResolver) clearInFlight(driverID string) bool {
	r.inflightMu.Lock()
	stale := r.inflight[driverID]
	delete(r.inflight, driverID)
	r.inflightMu.Unlock()
	return stale
}

// store caches a lookup result unless the lookup was invalidated meanwhile.
func (r *imageResolver) store(driverID, imageURL string, ttl time.Duration) {
	r.inflightMu.Lock()
	defer r.inflightMu.Unlock()
	if r.inflight[driverID] {
		return
	}
	r.cache.set(driverID, imageURL, ttl)
}

func (r *imageResolver) lookup(ctx context.Context, driverID, displayName string) string {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	for _, term := range searchTerms(driverID, displayName) {
		imageURL, err := r.source.Lookup(ctx, term)
		if err == nil && imageURL != "" {
			r.store(driverID, imageURL, 0)
			r.record(ctx, Resolution{DriverID: driverID, ImageURL: imageURL, SearchTerm: term})
			return imageURL
		}
		if err == nil || errors.Is(err, ErrNoImage) {
			continue
		}
		r.logger.Warn("portrait lookup failed",
			zap.String("driver_id", driverID),
			zap.String("term", term),
			zap.Error(err))
		break
	}

	placeholder := placeholderImage(driverID)
	r.store(driverID, placeholder, r.placeholderTTL)
	r.record(ctx, Resolution{DriverID: driverID, ImageURL: placeholder, Placeholder: true})
	return placeholder
}

func (r *imageResolver) record(ctx context.Context, res Resolution) {
	if r.recorder == nil {
		return
	}
	res.ResolvedAt = time.Now().UTC()
	// The lookup deadline may already be spent; the log write gets its own.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := r.recorder.recordResolution(ctx, res); err != nil {
		r.logger.Warn("record resolution", zap.String("driver_id", res.DriverID), zap.Error(err))
	}
}

// displayNameFromID turns "max_verstappen" into "Max Verstappen".
func displayNameFromID(driverID string) string {
	return cases.Title(language.English).String(strings.Join(strings.FieldsFunc(driverID, func(r rune) bool {
		return r == '_'
	}), " "))
}

// searchTerms lists lookup queries from most to least specific.
func searchTerms(driverID, displayName string) []string {
	name := strings.TrimSpace(displayName)
	if name == "" {
		name = displayNameFromID(driverID)
	}
	if name == "" {
		return nil
	}
	return []string{
		name + " Formula One driver",
		name + " racing driver",
		name,
	}
}
