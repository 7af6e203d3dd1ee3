package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultResolutionLimit = 50
	maxResolutionLimit     = 500
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *api) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"inflight": a.images.InFlight(),
	})
}

func (a *api) getDriversHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	drivers, err := a.f1.currentDrivers(ctx, a.now())
	if err != nil {
		a.logger.Error("fetch drivers", zap.String("request_id", GetRequestID(ctx)), zap.Error(err))
		http.Error(w, "upstream F1 API unavailable", http.StatusBadGateway)
		return
	}

	// Resolve never fails for a non-empty id, so the group only bounds parallelism.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(a.parallel, 1))
	for i := range drivers {
		g.Go(func() error {
			url, err := a.images.Resolve(gctx, drivers[i].DriverID, drivers[i].DisplayName)
			if err != nil {
				return err
			}
			drivers[i].ImageURL = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, drivers)
}

func (a *api) getDriverImageHandler(w http.ResponseWriter, r *http.Request) {
	driverID := r.PathValue("id")

	url, err := a.images.Resolve(r.Context(), driverID, r.URL.Query().Get("name"))
	if errors.Is(err, ErrEmptyDriverID) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"driverId":    driverID,
		"imageUrl":    url,
		"placeholder": isPlaceholder(url),
	})
}

func (a *api) deleteDriverImageHandler(w http.ResponseWriter, r *http.Request) {
	driverID := r.PathValue("id")

	if !a.images.Invalidate(driverID) {
		http.Error(w, "driver image not cached", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *api) getRacesHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := a.now()

	races, err := a.f1.currentRaces(ctx, now)
	if err != nil {
		a.logger.Error("fetch races", zap.String("request_id", GetRequestID(ctx)), zap.Error(err))
		http.Error(w, "upstream F1 API unavailable", http.StatusBadGateway)
		return
	}

	completed, upcoming := classifyRaces(races, now)
	writeJSON(w, http.StatusOK, map[string]any{
		"completed": completed,
		"upcoming":  upcoming,
	})
}

func (a *api) getResolutionsHandler(w http.ResponseWriter, r *http.Request) {
	if a.store == nil {
		http.Error(w, "resolution log is not configured", http.StatusServiceUnavailable)
		return
	}

	limit := defaultResolutionLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxResolutionLimit)
	}

	resolutions, err := a.store.listResolutions(r.Context(), limit)
	if err != nil {
		a.logger.Error("list resolutions", zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, resolutions)
}
