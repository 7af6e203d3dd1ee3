package main

import (
	"time"

	"go.uber.org/zap"
)

// DriverRef identifies a driver. DriverID is the stable key, DisplayName is
// only used to build image search queries.
type DriverRef struct {
	DriverID    string `json:"driverId"`
	DisplayName string `json:"displayName"`
}

// Driver is the normalized view of an upstream driver record.
type Driver struct {
	DriverRef
	Number      int        `json:"number,omitempty"`
	ShortName   string     `json:"shortName,omitempty"`
	Nationality string     `json:"nationality,omitempty"`
	TeamID      string     `json:"teamId,omitempty"`
	Team        TeamInfo   `json:"team"`
	BirthDate   *time.Time `json:"birthDate,omitempty"`
	Age         int        `json:"age,omitempty"`
	ImageURL    string     `json:"imageUrl,omitempty"`
}

// Circuit is the normalized circuit attached to a race.
type Circuit struct {
	ID      string `json:"circuitId"`
	Name    string `json:"name"`
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
}

// Race is the normalized view of an upstream race record.
type Race struct {
	ID        string    `json:"raceId"`
	Name      string    `json:"name"`
	Round     int       `json:"round"`
	Circuit   Circuit   `json:"circuit"`
	Date      time.Time `json:"date"`
	Completed bool      `json:"completed"`
}

// Resolution is one outcome of a portrait resolution.
type Resolution struct {
	DriverID    string    `json:"driverId"`
	ImageURL    string    `json:"imageUrl"`
	Placeholder bool      `json:"placeholder"`
	SearchTerm  string    `json:"searchTerm,omitempty"`
	ResolvedAt  time.Time `json:"resolvedAt"`
}

// api represents the API server with its upstream clients and resolver
type api struct {
	addr     string
	f1       *f1Client
	images   *imageResolver
	store    *resolutionStore // nil when no database is configured
	logger   *zap.Logger
	clock    func() time.Time
	parallel int
}

func (a *api) now() time.Time {
	if a.clock != nil {
		return a.clock()
	}
	return time.Now()
}
