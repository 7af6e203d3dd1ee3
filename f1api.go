package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// f1Client reads the public F1 REST API. Only the fields this service needs
// are decoded, and every record goes through a normalize function.
type f1Client struct {
	baseURL string
	client  *http.Client
}

func newF1Client(baseURL string, client *http.Client) *f1Client {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &f1Client{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// upstreamDriver covers the field spellings seen across F1 API versions.
type upstreamDriver struct {
	DriverID    string `json:"driverId"`
	Name        string `json:"name"`
	FirstName   string `json:"first_name"`
	Surname     string `json:"surname"`
	LastName    string `json:"last_name"`
	Nationality string `json:"nationality"`
	Birthday    string `json:"birthday"`
	DateOfBirth string `json:"date_of_birth"`
	Number      *int   `json:"number"`
	ShortName   string `json:"shortName"`
	TeamID      string `json:"teamId"`
}

type upstreamRace struct {
	RaceID   string `json:"raceId"`
	RaceName string `json:"raceName"`
	Round    int    `json:"round"`
	Schedule struct {
		Race struct {
			Date string `json:"date"`
			Time string `json:"time"`
		} `json:"race"`
	} `json:"schedule"`
	Circuit struct {
		CircuitID   string `json:"circuitId"`
		CircuitName string `json:"circuitName"`
		City        string `json:"city"`
		Country     string `json:"country"`
	} `json:"circuit"`
}

func (c *f1Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// currentDrivers fetches and normalizes the current season's drivers
func (c *f1Client) currentDrivers(ctx context.Context, now time.Time) ([]Driver, error) {
	var body struct {
		Drivers []upstreamDriver `json:"drivers"`
	}
	if err := c.get(ctx, "/current/drivers", &body); err != nil {
		return nil, err
	}

	drivers := make([]Driver, 0, len(body.Drivers))
	for _, u := range body.Drivers {
		d, ok := normalizeDriver(u, now)
		if !ok {
			continue
		}
		drivers = append(drivers, d)
	}
	return drivers, nil
}

// currentRaces fetches and normalizes the current season's calendar
func (c *f1Client) currentRaces(ctx context.Context, now time.Time) ([]Race, error) {
	var body struct {
		Races []upstreamRace `json:"races"`
	}
	if err := c.get(ctx, "/current", &body); err != nil {
		return nil, err
	}

	races := make([]Race, 0, len(body.Races))
	for _, u := range body.Races {
		r, ok := normalizeRace(u, now)
		if !ok {
			continue
		}
		races = append(races, r)
	}
	return races, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// normalizeDriver maps an upstream record to a Driver. Records without a
// driver id are dropped.
func normalizeDriver(u upstreamDriver, now time.Time) (Driver, bool) {
	id := strings.TrimSpace(u.DriverID)
	if id == "" {
		return Driver{}, false
	}

	name := strings.TrimSpace(firstNonEmpty(u.Name, u.FirstName) + " " + firstNonEmpty(u.Surname, u.LastName))
	if name == "" {
		name = displayNameFromID(id)
	}

	d := Driver{
		DriverRef:   DriverRef{DriverID: id, DisplayName: name},
		ShortName:   u.ShortName,
		Nationality: u.Nationality,
		TeamID:      u.TeamID,
		Team:        teamInfo(u.TeamID),
	}
	if u.Number != nil {
		d.Number = *u.Number
	}
	if birth, err := parseBirthDate(firstNonEmpty(u.Birthday, u.DateOfBirth)); err == nil {
		d.BirthDate = &birth
		d.Age = ageAt(birth, now)
	}
	return d, true
}

// normalizeRace maps an upstream record to a Race. Records without an id or
// a parseable date are dropped.
func normalizeRace(u upstreamRace, now time.Time) (Race, bool) {
	if u.RaceID == "" {
		return Race{}, false
	}
	date, err := parseRaceTime(u.Schedule.Race.Date, u.Schedule.Race.Time)
	if err != nil {
		return Race{}, false
	}
	return Race{
		ID:    u.RaceID,
		Name:  u.RaceName,
		Round: u.Round,
		Circuit: Circuit{
			ID:      u.Circuit.CircuitID,
			Name:    u.Circuit.CircuitName,
			City:    u.Circuit.City,
			Country: u.Circuit.Country,
		},
		Date:      date,
		Completed: date.Before(now),
	}, true
}

var birthDateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	time.RFC3339,
}

// parseBirthDate accepts ISO dates, day-first slash dates and RFC 3339 timestamps.
func parseBirthDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range birthDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func parseRaceTime(date, clock string) (time.Time, error) {
	day, err := time.Parse("2006-01-02", strings.TrimSpace(date))
	if err != nil {
		return time.Time{}, fmt.Errorf("race date %q: %w", date, err)
	}
	clock = strings.TrimSpace(clock)
	if clock == "" {
		return day, nil
	}
	if t, err := time.Parse(time.RFC3339, day.Format("2006-01-02")+"T"+clock); err == nil {
		return t.UTC(), nil
	}
	return day, nil
}

// ageAt counts the full years between birth and now.
func ageAt(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

// classifyRaces splits races into completed and upcoming, each in date order.
func classifyRaces(races []Race, now time.Time) (completed, upcoming []Race) {
	completed, upcoming = []Race{}, []Race{}
	for _, r := range races {
		r.Completed = r.Date.Before(now)
		if r.Completed {
			completed = append(completed, r)
		} else {
			upcoming = append(upcoming, r)
		}
	}
	byDate := func(rs []Race) func(i, j int) bool {
		return func(i, j int) bool { return rs[i].Date.Before(rs[j].Date) }
	}
	sort.SliceStable(completed, byDate(completed))
	sort.SliceStable(upcoming, byDate(upcoming))
	return completed, upcoming
}

// TeamInfo is display metadata for a constructor.
type TeamInfo struct {
	ID    string `json:"teamId,omitempty"`
	Name  string `json:"name,omitempty"`
	Color string `json:"color,omitempty"`
}

var teams = map[string]TeamInfo{
	"red_bull":     {Name: "Red Bull Racing", Color: "#3671c6"},
	"ferrari":      {Name: "Ferrari", Color: "#e8002d"},
	"mercedes":     {Name: "Mercedes", Color: "#27f4d2"},
	"mclaren":      {Name: "McLaren", Color: "#ff8000"},
	"aston_martin": {Name: "Aston Martin", Color: "#229971"},
	"alpine":       {Name: "Alpine", Color: "#0093cc"},
	"williams":     {Name: "Williams", Color: "#64c4ff"},
	"rb":           {Name: "Racing Bulls", Color: "#6692ff"},
	"sauber":       {Name: "Kick Sauber", Color: "#52e252"},
	"haas":         {Name: "Haas F1 Team", Color: "#b6babd"},
}

const neutralTeamColor = "#9e9e9e"

// teamInfo looks up display metadata for a team id. Unknown ids get a
// title-cased name and a neutral color.
func teamInfo(teamID string) TeamInfo {
	if teamID == "" {
		return TeamInfo{}
	}
	if t, ok := teams[teamID]; ok {
		t.ID = teamID
		return t
	}
	name := cases.Title(language.English).String(strings.ReplaceAll(teamID, "_", " "))
	return TeamInfo{ID: teamID, Name: name, Color: neutralTeamColor}
}
