package dashboard

import (
	"fmt"
	"sort"
	"strings"

	"nba_ytd/boxscores/internal/models"
	"nba_ytd/boxscores/internal/storage"
)

// Supported season-total metrics
const (
	MetricPoints   = "PTS"
	MetricRebounds = "REB"
	MetricAssists  = "AST"
)

var metricNames = []string{MetricPoints, MetricRebounds, MetricAssists}

// Row is one box score line with its derived shooting percentages.
// A percentage is nil when the player had no attempts.
type Row struct {
	*models.BoxScoreRow
	FGPct    *float64
	ThreePct *float64
}

// GameOption identifies a game for selection; Value is "MM/DD/YYYY,MATCHUP"
type GameOption struct {
	Value   string `json:"value"`
	Label   string `json:"label"`
	Date    string `json:"date"`
	Matchup string `json:"matchup"`
}

// Dataset is the box score data of one team, built once and never mutated.
// Views read it concurrently without locking.
type Dataset struct {
	rows     []Row
	players  []string
	games    []GameOption
	byPlayer map[string][]int
	byGame   map[string][]int
}

// Load reads a box score file into a Dataset
func Load(path string) (*Dataset, error) {
	rows, err := storage.ReadBoxScores(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	return NewDataset(rows), nil
}

// NewDataset builds a Dataset sorted by date, then player
func NewDataset(rows []*models.BoxScoreRow) *Dataset {
	d := &Dataset{
		rows:     make([]Row, 0, len(rows)),
		byPlayer: make(map[string][]int),
		byGame:   make(map[string][]int),
	}

	for _, r := range rows {
		row := Row{BoxScoreRow: r}
		if pct := r.FieldGoalPct(); pct.Valid {
			v := pct.Float64
			row.FGPct = &v
		}
		if pct := r.ThreePointPct(); pct.Valid {
			v := pct.Float64
			row.ThreePct = &v
		}
		d.rows = append(d.rows, row)
	}

	sort.SliceStable(d.rows, func(i, j int) bool {
		a, b := d.rows[i], d.rows[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.Player < b.Player
	})

	for i, r := range d.rows {
		if _, ok := d.byPlayer[r.Player]; !ok {
			d.players = append(d.players, r.Player)
		}
		d.byPlayer[r.Player] = append(d.byPlayer[r.Player], i)

		key := gameKey(r.DateString(), r.Matchup)
		if _, ok := d.byGame[key]; !ok {
			d.games = append(d.games, GameOption{
				Value:   key,
				Label:   r.DateString() + " " + r.Matchup,
				Date:    r.DateString(),
				Matchup: r.Matchup,
			})
		}
		d.byGame[key] = append(d.byGame[key], i)
	}
	sort.Strings(d.players)

	return d
}

// Len returns the number of rows
func (d *Dataset) Len() int { return len(d.rows) }

// Players returns the sorted unique player names
func (d *Dataset) Players() []string {
	return append([]string(nil), d.players...)
}

// Games returns the unique games in date order
func (d *Dataset) Games() []GameOption {
	return append([]GameOption(nil), d.games...)
}

// Metrics returns the metrics SeasonTotalsChart accepts
func (d *Dataset) Metrics() []string {
	return append([]string(nil), metricNames...)
}

// HasPlayer reports whether the player has any rows
func (d *Dataset) HasPlayer(player string) bool {
	_, ok := d.byPlayer[player]
	return ok
}

func (d *Dataset) playerRows(player string) []Row {
	idx := d.byPlayer[player]
	out := make([]Row, len(idx))
	for i, j := range idx {
		out[i] = d.rows[j]
	}
	return out
}

func (d *Dataset) gameRows(game string) []Row {
	date, matchup, ok := strings.Cut(game, ",")
	if !ok {
		return nil
	}
	idx := d.byGame[gameKey(strings.TrimSpace(date), strings.TrimSpace(matchup))]
	out := make([]Row, len(idx))
	for i, j := range idx {
		out[i] = d.rows[j]
	}
	return out
}

func gameKey(date, matchup string) string {
	return date + "," + matchup
}
