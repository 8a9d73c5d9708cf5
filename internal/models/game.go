package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrSchema marks a record that does not match the expected shape.
// It is a hard stop for that record: callers propagate it instead of dropping the row.
var ErrSchema = errors.New("schema error")

// DateLayout is the calendar-date representation used in persisted files
const DateLayout = "01/02/2006"

// Result is the win/loss outcome of a game for the tracked team
type Result string

const (
	ResultWin  Result = "W"
	ResultLoss Result = "L"
)

// ParseResult validates a provider or persisted W/L value
func ParseResult(s string) (Result, error) {
	switch Result(strings.ToUpper(strings.TrimSpace(s))) {
	case ResultWin:
		return ResultWin, nil
	case ResultLoss:
		return ResultLoss, nil
	}
	return "", fmt.Errorf("%w: invalid win/loss value %q", ErrSchema, s)
}

// GameRecord represents one game in the tracked team's season game log
type GameRecord struct {
	GameID  string // Opaque; may carry leading zeros ("0022000123")
	Date    time.Time
	Season  string
	Matchup string // "MIN vs. DET", "MIN @ LAL"
	WL      Result
}

// DateString returns the persisted MM/DD/YYYY form of the game date
func (g *GameRecord) DateString() string {
	return g.Date.Format(DateLayout)
}

// GameLogInput is one row of the provider's team game log result set
type GameLogInput struct {
	TeamID   int     `json:"Team_ID"`
	GameID   string  `json:"Game_ID"`
	GameDate string  `json:"GAME_DATE"` // "MAR 15, 2021"
	Matchup  string  `json:"MATCHUP"`
	WL       *string `json:"WL"`
}

// ToGameRecord converts a provider game log row into a GameRecord.
// The season label is not part of the provider row and is supplied by the caller.
func (gi *GameLogInput) ToGameRecord(season string) (*GameRecord, error) {
	if strings.TrimSpace(gi.GameID) == "" {
		return nil, fmt.Errorf("%w: game log row without game id", ErrSchema)
	}

	date, err := ParseProviderDate(gi.GameDate)
	if err != nil {
		return nil, fmt.Errorf("game %s: %w", gi.GameID, err)
	}

	if gi.WL == nil {
		return nil, fmt.Errorf("%w: game %s has no result", ErrSchema, gi.GameID)
	}
	wl, err := ParseResult(*gi.WL)
	if err != nil {
		return nil, fmt.Errorf("game %s: %w", gi.GameID, err)
	}

	return &GameRecord{
		GameID:  gi.GameID,
		Date:    date,
		Season:  season,
		Matchup: gi.Matchup,
		WL:      wl,
	}, nil
}

// providerDateLayouts lists the date shapes the provider has been seen to emit
var providerDateLayouts = []string{
	"Jan 02, 2006",
	"Jan 2, 2006",
	"2006-01-02T15:04:05",
	"2006-01-02",
	DateLayout,
}

// ParseProviderDate parses a provider game date into a calendar date (UTC midnight).
// Month names match case-insensitively, so "MAR 15, 2021" is accepted.
func ParseProviderDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range providerDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable game date %q", ErrSchema, s)
}
