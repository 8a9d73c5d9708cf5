package models

import (
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// BoxScoreRow represents one player's line in one game for the tracked team
type BoxScoreRow struct {
	// GameID is carried in memory for keyed sinks; it is not a persisted column
	GameID string

	Player  string
	Team    string // Team abbreviation
	Date    time.Time
	Matchup string
	WL      Result
	Min     int

	// Counting stats
	Pts       int
	FGM       int
	FGA       int
	FG3M      int
	FG3A      int
	FTM       int
	FTA       int
	OReb      int
	DReb      int
	Reb       int
	Ast       int
	Stl       int
	Blk       int
	Tov       int
	PF        int
	PlusMinus int
}

// DateString returns the persisted MM/DD/YYYY form of the game date
func (r *BoxScoreRow) DateString() string {
	return r.Date.Format(DateLayout)
}

// FieldGoalPct returns FGM/FGA, invalid when there were no attempts
func (r *BoxScoreRow) FieldGoalPct() sql.NullFloat64 {
	return ratio(r.FGM, r.FGA)
}

// ThreePointPct returns 3PM/3PA, invalid when there were no attempts
func (r *BoxScoreRow) ThreePointPct() sql.NullFloat64 {
	return ratio(r.FG3M, r.FG3A)
}

func ratio(made, attempted int) sql.NullFloat64 {
	if attempted == 0 {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: float64(made) / float64(attempted), Valid: true}
}

// PlayerStatsInput is one row of the provider's traditional box score PlayerStats set.
// Numeric fields are nullable because the provider sends null for DNP rows.
type PlayerStatsInput struct {
	GameID           string   `json:"GAME_ID"`
	TeamID           int      `json:"TEAM_ID"`
	TeamAbbreviation string   `json:"TEAM_ABBREVIATION"`
	TeamCity         string   `json:"TEAM_CITY"`
	PlayerID         int      `json:"PLAYER_ID"`
	PlayerName       string   `json:"PLAYER_NAME"`
	StartPosition    string   `json:"START_POSITION"`
	Comment          string   `json:"COMMENT"`
	Min              *string  `json:"MIN"` // "23:05"
	FGM              *float64 `json:"FGM"`
	FGA              *float64 `json:"FGA"`
	FGPct            *float64 `json:"FG_PCT"`
	FG3M             *float64 `json:"FG3M"`
	FG3A             *float64 `json:"FG3A"`
	FG3Pct           *float64 `json:"FG3_PCT"`
	FTM              *float64 `json:"FTM"`
	FTA              *float64 `json:"FTA"`
	FTPct            *float64 `json:"FT_PCT"`
	OReb             *float64 `json:"OREB"`
	DReb             *float64 `json:"DREB"`
	Reb              *float64 `json:"REB"`
	Ast              *float64 `json:"AST"`
	Stl              *float64 `json:"STL"`
	Blk              *float64 `json:"BLK"`
	TO               *float64 `json:"TO"`
	PF               *float64 `json:"PF"`
	Pts              *float64 `json:"PTS"`
	PlusMinus        *float64 `json:"PLUS_MINUS"`
}

// PlayedFor reports whether the row belongs to the given team and has recorded minutes
func (p *PlayerStatsInput) PlayedFor(teamID int) bool {
	return p.TeamID == teamID && p.Min != nil && strings.TrimSpace(*p.Min) != ""
}

// ToBoxScoreRow converts a provider row into the persisted schema, joining the
// game's date, matchup and result. Provider ids, city, start position, comment
// and provider percentages are dropped.
func (p *PlayerStatsInput) ToBoxScoreRow(game *GameRecord) (*BoxScoreRow, error) {
	if p.Min == nil {
		return nil, fmt.Errorf("%w: %s in game %s has no minutes", ErrSchema, p.PlayerName, p.GameID)
	}
	minutes, err := ParseMinutes(*p.Min)
	if err != nil {
		return nil, fmt.Errorf("%s in game %s: %w", p.PlayerName, p.GameID, err)
	}

	row := &BoxScoreRow{
		GameID:  game.GameID,
		Player:  p.PlayerName,
		Team:    p.TeamAbbreviation,
		Date:    game.Date,
		Matchup: game.Matchup,
		WL:      game.WL,
		Min:     minutes,
	}

	stats := []struct {
		name string
		src  *float64
		dst  *int
	}{
		{"PTS", p.Pts, &row.Pts},
		{"FGM", p.FGM, &row.FGM},
		{"FGA", p.FGA, &row.FGA},
		{"FG3M", p.FG3M, &row.FG3M},
		{"FG3A", p.FG3A, &row.FG3A},
		{"FTM", p.FTM, &row.FTM},
		{"FTA", p.FTA, &row.FTA},
		{"OREB", p.OReb, &row.OReb},
		{"DREB", p.DReb, &row.DReb},
		{"REB", p.Reb, &row.Reb},
		{"AST", p.Ast, &row.Ast},
		{"STL", p.Stl, &row.Stl},
		{"BLK", p.Blk, &row.Blk},
		{"TO", p.TO, &row.Tov},
		{"PF", p.PF, &row.PF},
		{"PLUS_MINUS", p.PlusMinus, &row.PlusMinus},
	}
	for _, s := range stats {
		if s.src == nil {
			return nil, fmt.Errorf("%w: %s in game %s has null %s", ErrSchema, p.PlayerName, p.GameID, s.name)
		}
		*s.dst = int(math.Round(*s.src))
	}

	return row, nil
}

// ParseMinutes converts a "minutes:seconds" string into whole minutes,
// rounding half to even: "23:05" -> 23, "23:55" -> 24, "12:30" -> 12.
// The minutes part may be a float with no fraction ("34.000000:12").
func ParseMinutes(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: minutes %q not in MM:SS form", ErrSchema, s)
	}

	mins, err := strconv.ParseFloat(parts[0], 64)
	if err != nil || mins < 0 || mins != math.Trunc(mins) {
		return 0, fmt.Errorf("%w: invalid minutes component in %q", ErrSchema, s)
	}

	secs, err := strconv.Atoi(parts[1])
	if err != nil || secs < 0 || secs > 59 {
		return 0, fmt.Errorf("%w: invalid seconds component in %q", ErrSchema, s)
	}

	total := int(mins)*60 + secs
	return int(math.RoundToEven(float64(total) / 60)), nil
}
