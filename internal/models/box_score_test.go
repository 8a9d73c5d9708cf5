package models

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func testGame() *GameRecord {
	return &GameRecord{
		GameID:  "0022000123",
		Date:    time.Date(2021, 3, 15, 0, 0, 0, 0, time.UTC),
		Season:  "2020-21",
		Matchup: "MIN vs. DET",
		WL:      ResultWin,
	}
}

func testInput() *PlayerStatsInput {
	return &PlayerStatsInput{
		GameID:           "0022000123",
		TeamID:           1610612750,
		TeamAbbreviation: "MIN",
		TeamCity:         "Minnesota",
		PlayerID:         1630162,
		PlayerName:       "Anthony Edwards",
		StartPosition:    "G",
		Min:              ptr("34:12"),
		FGM:              ptr(9.0),
		FGA:              ptr(20.0),
		FGPct:            ptr(0.45),
		FG3M:             ptr(3.0),
		FG3A:             ptr(8.0),
		FTM:              ptr(4.0),
		FTA:              ptr(5.0),
		OReb:             ptr(1.0),
		DReb:             ptr(5.0),
		Reb:              ptr(6.0),
		Ast:              ptr(4.0),
		Stl:              ptr(2.0),
		Blk:              ptr(1.0),
		TO:               ptr(3.0),
		PF:               ptr(2.0),
		Pts:              ptr(25.0),
		PlusMinus:        ptr(-7.0),
	}
}

func TestParseMinutes(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"23:05", 23},
		{"23:55", 24},
		{"23:30", 24},
		{"0:29", 0},
		{"0:30", 0},
		{"12:30", 12},
		{"1:30", 2},
		{"48:00", 48},
		{"34.000000:12", 34},
		{" 12:01 ", 12},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMinutes(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMinutes_Invalid(t *testing.T) {
	for _, in := range []string{"", "23", "23:5x", "ab:10", "23:60", "-1:00", "12.5:00", "1:2:3"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseMinutes(in)
			assert.ErrorIs(t, err, ErrSchema)
		})
	}
}

func TestParseMinutesProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("minutes equal rounded total seconds over sixty", prop.ForAll(
		func(mins, secs int) bool {
			got, err := ParseMinutes(fmt.Sprintf("%d:%02d", mins, secs))
			if err != nil {
				return false
			}
			return got == int(math.RoundToEven(float64(mins*60+secs)/60))
		},
		gen.IntRange(0, 70),
		gen.IntRange(0, 59),
	))

	properties.Property("result is within one minute of the minutes component", prop.ForAll(
		func(mins, secs int) bool {
			got, err := ParseMinutes(fmt.Sprintf("%d:%02d", mins, secs))
			return err == nil && (got == mins || got == mins+1)
		},
		gen.IntRange(0, 70),
		gen.IntRange(0, 59),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestPlayedFor(t *testing.T) {
	in := testInput()
	assert.True(t, in.PlayedFor(1610612750))
	assert.False(t, in.PlayedFor(1610612765), "Opposing team rows should be excluded")

	in.Min = nil
	assert.False(t, in.PlayedFor(1610612750), "Rows without minutes should be excluded")

	in.Min = ptr("  ")
	assert.False(t, in.PlayedFor(1610612750), "Blank minutes count as no minutes")
}

func TestToBoxScoreRow(t *testing.T) {
	row, err := testInput().ToBoxScoreRow(testGame())
	require.NoError(t, err)

	assert.Equal(t, "0022000123", row.GameID)
	assert.Equal(t, "Anthony Edwards", row.Player)
	assert.Equal(t, "MIN", row.Team)
	assert.Equal(t, "03/15/2021", row.DateString())
	assert.Equal(t, "MIN vs. DET", row.Matchup)
	assert.Equal(t, ResultWin, row.WL)
	assert.Equal(t, 34, row.Min)
	assert.Equal(t, 25, row.Pts)
	assert.Equal(t, 3, row.FG3M)
	assert.Equal(t, 8, row.FG3A)
	assert.Equal(t, 3, row.Tov)
	assert.Equal(t, -7, row.PlusMinus)
}

func TestToBoxScoreRow_SchemaErrors(t *testing.T) {
	noMinutes := testInput()
	noMinutes.Min = nil
	_, err := noMinutes.ToBoxScoreRow(testGame())
	assert.ErrorIs(t, err, ErrSchema)

	badMinutes := testInput()
	badMinutes.Min = ptr("DNP")
	_, err = badMinutes.ToBoxScoreRow(testGame())
	assert.ErrorIs(t, err, ErrSchema)

	nullStat := testInput()
	nullStat.Reb = nil
	_, err = nullStat.ToBoxScoreRow(testGame())
	assert.ErrorIs(t, err, ErrSchema)
	assert.Contains(t, err.Error(), "REB")
}

func TestPercentages(t *testing.T) {
	row := &BoxScoreRow{FGM: 9, FGA: 20, FG3M: 0, FG3A: 0}

	fg := row.FieldGoalPct()
	require.True(t, fg.Valid)
	assert.InDelta(t, 0.45, fg.Float64, 1e-9)

	three := row.ThreePointPct()
	assert.False(t, three.Valid, "Zero attempts should be undefined, not zero")

	row.FG3A = 4
	three = row.ThreePointPct()
	require.True(t, three.Valid)
	assert.Equal(t, 0.0, three.Float64, "Zero makes on attempts is a real zero")
}
