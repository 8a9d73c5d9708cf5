package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProviderDate(t *testing.T) {
	for _, in := range []string{"MAR 15, 2021", "Mar 15, 2021", "2021-03-15T00:00:00", "2021-03-15", "03/15/2021"} {
		t.Run(in, func(t *testing.T) {
			d, err := ParseProviderDate(in)
			require.NoError(t, err)
			assert.Equal(t, "03/15/2021", d.Format(DateLayout))
		})
	}

	_, err := ParseProviderDate("the ides of march")
	assert.ErrorIs(t, err, ErrSchema)
}

func TestGameLogInput_ToGameRecord(t *testing.T) {
	in := &GameLogInput{
		TeamID:   1610612750,
		GameID:   "0022000123",
		GameDate: "MAR 15, 2021",
		Matchup:  "MIN vs. DET",
		WL:       ptr("W"),
	}

	game, err := in.ToGameRecord("2020-21")
	require.NoError(t, err)
	assert.Equal(t, "0022000123", game.GameID, "Leading zeros must survive")
	assert.Equal(t, "03/15/2021", game.DateString())
	assert.Equal(t, "2020-21", game.Season)
	assert.Equal(t, ResultWin, game.WL)

	in.WL = nil
	_, err = in.ToGameRecord("2020-21")
	assert.ErrorIs(t, err, ErrSchema)

	in.WL = ptr("T")
	_, err = in.ToGameRecord("2020-21")
	assert.ErrorIs(t, err, ErrSchema)

	in.WL = ptr("L")
	in.GameID = ""
	_, err = in.ToGameRecord("2020-21")
	assert.ErrorIs(t, err, ErrSchema)
}
