package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"nba_ytd/boxscores/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func game(id string, d time.Time, matchup string, wl models.Result) *models.GameRecord {
	return &models.GameRecord{GameID: id, Date: d, Season: "2020-21", Matchup: matchup, WL: wl}
}

func row(player string, g *models.GameRecord, min, pts int) *models.BoxScoreRow {
	return &models.BoxScoreRow{
		GameID: g.GameID, Player: player, Team: "MIN", Date: g.Date, Matchup: g.Matchup, WL: g.WL,
		Min: min, Pts: pts, FGM: 5, FGA: 11, FG3M: 1, FG3A: 0, Reb: 4, Ast: 3, PlusMinus: -2,
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestOpen_InitializesHeaderOnlyFiles(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir, "timberwolves")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "timberwolves", "ytd_timberwolves_games_pulled.csv"), s.GameLogPath())
	assert.Equal(t, filepath.Join(dir, "timberwolves", "ytd_timberwolves_player_boxscore.csv"), s.BoxScorePath())
	assert.Equal(t, "GAME_ID,GAME_DATE,SEASON,MATCHUP,WL\n", readFile(t, s.GameLogPath()))
	assert.Equal(t,
		"PLAYER,TEAM,DATE,MATCHUP,W/L,MIN,PTS,FGM,FGA,3PM,3PA,FTM,FTA,OREB,DREB,REB,AST,STL,BLK,TOV,PF,PLUS-MINUS\n",
		readFile(t, s.BoxScorePath()))

	games, err := s.LoadGameLog()
	require.NoError(t, err)
	assert.Empty(t, games)

	// Reopening leaves existing files alone
	_, err = Open(dir, "timberwolves")
	require.NoError(t, err)
	assert.Equal(t, "GAME_ID,GAME_DATE,SEASON,MATCHUP,WL\n", readFile(t, s.GameLogPath()))
}

func TestAppend_RoundTrip(t *testing.T) {
	s, err := Open(t.TempDir(), "timberwolves")
	require.NoError(t, err)

	g1 := game("0022000001", date(2020, 12, 23), "MIN vs. DET", models.ResultWin)
	g2 := game("0022000015", date(2020, 12, 26), "MIN vs. UTA", models.ResultWin)

	stats, err := s.Append(
		[]*models.GameRecord{g1, g2},
		[]*models.BoxScoreRow{row("Anthony Edwards", g1, 26, 15), row("Karl-Anthony Towns", g1, 35, 22), row("Anthony Edwards", g2, 30, 18)},
	)
	require.NoError(t, err)
	assert.Equal(t, AppendStats{GameRows: 2, BoxScoreRows: 3}, stats)

	games, err := s.LoadGameLog()
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, "0022000001", games[0].GameID, "Leading zeros must be preserved")
	assert.Equal(t, "12/23/2020", games[0].DateString())
	assert.Equal(t, "2020-21", games[0].Season)
	assert.Equal(t, models.ResultWin, games[1].WL)

	rows, err := s.LoadBoxScores()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Karl-Anthony Towns", rows[1].Player)
	assert.Equal(t, 35, rows[1].Min)
	assert.Equal(t, 22, rows[1].Pts)
	assert.Equal(t, -2, rows[1].PlusMinus)
	assert.Empty(t, rows[1].GameID, "Game id is not a persisted column")

	assert.Contains(t, readFile(t, s.BoxScorePath()),
		"Anthony Edwards,MIN,12/23/2020,MIN vs. DET,W,26,15,5,11,1,0,0,0,0,0,4,3,0,0,0,0,-2\n")
}

func TestAppend_PreservesExistingBytes(t *testing.T) {
	s, err := Open(t.TempDir(), "timberwolves")
	require.NoError(t, err)

	// A file written by other tooling, without a trailing newline
	legacy := "GAME_ID,GAME_DATE,SEASON,MATCHUP,WL\n0022000001,12/23/2020,2020,MIN vs. DET,W"
	require.NoError(t, os.WriteFile(s.GameLogPath(), []byte(legacy), 0o644))

	g := game("0022000015", date(2020, 12, 26), "MIN vs. UTA", models.ResultLoss)
	_, err = s.Append([]*models.GameRecord{g}, nil)
	require.NoError(t, err)

	got := readFile(t, s.GameLogPath())
	assert.Equal(t, legacy+"\n0022000015,12/26/2020,2020-21,MIN vs. UTA,L\n", got)
}

func TestAppend_NothingToWriteLeavesFilesUntouched(t *testing.T) {
	s, err := Open(t.TempDir(), "timberwolves")
	require.NoError(t, err)

	before, err := os.Stat(s.GameLogPath())
	require.NoError(t, err)

	stats, err := s.Append(nil, nil)
	require.NoError(t, err)
	assert.Zero(t, stats)

	after, err := os.Stat(s.GameLogPath())
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())
}

func TestAppend_RejectsDuplicateGame(t *testing.T) {
	s, err := Open(t.TempDir(), "timberwolves")
	require.NoError(t, err)

	g := game("0022000001", date(2020, 12, 23), "MIN vs. DET", models.ResultWin)
	_, err = s.Append([]*models.GameRecord{g}, nil)
	require.NoError(t, err)

	_, err = s.Append([]*models.GameRecord{g}, nil)
	assert.ErrorIs(t, err, ErrDuplicateGame)

	games, err := s.LoadGameLog()
	require.NoError(t, err)
	assert.Len(t, games, 1)
}

func TestAppend_SkipsBoxScoreRowsAlreadyOnDisk(t *testing.T) {
	s, err := Open(t.TempDir(), "timberwolves")
	require.NoError(t, err)

	g := game("0022000001", date(2020, 12, 23), "MIN vs. DET", models.ResultWin)
	// Simulate an interrupted earlier append: rows written, game log not
	_, err = s.Append(nil, []*models.BoxScoreRow{row("Anthony Edwards", g, 26, 15)})
	require.NoError(t, err)

	stats, err := s.Append([]*models.GameRecord{g}, []*models.BoxScoreRow{row("Anthony Edwards", g, 26, 15), row("Naz Reid", g, 12, 6)})
	require.NoError(t, err)
	assert.Equal(t, AppendStats{GameRows: 1, BoxScoreRows: 1}, stats)

	rows, err := s.LoadBoxScores()
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestRead_SchemaErrors(t *testing.T) {
	dir := t.TempDir()

	badHeader := filepath.Join(dir, "bad_header.csv")
	require.NoError(t, os.WriteFile(badHeader, []byte("GAME_ID,DATE\n1,2\n"), 0o644))
	_, err := ReadGameLog(badHeader)
	assert.ErrorIs(t, err, models.ErrSchema)

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = ReadGameLog(empty)
	assert.ErrorIs(t, err, models.ErrSchema)

	badDate := filepath.Join(dir, "bad_date.csv")
	require.NoError(t, os.WriteFile(badDate, []byte("GAME_ID,GAME_DATE,SEASON,MATCHUP,WL\n0022000001,2020-12-23,2020,MIN vs. DET,W\n"), 0o644))
	_, err = ReadGameLog(badDate)
	assert.ErrorIs(t, err, models.ErrSchema)

	badInt := filepath.Join(dir, "bad_int.csv")
	content := "PLAYER,TEAM,DATE,MATCHUP,W/L,MIN,PTS,FGM,FGA,3PM,3PA,FTM,FTA,OREB,DREB,REB,AST,STL,BLK,TOV,PF,PLUS-MINUS\n" +
		"Naz Reid,MIN,12/23/2020,MIN vs. DET,W,12,six,3,5,0,1,0,0,1,2,3,0,0,1,0,2,4\n"
	require.NoError(t, os.WriteFile(badInt, []byte(content), 0o644))
	_, err = ReadBoxScores(badInt)
	assert.ErrorIs(t, err, models.ErrSchema)
	assert.Contains(t, err.Error(), "PTS")

	_, err = ReadGameLog(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrSchema)
}

func TestReadBoxScores_AcceptsIntegralFloats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "floats.csv")
	content := "PLAYER,TEAM,DATE,MATCHUP,W/L,MIN,PTS,FGM,FGA,3PM,3PA,FTM,FTA,OREB,DREB,REB,AST,STL,BLK,TOV,PF,PLUS-MINUS\n" +
		"Naz Reid,MIN,12/23/2020,MIN vs. DET,W,12,6.0,3,5,0,1,0,0,1,2,3,0,0,1,0,2,-4.0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rows, err := ReadBoxScores(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 6, rows[0].Pts)
	assert.Equal(t, -4, rows[0].PlusMinus)
}
