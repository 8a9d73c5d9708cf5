package storage

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"nba_ytd/boxscores/internal/models"
)

// GameLogHeader is the fixed column order of the games-pulled file
var GameLogHeader = []string{"GAME_ID", "GAME_DATE", "SEASON", "MATCHUP", "WL"}

// BoxScoreHeader is the fixed column order of the player box score file
var BoxScoreHeader = []string{
	"PLAYER", "TEAM", "DATE", "MATCHUP", "W/L",
	"MIN", "PTS", "FGM", "FGA", "3PM", "3PA",
	"FTM", "FTA", "OREB", "DREB", "REB", "AST", "STL", "BLK",
	"TOV", "PF", "PLUS-MINUS",
}

// ReadGameLog reads a games-pulled file. GAME_ID and SEASON stay strings.
func ReadGameLog(path string) ([]*models.GameRecord, error) {
	records, err := readCSV(path, GameLogHeader)
	if err != nil {
		return nil, err
	}

	games := make([]*models.GameRecord, 0, len(records))
	for i, rec := range records {
		date, err := parseDate(rec[1])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, i+2, err)
		}
		wl, err := models.ParseResult(rec[4])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, i+2, err)
		}
		games = append(games, &models.GameRecord{
			GameID:  rec[0],
			Date:    date,
			Season:  rec[2],
			Matchup: rec[3],
			WL:      wl,
		})
	}

	return games, nil
}

// ReadBoxScores reads a player box score file
func ReadBoxScores(path string) ([]*models.BoxScoreRow, error) {
	records, err := readCSV(path, BoxScoreHeader)
	if err != nil {
		return nil, err
	}

	rows := make([]*models.BoxScoreRow, 0, len(records))
	for i, rec := range records {
		row, err := decodeBoxScore(rec)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, i+2, err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func decodeBoxScore(rec []string) (*models.BoxScoreRow, error) {
	date, err := parseDate(rec[2])
	if err != nil {
		return nil, err
	}
	wl, err := models.ParseResult(rec[4])
	if err != nil {
		return nil, err
	}

	row := &models.BoxScoreRow{
		Player:  rec[0],
		Team:    rec[1],
		Date:    date,
		Matchup: rec[3],
		WL:      wl,
	}

	ints := []*int{
		&row.Min, &row.Pts, &row.FGM, &row.FGA, &row.FG3M, &row.FG3A,
		&row.FTM, &row.FTA, &row.OReb, &row.DReb, &row.Reb, &row.Ast, &row.Stl, &row.Blk,
		&row.Tov, &row.PF, &row.PlusMinus,
	}
	for j, dst := range ints {
		col := 5 + j
		v, err := parseInt(rec[col])
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", BoxScoreHeader[col], err)
		}
		*dst = v
	}

	return row, nil
}

func encodeGame(g *models.GameRecord) []string {
	return []string{g.GameID, g.DateString(), g.Season, g.Matchup, string(g.WL)}
}

func encodeBoxScore(r *models.BoxScoreRow) []string {
	rec := []string{r.Player, r.Team, r.DateString(), r.Matchup, string(r.WL)}
	for _, v := range []int{
		r.Min, r.Pts, r.FGM, r.FGA, r.FG3M, r.FG3A,
		r.FTM, r.FTA, r.OReb, r.DReb, r.Reb, r.Ast, r.Stl, r.Blk,
		r.Tov, r.PF, r.PlusMinus,
	} {
		rec = append(rec, strconv.Itoa(v))
	}
	return rec
}

// boxScoreKey identifies a persisted box score row; the file carries no game id
func boxScoreKey(player, date, matchup string) string {
	return player + "\x00" + date + "\x00" + matchup
}

func readCSV(path string, header []string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(header)

	got, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: %s has no header", models.ErrSchema, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s header: %v", models.ErrSchema, path, err)
	}
	if strings.Join(got, ",") != strings.Join(header, ",") {
		return nil, fmt.Errorf("%w: %s header %v, want %v", models.ErrSchema, path, got, header)
	}

	records, err := r.ReadAll()
	if err != nil {
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			return nil, fmt.Errorf("%w: %s: %v", models.ErrSchema, path, err)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return records, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", models.ErrSchema, s)
	}
	return t, nil
}

// parseInt accepts plain integers and integral floats ("25.0") written by older tooling
func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: %q is not an integer", models.ErrSchema, s)
	}
	return int(f), nil
}

// writeHeaderOnly creates a file holding just the header line
func writeHeaderOnly(path string, header []string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return replaceFile(path, buf.Bytes())
}

// appendRecords extends path with records. Existing bytes are carried over
// verbatim and the result replaces the file atomically.
func appendRecords(path string, records [][]string) error {
	if len(records) == 0 {
		return nil
	}

	existing, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var buf bytes.Buffer
	buf.Grow(len(existing) + 128*len(records))
	buf.Write(existing)
	if len(existing) > 0 && existing[len(existing)-1] != '\n' {
		buf.WriteByte('\n')
	}

	w := csv.NewWriter(&buf)
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("failed to encode rows for %s: %w", path, err)
	}

	return replaceFile(path, buf.Bytes())
}

// replaceFile writes data to a temp file in the same directory, syncs it and
// renames it over path, so readers see either the old or the new contents.
func replaceFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	return nil
}
