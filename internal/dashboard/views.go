package dashboard

import (
	"sort"
	"strings"
)

const isoDate = "2006-01-02"

// Visibility thresholds for the team charts: a player's trace starts hidden
// (legend only) when their season mean is below the threshold.
const (
	MinutesVisibleMean   = 25.0
	PlusMinusVisibleMean = -3.0
)

// TableColumns is the column order of the box score table
var TableColumns = []string{
	"PLAYER", "TEAM", "DATE", "MATCHUP", "W/L", "MIN", "PTS",
	"FGM", "FGA", "FG-PCT", "3PM", "3PA", "3-PCT",
	"FTM", "FTA", "OREB", "DREB", "REB", "AST", "STL", "BLK", "TOV", "PF", "PLUS-MINUS",
}

// TableRow is one line of the box score table
type TableRow struct {
	Player    string   `json:"PLAYER"`
	Team      string   `json:"TEAM"`
	Date      string   `json:"DATE"`
	Matchup   string   `json:"MATCHUP"`
	WL        string   `json:"W/L"`
	Min       int      `json:"MIN"`
	Pts       int      `json:"PTS"`
	FGM       int      `json:"FGM"`
	FGA       int      `json:"FGA"`
	FGPct     *float64 `json:"FG-PCT"`
	FG3M      int      `json:"3PM"`
	FG3A      int      `json:"3PA"`
	ThreePct  *float64 `json:"3-PCT"`
	FTM       int      `json:"FTM"`
	FTA       int      `json:"FTA"`
	OReb      int      `json:"OREB"`
	DReb      int      `json:"DREB"`
	Reb       int      `json:"REB"`
	Ast       int      `json:"AST"`
	Stl       int      `json:"STL"`
	Blk       int      `json:"BLK"`
	Tov       int      `json:"TOV"`
	PF        int      `json:"PF"`
	PlusMinus int      `json:"PLUS-MINUS"`
}

// Table is the box score table of one game
type Table struct {
	Game    string     `json:"game"`
	Columns []string   `json:"columns"`
	Rows    []TableRow `json:"rows"`
}

// PlayerCharts holds the three per-player line charts
type PlayerCharts struct {
	Player   string `json:"player"`
	Points   Figure `json:"points"`
	Assists  Figure `json:"assists"`
	Rebounds Figure `json:"rebounds"`
}

// BoxScoreTable returns the rows of the game selected as "MM/DD/YYYY,MATCHUP".
// An unknown or malformed selection yields a table with no rows.
func BoxScoreTable(d *Dataset, game string) Table {
	rows := d.gameRows(game)
	t := Table{
		Game:    game,
		Columns: TableColumns,
		Rows:    make([]TableRow, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, TableRow{
			Player:    r.Player,
			Team:      r.Team,
			Date:      r.DateString(),
			Matchup:   r.Matchup,
			WL:        string(r.WL),
			Min:       r.Min,
			Pts:       r.Pts,
			FGM:       r.FGM,
			FGA:       r.FGA,
			FGPct:     r.FGPct,
			FG3M:      r.FG3M,
			FG3A:      r.FG3A,
			ThreePct:  r.ThreePct,
			FTM:       r.FTM,
			FTA:       r.FTA,
			OReb:      r.OReb,
			DReb:      r.DReb,
			Reb:       r.Reb,
			Ast:       r.Ast,
			Stl:       r.Stl,
			Blk:       r.Blk,
			Tov:       r.Tov,
			PF:        r.PF,
			PlusMinus: r.PlusMinus,
		})
	}
	return t
}

// PlayerChartsFor returns points, assists and rebounds over the season for
// one player. An unknown player yields three empty figures.
func PlayerChartsFor(d *Dataset, player string) PlayerCharts {
	rows := d.playerRows(player)

	line := func(title, label string, value func(Row) int) Figure {
		f := Figure{
			Data:   []Trace{},
			Layout: darkLayout(title, label, true),
		}
		f.Layout.ShowLegend = false
		if len(rows) == 0 {
			return f
		}

		t := Trace{
			Type:          "scatter",
			Name:          player,
			Mode:          "markers+lines",
			Visible:       true,
			Line:          &Line{Color: accentColor},
			HoverTemplate: hoverTemplate(label, true),
		}
		for _, r := range rows {
			t.X = append(t.X, r.Date.Format(isoDate))
			t.Y = append(t.Y, float64(value(r)))
			t.CustomData = append(t.CustomData, []string{r.Matchup, string(r.WL), r.Player})
		}
		f.Data = append(f.Data, t)
		return f
	}

	return PlayerCharts{
		Player:   player,
		Points:   line("Points (YTD)", "Points", func(r Row) int { return r.Pts }),
		Assists:  line("Assists (YTD)", "Assists", func(r Row) int { return r.Ast }),
		Rebounds: line("Rebounds (YTD)", "Rebounds", func(r Row) int { return r.Reb }),
	}
}

// TeamMinutesChart plots every player's minutes over the season
func TeamMinutesChart(d *Dataset) Figure {
	return teamChart(d, "Minutes (YTD)", "Minutes", MinutesVisibleMean, func(r Row) int { return r.Min })
}

// TeamPlusMinusChart plots every player's plus-minus over the season
func TeamPlusMinusChart(d *Dataset) Figure {
	return teamChart(d, "+/- (YTD)", "+/-", PlusMinusVisibleMean, func(r Row) int { return r.PlusMinus })
}

func teamChart(d *Dataset, title, label string, threshold float64, value func(Row) int) Figure {
	f := Figure{
		Data:   make([]Trace, 0, len(d.players)),
		Layout: darkLayout(title, label, true),
	}

	for i, player := range d.players {
		rows := d.playerRows(player)
		t := Trace{
			Type:          "scatter",
			Name:          player,
			Mode:          "markers+lines",
			Line:          &Line{Color: light24[i%len(light24)]},
			HoverTemplate: hoverTemplate(label, true),
		}

		sum := 0.0
		for _, r := range rows {
			v := float64(value(r))
			sum += v
			t.X = append(t.X, r.Date.Format(isoDate))
			t.Y = append(t.Y, v)
			t.CustomData = append(t.CustomData, []string{r.Matchup, string(r.WL), r.Player})
		}

		t.Visible = true
		if sum/float64(len(rows)) < threshold {
			t.Visible = visibleLegendOnly
		}
		f.Data = append(f.Data, t)
	}

	return f
}

// SeasonTotalsChart is a pie of each player's season total of metric
// (PTS, REB or AST). An unknown metric yields an empty figure.
func SeasonTotalsChart(d *Dataset, metric string) Figure {
	metric = strings.ToUpper(strings.TrimSpace(metric))
	f := Figure{
		Data:   []Trace{},
		Layout: darkLayout("Season Totals: "+metric, "", false),
	}

	var value func(Row) int
	switch metric {
	case MetricPoints:
		value = func(r Row) int { return r.Pts }
	case MetricRebounds:
		value = func(r Row) int { return r.Reb }
	case MetricAssists:
		value = func(r Row) int { return r.Ast }
	default:
		return f
	}

	type total struct {
		player string
		sum    int
	}
	totals := make([]total, 0, len(d.players))
	for _, player := range d.players {
		t := total{player: player}
		for _, r := range d.playerRows(player) {
			t.sum += value(r)
		}
		if t.sum > 0 {
			totals = append(totals, t)
		}
	}
	sort.SliceStable(totals, func(i, j int) bool { return totals[i].sum > totals[j].sum })

	if len(totals) == 0 {
		return f
	}

	pie := Trace{
		Type:          "pie",
		Visible:       true,
		HoverTemplate: "<b>%{label}</b><br>" + metric + ": %{value}<br>%{percent}<extra></extra>",
		Marker:        &Marker{},
	}
	for i, t := range totals {
		pie.Labels = append(pie.Labels, t.player)
		pie.Values = append(pie.Values, float64(t.sum))
		pie.Marker.Colors = append(pie.Marker.Colors, light24[i%len(light24)])
	}
	f.Data = append(f.Data, pie)

	return f
}
