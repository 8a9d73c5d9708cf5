package dashboard

// Figure is a Plotly figure: traces plus layout, drawn client-side by plotly.js
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is the subset of plotly.js trace attributes the views use
type Trace struct {
	Type          string      `json:"type"`
	Name          string      `json:"name,omitempty"`
	Mode          string      `json:"mode,omitempty"`
	X             []string    `json:"x,omitempty"`
	Y             []float64   `json:"y,omitempty"`
	Labels        []string    `json:"labels,omitempty"`
	Values        []float64   `json:"values,omitempty"`
	CustomData    [][]string  `json:"customdata,omitempty"`
	HoverTemplate string      `json:"hovertemplate,omitempty"`
	Visible       interface{} `json:"visible"` // true or "legendonly"
	Line          *Line       `json:"line,omitempty"`
	Marker        *Marker     `json:"marker,omitempty"`
}

// Line styles a scatter trace
type Line struct {
	Color string `json:"color,omitempty"`
}

// Marker styles bar and pie traces
type Marker struct {
	Color  string   `json:"color,omitempty"`
	Colors []string `json:"colors,omitempty"`
}

// Layout is the subset of plotly.js layout attributes the views use
type Layout struct {
	Title        Title  `json:"title"`
	PaperBGColor string `json:"paper_bgcolor"`
	PlotBGColor  string `json:"plot_bgcolor"`
	Font         Font   `json:"font"`
	XAxis        *Axis  `json:"xaxis,omitempty"`
	YAxis        *Axis  `json:"yaxis,omitempty"`
	ShowLegend   bool   `json:"showlegend"`
}

type Title struct {
	Text string `json:"text"`
}

type Font struct {
	Color string `json:"color"`
}

type Axis struct {
	Title     Title  `json:"title"`
	Type      string `json:"type,omitempty"`
	GridColor string `json:"gridcolor,omitempty"`
}

const (
	visibleLegendOnly = "legendonly"

	accentColor = "#78be20"
)

// light24 is Plotly's Light24 qualitative palette
var light24 = []string{
	"#FD3216", "#00FE35", "#6A76FC", "#FED4C4", "#FE00CE", "#0DF9FF",
	"#F6F926", "#FF9616", "#479B55", "#EEA6FB", "#DC587D", "#D626FF",
	"#6E899C", "#00B5F7", "#B68E00", "#C9FBE5", "#FF0092", "#22FFA7",
	"#E3EE9E", "#86CE00", "#BC7196", "#7E7DCD", "#FC6955", "#E48F72",
}

// darkLayout mirrors the plotly_dark template
func darkLayout(title, yTitle string, dateAxis bool) Layout {
	l := Layout{
		Title:        Title{Text: title},
		PaperBGColor: "#111111",
		PlotBGColor:  "#111111",
		Font:         Font{Color: "#f2f5fa"},
		ShowLegend:   true,
	}
	if dateAxis {
		l.XAxis = &Axis{Title: Title{Text: "DATE"}, Type: "date", GridColor: "#283442"}
		l.YAxis = &Axis{Title: Title{Text: yTitle}, GridColor: "#283442"}
	}
	return l
}

func hoverTemplate(valueLabel string, withPlayer bool) string {
	t := ""
	if withPlayer {
		t = "<b>%{customdata[2]}</b><br>"
	}
	t += "<b>Matchup</b>: %{customdata[0]}<br>" +
		"<b>Date</b>: %{x}<br>" +
		"<b>Win/Loss</b>: %{customdata[1]}<br>" +
		"<b>" + valueLabel + "</b>: %{y}<br>"
	return t + "<extra></extra>"
}
