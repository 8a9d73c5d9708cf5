package dashboard

import (
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"nba_ytd/boxscores/internal/metrics"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Options configures the dashboard server
type Options struct {
	TeamName      string
	DefaultPlayer string
	CORSOrigins   []string
}

// Server serves the dashboard page and its JSON views
type Server struct {
	dataset *Dataset
	opts    Options
}

// NewServer creates a dashboard server over an immutable dataset
func NewServer(dataset *Dataset, opts Options) *Server {
	if !dataset.HasPlayer(opts.DefaultPlayer) {
		players := dataset.Players()
		if len(players) > 0 {
			log.Warn().
				Str("player", opts.DefaultPlayer).
				Str("fallback", players[0]).
				Msg("Default player not in dataset")
			opts.DefaultPlayer = players[0]
		}
	}
	return &Server{dataset: dataset, opts: opts}
}

// Router builds the HTTP routes
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(accessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))

	origins := s.opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	// Routes
	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/options", s.handleOptions)
		r.Get("/boxscore", s.handleBoxScore)
		r.Get("/players/{player}/charts", s.handlePlayerCharts)
		r.Get("/team/minutes", s.handleTeamMinutes)
		r.Get("/team/plus-minus", s.handleTeamPlusMinus)
		r.Get("/totals", s.handleTotals)
	})

	return r
}

type optionsResponse struct {
	Team          string       `json:"team"`
	DefaultPlayer string       `json:"default_player"`
	Players       []string     `json:"players"`
	Games         []GameOption `json:"games"`
	Metrics       []string     `json:"metrics"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := struct {
		Team          string
		DefaultPlayer string
		Rows          int
	}{s.opts.TeamName, s.opts.DefaultPlayer, s.dataset.Len()}

	if err := pageTemplate.Execute(w, data); err != nil {
		log.Error().Err(err).Msg("Failed to render page")
		metrics.RecordDashboardView("index", "error")
		return
	}
	metrics.RecordDashboardView("index", "ok")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "dashboard",
		"rows":      s.dataset.Len(),
	})
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	metrics.RecordDashboardView("options", "ok")
	respondJSON(w, http.StatusOK, optionsResponse{
		Team:          s.opts.TeamName,
		DefaultPlayer: s.opts.DefaultPlayer,
		Players:       s.dataset.Players(),
		Games:         s.dataset.Games(),
		Metrics:       s.dataset.Metrics(),
	})
}

func (s *Server) handleBoxScore(w http.ResponseWriter, r *http.Request) {
	table := BoxScoreTable(s.dataset, r.URL.Query().Get("game"))
	metrics.RecordDashboardView("boxscore", viewStatus(len(table.Rows) > 0))
	respondJSON(w, http.StatusOK, table)
}

func (s *Server) handlePlayerCharts(w http.ResponseWriter, r *http.Request) {
	player := chi.URLParam(r, "player")
	// chi hands back the raw segment when the path needed escaping
	if unescaped, err := url.PathUnescape(player); err == nil {
		player = unescaped
	}
	metrics.RecordDashboardView("player_charts", viewStatus(s.dataset.HasPlayer(player)))
	respondJSON(w, http.StatusOK, PlayerChartsFor(s.dataset, player))
}

func (s *Server) handleTeamMinutes(w http.ResponseWriter, r *http.Request) {
	metrics.RecordDashboardView("team_minutes", "ok")
	respondJSON(w, http.StatusOK, TeamMinutesChart(s.dataset))
}

func (s *Server) handleTeamPlusMinus(w http.ResponseWriter, r *http.Request) {
	metrics.RecordDashboardView("team_plus_minus", "ok")
	respondJSON(w, http.StatusOK, TeamPlusMinusChart(s.dataset))
}

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	fig := SeasonTotalsChart(s.dataset, r.URL.Query().Get("metric"))
	metrics.RecordDashboardView("season_totals", viewStatus(len(fig.Data) > 0))
	respondJSON(w, http.StatusOK, fig)
}

// viewStatus labels views that matched nothing; they still answer 200
func viewStatus(found bool) string {
	if found {
		return "ok"
	}
	return "empty"
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Error encoding response")
	}
}
