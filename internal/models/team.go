package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownTeam is returned when a team identifier matches no franchise
var ErrUnknownTeam = errors.New("unknown team")

// Team represents an NBA franchise as known to the stats provider
type Team struct {
	TeamID       int    // Provider-internal id (stats.nba.com TEAM_ID)
	Abbreviation string // "MIN"
	Nickname     string // "Timberwolves"
	City         string // "Minnesota"
	FullName     string // "Minnesota Timberwolves"
}

// Slug returns the lowercase nickname used to namespace storage paths
func (t *Team) Slug() string {
	return strings.ToLower(strings.ReplaceAll(t.Nickname, " ", "_"))
}

// nbaTeams is the static franchise table used to resolve provider team ids
var nbaTeams = []Team{
	{1610612737, "ATL", "Hawks", "Atlanta", "Atlanta Hawks"},
	{1610612738, "BOS", "Celtics", "Boston", "Boston Celtics"},
	{1610612751, "BKN", "Nets", "Brooklyn", "Brooklyn Nets"},
	{1610612766, "CHA", "Hornets", "Charlotte", "Charlotte Hornets"},
	{1610612741, "CHI", "Bulls", "Chicago", "Chicago Bulls"},
	{1610612739, "CLE", "Cavaliers", "Cleveland", "Cleveland Cavaliers"},
	{1610612742, "DAL", "Mavericks", "Dallas", "Dallas Mavericks"},
	{1610612743, "DEN", "Nuggets", "Denver", "Denver Nuggets"},
	{1610612765, "DET", "Pistons", "Detroit", "Detroit Pistons"},
	{1610612744, "GSW", "Warriors", "Golden State", "Golden State Warriors"},
	{1610612745, "HOU", "Rockets", "Houston", "Houston Rockets"},
	{1610612754, "IND", "Pacers", "Indiana", "Indiana Pacers"},
	{1610612746, "LAC", "Clippers", "Los Angeles", "Los Angeles Clippers"},
	{1610612747, "LAL", "Lakers", "Los Angeles", "Los Angeles Lakers"},
	{1610612763, "MEM", "Grizzlies", "Memphis", "Memphis Grizzlies"},
	{1610612748, "MIA", "Heat", "Miami", "Miami Heat"},
	{1610612749, "MIL", "Bucks", "Milwaukee", "Milwaukee Bucks"},
	{1610612750, "MIN", "Timberwolves", "Minnesota", "Minnesota Timberwolves"},
	{1610612740, "NOP", "Pelicans", "New Orleans", "New Orleans Pelicans"},
	{1610612752, "NYK", "Knicks", "New York", "New York Knicks"},
	{1610612760, "OKC", "Thunder", "Oklahoma City", "Oklahoma City Thunder"},
	{1610612753, "ORL", "Magic", "Orlando", "Orlando Magic"},
	{1610612755, "PHI", "76ers", "Philadelphia", "Philadelphia 76ers"},
	{1610612756, "PHX", "Suns", "Phoenix", "Phoenix Suns"},
	{1610612757, "POR", "Trail Blazers", "Portland", "Portland Trail Blazers"},
	{1610612758, "SAC", "Kings", "Sacramento", "Sacramento Kings"},
	{1610612759, "SAS", "Spurs", "San Antonio", "San Antonio Spurs"},
	{1610612761, "TOR", "Raptors", "Toronto", "Toronto Raptors"},
	{1610612762, "UTA", "Jazz", "Utah", "Utah Jazz"},
	{1610612764, "WAS", "Wizards", "Washington", "Washington Wizards"},
}

// LookupTeam resolves a team identifier given on the command line.
// Nickname ("timberwolves"), abbreviation ("MIN") and full name all match,
// case-insensitively; underscores stand in for spaces ("trail_blazers").
func LookupTeam(identifier string) (*Team, error) {
	key := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(identifier, "_", " ")))
	if key == "" {
		return nil, fmt.Errorf("%w: empty identifier", ErrUnknownTeam)
	}

	for i := range nbaTeams {
		t := nbaTeams[i]
		if strings.ToLower(t.Nickname) == key ||
			strings.ToLower(t.Abbreviation) == key ||
			strings.ToLower(t.FullName) == key {
			return &t, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownTeam, identifier)
}

// Teams returns a copy of the static franchise table
func Teams() []Team {
	out := make([]Team, len(nbaTeams))
	copy(out, nbaTeams)
	return out
}
