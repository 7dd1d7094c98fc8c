package models

import "time"

// TimeRange identifies the provider's lookback window for top entities.
type TimeRange string

const (
	TimeRangeShort  TimeRange = "short_term"
	TimeRangeMedium TimeRange = "medium_term"
	TimeRangeLong   TimeRange = "long_term"
)

// TimeRanges lists all lookback windows in short-to-long order.
var TimeRanges = []TimeRange{TimeRangeShort, TimeRangeMedium, TimeRangeLong}

// ArtistRef is a minimal artist reference as embedded in tracks and plays.
type ArtistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Track is a track as returned by the provider's top-tracks resource.
type Track struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Artists    []ArtistRef `json:"artists"`
	Album      string      `json:"album"`
	Popularity int         `json:"popularity"`
	ImageURL   string      `json:"imageUrl,omitempty"`
}

// PrimaryArtist returns the first listed artist, or a zero ArtistRef if none.
func (t Track) PrimaryArtist() ArtistRef {
	if len(t.Artists) == 0 {
		return ArtistRef{}
	}
	return t.Artists[0]
}

// Artist is an artist as returned by the provider's top-artists resource.
type Artist struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Popularity int      `json:"popularity"`
	Genres     []string `json:"genres"`
	ImageURL   string   `json:"imageUrl,omitempty"`
}

// PlayRecord is a single entry from the recently-played history. Records
// arrive most-recent-first from the provider.
type PlayRecord struct {
	TrackID    string      `json:"trackId"`
	TrackName  string      `json:"trackName"`
	Artists    []ArtistRef `json:"artists"`
	Album      string      `json:"album"`
	PlayedAt   time.Time   `json:"playedAt"`
	DurationMS int         `json:"durationMs"`
}

// AudioFeatures holds the per-track scalar features. All proportional
// features are in [0,1]; Tempo is beats per minute.
type AudioFeatures struct {
	Energy           float64 `json:"energy"`
	Valence          float64 `json:"valence"`
	Danceability     float64 `json:"danceability"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Speechiness      float64 `json:"speechiness"`
	Tempo            float64 `json:"tempo"`
}

// UserProfile is the provider's durable account identity.
type UserProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email,omitempty"`
}

// RawData bundles the seven raw result sets the extractor consumes.
// AudioFeatures may be nil when the provider denies access; the extractor
// degrades rather than failing.
type RawData struct {
	RecentPlays   []PlayRecord              `json:"recentPlays"`
	TopTracks     map[TimeRange][]Track     `json:"topTracks"`
	TopArtists    map[TimeRange][]Artist    `json:"topArtists"`
	AudioFeatures map[string]*AudioFeatures `json:"audioFeatures,omitempty"`
}
