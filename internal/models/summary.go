package models

import "time"

// Summary is the aggregate produced by the feature extractor. It is fully
// determined by its raw inputs: identical inputs yield identical summaries.
type Summary struct {
	Overview Overview    `json:"overview"`
	Habits   Habits      `json:"habits"`
	Persona  PersonaSeed `json:"persona"`
}

// RankedItem is a named entity with its 1-based rank in a top list.
type RankedItem struct {
	Rank int    `json:"rank"`
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GenreCount is a genre with its occurrence count across top artists.
type GenreCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// AudioProfile is the averaged audio feature vector, each proportional
// component scaled to 0-100. Tempo stays in BPM.
type AudioProfile struct {
	Energy           int `json:"energy"`
	Danceability     int `json:"danceability"`
	Valence          int `json:"valence"`
	Acousticness     int `json:"acousticness"`
	Instrumentalness int `json:"instrumentalness"`
	Speechiness      int `json:"speechiness"`
	Tempo            int `json:"tempo"`
}

// FeatureSpread describes how one audio feature is distributed across the
// analyzed vectors. Std is the sample standard deviation, zero for a single
// vector.
type FeatureSpread struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Collaboration is a pair of co-credited artists with the number of
// short-window top tracks they share. Names are in lexical order.
type Collaboration struct {
	Artists [2]string `json:"artists"`
	Tracks  int       `json:"tracks"`
}

// RecentPlay is a compact recent-history entry for the overview zone.
type RecentPlay struct {
	TrackName  string    `json:"trackName"`
	ArtistName string    `json:"artistName"`
	PlayedAt   time.Time `json:"playedAt"`
}

// Overview is the top-entity zone of the summary. AudioStats and
// Collaborations are absent when no feature vectors or co-credited tracks
// exist.
type Overview struct {
	TopArtists     []RankedItem             `json:"topArtists"`
	TopTracks      []RankedItem             `json:"topTracks"`
	TopGenres      []GenreCount             `json:"topGenres"`
	AudioProfile   AudioProfile             `json:"audioProfile"`
	AudioStats     map[string]FeatureSpread `json:"audioStats,omitempty"`
	Collaborations []Collaboration          `json:"collaborations,omitempty"`
	RecentPlays    []RecentPlay             `json:"recentPlays"`
}

// MoodDistribution buckets the available audio feature vectors by threshold,
// each value a percentage of the analyzed vectors.
type MoodDistribution struct {
	Energetic int `json:"energetic"`
	Calm      int `json:"calm"`
	Happy     int `json:"happy"`
	Sad       int `json:"sad"`
	Danceable int `json:"danceable"`
}

// TimeOfDayDistribution splits recent plays into coarse day parts, each value
// a percentage of recent plays. Night covers 22:00-06:00.
type TimeOfDayDistribution struct {
	Morning   int `json:"morning"`
	Afternoon int `json:"afternoon"`
	Evening   int `json:"evening"`
	Night     int `json:"night"`
}

// TrackRepetition describes how often recent plays repeat the same track.
type TrackRepetition struct {
	UniqueTracks      int    `json:"uniqueTracks"`
	TotalPlays        int    `json:"totalPlays"`
	RepetitionRate    int    `json:"repetitionRate"`
	MostRepeatedName  string `json:"mostRepeatedName,omitempty"`
	MostRepeatedPlays int    `json:"mostRepeatedPlays,omitempty"`
}

// Habits is the temporal and diversity zone of the summary.
//
// TracksPerDay is nil when fewer than two recent plays exist; a zero value
// means the plays span no measurable time.
type Habits struct {
	HourlyHistogram     [24]int               `json:"hourlyHistogram"`
	DailyHistogram      [7]int                `json:"dailyHistogram"`
	MostActiveHour      int                   `json:"mostActiveHour"`
	MostActiveDay       int                   `json:"mostActiveDay"`
	ArtistDiversity     int                   `json:"artistDiversity"`
	GenreDiversity      int                   `json:"genreDiversity"`
	Consistency         int                   `json:"consistency"`
	TracksPerDay        *float64              `json:"tracksPerDay,omitempty"`
	MoodDistribution    MoodDistribution      `json:"moodDistribution"`
	TimeOfDay           TimeOfDayDistribution `json:"timeOfDay"`
	HerfindahlDiversity int                   `json:"herfindahlDiversity"`
	EnergyByHour        map[int]float64       `json:"energyByHour,omitempty"`
	Repetition          TrackRepetition       `json:"repetition"`
	StreakDays          int                   `json:"streakDays"`
}

// PersonaSeed is the cross-window zone feeding persona generation. Top-entity
// maps are keyed by TimeRange.
type PersonaSeed struct {
	TopArtists      map[TimeRange][]string `json:"topArtists"`
	TopTracks       map[TimeRange][]string `json:"topTracks"`
	LoyaltyScore    int                    `json:"loyaltyScore"`
	MainstreamScore int                    `json:"mainstreamScore"`
}
