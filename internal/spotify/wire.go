package spotify

import "time"

// Wire types mirror the provider's JSON payloads. They stay private to this
// package; mapper.go converts them into domain models.

type wireImage struct {
	URL string `json:"url"`
}

type wireArtistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type wireAlbum struct {
	Name   string      `json:"name"`
	Images []wireImage `json:"images"`
}

type wireTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Popularity int             `json:"popularity"`
	DurationMS int             `json:"duration_ms"`
	Album      wireAlbum       `json:"album"`
	Artists    []wireArtistRef `json:"artists"`
}

type wireTrackPage struct {
	Items []wireTrack `json:"items"`
}

type wireFullArtist struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Popularity int         `json:"popularity"`
	Genres     []string    `json:"genres"`
	Images     []wireImage `json:"images"`
}

type wireArtistPage struct {
	Items []wireFullArtist `json:"items"`
}

type wirePlayItem struct {
	Track    wireTrack `json:"track"`
	PlayedAt time.Time `json:"played_at"`
}

type wireRecentlyPlayed struct {
	Items []wirePlayItem `json:"items"`
}

type wireAudioFeature struct {
	ID               string  `json:"id"`
	Energy           float64 `json:"energy"`
	Valence          float64 `json:"valence"`
	Danceability     float64 `json:"danceability"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Speechiness      float64 `json:"speechiness"`
	Tempo            float64 `json:"tempo"`
}

type wireAudioFeaturePage struct {
	AudioFeatures []*wireAudioFeature `json:"audio_features"`
}

type wireProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}
