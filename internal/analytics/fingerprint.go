package analytics

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/soundlens/soundlens/internal/models"
)

// canonicalSummary is the declared semantic subset of a Summary that feeds
// the fingerprint. Field order is fixed by the struct, so marshaling is
// canonical. Raw recent-play timestamps and the supplementary metrics
// (mood, spread, collaborations, energy by hour) are deliberately excluded:
// they churn without the listening pattern actually changing.
type canonicalSummary struct {
	TopArtists      []string            `json:"topArtists"`
	TopGenres       []string            `json:"topGenres"`
	AudioProfile    models.AudioProfile `json:"audioProfile"`
	ArtistDiversity int                 `json:"artistDiversity"`
	GenreDiversity  int                 `json:"genreDiversity"`
	Consistency     int                 `json:"consistency"`
	MostActiveHour  int                 `json:"mostActiveHour"`
	MostActiveDay   int                 `json:"mostActiveDay"`
	TracksPerDay    *float64            `json:"tracksPerDay"`
	LoyaltyScore    int                 `json:"loyaltyScore"`
	MainstreamScore int                 `json:"mainstreamScore"`
}

// Fingerprint derives the hex-encoded SHA-256 digest of the semantic subset
// of a summary. Summaries that agree on that subset always hash identically.
func Fingerprint(s *models.Summary) string {
	canonical := canonicalSummary{
		TopArtists:      make([]string, 0, len(s.Overview.TopArtists)),
		TopGenres:       make([]string, 0, len(s.Overview.TopGenres)),
		AudioProfile:    s.Overview.AudioProfile,
		ArtistDiversity: s.Habits.ArtistDiversity,
		GenreDiversity:  s.Habits.GenreDiversity,
		Consistency:     s.Habits.Consistency,
		MostActiveHour:  s.Habits.MostActiveHour,
		MostActiveDay:   s.Habits.MostActiveDay,
		TracksPerDay:    s.Habits.TracksPerDay,
		LoyaltyScore:    s.Persona.LoyaltyScore,
		MainstreamScore: s.Persona.MainstreamScore,
	}
	for _, a := range s.Overview.TopArtists {
		canonical.TopArtists = append(canonical.TopArtists, a.Name)
	}
	for _, g := range s.Overview.TopGenres {
		canonical.TopGenres = append(canonical.TopGenres, g.Name)
	}

	// Marshaling a fixed-order struct cannot fail for these field types.
	payload, _ := json.Marshal(canonical)
	digest := sha256.Sum256(payload)
	return hex.EncodeToString(digest[:])
}
