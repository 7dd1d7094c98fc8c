package analytics

import (
	"fmt"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/soundlens/soundlens/internal/models"
)

func track(id, name, artistID, artistName string, popularity int) models.Track {
	return models.Track{
		ID:         id,
		Name:       name,
		Artists:    []models.ArtistRef{{ID: artistID, Name: artistName}},
		Popularity: popularity,
	}
}

func artist(id, name string, genres ...string) models.Artist {
	return models.Artist{ID: id, Name: name, Genres: genres}
}

func play(trackID, trackName string, at time.Time) models.PlayRecord {
	return models.PlayRecord{
		TrackID:   trackID,
		TrackName: trackName,
		Artists:   []models.ArtistRef{{ID: "a-" + trackID, Name: "Artist " + trackID}},
		PlayedAt:  at,
	}
}

func fixtureRawData() *models.RawData {
	base := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	return &models.RawData{
		RecentPlays: []models.PlayRecord{
			play("t1", "Track One", base),
			play("t2", "Track Two", base.Add(-2*time.Hour)),
			play("t1", "Track One", base.Add(-5*time.Hour)),
			play("t3", "Track Three", base.Add(-26*time.Hour)),
		},
		TopTracks: map[models.TimeRange][]models.Track{
			models.TimeRangeShort: {
				track("t1", "Track One", "a1", "Alpha", 80),
				track("t2", "Track Two", "a1", "Alpha", 60),
				track("t3", "Track Three", "a2", "Beta", 40),
			},
			models.TimeRangeMedium: {
				track("t1", "Track One", "a1", "Alpha", 80),
			},
			models.TimeRangeLong: {
				track("t4", "Track Four", "a3", "Gamma", 20),
				track("t1", "Track One", "a1", "Alpha", 80),
			},
		},
		TopArtists: map[models.TimeRange][]models.Artist{
			models.TimeRangeShort: {
				artist("a1", "Alpha", "indie rock", "shoegaze"),
				artist("a2", "Beta", "indie rock"),
			},
			models.TimeRangeMedium: {
				artist("a1", "Alpha", "indie rock", "shoegaze"),
				artist("a3", "Gamma", "ambient"),
			},
			models.TimeRangeLong: {
				artist("a1", "Alpha", "indie rock", "shoegaze"),
			},
		},
		AudioFeatures: map[string]*models.AudioFeatures{
			"t1": {Energy: 0.8, Valence: 0.7, Danceability: 0.75, Acousticness: 0.2, Instrumentalness: 0.1, Speechiness: 0.05, Tempo: 120},
			"t2": {Energy: 0.3, Valence: 0.2, Danceability: 0.4, Acousticness: 0.6, Instrumentalness: 0.3, Speechiness: 0.15, Tempo: 90},
		},
	}
}

func TestExtract_Deterministic(t *testing.T) {
	t.Parallel()

	raw := fixtureRawData()
	first := Extract(raw)
	second := Extract(raw)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Extract is not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestExtract_AudioProfileAveraging(t *testing.T) {
	t.Parallel()

	summary := Extract(fixtureRawData())
	profile := summary.Overview.AudioProfile

	// Means over t1 and t2; t3 has no feature vector.
	want := models.AudioProfile{
		Energy:           55,
		Danceability:     58,
		Valence:          45,
		Acousticness:     40,
		Instrumentalness: 20,
		Speechiness:      10,
		Tempo:            105,
	}
	if profile != want {
		t.Errorf("AudioProfile = %+v, want %+v", profile, want)
	}
}

func TestExtract_DefaultAudioProfileWhenDenied(t *testing.T) {
	t.Parallel()

	raw := fixtureRawData()
	raw.AudioFeatures = nil

	summary := Extract(raw)
	if summary.Overview.AudioProfile != DefaultAudioProfile {
		t.Errorf("AudioProfile = %+v, want default %+v", summary.Overview.AudioProfile, DefaultAudioProfile)
	}

	want := models.AudioProfile{
		Energy: 65, Danceability: 60, Valence: 55,
		Acousticness: 30, Instrumentalness: 15, Speechiness: 10, Tempo: 120,
	}
	if DefaultAudioProfile != want {
		t.Errorf("DefaultAudioProfile = %+v, want %+v", DefaultAudioProfile, want)
	}
}

func TestExtract_GenreFrequencyAndTieOrder(t *testing.T) {
	t.Parallel()

	summary := Extract(fixtureRawData())
	genres := summary.Overview.TopGenres

	// a1 appears in short and medium but must only count once. "indie rock"
	// is counted for a1 and a2; "shoegaze" and "ambient" once each, and the
	// tie between them keeps first-encountered order.
	want := []models.GenreCount{
		{Name: "indie rock", Count: 2},
		{Name: "shoegaze", Count: 1},
		{Name: "ambient", Count: 1},
	}
	if !reflect.DeepEqual(genres, want) {
		t.Errorf("TopGenres = %+v, want %+v", genres, want)
	}
	if summary.Habits.GenreDiversity != 3 {
		t.Errorf("GenreDiversity = %d, want 3", summary.Habits.GenreDiversity)
	}
}

func TestExtract_DiversityAndConsistency(t *testing.T) {
	t.Parallel()

	summary := Extract(fixtureRawData())

	// 2 distinct primary artists over 3 short-window tracks.
	if got := summary.Habits.ArtistDiversity; got != 67 {
		t.Errorf("ArtistDiversity = %d, want 67", got)
	}
	// 2 distinct short primaries over 2 distinct long primaries.
	if got := summary.Habits.Consistency; got != 100 {
		t.Errorf("Consistency = %d, want 100", got)
	}
}

func TestExtract_PeakHourTieBreakLowestIndex(t *testing.T) {
	t.Parallel()

	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	raw := &models.RawData{
		RecentPlays: []models.PlayRecord{
			play("t1", "One", day.Add(7*time.Hour)),
			play("t2", "Two", day.Add(7*time.Hour+30*time.Minute)),
			play("t3", "Three", day.Add(21*time.Hour)),
			play("t4", "Four", day.Add(21*time.Hour+30*time.Minute)),
		},
	}

	summary := Extract(raw)
	if summary.Habits.HourlyHistogram[7] != 2 || summary.Habits.HourlyHistogram[21] != 2 {
		t.Fatalf("histogram = %v, want buckets 7 and 21 at 2", summary.Habits.HourlyHistogram)
	}
	if summary.Habits.MostActiveHour != 7 {
		t.Errorf("MostActiveHour = %d, want 7 (lowest tied index)", summary.Habits.MostActiveHour)
	}
}

func TestExtract_VelocityEdgeCases(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		plays []models.PlayRecord
		want  *float64
	}{
		{
			name:  "no plays leaves velocity undefined",
			plays: nil,
			want:  nil,
		},
		{
			name:  "single play leaves velocity undefined",
			plays: []models.PlayRecord{play("t1", "One", at)},
			want:  nil,
		},
		{
			name: "zero span yields zero",
			plays: []models.PlayRecord{
				play("t1", "One", at),
				play("t2", "Two", at),
			},
			want: floatPtr(0),
		},
		{
			name: "twelve hour span halves the count per day",
			plays: []models.PlayRecord{
				play("t1", "One", at),
				play("t2", "Two", at.Add(-6*time.Hour)),
				play("t3", "Three", at.Add(-12*time.Hour)),
			},
			want: floatPtr(6.0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			summary := Extract(&models.RawData{RecentPlays: tt.plays})
			got := summary.Habits.TracksPerDay
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("TracksPerDay = %v, want nil", *got)
			case tt.want != nil && got == nil:
				t.Errorf("TracksPerDay = nil, want %v", *tt.want)
			case tt.want != nil && got != nil && *got != *tt.want:
				t.Errorf("TracksPerDay = %v, want %v", *got, *tt.want)
			}
		})
	}
}

func TestExtract_LoyaltyScoreBounds(t *testing.T) {
	t.Parallel()

	makeArtists := func(ids ...string) []models.Artist {
		artists := make([]models.Artist, 0, len(ids))
		for _, id := range ids {
			artists = append(artists, artist(id, "Artist "+id))
		}
		return artists
	}

	tests := []struct {
		name                string
		short, medium, long []models.Artist
		want                int
	}{
		{
			name:   "no overlap",
			short:  makeArtists("a", "b"),
			medium: makeArtists("c"),
			long:   makeArtists("d"),
			want:   0,
		},
		{
			name:   "partial overlap",
			short:  makeArtists("a", "b", "c"),
			medium: makeArtists("a", "b", "x"),
			long:   makeArtists("b", "y", "a"),
			want:   20,
		},
		{
			name:   "full top ten overlap",
			short:  makeArtists("a", "b", "c", "d", "e", "f", "g", "h", "i", "j"),
			medium: makeArtists("j", "i", "h", "g", "f", "e", "d", "c", "b", "a"),
			long:   makeArtists("a", "b", "c", "d", "e", "f", "g", "h", "i", "j"),
			want:   100,
		},
		{
			name:   "eleventh artist does not count",
			short:  makeArtists("a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"),
			medium: makeArtists("k"),
			long:   makeArtists("k"),
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			raw := &models.RawData{
				TopArtists: map[models.TimeRange][]models.Artist{
					models.TimeRangeShort:  tt.short,
					models.TimeRangeMedium: tt.medium,
					models.TimeRangeLong:   tt.long,
				},
			}
			got := Extract(raw).Persona.LoyaltyScore
			if got != tt.want {
				t.Errorf("LoyaltyScore = %d, want %d", got, tt.want)
			}
			if got < 0 || got > 100 {
				t.Errorf("LoyaltyScore = %d, out of [0,100]", got)
			}
		})
	}
}

func TestExtract_MainstreamScoreFixedDenominator(t *testing.T) {
	t.Parallel()

	// Five tracks at popularity 80 still divide by twenty: sparse data is
	// penalized by design.
	tracks := make([]models.Track, 0, 5)
	for i := 0; i < 5; i++ {
		tracks = append(tracks, track(string(rune('a'+i)), "T", "ar", "Ar", 80))
	}
	raw := &models.RawData{
		TopTracks: map[models.TimeRange][]models.Track{models.TimeRangeShort: tracks},
	}

	if got := Extract(raw).Persona.MainstreamScore; got != 20 {
		t.Errorf("MainstreamScore = %d, want 20", got)
	}
}

func TestExtract_EndToEndMostActiveHour(t *testing.T) {
	t.Parallel()

	// 50 plays spanning exactly 24 hours. Hour 9 holds four plays including
	// both span endpoints; every other hour-of-day bucket holds two.
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	var plays []models.PlayRecord
	n := 0
	add := func(at time.Time) {
		n++
		plays = append(plays, play("t", "Track", at))
	}

	add(start)
	add(start.Add(20 * time.Minute))
	add(start.Add(40 * time.Minute))
	add(start.Add(24 * time.Hour))
	for hour := 10; hour < 24; hour++ {
		day := start.Truncate(24 * time.Hour)
		add(day.Add(time.Duration(hour) * time.Hour))
		add(day.Add(time.Duration(hour)*time.Hour + 30*time.Minute))
	}
	for hour := 0; hour < 9; hour++ {
		day := start.Truncate(24 * time.Hour).Add(24 * time.Hour)
		add(day.Add(time.Duration(hour) * time.Hour))
		add(day.Add(time.Duration(hour)*time.Hour + 30*time.Minute))
	}
	if n != 50 {
		t.Fatalf("fixture has %d plays, want 50", n)
	}

	summary := Extract(&models.RawData{RecentPlays: plays})

	if got := summary.Habits.MostActiveHour; got != 9 {
		t.Errorf("MostActiveHour = %d, want 9", got)
	}
	if got := summary.Habits.HourlyHistogram[9]; got != 4 {
		t.Errorf("hour 9 bucket = %d, want 4", got)
	}
	if summary.Habits.TracksPerDay == nil || *summary.Habits.TracksPerDay != 50.0 {
		t.Errorf("TracksPerDay = %v, want 50.0", summary.Habits.TracksPerDay)
	}
}

func TestExtract_TrackRepetition(t *testing.T) {
	t.Parallel()

	summary := Extract(fixtureRawData())
	rep := summary.Habits.Repetition

	if rep.TotalPlays != 4 || rep.UniqueTracks != 3 {
		t.Errorf("repetition = %+v, want 4 plays over 3 tracks", rep)
	}
	if rep.MostRepeatedName != "Track One" || rep.MostRepeatedPlays != 2 {
		t.Errorf("most repeated = %q x%d, want Track One x2", rep.MostRepeatedName, rep.MostRepeatedPlays)
	}
	if rep.RepetitionRate != 25 {
		t.Errorf("RepetitionRate = %d, want 25", rep.RepetitionRate)
	}
}

func TestExtract_ListeningStreak(t *testing.T) {
	t.Parallel()

	day := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	raw := &models.RawData{
		RecentPlays: []models.PlayRecord{
			play("t1", "One", day),
			play("t2", "Two", day.Add(-24*time.Hour)),
			play("t3", "Three", day.Add(-48*time.Hour)),
			play("t4", "Four", day.Add(-5*24*time.Hour)),
		},
	}

	if got := Extract(raw).Habits.StreakDays; got != 3 {
		t.Errorf("StreakDays = %d, want 3", got)
	}
}

func TestExtract_EmptyInputDoesNotPanic(t *testing.T) {
	t.Parallel()

	summary := Extract(&models.RawData{})
	if summary.Overview.AudioProfile != DefaultAudioProfile {
		t.Errorf("empty input should use the default audio profile")
	}
	if summary.Habits.TracksPerDay != nil {
		t.Errorf("empty input should leave velocity undefined")
	}
	if summary.Persona.LoyaltyScore != 0 || summary.Persona.MainstreamScore != 0 {
		t.Errorf("empty input scores = %d/%d, want 0/0", summary.Persona.LoyaltyScore, summary.Persona.MainstreamScore)
	}

	if got := Extract(nil); got == nil {
		t.Error("Extract(nil) returned nil")
	}
}

func TestExtract_AudioStatsSpread(t *testing.T) {
	t.Parallel()

	stats := Extract(fixtureRawData()).Overview.AudioStats
	if len(stats) != len(audioStatFeatures) {
		t.Fatalf("AudioStats has %d columns, want %d", len(stats), len(audioStatFeatures))
	}

	// Two vectors: energy 0.3 and 0.8.
	energy := stats["energy"]
	if !approx(energy.Mean, 0.55) || !approx(energy.Median, 0.55) {
		t.Errorf("energy mean/median = %v/%v, want 0.55/0.55", energy.Mean, energy.Median)
	}
	if !approx(energy.Std, math.Sqrt(0.125)) {
		t.Errorf("energy std = %v, want %v", energy.Std, math.Sqrt(0.125))
	}
	if !approx(energy.Min, 0.3) || !approx(energy.Max, 0.8) {
		t.Errorf("energy min/max = %v/%v, want 0.3/0.8", energy.Min, energy.Max)
	}

	tempo := stats["tempo"]
	if !approx(tempo.Mean, 105) || !approx(tempo.Min, 90) || !approx(tempo.Max, 120) {
		t.Errorf("tempo spread = %+v, want mean 105 min 90 max 120", tempo)
	}
}

func TestExtract_AudioStatsSingleVectorHasZeroStd(t *testing.T) {
	t.Parallel()

	raw := fixtureRawData()
	raw.AudioFeatures = map[string]*models.AudioFeatures{
		"t1": {Energy: 0.8, Valence: 0.7, Danceability: 0.75, Tempo: 120},
	}

	stats := Extract(raw).Overview.AudioStats
	if got := stats["energy"]; got.Std != 0 || !approx(got.Mean, 0.8) {
		t.Errorf("single-vector energy spread = %+v, want std 0 mean 0.8", got)
	}

	raw.AudioFeatures = nil
	if got := Extract(raw).Overview.AudioStats; got != nil {
		t.Errorf("AudioStats = %v, want nil without feature vectors", got)
	}
}

func TestExtract_Collaborations(t *testing.T) {
	t.Parallel()

	duo := func(id, name string, a, b models.ArtistRef) models.Track {
		return models.Track{ID: id, Name: name, Artists: []models.ArtistRef{a, b}}
	}
	alpha := models.ArtistRef{ID: "a1", Name: "Alpha"}
	beta := models.ArtistRef{ID: "a2", Name: "Beta"}
	gamma := models.ArtistRef{ID: "a3", Name: "Gamma"}

	raw := &models.RawData{
		TopTracks: map[models.TimeRange][]models.Track{
			models.TimeRangeShort: {
				duo("t1", "One", alpha, beta),
				// Reversed billing still counts as the same pair.
				duo("t2", "Two", beta, alpha),
				duo("t3", "Three", gamma, alpha),
				track("t4", "Four", "a1", "Alpha", 50),
			},
		},
	}

	want := []models.Collaboration{
		{Artists: [2]string{"Alpha", "Beta"}, Tracks: 2},
		{Artists: [2]string{"Alpha", "Gamma"}, Tracks: 1},
	}
	if got := Extract(raw).Overview.Collaborations; !reflect.DeepEqual(got, want) {
		t.Errorf("Collaborations = %+v, want %+v", got, want)
	}

	if got := Extract(fixtureRawData()).Overview.Collaborations; got != nil {
		t.Errorf("solo-artist tracks produced collaborations: %+v", got)
	}
}

func TestExtract_CollaborationsCapped(t *testing.T) {
	t.Parallel()

	var tracks []models.Track
	for i := 0; i < 8; i++ {
		lead := models.ArtistRef{ID: "lead", Name: "Lead"}
		guest := models.ArtistRef{ID: fmt.Sprintf("g%d", i), Name: fmt.Sprintf("Guest %d", i)}
		tracks = append(tracks, models.Track{
			ID:      fmt.Sprintf("t%d", i),
			Name:    fmt.Sprintf("Track %d", i),
			Artists: []models.ArtistRef{lead, guest},
		})
	}
	raw := &models.RawData{
		TopTracks: map[models.TimeRange][]models.Track{models.TimeRangeShort: tracks},
	}

	got := Extract(raw).Overview.Collaborations
	if len(got) != CollaborationCap {
		t.Fatalf("Collaborations length = %d, want %d", len(got), CollaborationCap)
	}
	// Equal counts keep first-encountered order.
	if got[0].Artists != [2]string{"Guest 0", "Lead"} {
		t.Errorf("first pair = %v, want [Guest 0 Lead]", got[0].Artists)
	}
}

func TestExtract_EnergyByHour(t *testing.T) {
	t.Parallel()

	// Plays at 08:00 (t1), 06:00 (t2), 03:00 (t1); t3 has no feature vector.
	got := Extract(fixtureRawData()).Habits.EnergyByHour
	want := map[int]float64{8: 0.8, 6: 0.3, 3: 0.8}
	if len(got) != len(want) {
		t.Fatalf("EnergyByHour = %v, want %v", got, want)
	}
	for hour, energy := range want {
		if !approx(got[hour], energy) {
			t.Errorf("EnergyByHour[%d] = %v, want %v", hour, got[hour], energy)
		}
	}
}

func TestExtract_EnergyByHourAveragesWithinHour(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 3, 4, 21, 0, 0, 0, time.UTC)
	raw := &models.RawData{
		RecentPlays: []models.PlayRecord{
			play("t1", "One", at),
			play("t2", "Two", at.Add(30*time.Minute)),
			play("t9", "Unknown", at.Add(45*time.Minute)),
		},
		AudioFeatures: map[string]*models.AudioFeatures{
			"t1": {Energy: 0.2},
			"t2": {Energy: 0.6},
		},
	}

	got := Extract(raw).Habits.EnergyByHour
	if !approx(got[21], 0.4) {
		t.Errorf("EnergyByHour[21] = %v, want 0.4", got[21])
	}

	raw.AudioFeatures = nil
	if got := Extract(raw).Habits.EnergyByHour; got != nil {
		t.Errorf("EnergyByHour = %v, want nil without feature vectors", got)
	}
}

func approx(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}

func floatPtr(v float64) *float64 { return &v }
