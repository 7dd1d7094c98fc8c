// Package analytics turns raw listening history into a deterministic Summary
// and derives the content fingerprint used for insight cache invalidation.
package analytics

import (
	"math"
	"sort"

	"github.com/soundlens/soundlens/internal/models"
)

const (
	// TopN is the size of the overview top lists.
	TopN = 10
	// MainstreamSampleSize is the denominator of the mainstream score. It is
	// applied even when fewer tracks exist, so sparse data scores lower.
	MainstreamSampleSize = 20
	// RecentPlayCap limits the overview recent-play list.
	RecentPlayCap = 20
	// CollaborationCap limits the co-credited artist pair list.
	CollaborationCap = 5
)

// audioStatFeatures are the feature columns given a per-column spread.
var audioStatFeatures = []string{"energy", "valence", "danceability", "tempo", "acousticness"}

// DefaultAudioProfile is substituted when no audio feature vectors are
// available, typically because the provider denied the feature resource.
var DefaultAudioProfile = models.AudioProfile{
	Energy:           65,
	Danceability:     60,
	Valence:          55,
	Acousticness:     30,
	Instrumentalness: 15,
	Speechiness:      10,
	Tempo:            120,
}

// Extract computes the Summary for one batch of raw listening data. The
// result depends only on the input: no clock reads, no randomness. Missing
// optional substructures degrade to documented defaults.
func Extract(raw *models.RawData) *models.Summary {
	if raw == nil {
		raw = &models.RawData{}
	}

	shortTracks := raw.TopTracks[models.TimeRangeShort]
	genres := genreFrequencies(raw.TopArtists)

	summary := &models.Summary{
		Overview: models.Overview{
			TopArtists:     rankArtists(raw.TopArtists[models.TimeRangeShort]),
			TopTracks:      rankTracks(shortTracks),
			TopGenres:      topGenres(genres),
			AudioProfile:   audioProfile(shortTracks, raw.AudioFeatures),
			AudioStats:     audioStats(raw.AudioFeatures),
			Collaborations: collaborations(shortTracks),
			RecentPlays:    recentPlays(raw.RecentPlays),
		},
	}

	summary.Habits = habits(raw, shortTracks, len(distinctGenres(genres)))
	summary.Persona = personaSeed(raw)
	return summary
}

func rankArtists(artists []models.Artist) []models.RankedItem {
	items := make([]models.RankedItem, 0, TopN)
	for i, a := range artists {
		if i >= TopN {
			break
		}
		items = append(items, models.RankedItem{Rank: i + 1, ID: a.ID, Name: a.Name})
	}
	return items
}

func rankTracks(tracks []models.Track) []models.RankedItem {
	items := make([]models.RankedItem, 0, TopN)
	for i, t := range tracks {
		if i >= TopN {
			break
		}
		items = append(items, models.RankedItem{Rank: i + 1, ID: t.ID, Name: t.Name})
	}
	return items
}

// genreFrequencies counts genre occurrences across the union of short- and
// medium-window top artists. Artists appearing in both windows contribute
// once. Insertion order is preserved for deterministic tie-breaking.
func genreFrequencies(topArtists map[models.TimeRange][]models.Artist) []models.GenreCount {
	seenArtist := make(map[string]bool)
	counts := make(map[string]int)
	var order []string

	for _, tr := range []models.TimeRange{models.TimeRangeShort, models.TimeRangeMedium} {
		for _, a := range topArtists[tr] {
			if seenArtist[a.ID] {
				continue
			}
			seenArtist[a.ID] = true
			for _, g := range a.Genres {
				if _, ok := counts[g]; !ok {
					order = append(order, g)
				}
				counts[g]++
			}
		}
	}

	result := make([]models.GenreCount, 0, len(order))
	for _, g := range order {
		result = append(result, models.GenreCount{Name: g, Count: counts[g]})
	}
	return result
}

// topGenres ranks by descending count; ties keep first-encountered order.
func topGenres(genres []models.GenreCount) []models.GenreCount {
	ranked := make([]models.GenreCount, len(genres))
	copy(ranked, genres)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > TopN {
		ranked = ranked[:TopN]
	}
	return ranked
}

func distinctGenres(genres []models.GenreCount) []string {
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		names = append(names, g.Name)
	}
	return names
}

// audioProfile averages the available feature vectors of the short-window
// top tracks. Proportional components scale to 0-100; tempo stays in BPM.
// With zero vectors the documented default profile is substituted.
func audioProfile(tracks []models.Track, features map[string]*models.AudioFeatures) models.AudioProfile {
	var sum models.AudioFeatures
	n := 0
	for _, t := range tracks {
		f := features[t.ID]
		if f == nil {
			continue
		}
		sum.Energy += f.Energy
		sum.Danceability += f.Danceability
		sum.Valence += f.Valence
		sum.Acousticness += f.Acousticness
		sum.Instrumentalness += f.Instrumentalness
		sum.Speechiness += f.Speechiness
		sum.Tempo += f.Tempo
		n++
	}
	if n == 0 {
		return DefaultAudioProfile
	}
	fn := float64(n)
	return models.AudioProfile{
		Energy:           roundScaled(sum.Energy / fn),
		Danceability:     roundScaled(sum.Danceability / fn),
		Valence:          roundScaled(sum.Valence / fn),
		Acousticness:     roundScaled(sum.Acousticness / fn),
		Instrumentalness: roundScaled(sum.Instrumentalness / fn),
		Speechiness:      roundScaled(sum.Speechiness / fn),
		Tempo:            int(math.Round(sum.Tempo / fn)),
	}
}

// audioStats computes mean, median, sample standard deviation, min, and max
// for each feature column across every available vector. Vectors are summed
// in sorted track-ID order so float accumulation stays deterministic.
func audioStats(features map[string]*models.AudioFeatures) map[string]models.FeatureSpread {
	ids := make([]string, 0, len(features))
	for id, f := range features {
		if f != nil {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	sort.Strings(ids)

	columns := make(map[string][]float64, len(audioStatFeatures))
	for _, id := range ids {
		f := features[id]
		for name, v := range map[string]float64{
			"energy":       f.Energy,
			"valence":      f.Valence,
			"danceability": f.Danceability,
			"tempo":        f.Tempo,
			"acousticness": f.Acousticness,
		} {
			columns[name] = append(columns[name], v)
		}
	}

	stats := make(map[string]models.FeatureSpread, len(audioStatFeatures))
	for _, name := range audioStatFeatures {
		stats[name] = spread(columns[name])
	}
	return stats
}

func spread(vals []float64) models.FeatureSpread {
	sort.Float64s(vals)
	n := float64(len(vals))

	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	mean := sum / n

	variance := 0.0
	for _, v := range vals {
		d := v - mean
		variance += d * d
	}
	std := 0.0
	if len(vals) > 1 {
		std = math.Sqrt(variance / (n - 1))
	}

	median := vals[len(vals)/2]
	if len(vals)%2 == 0 {
		median = (vals[len(vals)/2-1] + vals[len(vals)/2]) / 2
	}

	return models.FeatureSpread{
		Mean:   mean,
		Median: median,
		Std:    std,
		Min:    vals[0],
		Max:    vals[len(vals)-1],
	}
}

// collaborations counts co-credited artist pairs across the short-window top
// tracks and keeps the most frequent. Each pair is ordered lexically so the
// same duo counts once regardless of billing order; count ties keep
// first-encountered order.
func collaborations(tracks []models.Track) []models.Collaboration {
	counts := make(map[[2]string]int)
	var order [][2]string
	for _, t := range tracks {
		for i := 0; i < len(t.Artists); i++ {
			for j := i + 1; j < len(t.Artists); j++ {
				pair := [2]string{t.Artists[i].Name, t.Artists[j].Name}
				if pair[0] > pair[1] {
					pair[0], pair[1] = pair[1], pair[0]
				}
				if _, ok := counts[pair]; !ok {
					order = append(order, pair)
				}
				counts[pair]++
			}
		}
	}
	if len(order) == 0 {
		return nil
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > CollaborationCap {
		order = order[:CollaborationCap]
	}

	result := make([]models.Collaboration, 0, len(order))
	for _, pair := range order {
		result = append(result, models.Collaboration{Artists: pair, Tracks: counts[pair]})
	}
	return result
}

func recentPlays(plays []models.PlayRecord) []models.RecentPlay {
	recent := make([]models.RecentPlay, 0, RecentPlayCap)
	for i, p := range plays {
		if i >= RecentPlayCap {
			break
		}
		artist := ""
		if len(p.Artists) > 0 {
			artist = p.Artists[0].Name
		}
		recent = append(recent, models.RecentPlay{
			TrackName:  p.TrackName,
			ArtistName: artist,
			PlayedAt:   p.PlayedAt,
		})
	}
	return recent
}

func habits(raw *models.RawData, shortTracks []models.Track, genreCount int) models.Habits {
	h := models.Habits{GenreDiversity: genreCount}

	for _, p := range raw.RecentPlays {
		at := p.PlayedAt.UTC()
		h.HourlyHistogram[at.Hour()]++
		h.DailyHistogram[int(at.Weekday())]++
	}
	h.MostActiveHour = argmax(h.HourlyHistogram[:])
	h.MostActiveDay = argmax(h.DailyHistogram[:])

	shortPrimary := distinctPrimaryArtists(shortTracks)
	if len(shortTracks) > 0 {
		h.ArtistDiversity = roundRatio(float64(shortPrimary), float64(len(shortTracks)))
	}
	longPrimary := distinctPrimaryArtists(raw.TopTracks[models.TimeRangeLong])
	if longPrimary < 1 {
		longPrimary = 1
	}
	h.Consistency = roundRatio(float64(shortPrimary), float64(longPrimary))

	h.TracksPerDay = tracksPerDay(raw.RecentPlays)
	h.MoodDistribution = moodDistribution(shortTracks, raw.AudioFeatures)
	h.TimeOfDay = timeOfDay(h.HourlyHistogram, len(raw.RecentPlays))
	h.HerfindahlDiversity = herfindahlDiversity(shortTracks)
	h.EnergyByHour = energyByHour(raw.RecentPlays, raw.AudioFeatures)
	h.Repetition = trackRepetition(raw.RecentPlays)
	h.StreakDays = listeningStreak(raw.RecentPlays)
	return h
}

// argmax returns the first index attaining the maximum, so ties resolve to
// the lowest index.
func argmax(counts []int) int {
	best := 0
	for i, c := range counts {
		if c > counts[best] {
			best = i
		}
	}
	return best
}

func distinctPrimaryArtists(tracks []models.Track) int {
	seen := make(map[string]bool)
	for _, t := range tracks {
		if a := t.PrimaryArtist(); a.ID != "" {
			seen[a.ID] = true
		}
	}
	return len(seen)
}

// tracksPerDay derives listening velocity from the span between the oldest
// and newest recent play. Fewer than two records leaves it undefined; a zero
// span yields zero.
func tracksPerDay(plays []models.PlayRecord) *float64 {
	if len(plays) < 2 {
		return nil
	}
	oldest, newest := plays[0].PlayedAt, plays[0].PlayedAt
	for _, p := range plays[1:] {
		if p.PlayedAt.Before(oldest) {
			oldest = p.PlayedAt
		}
		if p.PlayedAt.After(newest) {
			newest = p.PlayedAt
		}
	}
	hours := newest.Sub(oldest).Hours()
	v := 0.0
	if hours > 0 {
		v = math.Round(float64(len(plays))/hours*24*10) / 10
	}
	return &v
}

// energyByHour averages the energy of recent plays whose track has a known
// feature vector, grouped by UTC hour. Hours with no matched plays are
// absent; with no matches at all the map is nil.
func energyByHour(plays []models.PlayRecord, features map[string]*models.AudioFeatures) map[int]float64 {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, p := range plays {
		f := features[p.TrackID]
		if f == nil {
			continue
		}
		hour := p.PlayedAt.UTC().Hour()
		sums[hour] += f.Energy
		counts[hour]++
	}
	if len(counts) == 0 {
		return nil
	}
	byHour := make(map[int]float64, len(counts))
	for hour, c := range counts {
		byHour[hour] = sums[hour] / float64(c)
	}
	return byHour
}

func moodDistribution(tracks []models.Track, features map[string]*models.AudioFeatures) models.MoodDistribution {
	var dist models.MoodDistribution
	total := 0
	var energetic, calm, happy, sad, danceable int
	for _, t := range tracks {
		f := features[t.ID]
		if f == nil {
			continue
		}
		total++
		if f.Energy > 0.6 {
			energetic++
		}
		if f.Energy < 0.4 {
			calm++
		}
		if f.Valence > 0.6 {
			happy++
		}
		if f.Valence < 0.4 {
			sad++
		}
		if f.Danceability > 0.7 {
			danceable++
		}
	}
	if total == 0 {
		return dist
	}
	dist.Energetic = percentOf(energetic, total)
	dist.Calm = percentOf(calm, total)
	dist.Happy = percentOf(happy, total)
	dist.Sad = percentOf(sad, total)
	dist.Danceable = percentOf(danceable, total)
	return dist
}

func timeOfDay(hourly [24]int, total int) models.TimeOfDayDistribution {
	var dist models.TimeOfDayDistribution
	if total == 0 {
		return dist
	}
	var morning, afternoon, evening, night int
	for hour, c := range hourly {
		switch {
		case hour >= 6 && hour < 12:
			morning += c
		case hour >= 12 && hour < 17:
			afternoon += c
		case hour >= 17 && hour < 22:
			evening += c
		default:
			night += c
		}
	}
	dist.Morning = percentOf(morning, total)
	dist.Afternoon = percentOf(afternoon, total)
	dist.Evening = percentOf(evening, total)
	dist.Night = percentOf(night, total)
	return dist
}

// herfindahlDiversity expresses how concentrated the short-window top tracks
// are across primary artists. Higher means more spread out.
func herfindahlDiversity(tracks []models.Track) int {
	counts := make(map[string]int)
	total := 0
	for _, t := range tracks {
		if a := t.PrimaryArtist(); a.ID != "" {
			counts[a.ID]++
			total++
		}
	}
	if total == 0 {
		return 0
	}
	herfindahl := 0.0
	for _, c := range counts {
		share := float64(c) / float64(total)
		herfindahl += share * share
	}
	return int((1 - herfindahl) * 100)
}

func trackRepetition(plays []models.PlayRecord) models.TrackRepetition {
	rep := models.TrackRepetition{TotalPlays: len(plays)}
	if len(plays) == 0 {
		return rep
	}
	counts := make(map[string]int)
	names := make(map[string]string)
	var order []string
	for _, p := range plays {
		if _, ok := counts[p.TrackID]; !ok {
			order = append(order, p.TrackID)
			names[p.TrackID] = p.TrackName
		}
		counts[p.TrackID]++
	}
	rep.UniqueTracks = len(counts)
	rep.RepetitionRate = percentOf(rep.TotalPlays-rep.UniqueTracks, rep.TotalPlays)

	// Ties go to the first-encountered track for determinism.
	for _, id := range order {
		if counts[id] > rep.MostRepeatedPlays {
			rep.MostRepeatedPlays = counts[id]
			rep.MostRepeatedName = names[id]
		}
	}
	return rep
}

// listeningStreak is the longest run of consecutive UTC days with at least
// one recent play.
func listeningStreak(plays []models.PlayRecord) int {
	if len(plays) == 0 {
		return 0
	}
	days := make(map[int64]bool)
	for _, p := range plays {
		days[p.PlayedAt.UTC().Unix()/86400] = true
	}
	ordered := make([]int64, 0, len(days))
	for d := range days {
		ordered = append(ordered, d)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	best, run := 1, 1
	for i := 1; i < len(ordered); i++ {
		if ordered[i] == ordered[i-1]+1 {
			run++
			if run > best {
				best = run
			}
		} else {
			run = 1
		}
	}
	return best
}

func personaSeed(raw *models.RawData) models.PersonaSeed {
	seed := models.PersonaSeed{
		TopArtists: make(map[models.TimeRange][]string, len(models.TimeRanges)),
		TopTracks:  make(map[models.TimeRange][]string, len(models.TimeRanges)),
	}
	for _, tr := range models.TimeRanges {
		seed.TopArtists[tr] = artistNames(raw.TopArtists[tr], TopN)
		seed.TopTracks[tr] = trackNames(raw.TopTracks[tr], TopN)
	}
	seed.LoyaltyScore = loyaltyScore(raw.TopArtists)
	seed.MainstreamScore = mainstreamScore(raw.TopTracks[models.TimeRangeShort])
	return seed
}

func artistNames(artists []models.Artist, limit int) []string {
	names := make([]string, 0, limit)
	for i, a := range artists {
		if i >= limit {
			break
		}
		names = append(names, a.Name)
	}
	return names
}

func trackNames(tracks []models.Track, limit int) []string {
	names := make([]string, 0, limit)
	for i, t := range tracks {
		if i >= limit {
			break
		}
		names = append(names, t.Name)
	}
	return names
}

// loyaltyScore measures how many of the short-window top-10 artists also
// appear in both the medium- and long-window top-10 sets, out of ten.
func loyaltyScore(topArtists map[models.TimeRange][]models.Artist) int {
	short := artistIDSet(topArtists[models.TimeRangeShort], TopN)
	medium := artistIDSet(topArtists[models.TimeRangeMedium], TopN)
	long := artistIDSet(topArtists[models.TimeRangeLong], TopN)

	overlap := 0
	for id := range short {
		if medium[id] && long[id] {
			overlap++
		}
	}
	return roundRatio(float64(overlap), float64(TopN))
}

func artistIDSet(artists []models.Artist, limit int) map[string]bool {
	set := make(map[string]bool, limit)
	for i, a := range artists {
		if i >= limit {
			break
		}
		set[a.ID] = true
	}
	return set
}

// mainstreamScore averages the popularity of the top-20 short-window tracks.
// The denominator stays 20 even for shorter lists, penalizing sparse data.
func mainstreamScore(tracks []models.Track) int {
	sum := 0
	for i, t := range tracks {
		if i >= MainstreamSampleSize {
			break
		}
		sum += t.Popularity
	}
	return int(math.Round(float64(sum) / float64(MainstreamSampleSize)))
}

// roundScaled maps a [0,1] proportion to a rounded 0-100 integer.
func roundScaled(v float64) int {
	return int(math.Round(v * 100))
}

// roundRatio rounds n/d expressed as a percentage.
func roundRatio(n, d float64) int {
	if d == 0 {
		return 0
	}
	return int(math.Round(n / d * 100))
}

// percentOf truncates n/total as a whole percentage, matching the original
// engine's integer conversion.
func percentOf(n, total int) int {
	if total == 0 {
		return 0
	}
	return int(float64(n) / float64(total) * 100)
}
