package spotify

import "github.com/soundlens/soundlens/internal/models"

func mapArtistRefs(in []wireArtistRef) []models.ArtistRef {
	out := make([]models.ArtistRef, 0, len(in))
	for _, a := range in {
		out = append(out, models.ArtistRef{ID: a.ID, Name: a.Name})
	}
	return out
}

func firstImageURL(images []wireImage) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}

func mapTrack(in wireTrack) models.Track {
	return models.Track{
		ID:         in.ID,
		Name:       in.Name,
		Artists:    mapArtistRefs(in.Artists),
		Album:      in.Album.Name,
		Popularity: in.Popularity,
		ImageURL:   firstImageURL(in.Album.Images),
	}
}

func mapTracks(in []wireTrack) []models.Track {
	out := make([]models.Track, 0, len(in))
	for _, t := range in {
		out = append(out, mapTrack(t))
	}
	return out
}

func mapArtists(in []wireFullArtist) []models.Artist {
	out := make([]models.Artist, 0, len(in))
	for _, a := range in {
		out = append(out, models.Artist{
			ID:         a.ID,
			Name:       a.Name,
			Popularity: a.Popularity,
			Genres:     a.Genres,
			ImageURL:   firstImageURL(a.Images),
		})
	}
	return out
}

func mapRecentPlays(in wireRecentlyPlayed) []models.PlayRecord {
	out := make([]models.PlayRecord, 0, len(in.Items))
	for _, item := range in.Items {
		out = append(out, models.PlayRecord{
			TrackID:    item.Track.ID,
			TrackName:  item.Track.Name,
			Artists:    mapArtistRefs(item.Track.Artists),
			Album:      item.Track.Album.Name,
			PlayedAt:   item.PlayedAt,
			DurationMS: item.Track.DurationMS,
		})
	}
	return out
}

func mapAudioFeatures(in wireAudioFeaturePage) map[string]*models.AudioFeatures {
	out := make(map[string]*models.AudioFeatures, len(in.AudioFeatures))
	for _, f := range in.AudioFeatures {
		if f == nil || f.ID == "" {
			// The provider returns null entries for unknown tracks.
			continue
		}
		out[f.ID] = &models.AudioFeatures{
			Energy:           f.Energy,
			Valence:          f.Valence,
			Danceability:     f.Danceability,
			Acousticness:     f.Acousticness,
			Instrumentalness: f.Instrumentalness,
			Speechiness:      f.Speechiness,
			Tempo:            f.Tempo,
		}
	}
	return out
}

func mapProfile(in wireProfile) *models.UserProfile {
	return &models.UserProfile{
		ID:          in.ID,
		DisplayName: in.DisplayName,
		Email:       in.Email,
	}
}
