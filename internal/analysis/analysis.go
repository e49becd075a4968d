// Package analysis derives listening summaries from a catalog snapshot. Every
// function here is pure: it reads its inputs and returns fresh results.
package analysis

import (
	"time"

	"github.com/ademuri/spotify-insights/internal/catalog"
)

// GenerateReport runs every analysis over the snapshot. Sections without data
// are left out.
func GenerateReport(snap catalog.Snapshot, user string, loc *time.Location, now time.Time) *Report {
	report := &Report{Metadata: Overview(snap, user, loc, now)}

	if stats, ok := Summarize(snap.TopTracks); ok {
		report.Stats = &stats
	}
	if mood, ok := ProjectMood(snap.TopTracks); ok {
		report.Mood = &mood
	}
	if grid, ok := BuildHeatmap(snap.RecentPlays, loc); ok {
		summary := grid.Summary()
		report.Rituals = &summary
	}
	report.Timeline = BuildTimeline(snap.RecentPlays, loc)

	for _, p := range snap.Playlists {
		dna, ok := AnalyzePlaylist(snap.PlaylistTracks[p.ID], snap.Artists)
		if !ok {
			continue
		}
		dna.Playlist = p.Name
		report.Playlists = append(report.Playlists, dna)
	}

	return report
}

// Overview describes the account and how much data is stored for it, with
// the top artist and the most recent play.
func Overview(snap catalog.Snapshot, user string, loc *time.Location, now time.Time) ProfileMetadata {
	meta := ProfileMetadata{
		GeneratedDate:   now.In(loc).Format("2006-01-02"),
		User:            user,
		DisplayName:     snap.Profile.DisplayName,
		Country:         snap.Profile.Country,
		TopTrackCount:   len(snap.TopTracks),
		TopArtistCount:  len(snap.TopArtists),
		RecentPlayCount: len(snap.RecentPlays),
		PlaylistCount:   len(snap.Playlists),
	}
	if len(snap.TopArtists) > 0 {
		meta.TopArtist = snap.TopArtists[0].Name
	}
	if last, ok := LastPlayed(snap.RecentPlays); ok {
		meta.LastPlayed = refOf(last.Track)
		meta.LastPlayedAt = last.PlayedAt.In(loc).Format("2006-01-02 15:04")
	}
	return meta
}

// LastPlayed returns the most recent play. Ties keep the first occurrence.
func LastPlayed(plays []catalog.PlayEvent) (catalog.PlayEvent, bool) {
	if len(plays) == 0 {
		return catalog.PlayEvent{}, false
	}
	last := plays[0]
	for _, p := range plays[1:] {
		if p.PlayedAt.After(last.PlayedAt) {
			last = p
		}
	}
	return last, true
}
