package analysis

import (
	"math"

	"github.com/ademuri/spotify-insights/internal/catalog"
)

const (
	// moodSampleSize is how many leading tracks the projection looks at.
	moodSampleSize = 20
	// referenceYear anchors the acousticness ramp. Tracks without a release
	// year are projected as if released in this year.
	referenceYear = 2020
)

// MoodFeature is a synthetic affect estimate derived from catalog metadata
// and list position. It is not measured from audio.
type MoodFeature struct {
	Track        *TrackRef `yaml:"track"`
	Energy       float64   `yaml:"energy"`
	Valence      float64   `yaml:"valence"`
	Acousticness float64   `yaml:"acousticness"`
	Danceability float64   `yaml:"danceability"`
	Tempo        float64   `yaml:"tempo"`
	Loudness     float64   `yaml:"loudness"`
	ReleaseYear  int       `yaml:"release_year"`
}

// MoodLabel is one outcome of mood classification.
type MoodLabel struct {
	Name  string `yaml:"name"`
	Color string `yaml:"color"`
	Emoji string `yaml:"emoji"`
}

// MoodRule matches averaged energy and valence.
type MoodRule struct {
	Matches func(energy, valence float64) bool
	Label   MoodLabel
}

// MoodRules is evaluated in order; the first match wins. The last rule
// always matches.
var MoodRules = []MoodRule{
	{
		Matches: func(e, v float64) bool { return v > 0.7 && e > 0.7 },
		Label:   MoodLabel{Name: "Energetic & Happy", Color: "#10b981", Emoji: "🎉"},
	},
	{
		Matches: func(e, v float64) bool { return v > 0.7 && e < 0.3 },
		Label:   MoodLabel{Name: "Calm & Peaceful", Color: "#3b82f6", Emoji: "😌"},
	},
	{
		Matches: func(e, v float64) bool { return v < 0.3 && e > 0.7 },
		Label:   MoodLabel{Name: "Intense & Dark", Color: "#e11d48", Emoji: "🔥"},
	},
	{
		Matches: func(e, v float64) bool { return v < 0.3 && e < 0.3 },
		Label:   MoodLabel{Name: "Melancholic", Color: "#6b7280", Emoji: "😔"},
	},
	{
		Matches: func(e, v float64) bool { return v > 0.5 },
		Label:   MoodLabel{Name: "Positive Vibes", Color: "#f59e42", Emoji: "😊"},
	},
	{
		Matches: func(e, v float64) bool { return true },
		Label:   MoodLabel{Name: "Neutral", Color: "#8b5cf6", Emoji: "😐"},
	},
}

// ClassifyMood applies MoodRules to an averaged energy and valence.
func ClassifyMood(energy, valence float64) MoodLabel {
	for _, r := range MoodRules {
		if r.Matches(energy, valence) {
			return r.Label
		}
	}
	return MoodRules[len(MoodRules)-1].Label
}

type Mood struct {
	Features []MoodFeature `yaml:"features"`
	Dominant MoodLabel     `yaml:"dominant_mood"`

	// Averages as whole percentages.
	AverageEnergy  int `yaml:"average_energy"`
	AverageValence int `yaml:"average_valence"`
	AverageTempo   int `yaml:"average_tempo"`

	// DominantEra is formatted like "1990s", or "Unknown".
	DominantEra string `yaml:"dominant_era"`
}

// ProjectMood derives mood features for the first tracks of a ranked list and
// classifies the overall mood.
func ProjectMood(tracks []catalog.Track) (Mood, bool) {
	if len(tracks) == 0 {
		return Mood{}, false
	}
	if len(tracks) > moodSampleSize {
		tracks = tracks[:moodSampleSize]
	}

	var mood Mood
	var energySum, valenceSum, tempoSum float64
	eras := newLeader()
	for i, t := range tracks {
		f := projectFeature(i, t)
		mood.Features = append(mood.Features, f)
		energySum += f.Energy
		valenceSum += f.Valence
		tempoSum += f.Tempo
		if _, ok := t.Album.ReleaseYear(); ok {
			eras.add(decadeOf(f.ReleaseYear))
		}
	}

	n := float64(len(mood.Features))
	mood.Dominant = ClassifyMood(energySum/n, valenceSum/n)
	mood.AverageEnergy = int(math.Round(100 * energySum / n))
	mood.AverageValence = int(math.Round(100 * valenceSum / n))
	mood.AverageTempo = int(math.Round(100 * tempoSum / n))

	mood.DominantEra = DecadeLabel(UnknownDecade)
	if decade, _, ok := eras.result(); ok {
		mood.DominantEra = DecadeLabel(decade)
	}
	return mood, true
}

func projectFeature(i int, t catalog.Track) MoodFeature {
	year, ok := t.Album.ReleaseYear()
	if !ok {
		year = referenceYear
	}
	energy := float64(t.Popularity) / 100
	minutes := float64(t.DurationMs) / 60000

	return MoodFeature{
		Track:        refOf(t),
		Energy:       energy,
		Valence:      1 - float64(i)/moodSampleSize,
		Acousticness: math.Max(0, float64(referenceYear-year)/50),
		Danceability: energy*0.8 + 0.2,
		Tempo:        clamp(4-minutes/60, 0.3, 1),
		Loudness:     math.Min(1, (energy+float64(year-1990)/100)*0.8),
		ReleaseYear:  year,
	}
}

// ValenceHue maps valence onto a hue in degrees, from blue (220) at 0 to
// green (90) at 1.
func ValenceHue(valence float64) float64 {
	return 220 + valence*(90-220)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
