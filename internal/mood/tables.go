package mood

// SceneLabels maps scene-classifier categories to moods. This is the table
// for the scene classification path; free-text tags use TagLabels.
var SceneLabels = newTable("scene", map[string]Mood{
	"beach":          Calm,
	"ocean":          Calm,
	"lake":           Calm,
	"forest":         Calm,
	"mountain":       Calm,
	"waterfall":      Calm,
	"garden":         Cozy,
	"living room":    Cozy,
	"bedroom":        Cozy,
	"kitchen":        Cozy,
	"cafe":           Cozy,
	"coffee shop":    Cozy,
	"library":        Cozy,
	"fireplace":      Cozy,
	"nightclub":      Party,
	"bar":            Party,
	"concert hall":   Party,
	"stage":          Party,
	"stadium":        Energetic,
	"gym":            Energetic,
	"ski slope":      Energetic,
	"skate park":     Energetic,
	"playground":     Happy,
	"amusement park": Happy,
	"carnival":       Happy,
	"picnic area":    Happy,
	"wedding":        Romantic,
	"restaurant":     Romantic,
	"sunset":         Romantic,
	"candlelight":    Romantic,
	"alley":          Mysterious,
	"cave":           Mysterious,
	"fog":            Mysterious,
	"ruins":          Mysterious,
	"graveyard":      Melancholy,
	"rain":           Melancholy,
	"abandoned":      Melancholy,
	"street":         Neutral,
	"office":         Neutral,
	"parking lot":    Neutral,
})

// TagLabels maps free-text descriptive tags to moods. This is the table for
// the tag classification path.
var TagLabels = newTable("tag", map[string]Mood{
	"bright":    Happy,
	"sunny":     Happy,
	"colorful":  Happy,
	"smiling":   Happy,
	"cheerful":  Happy,
	"peaceful":  Calm,
	"serene":    Calm,
	"quiet":     Calm,
	"soft":      Calm,
	"still":     Calm,
	"dynamic":   Energetic,
	"action":    Energetic,
	"fast":      Energetic,
	"sport":     Energetic,
	"vibrant":   Energetic,
	"dark":      Melancholy,
	"gloomy":    Melancholy,
	"lonely":    Melancholy,
	"grey":      Melancholy,
	"rainy":     Melancholy,
	"intimate":  Romantic,
	"warm":      Romantic,
	"couple":    Romantic,
	"roses":     Romantic,
	"shadow":    Mysterious,
	"foggy":     Mysterious,
	"night":     Mysterious,
	"hidden":    Mysterious,
	"crowd":     Party,
	"dancing":   Party,
	"neon":      Party,
	"lights":    Party,
	"cozy":      Cozy,
	"homely":    Cozy,
	"candle":    Cozy,
	"blanket":   Cozy,
	"plain":     Neutral,
	"ordinary":  Neutral,
})

// queryTemplates holds the per-mood search parameters. Every mood in the
// vocabulary must have an entry; CheckTables enforces this at startup.
var queryTemplates = map[Mood]QueryTemplate{
	Happy:      {Terms: "feel good upbeat", Genres: []string{"pop", "indie-pop"}},
	Calm:       {Terms: "calm acoustic chill", Genres: []string{"acoustic", "ambient", "chill"}},
	Energetic:  {Terms: "workout high energy", Genres: []string{"edm", "work-out", "dance"}},
	Melancholy: {Terms: "sad slow melancholy", Genres: []string{"sad", "singer-songwriter"}},
	Romantic:   {Terms: "love songs romantic", Genres: []string{"romance", "r-n-b", "soul"}},
	Mysterious: {Terms: "dark atmospheric cinematic", Genres: []string{"trip-hop", "ambient"}},
	Party:      {Terms: "party dance hits", Genres: []string{"party", "dance", "house"}},
	Cozy:       {Terms: "cozy warm acoustic", Genres: []string{"acoustic", "folk", "jazz"}},
	Neutral:    {Terms: "easy listening", Genres: []string{"pop", "chill"}},
}

// targetVectors holds the per-mood target audio features used for re-ranking.
// Attributes are a subset of valence, energy, danceability, acousticness and
// instrumentalness, all in [0,1]. Tempo is deliberately excluded: it is not
// normalized to [0,1] and would dominate the distance metric.
var targetVectors = map[Mood]map[string]float64{
	Happy:      {"valence": 0.9, "energy": 0.7, "danceability": 0.7},
	Calm:       {"valence": 0.5, "energy": 0.2, "acousticness": 0.7},
	Energetic:  {"valence": 0.7, "energy": 0.95, "danceability": 0.8},
	Melancholy: {"valence": 0.15, "energy": 0.3, "acousticness": 0.6},
	Romantic:   {"valence": 0.6, "energy": 0.4, "acousticness": 0.5, "danceability": 0.5},
	Mysterious: {"valence": 0.3, "energy": 0.45, "instrumentalness": 0.6},
	Party:      {"valence": 0.8, "energy": 0.9, "danceability": 0.9},
	Cozy:       {"valence": 0.6, "energy": 0.3, "acousticness": 0.8},
	Neutral:    {"valence": 0.5, "energy": 0.5, "danceability": 0.5},
}
