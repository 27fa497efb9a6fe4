package domain

// YearPhrases holds the closing quotes, bucketed by how far the year has gone.
type YearPhrases struct {
	Early []string `json:"early"`
	Mid   []string `json:"mid"`
	Late  []string `json:"late"`
	Final []string `json:"final"`
}

// WeatherPhrases holds the commentary under the weather block.
type WeatherPhrases struct {
	Normal []string `json:"normal"`
	Error  []string `json:"error"`
}

// Phrases is the full set of phrase pools used to compose a daily message.
type Phrases struct {
	Year          YearPhrases    `json:"year"`
	FeelsLike     []string       `json:"feels_like"`
	Daylight      []string       `json:"daylight"`
	Weather       WeatherPhrases `json:"weather"`
	DaylightError []string       `json:"daylight_error"`
	Ritual        []string       `json:"ritual"`
}
