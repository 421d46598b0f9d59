package governmentstats

const (
	datatypeMean   = "04"
	datatypeP25    = "12"
	datatypeMedian = "13"
	datatypeP75    = "14"

	statusSucceeded = "REQUEST_SUCCEEDED"
	missingValue    = "-"
)

type seriesRequest struct {
	SeriesID        []string `json:"seriesid"`
	StartYear       string   `json:"startyear"`
	EndYear         string   `json:"endyear"`
	RegistrationKey string   `json:"registrationkey,omitempty"`
}

type seriesResponse struct {
	Status  string   `json:"status"`
	Message []string `json:"message"`
	Results struct {
		Series []series `json:"series"`
	} `json:"Results"`
}

type series struct {
	SeriesID string      `json:"seriesID"`
	Data     []dataPoint `json:"data"`
}

type dataPoint struct {
	Year   string `json:"year"`
	Period string `json:"period"`
	Value  string `json:"value"`
}

// wageStats holds one area's figures; nil fields were missing.
type wageStats struct {
	Year   int
	Mean   *float64
	P25    *float64
	Median *float64
	P75    *float64
}
