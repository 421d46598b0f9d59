package compensationsurvey

type estimateRequest struct {
	JobTitle        string   `json:"jobTitle"`
	Location        string   `json:"location"`
	ExperienceLevel string   `json:"experienceLevel"`
	Skills          []string `json:"skills"`
}

type estimateResponse struct {
	MatchedTitle         string   `json:"matchedTitle"`
	Median               float64  `json:"median"`
	Mean                 *float64 `json:"mean"`
	Percentile25         *float64 `json:"percentile25"`
	Percentile75         *float64 `json:"percentile75"`
	Currency             string   `json:"currency"`
	LocationAdjustment   float64  `json:"locationAdjustment"`
	ExperienceAdjustment float64  `json:"experienceAdjustment"`
	SampleSize           int      `json:"sampleSize"`
}
