package datavalidator

import "cost-analysis-engine/internal/common/validation"

// GovernmentSchema describes a BLS v2 style time series response.
var GovernmentSchema = validation.MustCompile(`{
	"type": "object",
	"required": ["status", "Results"],
	"properties": {
		"status": {"type": "string"},
		"message": {"type": "array", "items": {"type": "string"}},
		"Results": {
			"type": "object",
			"required": ["series"],
			"properties": {
				"series": {
					"type": "array",
					"items": {
						"type": "object",
						"required": ["seriesID", "data"],
						"properties": {
							"seriesID": {"type": "string", "minLength": 1},
							"data": {
								"type": "array",
								"items": {
									"type": "object",
									"required": ["year", "period", "value"],
									"properties": {
										"year": {"type": "string"},
										"period": {"type": "string"},
										"value": {"type": "string"}
									}
								}
							}
						}
					}
				}
			}
		}
	}
}`)

// CommercialSchema describes a compensation-survey estimate.
var CommercialSchema = validation.MustCompile(`{
	"type": "object",
	"required": ["matchedTitle", "median"],
	"properties": {
		"matchedTitle": {"type": "string"},
		"median": {"type": "number", "exclusiveMinimum": 0},
		"mean": {"type": ["number", "null"], "exclusiveMinimum": 0},
		"percentile25": {"type": ["number", "null"], "exclusiveMinimum": 0},
		"percentile75": {"type": ["number", "null"], "exclusiveMinimum": 0},
		"currency": {"type": "string"},
		"locationAdjustment": {"type": "number", "exclusiveMinimum": 0},
		"experienceAdjustment": {"type": "number", "exclusiveMinimum": 0},
		"sampleSize": {"type": "integer", "minimum": 0}
	}
}`)

// ChatCompletionSchema describes the subset of an OpenAI-compatible chat
// completion response the insight provider reads.
var ChatCompletionSchema = validation.MustCompile(`{
	"type": "object",
	"required": ["choices"],
	"properties": {
		"choices": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["message"],
				"properties": {
					"message": {
						"type": "object",
						"required": ["content"],
						"properties": {"content": {"type": "string"}}
					}
				}
			}
		}
	}
}`)

// InsightsSchema describes the JSON object the LLM is asked to return.
var InsightsSchema = validation.MustCompile(`{
	"type": "object",
	"required": ["summary", "recommendations"],
	"properties": {
		"summary": {"type": "string", "minLength": 1},
		"findings": {"type": "array", "items": {"type": "string"}},
		"recommendations": {"type": "array", "items": {"type": "string"}},
		"riskFactors": {"type": "array", "items": {"type": "string"}},
		"assumptions": {"type": "array", "items": {"type": "string"}},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1}
	}
}`)

// ProfileSchema is checked against profiles arriving from outer surfaces.
var ProfileSchema = validation.MustCompile(`{
	"type": "object",
	"required": ["occupation"],
	"properties": {
		"occupation": {"type": "string", "minLength": 1, "maxLength": 200, "pattern": "\\S"},
		"experience": {"type": "string", "maxLength": 100},
		"location": {"type": "string", "maxLength": 200},
		"industry": {"type": "string", "maxLength": 200},
		"salaryRange": {"type": "string", "maxLength": 200},
		"skills": {"type": ["array", "null"], "maxItems": 100, "items": {"type": "string"}}
	}
}`)
