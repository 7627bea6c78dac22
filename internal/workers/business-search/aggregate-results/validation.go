package aggregateresults

import "business-finder/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"keyword", "location", "locationType"},
		Properties: map[string]validation.Property{
			"keyword": {
				Type:        "string",
				Description: "Business type or name to search for",
				MinLength:   validation.IntPtr(1),
				MaxLength:   validation.IntPtr(256),
			},
			"location": {
				Type:        "object",
				Description: "Resolved location from the resolve step",
				Required:    []string{"lat", "lng"},
				Properties: map[string]validation.Property{
					"lat": {Type: "number", Minimum: validation.FloatPtr(-90), Maximum: validation.FloatPtr(90)},
					"lng": {Type: "number", Minimum: validation.FloatPtr(-180), Maximum: validation.FloatPtr(180)},
				},
			},
			"locationType": {
				Type:        "string",
				Description: "Location type; selects the search radius",
			},
		},
		AdditionalProperties: true,
	}
}
