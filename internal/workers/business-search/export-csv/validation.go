package exportcsv

import "business-finder/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"businesses"},
		Properties: map[string]validation.Property{
			"businesses": {
				Type:        "array",
				Description: "Business records to export",
				Items:       &validation.Property{Type: "object"},
			},
			"filters": {
				Type:        "object",
				Description: "Optional filters applied before export",
			},
			"locale": {
				Type:        "string",
				Description: "Column label language",
				Enum:        []string{"", "en", "es"},
			},
		},
		AdditionalProperties: true,
	}
}
