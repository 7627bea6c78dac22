package filterresults

import "business-finder/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"businesses"},
		Properties: map[string]validation.Property{
			"businesses": {
				Type:        "array",
				Description: "Aggregated business records",
				Items:       &validation.Property{Type: "object"},
			},
			"filters": {
				Type:        "object",
				Description: "Name substring and rating threshold",
				Properties: map[string]validation.Property{
					"name":   {Type: "string", MaxLength: validation.IntPtr(256)},
					"rating": {Type: "string", Enum: []string{"", "all", "3+", "3.5+", "4+"}},
				},
			},
		},
		AdditionalProperties: true,
	}
}
