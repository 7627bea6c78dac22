package resolvelocation

import (
	"business-finder/internal/common/validation"
	"business-finder/internal/models"
)

func GetInputSchema() validation.JSONSchema {
	types := make([]string, 0, len(models.LocationTypes))
	for _, lt := range models.LocationTypes {
		types = append(types, string(lt))
	}

	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"location", "locationType"},
		Properties: map[string]validation.Property{
			"location": {
				Type:        "string",
				Description: "Postal code, address, city, state or country as typed by the user",
				MinLength:   validation.IntPtr(1),
				MaxLength:   validation.IntPtr(256),
			},
			"locationType": {
				Type:        "string",
				Description: "How to interpret the location",
				Enum:        types,
			},
		},
		// process variables carry unrelated keys
		AdditionalProperties: true,
	}
}
