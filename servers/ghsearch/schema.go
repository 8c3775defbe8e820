package ghsearch

import "github.com/google/jsonschema-go/jsonschema"

var searchSchema = &jsonschema.Schema{
	Type: "object",
	Properties: map[string]*jsonschema.Schema{
		"name": {
			Type:        "string",
			Description: "Full or partial username to match against logins.",
		},
		"location": {
			Type:        "string",
			Description: "City, country, or region to filter by.",
		},
		"per_page": {
			Type:        "integer",
			Description: "Number of results to return (default 5).",
		},
	},
}

var userSchema = &jsonschema.Schema{
	Type:     "object",
	Required: []string{"login"},
	Properties: map[string]*jsonschema.Schema{
		"login": {
			Type:        "string",
			Description: "Exact GitHub login of the user to fetch.",
		},
	},
}
