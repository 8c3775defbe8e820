package sqlexplorer

import "github.com/google/jsonschema-go/jsonschema"

var querySchema = &jsonschema.Schema{
	Type:     "object",
	Required: []string{"query"},
	Properties: map[string]*jsonschema.Schema{
		"query": {
			Type:        "string",
			Description: "The SQL statement to execute.",
		},
	},
}

var emptySchema = &jsonschema.Schema{
	Type:       "object",
	Properties: map[string]*jsonschema.Schema{},
}

var describeTableSchema = &jsonschema.Schema{
	Type:     "object",
	Required: []string{"table_name"},
	Properties: map[string]*jsonschema.Schema{
		"table_name": {
			Type:        "string",
			Description: "Name of the table to describe.",
		},
	},
}

var appendInsightSchema = &jsonschema.Schema{
	Type:     "object",
	Required: []string{"insight"},
	Properties: map[string]*jsonschema.Schema{
		"insight": {
			Type:        "string",
			Description: "Business insight discovered during analysis.",
		},
	},
}
