package toolbox

import "github.com/google/jsonschema-go/jsonschema"

var weatherSchema = &jsonschema.Schema{
	Type:     "object",
	Required: []string{"city"},
	Properties: map[string]*jsonschema.Schema{
		"city": {
			Type:        "string",
			Description: "City name to look up, for example 'Berlin'.",
		},
	},
}

var addSchema = &jsonschema.Schema{
	Type:     "object",
	Required: []string{"a", "b"},
	Properties: map[string]*jsonschema.Schema{
		"a": {
			Type:        "number",
			Description: "First operand.",
		},
		"b": {
			Type:        "number",
			Description: "Second operand.",
		},
	},
}

var datetimeSchema = &jsonschema.Schema{
	Type:       "object",
	Properties: map[string]*jsonschema.Schema{},
}

var searchWebSchema = &jsonschema.Schema{
	Type:     "object",
	Required: []string{"query"},
	Properties: map[string]*jsonschema.Schema{
		"query": {
			Type:        "string",
			Description: "Search query text.",
		},
		"max_results": {
			Type:        "integer",
			Description: "Maximum number of result lines (default 5).",
		},
	},
}

var newsSchema = &jsonschema.Schema{
	Type: "object",
	Properties: map[string]*jsonschema.Schema{
		"limit": {
			Type:        "integer",
			Description: "Maximum number of headlines to return (default 5).",
		},
	},
}

var tableQuerySchema = &jsonschema.Schema{
	Type:     "object",
	Required: []string{"command"},
	Properties: map[string]*jsonschema.Schema{
		"command": {
			Type:        "string",
			Description: "Operation to run: 'head <n>', 'describe', 'sort <column> [desc]', or 'filter <column> <op> <value>'.",
		},
	},
}
