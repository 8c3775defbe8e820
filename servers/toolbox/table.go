package toolbox

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Person is one row of the demo dataset.
type Person struct {
	Name  string  `json:"name"`
	Age   int     `json:"age"`
	Score float64 `json:"score"`
}

// demoDataset mirrors the sample table the toolbox ships with.
var demoDataset = []Person{
	{Name: "Alice", Age: 34, Score: 88.5},
	{Name: "Bob", Age: 28, Score: 72.3},
	{Name: "Charlie", Age: 45, Score: 91.2},
	{Name: "Diana", Age: 23, Score: 79.8},
	{Name: "Evan", Age: 39, Score: 64.1},
	{Name: "Fiona", Age: 31, Score: 85.0},
	{Name: "George", Age: 52, Score: 58.7},
	{Name: "Hana", Age: 27, Score: 94.6},
}

// columnStats summarizes one numeric column.
type columnStats struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Std   float64 `json:"std"`
}

// TableQuery runs a simple operation against the demo dataset.
//
// Supported operations:
//
//	head <n>            first n rows
//	describe            summary statistics for numeric columns
//	sort <column> [desc]
//	filter <column> <op> <value>   with op one of > >= < <= ==
func TableQuery(command string) (any, error) {
	fields := strings.Fields(strings.TrimSpace(command))
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	switch strings.ToLower(fields[0]) {
	case "head":
		n := 5
		if len(fields) > 1 {
			if _, err := fmt.Sscanf(fields[1], "%d", &n); err != nil || n < 1 {
				return nil, fmt.Errorf("head expects a positive row count, got %q", fields[1])
			}
		}
		if n > len(demoDataset) {
			n = len(demoDataset)
		}
		return demoDataset[:n], nil

	case "describe":
		return map[string]columnStats{
			"age":   describeColumn(func(p Person) float64 { return float64(p.Age) }),
			"score": describeColumn(func(p Person) float64 { return p.Score }),
		}, nil

	case "sort":
		if len(fields) < 2 {
			return nil, fmt.Errorf("sort expects a column name")
		}
		return sortRows(fields[1], len(fields) > 2 && strings.EqualFold(fields[2], "desc"))

	case "filter":
		if len(fields) != 4 {
			return nil, fmt.Errorf("filter expects: filter <column> <op> <value>")
		}
		return filterRows(fields[1], fields[2], fields[3])

	default:
		return nil, fmt.Errorf("unknown operation %q, expected head, describe, sort, or filter", fields[0])
	}
}

func describeColumn(get func(Person) float64) columnStats {
	stats := columnStats{
		Count: len(demoDataset),
		Min:   math.Inf(1),
		Max:   math.Inf(-1),
	}
	var sum float64
	for _, p := range demoDataset {
		v := get(p)
		sum += v
		stats.Min = math.Min(stats.Min, v)
		stats.Max = math.Max(stats.Max, v)
	}
	stats.Mean = sum / float64(stats.Count)

	var sq float64
	for _, p := range demoDataset {
		d := get(p) - stats.Mean
		sq += d * d
	}
	stats.Std = math.Sqrt(sq / float64(stats.Count))
	return stats
}

func sortRows(column string, desc bool) ([]Person, error) {
	key, err := columnValue(column)
	if err != nil {
		return nil, err
	}
	rows := make([]Person, len(demoDataset))
	copy(rows, demoDataset)
	sort.SliceStable(rows, func(i, j int) bool {
		if desc {
			i, j = j, i
		}
		if column == "name" {
			return rows[i].Name < rows[j].Name
		}
		return key(rows[i]) < key(rows[j])
	})
	return rows, nil
}

func filterRows(column, op, value string) ([]Person, error) {
	if column == "name" {
		if op != "==" {
			return nil, fmt.Errorf("column 'name' only supports ==")
		}
		var rows []Person
		for _, p := range demoDataset {
			if strings.EqualFold(p.Name, value) {
				rows = append(rows, p)
			}
		}
		return rows, nil
	}

	key, err := columnValue(column)
	if err != nil {
		return nil, err
	}
	var threshold float64
	if _, err := fmt.Sscanf(value, "%g", &threshold); err != nil {
		return nil, fmt.Errorf("filter value %q is not numeric", value)
	}

	var match func(v float64) bool
	switch op {
	case ">":
		match = func(v float64) bool { return v > threshold }
	case ">=":
		match = func(v float64) bool { return v >= threshold }
	case "<":
		match = func(v float64) bool { return v < threshold }
	case "<=":
		match = func(v float64) bool { return v <= threshold }
	case "==":
		match = func(v float64) bool { return v == threshold }
	default:
		return nil, fmt.Errorf("unknown operator %q", op)
	}

	var rows []Person
	for _, p := range demoDataset {
		if match(key(p)) {
			rows = append(rows, p)
		}
	}
	return rows, nil
}

func columnValue(column string) (func(Person) float64, error) {
	switch strings.ToLower(column) {
	case "age":
		return func(p Person) float64 { return float64(p.Age) }, nil
	case "score":
		return func(p Person) float64 { return p.Score }, nil
	case "name":
		return func(Person) float64 { return 0 }, nil
	default:
		return nil, fmt.Errorf("unknown column %q, expected name, age, or score", column)
	}
}
