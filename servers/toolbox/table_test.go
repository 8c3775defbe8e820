package toolbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableQueryHead(t *testing.T) {
	result, err := TableQuery("head 3")
	require.NoError(t, err)

	rows, ok := result.([]Person)
	require.True(t, ok)
	require.Len(t, rows, 3)
	assert.Equal(t, "Alice", rows[0].Name)
}

func TestTableQueryHeadDefaults(t *testing.T) {
	result, err := TableQuery("head")
	require.NoError(t, err)
	assert.Len(t, result.([]Person), 5)

	// A count beyond the dataset returns everything.
	result, err = TableQuery("head 100")
	require.NoError(t, err)
	assert.Len(t, result.([]Person), len(demoDataset))
}

func TestTableQueryDescribe(t *testing.T) {
	result, err := TableQuery("describe")
	require.NoError(t, err)

	stats, ok := result.(map[string]columnStats)
	require.True(t, ok)

	age := stats["age"]
	assert.Equal(t, len(demoDataset), age.Count)
	assert.Equal(t, 23.0, age.Min)
	assert.Equal(t, 52.0, age.Max)
	assert.InDelta(t, 34.875, age.Mean, 0.001)

	score := stats["score"]
	assert.Equal(t, 58.7, score.Min)
	assert.Equal(t, 94.6, score.Max)
}

func TestTableQuerySort(t *testing.T) {
	result, err := TableQuery("sort age")
	require.NoError(t, err)

	rows := result.([]Person)
	assert.Equal(t, "Diana", rows[0].Name)
	assert.Equal(t, "George", rows[len(rows)-1].Name)

	result, err = TableQuery("sort score desc")
	require.NoError(t, err)
	rows = result.([]Person)
	assert.Equal(t, "Hana", rows[0].Name)

	result, err = TableQuery("sort name")
	require.NoError(t, err)
	rows = result.([]Person)
	assert.Equal(t, "Alice", rows[0].Name)

	_, err = TableQuery("sort salary")
	assert.ErrorContains(t, err, "unknown column")
}

func TestTableQueryFilter(t *testing.T) {
	result, err := TableQuery("filter score > 85")
	require.NoError(t, err)

	rows := result.([]Person)
	require.Len(t, rows, 3)
	for _, p := range rows {
		assert.Greater(t, p.Score, 85.0)
	}

	result, err = TableQuery("filter name == alice")
	require.NoError(t, err)
	rows = result.([]Person)
	require.Len(t, rows, 1)
	assert.Equal(t, "Alice", rows[0].Name)

	_, err = TableQuery("filter age ~ 30")
	assert.ErrorContains(t, err, "unknown operator")

	_, err = TableQuery("filter age > young")
	assert.ErrorContains(t, err, "not numeric")

	_, err = TableQuery("filter name > bob")
	assert.ErrorContains(t, err, "only supports ==")
}

func TestTableQueryErrors(t *testing.T) {
	_, err := TableQuery("")
	assert.ErrorContains(t, err, "empty command")

	_, err = TableQuery("pivot age")
	assert.ErrorContains(t, err, "unknown operation")

	_, err = TableQuery("head zero")
	assert.ErrorContains(t, err, "positive row count")

	_, err = TableQuery("sort")
	assert.ErrorContains(t, err, "expects a column")

	_, err = TableQuery("filter age >")
	assert.ErrorContains(t, err, "filter expects")
}
