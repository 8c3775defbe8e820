package toolbox

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callRequest(args string) *mcp.CallToolRequest {
	return &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{Arguments: json.RawMessage(args)},
	}
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestHandleAdd(t *testing.T) {
	server := NewServer()

	res, err := server.handleAdd(context.Background(), callRequest(`{"a": 2.5, "b": 3}`))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Equal(t, "5.5", resultText(t, res))
}

func TestHandleAddMissingOperand(t *testing.T) {
	server := NewServer()

	res, err := server.handleAdd(context.Background(), callRequest(`{"a": 2}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleDatetime(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	server := NewServer()
	server.now = func() time.Time { return fixed }

	res, err := server.handleDatetime(context.Background(), callRequest(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01T12:30:00Z", resultText(t, res))
}

func TestFetchWeather(t *testing.T) {
	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Berlin", r.URL.Query().Get("name"))
		assert.Equal(t, "1", r.URL.Query().Get("count"))
		w.Write([]byte(`{"results": [{"name": "Berlin", "latitude": 52.52, "longitude": 13.41, "country": "Germany"}]}`))
	}))
	defer geo.Close()

	forecast := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("current_weather"))
		w.Write([]byte(`{"current_weather": {"temperature": 21.5, "windspeed": 12.0, "weathercode": 2, "time": "2025-06-01T12:00"}}`))
	}))
	defer forecast.Close()

	server := NewServer()
	server.geocodingURL = geo.URL
	server.forecastURL = forecast.URL

	weather, err := server.FetchWeather(context.Background(), "Berlin")
	require.NoError(t, err)
	assert.Equal(t, "Berlin", weather.Location)
	assert.Equal(t, "Germany", weather.Country)
	assert.Equal(t, 21.5, weather.Temperature)
	assert.Equal(t, "partly cloudy", weather.Condition)
}

func TestFetchWeatherUnknownCity(t *testing.T) {
	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"results": []}`))
	}))
	defer geo.Close()

	server := NewServer()
	server.geocodingURL = geo.URL

	_, err := server.FetchWeather(context.Background(), "Nowhereville")
	assert.ErrorContains(t, err, "no location found")
}

func TestSearchWebAbstract(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "golang", r.URL.Query().Get("q"))
		w.Write([]byte(`{"AbstractText": "Go is a programming language.", "AbstractURL": "https://go.dev"}`))
	}))
	defer ts.Close()

	server := NewServer()
	server.searchURL = ts.URL

	summary, err := server.SearchWeb(context.Background(), "golang", 5)
	require.NoError(t, err)
	assert.Contains(t, summary, "Go is a programming language.")
	assert.Contains(t, summary, "https://go.dev")
}

func TestSearchWebRelatedTopics(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"AbstractText": "", "RelatedTopics": [
			{"Text": "First topic", "FirstURL": "https://example.com/1"},
			{"Topics": [{"Text": "Nested topic", "FirstURL": "https://example.com/2"}]},
			{"Text": "Third topic", "FirstURL": "https://example.com/3"}
		]}`))
	}))
	defer ts.Close()

	server := NewServer()
	server.searchURL = ts.URL

	summary, err := server.SearchWeb(context.Background(), "anything", 2)
	require.NoError(t, err)
	assert.Equal(t, "- First topic (https://example.com/1)\n- Nested topic (https://example.com/2)", summary)
}

func TestSearchWebNoResults(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"AbstractText": "", "RelatedTopics": []}`))
	}))
	defer ts.Close()

	server := NewServer()
	server.searchURL = ts.URL

	summary, err := server.SearchWeb(context.Background(), "gibberish", 5)
	require.NoError(t, err)
	assert.Equal(t, "No results found.", summary)
}

func TestFetchHeadlines(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<?xml version="1.0"?>
<rss version="2.0"><channel><title>Test Feed</title>
<item><title>First story</title><link>https://news.example/1</link></item>
<item><title>Second story</title><link>https://news.example/2</link></item>
<item><title>Third story</title><link>https://news.example/3</link></item>
</channel></rss>`))
	}))
	defer ts.Close()

	server := NewServer(WithNewsFeedURL(ts.URL))

	headlines, err := server.FetchHeadlines(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, headlines, 2)
	assert.Equal(t, "First story", headlines[0].Title)
	assert.Equal(t, "https://news.example/1", headlines[0].Link)

	assert.Equal(t, "1. First story (https://news.example/1)\n2. Second story (https://news.example/2)",
		formatHeadlines(headlines))
}

func TestFetchHeadlinesBadFeed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("not xml at all {"))
	}))
	defer ts.Close()

	server := NewServer(WithNewsFeedURL(ts.URL))

	_, err := server.FetchHeadlines(context.Background(), 5)
	assert.ErrorContains(t, err, "parse feed")
}

func TestMCPServerRegistersTools(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	srv := NewServer().MCPServer("test")
	go func() { _ = srv.Run(ctx, serverTransport) }()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer session.Close()

	listed, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	require.NoError(t, err)

	names := make([]string, 0, len(listed.Tools))
	for _, tool := range listed.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"weather", "add", "current_datetime",
		"duckduckgo_search", "latest_news", "table_query",
	}, names)
}
