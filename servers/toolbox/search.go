package toolbox

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

const duckDuckGoURL = "https://api.duckduckgo.com/"

type instantAnswer struct {
	AbstractText  string         `json:"AbstractText"`
	AbstractURL   string         `json:"AbstractURL"`
	RelatedTopics []relatedTopic `json:"RelatedTopics"`
}

type relatedTopic struct {
	Text     string         `json:"Text"`
	FirstURL string         `json:"FirstURL"`
	Topics   []relatedTopic `json:"Topics"`
}

// SearchWeb queries the DuckDuckGo Instant Answer API and returns a short
// textual summary. It prefers the abstract and falls back to related topics.
func (s *Server) SearchWeb(ctx context.Context, query string, maxResults int) (string, error) {
	q := url.Values{
		"q":             {query},
		"format":        {"json"},
		"no_html":       {"1"},
		"skip_disambig": {"1"},
	}
	var answer instantAnswer
	if err := s.getJSON(ctx, s.searchURL+"?"+q.Encode(), &answer); err != nil {
		return "", fmt.Errorf("search %q: %w", query, err)
	}

	if answer.AbstractText != "" {
		if answer.AbstractURL != "" {
			return answer.AbstractText + "\n\nSource: " + answer.AbstractURL, nil
		}
		return answer.AbstractText, nil
	}

	lines := collectTopics(answer.RelatedTopics, maxResults)
	if len(lines) == 0 {
		return "No results found.", nil
	}
	return strings.Join(lines, "\n"), nil
}

// collectTopics flattens nested related topics into at most max lines.
func collectTopics(topics []relatedTopic, max int) []string {
	var lines []string
	for _, t := range topics {
		if len(lines) >= max {
			break
		}
		if t.Text != "" {
			line := "- " + t.Text
			if t.FirstURL != "" {
				line += " (" + t.FirstURL + ")"
			}
			lines = append(lines, line)
			continue
		}
		for _, nested := range collectTopics(t.Topics, max-len(lines)) {
			lines = append(lines, nested)
		}
	}
	return lines
}
