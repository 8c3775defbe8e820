package toolbox

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DefaultNewsFeedURL is the RSS feed used when none is configured.
const DefaultNewsFeedURL = "http://rss.cnn.com/rss/cnn_topstories.rss"

type rssFeed struct {
	Channel struct {
		Title string    `xml:"title"`
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title string `xml:"title"`
	Link  string `xml:"link"`
}

// Headline is a single news feed entry.
type Headline struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// FetchHeadlines retrieves up to limit headlines from the configured RSS feed.
func (s *Server) FetchHeadlines(ctx context.Context, limit int) ([]Headline, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.newsFeedURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}

	var feed rssFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	headlines := make([]Headline, 0, limit)
	for _, item := range feed.Channel.Items {
		if len(headlines) >= limit {
			break
		}
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		headlines = append(headlines, Headline{Title: title, Link: strings.TrimSpace(item.Link)})
	}
	return headlines, nil
}

// formatHeadlines renders headlines as a numbered list.
func formatHeadlines(headlines []Headline) string {
	if len(headlines) == 0 {
		return "No headlines available."
	}
	var b strings.Builder
	for i, h := range headlines {
		fmt.Fprintf(&b, "%d. %s", i+1, h.Title)
		if h.Link != "" {
			fmt.Fprintf(&b, " (%s)", h.Link)
		}
		if i < len(headlines)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
