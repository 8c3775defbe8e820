package sqlexplorer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Insight is one recorded business insight.
type Insight struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// AppendInsight records an insight and returns its ID.
func (s *Store) AppendInsight(ctx context.Context, text string) (string, error) {
	id := ulid.Make().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO insights (id, insight, created_at) VALUES (?, ?, ?)`,
		id, text, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("append insight: %w", err)
	}
	return id, nil
}

// ListInsights returns all insights in append order. ULIDs sort
// lexicographically by creation time.
func (s *Store) ListInsights(ctx context.Context) ([]Insight, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, insight, created_at FROM insights ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var insights []Insight
	for rows.Next() {
		var (
			in      Insight
			created string
		)
		if err := rows.Scan(&in.ID, &in.Text, &created); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, created); err == nil {
			in.CreatedAt = t
		}
		insights = append(insights, in)
	}
	return insights, rows.Err()
}

// SynthesizeMemo renders the running insights memo served at memo://insights.
func (s *Store) SynthesizeMemo(ctx context.Context) (string, error) {
	insights, err := s.ListInsights(ctx)
	if err != nil {
		return "", err
	}
	if len(insights) == 0 {
		return "No business insights have been recorded yet.", nil
	}

	var b strings.Builder
	b.WriteString("Business Insights Memo\n\nKey Insights:\n")
	for _, in := range insights {
		b.WriteString("- ")
		b.WriteString(in.Text)
		b.WriteString("\n")
	}
	if len(insights) > 1 {
		fmt.Fprintf(&b, "\nSummary:\n%d insights suggest strategic opportunities.", len(insights))
	}
	return b.String(), nil
}
