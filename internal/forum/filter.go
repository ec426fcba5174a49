// Package forum composes the category directory, topic store and reply store
// into the views a client renders, and owns the in-memory listing cache.
package forum

import (
	"sort"
	"strings"

	"github.com/notmine/community-server/internal/models"
)

// AllCategories is the sentinel meaning "do not filter by category".
const AllCategories = "all"

// Query is a client-side search over the fetched topic list.
type Query struct {
	Search   string
	Category string
}

// Filter returns the topics whose title or author username contains the
// search term (case-insensitive) and whose category matches. Pure and
// deterministic: it never reorders and never touches the backend.
func Filter(topics []models.TopicSummary, q Query) []models.TopicSummary {
	search := strings.ToLower(q.Search)
	out := make([]models.TopicSummary, 0, len(topics))
	for _, t := range topics {
		matchesSearch := search == "" ||
			strings.Contains(strings.ToLower(t.Title), search) ||
			strings.Contains(strings.ToLower(t.Author.Username), search)
		matchesCategory := q.Category == "" ||
			q.Category == AllCategories ||
			q.Category == t.Category.Name
		if matchesSearch && matchesCategory {
			out = append(out, t)
		}
	}
	return out
}

// SortTopics orders a listing in place: pinned topics before unpinned, newest
// first within each group.
func SortTopics(topics []models.TopicSummary) {
	sort.SliceStable(topics, func(i, j int) bool {
		if topics[i].IsPinned != topics[j].IsPinned {
			return topics[i].IsPinned
		}
		return topics[i].CreatedAt.After(topics[j].CreatedAt)
	})
}
