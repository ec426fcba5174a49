package forum

import (
	"context"

	"github.com/notmine/community-server/internal/models"
	"github.com/notmine/community-server/internal/repositories"
	"golang.org/x/sync/errgroup"
)

// Listing is everything the forum index needs in one shot.
type Listing struct {
	Categories []models.Category     `json:"categories"`
	Topics     []models.TopicSummary `json:"topics"`
}

// Loader fetches listing data from the stores.
type Loader struct {
	categories *repositories.Categories
	topics     *repositories.Topics
}

func NewLoader(categories *repositories.Categories, topics *repositories.Topics) *Loader {
	return &Loader{categories: categories, topics: topics}
}

// Load fetches categories and topics in parallel; the listing is ready only
// once both have completed. The topic order comes from the store (pinned
// first, then newest).
func (l *Loader) Load(ctx context.Context) (*Listing, error) {
	var listing Listing
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		categories, err := l.categories.List(ctx)
		if err != nil {
			return err
		}
		listing.Categories = categories
		return nil
	})
	g.Go(func() error {
		topics, err := l.topics.List(ctx)
		if err != nil {
			return err
		}
		listing.Topics = topics
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &listing, nil
}
