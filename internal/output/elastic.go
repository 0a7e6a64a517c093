package output

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	"projectlens/internal/models"
)

// DefaultIndex is the Elasticsearch index project records land in
const DefaultIndex = "apache-projects"

// ElasticStore indexes project records for full-text search
type ElasticStore struct {
	client *elasticsearch.Client
	index  string
}

// NewElasticStore creates a client against the given addresses
func NewElasticStore(addresses []string, index string) (*ElasticStore, error) {
	if index == "" {
		index = DefaultIndex
	}
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: addresses,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}
	return &ElasticStore{client: client, index: index}, nil
}

// IndexProject writes one record, using a slug of the project name as
// the document ID so reruns overwrite instead of duplicating
func (e *ElasticStore) IndexProject(ctx context.Context, p *models.Project) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode project %s: %w", p.Name, err)
	}

	docID := strings.ToLower(strings.ReplaceAll(p.Name, " ", "-"))

	res, err := e.client.Index(
		e.index,
		strings.NewReader(string(data)),
		e.client.Index.WithDocumentID(docID),
		e.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to index project %s: %w", p.Name, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("failed to index project %s: %s", p.Name, res.String())
	}
	return nil
}

// IndexAll indexes every record and returns the first error with how
// many records were indexed before it
func (e *ElasticStore) IndexAll(ctx context.Context, projects []*models.Project) (int, error) {
	for i, p := range projects {
		if err := e.IndexProject(ctx, p); err != nil {
			return i, err
		}
	}
	return len(projects), nil
}
