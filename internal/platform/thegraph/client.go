package thegraph

import (
	"context"
	"fmt"
	"net/http"
	"time"

	graphql "github.com/hasura/go-graphql-client"
)

// IndexerRecord is one top-level allowlist entry: an indexer account and
// the operator addresses acting on its behalf.
type IndexerRecord struct {
	Address   string
	Operators []string
}

// Client queries a Graph Protocol subgraph for the indexer registry.
type Client struct {
	gql      *graphql.Client
	pageSize int
}

func NewClient(subgraphURL string, pageSize int) *Client {
	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}
	return &Client{
		gql:      graphql.NewClient(subgraphURL, httpClient),
		pageSize: pageSize,
	}
}

// FetchIndexers returns up to one page of indexer records. The page size
// is fixed at construction; the subgraph caps it at 1000 either way.
func (c *Client) FetchIndexers(ctx context.Context) ([]IndexerRecord, error) {
	var query struct {
		Indexers []struct {
			Account struct {
				ID        string `graphql:"id"`
				Operators []struct {
					ID string `graphql:"id"`
				} `graphql:"operators"`
			} `graphql:"account"`
		} `graphql:"indexers(first: $first)"`
	}

	vars := map[string]interface{}{
		"first": graphql.Int(c.pageSize),
	}

	if err := c.gql.Query(ctx, &query, vars); err != nil {
		return nil, fmt.Errorf("subgraph query: %w", err)
	}

	records := make([]IndexerRecord, 0, len(query.Indexers))
	for _, indexer := range query.Indexers {
		record := IndexerRecord{Address: indexer.Account.ID}
		for _, op := range indexer.Account.Operators {
			record.Operators = append(record.Operators, op.ID)
		}
		records = append(records, record)
	}
	return records, nil
}
