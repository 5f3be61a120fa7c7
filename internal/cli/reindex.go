package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/product_catalog/internal/es"
	"github.com/Skotchmaster/product_catalog/internal/models"
)

const reindexBatch = 500

func newReindexCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Copy every product into the Elasticsearch index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !a.cfg.ElasticsearchEnabled() {
				return errors.New("ES_URL is not set")
			}

			ctx, cancel := a.commandContext(cmd)
			defer cancel()

			client, err := es.NewClient(ctx, es.ClientConfig{
				URL:      a.cfg.ESURL,
				Username: a.cfg.ESUser,
				Password: a.cfg.ESPassword,
			}, a.logger)
			if err != nil {
				return err
			}

			indexer := &es.Indexer{Client: client, Index: a.cfg.ESIndex}
			if err := indexer.EnsureIndex(ctx); err != nil {
				return err
			}

			total := 0
			err = a.repo().EachProduct(ctx, reindexBatch, func(items []models.Product) error {
				for i := range items {
					if err := indexer.IndexProduct(ctx, &items[i]); err != nil {
						return err
					}
				}
				total += len(items)
				return nil
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d product(s) into %s\n", total, a.cfg.ESIndex)
			return nil
		},
	}
}
