package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tgedr/connectors/pkg/tablestorage"
)

func newTableCommand(rt *runtime) *cobra.Command {
	var table string

	cmd := &cobra.Command{
		Use:   "table",
		Short: "Azure Table Storage entities",
	}
	cmd.PersistentFlags().StringVar(&table, "table", "", "table name (default $AZURE_STORAGE_TABLE)")

	var entityJSON, entityFile string
	insert := &cobra.Command{
		Use:   "insert",
		Short: "Insert an entity",
		Example: `  connectors table insert --entity '{"PartitionKey":"US","RowKey":"42","Name":"Ada"}'
  connectors table insert --file entity.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw := []byte(entityJSON)
			if entityFile != "" {
				var err error
				if raw, err = readInput(cmd, entityFile); err != nil {
					return err
				}
			}
			if len(raw) == 0 {
				return errors.New("one of --entity or --file is required")
			}

			var entity tablestorage.Entity
			if err := json.Unmarshal(raw, &entity); err != nil {
				return fmt.Errorf("entity is not a JSON object: %w", err)
			}

			c, err := rt.app.Table(table)
			if err != nil {
				return err
			}
			stored, err := c.Insert(cmd.Context(), entity)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), stored)
		},
	}
	insert.Flags().StringVar(&entityJSON, "entity", "", "entity as a JSON object")
	insert.Flags().StringVarP(&entityFile, "file", "f", "", "read the entity from a file (- for stdin)")
	insert.MarkFlagsMutuallyExclusive("entity", "file")

	var partitionKey, rowKey string
	get := &cobra.Command{
		Use:   "get",
		Short: "Fetch entities by partition and/or row key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := rt.app.Table(table)
			if err != nil {
				return err
			}
			entity, err := c.Get(cmd.Context(), partitionKey, rowKey)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), entity)
		},
	}
	get.Flags().StringVar(&partitionKey, "partition-key", "", "PartitionKey to match")
	get.Flags().StringVar(&rowKey, "row-key", "", "RowKey to match")

	cmd.AddCommand(insert, get)
	return cmd
}
