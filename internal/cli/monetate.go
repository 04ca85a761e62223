package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tgedr/connectors/pkg/cryptox"
	"github.com/tgedr/connectors/pkg/monetate"
)

func newMonetateCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monetate",
		Short: "Monetate data API",
	}

	schemas := &cobra.Command{
		Use:   "schemas",
		Short: "List data schemas with row counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := rt.app.Monetate()
			if err != nil {
				return err
			}
			list, err := c.GetSchemas(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), list)
		},
	}

	get := &cobra.Command{
		Use:   "get SCHEMA ID",
		Short: "Fetch the rows of SCHEMA with id ID",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := rt.app.Monetate()
			if err != nil {
				return err
			}
			rows, err := c.GetRecord(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rows)
		},
	}

	var recordsFile string
	post := &cobra.Command{
		Use:   "post SCHEMA",
		Short: "Upsert records into SCHEMA",
		Long: `Upsert records into SCHEMA. The input is a JSON array of objects, or a
single object.`,
		Example: `  connectors monetate post "next buy reco" -f rows.json
  echo '{"id":"MCMID|0001","products":["ring"]}' | connectors monetate post segments -f -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, recordsFile)
			if err != nil {
				return err
			}
			records, err := parseRecords(raw)
			if err != nil {
				return err
			}

			c, err := rt.app.Monetate()
			if err != nil {
				return err
			}
			rows, err := c.PostRecords(cmd.Context(), args[0], records)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rows)
		},
	}
	post.Flags().StringVarP(&recordsFile, "file", "f", "-", "JSON records (- for stdin)")

	var (
		bits    int
		keyPath string
	)
	keygen := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an RSA key pair for API authentication",
		Long: `Generate an RSA key pair for API authentication.

The private key is written to --out; the public key is printed and is what
has to be registered for the API user.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if keyPath == "" {
				return errors.New("--out is required")
			}
			privPEM, err := cryptox.GenerateRSAKey(bits)
			if err != nil {
				return err
			}
			pubPEM, err := cryptox.PublicKeyPEM(privPEM)
			if err != nil {
				return err
			}
			if err := os.WriteFile(keyPath, privPEM, 0o600); err != nil {
				return fmt.Errorf("write private key: %w", err)
			}

			rt.app.Logger().Info("monetate key pair generated", "bits", bits, "private_key", keyPath)
			_, err = cmd.OutOrStdout().Write(pubPEM)
			return err
		},
	}
	keygen.Flags().IntVar(&bits, "bits", 2048, "RSA key size")
	keygen.Flags().StringVarP(&keyPath, "out", "o", "", "where to write the PEM private key")

	cmd.AddCommand(schemas, get, post, keygen)
	return cmd
}

// parseRecords accepts a JSON array of objects or a single object.
func parseRecords(raw []byte) ([]monetate.Record, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errors.New("no records given")
	}

	if raw[0] == '{' {
		var one monetate.Record
		if err := json.Unmarshal(raw, &one); err != nil {
			return nil, fmt.Errorf("records are not valid JSON: %w", err)
		}
		return []monetate.Record{one}, nil
	}

	var many []monetate.Record
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, fmt.Errorf("records are not valid JSON: %w", err)
	}
	return many, nil
}
