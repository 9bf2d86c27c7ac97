package cmd

import (
	"fmt"
	"os"

	"github.com/highlog/interviewer/internal/evidence"
	"github.com/highlog/interviewer/internal/llm"
	"github.com/highlog/interviewer/internal/objstore"
	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <record-id>",
	Short: "Chunk, classify and embed a student record",
	Long: "Read a student record from a local text file or from the configured S3 bucket, " +
		"split it into classified chunks and store them for evidence retrieval. " +
		"Re-ingesting a record replaces its chunks.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		key, _ := cmd.Flags().GetString("s3-key")
		upload, _ := cmd.Flags().GetString("upload")
		if (file == "") == (key == "") {
			return fmt.Errorf("exactly one of --file or --s3-key is required")
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err := newLogger(cmd, cfg)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		var bucket *objstore.Client
		if key != "" || upload != "" {
			if bucket, err = objstore.New(cfg.S3); err != nil {
				return fmt.Errorf("object storage: %w", err)
			}
		}

		var text string
		if file != "" {
			b, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read record: %w", err)
			}
			text = string(b)
		} else if text, err = bucket.ReadText(ctx, key); err != nil {
			return fmt.Errorf("read record %q: %w", key, err)
		}

		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		// Ingesting works without a model; chunks are then retrieved by category.
		var embedder llm.Embedder
		if cfg.LLM.Validate() == nil {
			if embedder, err = embedderFor(ctx, cfg, st, logger); err != nil {
				return err
			}
		}

		n, err := evidence.NewIngester(st.ChunkRepo(), embedder, cfg.Evidence, logger).Ingest(ctx, args[0], text)
		if err != nil {
			return fmt.Errorf("ingest record: %w", err)
		}

		if upload != "" {
			if err := bucket.PutText(ctx, upload, text); err != nil {
				return fmt.Errorf("upload record: %w", err)
			}
		}

		mode := "embedded"
		if embedder == nil {
			mode = "not embedded"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Record %s: %d chunks stored (%s).\n", args[0], n, mode)
		return nil
	},
}

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Browse student records in object storage",
}

var recordsListCmd = &cobra.Command{
	Use:   "ls",
	Short: "List record keys in the configured bucket",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		bucket, err := objstore.New(cfg.S3)
		if err != nil {
			return fmt.Errorf("object storage: %w", err)
		}
		keys, err := bucket.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("list records: %w", err)
		}
		if len(keys) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No records found.")
			return nil
		}
		for _, k := range keys {
			fmt.Fprintln(cmd.OutOrStdout(), k)
		}
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringP("file", "f", "", "Read the record from a local UTF-8 text file")
	ingestCmd.Flags().String("s3-key", "", "Read the record from this key in the S3 bucket")
	ingestCmd.Flags().String("upload", "", "Also store the record text under this S3 key")

	recordsCmd.AddCommand(recordsListCmd)
}
