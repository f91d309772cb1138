package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/acheong08/threatlens/internal/config"
	"github.com/acheong08/threatlens/internal/server"
)

func newPreprocessCmd() *cobra.Command {
	var kindName string

	cmd := &cobra.Command{
		Use:   "preprocess --type <kind> <content|@file|->",
		Short: "Print the context that would be sent to the model",
		Long:  "Run only the enrichment step for the given input and print the resulting model context. No model call is made and no API key is needed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readContent(cmd, args)
			if err != nil {
				return err
			}
			kind, text, err := server.Validate(kindName, content)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			pipeline := server.NewPipeline(newPreprocessors(cfg), nil)
			enriched, err := pipeline.Preprocess(cmd.Context(), kind, text)
			if err != nil {
				return fmt.Errorf("preprocessing failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), enriched)
			return nil
		},
	}

	cmd.Flags().StringVarP(&kindName, "type", "t", "", kindFlagUsage)
	_ = cmd.MarkFlagRequired("type")

	return cmd
}
