package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/acheong08/threatlens/internal/analysis"
	"github.com/acheong08/threatlens/internal/config"
	"github.com/acheong08/threatlens/internal/server"
)

// newAnalyzer builds the model side of the pipeline. Tests replace it.
var newAnalyzer = func(cfg *config.Config) server.Analyzer {
	return analysis.NewGateway(analysis.Config{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.LLMBaseURL,
	})
}

func newAnalyzeCmd() *cobra.Command {
	var (
		kindName   string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "analyze --type <kind> <content|@file|->",
		Short: "Analyze a code snippet, npm package or URL",
		Long:  "Enrich the input, send it to the configured model and print the risk verdict.",
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

			pipeline := server.NewPipeline(newPreprocessors(cfg), newAnalyzer(cfg))
			verdict, err := pipeline.Run(cmd.Context(), kind, text, nil)
			if err != nil {
				return err
			}

			if jsonOutput {
				data, err := json.MarshalIndent(server.ResultPayload{Type: kind, Result: verdict}, "", "  ")
				if err != nil {
					return fmt.Errorf("marshaling JSON: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			fmt.Fprint(cmd.OutOrStdout(), RenderVerdict(kind, verdict))
			return nil
		},
	}

	cmd.Flags().StringVarP(&kindName, "type", "t", "", kindFlagUsage)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}
