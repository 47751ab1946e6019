package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/smegrowth/profiler-cli/internal/model"
	"github.com/smegrowth/profiler-cli/internal/pipeline"
	"github.com/smegrowth/profiler-cli/internal/vocab"
)

var analyzeFile string

var analyzeCmd = &cobra.Command{
	Use:   "analyze [description]",
	Short: "Run the rule-only analysis pass on a description, no backend calls",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		form, err := formFromArgs(args, analyzeFile)
		if err != nil {
			return err
		}

		v := vocab.New()
		if cfg.Pipeline.VocabFile != "" {
			if err := v.LoadOverlay(cfg.Pipeline.VocabFile); err != nil {
				return eris.Wrapf(err, "load vocab overlay %s", cfg.Pipeline.VocabFile)
			}
		}

		builder := pipeline.NewBuilder(v, nil, cfg.Pipeline.Currency)
		return printJSON(builder.Analyze(form))
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFile, "file", "", "JSON file with the intake form")
	rootCmd.AddCommand(analyzeCmd)
}

// formFromArgs builds a form from either a positional description or a JSON
// form file.
func formFromArgs(args []string, file string) (model.FormData, error) {
	var form model.FormData
	if file != "" {
		raw, err := os.ReadFile(file)
		if err != nil {
			return form, eris.Wrapf(err, "read form file %s", file)
		}
		if err := json.Unmarshal(raw, &form); err != nil {
			return form, eris.Wrapf(err, "parse form file %s", file)
		}
	}
	if len(args) > 0 {
		form.Description = args[0]
	}
	if form.Description == "" {
		return form, eris.New("provide a description argument or --file with a description field")
	}
	return form, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
