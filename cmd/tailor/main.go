package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/tailordocs/go-tailor/internal/config"
	"github.com/tailordocs/go-tailor/internal/llm"
	"github.com/tailordocs/go-tailor/internal/logger"
	"github.com/tailordocs/go-tailor/pkg/tailor"
)

var (
	cfgPath string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "tailor",
	Short: "Schema-driven table rewriting for Word documents",
	Long: `tailor inspects and rewrites the tables of a .docx document against a
JSON content schema, preserving all formatting it does not touch. It can
also tailor the schema itself against a job description first.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		logger.Init(cfg.Logger)
		return nil
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract <document.docx>",
	Short: "Extract the document's table and style structure to JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		docPath := args[0]
		outPath, _ := cmd.Flags().GetString("output")
		if outPath == "" {
			outPath = filepath.Join(filepath.Dir(docPath), tailor.SnapshotFileName)
		}

		t := tailor.New(tailor.WithLogger(logger.Logger))
		snapshot, err := t.ExtractStructure(docPath)
		if err != nil {
			return err
		}
		if err := snapshot.WriteJSON(outPath); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}

		logger.Logger.Info().
			Int("tables", len(snapshot.Tables)).
			Int("styles", len(snapshot.Styles)).
			Str("output", outPath).
			Msg("structure extracted")
		return nil
	},
}

var rewriteCmd = &cobra.Command{
	Use:   "rewrite <document.docx>",
	Short: "Rewrite the document's tables against a content schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		docPath := args[0]
		schemaPath, _ := cmd.Flags().GetString("schema")
		outDir, _ := cmd.Flags().GetString("output-dir")

		schema, err := tailor.LoadSchema(schemaPath)
		if err != nil {
			return err
		}
		outPath, err := prepareOutput(outDir, docPath)
		if err != nil {
			return err
		}

		t := tailor.New(tailor.WithLogger(logger.Logger))
		if err := t.RewriteDocument(docPath, schema, outPath); err != nil {
			return err
		}

		logger.Logger.Info().Str("output", outPath).Msg("document rewritten")
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run <document.docx>",
	Short: "Tailor the schema against a job description, then rewrite",
	Long: `run executes the full pipeline: extract keywords from the job
description, rewrite the schema's bullet points around them, save the
tailored schema next to the output, and rewrite the document with it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		docPath := args[0]
		schemaPath, _ := cmd.Flags().GetString("schema")
		jobPath, _ := cmd.Flags().GetString("job")
		outDir, _ := cmd.Flags().GetString("output-dir")

		schema, err := tailor.LoadSchema(schemaPath)
		if err != nil {
			return err
		}
		jobDescription, err := os.ReadFile(jobPath)
		if err != nil {
			return fmt.Errorf("read job description: %w", err)
		}
		outPath, err := prepareOutput(outDir, docPath)
		if err != nil {
			return err
		}

		chat, err := llm.NewChatModel(
			cfg.LLM.APIKey,
			cfg.LLM.APIURL,
			cfg.LLM.Model,
			time.Duration(cfg.LLM.TimeoutSeconds)*time.Second)
		if err != nil {
			return err
		}
		generator := llm.NewGenerator(chat, cfg.LLM.MaxAttempts)

		ctx := cmd.Context()
		keywords, err := generator.Keywords(ctx, string(jobDescription))
		if err != nil {
			return err
		}
		tailored, err := generator.TailorSchema(ctx, schema, keywords, string(jobDescription))
		if err != nil {
			return err
		}

		sidecar := filepath.Join(outDir, "tailored_schema.json")
		if err := writeSchema(sidecar, tailored); err != nil {
			return err
		}

		t := tailor.New(tailor.WithLogger(logger.Logger))
		if err := t.RewriteDocument(docPath, tailored, outPath); err != nil {
			return err
		}

		logger.Logger.Info().
			Str("schema", sidecar).
			Str("output", outPath).
			Msg("pipeline complete")
		return nil
	},
}

// prepareOutput creates the output directory and returns the output path,
// keeping the source document's base name.
func prepareOutput(outDir, docPath string) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	return filepath.Join(outDir, filepath.Base(docPath)), nil
}

func writeSchema(path string, schema *tailor.ContentSchema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tailored schema: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write tailored schema: %w", err)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Path to YAML config file")

	extractCmd.Flags().StringP("output", "o", "", "Snapshot path (default: document_structure.json next to the document)")

	rewriteCmd.Flags().StringP("schema", "s", "", "Path to the content schema JSON")
	rewriteCmd.Flags().String("output-dir", "output", "Directory for the rewritten document")
	_ = rewriteCmd.MarkFlagRequired("schema")

	runCmd.Flags().StringP("schema", "s", "", "Path to the content schema JSON")
	runCmd.Flags().StringP("job", "j", "", "Path to the job description text file")
	runCmd.Flags().String("output-dir", "output", "Directory for the tailored schema and rewritten document")
	_ = runCmd.MarkFlagRequired("schema")
	_ = runCmd.MarkFlagRequired("job")

	rootCmd.AddCommand(extractCmd, rewriteCmd, runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
