package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/Egham-7/site-context/internal/config"
	"github.com/Egham-7/site-context/internal/models"
	"github.com/Egham-7/site-context/internal/services/auth"
	"github.com/Egham-7/site-context/pkg/server"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "ctxctl",
		Short: "Query site context from the command line",
		Long:  "Resolves site context and asks the configured AI provider using the same pipeline as the HTTP server.",
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file")

	rootCmd.AddCommand(
		askCmd(),
		schemaCmd(),
		importCmd(),
		tokenCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	config.LoadEnvFiles([]string{".env.local", ".env"})
	cfg, err := config.LoadFromFile(cfgFile)
	if err != nil {
		return nil, err
	}
	fiberlog.SetLevel(fiberlog.LevelWarn)
	return cfg, nil
}

func askCmd() *cobra.Command {
	var req models.ContextRequest
	var format string

	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Resolve context and ask a question about it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			services, err := server.Build(cfg, server.Options{})
			if err != nil {
				return err
			}
			defer services.Close()

			req.Format = models.Format(format)
			identity := models.Identity{
				ID:           "cli",
				Capabilities: []string{models.CapabilityReadSiteContext, models.CapabilityReadPrivatePosts},
			}
			envelope, err := services.Dispatcher.Dispatch(cmd.Context(), req, identity, "cli")
			if err != nil {
				return err
			}
			return printJSON(envelope)
		},
	}

	cmd.Flags().StringVar(&req.Identifier, "identifier", "multi", "document identifier (type-id) or multi")
	cmd.Flags().StringVar(&req.Prompt, "prompt", "", "question to ask; empty returns the context only")
	cmd.Flags().StringVar(&format, "format", "markdown", "markdown, plain or html")
	return cmd
}

func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the site structure overview",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			services, err := server.Build(cfg, server.Options{})
			if err != nil {
				return err
			}
			defer services.Close()

			fmt.Println(services.Dispatcher.SchemaOverview(cmd.Context(), "cli").Content)
			return nil
		},
	}
}

func importCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load documents from a YAML file into the document store",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}
			var docs []models.Document
			if err := yaml.Unmarshal(data, &docs); err != nil {
				return fmt.Errorf("parse %s: %w", file, err)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			services, err := server.Build(cfg, server.Options{})
			if err != nil {
				return err
			}
			defer services.Close()

			now := time.Now().UTC()
			for i := range docs {
				if docs[i].ModifiedAt.IsZero() {
					docs[i].ModifiedAt = now
				}
				if err := services.Documents.Save(cmd.Context(), &docs[i]); err != nil {
					return err
				}
			}
			fmt.Printf("imported %d documents\n", len(docs))
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "documents.yaml", "YAML list of documents")
	return cmd
}

func tokenCmd() *cobra.Command {
	var subject string
	var caps []string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			token, err := auth.IssueToken(cfg.Auth.JWTSecret, subject, caps, ttl)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "token subject")
	cmd.Flags().StringSliceVar(&caps, "caps", []string{models.CapabilityReadSiteContext}, "granted capabilities")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
