package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ailegion/database-plugins/pkg/action"
	"github.com/ailegion/database-plugins/pkg/config"
	"github.com/ailegion/database-plugins/pkg/dialect"
	"github.com/ailegion/database-plugins/pkg/driverreg"
	"github.com/ailegion/database-plugins/pkg/logger"
	"github.com/ailegion/database-plugins/pkg/source/sqlsource"
)

var version = "0.1.0"

func main() {
	var logLevel string
	var scope string

	root := &cobra.Command{
		Use:   "dbcore",
		Short: "Database connectivity core CLI",
		Long: `dbcore exercises the database connectivity core: preview query results
as structured records, run the argument setter against a configuration
table, or execute a post-run query action.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Init(logger.Config{Level: logLevel, Encoding: "json"})
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "error", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&scope, "scope", "cli", "Driver registration scope token")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dbcore v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "dialects",
		Short: "List supported database dialects",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Supported dialects:")
			for _, name := range dialect.Names() {
				fmt.Printf("  - %s\n", name)
			}
		},
	})

	var previewConfigFile string
	var previewRows int
	var previewTimeout time.Duration
	previewCmd := &cobra.Command{
		Use:   "preview",
		Short: "Stream query results as JSON records",
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg config.SourceConfig
			if err := loadConfig(previewConfigFile, &cfg); err != nil {
				return err
			}
			return runPreview(&cfg, driverreg.Scope(scope), previewRows, previewTimeout)
		},
	}
	previewCmd.Flags().StringVarP(&previewConfigFile, "config", "c", "", "Path to source configuration YAML file (required)")
	previewCmd.Flags().IntVarP(&previewRows, "rows", "n", 10, "Maximum number of rows to print")
	previewCmd.Flags().DurationVar(&previewTimeout, "timeout", 5*time.Minute, "Preview timeout")
	_ = previewCmd.MarkFlagRequired("config")
	root.AddCommand(previewCmd)

	var argumentsConfigFile string
	argumentsCmd := &cobra.Command{
		Use:   "arguments",
		Short: "Read runtime arguments from a configuration table",
		Long: `Executes the configured selection query, which must return exactly one
row, and prints the resulting argument.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg config.ArgumentSetterConfig
			if err := loadConfig(argumentsConfigFile, &cfg); err != nil {
				return err
			}
			setter, err := action.NewArgumentSetter(&cfg, driverreg.Scope(scope))
			if err != nil {
				return err
			}
			sink := printingArguments{}
			return setter.Run(cmd.Context(), sink)
		},
	}
	argumentsCmd.Flags().StringVarP(&argumentsConfigFile, "config", "c", "", "Path to argument setter YAML file (required)")
	_ = argumentsCmd.MarkFlagRequired("config")
	root.AddCommand(argumentsCmd)

	var queryConfigFile string
	var succeeded bool
	queryCmd := &cobra.Command{
		Use:   "query",
		Short: "Execute a post-run query action",
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg config.QueryActionConfig
			if err := loadConfig(queryConfigFile, &cfg); err != nil {
				return err
			}
			qa, err := action.NewQueryAction(&cfg, driverreg.Scope(scope))
			if err != nil {
				return err
			}
			return qa.Run(cmd.Context(), succeeded)
		},
	}
	queryCmd.Flags().StringVarP(&queryConfigFile, "config", "c", "", "Path to query action YAML file (required)")
	queryCmd.Flags().BoolVar(&succeeded, "succeeded", true, "Whether the preceding run succeeded")
	_ = queryCmd.MarkFlagRequired("config")
	root.AddCommand(queryCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads a YAML config file into the target struct.
func loadConfig(filename string, target interface{}) error {
	v := viper.New()
	v.SetConfigFile(filename)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}
	decode := func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
		dc.Squash = true
	}
	if err := v.Unmarshal(target, decode); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}
	return nil
}

// runPreview streams up to maxRows records and prints them as JSON lines.
func runPreview(cfg *config.SourceConfig, scope driverreg.Scope, maxRows int, timeout time.Duration) error {
	src, err := sqlsource.New(cfg, scope)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := src.Initialize(ctx); err != nil {
		return err
	}
	defer src.Close()

	stream, err := src.Read(ctx)
	if err != nil {
		return err
	}

	log := logger.Get().With(zap.String("component", "dbcore-cli"))
	printed := 0
	for rec := range stream.Records {
		if printed < maxRows {
			data, err := rec.ToJSON()
			if err != nil {
				rec.Release()
				return err
			}
			fmt.Println(string(data))
			printed++
		}
		rec.Release()
		if printed >= maxRows {
			cancel()
		}
	}
	if err := <-stream.Errors; err != nil && printed < maxRows {
		return err
	}
	log.Info("preview complete", zap.Int("rows", printed))
	return nil
}

// printingArguments writes extracted arguments to stdout.
type printingArguments struct{}

func (printingArguments) Set(name, value string) {
	fmt.Printf("%s=%s\n", name, value)
}
