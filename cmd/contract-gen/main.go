package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	cli "github.com/m-haketa/openapi-typescript-code-generator/internal/cli"
)

func main() {
	var verbose bool
	root := &cobra.Command{
		Use:           "contract-gen",
		Short:         "Generate typed operation contracts from OpenAPI documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output")

	root.AddCommand(newGenerateCmd(&verbose))
	root.AddCommand(newValidateCmd())
	root.AddCommand(newQueryCmd(&verbose))

	if err := root.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func newGenerateCmd(verbose *bool) *cobra.Command {
	var configPath string
	var singleOutput string
	var fallback cli.FallbackParams

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate contract outputs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunGenerate(cmd.Context(), cli.RunGenerateParams{
				ConfigPath:   configPath,
				SingleOutput: singleOutput,
				Fallback:     fallback,
			}, cli.NewLogger(cmd.ErrOrStderr(), *verbose))
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to contract-gen.yaml config")
	cmd.Flags().StringVar(&singleOutput, "output", "", "Generate only the named output from config")
	// Fallback single-output flags
	cmd.Flags().StringVar(&fallback.Spec, "input", "", "OpenAPI document (file or http(s) URL)")
	cmd.Flags().StringVar(&fallback.Type, "type", "", "Output type (typescript, json)")
	cmd.Flags().StringVar(&fallback.OutDir, "out", "", "Output directory")
	cmd.Flags().StringVar(&fallback.Name, "name", "", "Output name")
	cmd.Flags().StringVar(&fallback.Namespace, "namespace", "", "Namespace of the generated declarations")
	cmd.Flags().BoolVar(&fallback.Sync, "sync", false, "Generate a synchronous ApiClient")
	cmd.Flags().BoolVar(&fallback.Validate, "validate", false, "Validate the document before generating")
	cmd.Flags().StringArrayVar(&fallback.IncludeTags, "include-tags", nil, "Regex patterns for tags to include")
	cmd.Flags().StringArrayVar(&fallback.ExcludeTags, "exclude-tags", nil, "Regex patterns for tags to exclude")

	return cmd
}

func newValidateCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate an OpenAPI document",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunValidate(cmd.Context(), input)
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "OpenAPI document (file or http(s) URL)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newQueryCmd(verbose *bool) *cobra.Command {
	var p cli.RunQueryParams
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Print the parameter and response types of the operations matching a method and request URI",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunQuery(cmd.Context(), p, cmd.OutOrStdout(), cli.NewLogger(cmd.ErrOrStderr(), *verbose))
		},
	}
	cmd.Flags().StringVar(&p.Spec, "input", "", "OpenAPI document (file or http(s) URL)")
	cmd.Flags().StringVar(&p.Method, "method", "", "HTTP method")
	cmd.Flags().StringVar(&p.URI, "uri", "", "Request URI template; empty or * matches every URI of the method")
	cmd.Flags().StringVar(&p.Format, "format", "json", "Output format (json, yaml)")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("method")
	return cmd
}
