// Package main implements chatgen, the deployment generator for the chat
// service.
//
// Usage:
//
//	chatgen generate --out . --backend redis --format json
package main

import (
	"fmt"
	"os"

	"github.com/example/mini-network-chat/deploy"
	"github.com/spf13/cobra"
)

var (
	outDir      string
	backend     string
	format      string
	name        string
	maxDuration int
)

var rootCmd = &cobra.Command{
	Use:   "chatgen",
	Short: "Deployment generator for Mini Network Chat",
	Long: `chatgen writes the files needed to deploy the chat service:
the platform manifest, the dependency manifest and a deployment guide.`,
	SilenceUsage: true,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write deployment files",
	Long: `Writes deploy.json (or deploy.yaml), dependencies.json and DEPLOY.md
into the output directory. Running it twice produces identical files.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	defaults := deploy.DefaultOptions()
	generateCmd.Flags().StringVarP(&outDir, "out", "o", ".", "Output directory")
	generateCmd.Flags().StringVar(&backend, "backend", defaults.Backend, "Store backend (memory, redis, sqlite)")
	generateCmd.Flags().StringVar(&format, "format", defaults.Format, "Manifest format (json, yaml)")
	generateCmd.Flags().StringVar(&name, "name", defaults.Name, "Project name")
	generateCmd.Flags().IntVar(&maxDuration, "max-duration", defaults.MaxDuration, "API function time limit in seconds")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	opts := deploy.Options{
		Name:        name,
		Backend:     backend,
		MaxDuration: maxDuration,
		Format:      format,
	}

	paths, err := deploy.Generate(outDir, opts)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, p := range paths {
		fmt.Fprintf(out, "wrote %s\n", p)
	}
	fmt.Fprintf(out, "Backend: %s. Set STORE_BACKEND=%s and APP_ENV=production before deploying.\n", backend, backend)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
