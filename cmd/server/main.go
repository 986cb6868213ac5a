package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version 会在构建时通过 -ldflags "-X main.Version=xxx" 注入
var Version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "portfolio-cms",
		Short: "Portfolio CMS backend",
		Long: `Portfolio CMS serves the admin API for a personal portfolio site:
blog posts, projects and editable site sections stored as flat JSON or
markdown files, image uploads and a generated sitemap.xml.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		// 未指定子命令时等同于 serve
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	opts.bind(cmd)

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	opts.bind(serve)

	cmd.AddCommand(serve, hashpwdCmd())
	return cmd
}
