// Copyright 2025 The LadybugDB Authors
// SPDX-License-Identifier: Apache-2.0

// Packages a converted knowledge graph variant and uploads it to the
// small-kgs dataset on the Hugging Face Hub.
package main

import (
	"flag"
	"fmt"
	"net/url"
	"os"

	"github.com/fatih/color"
	"github.com/ladybugdb/smallkgs/pkg/dataset"
	"github.com/ladybugdb/smallkgs/pkg/hfhub"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	inputDir    = flag.String("input-dir", "", "Directory containing the variant's format subdirectories")
	orgName     = flag.String("org-name", "ladybugdb", "Hub organization that owns the dataset")
	datasetName = flag.String("base-dataset-name", "small-kgs", "Dataset repository name")
	variantName = flag.String("variant-name", "", "Variant name. Defaults to the input directory's basename")
	private     = flag.Bool("private", false, "Create the dataset repository private")
	token       = flag.String("token", "", "Hub access token. Defaults to HF_TOKEN or the cached login")
	endpoint    = flag.String("endpoint", "", "Override the Hub API endpoint")
	throttle    = flag.Duration("throttle", 0, "Minimum delay between Hub API requests")
)

var (
	green = color.New(color.FgGreen).SprintFunc()
	white = color.New(color.FgWhite).SprintFunc()
)

var rootCmd = &cobra.Command{
	Use:   "kgpublish -input-dir <dir> [-variant-name <name>]",
	Short: "Upload a knowledge graph variant to the small-kgs dataset",
	Long: `Upload a knowledge graph variant to the small-kgs dataset.

The input directory holds up to three format subdirectories (graph-std,
duckdb, lbdb), each produced by the conversion tools. Present formats are
staged and pushed in one commit under the variant's subdirectory of the
dataset repository, which is created along with its card when absent.`,
	// Silence errors because we will print the error ourselves in main.
	SilenceErrors: true,
	// Don't show usage for every error.
	SilenceUsage: true,
	// RunE because we want errors to affect the return status.
	RunE: func(cmd *cobra.Command, args []string) error {
		if *inputDir == "" {
			return errors.New("-input-dir is required")
		}
		tok, err := hfhub.ResolveToken(*token)
		if err != nil {
			return err
		}
		var hubOpts []hfhub.Option
		if *endpoint != "" {
			u, err := url.Parse(*endpoint)
			if err != nil {
				return errors.Wrap(err, "parsing -endpoint")
			}
			hubOpts = append(hubOpts, hfhub.WithEndpoint(u))
		}
		if *throttle > 0 {
			hubOpts = append(hubOpts, hfhub.WithThrottle(*throttle))
		}
		report, err := dataset.Publish(cmd.Context(), dataset.Options{
			InputDir: *inputDir,
			Org:      *orgName,
			Name:     *datasetName,
			Variant:  *variantName,
			Private:  *private,
			Hub:      hfhub.NewHTTPHub(tok, hubOpts...),
		})
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out)
		fmt.Fprintln(out, green("Dataset updated successfully!"))
		fmt.Fprintln(out, white("Repository: "), report.RepoURL)
		fmt.Fprintln(out, white("Variant:    "), report.Variant)
		fmt.Fprintln(out, white("Path in repo: "), report.Variant+"/")
		return nil
	},
}

func init() {
	rootCmd.Flags().AddGoFlag(flag.Lookup("input-dir"))
	rootCmd.Flags().AddGoFlag(flag.Lookup("org-name"))
	rootCmd.Flags().AddGoFlag(flag.Lookup("base-dataset-name"))
	rootCmd.Flags().AddGoFlag(flag.Lookup("variant-name"))
	rootCmd.Flags().AddGoFlag(flag.Lookup("private"))
	rootCmd.Flags().AddGoFlag(flag.Lookup("token"))
	rootCmd.Flags().AddGoFlag(flag.Lookup("endpoint"))
	rootCmd.Flags().AddGoFlag(flag.Lookup("throttle"))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
