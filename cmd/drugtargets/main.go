// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the drugtargets CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd runs the whole pipeline; invoking the binary with no flags
// reproduces the default run (cutoff 2019, CSVs in the working directory).
var rootCmd = &cobra.Command{
	Use:   "drugtargets",
	Short: "Extract drug targets and target keywords from ChEMBL and UniProt",
	Long: `drugtargets selects the cohort of drugs approved at or after a cutoff year
from ChEMBL, resolves each drug's UniProt target accessions through its
mechanism-of-action records, derives a keyword set per unique target from the
EBI proteins API, and writes two CSV tables: drug_targets.csv and
target_keywords.csv.`,
	SilenceUsage: true,
	RunE:         runPipeline,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./drugtargets.yaml or ~/.config/drugtargets/config.yaml)")

	rootCmd.Flags().Int("cutoff-year", 0, "retain drugs first approved at or after this year (default 2019)")
	rootCmd.Flags().String("out-dir", "", "directory for the output CSV tables (default .)")
	rootCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 20s)")
	rootCmd.Flags().Duration("pace", 0, "minimum interval between keyword requests (default 200ms)")
	rootCmd.Flags().Int("target-workers", 0, "target resolution workers (default 4)")
	rootCmd.Flags().Int("keyword-workers", 0, "keyword resolution workers (default 1)")
	rootCmd.Flags().String("db", "", "optionally persist results into a SQLite database at this path")
	rootCmd.Flags().String("report", "", "optionally write a YAML run report to this path")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("drugtargets")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "drugtargets"))
		}
	}

	viper.SetEnvPrefix("DRUGTARGETS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
