package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/OrjadaShkoza/chembl-uniprot-drug-targets/internal/chembl"
	"github.com/OrjadaShkoza/chembl-uniprot-drug-targets/internal/httputil"
	"github.com/OrjadaShkoza/chembl-uniprot-drug-targets/internal/pipeline"
	"github.com/OrjadaShkoza/chembl-uniprot-drug-targets/internal/uniprot"
	"github.com/OrjadaShkoza/chembl-uniprot-drug-targets/pkg/types"
)

const (
	defaultCutoffYear = 2019
	defaultTimeout    = 20 * time.Second
	defaultPace       = 200 * time.Millisecond
	defaultUserAgent  = "drugtargets/0.1"
)

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg := resolveConfig(cmd)

	client := &http.Client{Timeout: cfg.ChEMBL.Timeout}

	p := &pipeline.Pipeline{
		ChEMBL: &chembl.Client{
			HTTP:      client,
			UserAgent: cfg.ChEMBL.UserAgent,
			PageSize:  cfg.ChEMBL.PageSize,
		},
		UniProt: &uniprot.Client{
			HTTP:      client,
			UserAgent: cfg.UniProt.UserAgent,
			Gate:      httputil.NewGate(cfg.UniProt.Pace),
		},
		Out: os.Stdout,
	}

	if _, err := p.Run(cmd.Context(), cfg); err != nil {
		fmt.Fprintf(os.Stderr, "\nFatal error in pipeline execution: %v\n", err)
		return err
	}
	return nil
}

// resolveConfig merges flags over config-file/env values over defaults.
func resolveConfig(cmd *cobra.Command) types.PipelineConfig {
	cutoff := intSetting(cmd, "cutoff-year", "chembl.cutoff_year", defaultCutoffYear)
	timeout := durationSetting(cmd, "timeout", "chembl.timeout", defaultTimeout)
	pace := durationSetting(cmd, "pace", "uniprot.pace", defaultPace)

	return types.PipelineConfig{
		ChEMBL: types.ChEMBLConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   timeout,
				UserAgent: viperString("chembl.user_agent", defaultUserAgent),
			},
			CutoffYear:    cutoff,
			PageSize:      viper.GetInt("chembl.page_size"),
			TargetWorkers: intSetting(cmd, "target-workers", "chembl.target_workers", 0),
		},
		UniProt: types.UniProtConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   timeout,
				UserAgent: viperString("uniprot.user_agent", defaultUserAgent),
			},
			Pace:           pace,
			KeywordWorkers: intSetting(cmd, "keyword-workers", "uniprot.keyword_workers", 0),
		},
		Output: types.OutputConfig{
			Dir:          stringSetting(cmd, "out-dir", "output.dir", "."),
			DatabasePath: stringSetting(cmd, "db", "output.database_path", ""),
			ReportPath:   stringSetting(cmd, "report", "output.report_path", ""),
		},
	}
}

func intSetting(cmd *cobra.Command, flag, key string, fallback int) int {
	if v, _ := cmd.Flags().GetInt(flag); v != 0 {
		return v
	}
	if v := viper.GetInt(key); v != 0 {
		return v
	}
	return fallback
}

func durationSetting(cmd *cobra.Command, flag, key string, fallback time.Duration) time.Duration {
	if v, _ := cmd.Flags().GetDuration(flag); v != 0 {
		return v
	}
	if v := viper.GetDuration(key); v != 0 {
		return v
	}
	return fallback
}

func viperString(key, fallback string) string {
	if v := viper.GetString(key); v != "" {
		return v
	}
	return fallback
}

func stringSetting(cmd *cobra.Command, flag, key, fallback string) string {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v
	}
	if v := viper.GetString(key); v != "" {
		return v
	}
	return fallback
}
