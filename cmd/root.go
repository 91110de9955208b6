// Package cmd holds the orthogroup command line.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yumyai/orthogroup/internal/util"
	"github.com/yumyai/orthogroup/logger"
	"github.com/yumyai/orthogroup/pkg/config"
	"github.com/yumyai/orthogroup/pkg/db"
	"github.com/yumyai/orthogroup/pkg/pipeline"
	"github.com/yumyai/orthogroup/pkg/tools"
)

const VERSION = "0.1.0"

var RootCmd = &cobra.Command{
	Use:   "orthogroup",
	Short: "Build alignments of least divergent orthologs from OrthoDB",
	Long: `Build alignments of least divergent orthologs from OrthoDB

For a query gene, orthogroup picks an ortholog group, filters its members,
keeps the closest ortholog of every organism, removes redundant sequences
with CD-HIT and aligns the rest with MAFFT.

Environment (read from .env when present):
  ORTHOGROUP_DB                 SQLite ortholog database
  ORTHOGROUP_FASTA              indexed FASTA for samtools faidx (optional)
  MAFFT_EXECUTABLE              MAFFT_ADDITIONAL_ARGUMENTS
  CD_HIT_EXECUTABLE             CD_HIT_ADDITIONAL_ARGUMENTS
  SAMTOOLS_EXECUTABLE           ORTHOGROUP_LOG_LEVEL
`,
	Version:       VERSION,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on error. SIGINT and
// SIGTERM cancel the running command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := RootCmd.ExecuteContext(ctx)
	stop()
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringP("config", "c", "", "pipeline parameter file (JSON), defaults when empty")
	RootCmd.PersistentFlags().StringP("env-file", "e", "", "dotenv file, .env when empty")
	RootCmd.PersistentFlags().StringP("log-level", "", "", "debug, info, warn or error; overrides ORTHOGROUP_LOG_LEVEL")
	RootCmd.PersistentFlags().StringP("output", "o", "", "output folder, overrides main_output_folder")
}

// app is everything a subcommand needs, built from flags and environment.
type app struct {
	env    config.Env
	params config.Params
	store  *db.OrthoDB
	pipe   *pipeline.Pipeline
}

func (a *app) Close() error {
	return a.store.Close()
}

func setup(cmd *cobra.Command) (*app, error) {
	flags := cmd.Flags()
	level, _ := flags.GetString("log-level")
	if err := logger.InitLogger(logger.ParseLevel(level)); err != nil {
		return nil, err
	}

	var env config.Env
	if file, _ := flags.GetString("env-file"); file != "" {
		env = config.LoadEnv(file)
	} else {
		env = config.LoadEnv()
	}
	if level == "" {
		if err := logger.InitLogger(logger.ParseLevel(env.LogLevel)); err != nil {
			return nil, err
		}
	}

	paramsPath, _ := flags.GetString("config")
	params, err := config.LoadParams(paramsPath)
	if err != nil {
		return nil, err
	}
	if out, _ := flags.GetString("output"); out != "" {
		params.MainOutputDir = out
	}

	sqlDB, err := db.Open(env.DBPath)
	if err != nil {
		return nil, err
	}
	logger.Info("Open database on", zap.String("DB_LOC", env.DBPath))

	var seqs db.SequenceSource = &db.TableSource{DB: sqlDB}
	if env.FastaPath != "" {
		faidx, err := db.NewFaidxSource(env.FastaPath, tools.Samtools{Executable: env.Samtools})
		if err != nil {
			sqlDB.Close()
			return nil, err
		}
		logger.Info("Reading sequences with samtools faidx", zap.String("fasta", env.FastaPath))
		seqs = faidx
	}
	store := db.NewOrthoDB(sqlDB, seqs)

	aligner := tools.Mafft{
		Executable: env.Mafft,
		Threads:    params.Align.NThreads,
		Fast:       params.Align.Fast,
		ExtraArgs:  env.MafftArgs,
	}
	pipe := &pipeline.Pipeline{
		Store:     store,
		Aligner:   aligner,
		Clusterer: tools.CDHit{Executable: env.CDHit, ExtraArgs: env.CDHitArgs},
		Params:    params,
	}
	if params.WriteEnabled() && !util.DirExists(params.MainOutputDir) {
		logger.Info("Creating output folder", zap.String("dir", params.MainOutputDir))
	}
	return &app{env: env, params: params, store: store, pipe: pipe}, nil
}
