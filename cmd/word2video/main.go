package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thywilljoshua/word2video/internal/config"
)

// app carries what every subcommand shares.
type app struct {
	envFile string
	verbose bool
	upload  bool

	cfg *config.Config
	log *zap.Logger
}

func (a *app) init() error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}
	var log *zap.Logger
	if a.verbose {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	a.cfg, a.log = cfg, log
	return nil
}

func main() {
	a := &app{}
	root := &cobra.Command{
		Use:          "word2video",
		Short:        "Turn a Word document into a narrated slide video",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "optional .env file with W2V_* settings")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "human-readable debug logging")
	root.PersistentFlags().BoolVar(&a.upload, "upload", false, "publish the produced files to the configured bucket")

	root.AddCommand(word2pptCmd(a), ttsCmd(a), ppt2videoCmd(a), allCmd(a))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printJSON(cmd *cobra.Command, v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}

// override copies a flag value over the loaded config only when the flag was set.
func override[T any](cmd *cobra.Command, name string, dst *T, v T) {
	if cmd.Flags().Changed(name) {
		*dst = v
	}
}
