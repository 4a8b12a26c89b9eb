// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// ttsprep prepares a speech corpus for attention based TTS training:
//
//	ttsprep preprocess   mel features, quantized waveforms and the manifest
//	ttsprep durations    phone durations in frames and hard attention guides
//	ttsprep guides       diagonal attention guides
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/emer/ttsprep/config"
	"github.com/emer/ttsprep/pipeline"
)

var (
	hpFile   string
	logLevel string
	log      = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:           "ttsprep",
	Short:         "Prepare a speech corpus for TTS training",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		lvl, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		log.SetLevel(lvl)
		return nil
	},
}

var preprocessCmd = &cobra.Command{
	Use:   "preprocess",
	Short: "Extract mel spectrograms and quantized waveforms from wav files",
	Long: `Extract mel spectrograms and quantized waveforms from every wav file
under wav_path. Writes <data_path>/mel/<id>.npy, <data_path>/quant/<id>.npy
and the manifest <data_path>/dataset.yaml. Files that fail are skipped.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadParams(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("path") {
			p.WavPath, _ = cmd.Flags().GetString("path")
		}
		if cmd.Flags().Changed("extension") {
			p.Extension, _ = cmd.Flags().GetString("extension")
		}
		_, err = pipeline.Preprocess(cmd.Context(), p, p.WavPath, p.Extension, log)
		return err
	},
}

var durationsCmd = &cobra.Command{
	Use:   "durations",
	Short: "Compute phone durations in mel frames and hard attention guides",
	Long: `Convert the forced alignment labels to mel frame durations, carry them
onto the transcript phones, save one hard attention guide per utterance and
write the transcript with durations.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadParams(cmd)
		if err != nil {
			return err
		}
		_, err = pipeline.Durations(cmd.Context(), p, log)
		return err
	},
}

var guidesCmd = &cobra.Command{
	Use:   "guides",
	Short: "Create diagonal attention guides for the preprocessed utterances",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadParams(cmd)
		if err != nil {
			return err
		}
		_, err = pipeline.DiagonalGuides(cmd.Context(), p, log)
		return err
	},
}

func init() {
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetOutput(os.Stderr)

	rootCmd.PersistentFlags().StringVar(&hpFile, "hp_file", "hparams.yaml", "hyperparameter file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")
	preprocessCmd.Flags().StringP("path", "p", "", "directory of the input wav files, overrides wav_path")
	preprocessCmd.Flags().StringP("extension", "e", ".wav", "input audio file extension")

	rootCmd.AddCommand(preprocessCmd, durationsCmd, guidesCmd)
}

// loadParams reads the hyperparameter file. A missing default file means
// defaults plus environment overrides.
func loadParams(cmd *cobra.Command) (*config.Params, error) {
	fn := hpFile
	if !cmd.Flags().Changed("hp_file") {
		if _, err := os.Stat(fn); os.IsNotExist(err) {
			fn = ""
		}
	}
	p, err := config.Load(fn)
	if err != nil {
		return nil, err
	}
	if !cmd.Flags().Changed("log-level") && p.LogLevel != "" {
		lvl, err := logrus.ParseLevel(p.LogLevel)
		if err != nil {
			return nil, err
		}
		log.SetLevel(lvl)
	}
	log.WithFields(logrus.Fields{"hp_file": fn, "data_path": p.DataPath}).Debug("loaded hyperparameters")
	return p, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.WithError(err).Error("ttsprep failed")
		stop()
		os.Exit(1)
	}
}
