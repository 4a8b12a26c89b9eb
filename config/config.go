// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config holds the hyperparameters shared by the preparation steps.
// Params are loaded once and passed to each step; there is no global copy.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/emer/ttsprep/guide"
	"github.com/emer/ttsprep/speech"
	"github.com/emer/ttsprep/speech/label"
	"github.com/emer/ttsprep/timing"
)

// EnvPrefix prefixes environment overrides, e.g. TTSPREP_DATA_PATH
const EnvPrefix = "TTSPREP"

// Audio holds the waveform parameters
type Audio struct {
	SampleRate int    `mapstructure:"sample_rate" desc:"expected sample rate of the input wavs"`
	PeakNorm   bool   `mapstructure:"peak_norm" desc:"scale every wav to a peak of 1"`
	VocMode    string `mapstructure:"voc_mode" desc:"RAW or MOL -- selects the waveform quantization"`
	Bits       int    `mapstructure:"bits" desc:"bit depth of RAW quantization"`
	MuLaw      bool   `mapstructure:"mu_law" desc:"use mu-law instead of linear RAW quantization"`
}

// Mel holds the spectrogram parameters
type Mel struct {
	NFFT      int     `mapstructure:"n_fft" desc:"fft size in samples"`
	HopLength int     `mapstructure:"hop_length" desc:"frame shift in samples"`
	WinLength int     `mapstructure:"win_length" desc:"analysis window in samples, <= n_fft"`
	NMels     int     `mapstructure:"n_mels" desc:"number of mel filters"`
	FMin      float64 `mapstructure:"fmin" desc:"low frequency end of the mel filter bank"`
	FMax      float64 `mapstructure:"fmax" desc:"high frequency end of the mel filter bank, <= sample_rate / 2"`
	LogMin    float64 `mapstructure:"log_min" desc:"floor of the log mel energies"`
}

// Durations holds the parameters of the duration and hard guide step
type Durations struct {
	LabelDir       string   `mapstructure:"label_dir" desc:"forced alignment label directory, relative to data_path"`
	LabelFormat    string   `mapstructure:"label_format" desc:"state or plain"`
	StatesPerPhone int      `mapstructure:"states_per_phone" desc:"state rows per phone in state aligned labels"`
	MelDir         string   `mapstructure:"mel_dir" desc:"mel feature directory, relative to data_path"`
	LabelRateMs    float64  `mapstructure:"label_rate_ms" desc:"step of the label times in milliseconds"`
	FrameShiftMs   float64  `mapstructure:"frame_shift_ms" desc:"mel frame shift in milliseconds"`
	TranscriptIn   string   `mapstructure:"transcript_in" desc:"transcript to read phones from, relative to data_path"`
	TranscriptOut  string   `mapstructure:"transcript_out" desc:"transcript written with durations, relative to data_path"`
	GuideDir       string   `mapstructure:"guide_dir" desc:"hard attention guide directory, relative to data_path"`
	ZeroDuration   string   `mapstructure:"zero_duration" desc:"accept, warn or error for phones without frames"`
	SilenceSymbols []string `mapstructure:"silence_symbols" desc:"forced alignment silence labels"`
	BoundaryPrefix string   `mapstructure:"boundary_prefix" desc:"prefix of transcript boundary markers"`
}

// Diagonal holds the parameters of the diagonal guide step
type Diagonal struct {
	Dir string  `mapstructure:"dir" desc:"diagonal guide directory, relative to data_path"`
	G   float64 `mapstructure:"g" desc:"width of the diagonal band"`
}

// Params are all the hyperparameters
type Params struct {
	DataPath  string    `mapstructure:"data_path" desc:"root of all derived data"`
	WavPath   string    `mapstructure:"wav_path" desc:"directory searched for input audio"`
	Extension string    `mapstructure:"extension" desc:"audio file extension"`
	Workers   int       `mapstructure:"workers" desc:"parallel preprocess workers, 0 = number of cpus"`
	LogLevel  string    `mapstructure:"log_level" desc:"logrus level name"`
	Audio     Audio     `mapstructure:"audio"`
	Mel       Mel       `mapstructure:"mel"`
	Durations Durations `mapstructure:"durations"`
	Diagonal  Diagonal  `mapstructure:"diagonal"`
}

// Defaults sets the values used when the file leaves a field out
func (p *Params) Defaults() {
	p.DataPath = "data"
	p.WavPath = "wavs"
	p.Extension = ".wav"
	p.Workers = 0
	p.LogLevel = "info"

	p.Audio.SampleRate = 22050
	p.Audio.PeakNorm = false
	p.Audio.VocMode = "MOL"
	p.Audio.Bits = 9
	p.Audio.MuLaw = true

	p.Mel.NFFT = 2048
	p.Mel.HopLength = 275 // 12.5 ms at 22050 Hz
	p.Mel.WinLength = 1100
	p.Mel.NMels = 80
	p.Mel.FMin = 40
	p.Mel.FMax = 11025
	p.Mel.LogMin = -11.5

	p.Durations.LabelDir = "labels/label_state_align"
	p.Durations.LabelFormat = string(label.State)
	p.Durations.StatesPerPhone = label.DefaultStatesPerPhone
	p.Durations.MelDir = "mel"
	p.Durations.LabelRateMs = 5
	p.Durations.FrameShiftMs = 12.5
	p.Durations.TranscriptIn = "train_dctts.csv"
	p.Durations.TranscriptOut = "train_durations_dctts.csv"
	p.Durations.GuideDir = "attention_guides_dctts"
	p.Durations.ZeroDuration = string(guide.ZeroAccept)
	p.Durations.SilenceSymbols = append([]string(nil), speech.SilenceSymbols...)
	p.Durations.BoundaryPrefix = "<"

	p.Diagonal.Dir = "diagonal_attention_guides"
	p.Diagonal.G = guide.DefaultG
}

// Path joins rel onto DataPath
func (p *Params) Path(rel ...string) string {
	return filepath.Join(append([]string{p.DataPath}, rel...)...)
}

// LabelRate is LabelRateMs in ticks
func (p *Params) LabelRate() (timing.Tick, error) {
	return timing.FromMs(p.Durations.LabelRateMs)
}

// FrameShift is FrameShiftMs in ticks
func (p *Params) FrameShift() (timing.Tick, error) {
	return timing.FromMs(p.Durations.FrameShiftMs)
}

// Validate checks the parameters for values no step can work with
func (p *Params) Validate() error {
	var errs []error
	if p.DataPath == "" {
		errs = append(errs, errors.New("data_path is empty"))
	}
	if p.Audio.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("audio.sample_rate must be positive, got %d", p.Audio.SampleRate))
	}
	switch p.Audio.VocMode {
	case "RAW":
		if p.Audio.Bits <= 0 || p.Audio.Bits > 16 {
			errs = append(errs, fmt.Errorf("audio.bits must be in 1..16, got %d", p.Audio.Bits))
		}
	case "MOL":
	default:
		errs = append(errs, fmt.Errorf("audio.voc_mode must be RAW or MOL, got %q", p.Audio.VocMode))
	}
	if p.Mel.NFFT <= 0 || p.Mel.HopLength <= 0 || p.Mel.NMels <= 0 {
		errs = append(errs, errors.New("mel.n_fft, mel.hop_length and mel.n_mels must be positive"))
	}
	if p.Mel.WinLength <= 0 || p.Mel.WinLength > p.Mel.NFFT {
		errs = append(errs, fmt.Errorf("mel.win_length must be in 1..n_fft, got %d", p.Mel.WinLength))
	}
	if p.Mel.FMax > float64(p.Audio.SampleRate)/2 || p.Mel.FMin < 0 || p.Mel.FMin >= p.Mel.FMax {
		errs = append(errs, fmt.Errorf("mel fmin %v / fmax %v out of range", p.Mel.FMin, p.Mel.FMax))
	}
	if _, err := p.LabelRate(); err != nil || p.Durations.LabelRateMs <= 0 {
		errs = append(errs, fmt.Errorf("durations.label_rate_ms %v is not a positive whole number of ticks", p.Durations.LabelRateMs))
	}
	if _, err := p.FrameShift(); err != nil || p.Durations.FrameShiftMs <= 0 {
		errs = append(errs, fmt.Errorf("durations.frame_shift_ms %v is not a positive whole number of ticks", p.Durations.FrameShiftMs))
	}
	switch label.Format(p.Durations.LabelFormat) {
	case label.Plain:
	case label.State:
		if p.Durations.StatesPerPhone <= 0 {
			errs = append(errs, fmt.Errorf("durations.states_per_phone must be positive, got %d", p.Durations.StatesPerPhone))
		}
	default:
		errs = append(errs, fmt.Errorf("durations.label_format must be state or plain, got %q", p.Durations.LabelFormat))
	}
	if _, err := guide.ParseZeroPolicy(p.Durations.ZeroDuration); err != nil {
		errs = append(errs, err)
	}
	if p.Diagonal.G <= 0 {
		errs = append(errs, fmt.Errorf("diagonal.g must be positive, got %v", p.Diagonal.G))
	}
	return errors.Join(errs...)
}

// Load reads the YAML hyperparameter file fn over the defaults. Values can
// be overridden from the environment, e.g. TTSPREP_MEL_HOP_LENGTH=300.
func Load(fn string) (*Params, error) {
	def := &Params{}
	def.Defaults()

	v := viper.New()
	setDefaults(v, def)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if fn != "" {
		v.SetConfigFile(fn)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	// decode into a zero Params: lists from the file replace the defaults
	// instead of being merged into them element by element
	p := &Params{}
	if err := v.Unmarshal(p); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return p, nil
}

// setDefaults registers every key so that AutomaticEnv can see it even
// when the file leaves it out.
func setDefaults(v *viper.Viper, p *Params) {
	v.SetDefault("data_path", p.DataPath)
	v.SetDefault("wav_path", p.WavPath)
	v.SetDefault("extension", p.Extension)
	v.SetDefault("workers", p.Workers)
	v.SetDefault("log_level", p.LogLevel)

	v.SetDefault("audio.sample_rate", p.Audio.SampleRate)
	v.SetDefault("audio.peak_norm", p.Audio.PeakNorm)
	v.SetDefault("audio.voc_mode", p.Audio.VocMode)
	v.SetDefault("audio.bits", p.Audio.Bits)
	v.SetDefault("audio.mu_law", p.Audio.MuLaw)

	v.SetDefault("mel.n_fft", p.Mel.NFFT)
	v.SetDefault("mel.hop_length", p.Mel.HopLength)
	v.SetDefault("mel.win_length", p.Mel.WinLength)
	v.SetDefault("mel.n_mels", p.Mel.NMels)
	v.SetDefault("mel.fmin", p.Mel.FMin)
	v.SetDefault("mel.fmax", p.Mel.FMax)
	v.SetDefault("mel.log_min", p.Mel.LogMin)

	v.SetDefault("durations.label_dir", p.Durations.LabelDir)
	v.SetDefault("durations.label_format", p.Durations.LabelFormat)
	v.SetDefault("durations.states_per_phone", p.Durations.StatesPerPhone)
	v.SetDefault("durations.mel_dir", p.Durations.MelDir)
	v.SetDefault("durations.label_rate_ms", p.Durations.LabelRateMs)
	v.SetDefault("durations.frame_shift_ms", p.Durations.FrameShiftMs)
	v.SetDefault("durations.transcript_in", p.Durations.TranscriptIn)
	v.SetDefault("durations.transcript_out", p.Durations.TranscriptOut)
	v.SetDefault("durations.guide_dir", p.Durations.GuideDir)
	v.SetDefault("durations.zero_duration", p.Durations.ZeroDuration)
	v.SetDefault("durations.silence_symbols", p.Durations.SilenceSymbols)
	v.SetDefault("durations.boundary_prefix", p.Durations.BoundaryPrefix)

	v.SetDefault("diagonal.dir", p.Diagonal.Dir)
	v.SetDefault("diagonal.g", p.Diagonal.G)
}
