// Package separation splits a mix into a vocal stem and an accompaniment
// stem with the demucs command line tool.
package separation

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrMissingStem is returned when demucs finishes without producing an
// expected stem.
var ErrMissingStem = errors.New("separation: stem not found")

const (
	// DefaultModel is the fine-tuned hybrid transformer model.
	DefaultModel = "htdemucs_ft"

	defaultShifts  = 2
	defaultOverlap = 0.25

	// VocalsFile and OtherFile are the stem names written to the output
	// directory.
	VocalsFile = "vocals_output.wav"
	OtherFile  = "other_output.wav"

	separatedDir = "separated"
)

// Runner executes an external command and returns its combined output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Stems are the paths of a finished separation.
type Stems struct {
	Vocals string
	Other  string
}

// Separator runs demucs in two-stem mode.
type Separator struct {
	runner  Runner
	binary  string
	model   string
	shifts  int
	overlap float64
}

// Option configures a [Separator].
type Option func(*Separator)

// WithModel selects a pretrained demucs model.
func WithModel(name string) Option {
	return func(s *Separator) {
		if name != "" {
			s.model = name
		}
	}
}

// WithBinary overrides the demucs executable.
func WithBinary(path string) Option {
	return func(s *Separator) {
		if path != "" {
			s.binary = path
		}
	}
}

// New returns a Separator running demucs through r.
func New(r Runner, opts ...Option) *Separator {
	s := &Separator{
		runner:  r,
		binary:  "demucs",
		model:   DefaultModel,
		shifts:  defaultShifts,
		overlap: defaultOverlap,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Model returns the demucs model name.
func (s *Separator) Model() string { return s.model }

// StemPaths returns where [Separator.Separate] places the stems for
// outputDir.
func StemPaths(outputDir string) Stems {
	return Stems{
		Vocals: filepath.Join(outputDir, VocalsFile),
		Other:  filepath.Join(outputDir, OtherFile),
	}
}

// Separate splits input into vocals and everything else. When both stems
// already exist in outputDir demucs is not run.
func (s *Separator) Separate(ctx context.Context, input, outputDir string) (Stems, error) {
	stems := StemPaths(outputDir)
	if exists(stems.Vocals) && exists(stems.Other) {
		return stems, nil
	}

	if err := os.MkdirAll(outputDir, fs.ModePerm); err != nil {
		return Stems{}, fmt.Errorf("separation: create %s: %w", outputDir, err)
	}

	work := filepath.Join(outputDir, separatedDir)
	_, err := s.runner.Run(ctx, s.binary,
		"--two-stems=vocals",
		"-n", s.model,
		"--shifts", strconv.Itoa(s.shifts),
		"--overlap", strconv.FormatFloat(s.overlap, 'f', -1, 64),
		"--out", work,
		input)
	if err != nil {
		return Stems{}, fmt.Errorf("separation: demucs on %s: %w", input, err)
	}

	// demucs writes <out>/<model>/<track>/{vocals,no_vocals}.wav
	track := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	produced := filepath.Join(work, s.model, track)

	if err := moveStem(filepath.Join(produced, "vocals.wav"), stems.Vocals); err != nil {
		return Stems{}, err
	}
	if err := moveStem(filepath.Join(produced, "no_vocals.wav"), stems.Other); err != nil {
		return Stems{}, err
	}

	return stems, nil
}

func moveStem(from, to string) error {
	if !exists(from) {
		return fmt.Errorf("%w: %s", ErrMissingStem, from)
	}
	if err := os.Rename(from, to); err != nil {
		return fmt.Errorf("separation: move %s: %w", from, err)
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
