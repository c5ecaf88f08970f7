// Command autotune pitch-corrects vocals.
//
// Usage:
//
//	autotune run [--config config.json]
//	autotune tune [flags] in.wav out.wav
//	autotune scale <name> ...
//
// The run command processes a whole video as described by the
// configuration file: stem separation, compression, pitch correction,
// reverb, delay, remix and remux. It needs ffmpeg, ffprobe and demucs on
// PATH. The tune command corrects a single WAV file.
//
// Examples:
//
//	autotune run --config config.json
//	autotune tune --method scale --scale "A:min" vocals.wav tuned.wav
//	autotune tune --method closest --report pitch.yaml vocals.wav tuned.wav
//	autotune scale C:maj "F# minor"
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
