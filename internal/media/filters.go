package media

import (
	"fmt"
	"strconv"
	"strings"
)

// Ducking sidechain envelope in milliseconds.
const (
	duckingAttackMs  = 50
	duckingReleaseMs = 300
)

// LogoMargin is the distance in pixels between the logo and the bottom
// right corner of the frame.
const LogoMargin = 20

// StandardizeFilter returns the -vf chain that scales a width x height
// video to cover targetW x targetH and center-crops the overflowing axis.
func StandardizeFilter(width, height, targetW, targetH int) string {
	current := float64(width) / float64(height)
	target := float64(targetW) / float64(targetH)

	if current > target {
		scaleH := targetH
		scaleW := int(float64(width) * (float64(targetH) / float64(height)))
		cropX := (scaleW - targetW) / 2
		return fmt.Sprintf("scale=%d:%d,crop=%d:%d:%d:0", scaleW, scaleH, targetW, targetH, cropX)
	}

	scaleW := targetW
	scaleH := int(float64(height) * (float64(targetW) / float64(width)))
	cropY := (scaleH - targetH) / 2
	return fmt.Sprintf("scale=%d:%d,crop=%d:%d:0:%d", scaleW, scaleH, targetW, targetH, cropY)
}

// MixFilter returns the filtergraph mixing two inputs at the given
// volumes for the full length of the longer one.
func MixFilter(firstVolume, secondVolume float64) string {
	return fmt.Sprintf("[0:a]volume=%s[v1];[1:a]volume=%s[v2];[v1][v2]amix=inputs=2:duration=longest",
		formatFloat(firstVolume), formatFloat(secondVolume))
}

// DuckingLevels are the volumes and sidechain settings of a ducked mix.
type DuckingLevels struct {
	Vocals    float64
	Other     float64
	Music     float64
	Ratio     float64
	Threshold float64
}

// DuckingFilter returns the filtergraph for vocals (input 0), other
// (input 1) and background music (input 2). A gated copy of the vocals
// drives a sidechain compressor on the music.
func DuckingFilter(l DuckingLevels) string {
	parts := []string{
		"[0:a]asplit=2[vorig][vside]",
		"[vside]agate=threshold=0.1:ratio=2:attack=10:release=100[vgate]",
		fmt.Sprintf("[2:a]volume=%s[bgm]", formatFloat(l.Music)),
		fmt.Sprintf("[bgm][vgate]sidechaincompress=threshold=%s:ratio=%s:attack=%d:release=%d:level_in=0.8:level_sc=1[ducked_bgm]",
			formatFloat(l.Threshold), formatFloat(l.Ratio), duckingAttackMs, duckingReleaseMs),
		fmt.Sprintf("[vorig]volume=%s[vocals]", formatFloat(l.Vocals)),
		fmt.Sprintf("[1:a]volume=%s[other]", formatFloat(l.Other)),
		"[vocals][other][ducked_bgm]amix=inputs=3:duration=longest:weights=1 1 0.5",
	}
	return strings.Join(parts, ";")
}

// LogoScaleFilter limits a logo to maxWidth keeping its aspect ratio.
func LogoScaleFilter(maxWidth int) string {
	return fmt.Sprintf("scale=w=%d:h=-1", maxWidth)
}

// FadeFilter returns the filtergraph fading video input 0 and audio input 1
// in and out over fade seconds of a clip lasting duration seconds. With a
// logo, input 2 is overlaid at the bottom right. Outputs are [v] and
// [audio].
func FadeFilter(duration, fade float64, withLogo bool) string {
	d := formatFloat(fade)
	out := formatFloat(duration - fade)

	videoFade := fmt.Sprintf("[0:v]fade=t=in:st=0:d=%s,fade=t=out:st=%s:d=%s", d, out, d)
	audioFade := fmt.Sprintf("[1:a]afade=t=in:st=0:d=%s,afade=t=out:st=%s:d=%s[audio]", d, out, d)

	if !withLogo {
		return videoFade + "[v];" + audioFade
	}

	return videoFade + "[vfade];" +
		"[2:v]format=rgba[logo];" +
		fmt.Sprintf("[vfade][logo]overlay=x=main_w-overlay_w-%d:y=main_h-overlay_h-%d[v];", LogoMargin, LogoMargin) +
		audioFade
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
