package pitchtrack_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-autotune/dsp/pitchtrack"
	"github.com/cwbudde/algo-autotune/dsp/tuning"
)

func ExampleDetector_Detect() {
	const sampleRate = 22050

	signal := make([]float64, sampleRate/2)
	for i := range signal {
		signal[i] = 0.5 * math.Sin(2*math.Pi*220*float64(i)/sampleRate)
	}

	d, err := pitchtrack.NewDetector(sampleRate, pitchtrack.DefaultConfig())
	if err != nil {
		panic(err)
	}

	traj, _, err := d.Detect(signal)
	if err != nil {
		panic(err)
	}

	midi, _ := traj[len(traj)/2].MIDI()
	fmt.Printf("%d frames, middle frame %s\n", len(traj), tuning.NoteName(int(math.Round(midi))))
	// Output: 22 frames, middle frame A3
}
