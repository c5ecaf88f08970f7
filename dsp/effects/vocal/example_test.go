package vocal_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-autotune/dsp/effects/vocal"
)

func ExampleCompressor_OutputLevel() {
	c, err := vocal.NewCompressor(48000, vocal.DefaultCompressorSettings())
	if err != nil {
		panic(err)
	}

	out := c.OutputLevel(1)
	fmt.Printf("0 dBFS in, %.1f dBFS out\n", 20*math.Log10(out))
	// Output:
	// 0 dBFS in, -15.0 dBFS out
}

func ExampleNewChain() {
	comp, err := vocal.CompressionStage(44100, vocal.DefaultCompressorSettings())
	if err != nil {
		panic(err)
	}
	rev, err := vocal.ReverbStage(44100, vocal.DefaultReverbSettings())
	if err != nil {
		panic(err)
	}
	chain := vocal.NewChain(comp, rev)

	buf := make([]float64, 4410)
	for i := range buf {
		buf[i] = 0.2 * math.Sin(2*math.Pi*220*float64(i)/44100)
	}
	chain.Process(buf)

	fmt.Println(chain.Stages())
	fmt.Printf("peak %.2f\n", vocal.Peak(buf))
	// Output:
	// [compression reverb]
	// peak 1.00
}
