package core_test

import (
	"fmt"

	"github.com/cwbudde/algo-autotune/dsp/core"
)

func ExampleDBToLinear() {
	fmt.Printf("%.4f %.1f\n", core.DBToLinear(-6), core.LinearToDB(0.5))

	// Output:
	// 0.5012 -6.0
}

func ExampleFirstNonFinite() {
	fmt.Println(core.FirstNonFinite([]float64{0.1, 0.2, 0.3}))

	// Output:
	// -1
}
