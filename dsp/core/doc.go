// Package core holds numeric helpers shared by the DSP packages: range and
// finiteness checks, decibel conversion and scratch buffer reuse.
package core
