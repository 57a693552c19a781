package parallel

import "runtime"

import "github.com/klauspost/cpuid/v2"

// Threads returns how many goroutines are worth running for CPU bound work.
// It prefers the logical core count detected by cpuid and never exceeds GOMAXPROCS.
func Threads() int {
	n := cpuid.CPU.LogicalCores
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if max := runtime.GOMAXPROCS(0); n > max {
		n = max
	}
	if n < 1 {
		n = 1
	}
	return n
}
