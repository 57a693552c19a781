// package parallel contains the parallel ForEach(), the cooperative stop and
// pause Signals shared with training workers, plus other concurrency primitives.
package parallel
