// Package analysis inspects recorded cloth trajectories.
//
//   - [PowerSpectrum] and [DominantFrequency]: how a node oscillates
//   - [NodePhase]: height against vertical velocity for one node
//   - [Crossings]: times a signal rises through a level
//
// A hanging cloth that settles shows a dominant frequency near its
// pendulum mode and a phase portrait spiralling into a point:
//
//	heights := analysis.NodeHeights(snaps, node)
//	freq, _ := analysis.DominantFrequency(heights, times[1]-times[0])
package analysis
