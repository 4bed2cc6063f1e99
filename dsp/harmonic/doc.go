// Package harmonic estimates the fundamental frequency of a peak set with the
// two-way mismatch procedure and selects the peaks that form its harmonic
// series.
//
// A [Set] always holds a fixed number of harmonic slots. Slots with no
// matching peak are absent: frequency 0, magnitude at [core.FloorDB] and
// phase 0.
package harmonic
