package postings

import "math"

// floatBits and floatFromBits give Save/Load a fixed little-endian wire
// representation for float32 weights, independent of host byte order.
func floatBits(f float32) uint32     { return math.Float32bits(f) }
func floatFromBits(b uint32) float32 { return math.Float32frombits(b) }
