// Package bitutil holds small bit-level helpers shared by the substate
// machines.
package bitutil

// NibbleCount returns the number of base-16 digits needed to represent x,
// treating 0 as requiring one nibble. Copy/Dict length and distance coding
// sends this count through a small CDF before sending the nibbles
// themselves, the nibble-stream analogue of the teacher's unary length
// prefix for Rice-coded residuals.
func NibbleCount(x uint32) int {
	n := 1
	for x >= 16 {
		x >>= 4
		n++
	}
	return n
}
