package grib1

// bitmapBit reports whether grid point i has data (bit set) in the MSB-first
// bitmap: bit 7 of byte 0 is point 0, bit 6 of byte 0 is point 1, and so on.
// Points beyond the end of the bitmap have no data.
func bitmapBit(bitmap []byte, i int) bool {
	byteIdx := i / 8
	if i < 0 || byteIdx >= len(bitmap) {
		return false
	}
	return (bitmap[byteIdx]>>uint(7-(i%8)))&1 == 1
}

// countSetBits counts the number of set bits for the first totalPoints positions.
func countSetBits(bitmap []byte, totalPoints int) int {
	n := 0
	for i := 0; i < totalPoints; i++ {
		if bitmapBit(bitmap, i) {
			n++
		}
	}
	return n
}

// scanIndex returns the position of cell (i, j) in the transmitted order,
// which is also its position in the section 3 bitmap.
func (g *Grid) scanIndex(i, j int) int {
	if g.AdjacentI {
		return j*g.Ni + i
	}
	return i*g.Nj + j
}
