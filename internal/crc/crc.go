// crc package implements the CRC-32 checksum that protects every chunk
package crc

// Reflected form of the CRC-32 polynomial (ISO 3309, ITU-T V.42)
const Polynomial uint32 = 0xEDB88320

// Lookup table, built once when the package is loaded and read-only afterwards
var table = makeTable(Polynomial)

// Builds the 256-entry lookup table for the given reflected polynomial
func makeTable(poly uint32) *[256]uint32 {
	var t [256]uint32
	for n := range 256 {
		c := uint32(n)
		for range 8 {
			if c&1 == 1 {
				c = poly ^ (c >> 1)
			} else {
				c >>= 1
			}
		}
		t[n] = c
	}
	return &t
}

// Update continues a running checksum with the bytes in p.
// Start with 0 and feed the result of each call into the next one.
func Update(crc uint32, p []byte) uint32 {
	c := ^crc
	for _, b := range p {
		c = table[byte(c)^b] ^ (c >> 8)
	}
	return ^c
}

// Returns the checksum of p
func Checksum(p []byte) uint32 {
	return Update(0, p)
}
