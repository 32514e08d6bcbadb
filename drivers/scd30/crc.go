package scd30

// CRC-8 over each 16-bit word on the wire: polynomial 0x31, init 0xFF, no
// reflection, no final xor (Sensirion's usual scheme).

const crcPoly = 0x31

var crcTable [256]byte

func init() {
	for i := range crcTable {
		c := byte(i)
		for bit := 0; bit < 8; bit++ {
			if c&0x80 != 0 {
				c = c<<1 ^ crcPoly
			} else {
				c <<= 1
			}
		}
		crcTable[i] = c
	}
}

// crcSum computes the checksum of data.
func crcSum(data []byte) byte {
	c := byte(0xFF)
	for _, b := range data {
		c = crcTable[c^b]
	}
	return c
}

// WordCRC is the checksum of one big-endian word, the unit everything on
// the bus is framed in. Exported for bus simulators and test rigs that
// have to produce well-formed replies.
func WordCRC(msb, lsb byte) byte {
	return crcTable[crcTable[0xFF^msb]^lsb]
}
