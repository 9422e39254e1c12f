package secure

// CRC-16/ARC parameters (reflected 0x8005, zero init).
const (
	crcPolynomial = 0xA001
	crcInitial    = 0x0000
)

var crcTable = makeCRCTable()

func makeCRCTable() [256]uint16 {
	var t [256]uint16
	for i := range t {
		crc := uint16(i)
		for j := 0; j < 8; j++ {
			if crc&1 != 0 {
				crc = crc>>1 ^ crcPolynomial
			} else {
				crc >>= 1
			}
		}
		t[i] = crc
	}
	return t
}

// CRC16 returns the CRC-16/ARC checksum of data.
func CRC16(data []byte) uint16 {
	crc := uint16(crcInitial)
	for _, b := range data {
		crc = crc>>8 ^ crcTable[byte(crc)^b]
	}
	return crc
}
