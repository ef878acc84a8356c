package door

// CRC8 computes the CRC-8/Maxim (Dallas 1-Wire) checksum: reflected
// polynomial 0x8C, zero init, zero xorout. CRC8([]byte("123456789")) is
// 0xA1.
func CRC8(data []byte) uint8 {
	var crc uint8
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&1 != 0 {
				crc = crc>>1 ^ 0x8C
			} else {
				crc >>= 1
			}
		}
	}
	return crc
}
