package wire

import "encoding/binary"

// WriteU8 appends a single byte to dst.
func WriteU8(dst []byte, v uint8) []byte {
	return append(dst, v)
}

// WriteBE16/32/64 append big-endian fixed-width unsigned integers to dst.
func WriteBE16(dst []byte, v uint16) []byte {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	return append(dst, buf[:]...)
}

func WriteBE32(dst []byte, v uint32) []byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	return append(dst, buf[:]...)
}

func WriteBE64(dst []byte, v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return append(dst, buf[:]...)
}

// WriteLE16/32/64 append little-endian fixed-width unsigned integers to dst.
func WriteLE16(dst []byte, v uint16) []byte {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	return append(dst, buf[:]...)
}

func WriteLE32(dst []byte, v uint32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return append(dst, buf[:]...)
}

func WriteLE64(dst []byte, v uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return append(dst, buf[:]...)
}

// WriteVarLenValue appends the §4.1 length-prefixed encoding of payload to
// dst: a single length-of-length byte (minimal big-endian width needed to
// hold len(payload)), the big-endian length itself, then payload.
func WriteVarLenValue(dst []byte, payload []byte) []byte {
	n := uint32(len(payload))
	var lenBytes []byte
	switch {
	case n <= 0xff:
		lenBytes = []byte{byte(n)}
	case n <= 0xffff:
		lenBytes = []byte{byte(n >> 8), byte(n)}
	case n <= 0xffffff:
		lenBytes = []byte{byte(n >> 16), byte(n >> 8), byte(n)}
	default:
		lenBytes = []byte{byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)}
	}
	dst = WriteU8(dst, uint8(len(lenBytes)))
	dst = append(dst, lenBytes...)
	dst = append(dst, payload...)
	return dst
}
