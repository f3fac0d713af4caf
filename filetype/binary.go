package filetype

// binarySniffSize is how many leading bytes are inspected for NUL.
const binarySniffSize = 512

// IsBinaryContent reports whether data looks binary: a NUL byte in the first 512 bytes.
func IsBinaryContent(data []byte) bool {
	checkSize := min(len(data), binarySniffSize)
	for i := 0; i < checkSize; i++ {
		if data[i] == 0 {
			return true
		}
	}
	return false
}
