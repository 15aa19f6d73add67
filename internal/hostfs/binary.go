package hostfs

// isBinaryContent reports whether the first sampleSize bytes of content
// contain a NUL byte. Content starting with a UTF-16 or UTF-32 byte order
// mark is treated as text.
func isBinaryContent(content []byte, sampleSize int) bool {
	if len(content) >= 2 {
		if (content[0] == 0xFF && content[1] == 0xFE) ||
			(content[0] == 0xFE && content[1] == 0xFF) {
			return false
		}
	}
	if len(content) >= 4 && content[0] == 0x00 && content[1] == 0x00 && content[2] == 0xFE && content[3] == 0xFF {
		return false
	}

	n := min(len(content), sampleSize)
	for i := range n {
		if content[i] == 0 {
			return true
		}
	}
	return false
}
