package domain

// ByteLen returns the UTF-8 encoded length of a record in bytes.
// Go strings are byte sequences, so this is len(s) and not the rune count.
func ByteLen(record string) int {
	return len(record)
}
