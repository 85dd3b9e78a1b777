package divans

// checksumLength is the trailer's wire size: 4 CRC32C bytes (little-endian)
// followed by the 4-byte magic "ans~".
const checksumLength = 8

// trailerBytes assembles the 8-byte trailer for a finished CRC32C value.
func trailerBytes(crc uint32) [checksumLength]byte {
	return [checksumLength]byte{
		byte(crc), byte(crc >> 8), byte(crc >> 16), byte(crc >> 24),
		'a', 'n', 's', '~',
	}
}

// writeChecksumStep emits as much of the trailer as fits in output[*outputOffset:],
// resuming from count on a later call. It returns the new count and whether
// the full trailer has now been written.
func writeChecksumStep(crc uint32, count uint8, output []byte, outputOffset *int) (newCount uint8, done bool) {
	trailer := trailerBytes(crc)
	remaining := len(output) - *outputOffset
	need := checksumLength - int(count)
	n := need
	if remaining < n {
		n = remaining
	}
	copy(output[*outputOffset:], trailer[count:int(count)+n])
	*outputOffset += n
	count += uint8(n)
	return count, int(count) == checksumLength
}

// readChecksumStep compares as much of input[*inputOffset:] against the
// trailer for crc as is available, resuming from count on a later call.
// Mismatches at trailer position >= 4 (the "ans~" magic) are always fatal;
// mismatches in the first 4 CRC bytes are tolerated when skipChecksum is set.
func readChecksumStep(crc uint32, count uint8, skipChecksum bool, input []byte, inputOffset *int) (newCount uint8, done bool, ok bool) {
	trailer := trailerBytes(crc)
	avail := len(input) - *inputOffset
	need := checksumLength - int(count)
	n := need
	if avail < n {
		n = avail
	}
	for i := 0; i < n; i++ {
		want := trailer[int(count)+i]
		got := input[*inputOffset+i]
		if want != got {
			if int(count)+i >= 4 || !skipChecksum {
				return count, false, false
			}
		}
	}
	*inputOffset += n
	count += uint8(n)
	return count, int(count) == checksumLength, true
}
