package crc32c

import "testing"

func TestChecksumMatchesIncremental(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	want := Checksum(data)

	d := New()
	for i := 0; i < len(data); i += 7 {
		end := i + 7
		if end > len(data) {
			end = len(data)
		}
		if _, err := d.Write(data[i:end]); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if got := d.Sum32(); got != want {
		t.Fatalf("incremental checksum = %#x, want %#x", got, want)
	}
}

func TestChecksumEmpty(t *testing.T) {
	if got := Checksum(nil); got != 0 {
		t.Fatalf("Checksum(nil) = %#x, want 0", got)
	}
}

func TestChecksumKnownVector(t *testing.T) {
	// CRC32C("123456789") is a widely cited conformance vector.
	if got := Checksum([]byte("123456789")); got != 0xE3069283 {
		t.Fatalf("Checksum(123456789) = %#x, want 0xE3069283", got)
	}
}
