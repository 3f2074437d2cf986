package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// ============================================================================
// Size Tests
// ============================================================================

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{-5, "0.00 B"},
		{0, "0.00 B"},
		{512, "512.00 B"},
		{2 * KB, "2.00 KB"},
		{50 * MB, "50.00 MB"},
		{3*GB + GB/2, "3.50 GB"},
		{TB, "1.00 TB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"512", 512, false},
		{"10MB", 10 * MB, false},
		{"4 kb", 4 * KB, false},
		{"1.5 GB", GB + GB/2, false},
		{"2MiB", 2 * MB, false},
		{"", 0, true},
		{"lots", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseSize(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSize(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSize(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSumSizes(t *testing.T) {
	if got := SumSizes([]int64{1, 2, 3}); got != 6 {
		t.Errorf("SumSizes = %d", got)
	}
	if got := SumSizes(nil); got != 0 {
		t.Errorf("SumSizes(nil) = %d", got)
	}
}

// ============================================================================
// Hash Tests
// ============================================================================

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, data, 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a", []byte("same content"))
	b := writeFile(t, dir, "b", []byte("same content"))
	c := writeFile(t, dir, "c", []byte("other content"))

	ha, err := HashFile(a)
	if err != nil {
		t.Fatal(err)
	}
	hb, _ := HashFile(b)
	hc, _ := HashFile(c)

	if ha != hb {
		t.Error("identical files should hash equal")
	}
	if ha == hc {
		t.Error("different files should hash differently")
	}
	if len(ha) != 16 {
		t.Errorf("hash %q should be 16 hex digits", ha)
	}

	if _, err := HashFile(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestHashFileQuick(t *testing.T) {
	dir := t.TempDir()
	const chunk = 8

	small := writeFile(t, dir, "small", []byte("0123456789"))
	full, _ := HashFile(small)
	quick, err := HashFileQuick(small, chunk)
	if err != nil {
		t.Fatal(err)
	}
	if quick != full {
		t.Error("files within two chunks are hashed in full")
	}

	head := bytes.Repeat([]byte("h"), chunk)
	tail := bytes.Repeat([]byte("t"), chunk)
	mid1 := append(append(append([]byte{}, head...), []byte("middle-one")...), tail...)
	mid2 := append(append(append([]byte{}, head...), []byte("middle-two")...), tail...)

	h1, _ := HashFileQuick(writeFile(t, dir, "m1", mid1), chunk)
	h2, _ := HashFileQuick(writeFile(t, dir, "m2", mid2), chunk)
	if h1 != h2 {
		t.Error("only the ends and size are sampled")
	}

	longer := append(append(append([]byte{}, head...), []byte("a-longer-middle")...), tail...)
	h3, _ := HashFileQuick(writeFile(t, dir, "m3", longer), chunk)
	if h3 == h1 {
		t.Error("size is part of the quick hash")
	}
}
