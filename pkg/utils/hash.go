package utils

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// HashFile computes the xxhash64 of the whole file.
func HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	h := xxhash.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}

// HashFileQuick hashes the first and last chunkSize bytes plus the file size.
// Files no larger than two chunks are hashed in full. Two different files
// can collide when only their middles differ; callers accept that.
func HashFileQuick(path string, chunkSize int64) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", err
	}

	size := info.Size()
	h := xxhash.New()

	if size <= chunkSize*2 {
		if _, err := io.Copy(h, file); err != nil {
			return "", err
		}
		return fmt.Sprintf("%016x", h.Sum64()), nil
	}

	chunk := make([]byte, chunkSize)
	if _, err := io.ReadFull(file, chunk); err != nil {
		return "", err
	}
	h.Write(chunk)

	if _, err := file.Seek(-chunkSize, io.SeekEnd); err != nil {
		return "", err
	}
	if _, err := io.ReadFull(file, chunk); err != nil {
		return "", err
	}
	h.Write(chunk)

	var sz [8]byte
	binary.LittleEndian.PutUint64(sz[:], uint64(size))
	h.Write(sz[:])

	return fmt.Sprintf("%016x", h.Sum64()), nil
}
