package grib1

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// maxContainerBytes caps the decompressed size of one container. A global
// 0.25° GFS file holds a few hundred MB.
const maxContainerBytes = 1 << 30

// Container magic numbers.
var (
	magicGzip  = []byte{0x1f, 0x8b}
	magicZstd  = []byte{0x28, 0xb5, 0x2f, 0xfd}
	magicBzip2 = []byte("BZh")
)

// OpenContainer returns a seekable stream over the GRIB data in r,
// unwrapping gzip, zstd or bzip2 compression detected from the leading
// magic bytes. Uncompressed input is buffered as is.
func OpenContainer(r io.Reader) (io.ReadSeeker, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(4)

	var src io.Reader = br
	switch {
	case bytes.HasPrefix(head, magicGzip):
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("gzip container: %w", err)
		}
		defer zr.Close()
		src = zr
	case bytes.HasPrefix(head, magicZstd):
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("zstd container: %w", err)
		}
		defer zr.Close()
		src = zr
	case bytes.HasPrefix(head, magicBzip2):
		src = bzip2.NewReader(br)
	}

	data, err := io.ReadAll(io.LimitReader(src, maxContainerBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading container: %w", err)
	}
	if len(data) > maxContainerBytes {
		return nil, fmt.Errorf("container exceeds %d bytes: %w", maxContainerBytes, ErrStructure)
	}
	return bytes.NewReader(data), nil
}
