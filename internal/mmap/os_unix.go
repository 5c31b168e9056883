//go:build unix

package mmap

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

func osMap(f *os.File, size int) ([]byte, func([]byte) error, error) {
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, err
	}
	return data, unix.Munmap, nil
}

// osSequential hints read-ahead. EINVAL (unaligned slice) is ignored.
func osSequential(data []byte) error {
	if err := unix.Madvise(data, unix.MADV_SEQUENTIAL); err != nil && !errors.Is(err, unix.EINVAL) {
		return err
	}
	return nil
}
