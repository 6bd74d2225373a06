package source

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// mappedFile is a read-only view of a file, memory mapped when possible.
type mappedFile struct {
	Data    []byte
	mmapped bool
}

// openMapped maps path read-only, falling back to reading it into memory
// when mmap is unavailable. Close must be called to release the mapping.
func openMapped(path string) (*mappedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := stat.Size()
	if size == 0 {
		return &mappedFile{}, nil
	}
	if size > int64(int(^uint(0)>>1)) {
		return nil, io.ErrUnexpectedEOF
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err == nil {
		return &mappedFile{Data: data, mmapped: true}, nil
	}

	data, err = io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &mappedFile{Data: data}, nil
}

func (m *mappedFile) Close() error {
	if m == nil || m.Data == nil {
		return nil
	}
	var err error
	if m.mmapped {
		err = unix.Munmap(m.Data)
	}
	m.Data = nil
	m.mmapped = false
	return err
}
