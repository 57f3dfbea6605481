package storage

import (
	"io"
	"time"
)

type FileInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// Storage holds the offline-built artifact files.
type Storage interface {
	OpenFile(name string) (io.ReadSeekCloser, error)
	SaveFile(name string, r io.Reader) (FileInfo, error)
	Stat(name string) (FileInfo, error)
}
