package fileInfo

import "io"

// Entry is a file stored in an owner namespace, as reported to clients.
type Entry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Size int64  `json:"size,omitempty"`
}

// Upload is one incoming file of an upload request. Size may be -1 when the
// length is unknown.
type Upload struct {
	Name    string
	Size    int64
	Content io.Reader
}
