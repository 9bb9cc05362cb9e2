package fileHandler_test

import (
	"strings"
	"testing"

	"filevault/internal/handler/fileHandler"

	"github.com/stretchr/testify/assert"
)

func TestDataURI(t *testing.T) {
	assert.Equal(t, "data:text/plain;charset=utf-8;base64,aGVsbG8=", fileHandler.DataURI([]byte("hello")))

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	assert.True(t, strings.HasPrefix(fileHandler.DataURI(png), "data:image/png;base64,"))

	assert.True(t, strings.HasPrefix(fileHandler.DataURI([]byte{0x00, 0x01, 0x02}), "data:application/octet-stream;base64,"))
}
