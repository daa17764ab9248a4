package testsupport

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// ftypBox is the leading box of an ISO base media file, the container
// Rumble accepts for uploads.
var ftypBox = []byte{
	0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p',
	'i', 's', 'o', 'm', 0x00, 0x00, 0x02, 0x00,
	'i', 's', 'o', 'm', 'm', 'p', '4', '1',
}

// WriteAsset writes a stand-in video file at path and returns path. The file
// starts with an ftyp box followed by an mdat box padded so the total length
// is at least size bytes.
func WriteAsset(t testing.TB, path string, size int64) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}

	const mdatHeader = 8
	payload := size - int64(len(ftypBox)) - mdatHeader
	if payload < 0 {
		payload = 0
	}
	var buf bytes.Buffer
	buf.Write(ftypBox)
	var header [mdatHeader]byte
	binary.BigEndian.PutUint32(header[:4], uint32(mdatHeader+payload))
	copy(header[4:], "mdat")
	buf.Write(header[:])
	buf.Write(bytes.Repeat([]byte{0x42}, int(payload)))

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write asset %s: %v", path, err)
	}
	return path
}
