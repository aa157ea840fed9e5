package validator // import "github.com/Xunop/e-editor/internal/validator"

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

var zipMagic = []byte("PK\x03\x04")

// ValidateEpubUpload checks the name and the first bytes of an uploaded
// file. The reader is rewound afterwards.
func ValidateEpubUpload(name string, file io.ReadSeeker) error {
	if name == "" {
		return errors.New("file name is empty")
	}
	if ext := strings.ToLower(filepath.Ext(name)); ext != ".epub" {
		return errors.Errorf("unsupported file type: %q", ext)
	}

	head := make([]byte, len(zipMagic))
	if _, err := io.ReadFull(file, head); err != nil {
		return errors.New("file is not an epub archive")
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return errors.Wrap(err, "unable to rewind upload")
	}
	if !bytes.Equal(head, zipMagic) {
		return errors.New("file is not an epub archive")
	}
	return nil
}
