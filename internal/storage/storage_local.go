package storage // import "github.com/Xunop/e-editor/internal/storage"

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Xunop/e-editor/internal/log"
	"github.com/Xunop/e-editor/internal/util"
)

// LocalStorage keeps uploaded files in a directory until they are imported.
type LocalStorage struct {
	// Path to the storage directory
	Path string
}

func NewLocalStorage(path string) *LocalStorage {
	return &LocalStorage{Path: path}
}

// Save writes reader under a free variant of fileName and returns the path
// of the new file.
func (s *LocalStorage) Save(reader io.Reader, fileName string) (string, error) {
	if err := os.MkdirAll(s.Path, os.ModePerm); err != nil {
		return "", errors.Wrap(err, "failed to create storage directory")
	}

	filePath := util.GenerateNewFileName(filepath.Join(s.Path, util.SanitizeFileName(fileName)))
	outFile, err := os.Create(filePath)
	if err != nil {
		return "", errors.Wrap(err, "failed to create file")
	}
	defer outFile.Close()

	hash := sha256.New()
	if _, err := io.Copy(io.MultiWriter(outFile, hash), reader); err != nil {
		outFile.Close()
		os.Remove(filePath)
		return "", errors.Wrap(err, "failed to write file")
	}

	log.Debug("Stored file", zap.String("path", filePath), zap.String("hash", hex.EncodeToString(hash.Sum(nil))))
	return filePath, nil
}

// Remove deletes a stored file, a missing file is not an error.
func (s *LocalStorage) Remove(filePath string) error {
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
