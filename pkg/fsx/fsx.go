// Package fsx carries the small filesystem helpers shared by packages that
// write snapshot files.
package fsx

import (
	"errors"
	"fmt"
	"golang.hedera.com/solo-lynx/pkg/logx"
	"os"
	"path"
	"strings"
)

// PathExists reports whether filePath exists. The FileInfo is valid only when
// the path exists.
func PathExists(filePath string) (os.FileInfo, bool) {
	s, err := os.Stat(filePath)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return s, false
	}

	return s, true
}

// SplitFilePath splits a file path into directory, file name without
// extension, and extension.
func SplitFilePath(filePath string) (dir, fileNameWithoutExt, ext string) {
	dir, file := path.Split(filePath)
	ext = path.Ext(file)
	fileNameWithoutExt = strings.TrimSuffix(file, ext)
	return dir, fileNameWithoutExt, ext
}

// CombineFilePath joins the parts produced by SplitFilePath back into a path.
func CombineFilePath(dir string, fileName string, ext string) string {
	return path.Join(dir, fmt.Sprintf("%s%s", fileName, ext))
}

// CloseFile closes file when it is open. Close errors are logged rather than
// returned so the helper can be deferred.
func CloseFile(file *os.File) {
	if file == nil {
		return
	}

	if err := file.Close(); err != nil {
		logx.As().Warn().Err(err).Msg("Failed to close file")
	}
}
