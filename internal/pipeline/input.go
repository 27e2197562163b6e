package pipeline

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/backmassage/chaptersplit/internal/failure"
)

// Container extensions known to carry chapter metadata (lowercase, with
// leading dot). Other extensions are accepted with a warning.
var chapterExtensions = map[string]bool{
	".m4b":  true,
	".m4a":  true,
	".mp4":  true,
	".mp3":  true,
	".aac":  true,
	".mka":  true,
	".mkv":  true,
	".ogg":  true,
	".opus": true,
	".flac": true,
	".webm": true,
}

// ResolveInput returns the absolute path of the input file, failing with a
// metadata error when it is missing, a directory or unreadable. known
// reports whether the extension is one chapters are usually found in.
func ResolveInput(path string) (abs string, known bool, err error) {
	abs, err = filepath.Abs(path)
	if err != nil {
		return "", false, failure.Mark(err, failure.ErrMetadata, "resolve input path")
	}

	fi, err := os.Stat(abs)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return "", false, failure.Metadataf("input %s does not exist", path)
	case err != nil:
		return "", false, failure.Mark(err, failure.ErrMetadata, "inspect input")
	case fi.IsDir():
		return "", false, failure.Metadataf("input %s is a directory", path)
	}

	f, err := os.Open(abs)
	if err != nil {
		return "", false, failure.Mark(err, failure.ErrMetadata, "open input")
	}
	f.Close()

	return abs, chapterExtensions[strings.ToLower(filepath.Ext(abs))], nil
}
