package internal

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrUnsafePath is returned by RootDir.Join if the entry name would be written outside the output directory.
var ErrUnsafePath = errors.New("entry name escapes output directory")

var sep = regexp.MustCompile(`[\\/]`)

// RootDir is the common root directory of the entries of an archive, which is removed from each entry name upon
// extraction so that extracting "app.zip" containing "app/..." does not produce "app/app/...".
type RootDir string

// Join removes the root directory from name then joins it to base.
//
// Both `/` and `\` are treated as separators in name. An absolute name, or one whose `..` elements would place it
// outside base, results in ErrUnsafePath.
func (r RootDir) Join(base, name string) (string, error) {
	rel := sep.ReplaceAllString(name, "/")
	if strings.HasPrefix(rel, "/") {
		return "", ErrUnsafePath
	}

	if r != "" {
		rel = strings.TrimPrefix(rel, string(r)+"/")
	}

	if rel = strings.TrimSuffix(rel, "/"); rel == "" {
		return base, nil
	}

	if rel = filepath.FromSlash(rel); !filepath.IsLocal(rel) {
		return "", ErrUnsafePath
	}

	return filepath.Join(base, rel), nil
}

// FindZipRootDir returns the common root directory of the given entry names.
//
// Given these three names:
//
//	test/a.txt
//	test/path/b.txt
//	test/another/path/c.txt
//
// The common root directory is `test`. The returned value is empty if the names have no common root directory.
func FindZipRootDir(names []string) (rootDir RootDir) {
	fn := NewZipRootDirFinder()

	var ok bool
	for _, name := range names {
		if rootDir, ok = fn(name); !ok {
			break
		}
	}

	return
}

// NewZipRootDirFinder returns a function that can be passed the entry names one at a time to compute the common root.
//
// The function returns the current root dir and whether there is a common root so far. As soon as the returned boolean
// is false the search can stop, since subsequent calls will keep returning `"", false`.
func NewZipRootDirFinder() func(string) (rootDir RootDir, hasRoot bool) {
	noRoot, root := false, ""

	return func(name string) (RootDir, bool) {
		if noRoot {
			return "", false
		}

		paths := sep.Split(name, 2)
		if len(paths) == 1 || paths[0] == "" || paths[0] == "." || paths[0] == ".." {
			// a top-level file, or an absolute or relative name, has no root for sure.
			noRoot = true
			return "", false
		}

		switch root {
		case paths[0]:
		case "":
			root = paths[0]
		default:
			noRoot = true
			return "", false
		}

		return RootDir(root), true
	}
}
