package policy

import (
	"path/filepath"
	"strings"
)

// CheckConfinement rejects candidate if, resolved against workingDir and
// lexically normalized, it does not stay within workingDir. The filesystem
// is never consulted, so the target does not need to exist.
func CheckConfinement(candidate, workingDir string) error {
	if !filepath.IsAbs(workingDir) {
		return ErrRelativeWorkingDir
	}

	absolute := candidate
	if !filepath.IsAbs(candidate) {
		absolute = workingDir + string(filepath.Separator) + candidate
	}

	if !within(Normalize(absolute), Normalize(workingDir)) {
		return pathEscape(candidate)
	}
	return nil
}

// Normalize lexically collapses "." and ".." segments and repeated
// separators. A ".." at the root is dropped.
func Normalize(p string) string {
	vol := filepath.VolumeName(p)
	rest := filepath.ToSlash(p[len(vol):])
	rooted := strings.HasPrefix(rest, "/")

	var out []string
	for _, seg := range strings.Split(rest, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		default:
			out = append(out, seg)
		}
	}

	joined := strings.Join(out, "/")
	if rooted {
		joined = "/" + joined
	}
	return vol + filepath.FromSlash(joined)
}

// within reports whether p equals root or lies below it, compared by whole
// path segments.
func within(p, root string) bool {
	if p == root {
		return true
	}
	if !strings.HasSuffix(root, string(filepath.Separator)) {
		root += string(filepath.Separator)
	}
	return strings.HasPrefix(p, root)
}
