package source

import (
	"path/filepath"
	"slices"
	"sort"
)

// normalizeCRLF rewrites \r\n to \n, leaving lone \r untouched. The second
// result reports whether any replacement happened.
func normalizeCRLF(content []byte) ([]byte, bool) {
	if !slices.Contains(content, '\r') {
		return content, false
	}
	out := make([]byte, 0, len(content))
	changed := false
	i := 0
	for i < len(content) {
		if content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n' {
			out = append(out, '\n')
			i += 2
			changed = true
		} else {
			out = append(out, content[i])
			i++
		}
	}
	return out, changed
}

func buildLineIndex(content []byte) []uint32 {
	out := make([]uint32, 0, 16)
	for i, b := range content {
		if b == '\n' {
			out = append(out, uint32(i))
		}
	}
	return out
}

// toLineCol counts the newlines strictly before off by binary search.
func toLineCol(lineIdx []uint32, off uint32) LineCol {
	n := sort.Search(len(lineIdx), func(i int) bool { return lineIdx[i] >= off })
	if n == 0 {
		return LineCol{Line: 1, Col: off + 1}
	}
	start := lineIdx[n-1] + 1
	return LineCol{Line: uint32(n + 1), Col: off - start + 1}
}

func normalizePath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}
