// Encodes and decodes row file names of the form "<id>_<name>.<ext>".

package dirdb

import (
	"path/filepath"
	"strconv"
	"strings"
)

// RowStem returns the file stem "<id>_<name>" for a row.
//
// Path separators in name are replaced with '-' so the row stays inside its
// table directory.
func RowStem(id int, name string) string {
	name = strings.NewReplacer("/", "-", `\`, "-").Replace(name)
	return strconv.Itoa(id) + "_" + name
}

// IDFromPath returns the id encoded as the leading "_"-delimited token of the
// file name at path.
//
// It returns false when the token is not a non-negative decimal integer. It
// never fails otherwise: foreign files are simply not rows.
func IDFromPath(path string) (int, bool) {
	tok, _, _ := strings.Cut(stem(path), "_")
	if tok == "" {
		return 0, false
	}
	for i := 0; i < len(tok); i++ {
		if tok[i] < '0' || tok[i] > '9' {
			return 0, false
		}
	}
	id, err := strconv.Atoi(tok)
	if err != nil {
		return 0, false
	}
	return id, true
}

// NameFromPath returns the display name encoded in the file name at path, that
// is everything after the first '_' of the stem. Underscores inside the name
// are preserved. Returns "" when there is no name part.
func NameFromPath(path string) string {
	_, name, _ := strings.Cut(stem(path), "_")
	return name
}

// stem returns the base name of path without its last extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// normalizeExt returns ext with a leading dot.
func normalizeExt(ext string) string {
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}
