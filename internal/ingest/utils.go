package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/ribbon-tracker/constants"
)

// AllowedExt checks if a file extension is in the allowed set (defaults to pdf/txt/json).
func AllowedExt(ext string, exts map[string]struct{}) bool {
	if exts == nil {
		exts = constants.AllowedExtensions
	}
	_, ok := exts[constants.NormalizeExt(ext)]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}

// ExtSet builds an extension set from user input such as "PDF,.txt".
func ExtSet(exts []string) map[string]struct{} {
	if len(exts) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		for _, part := range strings.Split(e, ",") {
			if n := constants.NormalizeExt(strings.TrimSpace(part)); n != "" {
				out[n] = struct{}{}
			}
		}
	}
	return out
}
