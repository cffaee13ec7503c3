package storage

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

// VersionKey builds the object key for one document version:
// documents/doc_{documentID}/v{version}_{rand8}_{originalName}.
// The random component keeps repeated uploads of the same version slot from
// colliding in the object store.
func VersionKey(documentID int64, versionNumber int, originalName string) string {
	name := sanitizeName(originalName)
	disambiguator := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return path.Join(
		"documents",
		fmt.Sprintf("doc_%d", documentID),
		fmt.Sprintf("v%d_%s_%s", versionNumber, disambiguator, name),
	)
}

func sanitizeName(name string) string {
	if name == "" {
		return "file"
	}
	// Object keys are flat strings; strip any client-supplied path segments.
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	return name
}
