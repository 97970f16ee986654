package invoice

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// ReadMetadata finds and reads the sidecar metadata for an invoice document.
// For "INV_EN_001.pdf" it looks for "INV_EN_001.meta.json" next to the file.
// A missing sidecar is not an error; the zero Metadata is returned.
func ReadMetadata(documentPath string) (Metadata, error) {
	stem := strings.TrimSuffix(documentPath, filepath.Ext(documentPath))
	metaPath := stem + ".meta.json"

	data, err := os.ReadFile(metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Metadata{}, nil
		}
		return Metadata{}, err
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return Metadata{}, err
	}
	return meta, nil
}

// MetadataPath returns the sidecar path for an invoice document path.
func MetadataPath(documentPath string) string {
	return strings.TrimSuffix(documentPath, filepath.Ext(documentPath)) + ".meta.json"
}
