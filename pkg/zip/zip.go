// Package zip bundles generated listing assets for handoff to the seller.
package zip

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

type Asset struct {
	Filename string
	Data     []byte
}

// ArchiveAssets writes the assets into an in-memory zip archive.
func ArchiveAssets(assets []Asset) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, asset := range assets {
		w, err := zw.Create(asset.Filename)
		if err != nil {
			return nil, fmt.Errorf("zip: add %s: %w", asset.Filename, err)
		}
		if _, err := w.Write(asset.Data); err != nil {
			return nil, fmt.Errorf("zip: write %s: %w", asset.Filename, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip: close archive: %w", err)
	}
	return buf.Bytes(), nil
}

// ArchiveDir zips every regular file under dir (images and their prompt
// sidecars) into outPath. Paths inside the archive are relative to dir.
func ArchiveDir(dir, outPath string) error {
	var assets []Asset
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		assets = append(assets, Asset{Filename: filepath.ToSlash(rel), Data: data})
		return nil
	})
	if err != nil {
		return fmt.Errorf("zip: walk %s: %w", dir, err)
	}
	if len(assets) == 0 {
		return fmt.Errorf("zip: no assets under %s", dir)
	}
	archive, err := ArchiveAssets(assets)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, archive, 0o644); err != nil {
		return fmt.Errorf("zip: write %s: %w", outPath, err)
	}
	return nil
}
