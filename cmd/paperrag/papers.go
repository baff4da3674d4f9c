package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// paperPaths walks {root}/{conf}/{year}/{base} and returns each paper's
// path relative to root (the "{conf}/{year}/{base}" form used
// throughout the pipeline as paper_path/paper_base).
func paperPaths(root string) ([]string, error) {
	var paths []string

	confs, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("paperrag: failed to read %s: %w", root, err)
	}
	for _, conf := range confs {
		if !conf.IsDir() {
			continue
		}
		years, err := os.ReadDir(filepath.Join(root, conf.Name()))
		if err != nil {
			return nil, fmt.Errorf("paperrag: failed to read %s: %w", filepath.Join(root, conf.Name()), err)
		}
		for _, year := range years {
			if !year.IsDir() {
				continue
			}
			bases, err := os.ReadDir(filepath.Join(root, conf.Name(), year.Name()))
			if err != nil {
				return nil, fmt.Errorf("paperrag: failed to read %s: %w", filepath.Join(root, conf.Name(), year.Name()), err)
			}
			for _, base := range bases {
				if !base.IsDir() {
					continue
				}
				paths = append(paths, filepath.Join(conf.Name(), year.Name(), base.Name()))
			}
		}
	}
	return paths, nil
}

// rawTitles lists the raw section titles (file basenames without .txt)
// present under a paper's raw-section directory.
func rawTitles(paperDir string) ([]string, error) {
	entries, err := os.ReadDir(paperDir)
	if err != nil {
		return nil, fmt.Errorf("paperrag: failed to read %s: %w", paperDir, err)
	}
	var titles []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		titles = append(titles, strings.TrimSuffix(e.Name(), ".txt"))
	}
	return titles, nil
}

// readAbstract reads {abstract_extract}/{paperPath}.txt, returning "" if
// absent.
func readAbstract(abstractDir, paperPath string) (string, error) {
	path := filepath.Join(abstractDir, paperPath+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("paperrag: failed to read abstract %s: %w", path, err)
	}
	return string(data), nil
}
