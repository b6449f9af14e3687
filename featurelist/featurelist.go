// Package featurelist resolves the feature-file arguments given on the
// command line into the ordered list of features a run will execute.
package featurelist

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FeatureExtension is the file extension used to discover feature files in a directory.
const FeatureExtension = ".feature"

// Feature identifies one feature file to be executed as a separate process.
// Identity is the full path; Name is only used for log artifact naming and
// may collide between features living in different directories.
type Feature struct {
	Path string
}

// Name returns the final path segment with its extension removed.
func (f Feature) Name() string {
	base := filepath.Base(f.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// List resolves the given arguments into features.
//
// Accepted forms, mirroring the behave CLI conventions:
//   - a single path to a directory of features
//   - a single path to a feature file
//   - multiple paths to different feature files
func List(args []string) ([]Feature, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("feature file/directory path not specified")
	}

	if len(args) == 1 {
		arg := args[0]
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid feature/dir path: %w", arg, err)
		}
		if info.IsDir() {
			return listDir(arg)
		}
		return []Feature{{Path: arg}}, nil
	}

	// Multiple args must all be feature files, not directories.
	features := make([]Feature, 0, len(args))
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid feature/dir path: %w", arg, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%q is a directory; specify multiple feature file paths or a single directory of features", arg)
		}
		features = append(features, Feature{Path: arg})
	}
	return features, nil
}

// listDir scans a directory for feature files in directory-listing order.
// Subdirectories are not descended into.
func listDir(dir string) ([]Feature, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read features directory %q: %w", dir, err)
	}

	var features []Feature
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), FeatureExtension) {
			continue
		}
		features = append(features, Feature{Path: filepath.Join(dir, entry.Name())})
	}
	return features, nil
}
