package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/dgallion1/crawlchunk/internal/chunker"
)

var (
	ErrRunDirMissing = errors.New("run directory not found")
	ErrNoDepthDirs   = errors.New("no depth_* directories in run directory")
)

// Input is one Markdown file found in a run directory.
type Input struct {
	AbsPath string
	Source  chunker.Source
}

// Discover lists the *.md files directly inside each depth_<N> directory of
// runDir, ordered by depth and then by file name.
func Discover(runDir string) ([]Input, error) {
	info, err := os.Stat(runDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrRunDirMissing, runDir)
	}

	entries, err := os.ReadDir(runDir)
	if err != nil {
		return nil, fmt.Errorf("read run directory: %w", err)
	}
	var depthDirs []string
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), "depth_") {
			depthDirs = append(depthDirs, e.Name())
		}
	}
	if len(depthDirs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoDepthDirs, runDir)
	}
	sort.Slice(depthDirs, func(i, j int) bool {
		di, dj := depthOf(depthDirs[i]), depthOf(depthDirs[j])
		if di != dj {
			return di < dj
		}
		return depthDirs[i] < depthDirs[j]
	})

	var inputs []Input
	for _, dir := range depthDirs {
		files, err := os.ReadDir(filepath.Join(runDir, dir))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", dir, err)
		}
		// ReadDir returns entries sorted by name.
		for _, f := range files {
			if f.IsDir() || filepath.Ext(f.Name()) != ".md" {
				continue
			}
			inputs = append(inputs, Input{
				AbsPath: filepath.Join(runDir, dir, f.Name()),
				Source:  chunker.SourceFromPath(dir + "/" + f.Name()),
			})
		}
	}
	return inputs, nil
}

func depthOf(name string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(name, "depth_"))
	if err != nil {
		return 0
	}
	return n
}
