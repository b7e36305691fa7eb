package batch

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadSeedFile loads one seed per non-blank line. Lines starting with
// '#' are comments. Duplicate seeds are collapsed, keeping first
// occurrence order, so state-map entries stay unique.
func ReadSeedFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	seen := make(map[string]bool)
	var seeds []string

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if seen[line] {
			continue
		}
		seen[line] = true
		seeds = append(seeds, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return seeds, nil
}
