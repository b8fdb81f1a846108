package scan

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/zeebo/blake3"
)

// DuplicateReport summarizes whole-file content duplication.
type DuplicateReport struct {
	Total  int        `json:"total" yaml:"total"`
	Unique int        `json:"unique" yaml:"unique"`
	Groups [][]string `json:"groups" yaml:"groups"`
}

// Rate is the share of files whose content already appeared in another file,
// 1 - unique/total. It is 0 when there are no files.
func (r DuplicateReport) Rate() float64 {
	if r.Total == 0 {
		return 0
	}
	return 1 - float64(r.Unique)/float64(r.Total)
}

// Duplicates hashes every file and groups the ones with identical content.
// Groups hold at least two paths and keep the input order.
func Duplicates(paths []string) (DuplicateReport, error) {
	byHash := make(map[[32]byte][]string)
	var order [][32]byte

	for _, path := range paths {
		sum, err := hashFile(path)
		if err != nil {
			return DuplicateReport{}, err
		}
		if _, ok := byHash[sum]; !ok {
			order = append(order, sum)
		}
		byHash[sum] = append(byHash[sum], path)
	}

	report := DuplicateReport{Total: len(paths), Unique: len(byHash)}
	for _, sum := range order {
		if group := byHash[sum]; len(group) > 1 {
			report.Groups = append(report.Groups, slices.Clone(group))
		}
	}
	return report, nil
}

func hashFile(path string) ([32]byte, error) {
	var sum [32]byte
	f, err := os.Open(path)
	if err != nil {
		return sum, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return sum, fmt.Errorf("failed to hash %s: %w", path, err)
	}
	copy(sum[:], h.Sum(nil))
	return sum, nil
}
