// Package cache memoizes reduce summaries so repeated runs over the
// same dataset skip recomputation. The cache is advisory: a miss or a
// disabled cache never changes results, only timing.
package cache

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/spaolacci/murmur3"
)

// Fingerprint identifies one (dataset, transform) combination. It is a
// murmur3-128 hash of the dataset bytes plus the transform parameters,
// rendered as hex so it can double as a filename.
func Fingerprint(datasetPath, keyColumn, aggregate, valueColumn string) (string, error) {
	f, err := os.Open(datasetPath)
	if err != nil {
		return "", fmt.Errorf("fingerprint dataset %s: %w", datasetPath, err)
	}
	defer f.Close()

	h := murmur3.New128()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("fingerprint dataset %s: %w", datasetPath, err)
	}
	fmt.Fprintf(h, "|%s|%s|%s", keyColumn, aggregate, valueColumn)

	h1, h2 := h.Sum128()
	var buf [16]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(h1 >> (56 - 8*i))
		buf[8+i] = byte(h2 >> (56 - 8*i))
	}
	return hex.EncodeToString(buf[:]), nil
}
