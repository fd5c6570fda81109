package corpus

import (
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

func parseInt64(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty string")
	}
	return strconv.ParseInt(s, 10, 64)
}

// readColumns reads the CSV header and maps normalized column names to their
// index. Every name in required must be present.
func readColumns(reader *csv.Reader, required ...string) (map[string]int, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read header")
	}

	colIndex := make(map[string]int, len(header))
	for i, col := range header {
		colIndex[strings.TrimSpace(strings.ToLower(col))] = i
	}
	for _, col := range required {
		if _, ok := colIndex[col]; !ok {
			return nil, errors.Errorf("required column %q not found in CSV", col)
		}
	}
	return colIndex, nil
}
