package predict

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ScoreColumn is the dataset column summarised for the result chart.
const ScoreColumn = "Mental_Health_Score"

// LoadDistribution counts how many dataset rows have each mental health score
// from 1 to 10. Index 0 holds the count for score 1.
func LoadDistribution(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadDistribution(f)
}

func ReadDistribution(r io.Reader) ([]int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := -1
	for i, name := range header {
		if strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) == ScoreColumn {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("column %s not found", ScoreColumn)
	}

	counts := make([]int, 10)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if col >= len(rec) {
			continue
		}
		score, err := strconv.Atoi(strings.TrimSpace(rec[col]))
		if err != nil || score < 1 || score > 10 {
			continue
		}
		counts[score-1]++
	}
	return counts, nil
}
