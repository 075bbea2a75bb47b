package labeling

import (
	"encoding/csv"
	"fmt"
	"os"
)

// ReadCSV loads a whole CSV file, header included.
func ReadCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return records, nil
}

func WriteCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func RoleRecords(results []RoleResult) [][]string {
	records := [][]string{{"quote", "role", "response"}}
	for _, r := range results {
		records = append(records, []string{r.Quote, r.Role, r.Response})
	}
	return records
}

func LabelRecords(results []LabelResult) [][]string {
	records := [][]string{{"quote", "labels", "response"}}
	for _, r := range results {
		records = append(records, []string{r.Quote, r.Labels, r.Response})
	}
	return records
}

// LabelSets splits the normalized labels of every result.
func LabelSets(results []LabelResult) [][]string {
	sets := make([][]string, 0, len(results))
	for _, r := range results {
		sets = append(sets, SplitLabels(r.Labels))
	}
	return sets
}
