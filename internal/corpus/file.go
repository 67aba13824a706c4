package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"deepsight-be/internal/entity"
)

// FileRecord is one entry of the scraper's JSON output.
type FileRecord struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	FreeText string `json:"free_text"`
}

// LoadFile reads a JSON array of scraper records. Records without a name or
// free text are skipped.
func LoadFile(path string) ([]*entity.Facility, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus file: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) ([]*entity.Facility, error) {
	var records []FileRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode corpus: %w", err)
	}

	facilities := make([]*entity.Facility, 0, len(records))
	for _, r := range records {
		name := strings.TrimSpace(r.Name)
		text := strings.TrimSpace(r.FreeText)
		if name == "" || text == "" {
			continue
		}
		facilities = append(facilities, &entity.Facility{
			Name:       name,
			Location:   strings.TrimSpace(r.Location),
			FreeText:   text,
			Attributes: ParseAttributes(text),
		})
	}
	return facilities, nil
}

// ParseAttributes picks "key: value" segments out of the comma separated free
// text, e.g. "Timings: 6 AM - 6 PM" becomes timings => "6 AM - 6 PM".
func ParseAttributes(freeText string) map[string]string {
	attrs := make(map[string]string)
	for _, seg := range strings.Split(freeText, ",") {
		key, value, ok := strings.Cut(seg, ":")
		if !ok {
			continue
		}
		key = strings.Join(strings.Fields(strings.ToLower(key)), "_")
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		if _, dup := attrs[key]; !dup {
			attrs[key] = value
		}
	}
	if len(attrs) == 0 {
		return nil
	}
	return attrs
}
