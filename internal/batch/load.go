package batch

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
)

// documentSpec is the loosely-typed on-disk shape of a batch document.
type documentSpec struct {
	ID        string  `mapstructure:"id"`
	Type      string  `mapstructure:"type"`
	Party     string  `mapstructure:"party"`
	Amount    float64 `mapstructure:"amount"`
	RiskScore int     `mapstructure:"risk_score"`
	Issues    []Issue `mapstructure:"issues"`
}

// LoadFile reads a JSON array of batch documents from disk. Numeric fields
// are decoded weakly so ids or scores serialized as strings still load.
func LoadFile(path string) ([]*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading batch file: %w", err)
	}

	return Decode(data)
}

// Decode parses a JSON array of batch documents and constructs Documents
// with their derived fields.
func Decode(data []byte) ([]*Document, error) {
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing batch documents: %w", err)
	}

	docs := make([]*Document, 0, len(raw))
	for i, item := range raw {
		var spec documentSpec

		cfg := &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &spec,
		}
		decoder, _ := mapstructure.NewDecoder(cfg)
		if err := decoder.Decode(item); err != nil {
			return nil, fmt.Errorf("decoding batch document %d: %w", i, err)
		}

		if spec.ID == "" {
			return nil, fmt.Errorf("batch document %d has no id", i)
		}

		docs = append(docs, NewDocument(spec.ID, spec.Type, spec.Party, spec.Amount, spec.RiskScore, spec.Issues))
	}

	return docs, nil
}
