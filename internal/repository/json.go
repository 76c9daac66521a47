package repository

// json.go holds the typed serialize/deserialize boundary for array
// columns. Amenities, images and the ranked option list are stored as
// JSON text in the database; the rest of the application only ever
// sees native slices. Encoding order is preserved, which is what makes
// the top3 column's array order equal rank order.

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/uprez/upgrade-engine/internal/model"
)

// decodeStrings parses a JSON string-array column. NULL and empty
// columns decode to nil rather than erroring, since seed data is not
// always fully populated.
func decodeStrings(col sql.NullString) ([]string, error) {
	if !col.Valid || col.String == "" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(col.String), &out); err != nil {
		return nil, fmt.Errorf("decode string array: %w", err)
	}
	return out, nil
}

// encodeStrings serializes a string slice for storage. A nil slice is
// stored as an empty JSON array so round-tripping stays lossless.
func encodeStrings(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode string array: %w", err)
	}
	return string(b), nil
}

// decodeOptions parses the top3 column into the ranked option list.
func decodeOptions(col sql.NullString) ([]model.UpgradeOption, error) {
	if !col.Valid || col.String == "" {
		return nil, nil
	}
	var out []model.UpgradeOption
	if err := json.Unmarshal([]byte(col.String), &out); err != nil {
		return nil, fmt.Errorf("decode options: %w", err)
	}
	return out, nil
}

// encodeOptions serializes the ranked option list, array order equal
// to rank order.
func encodeOptions(v []model.UpgradeOption) (string, error) {
	if v == nil {
		v = []model.UpgradeOption{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode options: %w", err)
	}
	return string(b), nil
}
