// Package refdata loads the screening reference data: the sanctions list
// and the set of high-risk jurisdictions.
package refdata

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// LoadSanctionsList reads a JSON array of sanctioned entity names.
func LoadSanctionsList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sanctions list: %w", err)
	}

	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("failed to parse sanctions list: %w", err)
	}
	return names, nil
}

// LoadHighRiskCountries reads a JSON array of ISO 3166-1 alpha-2 country
// codes and returns them as an uppercase-normalized set.
func LoadHighRiskCountries(path string) (map[string]struct{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read high-risk countries: %w", err)
	}

	var codes []string
	if err := json.Unmarshal(data, &codes); err != nil {
		return nil, fmt.Errorf("failed to parse high-risk countries: %w", err)
	}

	set := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		set[strings.ToUpper(strings.TrimSpace(code))] = struct{}{}
	}
	return set, nil
}
