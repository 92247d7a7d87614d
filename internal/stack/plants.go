package stack

import (
	"fmt"
	"strings"

	"github.com/tigerroll/surfin-energy/internal/source"
)

// ResolvePlants returns the energy columns owned by region. An explicit
// mapping must only name existing columns; without one every column whose
// name contains the region label belongs to it, in file order.
func ResolvePlants(region string, energyColumns []string, mapping map[string][]string) ([]string, error) {
	if cols, ok := mapping[region]; ok {
		known := make(map[string]bool, len(energyColumns))
		for _, c := range energyColumns {
			known[c] = true
		}
		var missing []string
		for _, c := range cols {
			if !known[c] {
				missing = append(missing, c)
			}
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("plants for region %q not in energy file: %s: %w", region, strings.Join(missing, ", "), source.ErrSchemaMismatch)
		}
		return append([]string(nil), cols...), nil
	}

	var plants []string
	for _, c := range energyColumns {
		if strings.Contains(c, region) {
			plants = append(plants, c)
		}
	}
	return plants, nil
}
