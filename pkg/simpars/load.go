package simpars

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a parameter file and decodes it into SimPars. The format is
// chosen by file extension: .json, .yml or .yaml. The returned parameters are
// validated; a race can be constructed from them without further checks.
func LoadFile(path string) (*SimPars, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading parameter file %s: %w", path, err)
	}

	var pars SimPars
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &pars); err != nil {
			return nil, fmt.Errorf("parsing parameter file %s: %w", path, err)
		}
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(data, &pars); err != nil {
			return nil, fmt.Errorf("parsing parameter file %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported parameter file format %q", filepath.Ext(path))
	}

	if err := pars.Validate(); err != nil {
		return nil, err
	}
	return &pars, nil
}
