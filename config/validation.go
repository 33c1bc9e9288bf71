package config

import "fmt"

var validLogLevels = map[string]bool{
	"": true, "debug": true, "info": true, "warn": true, "error": true,
}

func (fc *FileConfig) Validate() error {
	if fc.Logging.Format != "" && fc.Logging.Format != "console" && fc.Logging.Format != "json" {
		return fmt.Errorf("invalid logging format: %s", fc.Logging.Format)
	}
	if !validLogLevels[fc.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", fc.Logging.Level)
	}

	if len(fc.Cells) == 0 {
		return fmt.Errorf("no cells found in configuration")
	}

	seen := make(map[string]bool, len(fc.Cells))
	for i, cell := range fc.Cells {
		if cell.Name == "" {
			return fmt.Errorf("cell %d is missing a name", i)
		}
		if seen[cell.Name] {
			return fmt.Errorf("cell name '%s' is duplicated", cell.Name)
		}
		seen[cell.Name] = true

		if cell.Readers < 0 || cell.Writers < 0 {
			return fmt.Errorf("cell '%s' has negative reader or writer counts", cell.Name)
		}
		if cell.Readers+cell.Writers == 0 {
			return fmt.Errorf("cell '%s' has no readers or writers", cell.Name)
		}
		if cell.Iterations <= 0 {
			return fmt.Errorf("cell '%s' must have a positive iteration count", cell.Name)
		}
	}
	return nil
}
