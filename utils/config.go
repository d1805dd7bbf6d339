package utils

import (
	"fmt"
	"strconv"
	"strings"

	"pmc_lib/m"
)

// Config holds training configuration
type Config struct {
	Architecture []int
	LearningRate float64
	Epochs       int
	Mode         string
	Seed         int64
	DataPath     string
	Shuffle      bool
	Normalize    bool
}

// ParseArchitecture parses "2 3 1" or "2,3,1" into layer sizes
func ParseArchitecture(archStr string) ([]int, error) {
	archParts := strings.FieldsFunc(archStr, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	arch := make([]int, len(archParts))
	for i, s := range archParts {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		arch[i] = n
	}
	return arch, nil
}

// ValidateConfig validates training configuration
func ValidateConfig(config *Config) error {
	if err := m.Topology(config.Architecture).Validate(); err != nil {
		return fmt.Errorf("architecture: %w", err)
	}

	if config.LearningRate <= 0 {
		return fmt.Errorf("learning rate must be positive")
	}

	if config.Epochs <= 0 {
		return fmt.Errorf("epochs must be positive")
	}

	if _, err := m.ParseMode(config.Mode); err != nil {
		return err
	}

	return nil
}
