package m

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
)

// Line is one training sample.
type Line struct {
	Inputs  []float64
	Targets []float64
}
type Lines []Line

// GetLines reads comma separated samples, inputNum input values followed by
// outputNum target values per line. Blank lines and lines starting with '#'
// are skipped.
func GetLines(reader io.Reader, inputNum, outputNum int) (Lines, error) {
	scanner := bufio.NewScanner(reader)
	var lines Lines
	var lineNum int
	for scanner.Scan() {
		lineNum++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		splits := strings.Split(text, ",")
		if len(splits) != inputNum+outputNum {
			return lines, errInvalidLine{
				lineNum:  lineNum,
				splits:   len(splits),
				expected: inputNum + outputNum,
			}
		}
		inputs := make([]float64, inputNum)
		targets := make([]float64, outputNum)

		for i, split := range splits {
			num, err := strconv.ParseFloat(strings.TrimSpace(split), 64)
			if i < inputNum {
				if err != nil {
					return lines, fmt.Errorf("line %d: parsing input: %w", lineNum, err)
				}
				inputs[i] = num
			} else {
				if err != nil {
					return lines, fmt.Errorf("line %d: parsing target: %w", lineNum, err)
				}
				targets[i-inputNum] = num
			}
		}
		lines = append(lines, Line{
			Inputs:  inputs,
			Targets: targets,
		})
	}
	if err := scanner.Err(); err != nil {
		return lines, fmt.Errorf("reading lines: %w", err)
	}
	return lines, nil
}

type errInvalidLine struct {
	lineNum  int
	splits   int
	expected int
}

func (e errInvalidLine) Error() string {
	return fmt.Sprintf("at line %d, expected %d values, got %d",
		e.lineNum, e.expected, e.splits)
}

// Shuffle reorders lines in place.
func Shuffle(lines Lines, rng *rand.Rand) {
	rng.Shuffle(len(lines), func(i, j int) {
		lines[i], lines[j] = lines[j], lines[i]
	})
}

func NormalizeLines(lines Lines, std []float64, mean []float64) Lines {
	normalizedLines := make(Lines, len(lines))
	for i, line := range lines {
		normalizedInputs := make([]float64, len(line.Inputs))
		for j, x := range line.Inputs {
			normalizedInputs[j] = x - mean[j]
			// constant columns are only centred
			if std[j] != 0 {
				normalizedInputs[j] /= std[j]
			}
		}

		normalizedLines[i] = Line{
			Inputs:  normalizedInputs,
			Targets: line.Targets,
		}
	}
	return normalizedLines
}

// inputColumns returns the inputs of lines column by column.
func inputColumns(lines Lines) [][]float64 {
	cols := make([][]float64, len(lines[0].Inputs))
	for j := range cols {
		cols[j] = make([]float64, len(lines))
		for i, line := range lines {
			cols[j][i] = line.Inputs[j]
		}
	}
	return cols
}

// CalculateMean returns the mean of every input column.
func CalculateMean(lines Lines) []float64 {
	if len(lines) == 0 {
		return nil
	}
	cols := inputColumns(lines)
	mean := make([]float64, len(cols))
	for j, col := range cols {
		mean[j] = stat.Mean(col, nil)
	}
	return mean
}

// CalculateStdDev returns the population standard deviation of every input
// column.
func CalculateStdDev(lines Lines) []float64 {
	if len(lines) == 0 {
		return nil
	}
	cols := inputColumns(lines)
	std := make([]float64, len(cols))
	for j, col := range cols {
		_, std[j] = stat.PopMeanStdDev(col, nil)
	}
	return std
}
