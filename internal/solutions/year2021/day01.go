package year2021

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/MyCarrier-DevOps/advent-runner/internal/catalog"
	"github.com/MyCarrier-DevOps/advent-runner/internal/domain"
)

func init() {
	catalog.MustRegister(catalog.Descriptor{
		Key:        domain.DayKey{Year: 2021, Day: 1},
		NeedsInput: true,
		New:        func() domain.Solution { return &Day01{} },
	})
}

// Day01 counts depth increases in a sonar sweep.
type Day01 struct{}

// PartOne counts measurements larger than the one before.
func (d *Day01) PartOne(_ context.Context, input string) (domain.Answer, error) {
	depths, err := parseDepths(input)
	if err != nil {
		return domain.Answer{}, err
	}
	return domain.SolvedInt(countIncreases(depths, 1)), nil
}

// PartTwo counts increases between sums of three-measurement windows.
// Consecutive windows share two terms, so comparing the edges is enough.
func (d *Day01) PartTwo(_ context.Context, input string) (domain.Answer, error) {
	depths, err := parseDepths(input)
	if err != nil {
		return domain.Answer{}, err
	}
	return domain.SolvedInt(countIncreases(depths, 3)), nil
}

func countIncreases(depths []int, window int) int {
	count := 0
	for i := window; i < len(depths); i++ {
		if depths[i] > depths[i-window] {
			count++
		}
	}
	return count
}

func parseDepths(input string) ([]int, error) {
	fields := strings.Fields(input)
	depths := make([]int, 0, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid depth %q: %w", i+1, f, err)
		}
		depths = append(depths, n)
	}
	return depths, nil
}
