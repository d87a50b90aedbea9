package year2020

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/MyCarrier-DevOps/advent-runner/internal/catalog"
	"github.com/MyCarrier-DevOps/advent-runner/internal/domain"
)

func init() {
	catalog.MustRegister(catalog.Descriptor{
		Key:        domain.DayKey{Year: 2020, Day: 7},
		NeedsInput: true,
		New:        func() domain.Solution { return &Day07{} },
	})
}

const target = "shiny gold"

var (
	ruleRe    = regexp.MustCompile(`^(\w+ \w+) bags contain (.+)\.$`)
	contentRe = regexp.MustCompile(`^(\d+) (\w+ \w+) bags?$`)
)

// Day07 answers questions about nested luggage rules.
type Day07 struct{}

// bagRules maps a colour to the colours, and counts, it must directly hold.
type bagRules map[string]map[string]int

// PartOne counts the colours that can eventually hold a shiny gold bag.
func (d *Day07) PartOne(_ context.Context, input string) (domain.Answer, error) {
	rules, err := parseRules(input)
	if err != nil {
		return domain.Answer{}, err
	}

	holders := make(map[string][]string)
	for outer, inner := range rules {
		for colour := range inner {
			holders[colour] = append(holders[colour], outer)
		}
	}

	seen := make(map[string]bool)
	queue := []string{target}
	for len(queue) > 0 {
		colour := queue[0]
		queue = queue[1:]
		for _, outer := range holders[colour] {
			if !seen[outer] {
				seen[outer] = true
				queue = append(queue, outer)
			}
		}
	}
	return domain.SolvedInt(len(seen)), nil
}

// PartTwo counts the bags required inside a single shiny gold bag.
func (d *Day07) PartTwo(_ context.Context, input string) (domain.Answer, error) {
	rules, err := parseRules(input)
	if err != nil {
		return domain.Answer{}, err
	}
	if _, ok := rules[target]; !ok {
		return domain.Answer{}, fmt.Errorf("no rule for %s bags", target)
	}

	total, err := countInside(rules, target, make(map[string]int), make(map[string]bool))
	if err != nil {
		return domain.Answer{}, err
	}
	return domain.SolvedInt(total), nil
}

// countInside returns how many bags a colour holds in total. active tracks
// the colours on the current path so cyclic rules fail instead of recursing
// forever.
func countInside(rules bagRules, colour string, memo map[string]int, active map[string]bool) (int, error) {
	if n, ok := memo[colour]; ok {
		return n, nil
	}
	if active[colour] {
		return 0, fmt.Errorf("rules for %s bags are cyclic", colour)
	}
	active[colour] = true
	defer delete(active, colour)

	total := 0
	for c, n := range rules[colour] {
		held, err := countInside(rules, c, memo, active)
		if err != nil {
			return 0, err
		}
		total += n * (1 + held)
	}
	memo[colour] = total
	return total, nil
}

func parseRules(input string) (bagRules, error) {
	rules := make(bagRules)
	for i, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		m := ruleRe.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("line %d: unrecognised rule %q", i+1, line)
		}

		inner := make(map[string]int)
		if m[2] != "no other bags" {
			for _, part := range strings.Split(m[2], ", ") {
				c := contentRe.FindStringSubmatch(part)
				if c == nil {
					return nil, fmt.Errorf("line %d: unrecognised contents %q", i+1, part)
				}
				n, _ := strconv.Atoi(c[1])
				inner[c[2]] = n
			}
		}
		rules[m[1]] = inner
	}
	return rules, nil
}
