package year2020

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/MyCarrier-DevOps/advent-runner/internal/catalog"
	"github.com/MyCarrier-DevOps/advent-runner/internal/domain"
)

func init() {
	catalog.MustRegister(catalog.Descriptor{
		Key:        domain.DayKey{Year: 2020, Day: 19},
		NeedsInput: true,
		New:        func() domain.Solution { return &Day19{} },
	})
}

// Day19 validates satellite messages against a grammar of numbered rules.
type Day19 struct{}

// PartOne counts the messages that match rule 0 exactly.
func (d *Day19) PartOne(_ context.Context, input string) (domain.Answer, error) {
	rules, messages, err := parseMessageRules(input)
	if err != nil {
		return domain.Answer{}, err
	}

	expr, err := expandRule(rules, "0", make(map[string]string), make(map[string]bool))
	if err != nil {
		return domain.Answer{}, err
	}
	re, err := regexp.Compile("^" + expr + "$")
	if err != nil {
		return domain.Answer{}, fmt.Errorf("rule 0 does not compile: %w", err)
	}

	count := 0
	for _, m := range messages {
		if re.MatchString(m) {
			count++
		}
	}
	return domain.SolvedInt(count), nil
}

// PartTwo needs looping rules, which a regular expression cannot express.
func (d *Day19) PartTwo(_ context.Context, _ string) (domain.Answer, error) {
	return domain.NotSolved(), nil
}

// expandRule turns rule id into a regular expression. Literal rules are
// quoted; alternatives become non-capturing groups.
func expandRule(rules map[string]string, id string, memo map[string]string, active map[string]bool) (string, error) {
	if expr, ok := memo[id]; ok {
		return expr, nil
	}
	body, ok := rules[id]
	if !ok {
		return "", fmt.Errorf("rule %s is not defined", id)
	}
	if active[id] {
		return "", fmt.Errorf("rule %s refers to itself", id)
	}
	active[id] = true
	defer delete(active, id)

	var expr string
	if strings.HasPrefix(body, `"`) {
		expr = regexp.QuoteMeta(strings.Trim(body, `"`))
	} else {
		alts := strings.Split(body, "|")
		parts := make([]string, 0, len(alts))
		for _, alt := range alts {
			var seq strings.Builder
			for _, ref := range strings.Fields(alt) {
				sub, err := expandRule(rules, ref, memo, active)
				if err != nil {
					return "", err
				}
				seq.WriteString(sub)
			}
			parts = append(parts, seq.String())
		}
		expr = strings.Join(parts, "|")
		if len(parts) > 1 {
			expr = "(?:" + expr + ")"
		}
	}
	memo[id] = expr
	return expr, nil
}

// parseMessageRules splits the input into its rules and the messages that
// follow the first blank line.
func parseMessageRules(input string) (map[string]string, []string, error) {
	input = strings.ReplaceAll(input, "\r\n", "\n")
	ruleBlock, messageBlock, found := strings.Cut(strings.TrimLeft(input, "\n"), "\n\n")
	if !found {
		return nil, nil, fmt.Errorf("input has no blank line between rules and messages")
	}

	rules := make(map[string]string)
	for i, line := range strings.Split(ruleBlock, "\n") {
		id, body, ok := strings.Cut(line, ":")
		if !ok {
			return nil, nil, fmt.Errorf("line %d: unrecognised rule %q", i+1, line)
		}
		rules[strings.TrimSpace(id)] = strings.TrimSpace(body)
	}

	var messages []string
	for _, line := range strings.Split(messageBlock, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			messages = append(messages, line)
		}
	}
	return rules, messages, nil
}
