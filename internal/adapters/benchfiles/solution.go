package benchfiles

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/andrescamacho/routing-go/internal/domain/benchmark"
	"github.com/andrescamacho/routing-go/internal/domain/shared"
)

var (
	routeLine = regexp.MustCompile(`(?i)^\s*route\s*#?\s*(\d+)\s*:\s*(.*)$`)
	costLine  = regexp.MustCompile(`(?i)^\s*(?:cost|objective)\s*:?\s*([-+0-9.eE]+)\s*$`)
)

// SolutionFileParser reads CVRPLIB-style .sol files: `Route #k: i j ...`
// lines followed by an optional Cost or Objective trailer. Route entries are
// customer numbers that skip the depot, so each is bumped by one and the tour
// is wrapped with depot index 0.
type SolutionFileParser struct{}

func NewSolutionFileParser() *SolutionFileParser {
	return &SolutionFileParser{}
}

func (p *SolutionFileParser) ParseSolution(name string, data []byte) (*benchmark.Solution, error) {
	solution := &benchmark.Solution{Name: stem(name)}

	for _, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))
		if line == "" {
			continue
		}
		if m := routeLine.FindStringSubmatch(line); m != nil {
			route, err := parseRouteNodes(m[2])
			if err != nil {
				return nil, shared.NewInputError(name, fmt.Sprintf("malformed route line %q", line))
			}
			solution.Routes = append(solution.Routes, route)
			continue
		}
		if m := costLine.FindStringSubmatch(line); m != nil {
			if cost, err := strconv.ParseFloat(m[1], 64); err == nil {
				solution.Cost = cost
			}
		}
	}

	if len(solution.Routes) == 0 {
		return nil, shared.NewInputError(name, "file carries no route lines")
	}
	return solution, nil
}

func parseRouteNodes(text string) ([]int, error) {
	fields := strings.Fields(text)
	route := make([]int, 0, len(fields)+2)
	route = append(route, 0)
	for _, field := range fields {
		customer, err := strconv.Atoi(field)
		if err != nil {
			return nil, err
		}
		route = append(route, customer+1)
	}
	route = append(route, 0)
	return route, nil
}
