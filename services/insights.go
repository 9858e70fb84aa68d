package services

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"collegedunia-scraper/models"
	"collegedunia-scraper/utils"
)

// rankRegexp captures the numeric part of a display rank like "#12".
var rankRegexp = regexp.MustCompile(`\d+`)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(colleges []*models.College) *models.RunReport {
	report := &models.RunReport{
		CollegesByState: make(map[string]int),
	}

	if len(colleges) == 0 {
		return report
	}

	report.TotalColleges = len(colleges)

	var ranked []*models.College
	for _, c := range colleges {
		if c.Fees != "" {
			report.WithFees++
		}
		if c.Ranking != "" {
			report.WithRanking++
		}
		if c.Reviews != "" {
			report.WithReviews++
		}
		if c.State != "" {
			report.CollegesByState[c.State]++
		}
		if _, ok := parseRank(c.Rank); ok {
			ranked = append(ranked, c)
		}
	}

	// Top 5 by CD rank (lower is better)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, _ := parseRank(ranked[i].Rank)
		b, _ := parseRank(ranked[j].Rank)
		return a < b
	})
	if len(ranked) > 5 {
		report.TopRanked = ranked[:5]
	} else {
		report.TopRanked = ranked
	}

	return report
}

// parseRank extracts the numeric rank from display text like "#3" or "3".
func parseRank(raw string) (int, bool) {
	match := rankRegexp.FindString(raw)
	if match == "" {
		return 0, false
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (s *InsightService) Print(r *models.RunReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  📊 COLLEGEDUNIA COLLECTION INSIGHTS\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	// Overview
	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Total colleges collected : \033[1m%d\033[0m\n", r.TotalColleges)
	fmt.Printf("  With fee data            : \033[1m%d\033[0m\n", r.WithFees)
	fmt.Printf("  With ranking data        : \033[1m%d\033[0m\n", r.WithRanking)
	fmt.Printf("  With user reviews        : \033[1m%d\033[0m\n", r.WithReviews)
	fmt.Println()

	// Top Ranked
	fmt.Printf("\033[1;33m  Top 5 by CD Rank\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.TopRanked) == 0 {
		fmt.Printf("  No ranked colleges found\n")
	} else {
		for i, c := range r.TopRanked {
			name := truncate(c.Name, 38)
			fmt.Printf("  \033[1m%d.\033[0m %-40s \033[1;32m%s\033[0m\n", i+1, name, c.Rank)
		}
	}
	fmt.Println()

	// Colleges by State
	fmt.Printf("\033[1;33m  Colleges by State\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.CollegesByState) == 0 {
		fmt.Printf("  No state data\n")
	} else {
		type stateCount struct {
			state string
			count int
		}
		var states []stateCount
		for st, cnt := range r.CollegesByState {
			if st != "" {
				states = append(states, stateCount{st, cnt})
			}
		}
		sort.Slice(states, func(i, j int) bool {
			if states[i].count != states[j].count {
				return states[i].count > states[j].count
			}
			return states[i].state < states[j].state
		})
		for _, sc := range states {
			bar := strings.Repeat("█", sc.count)
			fmt.Printf("  %-30s %s (%d)\n", truncate(sc.state, 28), bar, sc.count)
		}
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
