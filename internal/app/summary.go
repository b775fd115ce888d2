package app

import (
	"fmt"
	"strings"
	"time"
)

type StartupSummary struct {
	Env       string
	Timezone  string
	Venues    []string
	Snapshot  string
	Panel     *PanelSummary
	Refresher *RefresherSummary
}

type PanelSummary struct {
	PositionsPath string
	OutputPath    string
	Interval      time.Duration
	ModeFilter    string
	GainMode      string
	Classifier    string
	Tiers         []string
	Alerts        bool
	Watching      bool
}

type RefresherSummary struct {
	Interval time.Duration
	Symbols  []string
}

func (s *StartupSummary) Print() {
	fmt.Println(strings.Repeat("=", 80))
	title := "SAIDA POSICIONAL (STARTUP SUMMARY)"
	fmt.Printf("%*s\n", 40+len(title)/2, title)
	fmt.Println(strings.Repeat("=", 80))

	fmt.Printf("  env: %s  timezone: %s\n", s.Env, s.Timezone)
	fmt.Printf("  venues: %s\n", formatList(s.Venues))
	fmt.Printf("  snapshot: %s\n", s.Snapshot)
	fmt.Println()

	fmt.Println("[PANEL]")
	if s.Panel == nil {
		fmt.Println("  (disabled)")
	} else {
		p := s.Panel
		fmt.Printf("  positions: %s\n", p.PositionsPath)
		fmt.Printf("  output:    %s\n", p.OutputPath)
		fmt.Printf("  interval:  %s  mode: %s\n", p.Interval, p.ModeFilter)
		fmt.Printf("  gain: %s  classifier: %s\n", p.GainMode, p.Classifier)
		fmt.Printf("  tiers: %s\n", formatList(p.Tiers))
		fmt.Printf("  telegram: %v  watch: %v\n", p.Alerts, p.Watching)
	}
	fmt.Println()

	fmt.Println("[SNAPSHOT REFRESHER]")
	if s.Refresher == nil {
		fmt.Println("  (disabled)")
	} else {
		fmt.Printf("  interval: %s\n", s.Refresher.Interval)
		fmt.Printf("  coins (%d): %s\n", len(s.Refresher.Symbols), formatList(s.Refresher.Symbols))
	}
	fmt.Println(strings.Repeat("=", 80))
}

func formatList(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
