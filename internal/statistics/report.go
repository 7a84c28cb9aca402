package statistics

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// Format selects how a report is rendered.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts text, json or yaml.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown report format %q", s)
	}
}

// Report groups statistics by strategy name.
type Report struct {
	Matches    int
	Seed       int64
	Rules      string
	Duration   time.Duration
	Strategies map[string]*Statistics
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{Strategies: make(map[string]*Statistics)}
}

// For returns the statistics for name, creating them on first use.
func (r *Report) For(name string) *Statistics {
	s, ok := r.Strategies[name]
	if !ok {
		s = &Statistics{}
		r.Strategies[name] = s
	}
	return s
}

// Names returns the strategy names in sorted order.
func (r *Report) Names() []string {
	names := lo.Keys(r.Strategies)
	slices.Sort(names)
	return names
}

// Validate validates every strategy's statistics.
func (r *Report) Validate() error {
	for _, name := range r.Names() {
		if err := r.Strategies[name].Validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// Summary is the rendered view of one strategy.
type Summary struct {
	Strategy       string  `json:"strategy" yaml:"strategy"`
	Turns          int     `json:"turns" yaml:"turns"`
	MeanRemainder  float64 `json:"mean_remainder" yaml:"mean_remainder"`
	StdDev         float64 `json:"std_dev" yaml:"std_dev"`
	StdError       float64 `json:"std_error" yaml:"std_error"`
	CI95Low        float64 `json:"ci95_low" yaml:"ci95_low"`
	CI95High       float64 `json:"ci95_high" yaml:"ci95_high"`
	Median         float64 `json:"median" yaml:"median"`
	P90            float64 `json:"p90" yaml:"p90"`
	ShutRate       float64 `json:"shut_rate" yaml:"shut_rate"`
	MeanRolls      float64 `json:"mean_rolls" yaml:"mean_rolls"`
	Rounds         int     `json:"rounds" yaml:"rounds"`
	RoundWins      int     `json:"round_wins" yaml:"round_wins"`
	RoundWinRate   float64 `json:"round_win_rate" yaml:"round_win_rate"`
	Matches        int     `json:"matches,omitempty" yaml:"matches,omitempty"`
	MatchWins      int     `json:"match_wins,omitempty" yaml:"match_wins,omitempty"`
	WorstRemainder int     `json:"worst_remainder" yaml:"worst_remainder"`
	WorstSeed      int64   `json:"worst_seed" yaml:"worst_seed"`
}

// Summaries returns one summary per strategy, sorted by name.
func (r *Report) Summaries() []Summary {
	return lo.Map(r.Names(), func(name string, _ int) Summary {
		s := r.Strategies[name]
		low, high := s.ConfidenceInterval95()
		return Summary{
			Strategy:       name,
			Turns:          s.Turns,
			MeanRemainder:  s.Mean(),
			StdDev:         s.StdDev(),
			StdError:       s.StdError(),
			CI95Low:        low,
			CI95High:       high,
			Median:         s.Median(),
			P90:            s.Percentile(0.9),
			ShutRate:       s.ShutRate(),
			MeanRolls:      s.MeanRolls(),
			Rounds:         s.Rounds,
			RoundWins:      s.RoundWins,
			RoundWinRate:   s.RoundWinRate(),
			Matches:        s.Matches,
			MatchWins:      s.MatchWins,
			WorstRemainder: s.Worst.Remainder,
			WorstSeed:      s.Worst.Seed,
		}
	})
}

type document struct {
	Matches    int       `json:"matches" yaml:"matches"`
	Seed       int64     `json:"seed" yaml:"seed"`
	Rules      string    `json:"rules,omitempty" yaml:"rules,omitempty"`
	DurationMS int64     `json:"duration_ms" yaml:"duration_ms"`
	Strategies []Summary `json:"strategies" yaml:"strategies"`
}

// Write renders the report to w.
func (r *Report) Write(w io.Writer, format Format) error {
	doc := document{
		Matches:    r.Matches,
		Seed:       r.Seed,
		Rules:      r.Rules,
		DurationMS: r.Duration.Milliseconds(),
		Strategies: r.Summaries(),
	}
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case FormatText, "":
		return r.writeText(w, doc)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

func (r *Report) writeText(w io.Writer, doc document) error {
	fmt.Fprintf(w, "%d matches, seed %d", doc.Matches, doc.Seed)
	if doc.Rules != "" {
		fmt.Fprintf(w, ", %s", doc.Rules)
	}
	fmt.Fprintf(w, " (%s)\n", r.Duration.Round(time.Millisecond))

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Strategy", "Turns", "Mean ± SE", "95% CI", "Median", "Shut", "Rolls", "Round wins", "Worst (seed)")
	for _, s := range doc.Strategies {
		t.Row(
			s.Strategy,
			fmt.Sprint(s.Turns),
			fmt.Sprintf("%.2f ± %.2f", s.MeanRemainder, s.StdError),
			fmt.Sprintf("[%.2f, %.2f]", s.CI95Low, s.CI95High),
			fmt.Sprintf("%.1f", s.Median),
			fmt.Sprintf("%.1f%%", 100*s.ShutRate),
			fmt.Sprintf("%.2f", s.MeanRolls),
			fmt.Sprintf("%d/%d (%.1f%%)", s.RoundWins, s.Rounds, 100*s.RoundWinRate),
			fmt.Sprintf("%d (%d)", s.WorstRemainder, s.WorstSeed),
		)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}
