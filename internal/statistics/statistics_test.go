package statistics

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestStatistics_Empty(t *testing.T) {
	stats := &Statistics{}
	if stats.Mean() != 0 || stats.Variance() != 0 || stats.StdDev() != 0 || stats.StdError() != 0 {
		t.Error("expected zero moments for empty stats")
	}
	if stats.Median() != 0 || stats.Percentile(0.9) != 0 {
		t.Error("expected zero median and percentile for empty stats")
	}
	if stats.ShutRate() != 0 || stats.RoundWinRate() != 0 || stats.MeanRolls() != 0 {
		t.Error("expected zero rates for empty stats")
	}
}

func TestStatistics_MultipleValues(t *testing.T) {
	stats := &Statistics{}
	for _, r := range []TurnResult{
		{Remainder: 0, Rolls: 9, Closures: 9, Seed: 1},
		{Remainder: 10, Rolls: 4, Closures: 3, Seed: 2},
		{Remainder: 4, Rolls: 6, Closures: 5, Seed: 3},
		{Remainder: 2, Rolls: 7, Closures: 6, Seed: 4},
		{Remainder: 4, Rolls: 6, Closures: 5, Seed: 5},
	} {
		stats.Add(r)
	}

	assert.Equal(t, 5, stats.Turns)
	assert.InDelta(t, 4.0, stats.Mean(), 1e-9)
	// deviations 4, 6, 0, 2, 0 -> squares sum 56, over n-1
	assert.InDelta(t, 14.0, stats.Variance(), 1e-9)
	assert.InDelta(t, math.Sqrt(14), stats.StdDev(), 1e-9)
	assert.InDelta(t, math.Sqrt(14)/math.Sqrt(5), stats.StdError(), 1e-9)
	assert.InDelta(t, 4.0, stats.Median(), 1e-9)
	assert.InDelta(t, 0.2, stats.ShutRate(), 1e-9)
	assert.InDelta(t, 6.4, stats.MeanRolls(), 1e-9)
	assert.Equal(t, int64(2), stats.Worst.Seed)

	low, high := stats.ConfidenceInterval95()
	assert.Less(t, low, stats.Mean())
	assert.Greater(t, high, stats.Mean())
	require.NoError(t, stats.Validate())
}

func TestStatistics_Percentile(t *testing.T) {
	stats := &Statistics{}
	for _, v := range []int{1, 2, 3, 4} {
		stats.Add(TurnResult{Remainder: v})
	}
	assert.InDelta(t, 2.5, stats.Median(), 1e-9)
	assert.InDelta(t, 1.0, stats.Percentile(0), 1e-9)
	assert.InDelta(t, 4.0, stats.Percentile(1), 1e-9)
	assert.InDelta(t, 1.75, stats.Percentile(0.25), 1e-9)
}

func TestStatistics_Merge(t *testing.T) {
	a := &Statistics{Rounds: 2, RoundWins: 1}
	a.Add(TurnResult{Remainder: 3, Seed: 1})
	b := &Statistics{Rounds: 1, RoundWins: 1, Matches: 1, MatchWins: 1}
	b.Add(TurnResult{Remainder: 0, Seed: 2})
	b.Add(TurnResult{Remainder: 8, Seed: 3})

	total := &Statistics{}
	total.Merge(a)
	total.Merge(b)
	assert.Equal(t, 3, total.Turns)
	assert.Equal(t, 1, total.Shuts)
	assert.Equal(t, 3, total.Rounds)
	assert.Equal(t, 2, total.RoundWins)
	assert.Equal(t, 8, total.Worst.Remainder)
	assert.Equal(t, int64(3), total.Worst.Seed)
	require.NoError(t, total.Validate())
}

func TestStatistics_Validate(t *testing.T) {
	tests := []struct {
		name  string
		stats Statistics
	}{
		{"values mismatch", Statistics{Turns: 2, Values: []float64{1}}},
		{"too many shuts", Statistics{Shuts: 1}},
		{"too many round wins", Statistics{Rounds: 1, RoundWins: 2}},
		{"too many match wins", Statistics{MatchWins: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.stats.Validate())
		})
	}
}

func sampleReport() *Report {
	r := NewReport()
	r.Matches = 2
	r.Seed = 99
	r.Rules = "9 tiles, lowest_remainder"
	best := r.For("best-move")
	best.Add(TurnResult{Remainder: 0, Rolls: 9})
	best.Add(TurnResult{Remainder: 6, Rolls: 5, Seed: 100})
	best.Rounds, best.RoundWins = 2, 2
	random := r.For("random-legal")
	random.Add(TurnResult{Remainder: 12, Rolls: 4, Seed: 99})
	random.Add(TurnResult{Remainder: 20, Rolls: 3, Seed: 100})
	random.Rounds = 2
	return r
}

func TestReportSummaries(t *testing.T) {
	r := sampleReport()
	assert.Same(t, r.For("best-move"), r.Strategies["best-move"])
	assert.Equal(t, []string{"best-move", "random-legal"}, r.Names())
	require.NoError(t, r.Validate())

	sums := r.Summaries()
	require.Len(t, sums, 2)
	assert.Equal(t, "best-move", sums[0].Strategy)
	assert.InDelta(t, 3.0, sums[0].MeanRemainder, 1e-9)
	assert.InDelta(t, 0.5, sums[0].ShutRate, 1e-9)
	assert.InDelta(t, 1.0, sums[0].RoundWinRate, 1e-9)
	assert.Equal(t, 20, sums[1].WorstRemainder)
	assert.Equal(t, int64(100), sums[1].WorstSeed)
}

func TestReportWrite(t *testing.T) {
	r := sampleReport()

	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf, FormatJSON))
	var doc struct {
		Matches    int       `json:"matches"`
		Strategies []Summary `json:"strategies"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, 2, doc.Matches)
	assert.Equal(t, r.Summaries(), doc.Strategies)

	buf.Reset()
	require.NoError(t, r.Write(&buf, FormatYAML))
	var ydoc map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &ydoc))
	assert.Equal(t, 99, ydoc["seed"])
	assert.Len(t, ydoc["strategies"], 2)

	buf.Reset()
	require.NoError(t, r.Write(&buf, FormatText))
	text := buf.String()
	assert.True(t, strings.HasPrefix(text, "2 matches, seed 99, 9 tiles, lowest_remainder"), text)
	assert.Contains(t, text, "best-move")
	assert.Contains(t, text, "random-legal")
	assert.Contains(t, text, "50.0%")

	assert.Error(t, r.Write(&buf, Format("xml")))
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatText, "TEXT": FormatText, "json": FormatJSON, "yml": FormatYAML, "yaml": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("csv")
	assert.Error(t, err)
}
