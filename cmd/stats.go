package cmd

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/suderio/rolldice/internal/dice"
)

// Summary describes a sample of rolled totals.
type Summary struct {
	N      int
	Min    int
	Max    int
	Mean   float64
	StdDev float64
	Counts map[int]int
}

// Sample evaluates tree n times. tick is called after each evaluation.
func Sample(engine *dice.Engine, tree dice.Expr, n int, tick func()) (*Summary, error) {
	s := &Summary{N: n, Min: math.MaxInt, Max: math.MinInt, Counts: map[int]int{}}
	var sum, sumSq float64
	for i := 0; i < n; i++ {
		res, err := engine.Eval(tree, dice.MapEnv{})
		if err != nil {
			return nil, err
		}
		v := res.Value
		s.Counts[v]++
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
		sum += float64(v)
		sumSq += float64(v) * float64(v)
		if tick != nil {
			tick()
		}
	}
	if n > 0 {
		s.Mean = sum / float64(n)
		s.StdDev = math.Sqrt(math.Max(0, sumSq/float64(n)-s.Mean*s.Mean))
	}
	return s, nil
}

// Histogram draws one bar per total, scaled so the most common total spans
// width characters.
func (s *Summary) Histogram(width int) []string {
	values := make([]int, 0, len(s.Counts))
	peak := 0
	for v, c := range s.Counts {
		values = append(values, v)
		if c > peak {
			peak = c
		}
	}
	sort.Ints(values)

	out := make([]string, len(values))
	for i, v := range values {
		c := s.Counts[v]
		bar := strings.Repeat("█", c*width/peak)
		out[i] = fmt.Sprintf("%4d %6.2f%% %s", v, 100*float64(c)/float64(s.N), bar)
	}
	return out
}

var statsCmd = &cobra.Command{
	Use:   "stats <expression>",
	Short: "Sample an expression and show its distribution",
	Long: `Rolls an expression many times and prints the minimum, maximum, mean
and a histogram of the totals. Variables are not available.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		source := strings.Join(args, " ")
		n, _ := cmd.Flags().GetInt("samples")
		width, _ := cmd.Flags().GetInt("width")
		if n <= 0 {
			fail(fmt.Errorf("--samples must be positive"))
		}

		engine := newEngine(seededRoller(cmd))
		tree, err := engine.Parse(source)
		if err != nil {
			fail(err)
		}

		bar := progressbar.Default(int64(n), "Rolling")
		summary, err := Sample(engine, tree, n, func() { bar.Add(1) })
		if err != nil {
			fail(err)
		}
		_ = bar.Finish()

		fmt.Println()
		color.New(color.Bold).Println(dice.Render(tree))
		fmt.Printf("samples %d  min %d  max %d  mean %.2f  sd %.2f\n",
			summary.N, summary.Min, summary.Max, summary.Mean, summary.StdDev)
		for _, line := range summary.Histogram(width) {
			detailColor.Println(line)
		}
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().IntP("samples", "n", 10000, "number of rolls")
	statsCmd.Flags().Int("width", 50, "width of the longest histogram bar")
	statsCmd.Flags().Int64("seed", 0, "seed for reproducible sampling")
}
