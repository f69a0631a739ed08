// survey is a Monte Carlo tool for checking how ship generation behaves across many seeds.
//
// Usage:
//
//	survey [command] [options]
//
// Commands:
//
//	mass      - Distribution of drawn ship masses
//	sections  - Per-section mass and length shares
//	layouts   - How often each layout and shape is chosen
//	sweep     - Force a range of masses and check every ship
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/lawnchairsociety/shipyard/internal/ship"
	"github.com/lawnchairsociety/shipyard/utilities/survey"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "mass":
		runMassSurvey()
	case "sections":
		runSectionSurvey()
	case "layouts":
		runLayoutSurvey()
	case "sweep":
		runSweep()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Shipyard Survey

A Monte Carlo tool for checking ship generation across many seeds.

Usage: survey <command> [options]

Commands:
  mass      Distribution of drawn ship masses
  sections  Per-section mass and length shares
  layouts   How often each layout and shape is chosen
  sweep     Force a range of masses and check every ship

Examples:
  survey mass -n=5000
  survey sections -mass=250
  survey layouts -prefix=fleet -n=2000
  survey sweep -masses=10,100,1000 -n=200

Use "survey <command> -h" for more information about a command.`)
}

func seedFlags(fs *flag.FlagSet, n int) (*string, *int) {
	prefix := fs.String("prefix", "survey", "Seed prefix; seeds are prefix-0 .. prefix-(n-1)")
	count := fs.Int("n", n, "Number of seeds")
	return prefix, count
}

func runMassSurvey() {
	fs := flag.NewFlagSet("mass", flag.ExitOnError)
	prefix, n := seedFlags(fs, 2000)
	fs.Parse(os.Args[2:])

	fmt.Println("=== Ship Mass Survey ===")
	fmt.Println()
	fmt.Printf("Seeds: %s-0 .. %s-%d\n", *prefix, *prefix, *n-1)
	fmt.Println()

	result := survey.RunMassSurvey(survey.Seeds(*prefix, *n))

	printStatsHeader()
	printStats("mass", result.Mass)
	fmt.Println()
	fmt.Printf("Below midpoint: %.1f%%\n", result.BelowMidpoint*100)
	fmt.Println()

	peak := 0
	for _, b := range result.Histogram {
		peak = max(peak, b.Count)
	}
	for _, b := range result.Histogram {
		bar := 0
		if peak > 0 {
			bar = b.Count * 50 / peak
		}
		fmt.Printf("%6.0f-%-6.0f | %6d | %s\n", b.Lo, b.Hi, b.Count, strings.Repeat("#", bar))
	}
}

func runSectionSurvey() {
	fs := flag.NewFlagSet("sections", flag.ExitOnError)
	prefix, n := seedFlags(fs, 1000)
	mass := fs.Float64("mass", 0, "Force the ship mass (0 draws it from each seed)")
	fs.Parse(os.Args[2:])

	var opts []ship.Option
	if *mass > 0 {
		opts = append(opts, ship.WithMass(*mass))
	}

	fmt.Println("=== Section Survey ===")
	fmt.Println()
	fmt.Printf("Seeds: %d, mass: %s\n", *n, massLabel(*mass))
	fmt.Println()

	result := survey.RunSectionSurvey(survey.Seeds(*prefix, *n), opts...)
	kinds := []ship.SectionKind{ship.SectionThrusters, ship.SectionEngineBlock, ship.SectionCargo, ship.SectionCommandDeck}

	fmt.Println("Mass share")
	printStatsHeader()
	for _, k := range kinds {
		printStats(string(k), result.MassShare[k])
	}
	fmt.Println()

	fmt.Println("Length share")
	printStatsHeader()
	for _, k := range kinds {
		printStats(string(k), result.LengthShare[k])
	}
	fmt.Println()

	printStatsHeader()
	printStats("cargo shortfall", result.CargoShortfall)
	printStats("total length", result.TotalLength)
}

func runLayoutSurvey() {
	fs := flag.NewFlagSet("layouts", flag.ExitOnError)
	prefix, n := seedFlags(fs, 2000)
	fs.Parse(os.Args[2:])

	fmt.Println("=== Layout Survey ===")
	fmt.Println()
	fmt.Printf("Seeds: %d\n", *n)
	fmt.Println()

	result := survey.RunLayoutSurvey(survey.Seeds(*prefix, *n))

	printCounts("Thruster layout", result.ThrusterLayouts, *n)
	printCounts("Cargo arrangement", result.CargoArrangements, *n)
	printCounts("Pod shape", result.PodShapes, *n)
	printCounts("Engine shape", result.EngineShapes, *n)
	printCounts("Deck shape", result.DeckShapes, *n)

	printStatsHeader()
	printStats("thrusters", result.ThrusterCount)
	printStats("pods/segment", result.PodsPerSegment)
	printStats("segments", result.Segments)
}

func runSweep() {
	fs := flag.NewFlagSet("sweep", flag.ExitOnError)
	prefix, n := seedFlags(fs, 200)
	massList := fs.String("masses", "", "Comma-separated masses (default spans the whole range)")
	fs.Parse(os.Args[2:])

	masses := survey.DefaultSweepMasses
	if *massList != "" {
		parsed, err := parseMasses(*massList)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid -masses: %v\n", err)
			os.Exit(1)
		}
		masses = parsed
	}

	fmt.Println("=== Mass Sweep ===")
	fmt.Println()
	fmt.Printf("Seeds per mass: %d\n", *n)
	fmt.Println()

	points := survey.RunSweep(survey.Seeds(*prefix, *n), masses)

	fmt.Println("  Mass | Avg Length | Max Length | Avg Thrusters | Cargo Share | Violations")
	fmt.Println("-------+------------+------------+---------------+-------------+-----------")
	failed := false
	for _, p := range points {
		fmt.Printf("%6.0f | %10.2f | %10.2f | %13.1f | %10.1f%% | %10d\n",
			p.Mass, p.Length.Mean, p.Length.Max, p.ThrusterCount.Mean, p.CargoShare.Mean*100, p.Violations)
		if p.Violations > 0 {
			failed = true
		}
	}

	if failed {
		fmt.Println()
		fmt.Println("First violation per mass:")
		for _, p := range points {
			if p.FirstProblem != "" {
				fmt.Printf("  %6.0f  %s\n", p.Mass, p.FirstProblem)
			}
		}
		os.Exit(1)
	}
}

func parseMasses(list string) ([]float64, error) {
	var masses []float64
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		m, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, err
		}
		masses = append(masses, m)
	}
	if len(masses) == 0 {
		return nil, fmt.Errorf("no masses in %q", list)
	}
	return masses, nil
}

func massLabel(mass float64) string {
	if mass <= 0 {
		return "drawn"
	}
	return strconv.FormatFloat(mass, 'f', -1, 64)
}

func printStatsHeader() {
	fmt.Println("                |     Mean |   StdDev |      Min |      P10 |      P50 |      P90 |      Max")
	fmt.Println("----------------+----------+----------+----------+----------+----------+----------+---------")
}

func printStats(label string, s survey.Stats) {
	fmt.Printf("%-15s | %8.3f | %8.3f | %8.3f | %8.3f | %8.3f | %8.3f | %8.3f\n",
		label, s.Mean, s.StdDev, s.Min, s.P10, s.P50, s.P90, s.Max)
}

func printCounts(title string, counts map[string]int, total int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	fmt.Println(title)
	for _, k := range keys {
		pct := 0.0
		if total > 0 {
			pct = float64(counts[k]) / float64(total) * 100
		}
		fmt.Printf("  %-12s %6d  (%5.1f%%)\n", k, counts[k], pct)
	}
	fmt.Println()
}
