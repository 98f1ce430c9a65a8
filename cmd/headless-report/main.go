package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/Garsondee/Rescue-Sense/internal/game"
	"github.com/Garsondee/Rescue-Sense/internal/layout"
)

type runStats struct {
	runIndex int
	seed     int64
	session  string

	rescued     int
	total       int
	completedAt int

	firstPickupTick  int
	firstDropoffTick int

	pickups         int
	dropoffs        int
	retargets       int
	targetLost      int
	plans           int
	unreachable     int
	stuckRecoveries int
	collisions      int
	blocked         int

	idle map[string]struct{} // rescuers that ended the run with nothing to do

	windowSummary *game.WindowReport
	report        game.RunReport
}

func main() {
	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var mode string
	var layoutPath string
	var verbose bool

	flag.IntVar(&runs, "runs", 5, "number of headless simulation runs")
	flag.IntVar(&ticks, "ticks", 6000, "maximum ticks per run")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&mode, "mode", "", "navigation mode: grid or continuous (overrides the layout)")
	flag.StringVar(&layoutPath, "layout", "", "YAML world layout (default: built-in maze)")
	flag.BoolVar(&verbose, "verbose", false, "print every simulation event")
	flag.Parse()

	logger := log.New(os.Stderr)
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}

	if runs <= 0 {
		logger.Fatal("-runs must be > 0")
	}
	if ticks <= 0 {
		logger.Fatal("-ticks must be > 0")
	}
	l, err := layout.LoadWithMode(layoutPath, mode)
	if err != nil {
		logger.Fatal("cannot load layout", "err", err)
	}

	fmt.Printf("=== Headless Rescue Report ===\n")
	fmt.Printf("layout=%s mode=%s runs=%d ticks=%d seed_base=%d seed_step=%d\n\n",
		l.Name, l.Mode, runs, ticks, seedBase, seedStep)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		opts := []game.SimOption{game.WithLayout(l), game.WithSeed(seed)}
		if verbose {
			opts = append(opts, game.WithLogger(logger))
		}
		stats := runOnce(i+1, seed, ticks, opts...)
		all = append(all, stats)
		printRun(stats)
	}

	printAggregate(all)
}

// runOnce runs one simulation until every victim is delivered or ticks run
// out, sampling the reporter once a second.
func runOnce(runIndex int, seed int64, ticks int, opts ...game.SimOption) runStats {
	sim := game.NewSim(opts...)
	reporter := game.NewSimReporter(0, false)
	for i := 0; i < ticks && !sim.Done(); i++ {
		sim.Tick(game.Vec2{})
		if sim.CurrentTick()%60 == 0 {
			reporter.Collect(sim)
		}
	}
	reporter.Collect(sim)
	report := sim.Report()

	rs := runStats{
		runIndex:         runIndex,
		seed:             seed,
		session:          sim.ID,
		rescued:          report.Rescued,
		total:            report.Total,
		completedAt:      report.CompletedAt,
		firstPickupTick:  firstTick(sim.SimLog.Entries(), "mission", "pickup"),
		firstDropoffTick: firstTick(sim.SimLog.Entries(), "mission", "dropoff"),
		retargets:        sim.SimLog.CountCategory("mission", "retarget"),
		targetLost:       sim.SimLog.CountCategory("mission", "target_lost"),
		idle:             map[string]struct{}{},
		windowSummary:    reporter.WindowSummary(),
		report:           report,
	}
	for _, a := range report.Agents {
		rs.pickups += a.Stats.Pickups
		rs.dropoffs += a.Stats.Dropoffs
		rs.plans += a.Stats.Plans
		rs.unreachable += a.Stats.Unreachable
		rs.stuckRecoveries += a.Stats.StuckRecoveries
		rs.collisions += a.Stats.Collisions
		rs.blocked += a.Stats.Blocked
		if a.Kind == game.AgentRescuer && a.State == game.MissionIdle {
			rs.idle[a.Label] = struct{}{}
		}
	}
	return rs
}

func firstTick(entries []game.SimLogEntry, category, key string) int {
	for _, e := range entries {
		if e.Category == category && e.Key == key {
			return e.Tick
		}
	}
	return -1
}

func printRun(rs runStats) {
	fmt.Printf("--- Run %d (seed=%d session=%s) ---\n", rs.runIndex, rs.seed, rs.session)
	fmt.Printf("outcome: rescued=%d/%d completed_at=%s\n", rs.rescued, rs.total, tickString(rs.completedAt))
	fmt.Printf("phase_markers: first_pickup=%s first_dropoff=%s\n",
		tickString(rs.firstPickupTick), tickString(rs.firstDropoffTick))
	fmt.Printf("event_totals: pickup=%d dropoff=%d retarget=%d target_lost=%d plans=%d unreachable=%d\n",
		rs.pickups, rs.dropoffs, rs.retargets, rs.targetLost, rs.plans, rs.unreachable)
	fmt.Printf("movement: stuck_recovery=%d collisions=%d blocked=%d\n",
		rs.stuckRecoveries, rs.collisions, rs.blocked)
	fmt.Printf("idle_at_end: %s\n", joinSet(rs.idle))
	if rs.windowSummary != nil {
		fmt.Print(rs.windowSummary.Format())
	}
	fmt.Println()
}

func printAggregate(all []runStats) {
	fmt.Println("=== Aggregate ===")
	fmt.Print(formatAggregate(all))
}

func formatAggregate(all []runStats) string {
	var sb strings.Builder
	n := len(all)
	completed := 0
	var completionTicks, pickupTicks []int
	totalRescued, totalVictims := 0, 0
	totalLost, totalUnreachable, totalStuck, totalCollisions := 0, 0, 0, 0
	for _, rs := range all {
		totalRescued += rs.rescued
		totalVictims += rs.total
		totalLost += rs.targetLost
		totalUnreachable += rs.unreachable
		totalStuck += rs.stuckRecoveries
		totalCollisions += rs.collisions
		if rs.completedAt >= 0 {
			completed++
			completionTicks = append(completionTicks, rs.completedAt)
		}
		if rs.firstPickupTick >= 0 {
			pickupTicks = append(pickupTicks, rs.firstPickupTick)
		}
	}
	fmt.Fprintf(&sb, "runs=%d completed=%d rescued=%d/%d\n", n, completed, totalRescued, totalVictims)
	fmt.Fprintf(&sb, "avg_ticks: completion=%s first_pickup=%s\n", avgTickString(completionTicks), avgTickString(pickupTicks))
	fmt.Fprintf(&sb, "avg_events_per_run: target_lost=%.1f unreachable=%.1f stuck_recovery=%.1f collisions=%.1f\n",
		avg(totalLost, n), avg(totalUnreachable, n), avg(totalStuck, n), avg(totalCollisions, n))
	return sb.String()
}

func tickString(t int) string {
	if t < 0 {
		return "n/a"
	}
	return fmt.Sprintf("%d", t)
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

func joinSet(s map[string]struct{}) string {
	if len(s) == 0 {
		return "none"
	}
	labels := make([]string, 0, len(s))
	for k := range s {
		labels = append(labels, k)
	}
	sort.Strings(labels)
	return strings.Join(labels, ",")
}
