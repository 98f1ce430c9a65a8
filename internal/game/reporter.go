package game

import (
	"fmt"
	"strings"
)

// reportWindowTicks is the default sliding window for recent-behaviour reports (~10s at 60TPS).
const reportWindowTicks = 600

// --- Snapshot types ---

// AgentReport captures a single agent's state and counters.
type AgentReport struct {
	ID       int
	Label    string
	Kind     AgentKind
	State    MissionState
	Target   string
	Carrying bool
	Pos      Vec2
	Stats    AgentStats
}

// SimReport is a snapshot of the simulation at one tick.
type SimReport struct {
	Tick int

	Rescued int
	Carried int
	Free    int
	Total   int

	// Rescuer mission-state distribution (MissionState → count).
	States map[MissionState]int

	// Agents detail (optional, for verbose mode).
	Agents []AgentReport
}

// --- Reporter ---

// SimReporter collects periodic reports from the simulation and can produce
// summaries over sliding time windows.
type SimReporter struct {
	history     []SimReport
	windowTicks int
	verbose     bool
}

// NewSimReporter creates a reporter with the given window size.
func NewSimReporter(windowTicks int, verbose bool) *SimReporter {
	if windowTicks <= 0 {
		windowTicks = reportWindowTicks
	}
	return &SimReporter{
		windowTicks: windowTicks,
		verbose:     verbose,
	}
}

// Collect gathers a snapshot from the current simulation state.
// Call this periodically (e.g. every 60 ticks / 1s).
func (r *SimReporter) Collect(s *Sim) {
	reg := s.Registry()
	report := SimReport{
		Tick:    s.CurrentTick(),
		Rescued: reg.Rescued(),
		Free:    len(reg.FreeVictims()),
		Total:   reg.Total(),
		States:  make(map[MissionState]int),
	}
	report.Carried = report.Total - report.Rescued - report.Free

	for _, a := range s.Rescuers() {
		report.States[a.State()]++
	}
	if r.verbose {
		for _, a := range s.all() {
			report.Agents = append(report.Agents, agentReport(a))
		}
	}
	r.history = append(r.history, report)
}

func agentReport(a *Agent) AgentReport {
	return AgentReport{
		ID:       a.ID,
		Label:    a.Label,
		Kind:     a.Kind,
		State:    a.State(),
		Target:   a.Target().String(),
		Carrying: a.IsCarrying(),
		Pos:      a.Pos,
		Stats:    a.Stats,
	}
}

// Latest returns the most recent report, or nil if none collected yet.
func (r *SimReporter) Latest() *SimReport {
	if len(r.history) == 0 {
		return nil
	}
	return &r.history[len(r.history)-1]
}

// History returns all collected reports.
func (r *SimReporter) History() []SimReport {
	return r.history
}

// WindowReport is an aggregated summary over a time window.
type WindowReport struct {
	FromTick, ToTick int
	SampleCount      int

	// Mission-state distribution as percentages (0-100).
	StatePct map[MissionState]float64

	AvgCarried float64
	AvgFree    float64

	// Victims delivered between the first and last sample.
	RescuedInWindow int
}

// WindowSummary returns an aggregated summary over the recent time window.
func (r *SimReporter) WindowSummary() *WindowReport {
	if len(r.history) == 0 {
		return nil
	}

	latestTick := r.history[len(r.history)-1].Tick
	cutoff := latestTick - r.windowTicks
	var window []SimReport
	for i := len(r.history) - 1; i >= 0; i-- {
		if r.history[i].Tick < cutoff {
			break
		}
		window = append(window, r.history[i])
	}

	n := float64(len(window))
	wr := &WindowReport{
		FromTick:        window[len(window)-1].Tick,
		ToTick:          window[0].Tick,
		SampleCount:     len(window),
		StatePct:        make(map[MissionState]float64),
		RescuedInWindow: window[0].Rescued - window[len(window)-1].Rescued,
	}

	stateTotal := make(map[MissionState]float64)
	var total float64
	for _, rpt := range window {
		for ms, c := range rpt.States {
			stateTotal[ms] += float64(c)
			total += float64(c)
		}
		wr.AvgCarried += float64(rpt.Carried)
		wr.AvgFree += float64(rpt.Free)
	}
	if total > 0 {
		for ms, c := range stateTotal {
			wr.StatePct[ms] = c / total * 100
		}
	}
	wr.AvgCarried /= n
	wr.AvgFree /= n
	return wr
}

// Format returns a human-readable multi-line string of the window summary.
func (wr *WindowReport) Format() string {
	if wr == nil {
		return "No data collected yet.\n"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Rescue Report (T=%d..%d, %d samples) ===\n",
		wr.FromTick, wr.ToTick, wr.SampleCount)

	sb.WriteString("\n--- Rescuer States ---\n")
	for _, ms := range []MissionState{MissionSeekingVictim, MissionMovingToHospital, MissionIdle} {
		if pct := wr.StatePct[ms]; pct > 0.5 {
			fmt.Fprintf(&sb, "  %-12s %5.1f%%\n", ms, pct)
		}
	}

	sb.WriteString("\n--- Victims ---\n")
	fmt.Fprintf(&sb, "  delivered=%d  avg carried=%.1f  avg waiting=%.1f\n",
		wr.RescuedInWindow, wr.AvgCarried, wr.AvgFree)
	return sb.String()
}

// FormatLatest returns a concise snapshot of the most recent collected report.
func (r *SimReporter) FormatLatest() string {
	rpt := r.Latest()
	if rpt == nil {
		return "No data.\n"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Snapshot T=%d ---\n", rpt.Tick)
	fmt.Fprintf(&sb, "Victims: rescued=%d/%d carried=%d free=%d\n",
		rpt.Rescued, rpt.Total, rpt.Carried, rpt.Free)
	sb.WriteString("States: ")
	for _, ms := range []MissionState{MissionSeekingVictim, MissionMovingToHospital, MissionIdle} {
		fmt.Fprintf(&sb, "%s=%d ", ms, rpt.States[ms])
	}
	sb.WriteByte('\n')
	for _, a := range rpt.Agents {
		fmt.Fprintf(&sb, "  %-3s %-10s target=%s pickups=%d dropoffs=%d\n",
			a.Label, a.State, a.Target, a.Stats.Pickups, a.Stats.Dropoffs)
	}
	return sb.String()
}

// RunReport is the end-of-run summary shown in the HUD, copied to the
// clipboard, and printed by the headless report.
type RunReport struct {
	SessionID   string
	Mode        string
	Ticks       int
	Rescued     int
	Total       int
	CompletedAt int // tick the last victim was delivered, -1 if never
	Agents      []AgentReport
}

// Report builds a RunReport from the current state.
func (s *Sim) Report() RunReport {
	rr := RunReport{
		SessionID:   s.ID,
		Mode:        string(s.Mode),
		Ticks:       s.tick,
		Rescued:     s.registry.Rescued(),
		Total:       s.registry.Total(),
		CompletedAt: -1,
	}
	if s.Done() {
		rr.CompletedAt = s.tick
		if e, ok := s.SimLog.LastOf("mission", "dropoff"); ok {
			rr.CompletedAt = e.Tick
		}
	}
	for _, a := range s.all() {
		rr.Agents = append(rr.Agents, agentReport(a))
	}
	return rr
}

// Format renders the run report as plain text.
func (rr RunReport) Format() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Rescue Run %s ===\n", rr.SessionID)
	fmt.Fprintf(&sb, "mode=%s  ticks=%d  rescued=%d/%d", rr.Mode, rr.Ticks, rr.Rescued, rr.Total)
	if rr.CompletedAt >= 0 {
		fmt.Fprintf(&sb, "  completed at T=%d", rr.CompletedAt)
	}
	sb.WriteByte('\n')
	for _, a := range rr.Agents {
		fmt.Fprintf(&sb, "  %-3s %-8s %-10s pickups=%d dropoffs=%d plans=%d unreachable=%d stuck=%d collisions=%d blocked=%d dist=%.0f\n",
			a.Label, a.Kind, a.State, a.Stats.Pickups, a.Stats.Dropoffs, a.Stats.Plans,
			a.Stats.Unreachable, a.Stats.StuckRecoveries, a.Stats.Collisions, a.Stats.Blocked, a.Stats.Distance)
	}
	return sb.String()
}
