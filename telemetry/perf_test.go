package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartCycle()
		pc.StartPhase(PhaseSense)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseWeight)
		time.Sleep(200 * time.Microsecond)
		pc.EndCycle()
	}

	stats := pc.Stats()

	if stats.AvgCycleDuration <= 0 {
		t.Error("expected positive average cycle duration")
	}
	if _, ok := stats.PhaseAvg[PhaseSense]; !ok {
		t.Error("expected sense phase to be tracked")
	}
	if _, ok := stats.PhaseAvg[PhaseWeight]; !ok {
		t.Error("expected weight phase to be tracked")
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	for i := 0; i < 10; i++ {
		pc.StartCycle()
		pc.StartPhase(PhaseMap)
		time.Sleep(10 * time.Microsecond)
		pc.EndCycle()
	}

	stats := pc.Stats()
	if stats.AvgCycleDuration <= 0 {
		t.Error("expected positive average cycle duration after window filled")
	}
	if stats.CyclesPerSecond <= 0 {
		t.Error("expected positive cycles per second")
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartCycle()
		pc.StartPhase("fast")
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase("slow")
		time.Sleep(2 * time.Millisecond)
		pc.EndCycle()
	}

	stats := pc.Stats()
	if stats.PhasePct["slow"] <= stats.PhasePct["fast"] {
		t.Errorf("expected slow phase (%v%%) > fast phase (%v%%)", stats.PhasePct["slow"], stats.PhasePct["fast"])
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	stats := NewPerfCollector(10).Stats()

	if stats.AvgCycleDuration != 0 {
		t.Error("expected zero avg cycle duration for empty collector")
	}
	if stats.PhaseAvg == nil || stats.PhasePct == nil {
		t.Error("expected non-nil phase maps")
	}
}

func TestPerfStats_ToCSV(t *testing.T) {
	s := PerfStats{
		AvgCycleDuration: 1500 * time.Microsecond,
		PhasePct:         map[string]float64{PhaseWeight: 80, PhaseMap: 15},
	}
	row := s.ToCSV(42)
	if row.WindowEnd != 42 || row.AvgCycleUS != 1500 {
		t.Errorf("unexpected row %+v", row)
	}
	if row.WeightPct != 80 || row.MapPct != 15 || row.SensePct != 0 {
		t.Errorf("unexpected phase percentages %+v", row)
	}
}
