package metrics

// Timing analysis for captured Whynter pulse trains

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/tonylturner/whynterir/internal/whynter"
)

// Role is the protocol position a pulse occupies.
type Role string

const (
	RoleLeadMark  Role = "lead_mark"
	RoleLeadSpace Role = "lead_space"
	RoleBitMark   Role = "bit_mark"
	RoleZeroSpace Role = "zero_space"
	RoleOneSpace  Role = "one_space"
	RoleTrailMark Role = "trail_mark"
	RoleStopSpace Role = "stop_space"
	RoleUnknown   Role = "unknown"
)

// Roles lists roles in report order.
var Roles = []Role{RoleLeadMark, RoleLeadSpace, RoleBitMark, RoleZeroSpace, RoleOneSpace, RoleTrailMark, RoleStopSpace, RoleUnknown}

// Sample is one classified pulse.
type Sample struct {
	Index       int
	Role        Role
	Kind        whynter.Kind
	DurationUs  int64
	NominalUs   int64
	DeviationUs int64 // measured minus nominal
	InTolerance bool
}

// RoleStats aggregates deviation for one role, in microseconds.
type RoleStats struct {
	Count        int
	OutOfWindow  int
	MinDeviation float64
	MaxDeviation float64
	AvgDeviation float64
	SumDeviation float64
	P50Abs       float64
	P90Abs       float64
	P99Abs       float64
}

// Summary contains aggregated statistics over one or more captures.
type Summary struct {
	Captures    int
	Pulses      int
	OutOfWindow int
	Tolerance   float64
	ByRole      map[Role]*RoleStats
}

// Classify assigns a role and nominal duration to every pulse by position.
// Bit spaces are assigned to whichever of the zero/one nominal is closer.
// Trail and stop roles apply only to a train of exactly TrainLength pulses;
// pulses beyond that length or of the wrong kind for their slot are
// RoleUnknown.
func Classify(train whynter.Train, tolerance float64) []Sample {
	if tolerance <= 0 {
		tolerance = whynter.DefaultTolerance
	}
	samples := make([]Sample, 0, len(train.Pulses))
	for i, p := range train.Pulses {
		role, nominal := roleAt(i, len(train.Pulses), p)
		s := Sample{
			Index:      i,
			Role:       role,
			Kind:       p.Kind,
			DurationUs: p.Duration.Microseconds(),
		}
		if role != RoleUnknown {
			s.NominalUs = nominal.Microseconds()
			s.DeviationUs = s.DurationUs - s.NominalUs
			s.InTolerance = math.Abs(float64(s.DeviationUs)) <= float64(s.NominalUs)*tolerance
		}
		samples = append(samples, s)
	}
	return samples
}

func roleAt(i, n int, p whynter.Pulse) (Role, time.Duration) {
	want := whynter.Mark
	if i%2 == 1 {
		want = whynter.Space
	}
	if i >= whynter.TrainLength || p.Kind != want {
		return RoleUnknown, 0
	}
	last := whynter.TrainLength - 1
	switch {
	case i == 0:
		return RoleLeadMark, whynter.LeadMark
	case i == 1:
		return RoleLeadSpace, whynter.LeadSpace
	case i == last-1 && n == whynter.TrainLength:
		return RoleTrailMark, whynter.TrailMark
	case i == last && n == whynter.TrainLength:
		return RoleStopSpace, whynter.StopSpace
	case i%2 == 0:
		return RoleBitMark, whynter.BitMark
	default:
		if absDuration(p.Duration-whynter.OneSpace) < absDuration(p.Duration-whynter.ZeroSpace) {
			return RoleOneSpace, whynter.OneSpace
		}
		return RoleZeroSpace, whynter.ZeroSpace
	}
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// Analyze summarizes a single capture.
func Analyze(train whynter.Train, tolerance float64) *Summary {
	sink := NewSink(tolerance)
	sink.Record(train)
	return sink.GetSummary()
}

// Sink collects samples across captures.
type Sink struct {
	mu        sync.RWMutex
	tolerance float64
	captures  int
	samples   []Sample
}

// NewSink creates a sink; tolerance <= 0 means whynter.DefaultTolerance.
func NewSink(tolerance float64) *Sink {
	if tolerance <= 0 {
		tolerance = whynter.DefaultTolerance
	}
	return &Sink{tolerance: tolerance, samples: make([]Sample, 0)}
}

// Record classifies and stores every pulse of a capture.
func (s *Sink) Record(train whynter.Train) []Sample {
	samples := Classify(train, s.tolerance)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.captures++
	s.samples = append(s.samples, samples...)
	return samples
}

// RecordSamples stores previously classified samples as one capture,
// re-checking each against the sink's tolerance.
func (s *Sink) RecordSamples(samples []Sample) {
	rechecked := make([]Sample, len(samples))
	for i, sm := range samples {
		if sm.Role != RoleUnknown && sm.NominalUs > 0 {
			sm.InTolerance = math.Abs(float64(sm.DeviationUs)) <= float64(sm.NominalUs)*s.tolerance
		} else {
			sm.InTolerance = false
		}
		rechecked[i] = sm
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.captures++
	s.samples = append(s.samples, rechecked...)
}

// GetSamples returns a copy of all recorded samples.
func (s *Sink) GetSamples() []Sample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	samples := make([]Sample, len(s.samples))
	copy(samples, s.samples)
	return samples
}

// GetSummary aggregates all recorded samples.
func (s *Sink) GetSummary() *Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := &Summary{
		Captures:  s.captures,
		Pulses:    len(s.samples),
		Tolerance: s.tolerance,
		ByRole:    make(map[Role]*RoleStats),
	}
	abs := make(map[Role][]float64)
	for _, sm := range s.samples {
		stats, ok := summary.ByRole[sm.Role]
		if !ok {
			stats = &RoleStats{}
			summary.ByRole[sm.Role] = stats
		}
		stats.Count++
		if !sm.InTolerance {
			stats.OutOfWindow++
			summary.OutOfWindow++
		}
		if sm.Role == RoleUnknown {
			continue
		}
		dev := float64(sm.DeviationUs)
		if stats.Count == 1 || dev < stats.MinDeviation {
			stats.MinDeviation = dev
		}
		if stats.Count == 1 || dev > stats.MaxDeviation {
			stats.MaxDeviation = dev
		}
		stats.SumDeviation += dev
		stats.AvgDeviation = stats.SumDeviation / float64(stats.Count)
		abs[sm.Role] = append(abs[sm.Role], math.Abs(dev))
	}
	for role, values := range abs {
		p := computePercentiles(values)
		stats := summary.ByRole[role]
		stats.P50Abs, stats.P90Abs, stats.P99Abs = p[0], p[1], p[2]
	}
	return summary
}

func computePercentiles(values []float64) [3]float64 {
	var result [3]float64
	if len(values) == 0 {
		return result
	}
	sort.Float64s(values)
	result[0] = percentile(values, 0.50)
	result[1] = percentile(values, 0.90)
	result[2] = percentile(values, 0.99)
	return result
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(math.Ceil(p*float64(len(sorted)))) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= len(sorted) {
		rank = len(sorted) - 1
	}
	return sorted[rank]
}

// SuggestTolerance returns the smallest whole-percent tolerance that would
// accept every classified pulse, or 0 when there are no samples.
func SuggestTolerance(samples []Sample) float64 {
	worst := 0.0
	for _, sm := range samples {
		if sm.Role == RoleUnknown || sm.NominalUs == 0 {
			continue
		}
		ratio := math.Abs(float64(sm.DeviationUs)) / float64(sm.NominalUs)
		if ratio > worst {
			worst = ratio
		}
	}
	if len(samples) == 0 {
		return 0
	}
	return math.Ceil(worst*100-1e-9) / 100
}
