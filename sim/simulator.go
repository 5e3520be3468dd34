// sim/simulator.go
package sim

import (
	"container/heap"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/sprint-sim/sprint-sim/sim/journal"
)

// queuedEvent pairs an Event with its schedule sequence number, the final
// tie-break so FIFO order survives identical (timestamp, story) keys.
type queuedEvent struct {
	ev  Event
	seq int64
}

// EventQueue implements heap.Interface and orders events by timestamp, then
// story order (day boundaries first, then story id ascending), then schedule
// sequence. The ordering is total, so repeated seeded runs replay the exact
// same event interleaving.
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-IntHeap
type EventQueue []queuedEvent

func (eq EventQueue) Len() int { return len(eq) }

func (eq EventQueue) Less(i, j int) bool {
	a, b := eq[i], eq[j]
	if a.ev.Timestamp() != b.ev.Timestamp() {
		return a.ev.Timestamp() < b.ev.Timestamp()
	}
	if a.ev.StoryOrder() != b.ev.StoryOrder() {
		return a.ev.StoryOrder() < b.ev.StoryOrder()
	}
	return a.seq < b.seq
}

func (eq EventQueue) Swap(i, j int) { eq[i], eq[j] = eq[j], eq[i] }

func (eq *EventQueue) Push(x any) {
	*eq = append(*eq, x.(queuedEvent))
}

func (eq *EventQueue) Pop() any {
	old := *eq
	n := len(old)
	item := old[n-1]
	*eq = old[0 : n-1]
	return item
}

// Simulator is the core object that holds simulation time, system state, and
// the event loop. Execution is cooperative: exactly one event handler runs
// at a time, so shared state (ledger, pool, gate) needs no locking.
type Simulator struct {
	Clock   int64
	Horizon int64

	EventQueue EventQueue
	seq        int64

	Config  Config
	RNG     *PartitionedRNG
	Team    []*Member
	Ledger  *CapacityLedger
	Pool    *RolePool
	Gate    *WIPGate
	Stories []*Story

	Journal *journal.Journal
	Metrics *Metrics

	// capWaiters holds stories parked until the next day boundary because
	// their bound member has no capacity left today. Served in park order.
	capWaiters []*Story

	// kick-pass guard; see kickRoles.
	inKick    bool
	kickAgain bool

	terminal int // stories at DONE or abandoned
}

// NewSimulator validates the configuration, builds the team and resource
// structures, generates the story backlog, and schedules arrivals and the
// first day boundary. Configuration validation is the only error path.
func NewSimulator(cfg Config, jr *journal.Journal) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if jr == nil {
		jr = journal.New(journal.LevelTransitions)
	}

	team := cfg.buildTeam()
	ledger := NewCapacityLedger(team)
	s := &Simulator{
		Clock:      0,
		Horizon:    cfg.HorizonTicks(),
		EventQueue: make(EventQueue, 0),
		Config:     cfg,
		RNG:        NewPartitionedRNG(NewSimulationKey(cfg.Seed)),
		Team:       team,
		Ledger:     ledger,
		Pool:       NewRolePool(team, ledger),
		Gate:       NewWIPGate(cfg.EffectiveWIPLimit()),
		Journal:    jr,
		Metrics:    NewMetrics(),
	}

	s.generateStories()
	s.chargeCeremonies(0) // day 0 starts at tick 0, before any boundary fires
	if workdayTicks() < s.Horizon {
		s.Schedule(&DayBoundaryEvent{time: workdayTicks(), day: 0})
	}
	return s, nil
}

// Schedule pushes an event into the simulator's EventQueue.
func (sim *Simulator) Schedule(ev Event) {
	sim.seq++
	heap.Push(&sim.EventQueue, queuedEvent{ev: ev, seq: sim.seq})
}

// Run drives the event loop until every story is terminal, the queue drains,
// or the horizon is exceeded. Stories still in flight at the horizon are
// reported as incomplete, not failed.
func (sim *Simulator) Run() {
	for len(sim.EventQueue) > 0 {
		qe := heap.Pop(&sim.EventQueue).(queuedEvent)
		if qe.ev.Timestamp() > sim.Horizon {
			sim.Clock = sim.Horizon
			logrus.Infof("[tick %07d] Horizon reached with %d stories in flight",
				sim.Clock, len(sim.Stories)-sim.terminal)
			break
		}
		// advance the clock
		sim.Clock = qe.ev.Timestamp()
		logrus.Debugf("[tick %07d] Executing %T", sim.Clock, qe.ev)
		qe.ev.Execute(sim)
		if sim.terminal == len(sim.Stories) {
			break
		}
	}
	sim.Metrics.EndTick = sim.Clock
	logrus.Infof("[tick %07d] Simulation ended", sim.Clock)
}

// generateStories builds the backlog from explicit points or a total-points
// budget, then schedules staggered arrivals.
func (sim *Simulator) generateStories() {
	rng := sim.RNG.ForSubsystem(SubsystemArrival)

	points := sim.Config.StoryPoints
	if len(points) == 0 {
		remaining := sim.Config.TotalPoints
		for remaining > 0 {
			eligible := make([]int, 0, len(storyPointScale))
			for _, p := range storyPointScale {
				if _, ok := sim.Config.BaseHours[p]; ok && p <= remaining {
					eligible = append(eligible, p)
				}
			}
			if len(eligible) == 0 {
				break
			}
			p := eligible[rng.Intn(len(eligible))]
			points = append(points, p)
			remaining -= p
		}
	}

	var arrival int64
	for i, p := range points {
		story := NewStory(i, p, arrival)
		sim.Stories = append(sim.Stories, story)
		sim.Schedule(&ArrivalEvent{time: arrival, Story: story})
		if sim.Config.StaggerHours > 0 {
			arrival += hoursToTicks(rng.Float64() * sim.Config.StaggerHours)
		}
	}
	logrus.Infof("Generated %d stories totaling %d points", len(points), totalPoints(points))
}

// storyPointScale is the allowed story sizing, smallest first.
var storyPointScale = []int{1, 2, 3, 5, 8}

func totalPoints(points []int) int {
	sum := 0
	for _, p := range points {
		sum += p
	}
	return sum
}

// dayBoundary resets capacity counters, charges the new day's ceremonies,
// and resumes parked stories now that capacity is back.
func (sim *Simulator) dayBoundary(day int, now int64) {
	sim.Ledger.AdvanceDay()
	sim.chargeCeremonies(day + 1)

	// Capacity waiters resume in park order; their members are still bound.
	waiting := sim.capWaiters
	sim.capWaiters = nil
	for _, story := range waiting {
		if story.Terminal() || story.Wait != WaitCapacity {
			continue
		}
		story.Wait = WaitNone
		sim.startSession(story, now)
	}

	// Role waiters may become eligible as members regain capacity.
	sim.kickRoles(now)

	// A boundary at the horizon itself would charge ceremonies and start
	// sessions for a day that never runs, so the last boundary is the one
	// opening the final day.
	if sim.terminal < len(sim.Stories) && now+workdayTicks() < sim.Horizon {
		sim.Schedule(&DayBoundaryEvent{time: now + workdayTicks(), day: day + 1})
	}
}

// chargeCeremonies charges the ceremony hours for the given 0-based day to
// every member. Meetings consume capacity but never breach the caps.
func (sim *Simulator) chargeCeremonies(day int) {
	cc := sim.Config.Ceremonies
	if !cc.Enabled {
		return
	}
	sprintDay := day % cc.SprintDays

	var hours float64
	if sprintDay == 0 {
		hours = cc.PlanningHours
	} else {
		hours = cc.StandupHours
	}
	if sprintDay == cc.SprintDays-1 {
		hours += cc.ReviewHours + cc.RetroHours
	}
	if hours <= 0 {
		return
	}
	for _, m := range sim.Team {
		charged := sim.Ledger.ChargeMeeting(m, hours)
		if charged > 0 {
			sim.Journal.RecordUtilization(journal.UtilizationRecord{
				Tick:     sim.Clock,
				MemberID: m.ID,
				StoryID:  -1,
				TaskKind: string(TaskMeeting),
				Hours:    charged,
			})
		}
	}
}

// Snapshot builds the end-of-run state handed to reporting.
func (sim *Simulator) Snapshot() *journal.Snapshot {
	snap := &journal.Snapshot{
		Seed:           sim.Config.Seed,
		HorizonTicks:   sim.Horizon,
		EndTick:        sim.Clock,
		FailedAcquires: make(map[string]int),
	}
	for kind, n := range sim.Pool.FailedAcquires {
		snap.FailedAcquires[string(kind)] = n
	}

	for _, story := range sim.Stories {
		ph := make(map[string]float64, len(story.PhaseTicks))
		for phase, ticks := range story.PhaseTicks {
			ph[string(phase)] = ticksToHours(ticks)
		}
		snap.Stories = append(snap.Stories, journal.StorySnapshot{
			ID:                 story.ID,
			Points:             story.Points,
			Phase:              string(story.Phase),
			Abandoned:          story.Abandoned,
			AbandonReason:      story.AbandonReason,
			PeerAttempts:       story.PeerAttempts,
			POAttempts:         story.POAttempts,
			ValidationAttempts: story.ValidationAttempts,
			PhaseHours:         ph,
			ArrivalTick:        story.ArrivalTick,
			StartTick:          story.StartTick,
			DoneTick:           story.DoneTick,
		})
	}

	// Utilization is measured against the days actually simulated, not the
	// configured horizon, so runs that finish early stay comparable across
	// scenario sweeps.
	daysElapsed := float64(sim.Ledger.DaysElapsed())
	for _, m := range sim.Team {
		byKind := make(map[string]float64, len(m.HoursByKind))
		for kind, h := range m.HoursByKind {
			byKind[string(kind)] = h
		}
		capacityHours := daysElapsed * m.MaxDailyHours
		var utilization float64
		if capacityHours > 0 {
			utilization = m.TotalHours() / capacityHours
		}
		snap.Members = append(snap.Members, journal.MemberSnapshot{
			ID:              m.ID,
			HoursByKind:     byKind,
			TotalHours:      m.TotalHours(),
			MeetingHours:    m.MeetingHours,
			ContextSwitches: m.ContextSwitches,
			Utilization:     utilization,
		})
	}
	return snap
}

// hoursToTicks converts hours to clock ticks, rounding to the nearest tick
// with a floor of one tick for any positive duration.
func hoursToTicks(hours float64) int64 {
	if hours <= 0 {
		return 0
	}
	t := int64(math.Round(hours * TicksPerHour))
	if t < 1 {
		t = 1
	}
	return t
}

// ticksToHours converts clock ticks back to hours.
func ticksToHours(ticks int64) float64 {
	return float64(ticks) / TicksPerHour
}
