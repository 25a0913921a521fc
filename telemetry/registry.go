package telemetry

// PhaseInfo describes a cycle phase for UI display.
type PhaseInfo struct {
	ID          string // Phase identifier used by PerfCollector
	Name        string // Display name
	Description string // What the phase does
	Category    string // Grouping (robot, filter, mapper, internal)
}

// PhaseRegistry holds metadata about the cycle phases.
// This keeps the perf panel and the perf collector in sync.
type PhaseRegistry struct {
	phases []PhaseInfo
	byID   map[string]PhaseInfo
}

// NewPhaseRegistry creates a registry with every phase of the cycle.
func NewPhaseRegistry() *PhaseRegistry {
	reg := &PhaseRegistry{
		byID: make(map[string]PhaseInfo),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds the phases in execution order.
func (r *PhaseRegistry) registerDefaults() {
	r.Register(PhaseInfo{ID: PhaseOdometry, Name: "Odometry", Description: "Moves the robot and samples the noisy displacement", Category: "robot"})
	r.Register(PhaseInfo{ID: PhaseMotion, Name: "Motion", Description: "Propagates particles by the odometry estimate", Category: "filter"})
	r.Register(PhaseInfo{ID: PhaseSense, Name: "Sense", Description: "Casts range beams from the true pose", Category: "robot"})
	r.Register(PhaseInfo{ID: PhaseWeight, Name: "Weight", Description: "Scores particles against the scan and resamples", Category: "filter"})
	r.Register(PhaseInfo{ID: PhaseMap, Name: "Map", Description: "Updates the occupancy grid from the estimate", Category: "mapper"})
	r.Register(PhaseInfo{ID: PhaseTelemetry, Name: "Telemetry", Description: "Records stats, CSV rows and plots", Category: "internal"})
}

// Register adds a phase. Registering an existing ID replaces its metadata in place.
func (r *PhaseRegistry) Register(info PhaseInfo) {
	if _, ok := r.byID[info.ID]; ok {
		for i := range r.phases {
			if r.phases[i].ID == info.ID {
				r.phases[i] = info
			}
		}
	} else {
		r.phases = append(r.phases, info)
	}
	r.byID[info.ID] = info
}

// Get returns phase info by ID.
func (r *PhaseRegistry) Get(id string) (PhaseInfo, bool) {
	info, ok := r.byID[id]
	return info, ok
}

// Name returns the display name for a phase ID.
// Falls back to the ID itself if not found.
func (r *PhaseRegistry) Name(id string) string {
	if info, ok := r.byID[id]; ok {
		return info.Name
	}
	return id
}

// All returns all registered phases.
func (r *PhaseRegistry) All() []PhaseInfo {
	return r.phases
}

// ByCategory returns phases filtered by category.
func (r *PhaseRegistry) ByCategory(category string) []PhaseInfo {
	var result []PhaseInfo
	for _, info := range r.phases {
		if info.Category == category {
			result = append(result, info)
		}
	}
	return result
}

// Categories returns all unique categories in registration order.
func (r *PhaseRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, info := range r.phases {
		if !seen[info.Category] {
			seen[info.Category] = true
			cats = append(cats, info.Category)
		}
	}
	return cats
}

// IDs returns all phase IDs in registration order.
func (r *PhaseRegistry) IDs() []string {
	ids := make([]string, len(r.phases))
	for i, info := range r.phases {
		ids[i] = info.ID
	}
	return ids
}
