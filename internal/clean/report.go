package clean

// StageResult records how many rows one stage removed.
type StageResult struct {
	Key     string `json:"key" yaml:"key"`
	Label   string `json:"label" yaml:"label"`
	Removed int    `json:"removed" yaml:"removed"`
}

// Report summarizes a cleaning run. Initial == sum(Stages.Removed) + Remaining.
type Report struct {
	Initial      int           `json:"initial" yaml:"initial"`
	Stages       []StageResult `json:"stages" yaml:"stages"`
	TotalRemoved int           `json:"total_removed" yaml:"total_removed"`
	Remaining    int           `json:"remaining" yaml:"remaining"`
}

// Removed returns the count for a stage key; ok is false for unknown keys.
func (r *Report) Removed(key string) (n int, ok bool) {
	for _, s := range r.Stages {
		if s.Key == key {
			return s.Removed, true
		}
	}
	return 0, false
}

// Balanced reports whether the per-stage counts account for every input row.
func (r *Report) Balanced() bool {
	sum := 0
	for _, s := range r.Stages {
		sum += s.Removed
	}
	return sum+r.Remaining == r.Initial && r.TotalRemoved == sum
}
