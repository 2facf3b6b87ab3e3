package checklist

// PhaseProgress summarises one phase.
type PhaseProgress struct {
	PhaseID   string `json:"phaseId"`
	Title     string `json:"title"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Effort    int    `json:"effort"`
}

type Progress struct {
	Completed int             `json:"completed"`
	Total     int             `json:"total"`
	Percent   int             `json:"percent"`
	Saved     int             `json:"saved"`
	Phases    []PhaseProgress `json:"phases"`
}

// Progress counts completed and saved items overall and per phase.
func (m *Model) Progress() Progress {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out Progress
	out.Phases = make([]PhaseProgress, 0, len(m.phases))
	for _, p := range m.phases {
		pp := PhaseProgress{PhaseID: p.ID, Title: p.Title, Total: len(p.Items), Effort: p.Effort}
		for _, it := range p.Items {
			if it.IsCompleted {
				pp.Completed++
			}
			if it.SavedOutput != nil {
				out.Saved++
			}
		}
		out.Completed += pp.Completed
		out.Total += pp.Total
		out.Phases = append(out.Phases, pp)
	}
	if out.Total > 0 {
		out.Percent = out.Completed * 100 / out.Total
	}
	return out
}
