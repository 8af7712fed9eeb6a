package usage

import "github.com/jgoulah/usagegrid/pkg/models"

// Summarize computes the aggregate view of a group: total usage and the peak
// record. Ties for the peak go to the earliest record in the group's order.
// It returns false for an empty group.
func Summarize(g models.DeviceGroup) (models.Summary, bool) {
	if len(g.Records) == 0 {
		return models.Summary{}, false
	}

	s := models.Summary{
		DeviceID:  g.DeviceID,
		Color:     g.Color,
		PeakUsage: g.Records[0].Usage,
		PeakTime:  g.Records[0].Timestamp,
		Records:   len(g.Records),
	}
	for _, r := range g.Records {
		s.TotalUsage += r.Usage
		if r.Usage > s.PeakUsage {
			s.PeakUsage = r.Usage
			s.PeakTime = r.Timestamp
		}
	}
	return s, true
}

// Summaries returns the summary of every displayable group, in group order
func Summaries(groups []models.DeviceGroup) []models.Summary {
	var out []models.Summary
	for _, g := range Displayable(groups) {
		if s, ok := Summarize(g); ok {
			out = append(out, s)
		}
	}
	return out
}
