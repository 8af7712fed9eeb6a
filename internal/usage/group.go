package usage

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/jgoulah/usagegrid/pkg/models"
)

// ColorFunc returns the display color for a device seen for the first time
type ColorFunc func(deviceID int) string

// RandomColor returns a random "#RRGGBB" color
func RandomColor(int) string {
	return fmt.Sprintf("#%06X", rand.IntN(1<<24))
}

// Options controls grouping
type Options struct {
	Exclude []int     // Device ids dropped unconditionally
	Color   ColorFunc // Defaults to RandomColor
	Now     func() time.Time
}

// Group partitions records by device id. Groups come back in the order
// their device was first seen, each colored once on first sight and sorted
// by timestamp ascending. Records of excluded devices are dropped.
func Group(records []models.UsageRecord, opts Options) []models.DeviceGroup {
	color := opts.Color
	if color == nil {
		color = RandomColor
	}

	index := make(map[int]int)
	var groups []models.DeviceGroup
	for _, record := range records {
		i, ok := index[record.DeviceID]
		if !ok {
			i = len(groups)
			index[record.DeviceID] = i
			groups = append(groups, models.DeviceGroup{
				DeviceID: record.DeviceID,
				Color:    color(record.DeviceID),
			})
		}
		record.Color = groups[i].Color
		groups[i].Records = append(groups[i].Records, record)
	}

	groups = slices.DeleteFunc(groups, func(g models.DeviceGroup) bool {
		return slices.Contains(opts.Exclude, g.DeviceID)
	})

	for i := range groups {
		SortByTime(groups[i].Records)
	}
	return groups
}

// SortByTime orders records by timestamp ascending. Equal timestamps keep
// their feed order.
func SortByTime(records []models.UsageRecord) {
	slices.SortStableFunc(records, func(a, b models.UsageRecord) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
}

// Displayable returns the groups shown in the legend, chart and grid:
// those with at least two records
func Displayable(groups []models.DeviceGroup) []models.DeviceGroup {
	var out []models.DeviceGroup
	for _, g := range groups {
		if len(g.Records) > 1 {
			out = append(out, g)
		}
	}
	return out
}

// Build runs the full processing pass over one fetch
func Build(records []models.UsageRecord, source string, opts Options) *models.Dashboard {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	date := now()
	if len(records) > 0 && !records[0].Timestamp.IsZero() {
		date = records[0].Timestamp
	}

	return &models.Dashboard{
		Date:    date,
		Records: records,
		Groups:  Group(records, opts),
		Source:  source,
	}
}
