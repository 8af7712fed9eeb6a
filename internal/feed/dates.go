package feed

import (
	"time"

	"github.com/araddon/dateparse"
)

// parseDate accepts any of the layouts dateparse understands
// ("2024-03-09", "March 9, 2024", "03/09/2024", ...), interpreted in loc.
func parseDate(value string, loc *time.Location) (time.Time, error) {
	return dateparse.ParseIn(value, loc)
}
