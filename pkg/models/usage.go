package models

import "time"

// UsageRecord represents a single usage observation from the feed
type UsageRecord struct {
	DeviceID  int       `json:"device_id"`
	Usage     float64   `json:"usage"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Timestamp time.Time `json:"timestamp"` // Normalized from the feed's 12-hour clock string
	Color     string    `json:"color,omitempty"`
}

// DeviceGroup holds one device's records, ordered by time ascending
type DeviceGroup struct {
	DeviceID int           `json:"device_id"`
	Color    string        `json:"color"` // "#RRGGBB", one per device
	Records  []UsageRecord `json:"records"`
}

// Summary is the aggregate view of a device group
type Summary struct {
	DeviceID   int       `json:"device_id"`
	Color      string    `json:"color"`
	PeakUsage  float64   `json:"peak_usage"`
	PeakTime   time.Time `json:"peak_time"`
	TotalUsage float64   `json:"total_usage"`
	Records    int       `json:"records"`
}

// Dashboard is one processed session of the feed
type Dashboard struct {
	Date    time.Time     `json:"date"`   // Title date
	Records []UsageRecord `json:"-"`      // Every parsed record, outliers included (chart domains)
	Groups  []DeviceGroup `json:"groups"` // First-seen device order
	Source  string        `json:"source"` // Feed URL or snapshot id
}
