package feed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jgoulah/usagegrid/pkg/models"
	"go.uber.org/zap"
)

// ErrMissingColumns is returned when the feed header lacks a required column
var ErrMissingColumns = errors.New("missing required columns")

// columns maps feed header names to their index; -1 when absent
type columns struct {
	deviceID  int
	usage     int
	x         int
	y         int
	timestamp int
}

func findColumns(header []string) (columns, error) {
	cols := columns{deviceID: -1, usage: -1, x: -1, y: -1, timestamp: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "deviceid", "device_id":
			cols.deviceID = i
		case "usage":
			cols.usage = i
		case "x":
			cols.x = i
		case "y":
			cols.y = i
		case "timestamp":
			cols.timestamp = i
		}
	}

	if cols.deviceID == -1 || cols.usage == -1 || cols.timestamp == -1 {
		return cols, fmt.Errorf("%w (deviceid, usage, timestamp) in header %v", ErrMissingColumns, header)
	}
	return cols, nil
}

// Parse reads a tab-separated usage feed. Clock strings are normalized onto
// the anchor's calendar date. Rows whose timestamp or device id cannot be read
// are skipped, as are rows with a non-finite usage; an empty numeric cell
// reads as 0.
func Parse(r io.Reader, anchor time.Time, logger *zap.Logger) ([]models.UsageRecord, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading TSV header: %w", err)
	}

	cols, err := findColumns(header)
	if err != nil {
		return nil, err
	}

	var results []models.UsageRecord
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading TSV row: %w", err)
		}
		line++

		deviceID, err := strconv.Atoi(strings.TrimSpace(cell(row, cols.deviceID)))
		if err != nil {
			logger.Debug("skipping row with bad device id", zap.Int("line", line), zap.Error(err))
			continue
		}

		ts, err := ParseClock(cell(row, cols.timestamp), anchor)
		if err != nil {
			logger.Debug("skipping row with bad timestamp", zap.Int("line", line), zap.Error(err))
			continue
		}

		record := models.UsageRecord{
			DeviceID:  deviceID,
			Timestamp: ts,
		}
		if record.Usage, err = number(cell(row, cols.usage)); err != nil {
			logger.Debug("skipping row with bad usage", zap.Int("line", line), zap.Error(err))
			continue
		}
		// Coordinates are informational; a bad value reads as 0
		record.X, _ = number(cell(row, cols.x))
		record.Y, _ = number(cell(row, cols.y))

		results = append(results, record)
	}

	return results, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func number(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite number %q", s)
	}
	return v, nil
}
