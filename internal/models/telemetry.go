package models

import "time"

// Channel identifies one telemetry signal.
type Channel string

const (
	ChannelPower      Channel = "power"
	ChannelSupplyTemp Channel = "supply_temp"
	ChannelReturnTemp Channel = "return_temp"
	ChannelAnomaly    Channel = "anomaly"
)

// ExportChannels is the column order used by rollups and exports.
var ExportChannels = []Channel{ChannelPower, ChannelSupplyTemp, ChannelReturnTemp, ChannelAnomaly}

// Label returns the display/export column name of the channel.
func (c Channel) Label() string {
	switch c {
	case ChannelPower:
		return "Power Consumption (kW)"
	case ChannelSupplyTemp:
		return "Temperatura di mandata"
	case ChannelReturnTemp:
		return "Temperatura di ritorno"
	case ChannelAnomaly:
		return "Anomaly Detection (m/s)"
	}
	return string(c)
}

// Unit returns the measurement unit of the channel.
func (c Channel) Unit() string {
	switch c {
	case ChannelPower:
		return "kW"
	case ChannelSupplyTemp, ChannelReturnTemp:
		return "°C"
	case ChannelAnomaly:
		return "m/s"
	}
	return ""
}

// TimeRange is an inclusive pair of calendar dates.
type TimeRange struct {
	Start time.Time `json:"start" msgpack:"start"`
	End   time.Time `json:"end" msgpack:"end"`
}

// NewTimeRange builds a range with both bounds truncated to midnight UTC of
// their calendar day.
func NewTimeRange(start, end time.Time) TimeRange {
	return TimeRange{Start: DayOf(start), End: DayOf(end)}
}

// DayOf returns midnight UTC of t's calendar date.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Valid reports whether Start <= End.
func (r TimeRange) Valid() bool {
	return !r.End.Before(r.Start)
}

// Hours returns the number of hourly samples covering the range, counting
// both endpoints: 00:00 of Start through 00:00 of End.
func (r TimeRange) Hours() int {
	if !r.Valid() {
		return 0
	}
	return 24*r.spanDays() + 1
}

// Days returns the number of calendar days in the range.
func (r TimeRange) Days() int {
	if !r.Valid() {
		return 0
	}
	return r.spanDays() + 1
}

// spanDays counts whole days from Start to End on Unix seconds, which unlike
// time.Duration does not saturate after ~292 years.
func (r TimeRange) spanDays() int {
	return int((DayOf(r.End).Unix() - DayOf(r.Start).Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60

// Point is a single hourly sample.
type Point struct {
	Timestamp time.Time `json:"timestamp" msgpack:"timestamp"`
	Value     float64   `json:"value" msgpack:"value"`
}

// ChannelSeries is an hourly series for one channel.
type ChannelSeries struct {
	Channel Channel `json:"channel" msgpack:"channel"`
	Unit    string  `json:"unit" msgpack:"unit"`
	Points  []Point `json:"points" msgpack:"points"`
}

// Len returns the number of points.
func (s ChannelSeries) Len() int {
	return len(s.Points)
}

// Values returns the sample values in timestamp order.
func (s ChannelSeries) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

// Telemetry is the full synthetic output for one device and range.
type Telemetry struct {
	Device     string        `json:"device" msgpack:"device"`
	Range      TimeRange     `json:"range" msgpack:"range"`
	Power      ChannelSeries `json:"power" msgpack:"power"`
	SupplyTemp ChannelSeries `json:"supplyTemp" msgpack:"supplyTemp"`
	ReturnTemp ChannelSeries `json:"returnTemp" msgpack:"returnTemp"`
	Anomaly    ChannelSeries `json:"anomaly" msgpack:"anomaly"`
}

// Series returns the four channels in export column order.
func (t *Telemetry) Series() []ChannelSeries {
	return []ChannelSeries{t.Power, t.SupplyTemp, t.ReturnTemp, t.Anomaly}
}
