package types

import "fmt"

// StatsType is the granularity of an aggregate record
type StatsType string

const (
	StatsHourly StatsType = "hourly"
	StatsDaily  StatsType = "daily"
)

func (s StatsType) String() string {
	return string(s)
}

func ParseStatsType(s string) (StatsType, error) {
	switch StatsType(s) {
	case StatsHourly, StatsDaily:
		return StatsType(s), nil
	default:
		return "", fmt.Errorf("invalid stats type %q, must be %q or %q", s, StatsHourly, StatsDaily)
	}
}

// DataType tells block entities apart from stats entities
type DataType string

const (
	DataTypeBlock DataType = "blockdata"
	DataTypeStats DataType = "stats"
)

func (d DataType) String() string {
	return string(d)
}
