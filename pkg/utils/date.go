package utils

import (
	"fmt"
	"time"
)

var bangkok = loadBangkok()

func loadBangkok() *time.Location {
	loc, err := time.LoadLocation("Asia/Bangkok")
	if err != nil {
		return time.FixedZone("ICT", 7*60*60)
	}
	return loc
}

// Clock abstracts time.Now so time windows can be tested.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

// UnixMilli converts epoch milliseconds to a time in Bangkok.
func UnixMilli(ms int64) time.Time {
	return time.UnixMilli(ms).In(bangkok)
}

func PrettyDate(date time.Time) string {
	date = date.In(bangkok)
	return fmt.Sprintf("%02d %s %d - %02d:%02d ICT",
		date.Day(),
		date.Month().String()[:3],
		date.Year(),
		date.Hour(),
		date.Minute(),
	)
}
