// Package model contains domain models passed between layers.
package model

import (
	"time"
)

// AttendDateLayout is the layout of RatingRecord.AttendDate entries.
const AttendDateLayout = "2006/01/02"

// Default values for a participant seen for the first time.
const (
	DefaultInnerRate = 1600
	DefaultBestTime  = "None"
	DefaultBestScore = -1000000
)

// Observation is one raw post as archived from the platform.
type Observation struct {
	ID        string    // platform id, decimal string (exceeds 2^53)
	Text      string    // post body
	Source    string    // posting client label, HTML already stripped
	Author    string    // author handle
	Timestamp time.Time // decoded from ID; zero means decode on use
}

// DailyEntry is an admitted competition entry for one day.
type DailyEntry struct {
	Handle string
	ID     string
	Record int64   // signed ms offset from the target instant
	Score  float64 // bonus (if Record >= 0) minus |Record|
	Time   string  // HH:MM:SS.mmm in the competition timezone
}

// RatingRecord is the persisted rating state of one participant.
// AttendDate, Record, Standing, Perf and RateHist grow by one entry per
// attended day and always have length Attend.
type RatingRecord struct {
	BestTime   string   `json:"best_time"`
	BestScore  float64  `json:"best_score"`
	Highest    int      `json:"highest"`
	Rate       int      `json:"rate"`
	InnerRate  int      `json:"inner_rate"`
	Attend     int      `json:"attend"`
	Win        int      `json:"win"`
	AttendDate []string `json:"attend_date"`
	Record     []string `json:"record"`
	Standing   []int    `json:"standing"`
	Perf       []int    `json:"perf"`
	RateHist   []int    `json:"rate_hist"`
}

// NewRatingRecord returns the record of a participant with no history.
func NewRatingRecord() *RatingRecord {
	return &RatingRecord{
		BestTime:   DefaultBestTime,
		BestScore:  DefaultBestScore,
		InnerRate:  DefaultInnerRate,
		AttendDate: []string{},
		Record:     []string{},
		Standing:   []int{},
		Perf:       []int{},
		RateHist:   []int{},
	}
}

// Clone returns a deep copy of r.
func (r *RatingRecord) Clone() *RatingRecord {
	c := *r
	c.AttendDate = append([]string{}, r.AttendDate...)
	c.Record = append([]string{}, r.Record...)
	c.Standing = append([]int{}, r.Standing...)
	c.Perf = append([]int{}, r.Perf...)
	c.RateHist = append([]int{}, r.RateHist...)
	return &c
}

// LastAttended returns the most recent attended day parsed in loc.
func (r *RatingRecord) LastAttended(loc *time.Location) (time.Time, bool, error) {
	if len(r.AttendDate) == 0 {
		return time.Time{}, false, nil
	}
	t, err := time.ParseInLocation(AttendDateLayout, r.AttendDate[len(r.AttendDate)-1], loc)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// RatingStore maps participant handle to its rating record.
type RatingStore map[string]*RatingRecord

// Clone returns a deep copy of s. A nil store clones to an empty one.
func (s RatingStore) Clone() RatingStore {
	c := make(RatingStore, len(s))
	for h, r := range s {
		c[h] = r.Clone()
	}
	return c
}

// DailyResult is one participant's outcome for a day.
type DailyResult struct {
	Handle       string  `json:"screen_name" yaml:"screen_name"`
	Rank         float64 `json:"rank" yaml:"rank"`
	RankNormal   int     `json:"rank_normal" yaml:"rank_normal"`
	Perf         int     `json:"perf" yaml:"perf"`
	Time         string  `json:"time" yaml:"time"`
	Score        float64 `json:"score" yaml:"score"`
	ID           string  `json:"id" yaml:"id"`
	InnerRate    int     `json:"inner_rate" yaml:"inner_rate"`
	NewInnerRate int     `json:"new_inner_rate" yaml:"new_inner_rate"`
	Rating       string  `json:"rating" yaml:"rating"`
	Change       string  `json:"change" yaml:"change"`
}

// PreviewEntry is a provisional result shown before the final fetch.
type PreviewEntry struct {
	Handle string  `json:"screen_name" yaml:"screen_name"`
	Time   string  `json:"time" yaml:"time"`
	Score  float64 `json:"score" yaml:"score"`
}
