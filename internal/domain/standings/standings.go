// Package standings derives the overall leaderboard, class titles and colour
// bands from a rating store.
package standings

import (
	"math"
	"sort"

	"github.com/okian/syaroho/internal/domain/model"
)

// Row is one line of the overall leaderboard.
type Row struct {
	Rank    int    `json:"rank" yaml:"rank"`
	User    string `json:"user" yaml:"user"`
	Rating  int    `json:"rating" yaml:"rating"`
	Highest int    `json:"highest" yaml:"highest"`
	Match   int    `json:"match" yaml:"match"`
	Win     int    `json:"win" yaml:"win"`
	Best    string `json:"best" yaml:"best"`
	Class   string `json:"class" yaml:"class"`
	Color   string `json:"color" yaml:"color"`
}

// Board is one page of the overall leaderboard of a snapshot.
type Board struct {
	Day   string `json:"day" yaml:"day"`
	Total int    `json:"total" yaml:"total"`
	Rows  []Row  `json:"rows" yaml:"rows"`
}

// Profile summarises a single player against the whole leaderboard.
type Profile struct {
	Handle   string `json:"screen_name" yaml:"screen_name"`
	Rating   int    `json:"rating" yaml:"rating"`
	Highest  int    `json:"highest" yaml:"highest"`
	Class    string `json:"class" yaml:"class"`
	Color    string `json:"color" yaml:"color"`
	Rank     int    `json:"rank" yaml:"rank"`
	Total    int    `json:"total" yaml:"total"`
	Win      int    `json:"win" yaml:"win"`
	Match    int    `json:"match" yaml:"match"`
	BestTime string `json:"best_time" yaml:"best_time"`
}

// Summarize orders every player by displayed rating, highest first. Equal
// ratings share the best rank of their block and are listed by handle.
func Summarize(store model.RatingStore) []Row {
	rows := make([]Row, 0, len(store))
	for handle, r := range store {
		if r == nil {
			continue
		}
		rows = append(rows, Row{
			User:    handle,
			Rating:  r.Rate,
			Highest: r.Highest,
			Match:   r.Attend,
			Win:     r.Win,
			Best:    r.BestTime,
			Class:   Class(r.Highest),
			Color:   Color(r.Rate),
		})
	}
	sort.Slice(rows, func(a, b int) bool {
		if rows[a].Rating != rows[b].Rating {
			return rows[a].Rating > rows[b].Rating
		}
		return rows[a].User < rows[b].User
	})
	for i := range rows {
		if i > 0 && rows[i].Rating == rows[i-1].Rating {
			rows[i].Rank = rows[i-1].Rank
			continue
		}
		rows[i].Rank = i + 1
	}
	return rows
}

// Lookup returns the profile of handle, or false when it has no record.
func Lookup(store model.RatingStore, handle string) (Profile, bool) {
	rows := Summarize(store)
	for _, row := range rows {
		if row.User != handle {
			continue
		}
		return Profile{
			Handle:   row.User,
			Rating:   row.Rating,
			Highest:  row.Highest,
			Class:    row.Class,
			Color:    row.Color,
			Rank:     row.Rank,
			Total:    len(rows),
			Win:      row.Win,
			Match:    row.Match,
			BestTime: row.Best,
		}, true
	}
	return Profile{}, false
}

// classes runs from the strongest title to the weakest; the trailing empty
// title belongs to players without a positive rating.
var classes = []string{ //nolint:gochecknoglobals // read-only table
	"極伝", "皆伝",
	"十段", "九段", "八段", "七段", "六段", "五段", "四段", "三段", "二段", "初段",
	"1級", "2級", "3級", "4級", "5級", "6級", "7級", "8級", "9級", "10級",
	"11級", "12級", "13級", "14級", "15級", "16級", "17級", "18級", "19級", "20級",
	"",
}

const (
	classTop   = 4400.0
	classStep  = 200.0
	classFloor = 400.0
	classDan   = 2000
	lowestKyu  = 31
)

// Class maps a highest rating to its title. Each title spans 200 points;
// below 400 the compressed rating is expanded back before banding.
func Class(highest int) string {
	var idx int
	switch {
	case highest >= classDan:
		idx = max(0, int((classTop-float64(highest+1))/classStep))
	case highest >= int(classFloor):
		idx = max(0, int((classTop-float64(highest))/classStep))
	case highest > 0:
		raw := classFloor * (1.0 + math.Log(float64(highest)/classFloor))
		idx = min(lowestKyu, int((classTop-raw)/classStep))
	default:
		idx = len(classes) - 1
	}
	return classes[idx]
}

type band struct {
	color string
	low   int
}

// bands are ordered by lower bound; the last one is open-ended.
var bands = []band{ //nolint:gochecknoglobals // read-only table
	{"#808080", math.MinInt},
	{"#804000", 400},
	{"#008000", 800},
	{"#00C0C0", 1200},
	{"#0000FF", 1600},
	{"#C0C000", 2000},
	{"#FF8005", 2400},
	{"#FF0000", 2800},
}

// Color returns the hex colour of the band containing rate.
func Color(rate int) string {
	c := bands[0].color
	for _, b := range bands {
		if rate < b.low {
			break
		}
		c = b.color
	}
	return c
}
