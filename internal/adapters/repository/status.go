package repository

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/okian/syaroho/internal/domain/model"
	"github.com/okian/syaroho/internal/domain/snowflake"
)

// status is the subset of an archived platform v1 status object we read.
type status struct {
	ID       json.Number `json:"id"`
	IDStr    string      `json:"id_str"`
	Text     string      `json:"text"`
	FullText string      `json:"full_text"`
	Source   string      `json:"source"`
	User     struct {
		ScreenName string `json:"screen_name"`
	} `json:"user"`
}

// primaryArchive wraps the statuses of one primary fetch file.
type primaryArchive struct {
	Results []status `json:"results"`
}

// Source labels arrive as an anchor: <a href="...">client</a>.
var htmlTag = regexp.MustCompile(`<.*?>`)

func stripTags(s string) string {
	return htmlTag.ReplaceAllString(s, "")
}

func (s status) observation(loc *time.Location) (model.Observation, error) {
	id := s.IDStr
	if id == "" {
		id = s.ID.String()
	}
	if id == "" {
		return model.Observation{}, fmt.Errorf("%w: status by %q has no id", ErrInvalidArchive, s.User.ScreenName)
	}
	ts, err := snowflake.Time(id, loc)
	if err != nil {
		return model.Observation{}, fmt.Errorf("%w: status by %q: %w", ErrInvalidArchive, s.User.ScreenName, err)
	}
	text := s.Text
	if text == "" {
		text = s.FullText
	}
	return model.Observation{
		ID:        id,
		Text:      text,
		Source:    stripTags(s.Source),
		Author:    s.User.ScreenName,
		Timestamp: ts,
	}, nil
}

func observations(statuses []status, loc *time.Location) ([]model.Observation, error) {
	out := make([]model.Observation, 0, len(statuses))
	for _, s := range statuses {
		o, err := s.observation(loc)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}
