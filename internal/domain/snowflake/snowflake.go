// Package snowflake decodes creation times from platform post identifiers.
//
// Identifiers carry milliseconds since the platform epoch in their bits
// above bit 22.
package snowflake

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EpochMS is the platform identifier epoch in Unix milliseconds.
const EpochMS int64 = 1288834974657

const timestampShift = 22

// ErrInvalidID is returned for identifiers that are not non-negative integers.
var ErrInvalidID = errors.New("invalid snowflake id")

// TimestampMS returns the Unix millisecond timestamp encoded in id.
func TimestampMS(id string) (int64, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(id), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return FromUint64(v), nil
}

// FromUint64 returns the Unix millisecond timestamp encoded in id.
func FromUint64(id uint64) int64 {
	return int64(id>>timestampShift) + EpochMS
}

// Time decodes id into an instant expressed in loc.
func Time(id string, loc *time.Location) (time.Time, error) {
	ms, err := TimestampMS(id)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms).In(loc), nil
}
