package slack

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// ErrInvalidTS is returned for strings that are not Slack timestamps.
var ErrInvalidTS = goerr.New("invalid slack timestamp")

// splitTS splits "1700000000.000100" into seconds and microseconds.
func splitTS(ts string) (int64, int64, error) {
	secPart, fracPart, _ := strings.Cut(ts, ".")
	sec, err := strconv.ParseInt(secPart, 10, 64)
	if err != nil || sec < 0 {
		return 0, 0, goerr.Wrap(ErrInvalidTS, "bad seconds", goerr.V("ts", ts))
	}
	if fracPart == "" {
		return sec, 0, nil
	}
	if len(fracPart) > 6 {
		return 0, 0, goerr.Wrap(ErrInvalidTS, "fraction too long", goerr.V("ts", ts))
	}
	fracPart += strings.Repeat("0", 6-len(fracPart))
	usec, err := strconv.ParseInt(fracPart, 10, 64)
	if err != nil || usec < 0 {
		return 0, 0, goerr.Wrap(ErrInvalidTS, "bad fraction", goerr.V("ts", ts))
	}
	return sec, usec, nil
}

// ParseTS converts a Slack timestamp to UTC time.
func ParseTS(ts string) (time.Time, error) {
	sec, usec, err := splitTS(ts)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(sec, usec*int64(time.Microsecond)).UTC(), nil
}

// FormatTS renders t as a Slack timestamp with microsecond precision.
func FormatTS(t time.Time) string {
	return fmt.Sprintf("%d.%06d", t.Unix(), t.Nanosecond()/int(time.Microsecond))
}

// CompareTS orders two Slack timestamps numerically. Unparsable values fall
// back to lexical order so the result is still total.
func CompareTS(a, b string) int {
	as, au, aErr := splitTS(a)
	bs, bu, bErr := splitTS(b)
	if aErr != nil || bErr != nil {
		return strings.Compare(a, b)
	}

	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	case au < bu:
		return -1
	case au > bu:
		return 1
	default:
		return 0
	}
}
