package slack_test

import (
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/sleuth/pkg/domain/model/slack"
)

func TestCompareTS(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"equal", "1700000000.000100", "1700000000.000100", 0},
		{"older seconds", "1699999999.999999", "1700000000.000000", -1},
		{"newer micros", "1700000000.000200", "1700000000.000100", 1},
		{"short fraction is padded", "1700000000.1", "1700000000.099999", 1},
		{"lexical order would be wrong", "999999999.000000", "1000000000.000000", -1},
		{"no fraction", "1700000000", "1700000000.000000", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, slack.CompareTS(tt.a, tt.b)).Equal(tt.want)
		})
	}
}

func TestParseTS(t *testing.T) {
	got, err := slack.ParseTS("1700000000.000100")
	gt.NoError(t, err).Required()
	gt.Value(t, got).Equal(time.Unix(1700000000, 100000).UTC())

	for _, bad := range []string{"", "abc", "1700000000.1234567", "-1.0", "1.x"} {
		_, err := slack.ParseTS(bad)
		gt.Bool(t, errors.Is(err, slack.ErrInvalidTS)).True()
	}
}

func TestFormatTS(t *testing.T) {
	ts := slack.FormatTS(time.Unix(1700000000, 123456789))
	gt.Value(t, ts).Equal("1700000000.123456")

	back, err := slack.ParseTS(ts)
	gt.NoError(t, err).Required()
	gt.Value(t, slack.FormatTS(back)).Equal(ts)
}
