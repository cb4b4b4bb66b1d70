package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeNote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"桌面杂乱，请整理。", "桌面杂乱请整理"},
		{"地面有垃圾!", "地面有垃圾"},
		{"床铺 未整理；被子（未叠）", "床铺 未整理被子未叠"},
		{"snake_case 123", "snake_case 123"},
		{"“引号”、顿号…", "引号顿号"},
		{"", ""},
		{"!!!", ""},
		{"tab\tand\nnewline", "tab\tand\nnewline"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeNote(tt.in))
		})
	}
}

func TestNormalizeNoteIdempotent(t *testing.T) {
	inputs := []string{"桌面杂乱，请整理。", "a-b_c d!", "①②③ ok?", "（）【】《》", "mixed 中文, English; 123."}
	for _, in := range inputs {
		once := NormalizeNote(in)
		assert.Equal(t, once, NormalizeNote(once), in)
	}
}

func TestIsMissing(t *testing.T) {
	for _, v := range []string{"", "  ", "nan", "NaN", "NA", "N/A", "n/a", "NULL", "null", "None", "<NA>", "#N/A", " nan "} {
		assert.True(t, IsMissing(v), "%q should be missing", v)
	}
	for _, v := range []string{"0", "95", "none of it", "Nano", "无"} {
		assert.False(t, IsMissing(v), "%q should be present", v)
	}
}

func TestCleanValue(t *testing.T) {
	assert.Equal(t, "", CleanValue(" NaN "))
	assert.Equal(t, "101", CleanValue(" 101 "))
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		in    string
		want  float64
		valid bool
	}{
		{"95", 95, true},
		{" 87.5 ", 87.5, true},
		{"0", 0, true},
		{"", 0, false},
		{"nan", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"优秀", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseScore(tt.in)
		assert.Equal(t, tt.valid, ok, tt.in)
		if tt.valid {
			assert.InDelta(t, tt.want, got, 1e-9, tt.in)
		}
	}
}
