package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mingya-dental/clinic-manager/backend/internal/domain"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestWindowStartsOnMonday(t *testing.T) {
	testCases := []struct {
		name      string
		anchor    time.Time
		offset    int
		wantStart time.Time
	}{
		{"周三看本周", date(2025, time.March, 12), 0, date(2025, time.March, 10)},
		{"周一看本周", date(2025, time.March, 10), 0, date(2025, time.March, 10)},
		{"周日看本周", date(2025, time.March, 16), 0, date(2025, time.March, 10)},
		{"下一周", date(2025, time.March, 12), 1, date(2025, time.March, 17)},
		{"上一周", date(2025, time.March, 12), -1, date(2025, time.March, 3)},
		{"跨月", date(2025, time.March, 31), 1, date(2025, time.April, 7)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			window := Window(tc.anchor, tc.offset)
			assert.Equal(t, tc.wantStart, window.Start)
			assert.Equal(t, time.Monday, window.Start.Weekday())
		})
	}
}

func TestWindowDays(t *testing.T) {
	window := Window(date(2025, time.March, 12), 0)
	days := window.Days()

	require.Len(t, days, 7)
	for i, day := range days {
		assert.Equal(t, window.Start.AddDate(0, 0, i), day)
	}
	assert.Equal(t, time.Sunday, days[6].Weekday())
}

func TestWindowIsPastIgnoresTimeOfDay(t *testing.T) {
	// 参考时刻是 12 日深夜，但 12 日当天仍然不算过去
	anchor := time.Date(2025, time.March, 12, 23, 59, 0, 0, time.UTC)
	window := Window(anchor, 0)

	assert.True(t, window.IsPast(date(2025, time.March, 11)))
	assert.False(t, window.IsPast(time.Date(2025, time.March, 12, 0, 0, 1, 0, time.UTC)))
	assert.False(t, window.IsPast(date(2025, time.March, 13)))
}

func TestShiftKindsAreClosed(t *testing.T) {
	require.Len(t, domain.ShiftKinds, 3)
	for _, kind := range domain.ShiftKinds {
		assert.True(t, kind.Valid())
	}
	assert.False(t, domain.ShiftKind("夜班").Valid())
	assert.False(t, domain.ShiftKind("").Valid())
}
