package scheduling

import (
	"time"

	"github.com/mingya-dental/clinic-manager/backend/internal/domain"
)

// Slot 表示日历网格上的一个格子，即 (日期, 班次) 的组合
// Slot 本身不持久化，是否被排班申请占用由 Schedule 记录决定
type Slot struct {
	Date  time.Time        `json:"date"`
	Shift domain.ShiftKind `json:"shift"`
}

// TruncateToDay 将时间归一化到当天零点，所有日期比较都基于归一化后的值
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// WeekWindow 表示日历上显示的一周，从周一开始
type WeekWindow struct {
	Anchor time.Time `json:"anchor"` // 归一化后的参考日期，用于判断某天是否已经过去
	Start  time.Time `json:"start"`  // 该周的周一
}

// Window 根据参考日期和周偏移量计算显示窗口
// offset 为 0 表示参考日期所在的周，负数和正数分别表示过去和未来的周
func Window(anchor time.Time, offset int) WeekWindow {
	day := TruncateToDay(anchor)
	weekday := (int(day.Weekday()) + 6) % 7 // 周一为 0
	return WeekWindow{
		Anchor: day,
		Start:  day.AddDate(0, 0, -weekday+offset*7),
	}
}

// Days 返回该周的七个日期，从周一到周日
func (w WeekWindow) Days() [7]time.Time {
	var days [7]time.Time
	for i := range days {
		days[i] = w.Start.AddDate(0, 0, i)
	}
	return days
}

// IsPast 判断某天相对于参考日期是否已经过去，只比较日期不比较时刻
func (w WeekWindow) IsPast(date time.Time) bool {
	return TruncateToDay(date).Before(w.Anchor)
}

func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
