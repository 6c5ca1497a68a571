package service

import (
	"math"
	"time"
)

// rankThreshold XP 达到阈值即获得对应称号，表按阈值升序排列
type rankThreshold struct {
	XP   int
	Name string
}

var rankThresholds = []rankThreshold{
	{0, "Novice"},
	{100, "Beginner"},
	{500, "Learner"},
	{1000, "Student"},
	{2500, "Scholar"},
	{5000, "Expert"},
	{10000, "Master"},
	{25000, "Grandmaster"},
	{50000, "Legend"},
}

// LevelForXP 等级 = floor(sqrt(totalXP/100)) + 1，最低为 1 级
func LevelForXP(totalXP int) int {
	if totalXP <= 0 {
		return 1
	}
	return int(math.Floor(math.Sqrt(float64(totalXP)/100))) + 1
}

// RankForXP 返回累计 XP 已达到的最高称号
func RankForXP(totalXP int) string {
	rank := rankThresholds[0].Name
	for _, t := range rankThresholds {
		if totalXP >= t.XP {
			rank = t.Name
		}
	}
	return rank
}

// XPToNextLevel 距离下一等级还差多少 XP，已超出时为 0
func XPToNextLevel(level, totalXP int) int {
	need := level*level*100 - totalXP
	if need < 0 {
		return 0
	}
	return need
}

// AdvanceStreak 按最近活跃日推进连续学习天数。
// 昨天活跃过则加一，今天已记录则不变，中断则从 1 重新开始。
// advanced 表示本次调用是否记入了新的活跃日。
func AdvanceStreak(lastActivity *time.Time, current, longest int, now time.Time) (newCurrent, newLongest int, advanced bool) {
	today := dateOf(now)
	switch {
	case lastActivity == nil:
		newCurrent = 1
		advanced = true
	case dateOf(*lastActivity).Equal(today):
		newCurrent = current
		advanced = false
	case dateOf(*lastActivity).Equal(today.AddDate(0, 0, -1)):
		newCurrent = current + 1
		advanced = true
	default:
		newCurrent = 1
		advanced = true
	}
	newLongest = longest
	if newCurrent > newLongest {
		newLongest = newCurrent
	}
	return newCurrent, newLongest, advanced
}

// StreakBonusXP 连续学习天数对应的每日奖励 XP
func StreakBonusXP(streak int) int {
	switch {
	case streak >= 30:
		return 50
	case streak >= 14:
		return 25
	case streak >= 7:
		return 15
	case streak >= 3:
		return 10
	default:
		return 5
	}
}

// dateOf 取日历日，忽略时分秒
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
