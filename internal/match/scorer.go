package match

import (
	"strings"
	"time"
)

// ProfileView is the read-only slice of a profile the scorer needs.
type ProfileView struct {
	BirthDate  *time.Time
	Location   string
	Occupation string
	Interests  []string
}

// referenceCities is the fixed list used by the forgiving location match.
// Free-text locations are not normalized, so "Shanghai, China" and
// "Shanghai" should still count as the same city.
var referenceCities = []string{
	"北京", "上海", "广州", "深圳", "杭州", "成都", "武汉", "西安", "南京", "重庆",
	"Beijing", "Shanghai", "Guangzhou", "Shenzhen", "Hangzhou",
	"Chengdu", "Wuhan", "Xi'an", "Nanjing", "Chongqing",
}

// techKeywords classifies an occupation string as tech via case-insensitive
// substring match.
var techKeywords = []string{
	"engineer", "developer", "programmer", "technical", "software", "it",
	"工程师", "程序员", "开发", "技术",
}

// Score computes the 0-100 compatibility score between a requester and a
// candidate at the given reference time. Components:
//
//	age proximity        0-20 (step function on the age difference)
//	shared interests     0-40 (fractional, 40*common/max)
//	location             0-20 (exact match 20, shared reference city 15)
//	occupation category  0-20 (both tech or both non-tech)
//
// The fractional sum is clamped to 100 and truncated to an integer.
// Missing fields contribute 0 to their component; Score never errors.
func Score(requester, candidate ProfileView, now time.Time) int {
	sum := agePoints(requester.BirthDate, candidate.BirthDate, now) +
		interestPoints(requester.Interests, candidate.Interests) +
		locationPoints(requester.Location, candidate.Location) +
		occupationPoints(requester.Occupation, candidate.Occupation)

	if sum > 100 {
		sum = 100
	}
	return int(sum)
}

// AgeAt derives an age from a birth date with calendar-aware subtraction:
// one year less if the birthday has not yet occurred this year.
func AgeAt(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	anniversary := time.Date(now.Year(), birth.Month(), birth.Day(), 0, 0, 0, 0, now.Location())
	if now.Before(anniversary) {
		age--
	}
	return age
}

func agePoints(a, b *time.Time, now time.Time) float64 {
	if a == nil || b == nil {
		return 0
	}
	d := AgeAt(*a, now) - AgeAt(*b, now)
	if d < 0 {
		d = -d
	}
	switch {
	case d <= 5:
		return 20
	case d <= 10:
		return 10
	case d <= 15:
		return 5
	default:
		return 0
	}
}

func interestPoints(a, b []string) float64 {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 0
	}

	set := make(map[string]struct{}, len(a))
	for _, it := range a {
		set[it] = struct{}{}
	}
	common := 0
	for _, it := range b {
		if _, ok := set[it]; ok {
			common++
		}
	}

	return 40 * float64(common) / float64(maxLen)
}

func locationPoints(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 20
	}
	for _, city := range referenceCities {
		if strings.Contains(a, city) && strings.Contains(b, city) {
			return 15
		}
	}
	return 0
}

func occupationPoints(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if isTechOccupation(a) == isTechOccupation(b) {
		return 20
	}
	return 0
}

func isTechOccupation(s string) bool {
	lower := strings.ToLower(s)
	for _, kw := range techKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
