package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var scoreNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func birthYearsAgo(years int) *time.Time {
	t := scoreNow.AddDate(-years, 0, -30)
	return &t
}

func TestScore_FullScenario(t *testing.T) {
	requester := ProfileView{
		BirthDate:  birthYearsAgo(30),
		Location:   "上海市浦东新区",
		Occupation: "software engineer",
		Interests:  []string{"a", "b", "c"},
	}
	candidate := ProfileView{
		BirthDate:  birthYearsAgo(33),
		Location:   "上海市浦东新区",
		Occupation: "backend engineer",
		Interests:  []string{"b", "c", "d"},
	}

	// age diff 3 -> 20, interests 40*2/3 = 26.67, exact location -> 20,
	// both tech -> 20; 86.67 truncates to 86.
	assert.Equal(t, 86, Score(requester, candidate, scoreNow))
}

func TestScore_Deterministic(t *testing.T) {
	a := ProfileView{BirthDate: birthYearsAgo(25), Location: "北京", Interests: []string{"x", "y"}}
	b := ProfileView{BirthDate: birthYearsAgo(28), Location: "北京", Interests: []string{"y", "z"}}

	first := Score(a, b, scoreNow)
	second := Score(a, b, scoreNow)
	assert.Equal(t, first, second)
}

func TestScore_Bounds(t *testing.T) {
	full := ProfileView{
		BirthDate:  birthYearsAgo(30),
		Location:   "Shanghai",
		Occupation: "developer",
		Interests:  []string{"a", "b"},
	}
	cases := []ProfileView{
		{},
		full,
		{BirthDate: birthYearsAgo(60)},
		{Interests: []string{"a"}},
		{Location: "somewhere"},
	}
	for _, c := range cases {
		got := Score(full, c, scoreNow)
		assert.GreaterOrEqual(t, got, 0)
		assert.LessOrEqual(t, got, 100)
	}
}

func TestScore_MissingFieldsContributeZero(t *testing.T) {
	assert.Equal(t, 0, Score(ProfileView{}, ProfileView{}, scoreNow))
}

func TestScore_AgeSteps(t *testing.T) {
	base := ProfileView{BirthDate: birthYearsAgo(30)}
	cases := []struct {
		years int
		want  int
	}{
		{30, 20}, // diff 0
		{35, 20}, // diff 5
		{38, 10}, // diff 8
		{43, 5},  // diff 13
		{50, 0},  // diff 20
	}
	for _, tc := range cases {
		got := Score(base, ProfileView{BirthDate: birthYearsAgo(tc.years)}, scoreNow)
		assert.Equal(t, tc.want, got, "age %d", tc.years)
	}
}

func TestScore_LocationReferenceCity(t *testing.T) {
	a := ProfileView{Location: "Shanghai, China"}
	b := ProfileView{Location: "Shanghai"}
	assert.Equal(t, 15, Score(a, b, scoreNow))

	// different reference cities share nothing
	c := ProfileView{Location: "Beijing"}
	assert.Equal(t, 0, Score(a, c, scoreNow))
}

func TestScore_OccupationCategories(t *testing.T) {
	tech := ProfileView{Occupation: "IT support"}
	alsoTech := ProfileView{Occupation: "软件工程师"}
	nonTech := ProfileView{Occupation: "chef"}
	alsoNonTech := ProfileView{Occupation: "nurse"}

	assert.Equal(t, 20, Score(tech, alsoTech, scoreNow))
	assert.Equal(t, 20, Score(nonTech, alsoNonTech, scoreNow))
	assert.Equal(t, 0, Score(tech, nonTech, scoreNow))
	assert.Equal(t, 0, Score(tech, ProfileView{}, scoreNow))
}

func TestAgeAt_BirthdayNotYetOccurred(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	before := time.Date(1995, 6, 16, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 29, AgeAt(before, now))

	on := time.Date(1995, 6, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 30, AgeAt(on, now))

	after := time.Date(1995, 6, 14, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 30, AgeAt(after, now))
}
