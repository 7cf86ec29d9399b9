package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	assert.Nil(t, SplitList(""))
	assert.Nil(t, SplitList("   "))
	assert.Equal(t, []string{"a", "b"}, SplitList("a,b"))
	assert.Equal(t, []string{"旅行", "电影"}, SplitList(" 旅行 , 电影 ,"))
}

func TestJoinListRoundTrip(t *testing.T) {
	items := []string{"x", "y", "z"}
	assert.Equal(t, items, SplitList(JoinList(items)))
}
