package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFactorForLongestMatchWins(t *testing.T) {
	// "iphone" contains "phone"; the more specific keyword must win.
	assert.Equal(t, 0.80, FactorFor("Apple iPhone 13 Pro"))
	assert.Equal(t, 0.85, FactorFor("LG phone charger bundle"))
}

func TestFactorForKorean(t *testing.T) {
	assert.Equal(t, 0.80, FactorFor("아이폰 13 미니"))
	assert.Equal(t, 0.75, FactorFor("갤럭시 S24 울트라"))
	assert.Equal(t, 0.85, FactorFor("맥북 에어 M2"))
}

func TestFactorForDefault(t *testing.T) {
	assert.Equal(t, defaultFactor, FactorFor("빈티지 의자"))
	assert.Equal(t, defaultFactor, FactorFor(""))
}

func TestCategoryTerm(t *testing.T) {
	assert.Equal(t, "아이폰", CategoryTerm("iPhone 13 mini 128GB"))
	assert.Equal(t, "노트북", CategoryTerm("LG 그램 17인치"))
	assert.Equal(t, "닌텐도", CategoryTerm("스위치 OLED 풀박"))
	assert.Equal(t, "", CategoryTerm("빈티지 의자"))
}
