package market

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketlens/scout/internal/cache"
	"github.com/marketlens/scout/internal/store"
	"github.com/marketlens/scout/pkg/models"
)

type stubSearcher struct {
	listings []models.Listing
	calls    int
}

func (s *stubSearcher) Search(_ context.Context, _ string, _ int) ([]models.Listing, error) {
	s.calls++
	return s.listings, nil
}

func coupangListing(title string, price int64, url string) models.Listing {
	return models.Listing{
		Source:     models.SourceCoupang,
		Title:      title,
		Price:      price,
		ProductURL: url,
		CapturedAt: time.Now(),
	}
}

func TestAnalyzeMedianReconciliation(t *testing.T) {
	st := store.NewMemoryStore()
	require.NoError(t, st.UpsertMany(context.Background(), []models.Listing{
		coupangListing("아이폰 13 128GB 자급제", 80000, "https://www.coupang.com/vp/1"),
		coupangListing("아이폰 13 128GB 미드나이트", 90000, "https://www.coupang.com/vp/2"),
		coupangListing("아이폰 13 128GB 스타라이트", 100000, "https://www.coupang.com/vp/3"),
	}))

	a := NewAnalyzer(st, nil, nil, 0)
	subject := models.Listing{
		Source:     models.SourceDanggeun,
		Title:      "아이폰 13 128GB",
		Price:      95000,
		ProductURL: "https://www.daangn.com/p/s",
	}

	got, err := a.Analyze(context.Background(), subject)
	require.NoError(t, err)

	assert.Equal(t, int64(90000), got.MarketPrice)
	assert.Equal(t, int64(5000), got.Disparity)
	assert.False(t, got.IsLowerThanMarket)
	assert.False(t, got.Estimated)
	assert.InDelta(t, 5.55, got.DisparityPercentage, 0.01)
	assert.Len(t, got.Comparables, 3)
	// Closest by price first.
	assert.Equal(t, int64(90000), got.Comparables[0].Price)
	assert.Equal(t, int64(100000), got.Comparables[1].Price)
	assert.Equal(t, int64(80000), got.Comparables[2].Price)
}

func TestAnalyzeEvenMedian(t *testing.T) {
	st := store.NewMemoryStore()
	require.NoError(t, st.UpsertMany(context.Background(), []models.Listing{
		coupangListing("맥북프로 16인치 기본형", 900001, "https://www.coupang.com/vp/1"),
		coupangListing("맥북프로 16인치 고급형", 1000000, "https://www.coupang.com/vp/2"),
	}))

	a := NewAnalyzer(st, nil, nil, 0)
	got, err := a.Analyze(context.Background(), models.Listing{
		Source: models.SourceBunjang,
		Title:  "맥북프로 16인치",
		Price:  800000,
	})
	require.NoError(t, err)
	// Rounded mean of the two middle values.
	assert.Equal(t, int64(950001), got.MarketPrice)
	assert.True(t, got.IsLowerThanMarket)
}

func TestAnalyzeHeuristicFallbackReferenceSubject(t *testing.T) {
	a := NewAnalyzer(store.NewMemoryStore(), nil, nil, 0)
	got, err := a.Analyze(context.Background(), models.Listing{
		Source: models.SourceCoupang,
		Title:  "LG 노트북 그램 17",
		Price:  1000000,
	})
	require.NoError(t, err)

	assert.True(t, got.Estimated)
	assert.Empty(t, got.Comparables)
	// Retail subject: second-hand market assumed lower by the category factor.
	assert.Equal(t, int64(750000), got.MarketPrice)
	assert.False(t, got.IsLowerThanMarket)
}

func TestAnalyzeHeuristicFallbackSecondHandSubject(t *testing.T) {
	a := NewAnalyzer(store.NewMemoryStore(), nil, nil, 0)
	got, err := a.Analyze(context.Background(), models.Listing{
		Source: models.SourceDanggeun,
		Title:  "식탁 의자 세트",
		Price:  75000,
	})
	require.NoError(t, err)

	assert.True(t, got.Estimated)
	// Second-hand subject: retail assumed higher, price divided by the factor.
	assert.Equal(t, int64(100000), got.MarketPrice)
	assert.True(t, got.IsLowerThanMarket)
}

func TestAnalyzeLiveScrapeMergesAndArchives(t *testing.T) {
	st := store.NewMemoryStore()
	require.NoError(t, st.UpsertMany(context.Background(), []models.Listing{
		coupangListing("아이폰 14 256GB", 700000, "https://www.coupang.com/vp/1"),
	}))

	ref := &stubSearcher{listings: []models.Listing{
		coupangListing("아이폰 14 256GB 자급제", 800000, "https://www.coupang.com/vp/2"),
		coupangListing("아이폰 14 256GB 블루", 900000, "https://www.coupang.com/vp/3"),
		// Duplicate of the archived listing; must not count twice.
		coupangListing("아이폰 14 256GB", 700000, "https://www.coupang.com/vp/1"),
		// Below the noise floor; dropped.
		coupangListing("아이폰 14 케이스", 500, "https://www.coupang.com/vp/4"),
	}}

	a := NewAnalyzer(st, ref, nil, 0)
	got, err := a.Analyze(context.Background(), models.Listing{
		Source: models.SourceJunggonara,
		Title:  "아이폰 14 256GB",
		Price:  750000,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, ref.calls)
	assert.False(t, got.Estimated)
	assert.Equal(t, int64(800000), got.MarketPrice)
	// Scraped listings were folded into the archive.
	assert.Equal(t, 4, st.Len())
}

func TestAnalyzeSkipsLiveScrapeWhenArchiveSuffices(t *testing.T) {
	st := store.NewMemoryStore()
	require.NoError(t, st.UpsertMany(context.Background(), []models.Listing{
		coupangListing("갤럭시 S24 자급제", 800000, "https://www.coupang.com/vp/1"),
		coupangListing("갤럭시 S24 화이트", 820000, "https://www.coupang.com/vp/2"),
	}))

	ref := &stubSearcher{}
	a := NewAnalyzer(st, ref, nil, 0)
	_, err := a.Analyze(context.Background(), models.Listing{
		Source: models.SourceDanggeun,
		Title:  "갤럭시 S24",
		Price:  600000,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, ref.calls, "archive had enough evidence; no live scrape expected")
}

func TestAnalyzeCachesByTitle(t *testing.T) {
	st := store.NewMemoryStore()
	require.NoError(t, st.UpsertMany(context.Background(), []models.Listing{
		coupangListing("에어팟 프로 2세대", 250000, "https://www.coupang.com/vp/1"),
		coupangListing("에어팟 프로 2세대 정품", 260000, "https://www.coupang.com/vp/2"),
	}))

	c := cache.NewMemoryCache(24 * time.Hour)
	a := NewAnalyzer(st, nil, c, 0)
	subject := models.Listing{Source: models.SourceBunjang, Title: "에어팟 프로 2세대", Price: 180000}

	first, err := a.Analyze(context.Background(), subject)
	require.NoError(t, err)

	// New evidence after caching must not change the cached answer.
	require.NoError(t, st.UpsertMany(context.Background(), []models.Listing{
		coupangListing("에어팟 프로 2세대 새상품", 990000, "https://www.coupang.com/vp/3"),
	}))

	second, err := a.Analyze(context.Background(), subject)
	require.NoError(t, err)
	assert.Equal(t, first.MarketPrice, second.MarketPrice)
	assert.Equal(t, uint64(1), c.Stats().Hits)
}

func TestAnalyzeExcludesSubjectFromEvidence(t *testing.T) {
	st := store.NewMemoryStore()
	subjectURL := "https://www.coupang.com/vp/self"
	require.NoError(t, st.UpsertMany(context.Background(), []models.Listing{
		coupangListing("닌텐도 스위치 OLED", 300000, subjectURL),
		coupangListing("닌텐도 스위치 OLED 화이트", 350000, "https://www.coupang.com/vp/2"),
		coupangListing("닌텐도 스위치 OLED 네온", 370000, "https://www.coupang.com/vp/3"),
	}))

	a := NewAnalyzer(st, nil, nil, 0)
	got, err := a.Analyze(context.Background(), models.Listing{
		Source:     models.SourceCoupang,
		Title:      "닌텐도 스위치 OLED",
		Price:      300000,
		ProductURL: subjectURL,
	})
	require.NoError(t, err)

	assert.False(t, got.Estimated)
	// Median of the two remaining listings; the subject itself is not evidence.
	assert.Equal(t, int64(360000), got.MarketPrice)
}
