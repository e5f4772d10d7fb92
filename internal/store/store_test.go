package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"aura_oracle/internal/clock"
	"aura_oracle/internal/db/dbtest"
	"aura_oracle/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var t0 = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func newStore(t *testing.T, opts ...Option) (*Store, *gorm.DB, *clock.Mock) {
	t.Helper()
	gdb := dbtest.Open(t)
	clk := clock.NewMock(t0)
	log, _ := test.NewNullLogger()
	s := New(gdb, append([]Option{WithClock(clk), WithLogger(log)}, opts...)...)
	return s, gdb, clk
}

func countEntries(t *testing.T, gdb *gorm.DB, userID string) int64 {
	var n int64
	require.NoError(t, gdb.Model(&domain.DailyEntry{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}

func TestTodayEntryMissReturnsNil(t *testing.T) {
	s, gdb, _ := newStore(t)
	uid := dbtest.SeedUser(t, gdb, "a@example.com")
	e, err := s.TodayEntry(context.Background(), uid, "2024-05-01")
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestUpsertEntryOverwritesInPlace(t *testing.T) {
	s, gdb, clk := newStore(t)
	ctx := context.Background()
	uid := dbtest.SeedUser(t, gdb, "a@example.com")

	first, err := s.UpsertEntry(ctx, domain.DailyEntry{UserID: uid, EntryDate: "2024-05-01", AuraColor: "red", Emotion: "fiery", Keywords: "a, b", Affirmation: "I am bold."})
	require.NoError(t, err)

	clk.Advance(3 * time.Hour)
	second, err := s.UpsertEntry(ctx, domain.DailyEntry{UserID: uid, EntryDate: "2024-05-01", AuraColor: "blue", Emotion: "", Keywords: "c", Affirmation: "I am calm."})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "blue", second.AuraColor)
	assert.Equal(t, "", second.Emotion) // no stale field leakage
	assert.Equal(t, "c", second.Keywords)
	assert.True(t, second.CreatedAt.After(first.CreatedAt))
	assert.Equal(t, int64(1), countEntries(t, gdb, uid))

	got, err := s.TodayEntry(ctx, uid, "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
	assert.Equal(t, "blue", got.AuraColor)
}

func TestUpsertEntryNewDayNewRow(t *testing.T) {
	s, gdb, _ := newStore(t)
	ctx := context.Background()
	uid := dbtest.SeedUser(t, gdb, "a@example.com")

	a, err := s.UpsertEntry(ctx, domain.DailyEntry{UserID: uid, EntryDate: "2024-05-01", AuraColor: "red"})
	require.NoError(t, err)
	b, err := s.UpsertEntry(ctx, domain.DailyEntry{UserID: uid, EntryDate: "2024-05-02", AuraColor: "gold"})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	hist, err := s.EntryHistory(ctx, uid, 14)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, "2024-05-02", hist[0].EntryDate)
	assert.Equal(t, "2024-05-01", hist[1].EntryDate)
}

func TestEntryHistoryLimitAndIsolation(t *testing.T) {
	s, gdb, _ := newStore(t)
	ctx := context.Background()
	u1 := dbtest.SeedUser(t, gdb, "a@example.com")
	u2 := dbtest.SeedUser(t, gdb, "b@example.com")
	for d := 1; d <= 20; d++ {
		_, err := s.UpsertEntry(ctx, domain.DailyEntry{UserID: u1, EntryDate: fmt.Sprintf("2024-05-%02d", d), AuraColor: "c"})
		require.NoError(t, err)
	}
	_, err := s.UpsertEntry(ctx, domain.DailyEntry{UserID: u2, EntryDate: "2024-05-01", AuraColor: "c"})
	require.NoError(t, err)

	hist, err := s.EntryHistory(ctx, u1, 14)
	require.NoError(t, err)
	require.Len(t, hist, 14)
	assert.Equal(t, "2024-05-20", hist[0].EntryDate)
	assert.Equal(t, "2024-05-07", hist[13].EntryDate)

	hist, err = s.EntryHistory(ctx, u2, 14)
	require.NoError(t, err)
	assert.Len(t, hist, 1)
}

func TestInsertEntryDuplicate(t *testing.T) {
	s, gdb, _ := newStore(t)
	ctx := context.Background()
	uid := dbtest.SeedUser(t, gdb, "a@example.com")

	_, err := s.InsertEntry(ctx, domain.DailyEntry{UserID: uid, EntryDate: "2024-05-01"})
	require.NoError(t, err)
	_, err = s.InsertEntry(ctx, domain.DailyEntry{UserID: uid, EntryDate: "2024-05-01"})
	assert.ErrorIs(t, err, domain.ErrDuplicateArtifact)
	assert.NotErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestUpsertDrawKeyedByKind(t *testing.T) {
	s, gdb, clk := newStore(t)
	ctx := context.Background()
	uid := dbtest.SeedUser(t, gdb, "a@example.com")
	day := clock.Today(clk)

	tarot, err := s.UpsertDraw(ctx, domain.DailyDraw{UserID: uid, Kind: domain.KindTarot, DrawDate: day, Name: "The Star", Keywords: "hope", Meaning: "m1", Affirmation: "I am hopeful."})
	require.NoError(t, err)
	rune1, err := s.UpsertDraw(ctx, domain.DailyDraw{UserID: uid, Kind: domain.KindRune, DrawDate: day, Name: "Isa"})
	require.NoError(t, err)
	assert.NotEqual(t, tarot.ID, rune1.ID)

	again, err := s.UpsertDraw(ctx, domain.DailyDraw{UserID: uid, Kind: domain.KindTarot, DrawDate: day, Name: "The Sun"})
	require.NoError(t, err)
	assert.Equal(t, tarot.ID, again.ID)
	assert.Equal(t, "The Sun", again.Name)
	assert.Empty(t, again.Meaning)

	var n int64
	require.NoError(t, gdb.Model(&domain.DailyDraw{}).Where("user_id = ?", uid).Count(&n).Error)
	assert.Equal(t, int64(2), n)

	got, err := s.TodayDraw(ctx, uid, domain.KindRune, day)
	require.NoError(t, err)
	assert.Equal(t, "Isa", got.Name)

	none, err := s.TodayDraw(ctx, uid, domain.KindRune, "2024-04-30")
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = s.InsertDraw(ctx, domain.DailyDraw{UserID: uid, Kind: domain.KindRune, DrawDate: day, Name: "Fehu"})
	assert.ErrorIs(t, err, domain.ErrDuplicateArtifact)

	hist, err := s.DrawHistory(ctx, uid, domain.KindTarot, 10)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, "The Sun", hist[0].Name)
}

func TestConcurrentUpsertsLeaveOneRow(t *testing.T) {
	s, gdb, _ := newStore(t)
	ctx := context.Background()
	uid := dbtest.SeedUser(t, gdb, "a@example.com")

	var wg sync.WaitGroup
	ids := make([]string, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d, err := s.UpsertDraw(ctx, domain.DailyDraw{UserID: uid, Kind: domain.KindTarot, DrawDate: "2024-05-01", Name: fmt.Sprintf("card-%d", i)})
			if assert.NoError(t, err) {
				ids[i] = d.ID
			}
		}(i)
	}
	wg.Wait()

	var rows []domain.DailyDraw
	require.NoError(t, gdb.Where("user_id = ?", uid).Find(&rows).Error)
	require.Len(t, rows, 1)
	for _, id := range ids {
		assert.Equal(t, rows[0].ID, id)
	}
}

func TestHistoryCacheInvalidatedOnUpsert(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	s, gdb, _ := newStore(t, WithRedis(rdb, time.Minute))
	ctx := context.Background()
	uid := dbtest.SeedUser(t, gdb, "a@example.com")

	_, err := s.UpsertDraw(ctx, domain.DailyDraw{UserID: uid, Kind: domain.KindRune, DrawDate: "2024-05-01", Name: "Isa"})
	require.NoError(t, err)
	hist, err := s.DrawHistory(ctx, uid, domain.KindRune, 10)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.True(t, mr.Exists(historyKey(domain.KindRune, uid, 10)))

	_, err = s.UpsertDraw(ctx, domain.DailyDraw{UserID: uid, Kind: domain.KindRune, DrawDate: "2024-05-01", Name: "Jera"})
	require.NoError(t, err)
	assert.False(t, mr.Exists(historyKey(domain.KindRune, uid, 10)))

	hist, err = s.DrawHistory(ctx, uid, domain.KindRune, 10)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, "Jera", hist[0].Name)
}

func TestStoreFailureIsTyped(t *testing.T) {
	s, gdb, _ := newStore(t)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = s.UpsertEntry(context.Background(), domain.DailyEntry{UserID: "u", EntryDate: "2024-05-01"})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	_, err = s.TodayDraw(context.Background(), "u", domain.KindTarot, "2024-05-01")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestCreateEntryIfAbsentKeepsFirstRow(t *testing.T) {
	s, gdb, clk := newStore(t)
	ctx := context.Background()
	uid := dbtest.SeedUser(t, gdb, "a@example.com")

	first, created, err := s.CreateEntryIfAbsent(ctx, domain.DailyEntry{UserID: uid, EntryDate: "2024-05-01", AuraColor: "crimson"})
	require.NoError(t, err)
	assert.True(t, created)

	clk.Advance(time.Hour)
	second, created, err := s.CreateEntryIfAbsent(ctx, domain.DailyEntry{UserID: uid, EntryDate: "2024-05-01", AuraColor: "teal"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "crimson", second.AuraColor)
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))
	assert.Equal(t, int64(1), countEntries(t, gdb, uid))

	// an explicit overwrite still replaces the row
	third, err := s.UpsertEntry(ctx, domain.DailyEntry{UserID: uid, EntryDate: "2024-05-01", AuraColor: "teal"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, third.ID)
	assert.Equal(t, "teal", third.AuraColor)
}

func TestConcurrentCreateDrawIfAbsentAgreeOnOneRow(t *testing.T) {
	s, gdb, _ := newStore(t)
	ctx := context.Background()
	uid := dbtest.SeedUser(t, gdb, "a@example.com")

	var wg sync.WaitGroup
	names := make([]string, 8)
	created := make([]bool, 8)
	for i := range names {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d, ok, err := s.CreateDrawIfAbsent(ctx, domain.DailyDraw{UserID: uid, Kind: domain.KindRune, DrawDate: "2024-05-01", Name: fmt.Sprintf("rune-%d", i)})
			if assert.NoError(t, err) {
				names[i], created[i] = d.Name, ok
			}
		}(i)
	}
	wg.Wait()

	var rows []domain.DailyDraw
	require.NoError(t, gdb.Where("user_id = ?", uid).Find(&rows).Error)
	require.Len(t, rows, 1)
	winners := 0
	for i, name := range names {
		assert.Equal(t, rows[0].Name, name)
		if created[i] {
			winners++
		}
	}
	assert.Equal(t, 1, winners)
}
