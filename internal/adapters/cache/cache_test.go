package cache_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/pokerleague/internal/adapters/cache"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func TestInMemoryCache(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new InMemoryCache", t, func() {
		clock := &fakeClock{now: time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)}
		c := cache.NewInMemoryCache(
			cache.WithMaxSize(3),
			cache.WithTTL(time.Minute),
			cache.WithClock(clock.Now),
		)

		Convey("When nothing has been stored", func() {
			_, ok := c.Get(ctx, "ranking")

			Convey("Then it should miss", func() {
				So(ok, ShouldBeFalse)
				So(c.Size(), ShouldEqual, 0)
			})
		})

		Convey("When a value is stored", func() {
			c.Set(ctx, "ranking", []byte(`[1]`))

			Convey("Then it should be returned while fresh", func() {
				v, ok := c.Get(ctx, "ranking")
				So(ok, ShouldBeTrue)
				So(string(v), ShouldEqual, `[1]`)
				So(c.Size(), ShouldEqual, 1)
			})

			Convey("Then it should expire after the TTL", func() {
				clock.Advance(time.Minute)
				_, ok := c.Get(ctx, "ranking")
				So(ok, ShouldBeFalse)
				So(c.Size(), ShouldEqual, 0)
			})

			Convey("Then storing it again replaces the value and restarts the TTL", func() {
				clock.Advance(50 * time.Second)
				c.Set(ctx, "ranking", []byte(`[2]`))
				clock.Advance(50 * time.Second)

				v, ok := c.Get(ctx, "ranking")
				So(ok, ShouldBeTrue)
				So(string(v), ShouldEqual, `[2]`)
				So(c.Size(), ShouldEqual, 1)
			})

			Convey("Then Delete removes it", func() {
				c.Delete(ctx, "ranking")
				c.Delete(ctx, "missing")
				_, ok := c.Get(ctx, "ranking")
				So(ok, ShouldBeFalse)
				So(c.Size(), ShouldEqual, 0)
			})
		})

		Convey("When the cache is at capacity", func() {
			for i := 1; i <= 3; i++ {
				c.Set(ctx, fmt.Sprintf("k%d", i), []byte{byte(i)})
			}
			c.Set(ctx, "k4", []byte{4})

			Convey("Then the oldest entry is evicted", func() {
				So(c.Size(), ShouldEqual, 3)
				_, ok := c.Get(ctx, "k1")
				So(ok, ShouldBeFalse)
				for _, k := range []string{"k2", "k3", "k4"} {
					_, ok := c.Get(ctx, k)
					So(ok, ShouldBeTrue)
				}
			})
		})
	})

	Convey("Given a disabled cache", t, func() {
		c := cache.NewInMemoryCache(cache.WithMaxSize(0))
		c.Set(ctx, "k", []byte("v"))

		Convey("Then nothing is stored", func() {
			_, ok := c.Get(ctx, "k")
			So(ok, ShouldBeFalse)
			So(c.Size(), ShouldEqual, 0)
		})
	})

	Convey("Given a cache without TTL", t, func() {
		clock := &fakeClock{now: time.Now()}
		c := cache.NewInMemoryCache(cache.WithTTL(0), cache.WithClock(clock.Now))
		c.Set(ctx, "k", []byte("v"))
		clock.Advance(24 * time.Hour)

		Convey("Then entries never expire", func() {
			_, ok := c.Get(ctx, "k")
			So(ok, ShouldBeTrue)
		})
	})
}

func TestInMemoryCacheConcurrency(t *testing.T) {
	Convey("Given a cache with concurrent access", t, func() {
		c := cache.NewInMemoryCache(cache.WithMaxSize(1000))
		const numGoroutines = 10
		const keysPerGoroutine = 100

		Convey("When multiple goroutines read and write", func() {
			var wg sync.WaitGroup
			for i := 0; i < numGoroutines; i++ {
				wg.Add(1)
				go func(goroutineID int) {
					defer wg.Done()
					for j := 0; j < keysPerGoroutine; j++ {
						key := fmt.Sprintf("key-%d-%d", goroutineID, j)
						c.Set(context.Background(), key, []byte(key))
						c.Get(context.Background(), key)
					}
				}(i)
			}
			wg.Wait()

			Convey("Then every entry should be stored", func() {
				So(c.Size(), ShouldEqual, int64(numGoroutines*keysPerGoroutine))
			})
		})
	})
}
