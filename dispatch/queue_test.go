package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestQueue(t *testing.T) {
	Convey("Given a queue", t, func() {
		q := New()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		Convey("Tasks should run in submission order", func() {
			var got []int
			for i := 0; i < 100; i++ {
				i := i
				So(q.Async(func() { got = append(got, i) }), ShouldBeTrue)
			}
			So(q.Flush(ctx), ShouldBeNil)
			So(got, ShouldHaveLength, 100)
			for i, v := range got {
				So(v, ShouldEqual, i)
			}
		})

		Convey("Tasks submitted from many goroutines should never overlap", func() {
			var (
				wg      sync.WaitGroup
				running int
				overlap bool
				count   int
			)
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for j := 0; j < 50; j++ {
						q.Async(func() {
							running++
							if running > 1 {
								overlap = true
							}
							count++
							running--
						})
					}
				}()
			}
			wg.Wait()
			So(q.Flush(ctx), ShouldBeNil)
			So(overlap, ShouldBeFalse)
			So(count, ShouldEqual, 400)
		})

		Convey("A task may enqueue more work without blocking", func() {
			var ran bool
			q.Async(func() {
				q.Async(func() { ran = true })
			})
			So(q.Flush(ctx), ShouldBeNil)
			So(q.Flush(ctx), ShouldBeNil)
			So(ran, ShouldBeTrue)
		})

		Convey("A timed out flush should not disturb later work", func() {
			release := make(chan struct{})
			q.Async(func() { <-release })

			short, stop := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer stop()
			So(q.Flush(short), ShouldResemble, context.DeadlineExceeded)

			var ran bool
			q.Async(func() { ran = true })
			close(release)
			So(q.Flush(ctx), ShouldBeNil)
			So(ran, ShouldBeTrue)
		})

		Convey("Close should drain pending tasks and reject new ones", func() {
			var ran bool
			q.Async(func() { ran = true })
			q.Close()
			q.Close()

			select {
			case <-q.Done():
			case <-ctx.Done():
			}
			So(ran, ShouldBeTrue)
			So(q.Async(func() {}), ShouldBeFalse)
			So(q.Flush(ctx), ShouldEqual, ErrClosed)
		})

		Reset(func() {
			q.Close()
		})
	})
}
