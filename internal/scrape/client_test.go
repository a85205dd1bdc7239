package scrape

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRequestSpacing(t *testing.T) {
	Convey("Given a client with a short request delay", t, func() {
		client := &Client{delay: 40 * time.Millisecond}

		Convey("The first request goes out immediately", func() {
			start := time.Now()
			So(client.wait(context.Background()), ShouldBeNil)
			So(time.Since(start), ShouldBeLessThan, client.delay)
		})

		Convey("A second request is held back for the full delay", func() {
			start := time.Now()
			So(client.wait(context.Background()), ShouldBeNil)
			So(client.wait(context.Background()), ShouldBeNil)
			So(time.Since(start), ShouldBeGreaterThanOrEqualTo, client.delay)
		})

		Convey("Cancelling the context releases a waiting request", func() {
			So(client.wait(context.Background()), ShouldBeNil)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			So(client.wait(ctx), ShouldEqual, context.Canceled)
		})
	})
}
