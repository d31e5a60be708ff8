// Copyright 2021 The eyeballs Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package eyeballs_test

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gogama/eyeballs"
	"github.com/gogama/eyeballs/race"
	"github.com/gogama/eyeballs/stagger"
)

func ExampleDialer_DialContext() {
	d := &eyeballs.Dialer{
		Policy: stagger.NewPolicy(stagger.Fixed(300*time.Millisecond), stagger.Open),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := d.DialContext(ctx, "tcp", "example.com:80")
	if err != nil {
		fmt.Println("dial failed:", err)
		return
	}
	defer conn.Close()
	fmt.Println("connected to", conn.RemoteAddr())
}

func ExampleDialer_httpTransport() {
	d := &eyeballs.Dialer{}
	client := &http.Client{
		Transport: &http.Transport{DialContext: d.DialContext},
	}
	_, _ = client.Get("http://example.com/")
}

func ExampleHandlerGroup() {
	handlers := &eyeballs.HandlerGroup{}
	handlers.PushBack(eyeballs.AfterAttempt, eyeballs.HandlerFunc(func(_ eyeballs.Event, e *race.Execution) {
		if e.Err != nil && e.Err != eyeballs.Redundant {
			fmt.Printf("attempt %d to %v failed: %v\n", e.Attempt, e.Addr, e.Err)
		}
	}))
	d := &eyeballs.Dialer{Handlers: handlers}
	_, _ = d.Dial("tcp", "example.com:443")
}
