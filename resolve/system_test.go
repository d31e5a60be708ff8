// Copyright 2021 The eyeballs Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package resolve

import (
	"context"
	"net/netip"
	"testing"

	"github.com/gogama/eyeballs/candidate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemResolver(t *testing.T) {
	t.Run("literal", func(t *testing.T) {
		src, err := System.Resolve(context.Background(), "tcp", "::1", 80)
		require.NoError(t, err)
		addrs, err := candidate.Collect(context.Background(), src)
		require.NoError(t, err)
		assert.Equal(t, []netip.AddrPort{netip.MustParseAddrPort("[::1]:80")}, addrs)
	})
	t.Run("localhost", func(t *testing.T) {
		r := &SystemResolver{ResolutionDelay: -1}
		src, err := r.Resolve(context.Background(), "tcp4", "localhost", 8080)
		require.NoError(t, err)
		addrs, err := candidate.Collect(context.Background(), src)
		require.NoError(t, err)
		require.NotEmpty(t, addrs)
		for _, a := range addrs {
			assert.True(t, a.Addr().Is4(), "address %s", a)
			assert.True(t, a.Addr().IsLoopback(), "address %s", a)
			assert.Equal(t, uint16(8080), a.Port())
		}
	})
	t.Run("invalid name", func(t *testing.T) {
		src, err := System.Resolve(context.Background(), "tcp", "invalid name.", 80)
		require.NoError(t, err)
		addrs, err := candidate.Collect(context.Background(), src)
		assert.Empty(t, addrs)
		assert.Error(t, err)
	})
}
