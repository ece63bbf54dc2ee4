// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

/*
Package cache provides a generic, thread-safe LRU cache with TTL expiry.

The recommendation engine keeps finished responses here, keyed by model
version, user and top_n, so repeated requests against the same model skip
scoring. Publishing a new model clears the cache.

	c := cache.NewLRU[string, *recommend.Response](10000, 5*time.Minute)
	c.Add("rec:3:42:5", resp)
	if resp, ok := c.Get("rec:3:42:5"); ok {
	    // serve cached copy
	}

Expired entries are dropped lazily on Get; CleanupExpired sweeps them all.
*/
package cache
