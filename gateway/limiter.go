/******************************************************************************
 * Copyright (c) 2025-2026 LeadLovers                                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package gateway

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// userLimiters hands out one token-bucket limiter per user id. The bucket
// refills at requests-per-window and allows the full window as a burst.
type userLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newUserLimiters(requests int, window time.Duration) *userLimiters {
	if requests < 1 {
		requests = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &userLimiters{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Every(window / time.Duration(requests)),
		burst:    requests,
	}
}

// allow reports whether the user may send another prompt now.
func (u *userLimiters) allow(userID string) bool {
	u.mu.Lock()
	limiter, ok := u.limiters[userID]
	if !ok {
		limiter = rate.NewLimiter(u.limit, u.burst)
		u.limiters[userID] = limiter
	}
	u.mu.Unlock()

	return limiter.Allow()
}
