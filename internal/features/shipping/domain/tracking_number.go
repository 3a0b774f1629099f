package domain

import (
	"math/rand"
	"strconv"
	"time"
)

const (
	trackingPrefix   = "SHIP"
	trackingAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	trackingSuffix   = 4
)

// NewTrackingNumber returns "SHIP" + unix milliseconds + 4 random upper-case
// base-36 characters. Numbers are not guaranteed unique; the store's unique
// index is the arbiter.
func NewTrackingNumber(now time.Time) string {
	b := make([]byte, 0, len(trackingPrefix)+13+trackingSuffix)
	b = append(b, trackingPrefix...)
	b = strconv.AppendInt(b, now.UnixMilli(), 10)
	for i := 0; i < trackingSuffix; i++ {
		b = append(b, trackingAlphabet[rand.Intn(len(trackingAlphabet))])
	}
	return string(b)
}
