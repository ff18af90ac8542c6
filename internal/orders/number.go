package orders

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"time"
)

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewNumber builds a globally unique, URL-safe order number: creation time
// prefix for scanability plus a random suffix for uniqueness. The orders
// table carries a unique constraint as backstop.
func NewNumber(now time.Time) string {
	var buf [5]byte
	_, _ = rand.Read(buf[:])
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102T150405"), b32.EncodeToString(buf[:]))
}
