package order

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// GenerateOrderNumber returns ORD-YYYYMMDD-NNNN for the given instant (UTC).
// The suffix is only a uniqueness aid; the orders.order_number unique index is
// what actually rejects a collision.
func GenerateOrderNumber(now time.Time) string {
	now = now.UTC()

	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		n = big.NewInt(now.UnixNano() % 10000)
	}

	return fmt.Sprintf("ORD-%s-%04d", now.Format("20060102"), n.Int64())
}
