package lib

import (
	"fmt"
	"math/rand/v2"
	"time"
)

const orderNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateOrderNumber generates a human-facing order number in the format PREFIX-YYMMDD-XXXX,
// where XXXX avoids the easily confused characters 0/O and 1/I.
func GenerateOrderNumber(prefix string, now time.Time) string {
	const length = 4
	randomPart := make([]byte, length)
	for i := range randomPart {
		randomPart[i] = orderNumberChars[rand.IntN(len(orderNumberChars))]
	}

	if prefix == "" {
		prefix = "TS"
	}
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("060102"), string(randomPart))
}
