package engine

import (
	"fmt"
	"math/rand"
	"time"
)

// GenerateLoadNumber produces a human-readable load number in the form
// ORG-YYYYMMDD-NNN. The suffix is random; the loads collection enforces
// uniqueness, and callers retry on a collision.
func GenerateLoadNumber(date time.Time, rnd *rand.Rand) string {
	suffix := rnd.Intn(900) + 100
	return fmt.Sprintf("ORG-%s-%d", date.Format("20060102"), suffix)
}
