package runtime

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// NewOrderID returns an id of the form ORC-<year>-<nnnn>, nnnn in 1000..9999.
func NewOrderID(at time.Time) string {
	return fmt.Sprintf("ORC-%d-%04d", at.Year(), 1000+rand.IntN(9000))
}
