// Package orderid produces the self-describing merchant order ids used across
// both payment flows. The kind prefix is load-bearing: reconciliation derives
// the target table from it without a lookup.
package orderid

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"payment-service/models"
)

const randomLen = 8

// Generate builds an order id of the form PREFIX-<unix ms>-<8 random chars>.
// The random component is uppercase hex drawn from a v4 UUID, enough to make
// collisions within the 24h expiry window negligible. No external calls.
func Generate(kind models.PaymentKind) string {
	prefix := "SUB"
	if kind == models.KindEnvelope {
		prefix = "ENV"
	}
	random := strings.ToUpper(uuid.NewString()[:randomLen])
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), random)
}
