package shared

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const idAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// EntityID mints a business identifier of the form PREFIX + unix millis
// + 4 random characters, e.g. "OBJ1756500000000K3XP". Identifiers are
// stored alongside the record id and used in every external reference.
func EntityID(prefix string) string {
	suffix := make([]byte, 4)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(idAlphabet))))
		if err != nil {
			suffix[i] = idAlphabet[0]
			continue
		}
		suffix[i] = idAlphabet[n.Int64()]
	}
	return fmt.Sprintf("%s%d%s", prefix, time.Now().UnixMilli(), suffix)
}
