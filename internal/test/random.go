package test

import (
	"math/rand"
	"sync"
	"time"
)

const referenceAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// RandomReference returns a gateway-style identifier such as "order_Kq3r9ZxT1bLm0a".
func RandomReference(prefix string) string {
	buf := make([]byte, 14)
	rngMu.Lock()
	for i := range buf {
		buf[i] = referenceAlphabet[rng.Intn(len(referenceAlphabet))]
	}
	rngMu.Unlock()
	return prefix + "_" + string(buf)
}
