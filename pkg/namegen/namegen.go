// Package namegen generates human-friendly "adjective-noun" names for
// stored tokens, in the style of Docker container names.
package namegen

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

var (
	defaultRand = rand.New(rand.NewSource(time.Now().UnixNano()))
	mu          sync.Mutex
)

// Generate returns a random name in the format "adjective-noun".
// If r is nil, a package-level seeded source is used.
func Generate(r *rand.Rand) string {
	if r == nil {
		mu.Lock()
		defer mu.Unlock()
		r = defaultRand
	}
	return fmt.Sprintf("%s-%s", Adjectives[r.Intn(len(Adjectives))], Nouns[r.Intn(len(Nouns))])
}
