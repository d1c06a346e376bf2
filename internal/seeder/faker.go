package seeder

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

const passwordPrefix = "pbkdf2_sha256$260000$"

// DataGenerator owns the single random source of a generation run. Every
// draw goes through it so that the same seed replays the same sequence.
type DataGenerator struct {
	rand *rand.Rand
}

func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rand: rand.New(rand.NewSource(seed)),
	}
}

// Between returns a uniform integer in [lo, hi], both ends inclusive.
func (g *DataGenerator) Between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + g.rand.Intn(hi-lo+1)
}

// Chance reports true with probability p.
func (g *DataGenerator) Chance(p float64) bool {
	return g.rand.Float64() < p
}

// Offset draws a day/hour/minute offset with days in [minDays, maxDays].
func (g *DataGenerator) Offset(minDays, maxDays int) time.Duration {
	days := g.Between(minDays, maxDays)
	hours := g.Between(0, 23)
	minutes := g.Between(0, 59)
	return time.Duration(days)*24*time.Hour + time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute
}

func (g *DataGenerator) Days(lo, hi int) time.Duration {
	return time.Duration(g.Between(lo, hi)) * 24 * time.Hour
}

func (g *DataGenerator) Hours(lo, hi int) time.Duration {
	return time.Duration(g.Between(lo, hi)) * time.Hour
}

func username(i int) string { return fmt.Sprintf("user%d", i) }

func email(i int) string { return fmt.Sprintf("user%d@example.com", i) }

// passwordPlaceholder looks like a Django password hash but is only an md5
// of the username; seeded accounts cannot be logged into.
func passwordPlaceholder(name string) string {
	sum := md5.Sum([]byte(name))
	return passwordPrefix + hex.EncodeToString(sum[:])
}

func postBody(i int) string {
	return strings.Repeat(fmt.Sprintf("This is the seeded body for post %d. ", i), 1+i%5)
}

func commentBody(i, postID int) string {
	return fmt.Sprintf("Seed comment %d on post %d.", i, postID)
}
