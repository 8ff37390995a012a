package shortlist

import (
	"crypto/rand"
	mrand "math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/jaevor/go-nanoid"
	"go.uber.org/zap"
)

// DefaultSlugLength yields 96 bits over nanoid's 64-symbol alphabet.
const DefaultSlugLength = 16

// SlugGenerator produces a new random slug on every call.
type SlugGenerator func() string

// NewSlugGenerator returns a nanoid generator backed by crypto/rand. If the
// secure source is not usable it falls back to a timestamp plus
// pseudo-random suffix, which collides far more easily.
func NewSlugGenerator(length int, logger *zap.Logger) SlugGenerator {
	if length <= 0 {
		length = DefaultSlugLength
	}

	if secureSourceAvailable() {
		gen, err := nanoid.Standard(length)
		if err == nil {
			return gen
		}

		logger.Warn("nanoid generator rejected slug length", zap.Int("length", length), zap.Error(err))
	}

	logger.Warn("secure random source unavailable, using timestamp slugs")

	return FallbackSlugGenerator(time.Now)
}

// FallbackSlugGenerator builds slugs from the current time in base36 followed
// by eight pseudo-random base36 characters.
func FallbackSlugGenerator(now func() time.Time) SlugGenerator {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

	return func() string {
		var b strings.Builder

		b.WriteString(strconv.FormatInt(now().UnixMilli(), 36))

		for range 8 {
			b.WriteByte(alphabet[mrand.IntN(len(alphabet))])
		}

		return b.String()
	}
}

func secureSourceAvailable() bool {
	var buf [8]byte

	_, err := rand.Read(buf[:])

	return err == nil
}
