package snapshot

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/mtheuszin1/adscale-deploy/models"
)

// Fingerprint hashes, in corpus order, every field the intelligence engine reads.
// Two corpora with the same fingerprint produce the same snapshot.
func Fingerprint(corpus []models.Ad) string {
	d := xxhash.New()
	var buf [8]byte
	writeInt := func(n int64) {
		binary.LittleEndian.PutUint64(buf[:], uint64(n))
		_, _ = d.Write(buf[:])
	}
	writeString := func(s string) {
		writeInt(int64(len(s)))
		_, _ = d.WriteString(s)
	}

	writeInt(int64(len(corpus)))
	for _, ad := range corpus {
		writeString(string(ad.Platform))
		writeString(string(ad.Status))
		writeString(ad.TicketPrice)
		writeInt(int64(ad.AdCount))
		writeInt(int64(ad.Performance.DaysActive))
		writeInt(int64(math.Float64bits(ad.Performance.EstimatedCtr)))
	}
	return strconv.FormatUint(d.Sum64(), 16)
}
