package record

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

var (
	sampleCustomers = []string{
		"Acme Components", "Borneo Traders", "Cathay Logistics",
		"Delta Marine", "Eastfield Export", "Futaba Industrial",
	}
	sampleProducts = []string{
		"Gear housings", "Hydraulic pumps", "Cable assemblies",
		"Control panels", "Spare part kits", "Compressor units",
	}
)

// Sample generates n synthetic packing records for demo mode, used only when
// no remote store endpoint is configured.
func Sample(n int) []PackingRecord {
	if n <= 0 {
		return []PackingRecord{}
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	now := time.Now().UTC()
	keys := Keys()

	records := make([]PackingRecord, 0, n)
	for i := 0; i < n; i++ {
		counts := make(map[Key]int)
		for _, key := range keys {
			if rng.Intn(3) == 0 {
				counts[key] = rng.Intn(12) + 1
			}
		}

		records = append(records, PackingRecord{
			ID:            uuid.NewString(),
			Date:          now.AddDate(0, 0, -rng.Intn(30)).Format("2006-01-02"),
			Customer:      sampleCustomers[rng.Intn(len(sampleCustomers))],
			Mode:          SuggestedModes[rng.Intn(len(SuggestedModes))],
			Product:       sampleProducts[rng.Intn(len(sampleProducts))],
			SIQty:         rng.Intn(4) + 1,
			Qty:           rng.Intn(500) + 10,
			Remark:        fmt.Sprintf("demo lot %d", i+1),
			PackageCounts: counts,
		})
	}
	return records
}
