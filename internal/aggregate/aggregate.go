// Package aggregate derives dashboard statistics from a packing record list.
// Compute is a pure function: it takes a snapshot of the records, mutates
// nothing, performs no I/O, and is total over any input including the empty
// list.
package aggregate

import (
	"sort"
	"time"

	"github.com/eugenenazirov/packing-tracker/internal/record"
)

// UnknownDateBucket collects timeline entries whose date never parsed as
// ISO. It always sorts after every dated bucket.
const UnknownDateBucket = "unknown"

// topCustomerLimit caps the customer chart series.
const topCustomerLimit = 5

// Stats holds the global headline numbers.
type Stats struct {
	TotalItems    int    `json:"totalItems"`
	TotalSI       int    `json:"totalSI"`
	TotalPackages int    `json:"totalPackages"`
	TopCustomer   string `json:"topCustomer"`
	TopMode       string `json:"topMode"`
}

// TimelinePoint accumulates quantity and package usage for one distinct
// date string. Bucketing is by string equality, so two textual forms of the
// same calendar date stay separate.
type TimelinePoint struct {
	Date     string `json:"date"`
	Qty      int    `json:"qty"`
	Packages int    `json:"packages"`
}

// PackageTotal is the summed usage of one catalog key.
type PackageTotal struct {
	Key   record.Key `json:"key"`
	Total int        `json:"total"`
}

// CustomerTotal is the summed quantity shipped for one customer.
type CustomerTotal struct {
	Customer string `json:"customer"`
	Qty      int    `json:"qty"`
}

// RatioStat reports raw package usage for a catalog group alongside its
// ratio-adjusted capacity equivalent.
type RatioStat struct {
	Used        int     `json:"used"`
	MaxCapacity float64 `json:"maxCapacity"`
}

// Result is the full aggregate consumed by the presentation layer.
type Result struct {
	Stats         Stats                `json:"stats"`
	Timeline      []TimelinePoint      `json:"timeline"`
	PackageTotals []PackageTotal       `json:"packageTotals"`
	TopCustomers  []CustomerTotal      `json:"topCustomers"`
	ModeCounts    map[string]int       `json:"modeCounts"`
	GroupStats    map[string]int       `json:"groupStats"`
	RatioStats    map[string]RatioStat `json:"ratioStats"`
}

// Compute derives the full aggregate from a record list.
func Compute(records []record.PackingRecord) Result {
	res := Result{
		Timeline:      []TimelinePoint{},
		PackageTotals: []PackageTotal{},
		TopCustomers:  []CustomerTotal{},
		ModeCounts:    make(map[string]int),
		GroupStats:    make(map[string]int),
		RatioStats:    make(map[string]RatioStat),
	}

	keys := record.Keys()
	groups := record.Groups()

	customerQty := make(map[string]int)
	var customerOrder []string
	modeCounts := make(map[string]int)
	var modeOrder []string
	timeline := make(map[string]*TimelinePoint)
	var timelineOrder []string
	keyTotals := make(map[record.Key]int, len(keys))

	for _, r := range records {
		res.Stats.TotalItems += r.Qty
		res.Stats.TotalSI += r.SIQty
		res.Stats.TotalPackages += r.TotalPackages()

		if _, seen := customerQty[r.Customer]; !seen {
			customerOrder = append(customerOrder, r.Customer)
		}
		customerQty[r.Customer] += r.Qty

		if _, seen := modeCounts[r.Mode]; !seen {
			modeOrder = append(modeOrder, r.Mode)
		}
		modeCounts[r.Mode]++

		bucket := timelineBucket(r.Date)
		point, seen := timeline[bucket]
		if !seen {
			point = &TimelinePoint{Date: bucket}
			timeline[bucket] = point
			timelineOrder = append(timelineOrder, bucket)
		}
		point.Qty += r.Qty
		point.Packages += r.TotalPackages()

		for _, key := range keys {
			keyTotals[key] += r.Count(key)
		}
	}

	res.Stats.TopCustomer = topBySum(customerOrder, customerQty)
	res.Stats.TopMode = topBySum(modeOrder, modeCounts)
	res.ModeCounts = modeCounts

	sortTimeline(timelineOrder)
	for _, bucket := range timelineOrder {
		res.Timeline = append(res.Timeline, *timeline[bucket])
	}

	for _, key := range keys {
		if total := keyTotals[key]; total > 0 {
			res.PackageTotals = append(res.PackageTotals, PackageTotal{Key: key, Total: total})
		}
	}
	sort.SliceStable(res.PackageTotals, func(i, j int) bool {
		return res.PackageTotals[i].Total > res.PackageTotals[j].Total
	})

	sort.SliceStable(customerOrder, func(i, j int) bool {
		return customerQty[customerOrder[i]] > customerQty[customerOrder[j]]
	})
	for _, customer := range customerOrder {
		if len(res.TopCustomers) == topCustomerLimit {
			break
		}
		res.TopCustomers = append(res.TopCustomers, CustomerTotal{
			Customer: customer,
			Qty:      customerQty[customer],
		})
	}

	for _, group := range groups {
		used := 0
		capacity := 0.0
		for _, key := range record.KeysInGroup(group) {
			used += keyTotals[key]
			capacity += float64(keyTotals[key]) / record.Ratio(key)
		}
		res.GroupStats[group] = used
		res.RatioStats[group] = RatioStat{Used: used, MaxCapacity: capacity}
	}

	return res
}

// topBySum returns the first-seen entry with the maximal summed value, or
// "N/A" for an empty input. The stable sort keeps insertion order on ties.
func topBySum(order []string, sums map[string]int) string {
	if len(order) == 0 {
		return "N/A"
	}
	ranked := make([]string, len(order))
	copy(ranked, order)
	sort.SliceStable(ranked, func(i, j int) bool {
		return sums[ranked[i]] > sums[ranked[j]]
	})
	return ranked[0]
}

func timelineBucket(date string) string {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return UnknownDateBucket
	}
	return date
}

func sortTimeline(buckets []string) {
	sort.SliceStable(buckets, func(i, j int) bool {
		// The unknown bucket sorts after every real date; ISO dates order
		// lexicographically the same as chronologically.
		if buckets[i] == UnknownDateBucket {
			return false
		}
		if buckets[j] == UnknownDateBucket {
			return true
		}
		return buckets[i] < buckets[j]
	})
}
