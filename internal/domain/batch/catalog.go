package batch

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultMaturationDays is the horizon after which a batch is considered fully
// grown for display purposes. Overridable through configuration.
const DefaultMaturationDays = 14

// StatusFilter narrows the catalog by growth state.
type StatusFilter string

const (
	FilterAll       StatusFilter = "all"
	FilterAvailable StatusFilter = "available"
	FilterGrowing   StatusFilter = "growing"
	FilterReady     StatusFilter = "ready"
)

// SortKey orders catalog entries. Unknown keys leave the input order untouched.
type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortOldest    SortKey = "oldest"
	SortStockHigh SortKey = "stock-high"
	SortStockLow  SortKey = "stock-low"
)

// DisplayEntry is what a customer sees for one batch. A batch still maturing is
// visible but not orderable; readiness alone gates orderability.
type DisplayEntry struct {
	Batch
	AgeDays         int
	Orderable       bool
	ProgressPercent float64
	DaysToReady     int
}

// VisibleCatalog derives the customer-facing catalog: every batch with stock,
// regardless of readiness. Maturing batches carry progress toward the
// maturation horizon.
func VisibleCatalog(batches []*Batch, now time.Time, maturationDays int) []DisplayEntry {
	if maturationDays <= 0 {
		maturationDays = DefaultMaturationDays
	}
	entries := make([]DisplayEntry, 0, len(batches))
	for _, b := range batches {
		if b == nil || b.Stock <= 0 {
			continue
		}
		entries = append(entries, toEntry(b, now, maturationDays))
	}
	return entries
}

func toEntry(b *Batch, now time.Time, maturationDays int) DisplayEntry {
	age := b.AgeDays(now)
	e := DisplayEntry{
		Batch:   *b,
		AgeDays: age,
	}
	if b.ReadyForSale {
		e.Orderable = true
		e.ProgressPercent = 100
		return e
	}
	clamped := age
	if clamped > maturationDays {
		clamped = maturationDays
	}
	if clamped < 0 {
		clamped = 0
	}
	e.ProgressPercent = float64(clamped) / float64(maturationDays) * 100
	if remain := maturationDays - age; remain > 0 {
		e.DaysToReady = remain
	}
	return e
}

// FilterAndSort applies search, status filtering and sorting before deriving
// display entries. The search term matches case-insensitively against the
// stringified id, plant date, or quantity. Sorting is stable; ties keep input
// order.
func FilterAndSort(batches []*Batch, searchTerm string, status StatusFilter, key SortKey, now time.Time, maturationDays int) []DisplayEntry {
	if maturationDays <= 0 {
		maturationDays = DefaultMaturationDays
	}
	term := strings.ToLower(strings.TrimSpace(searchTerm))

	filtered := make([]*Batch, 0, len(batches))
	for _, b := range batches {
		if b == nil {
			continue
		}
		if !matchesSearch(b, term) {
			continue
		}
		if !matchesStatus(b, status, now, maturationDays) {
			continue
		}
		filtered = append(filtered, b)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		a, b := filtered[i], filtered[j]
		switch key {
		case SortNewest:
			return a.PlantDate.After(b.PlantDate)
		case SortOldest:
			return a.PlantDate.Before(b.PlantDate)
		case SortStockHigh:
			return a.Stock > b.Stock
		case SortStockLow:
			return a.Stock < b.Stock
		default:
			return false
		}
	})

	return VisibleCatalog(filtered, now, maturationDays)
}

func matchesSearch(b *Batch, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strconv.FormatInt(b.ID, 10), term) ||
		strings.Contains(strings.ToLower(b.PlantDate.Format("2006-01-02")), term) ||
		strings.Contains(strconv.Itoa(b.Quantity), term)
}

func matchesStatus(b *Batch, status StatusFilter, now time.Time, maturationDays int) bool {
	switch status {
	case FilterAvailable:
		return b.Stock > 0
	case FilterGrowing:
		return b.Stock > 0 && !b.ReadyForSale && b.AgeDays(now) < maturationDays
	case FilterReady:
		return b.ReadyForSale && b.Stock > 0
	default:
		return true
	}
}
