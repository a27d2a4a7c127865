package analysis

import (
	"sort"

	"market-buzz/src/models"
)

// DayBucket groups the items that fall on one calendar day.
type DayBucket[T any] struct {
	Day   models.MCalendarDay
	Items []T
}

// -----------------------------------------------------------------------------

// BucketByDay groups items by the UTC day of their unix timestamp. Buckets
// are ascending by day; items keep their input order inside a bucket.
func BucketByDay[T any](items []T, timestamp func(T) int64) []DayBucket[T] {
	return BucketBy(items, func(item T) models.MCalendarDay {
		return models.DayOfUnix(timestamp(item))
	})
}

// -----------------------------------------------------------------------------

// BucketBy groups items by the day dayOf assigns them, with the same ordering
// as BucketByDay.
func BucketBy[T any](items []T, dayOf func(T) models.MCalendarDay) []DayBucket[T] {
	if len(items) == 0 {
		return []DayBucket[T]{}
	}

	index := make(map[models.MCalendarDay]int)
	var buckets []DayBucket[T]

	for _, item := range items {
		day := dayOf(item)
		i, ok := index[day]
		if !ok {
			i = len(buckets)
			index[day] = i
			buckets = append(buckets, DayBucket[T]{Day: day})
		}
		buckets[i].Items = append(buckets[i].Items, item)
	}

	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Day.Before(buckets[j].Day)
	})

	return buckets
}
