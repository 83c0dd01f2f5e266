package utils

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of booking dates
const DateLayout = "2006-01-02"

const (
	day        = 24 * time.Hour
	secondsDay = int64(day / time.Second)
)

var maxPrice = decimal.NewFromInt(math.MaxInt64)

// DiscountTier multiplies the base price by Rate once a rental reaches MinDays
type DiscountTier struct {
	MinDays int
	Rate    decimal.Decimal
}

// PriceQuote provides a breakdown of a computed total
type PriceQuote struct {
	DayCount   int
	BasePrice  int64
	Tier       *DiscountTier
	TotalPrice int64
}

// ParseDate converts a yyyy-mm-dd string into a UTC midnight time
func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, dateStr, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format, expected yyyy-mm-dd: %w", err)
	}
	return t, nil
}

// FormatDate renders a booking date as yyyy-mm-dd
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// IsCalendarDate reports whether t falls exactly on a UTC midnight
func IsCalendarDate(t time.Time) bool {
	return t.Equal(t.Truncate(day))
}

// DayCount returns ceil((end-start)/1 day). It counts from Unix seconds because
// time.Duration saturates after about 292 years.
func DayCount(startDate, endDate time.Time) (int, error) {
	if !endDate.After(startDate) {
		return 0, fmt.Errorf("end date must be after start date")
	}
	secs := endDate.Unix() - startDate.Unix()
	nanos := endDate.Nanosecond() - startDate.Nanosecond()
	if nanos < 0 {
		secs--
		nanos += int(time.Second)
	}
	days := secs / secondsDay
	if secs%secondsDay != 0 || nanos > 0 {
		days++
	}
	return int(days), nil
}

// SelectTier returns the tier with the highest MinDays not exceeding dayCount,
// or nil when no tier applies.
func SelectTier(dayCount int, tiers []DiscountTier) *DiscountTier {
	sorted := make([]DiscountTier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MinDays > sorted[j].MinDays
	})

	for i := range sorted {
		if sorted[i].MinDays <= dayCount {
			tier := sorted[i]
			return &tier
		}
	}
	return nil
}

// CalculateTotalPrice prices a rental from its per-day rate, duration and discount tiers
func CalculateTotalPrice(pricePerDay int64, startDate, endDate time.Time, tiers []DiscountTier) (int64, error) {
	quote, err := QuotePrice(pricePerDay, startDate, endDate, tiers)
	if err != nil {
		return 0, err
	}
	return quote.TotalPrice, nil
}

// QuotePrice is CalculateTotalPrice with the intermediate values kept
func QuotePrice(pricePerDay int64, startDate, endDate time.Time, tiers []DiscountTier) (PriceQuote, error) {
	if pricePerDay <= 0 {
		return PriceQuote{}, fmt.Errorf("price per day must be positive")
	}

	days, err := DayCount(startDate, endDate)
	if err != nil {
		return PriceQuote{}, err
	}

	base := decimal.NewFromInt(pricePerDay).Mul(decimal.NewFromInt(int64(days)))
	if base.GreaterThan(maxPrice) {
		return PriceQuote{}, fmt.Errorf("price of %d days at %d per day exceeds the supported range", days, pricePerDay)
	}
	quote := PriceQuote{DayCount: days, BasePrice: base.IntPart()}

	total := base
	if tier := SelectTier(days, tiers); tier != nil {
		quote.Tier = tier
		// Round(0) rounds half away from zero, which is half-up for positive prices
		total = base.Mul(tier.Rate).Round(0)
	}
	if !total.IsPositive() || total.GreaterThan(maxPrice) {
		return PriceQuote{}, fmt.Errorf("total price %s is outside the supported range", total.String())
	}
	quote.TotalPrice = total.IntPart()

	return quote, nil
}
