package services

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	DefaultPricePerPage int64 = 9000
	DefaultMaxPages           = 100
	PagesPerSlot              = 5
	HoursPerSlot              = 24
	Currency                  = "FCFA"
)

// Quote is the price and delivery estimate for a page count.
type Quote struct {
	Pages         int    `json:"pages"`
	PricePerPage  int64  `json:"price_per_page"`
	Price         int64  `json:"price"`
	DeliveryHours int    `json:"delivery_hours"`
	DeliveryTime  string `json:"delivery_time"`
	Currency      string `json:"currency"`
}

// Calculator computes translation prices and delivery delays.
type Calculator struct {
	PricePerPage int64
	MaxPages     int
}

// NewCalculator returns a Calculator, falling back to the default rate and
// page limit for non-positive values.
func NewCalculator(pricePerPage int64, maxPages int) Calculator {
	if pricePerPage <= 0 {
		pricePerPage = DefaultPricePerPage
	}
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	return Calculator{PricePerPage: pricePerPage, MaxPages: maxPages}
}

// CheckPages validates a page count.
func (c Calculator) CheckPages(pages int) error {
	if pages <= 0 {
		return ErrInvalidPages
	}
	if pages > c.MaxPages {
		return ErrPagesOutOfRange
	}
	return nil
}

// Price returns pages × price per page.
func (c Calculator) Price(pages int) (int64, error) {
	if err := c.CheckPages(pages); err != nil {
		return 0, err
	}
	return int64(pages) * c.PricePerPage, nil
}

// DeliveryHours returns ceil(pages/5) × 24: each started batch of five
// pages takes one 24 hour slot.
func (c Calculator) DeliveryHours(pages int) (int, error) {
	if err := c.CheckPages(pages); err != nil {
		return 0, err
	}
	slots := (pages + PagesPerSlot - 1) / PagesPerSlot
	return slots * HoursPerSlot, nil
}

// DeliveryTime returns the delivery delay for display, e.g. "48h (2 jours)".
func (c Calculator) DeliveryTime(pages int) (string, error) {
	hours, err := c.DeliveryHours(pages)
	if err != nil {
		return "", err
	}
	return FormatDeliveryHours(hours), nil
}

// Quote computes every estimate for pages at once.
func (c Calculator) Quote(pages int) (Quote, error) {
	price, err := c.Price(pages)
	if err != nil {
		return Quote{}, err
	}
	hours, _ := c.DeliveryHours(pages)
	return Quote{
		Pages:         pages,
		PricePerPage:  c.PricePerPage,
		Price:         price,
		DeliveryHours: hours,
		DeliveryTime:  FormatDeliveryHours(hours),
		Currency:      Currency,
	}, nil
}

// ParsePages converts raw form input to a page count.
func ParsePages(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, ErrInvalidPages
	}
	return n, nil
}

// FormatDeliveryHours renders hours, adding whole days from 24h on.
func FormatDeliveryHours(hours int) string {
	if hours < HoursPerSlot {
		return fmt.Sprintf("%dh", hours)
	}
	days := hours / HoursPerSlot
	suffix := ""
	if days > 1 {
		suffix = "s"
	}
	return fmt.Sprintf("%dh (%d jour%s)", hours, days, suffix)
}

// FormatAmount formats an amount with space thousand separators and the currency.
func FormatAmount(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	str := strconv.FormatInt(amount, 10)

	var result strings.Builder
	length := len(str)
	for i, digit := range str {
		if i > 0 && (length-i)%3 == 0 {
			result.WriteByte(' ')
		}
		result.WriteRune(digit)
	}

	return sign + result.String() + " " + Currency
}
