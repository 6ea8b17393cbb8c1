package domain

import (
	"time"

	"github.com/google/uuid"
)

type PackageStatus string

const (
	PackageStatusActive   PackageStatus = "active"
	PackageStatusInactive PackageStatus = "inactive"
)

type PriceType string

const (
	PriceTypeFixed    PriceType = "fixed"
	PriceTypeVariable PriceType = "variable"
)

type DateType string

const (
	DateTypeRange    DateType = "range"
	DateTypeSeparate DateType = "separate"
)

type PriceRange struct {
	From  float64 `json:"from"`
	To    float64 `json:"to"`
	Price float64 `json:"price"`
}

type ItineraryDay struct {
	ID         int      `json:"id"`
	Title      string   `json:"title"`
	Activities []string `json:"activities"`
}

type Inclusion struct {
	ID      int      `json:"id"`
	Title   string   `json:"title"`
	Details []string `json:"details"`
}

// Highlight pairs a caption with a single image reference.
type Highlight struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Image string `json:"image"`
}

type Stay struct {
	ID          int      `json:"id"`
	Hotel       string   `json:"hotel"`
	RoomType    string   `json:"roomType"`
	Amenities   []string `json:"amenities"`
	Images      []string `json:"images"`
	Description string   `json:"description"`
}

type AvailableDates struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// Package is a travel-package listing. Every persisted image field holds a
// resolvable URL; inline-encoded payloads only appear in inbound requests and
// are translated before the record is written.
type Package struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	Status         PackageStatus   `db:"status" json:"status"`
	Bookings       int             `db:"bookings" json:"bookings"`
	Rating         float64         `db:"rating" json:"rating"`
	Name           string          `db:"name" json:"name"`
	Description    string          `db:"description" json:"description"`
	Location       string          `db:"location" json:"location"`
	PriceType      PriceType       `db:"price_type" json:"priceType"`
	PriceRanges    PriceRanges     `db:"price_ranges" json:"priceRanges"`
	DateType       DateType        `db:"date_type" json:"dateType"`
	AvailableDates AvailableDates  `db:"available_dates" json:"availableDates"`
	SpecificDates  DateList        `db:"specific_dates" json:"specificDates"`
	Quantity       *int            `db:"quantity" json:"quantity,omitempty"`
	MainPhotos     StringList      `db:"main_photos" json:"mainPhotos"`
	Itinerary      ItineraryDays   `db:"itinerary" json:"itinerary"`
	Inclusions     Inclusions      `db:"inclusions" json:"inclusions"`
	Highlights     Highlights      `db:"highlights" json:"highlights"`
	Stays          Stays           `db:"stays" json:"stays"`
	CreatedBy      uuid.UUID       `db:"created_by" json:"createdBy"`
	CreatedAt      time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updatedAt"`
}

func (p *Package) IsActive() bool {
	return p.Status == PackageStatusActive
}

// ImageURLs collects every image reference reachable from the record, in
// document order: main photos, then highlight images, then stay images.
func (p *Package) ImageURLs() []string {
	urls := make([]string, 0, len(p.MainPhotos))
	urls = append(urls, p.MainPhotos...)
	for _, hl := range p.Highlights {
		if hl.Image != "" {
			urls = append(urls, hl.Image)
		}
	}
	for _, stay := range p.Stays {
		urls = append(urls, stay.Images...)
	}
	return urls
}

// PackageFilter narrows public browsing of active packages.
type PackageFilter struct {
	Location string
	MinPrice *float64
	MaxPrice *float64
}
