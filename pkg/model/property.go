package model

import "time"

type Property struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	HostID        string    `json:"host_id" bson:"host_id" validate:"required,mongodb"`
	HostEmail     string    `json:"host_email" bson:"host_email" validate:"required,email"`
	Title         string    `json:"title" bson:"title" validate:"required,min=2,max=120"`
	Description   string    `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=5000"`
	Category      string    `json:"category" bson:"category" validate:"required,min=2,max=50"`
	Address       string    `json:"address" bson:"address" validate:"required,min=2,max=200"`
	City          string    `json:"city" bson:"city" validate:"required,min=2,max=100"`
	Country       string    `json:"country" bson:"country" validate:"required,min=2,max=100"`
	PricePerNight float64   `json:"price_per_night" bson:"price_per_night" validate:"required,gt=0"`
	Bedrooms      int       `json:"bedrooms" bson:"bedrooms" validate:"required,min=1,max=50"`
	Bathrooms     int       `json:"bathrooms" bson:"bathrooms" validate:"required,min=1,max=50"`
	MaxGuests     int       `json:"max_guests" bson:"max_guests" validate:"required,min=1,max=100"`
	Amenities     []string  `json:"amenities,omitempty" bson:"amenities,omitempty" validate:"omitempty,max=50,dive,min=1,max=60"`
	ImageURLs     []string  `json:"image_urls,omitempty" bson:"image_urls,omitempty" validate:"omitempty,max=30,dive,url"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt     time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// PropertyUpdate carries mutable fields. The host reference is immutable after
// creation and deliberately absent here.
type PropertyUpdate struct {
	Title         string    `json:"title,omitempty" validate:"omitempty,min=2,max=120"`
	Description   *string   `json:"description,omitempty" validate:"omitempty,max=5000"`
	Category      string    `json:"category,omitempty" validate:"omitempty,min=2,max=50"`
	Address       string    `json:"address,omitempty" validate:"omitempty,min=2,max=200"`
	City          string    `json:"city,omitempty" validate:"omitempty,min=2,max=100"`
	Country       string    `json:"country,omitempty" validate:"omitempty,min=2,max=100"`
	PricePerNight *float64  `json:"price_per_night,omitempty" validate:"omitempty,gt=0"`
	Bedrooms      *int      `json:"bedrooms,omitempty" validate:"omitempty,min=1,max=50"`
	Bathrooms     *int      `json:"bathrooms,omitempty" validate:"omitempty,min=1,max=50"`
	MaxGuests     *int      `json:"max_guests,omitempty" validate:"omitempty,min=1,max=100"`
	Amenities     *[]string `json:"amenities,omitempty" validate:"omitempty,max=50,dive,min=1,max=60"`
	ImageURLs     *[]string `json:"image_urls,omitempty" validate:"omitempty,max=30,dive,url"`
}
