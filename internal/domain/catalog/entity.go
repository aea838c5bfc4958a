// internal/domain/catalog/entity.go
package catalog

import (
	"time"

	"github.com/your-org/campus-delivery-backend/internal/domain/availability"
	"gorm.io/gorm"
)

// University is the top-level tenancy key
type University struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null;size:255" json:"name"`
	Slug      string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Campuses []Campus `gorm:"foreignKey:UniversityID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"campuses,omitempty"`
}

// Campus partitions restaurants, mart items and orders within a university
type Campus struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UniversityID uint           `gorm:"not null;index" json:"universityId"`
	Name         string         `gorm:"not null;size:255" json:"name"`
	Location     string         `gorm:"size:500" json:"location"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	University *University `gorm:"foreignKey:UniversityID" json:"university,omitempty"`
}

// Restaurant is an ordering target with opening hours
type Restaurant struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CampusID  uint           `gorm:"not null;index" json:"campusId"`
	Name      string         `gorm:"not null;size:255" json:"name"`
	Location  string         `gorm:"size:500" json:"location"`
	Cuisine   string         `gorm:"size:255" json:"cuisine"`
	OpenTime  string         `gorm:"size:20" json:"openTime"`
	CloseTime string         `gorm:"size:20" json:"closeTime"`
	Is24x7    *bool          `gorm:"column:is24x7" json:"is24x7,omitempty"`
	PhotoURL  string         `gorm:"column:photo_url;size:500" json:"photoURL"`
	ManagerID string         `gorm:"size:128;index" json:"managerId,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Campus    *Campus    `gorm:"foreignKey:CampusID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"campus,omitempty"`
	MenuItems []MenuItem `gorm:"foreignKey:RestaurantID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"menuItems,omitempty"`
}

// Window returns the restaurant's opening hours
func (r Restaurant) Window() availability.Window {
	return availability.Window{
		OpensAt:      r.OpenTime,
		ClosesAt:     r.CloseTime,
		IsAlwaysOpen: r.Is24x7,
	}
}

// MenuItem is a dish sold by a restaurant
type MenuItem struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	RestaurantID uint           `gorm:"not null;index" json:"restaurantId"`
	Name         string         `gorm:"not null;size:255" json:"name"`
	Description  string         `gorm:"type:text" json:"description"`
	Price        float64        `gorm:"not null" json:"price"`
	Category     string         `gorm:"size:100" json:"category"`
	PhotoURL     string         `gorm:"column:photo_url;size:500" json:"photoURL"`
	IsAvailable  bool           `gorm:"default:true" json:"isAvailable"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// MartItem is a convenience-store product sold campus-wide
type MartItem struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CampusID  uint           `gorm:"not null;index" json:"campusId"`
	Name      string         `gorm:"not null;size:255" json:"name"`
	Price     float64        `gorm:"not null" json:"price"`
	Category  string         `gorm:"size:100" json:"category"`
	PhotoURL  string         `gorm:"column:photo_url;size:500" json:"photoURL"`
	InStock   bool           `gorm:"default:true" json:"inStock"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (MartItem) TableName() string {
	return "mart_items"
}

// RestaurantView is a restaurant with its evaluated opening status
type RestaurantView struct {
	Restaurant
	availability.Availability
}

// NewRestaurantView evaluates r's window at now
func NewRestaurantView(r Restaurant, now time.Time) RestaurantView {
	return RestaurantView{
		Restaurant:   r,
		Availability: availability.Status(r.Window(), now),
	}
}
