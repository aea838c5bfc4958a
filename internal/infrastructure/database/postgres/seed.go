// internal/infrastructure/database/postgres/seed.go
package postgres

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/your-org/campus-delivery-backend/internal/domain/availability"
	"github.com/your-org/campus-delivery-backend/internal/domain/catalog"
	"github.com/your-org/campus-delivery-backend/internal/domain/pricing"
)

//go:embed seed.yaml
var seedYAML []byte

// Seed is the development catalog
type Seed struct {
	Universities []SeedUniversity `yaml:"universities"`
}

type SeedUniversity struct {
	Name     string       `yaml:"name"`
	Campuses []SeedCampus `yaml:"campuses"`
}

type SeedCampus struct {
	Name        string           `yaml:"name"`
	Location    string           `yaml:"location"`
	Fee         *SeedFee         `yaml:"fee"`
	Restaurants []SeedRestaurant `yaml:"restaurants"`
	Mart        []SeedItem       `yaml:"mart"`
}

type SeedFee struct {
	DeliveryFee   float64 `yaml:"deliveryFee"`
	PayeeName     string  `yaml:"payeeName"`
	BankName      string  `yaml:"bankName"`
	AccountNumber string  `yaml:"accountNumber"`
}

type SeedRestaurant struct {
	Name      string     `yaml:"name"`
	Cuisine   string     `yaml:"cuisine"`
	OpenTime  string     `yaml:"openTime"`
	CloseTime string     `yaml:"closeTime"`
	Is24x7    *bool      `yaml:"is24x7"`
	Menu      []SeedItem `yaml:"menu"`
}

type SeedItem struct {
	Name     string  `yaml:"name"`
	Price    float64 `yaml:"price"`
	Category string  `yaml:"category"`
}

// ParseSeed decodes a seed document and checks every restaurant's hours
func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed: %w", err)
	}

	for _, u := range seed.Universities {
		if u.Name == "" {
			return nil, fmt.Errorf("seed university without a name")
		}
		for _, c := range u.Campuses {
			for _, r := range c.Restaurants {
				w := availability.Window{OpensAt: r.OpenTime, ClosesAt: r.CloseTime, IsAlwaysOpen: r.Is24x7}
				if err := availability.Validate(w); err != nil {
					return nil, fmt.Errorf("seed restaurant %q: %w", r.Name, err)
				}
			}
		}
	}
	return &seed, nil
}

// DefaultSeed returns the embedded development catalog
func DefaultSeed() (*Seed, error) {
	return ParseSeed(seedYAML)
}

func (u SeedUniversity) model() *catalog.University {
	return &catalog.University{Name: u.Name, Slug: catalog.GenerateSlug(u.Name)}
}

func (c SeedCampus) model(universityID uint) *catalog.Campus {
	return &catalog.Campus{UniversityID: universityID, Name: c.Name, Location: c.Location}
}

func (c SeedCampus) setting(campusID uint) *pricing.CampusSetting {
	if c.Fee == nil {
		return nil
	}
	return &pricing.CampusSetting{
		CampusID:      campusID,
		DeliveryFee:   c.Fee.DeliveryFee,
		PayeeName:     c.Fee.PayeeName,
		BankName:      c.Fee.BankName,
		AccountNumber: c.Fee.AccountNumber,
		UpdatedBy:     "seed",
	}
}

func (r SeedRestaurant) model(campusID uint) *catalog.Restaurant {
	return &catalog.Restaurant{
		CampusID:  campusID,
		Name:      r.Name,
		Cuisine:   r.Cuisine,
		OpenTime:  r.OpenTime,
		CloseTime: r.CloseTime,
		Is24x7:    r.Is24x7,
	}
}
