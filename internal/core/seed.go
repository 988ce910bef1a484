package core

import (
	"time"

	"github.com/google/uuid"

	"jalsuraksha/pkg/domain"
)

// SeedSnapshot builds the demo dataset loaded when JALSURAKSHA_SEED is set:
// five health centers across the northeastern states and one admin account.
// Importing it replaces the store contents wholesale.
func SeedSnapshot() domain.Snapshot {
	now := time.Now().UTC()
	phc := func(name, district, state string, lat, lon float64) domain.PHC {
		return domain.PHC{
			Base:      domain.Base{ID: uuid.NewString(), CreatedAt: now},
			Name:      name,
			District:  district,
			State:     state,
			Latitude:  lat,
			Longitude: lon,
			Status:    domain.PHCStatusActive,
		}
	}
	admin := domain.User{
		Base:     domain.Base{ID: uuid.NewString(), CreatedAt: now},
		Name:     "Dr. Priya Sharma",
		Email:    "priya.sharma@jalsuraksha.gov.in",
		Role:     domain.RoleAdmin,
		Language: domain.LanguageEnglish,
	}
	return domain.Snapshot{
		PHCs: []domain.PHC{
			phc("Guwahati PHC", "Kamrup", "Assam", 26.1445, 91.7362),
			phc("Silchar PHC", "Cachar", "Assam", 24.8333, 92.7789),
			phc("Imphal PHC", "Imphal West", "Manipur", 24.8170, 93.9368),
			phc("Shillong PHC", "East Khasi Hills", "Meghalaya", 25.5788, 91.8933),
			phc("Agartala PHC", "West Tripura", "Tripura", 23.8315, 91.2868),
		},
		Users: []domain.User{admin},
	}
}
