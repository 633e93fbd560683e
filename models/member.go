package models

import (
	"time"

	"github.com/zenithex/zenithex/config"
)

type Member struct {
	ID        uint64    `json:"id" gorm:"primaryKey"`
	UID       string    `json:"uid"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FeeCollectorMemberID is the reserved platform member owning the fee
// collector accounts. Seeded by migrations, never a real customer.
const FeeCollectorMemberID uint64 = 0

func GetMember(id uint64) (*Member, error) {
	var member *Member

	result := config.DataBase.First(&member, "id = ?", id)
	if result.Error != nil {
		return nil, result.Error
	}

	return member, nil
}
