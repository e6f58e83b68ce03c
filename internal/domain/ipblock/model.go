package ipblock

import "time"

type BlockedIP struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	IP        string     `gorm:"column:ip;type:varchar(64);not null;uniqueIndex:idx_blocked_ips_ip" json:"ip"`
	Reason    string     `json:"reason"`
	ExpiresAt *time.Time `gorm:"column:expires_at" json:"expiresAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (BlockedIP) TableName() string { return "blocked_ips" }

// ActiveAt reports whether the block still applies at now.
func (b BlockedIP) ActiveAt(now time.Time) bool {
	return b.ExpiresAt == nil || b.ExpiresAt.After(now)
}
