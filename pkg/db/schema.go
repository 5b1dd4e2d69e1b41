package db

import (
	"time"
)

// Registration binds one user to one hostname. The column names are shared with
// existing deployments, so they stay terse.
type Registration struct {
	UID    int64  `gorm:"column:uid;primaryKey;autoIncrement:false"`
	Full   string `gorm:"column:full;size:255;uniqueIndex"`
	DNSID  string `gorm:"column:dnsid"`
	Time   int64  `gorm:"column:time"`
	Sub    string `gorm:"column:sub"`
	Domain int    `gorm:"column:domain"`
}

func (Registration) TableName() string {
	return "register"
}

// Exists reports whether the value was loaded from a row.
func (r Registration) Exists() bool {
	return r.Full != ""
}

type User struct {
	ID        uint   `gorm:"primarykey"`
	Name      string `gorm:"size:255;uniqueIndex"`
	TokenHash string
	Disabled  bool
	CreatedAt time.Time
}
