package db

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type database struct {
	db *gorm.DB
}

// New creates a new database connection
func New(ctx context.Context, dialect string, dsn string, config *gorm.Config) (Database, error) {
	if config == nil {
		config = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	}

	var db *gorm.DB
	var err error

	switch dialect {
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(dsn), config)
	case "mysql":
		db, err = gorm.Open(mysql.Open(dsn), config)
	case "postgres":
		db, err = gorm.Open(postgres.Open(dsn), config)
	default:
		return nil, fmt.Errorf("unsupported dialect: %s", dialect)
	}
	if err != nil {
		return nil, err
	}

	db = db.WithContext(ctx)

	if err := db.AutoMigrate(
		&Registration{},
		&User{},
	); err != nil {
		return nil, err
	}

	return &database{
		db: db,
	}, nil
}

func (d *database) GetRegistrationByUser(uid int64) (Registration, error) {
	registration := Registration{}
	sql := d.db.Where("uid = ?", uid).Limit(1).Find(&registration)
	return registration, sql.Error
}

func (d *database) GetRegistrationByHostname(full string) (Registration, error) {
	registration := Registration{}
	// full is a reserved word in some dialects; map conditions get quoted
	sql := d.db.Where(map[string]interface{}{"full": full}).Limit(1).Find(&registration)
	return registration, sql.Error
}

func (d *database) CreateRegistration(registration Registration) error {
	if registration.Time == 0 {
		registration.Time = time.Now().Unix()
	}
	sql := d.db.Create(&registration)
	return sql.Error
}

func (d *database) DeleteRegistration(uid int64) error {
	sql := d.db.Where("uid = ?", uid).Delete(&Registration{})
	return sql.Error
}

func (d *database) GetRegisteredDNSIDs() (map[string]bool, error) {
	var ids []string
	sql := d.db.Model(&Registration{}).Pluck("dnsid", &ids)
	if sql.Error != nil {
		return nil, sql.Error
	}

	result := make(map[string]bool, len(ids))
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

func (d *database) CreateUser(name, tokenHash string) (User, error) {
	user := User{
		Name:      name,
		TokenHash: tokenHash,
	}
	sql := d.db.Create(&user)
	return user, sql.Error
}

func (d *database) GetUser(id uint) (User, error) {
	user := User{}
	sql := d.db.Where("id = ?", id).Limit(1).Find(&user)
	return user, sql.Error
}

func (d *database) GetUserByName(name string) (User, error) {
	user := User{}
	sql := d.db.Where("name = ?", name).Limit(1).Find(&user)
	return user, sql.Error
}

func (d *database) SetUserDisabled(name string, disabled bool) error {
	sql := d.db.Model(&User{}).Where("name = ?", name).Update("disabled", disabled)
	if sql.Error != nil {
		return sql.Error
	}
	if sql.RowsAffected == 0 {
		return fmt.Errorf("user %s not found", name)
	}
	return nil
}
