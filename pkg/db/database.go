package db

type Database interface {
	GetRegistrationByUser(uid int64) (Registration, error)
	GetRegistrationByHostname(full string) (Registration, error)
	CreateRegistration(registration Registration) error
	DeleteRegistration(uid int64) error
	GetRegisteredDNSIDs() (map[string]bool, error)

	CreateUser(name, tokenHash string) (User, error)
	GetUser(id uint) (User, error)
	GetUserByName(name string) (User, error)
	SetUserDisabled(name string, disabled bool) error
}
