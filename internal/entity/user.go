package entity

import "database/sql"

type User struct {
	Base
	Handle      string `gorm:"unique;not null"`
	DisplayName string
	Bio         string
	AvatarURL   sql.NullString

	// PayoutAccount is the destination account id at the payment processor.
	PayoutAccount sql.NullString
}
