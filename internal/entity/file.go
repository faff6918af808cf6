package entity

type File struct {
	Base
	Mime      string
	Name      string
	CreatedBy string `gorm:"not null;index"`
	User      User   `gorm:"foreignKey:CreatedBy;constraint:OnDelete:CASCADE"`
	Url       string
}
