package license

import "time"

// DateLayout is the storage and wire format of expiry dates.
const DateLayout = "2006-01-02"

type License struct {
	ID                string     `gorm:"column:id;primaryKey;type:varchar(32)" json:"id"`
	Code              string     `gorm:"column:code;type:varchar(32);index" json:"code,omitempty"`
	Name              string     `gorm:"column:name;type:varchar(255);not null" json:"name"`
	ExpiryDate        string     `gorm:"column:expiry_date;type:varchar(10);index" json:"expiry_date"`
	PrimaryEmail      string     `gorm:"column:primary_email;type:varchar(255)" json:"primary_email"`
	PrimaryOwner      string     `gorm:"column:primary_owner;type:varchar(255)" json:"primary_owner"`
	SecondaryEmail    string     `gorm:"column:secondary_email;type:varchar(255)" json:"secondary_email,omitempty"`
	SecondaryOwner    string     `gorm:"column:secondary_owner;type:varchar(255)" json:"secondary_owner,omitempty"`
	CreatedBy         string     `gorm:"column:created_by;type:varchar(32)" json:"created_by"`
	CreatedByUsername string     `gorm:"column:created_by_username;type:varchar(64)" json:"created_by_username"`
	CreatedAt         time.Time  `gorm:"column:created_at;index" json:"created_at"`
	LastUpdatedBy     string     `gorm:"column:last_updated_by;type:varchar(64)" json:"last_updated_by,omitempty"`
	LastUpdatedOn     *time.Time `gorm:"column:last_updated_on" json:"last_updated_on,omitempty"`
}

func (License) TableName() string { return "licenses" }

// DaysLeft is the signed number of calendar days from today to the expiry
// date. ok is false when the stored date does not parse.
func (l *License) DaysLeft(today time.Time) (days int, ok bool) {
	expiry, err := time.Parse(DateLayout, l.ExpiryDate)
	if err != nil {
		return 0, false
	}
	return DaysBetween(today, expiry), true
}

// DaysBetween counts calendar days from a to b using their wall-clock dates.
func DaysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

type AddLicenseRequest struct {
	Name           string `json:"license_name"`
	ExpiryDate     string `json:"expiry_date"`
	PrimaryEmail   string `json:"owner_email"`
	PrimaryOwner   string `json:"owner_name"`
	SecondaryEmail string `json:"secondary_email"`
	SecondaryOwner string `json:"secondary_owner"`
}

type UpdateExpiryRequest struct {
	NewExpiry string `json:"new_expiry"`
}

type ListLicensesRequest struct {
	Query  string `form:"query"`
	Cursor string `form:"cursor"`
	Limit  int    `form:"limit"`
}
