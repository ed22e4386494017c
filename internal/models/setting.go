package models

// Setting is a key/value row with upsert-only semantics.
type Setting struct {
	Key   string `gorm:"primarykey;type:varchar(64)" json:"key"`
	Value string `gorm:"type:text" json:"value"`
}
