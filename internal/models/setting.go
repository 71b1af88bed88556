package models

// Setting is one flat key/value configuration row.
type Setting struct {
	Key   string `gorm:"primaryKey"`
	Value string `gorm:"type:text"`
}

// SettingAutoresEnabled is the global autoresponder flag ("1"/"0").
const SettingAutoresEnabled = "autoresponders_enabled"

// Autoresponder keeps the canned reply sent to a user right after they open a
// ticket in the given category, when the global flag is on.
type Autoresponder struct {
	Category string `gorm:"primaryKey"`
	Text     string `gorm:"type:text"`
}
