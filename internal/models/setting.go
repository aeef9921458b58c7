package models

import "time"

// SettingKeyTemplateLink is the global Excel template URL students must use.
const SettingKeyTemplateLink = "templateLink"

// Setting is a persisted key-value configuration entry with upsert semantics.
type Setting struct {
	Key       string    `db:"key" json:"key"`
	Value     string    `db:"value" json:"value"`
	UpdatedBy *string   `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
