package models

// BaseAssignment authorizes a mix_base product for a builder. A nil BuilderID
// makes the base global.
type BaseAssignment struct {
	ID        int64  `gorm:"column:id;primaryKey;autoIncrement"`
	ProductID int64  `gorm:"column:product_id;not null"`
	BuilderID *int64 `gorm:"column:builder_id"`
}

// AddonAssignment lists a modifier a regular product may carry, with the
// optional inclusive level range.
type AddonAssignment struct {
	ID         int64 `gorm:"column:id;primaryKey;autoIncrement"`
	ProductID  int64 `gorm:"column:product_id;not null"`
	ModifierID int64 `gorm:"column:modifier_id;not null"`
	Required   bool  `gorm:"column:required;not null"`
	MinSelect  *int  `gorm:"column:min_select"`
	MaxSelect  *int  `gorm:"column:max_select"`
}
