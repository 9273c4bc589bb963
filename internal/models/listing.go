package models

import (
	"time"

	"gorm.io/datatypes"
)

// Language is a scheduled language exam session (TOEIC, TEPS, ...).
// Test holds the raw test code; the display title is derived from it.
type Language struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Test       string    `gorm:"not null;size:64;index" json:"test"`
	Classify   string    `gorm:"size:64;index" json:"classify"`
	ExamDate   time.Time `gorm:"index" json:"examDate"`
	CloseDate  time.Time `json:"closeDate"`
	ResultDate time.Time `json:"resultDate"`
	HomePage   string    `json:"homePage"`
	View       int       `gorm:"not null;default:0" json:"view"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Record flattens the row into the field map consumed by the listing normalizer.
func (l *Language) Record() map[string]any {
	return map[string]any{
		"id":         l.ID,
		"test":       l.Test,
		"classify":   l.Classify,
		"examDate":   l.ExamDate,
		"closeDate":  l.CloseDate,
		"resultDate": l.ResultDate,
		"homePage":   l.HomePage,
		"view":       l.View,
	}
}

// MainCategory is the top level of the certification taxonomy.
type MainCategory struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	Keyword       string        `gorm:"not null;uniqueIndex" json:"keyword"`
	SubCategories []SubCategory `gorm:"foreignKey:MainCategoryID" json:"subCategories,omitempty"`
}

// SubCategory is keyed by its keyword and created lazily when a certification is ingested.
type SubCategory struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	Keyword        string       `gorm:"not null;uniqueIndex" json:"keyword"`
	MainCategoryID uint         `gorm:"not null;index" json:"mainCategoryId"`
	MainCategory   MainCategory `gorm:"foreignKey:MainCategoryID" json:"mainCategory"`
}

// ExamSchedule is one round of a certification exam.
type ExamSchedule struct {
	Turn      string `json:"turn"`
	WtReceipt string `json:"wtReceipt"`
	WtPeriod  string `json:"wtPeriod"`
	PtReceipt string `json:"ptReceipt"`
	PtPeriod  string `json:"ptPeriod"`
	ResultDay string `json:"resultDay"`
}

// Qnet is a national certification exam listing.
type Qnet struct {
	ID            uint                              `gorm:"primaryKey" json:"id"`
	Title         string                            `gorm:"not null" json:"title"`
	Institution   string                            `json:"institution"`
	Summary       string                            `gorm:"type:text" json:"summary"`
	View          int                               `gorm:"not null;default:0" json:"view"`
	Scrap         int                               `gorm:"not null;default:0" json:"scrap"`
	SubCategoryID uint                              `gorm:"not null;index" json:"subCategoryId"`
	SubCategory   SubCategory                       `gorm:"foreignKey:SubCategoryID" json:"subCategory"`
	ExamSchedules datatypes.JSONSlice[ExamSchedule] `json:"examSchedules"`
	CreatedAt     time.Time                         `json:"createdAt"`
}

// Record flattens the row into the field map consumed by the listing normalizer.
// SubCategory and its MainCategory must be preloaded for the keyword fields to be set.
func (q *Qnet) Record() map[string]any {
	schedules := make([]any, 0, len(q.ExamSchedules))
	for _, s := range q.ExamSchedules {
		schedules = append(schedules, map[string]any{
			"turn":      s.Turn,
			"wtReceipt": s.WtReceipt,
			"wtPeriod":  s.WtPeriod,
			"ptReceipt": s.PtReceipt,
			"ptPeriod":  s.PtPeriod,
			"resultDay": s.ResultDay,
		})
	}
	return map[string]any{
		"id":            q.ID,
		"title":         q.Title,
		"institution":   q.Institution,
		"summary":       q.Summary,
		"view":          q.View,
		"scrap":         q.Scrap,
		"mainCategory":  q.SubCategory.MainCategory.Keyword,
		"subCategory":   q.SubCategory.Keyword,
		"examSchedules": schedules,
	}
}
