package model

import (
	"gorm.io/gorm"
)

const (
	AssessmentTypeBoolean  = "boolean"
	AssessmentTypePassFail = "pass-fail"
	AssessmentTypeNumeric  = "numeric"
	AssessmentTypeString   = "string"

	AssessmentValuePass = "pass"
	AssessmentValueFail = "fail"
)

// Assessment is one quality judgement attached to a trace. Exactly one of
// the typed value columns is set, per DataType.
type Assessment struct {
	Id           int64    `json:"id" gorm:"primarykey"`
	RequestId    string   `json:"request_id" gorm:"type:char(64);index"`
	ExperimentId string   `json:"experiment_id" gorm:"type:char(64);index:idx_assessments_exp_ts,priority:1"`
	TimestampMs  int64    `json:"timestamp_ms" gorm:"index:idx_assessments_exp_ts,priority:2"`
	Name         string   `json:"name" gorm:"type:varchar(191);index"`
	DataType     string   `json:"data_type" gorm:"type:char(16)"`
	Source       string   `json:"source" gorm:"type:varchar(64)"`
	BoolValue    *bool    `json:"bool_value"`
	NumericValue *float64 `json:"numeric_value"`
	StringValue  *string  `json:"string_value" gorm:"type:varchar(500)"`
}

func windowedAssessments(db *gorm.DB, expIds []string, start, end *int64) *gorm.DB {
	q := db.Model(&Assessment{}).Where("experiment_id IN ?", expIds)
	if start != nil {
		q = q.Where("timestamp_ms >= ?", *start)
	}
	if end != nil {
		q = q.Where("timestamp_ms <= ?", *end)
	}
	return q
}

// GetAssessments returns assessments in the window; an empty name matches
// every assessment.
func GetAssessments(expIds []string, start, end *int64, name string) ([]Assessment, error) {
	q := windowedAssessments(DB, expIds, start, end)
	if name != "" {
		q = q.Where("name = ?", name)
	}
	var rows []Assessment
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
