package model

import (
	"gorm.io/gorm"
)

type TraceTag struct {
	Id           int64  `json:"id" gorm:"primarykey"`
	RequestId    string `json:"request_id" gorm:"type:char(64);index"`
	ExperimentId string `json:"experiment_id" gorm:"type:char(64);index:idx_tags_exp_ts,priority:1"`
	TimestampMs  int64  `json:"timestamp_ms" gorm:"index:idx_tags_exp_ts,priority:2"`
	TagKey       string `json:"tag_key" gorm:"type:varchar(191);index"`
	TagValue     string `json:"tag_value" gorm:"type:varchar(500)"`
}

func windowedTags(db *gorm.DB, expIds []string, start, end *int64) *gorm.DB {
	q := db.Model(&TraceTag{}).Where("trace_tags.experiment_id IN ?", expIds)
	if start != nil {
		q = q.Where("trace_tags.timestamp_ms >= ?", *start)
	}
	if end != nil {
		q = q.Where("trace_tags.timestamp_ms <= ?", *end)
	}
	return q
}

// TagKeyStat aggregates one tag key over the window.
type TagKeyStat struct {
	TagKey       string
	TraceCount   int64
	UniqueValues int64
}

func GetTagKeyStats(expIds []string, start, end *int64) ([]TagKeyStat, error) {
	var rows []TagKeyStat
	err := windowedTags(DB, expIds, start, end).
		Select("tag_key, COUNT(DISTINCT request_id) AS trace_count, COUNT(DISTINCT tag_value) AS unique_values").
		Group("tag_key").
		Order("trace_count DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// TagValueStat is one value of a tag key with its trace count.
type TagValueStat struct {
	TagValue string
	Count    int64
}

func GetTagValueStats(expIds []string, start, end *int64, key string, limit int) ([]TagValueStat, error) {
	var rows []TagValueStat
	q := windowedTags(DB, expIds, start, end).
		Where("tag_key = ?", key).
		Select("tag_value, COUNT(DISTINCT request_id) AS count").
		Group("tag_value").
		Order("count DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func CountTaggedTraces(expIds []string, start, end *int64, key string) (int64, error) {
	var count int64
	err := windowedTags(DB, expIds, start, end).
		Where("tag_key = ?", key).
		Distinct("request_id").
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// TagValueBucketCount is one (time bucket, tag value) cell.
type TagValueBucketCount struct {
	Bucket   int64
	TagValue string
	Count    int64
}

func CountTagValueBuckets(expIds []string, start, end *int64, key string, values []string, bucketMs int64) ([]TagValueBucketCount, error) {
	var rows []TagValueBucketCount
	q := windowedTags(DB, expIds, start, end).
		Where("tag_key = ?", key).
		Select("(timestamp_ms DIV ?) * ? AS bucket, tag_value, COUNT(DISTINCT request_id) AS count", bucketMs, bucketMs).
		Group("bucket, tag_value").
		Order("bucket")
	if len(values) > 0 {
		q = q.Where("tag_value IN ?", values)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// TagPairStat counts traces per (key, value) pair, optionally restricted to
// the slice of traces matching the given filters.
type TagPairStat struct {
	TagKey   string
	TagValue string
	Count    int64
}

func GetTagPairStats(expIds []string, start, end *int64, filters []TraceFilter) ([]TagPairStat, error) {
	q := windowedTags(DB, expIds, start, end)
	if len(filters) > 0 {
		q = q.Joins("JOIN traces ON traces.request_id = trace_tags.request_id")
		var err error
		q, err = applyTraceFilters(q, "traces", filters)
		if err != nil {
			return nil, err
		}
	}
	var rows []TagPairStat
	err := q.
		Select("tag_key, tag_value, COUNT(DISTINCT trace_tags.request_id) AS count").
		Group("tag_key, tag_value").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
