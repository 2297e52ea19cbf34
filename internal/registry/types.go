package registry

import (
	"fmt"
	"gorm.io/gorm"
	"time"
)

// ArtifactRecord 一次数据转换所保存的预处理对象
type ArtifactRecord struct {
	ArtifactId    string `gorm:"uniqueIndex;type:VARCHAR(64)"`
	Path          string `gorm:"type:VARCHAR(1024)"`
	Checksum      string `gorm:"type:VARCHAR(64)"`
	FormatVersion int
	NumFeatures   int
	TrainRows     int
	TestRows      int
	CreatedAt     time.Time `gorm:"-"`
}

type ArtifactRecordDO struct {
	gorm.Model
	ArtifactRecord
}

func (do *ArtifactRecordDO) toRecord() *ArtifactRecord {
	record := do.ArtifactRecord
	record.CreatedAt = do.Model.CreatedAt
	return &record
}

var ErrArtifactNotFound = fmt.Errorf("不存在该预处理对象记录")
