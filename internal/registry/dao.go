package registry

import (
	"fmt"
	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"log"
	"os"
)

type UpdateDao interface {
	SaveArtifact(r *ArtifactRecord) error
}

type QueryDao interface {
	QueryArtifactById(artifactId string) (*ArtifactRecord, error)
	// 按创建时间倒序返回最近的limit条记录
	QueryRecentArtifacts(limit int) ([]*ArtifactRecord, error)
}

type Dao interface {
	DB() *gorm.DB
	UpdateDao
	QueryDao
}

type daoImpl struct {
	db     *gorm.DB
	logger *log.Logger
}

var _ Dao = &daoImpl{}

// NewDao dsn格式为user:password@tcp(host:port)/dbname?parseTime=True
func NewDao(dsn string) (Dao, error) {
	if dsn == "" {
		return nil, fmt.Errorf("数据库连接串不能为空")
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.New(log.New(os.Stdout, "", 0), logger.Config{
			LogLevel: logger.Silent,
		}),
	})
	if err != nil {
		return nil, errors.Wrap(err, "连接数据库错误")
	}

	return NewDaoWithDB(db)
}

func NewDaoWithDB(db *gorm.DB) (Dao, error) {
	err := db.AutoMigrate(&ArtifactRecordDO{})
	if err != nil {
		return nil, errors.Wrap(err, "创建表格时出现异常")
	}

	return &daoImpl{
		db:     db,
		logger: log.New(os.Stdout, "Registry: ", log.LstdFlags|log.Lshortfile|log.Lmsgprefix),
	}, nil
}

func (d *daoImpl) SaveArtifact(r *ArtifactRecord) error {
	if r.ArtifactId == "" {
		return fmt.Errorf("ArtifactId不能为空")
	}

	do := &ArtifactRecordDO{ArtifactRecord: *r}
	d.logger.Printf("正在插入ID为%s的预处理对象记录", r.ArtifactId)
	err := d.db.Create(do).Error
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("保存预处理对象记录出错，ID为%s", r.ArtifactId))
	}
	return nil
}

func (d *daoImpl) QueryArtifactById(artifactId string) (*ArtifactRecord, error) {
	do := &ArtifactRecordDO{}
	err := d.db.Where("artifact_id = ?", artifactId).First(do).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrArtifactNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("查询ID为%s的预处理对象记录出错", artifactId))
	}

	return do.toRecord(), nil
}

func (d *daoImpl) QueryRecentArtifacts(limit int) ([]*ArtifactRecord, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit必须大于0，现在为%d", limit)
	}

	doArray := make([]*ArtifactRecordDO, 0, limit)
	err := d.db.Order("created_at desc").Order("id desc").Limit(limit).Find(&doArray).Error
	if err != nil {
		return nil, errors.Wrap(err, "查询预处理对象记录出错")
	}

	result := make([]*ArtifactRecord, len(doArray))
	for i, do := range doArray {
		result[i] = do.toRecord()
	}
	return result, nil
}

func (d *daoImpl) DB() *gorm.DB {
	return d.db
}
