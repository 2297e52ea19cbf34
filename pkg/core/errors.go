package core

import (
	"fmt"
	"github.com/pkg/errors"
)

// Stage 数据转换过程中出错的位置
type Stage string

const (
	StageBuild     = Stage("build")
	StageLoad      = Stage("load")
	StageValidate  = Stage("validate")
	StageFit       = Stage("fit")
	StageTransform = Stage("transform")
	StagePersist   = Stage("persist")
	StageRegister  = Stage("register")
)

// TransformationError 数据转换对外暴露的唯一错误类型
type TransformationError struct {
	Stage Stage
	Err   error
}

func NewTransformationError(stage Stage, err error, message string) *TransformationError {
	if message != "" {
		err = errors.Wrap(err, message)
	}
	return &TransformationError{
		Stage: stage,
		Err:   err,
	}
}

func (e *TransformationError) Error() string {
	return fmt.Sprintf("数据转换在%s阶段失败：%v", e.Stage, e.Err)
}

func (e *TransformationError) Cause() error {
	return e.Err
}

func (e *TransformationError) Unwrap() error {
	return e.Err
}

// StageOf 返回错误链中第一个TransformationError的阶段，若不存在则返回空字符串
func StageOf(err error) Stage {
	var te *TransformationError
	if errors.As(err, &te) {
		return te.Stage
	}
	return ""
}
