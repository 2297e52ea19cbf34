package preprocess

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Transformer 先在训练数据上拟合，之后只做转换
type Transformer interface {
	Fit(df dataframe.DataFrame) error
	Transform(df dataframe.DataFrame) (*mat.Dense, error)
	FitTransform(df dataframe.DataFrame) (*mat.Dense, error)
}

// State 预处理对象的生命周期，只能从Untrained变为Trained一次
type State int

const (
	Untrained State = iota
	Trained
)

func (s State) String() string {
	switch s {
	case Untrained:
		return "untrained"
	case Trained:
		return "trained"
	default:
		return "unknown"
	}
}

var ErrNotFitted = errors.New("预处理对象尚未拟合，不能转换数据")

var ErrAlreadyFitted = errors.New("预处理对象已经拟合过，不能再次拟合")
