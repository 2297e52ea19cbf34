package transformation

import (
	"fmt"
	"github.com/go-gota/gota/dataframe"
	"github.com/packagewjx/feature-transformer/internal/artifact"
	"github.com/packagewjx/feature-transformer/internal/dataset"
	"github.com/packagewjx/feature-transformer/internal/preprocess"
	"github.com/packagewjx/feature-transformer/internal/registry"
	"github.com/packagewjx/feature-transformer/pkg/core"
	"gonum.org/v1/gonum/mat"
	"log"
)

// Result 最后一列为目标列
type Result struct {
	Train        *mat.Dense
	Test         *mat.Dense
	ArtifactPath string
	ArtifactId   string
	FeatureNames []string // 不包含目标列
}

type DataTransformation interface {
	// InitiateDataTransformation 在训练集上拟合预处理对象，转换训练集与测试集并保存预处理对象
	InitiateDataTransformation(trainPath, testPath string) (*Result, error)
	// Apply 加载保存的预处理对象并转换新的数据，若数据中包含目标列则忽略
	Apply(artifactPath, inputPath string) (*mat.Dense, error)
}

func NewDataTransformation(config *Config) (DataTransformation, error) {
	if err := config.Complete(); err != nil {
		return nil, core.NewTransformationError(core.StageBuild, err, "配置错误")
	}

	return &dataTransformationImpl{
		config: config,
		loader: dataset.NewLoader(dataset.CSV, config.Fs),
		logger: config.Logger,
	}, nil
}

type dataTransformationImpl struct {
	config *Config
	loader dataset.Loader
	logger *log.Logger
}

type splitData struct {
	inputs dataframe.DataFrame
	target []float64
}

func (d *dataTransformationImpl) InitiateDataTransformation(trainPath, testPath string) (*Result, error) {
	schema := d.config.Schema

	d.logger.Println("读取训练集与测试集")
	train, err := d.load(trainPath)
	if err != nil {
		return nil, err
	}
	test, err := d.load(testPath)
	if err != nil {
		return nil, err
	}
	d.logger.Println("读取训练集与测试集完毕")

	trainSplit, err := d.split(train, "训练集")
	if err != nil {
		return nil, err
	}
	testSplit, err := d.split(test, "测试集")
	if err != nil {
		return nil, err
	}

	d.logger.Println("获取预处理对象")
	transformer, err := preprocess.NewColumnTransformer(schema)
	if err != nil {
		return nil, core.NewTransformationError(core.StageBuild, err, "")
	}

	// 只在训练集上拟合，测试集只做转换
	d.logger.Println("在训练集与测试集上应用预处理对象")
	trainFeatures, err := transformer.FitTransform(trainSplit.inputs)
	if err != nil {
		return nil, core.NewTransformationError(core.StageFit, err, "拟合训练集出错")
	}
	testFeatures, err := transformer.Transform(testSplit.inputs)
	if err != nil {
		return nil, core.NewTransformationError(core.StageTransform, err, "转换测试集出错")
	}

	trainArr := appendTarget(trainFeatures, trainSplit.target)
	testArr := appendTarget(testFeatures, testSplit.target)
	d.logger.Printf("训练集矩阵%d行%d列，测试集矩阵%d行%d列\n", trainArr.RawMatrix().Rows, trainArr.RawMatrix().Cols,
		testArr.RawMatrix().Rows, testArr.RawMatrix().Cols)

	// 登记成功后才发布，失败的运行不会覆盖已有的预处理对象
	d.logger.Println("保存预处理对象")
	pending, err := artifact.Prepare(d.config.Fs, d.config.ArtifactPath, transformer)
	if err != nil {
		return nil, core.NewTransformationError(core.StagePersist, err, "")
	}
	saved := pending.Result()

	if d.config.Registry != nil {
		err = d.config.Registry.SaveArtifact(&registry.ArtifactRecord{
			ArtifactId:    saved.Id,
			Path:          saved.Path,
			Checksum:      saved.Checksum,
			FormatVersion: artifact.FormatVersion,
			NumFeatures:   transformer.NumFeatures(),
			TrainRows:     train.Nrow(),
			TestRows:      test.Nrow(),
		})
		if err != nil {
			pending.Discard()
			return nil, core.NewTransformationError(core.StageRegister, err, "登记预处理对象出错")
		}
	}

	if err := pending.Publish(); err != nil {
		return nil, core.NewTransformationError(core.StagePersist, err, "")
	}
	d.logger.Printf("预处理对象已保存到%s，ID为%s\n", saved.Path, saved.Id)

	return &Result{
		Train:        trainArr,
		Test:         testArr,
		ArtifactPath: saved.Path,
		ArtifactId:   saved.Id,
		FeatureNames: transformer.FeatureNames(),
	}, nil
}

func (d *dataTransformationImpl) Apply(artifactPath, inputPath string) (*mat.Dense, error) {
	d.logger.Printf("加载预处理对象%s\n", artifactPath)
	transformer, a, err := artifact.Load(d.config.Fs, artifactPath)
	if err != nil {
		return nil, core.NewTransformationError(core.StageLoad, err, "")
	}
	d.logger.Printf("预处理对象ID为%s，创建于%s\n", a.Id, a.CreatedAt)

	df, err := d.load(inputPath)
	if err != nil {
		return nil, err
	}
	schema := transformer.Schema()
	if err := dataset.RequireColumns(df, schema.InputColumns()); err != nil {
		return nil, core.NewTransformationError(core.StageValidate, err, fmt.Sprintf("数据%s不符合schema", inputPath))
	}

	result, err := transformer.Transform(df)
	if err != nil {
		return nil, core.NewTransformationError(core.StageTransform, err, fmt.Sprintf("转换数据%s出错", inputPath))
	}
	return result, nil
}

func (d *dataTransformationImpl) load(path string) (dataframe.DataFrame, error) {
	df, err := d.loader.Load(path)
	if err != nil {
		return dataframe.DataFrame{}, core.NewTransformationError(core.StageLoad, err, "")
	}
	if df.Nrow() == 0 {
		return dataframe.DataFrame{}, core.NewTransformationError(core.StageValidate,
			fmt.Errorf("数据文件%s没有任何行", path), "")
	}
	return df, nil
}

func (d *dataTransformationImpl) split(df dataframe.DataFrame, name string) (*splitData, error) {
	if err := dataset.RequireColumns(df, d.config.Schema.AllColumns()); err != nil {
		return nil, core.NewTransformationError(core.StageValidate, err, fmt.Sprintf("%s不符合schema", name))
	}

	inputs, target, err := dataset.SplitTarget(df, d.config.Schema.TargetColumn)
	if err != nil {
		return nil, core.NewTransformationError(core.StageValidate, err, fmt.Sprintf("分离%s目标列出错", name))
	}
	return &splitData{inputs: inputs, target: target}, nil
}

// appendTarget 将目标列追加为矩阵的最后一列
func appendTarget(features *mat.Dense, target []float64) *mat.Dense {
	rows, _ := features.Dims()
	result := &mat.Dense{}
	result.Augment(features, mat.NewDense(rows, 1, target))
	return result
}
