package transformation

import (
	"fmt"
	"github.com/packagewjx/feature-transformer/internal/artifact"
	"github.com/packagewjx/feature-transformer/internal/registry"
	"github.com/packagewjx/feature-transformer/internal/utils"
	"github.com/packagewjx/feature-transformer/pkg/core"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"io/ioutil"
	"log"
	"strings"
	"testing"
)

var (
	genders    = []string{"female", "male"}
	ethnicity  = []string{"group A", "group B", "group C", "group D", "group E"}
	educations = []string{"associate's degree", "bachelor's degree", "high school", "master's degree",
		"some college", "some high school"}
	lunches = []string{"free/reduced", "standard"}
	courses = []string{"completed", "none"}
)

const header = "gender,race_ethnicity,parental_level_of_education,lunch,test_preparation_course,math_score," +
	"reading_score,writing_score"

type row struct {
	gender, race, education, lunch, course string
	math, reading, writing                 string
}

func (r row) String() string {
	quote := func(s string) string {
		if strings.ContainsAny(s, ",'") {
			return `"` + s + `"`
		}
		return s
	}
	return strings.Join([]string{quote(r.gender), quote(r.race), quote(r.education), quote(r.lunch),
		quote(r.course), r.math, r.reading, r.writing}, ",")
}

// generateRows 生成的行覆盖所有类别
func generateRows(n, offset int) []row {
	rows := make([]row, n)
	for k := 0; k < n; k++ {
		i := k + offset
		rows[k] = row{
			gender:    genders[i%len(genders)],
			race:      ethnicity[i%len(ethnicity)],
			education: educations[i%len(educations)],
			lunch:     lunches[(i/2)%len(lunches)],
			course:    courses[(i/3)%len(courses)],
			math:      fmt.Sprintf("%d", 40+(i*13)%60),
			reading:   fmt.Sprintf("%d", 50+(i*7)%50),
			writing:   fmt.Sprintf("%d", 45+(i*11)%55),
		}
	}
	return rows
}

func toCsv(rows []row) string {
	builder := &strings.Builder{}
	builder.WriteString(header + "\n")
	for _, r := range rows {
		builder.WriteString(r.String() + "\n")
	}
	return builder.String()
}

type fakeRegistry struct {
	records []*registry.ArtifactRecord
	err     error
}

func (f *fakeRegistry) SaveArtifact(r *registry.ArtifactRecord) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, r)
	return nil
}

func newTransformation(t *testing.T, fs afero.Fs, files map[string]string) DataTransformation {
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0644))
	}
	d, err := NewDataTransformation(&Config{
		Fs:     fs,
		Logger: log.New(ioutil.Discard, "", 0),
	})
	require.NoError(t, err)
	return d
}

func featureIndex(names []string, prefix string) []int {
	result := make([]int, 0)
	for i, name := range names {
		if strings.HasPrefix(name, prefix) {
			result = append(result, i)
		}
	}
	return result
}

func TestInitiateDataTransformation(t *testing.T) {
	trainRows := generateRows(100, 0)
	testRows := generateRows(20, 100)
	fs := afero.NewMemMapFs()
	d := newTransformation(t, fs, map[string]string{
		"data/train.csv": toCsv(trainRows),
		"data/test.csv":  toCsv(testRows),
	})

	result, err := d.InitiateDataTransformation("data/train.csv", "data/test.csv")
	require.NoError(t, err)

	// 2个数值列，2+5+6+2+2个独热列，加上目标列
	rows, cols := result.Train.Dims()
	assert.Equal(t, 100, rows)
	assert.Equal(t, 20, cols)
	rows, cols = result.Test.Dims()
	assert.Equal(t, 20, rows)
	assert.Equal(t, 20, cols)
	assert.Equal(t, 19, len(result.FeatureNames))
	assert.Equal(t, []string{"writing_score", "reading_score"}, result.FeatureNames[:2])
	assert.Equal(t, "gender_female", result.FeatureNames[2])
	assert.Equal(t, 5, len(featureIndex(result.FeatureNames, "race_ethnicity_")))
	assert.Equal(t, 6, len(featureIndex(result.FeatureNames, "parental_level_of_education_")))

	// 最后一列是原始目标值，行序不变
	for i, r := range trainRows {
		assert.Equal(t, r.math, fmt.Sprintf("%.0f", result.Train.At(i, 19)))
	}
	for i, r := range testRows {
		assert.Equal(t, r.math, fmt.Sprintf("%.0f", result.Test.At(i, 19)))
	}

	assert.Equal(t, artifact.DefaultPath, result.ArtifactPath)
	a, err := artifact.Read(fs, result.ArtifactPath)
	require.NoError(t, err)
	assert.Equal(t, result.ArtifactId, a.Id)
	assert.Equal(t, result.FeatureNames, a.FeatureNames)
	assert.True(t, a.Schema.Equal(core.DefaultSchema()))
}

func TestNoLeakageFromTestSet(t *testing.T) {
	trainCsv := toCsv(generateRows(100, 0))
	testRows := generateRows(20, 100)

	perturbed := append([]row{}, testRows...)
	perturbed[0].reading = "100000"
	perturbed[1].writing = "-5000"
	perturbed[2].race = "group Z"
	perturbed[3].education = "doctorate"
	perturbed = append(perturbed, row{"other", "group Y", "none", "premium", "partial", "1", "", ""})

	fs1 := afero.NewMemMapFs()
	result1, err := newTransformation(t, fs1, map[string]string{
		"train.csv": trainCsv,
		"test.csv":  toCsv(testRows),
	}).InitiateDataTransformation("train.csv", "test.csv")
	require.NoError(t, err)

	fs2 := afero.NewMemMapFs()
	result2, err := newTransformation(t, fs2, map[string]string{
		"train.csv": trainCsv,
		"test.csv":  toCsv(perturbed),
	}).InitiateDataTransformation("train.csv", "test.csv")
	require.NoError(t, err)

	assert.True(t, mat.Equal(result1.Train, result2.Train))
	assert.Equal(t, result1.FeatureNames, result2.FeatureNames)

	a1, err := artifact.Read(fs1, result1.ArtifactPath)
	require.NoError(t, err)
	a2, err := artifact.Read(fs2, result2.ArtifactPath)
	require.NoError(t, err)
	assert.Equal(t, a1.State, a2.State)

	// 未受影响的测试行转换结果一致，宽度不变
	_, cols := result2.Test.Dims()
	assert.Equal(t, 20, cols)
	for i := 4; i < len(testRows); i++ {
		assert.Equal(t, mat.Row(nil, i, result1.Test), mat.Row(nil, i, result2.Test))
	}
}

func TestUnseenCategory(t *testing.T) {
	testRows := generateRows(5, 100)
	testRows[0].race = "group Z"
	d := newTransformation(t, afero.NewMemMapFs(), map[string]string{
		"train.csv": toCsv(generateRows(100, 0)),
		"test.csv":  toCsv(testRows),
	})

	result, err := d.InitiateDataTransformation("train.csv", "test.csv")
	require.NoError(t, err)

	block := featureIndex(result.FeatureNames, "race_ethnicity_")
	assert.Equal(t, 5, len(block))
	for _, j := range block {
		assert.Equal(t, 0.0, result.Test.At(0, j))
	}

	// 其它行恰好有一个指示列不为0
	for i := 1; i < len(testRows); i++ {
		nonZero := 0
		for _, j := range block {
			if result.Test.At(i, j) != 0 {
				nonZero++
			}
		}
		assert.Equal(t, 1, nonZero)
	}
}

func TestImputationUsesTrainingStatistics(t *testing.T) {
	trainRows := generateRows(100, 0)
	trainRows[3].writing = ""
	trainRows[10].writing = "NA"
	trainRows[7].lunch = ""

	fs := afero.NewMemMapFs()
	d := newTransformation(t, fs, map[string]string{
		"train.csv": toCsv(trainRows),
		"test.csv":  toCsv(generateRows(20, 100)),
	})
	result, err := d.InitiateDataTransformation("train.csv", "test.csv")
	require.NoError(t, err)

	a, err := artifact.Read(fs, result.ArtifactPath)
	require.NoError(t, err)

	valid := make([]float64, 0)
	for i, r := range trainRows {
		if i == 3 || i == 10 {
			continue
		}
		var f float64
		_, err := fmt.Sscanf(r.writing, "%g", &f)
		require.NoError(t, err)
		valid = append(valid, f)
	}
	writing := a.State.Numerical[0]
	assert.Equal(t, "writing_score", writing.Column)
	assert.Equal(t, utils.Median(valid), writing.Median)

	expected := (writing.Median - writing.Mean) / writing.Scale
	assert.Equal(t, expected, result.Train.At(3, 0))
	assert.Equal(t, expected, result.Train.At(10, 0))

	// lunch的众数
	counts := map[string]int{}
	for i, r := range trainRows {
		if i != 7 {
			counts[r.lunch]++
		}
	}
	lunch := a.State.Categorical[3]
	assert.Equal(t, "lunch", lunch.Column)
	mode := lunch.MostFrequent
	for v, n := range counts {
		assert.True(t, counts[mode] > n || (counts[mode] == n && mode <= v))
	}

	block := featureIndex(result.FeatureNames, "lunch_")
	for k, j := range block {
		if lunch.Categories[k] == mode {
			assert.Equal(t, 1/lunch.Scale[k], result.Train.At(7, j))
		} else {
			assert.Equal(t, 0.0, result.Train.At(7, j))
		}
	}
}

func TestApplyReproducesTestMatrix(t *testing.T) {
	fs := afero.NewMemMapFs()
	d := newTransformation(t, fs, map[string]string{
		"train.csv": toCsv(generateRows(100, 0)),
		"test.csv":  toCsv(generateRows(20, 100)),
	})
	result, err := d.InitiateDataTransformation("train.csv", "test.csv")
	require.NoError(t, err)

	// 另一个进程重新加载
	other, err := NewDataTransformation(&Config{Fs: fs, Logger: log.New(ioutil.Discard, "", 0)})
	require.NoError(t, err)
	features, err := other.Apply(result.ArtifactPath, "test.csv")
	require.NoError(t, err)

	rows, cols := result.Test.Dims()
	assert.True(t, mat.Equal(result.Test.Slice(0, rows, 0, cols-1), features))

	/*
		推理数据不含目标列
	*/
	require.NoError(t, afero.WriteFile(fs, "new.csv", []byte(
		"gender,race_ethnicity,parental_level_of_education,lunch,test_preparation_course,reading_score,writing_score\n"+
			"female,group B,master's degree,standard,none,80,\n"), 0644))
	features, err = other.Apply(result.ArtifactPath, "new.csv")
	require.NoError(t, err)
	rows, cols = features.Dims()
	assert.Equal(t, 1, rows)
	assert.Equal(t, 19, cols)

	_, err = other.Apply("none.json", "new.csv")
	assert.Equal(t, core.StageLoad, core.StageOf(err))

	require.NoError(t, afero.WriteFile(fs, "partial.csv", []byte("gender,lunch\nfemale,standard\n"), 0644))
	_, err = other.Apply(result.ArtifactPath, "partial.csv")
	assert.Equal(t, core.StageValidate, core.StageOf(err))
}

func TestInitiateDataTransformationErrors(t *testing.T) {
	trainCsv := toCsv(generateRows(30, 0))
	testCsv := toCsv(generateRows(10, 30))

	badNumber := generateRows(10, 30)
	badNumber[2].reading = "eighty"
	badTrain := generateRows(30, 0)
	badTrain[5].writing = "n/a"

	fs := afero.NewMemMapFs()
	d := newTransformation(t, fs, map[string]string{
		"train.csv":      trainCsv,
		"test.csv":       testCsv,
		"bad_number.csv": toCsv(badNumber),
		"bad_train.csv":  toCsv(badTrain),
		"no_target.csv":  "gender,race_ethnicity,parental_level_of_education,lunch,test_preparation_course,reading_score,writing_score\nfemale,group A,high school,standard,none,1,2\n",
	})

	cases := []struct {
		train, test string
		stage       core.Stage
	}{
		{"none.csv", "test.csv", core.StageLoad},
		{"train.csv", "none.csv", core.StageLoad},
		{"train.csv", "no_target.csv", core.StageValidate},
		{"bad_train.csv", "test.csv", core.StageFit},
		{"train.csv", "bad_number.csv", core.StageTransform},
	}
	for _, c := range cases {
		result, err := d.InitiateDataTransformation(c.train, c.test)
		assert.Nil(t, result)
		assert.Error(t, err)
		assert.Equal(t, c.stage, core.StageOf(err), "%s %s: %v", c.train, c.test, err)
		_, ok := err.(*core.TransformationError)
		assert.True(t, ok)
	}

	// 失败的运行不留下预处理对象
	exists, err := afero.Exists(fs, artifact.DefaultPath)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPersistAndRegisterErrors(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(base, "train.csv", []byte(toCsv(generateRows(30, 0))), 0644))
	require.NoError(t, afero.WriteFile(base, "test.csv", []byte(toCsv(generateRows(10, 30))), 0644))

	d, err := NewDataTransformation(&Config{
		Fs:     afero.NewReadOnlyFs(base),
		Logger: log.New(ioutil.Discard, "", 0),
	})
	require.NoError(t, err)
	_, err = d.InitiateDataTransformation("train.csv", "test.csv")
	assert.Equal(t, core.StagePersist, core.StageOf(err))

	reg := &fakeRegistry{}
	d, err = NewDataTransformation(&Config{
		Fs:           base,
		ArtifactPath: "out/model/preprocessor.json",
		Registry:     reg,
		Logger:       log.New(ioutil.Discard, "", 0),
	})
	require.NoError(t, err)
	result, err := d.InitiateDataTransformation("train.csv", "test.csv")
	require.NoError(t, err)
	assert.Equal(t, "out/model/preprocessor.json", result.ArtifactPath)
	require.Equal(t, 1, len(reg.records))
	assert.Equal(t, result.ArtifactId, reg.records[0].ArtifactId)
	assert.Equal(t, 30, reg.records[0].TrainRows)
	assert.Equal(t, 10, reg.records[0].TestRows)
	assert.Equal(t, len(result.FeatureNames), reg.records[0].NumFeatures)
	assert.Equal(t, artifact.FormatVersion, reg.records[0].FormatVersion)

	reg.err = fmt.Errorf("数据库不可用")
	failed, err := d.InitiateDataTransformation("train.csv", "test.csv")
	assert.Nil(t, failed)
	assert.Equal(t, core.StageRegister, core.StageOf(err))

	// 登记失败时已有的预处理对象保持不变，也不留下临时文件
	a, err := artifact.Read(base, "out/model/preprocessor.json")
	require.NoError(t, err)
	assert.Equal(t, result.ArtifactId, a.Id)
	exists, err := afero.Exists(base, "out/model/preprocessor.json.tmp")
	require.NoError(t, err)
	assert.False(t, exists)

	d, err = NewDataTransformation(&Config{
		Fs:           base,
		ArtifactPath: "fresh/preprocessor.json",
		Registry:     reg,
		Logger:       log.New(ioutil.Discard, "", 0),
	})
	require.NoError(t, err)
	_, err = d.InitiateDataTransformation("train.csv", "test.csv")
	assert.Equal(t, core.StageRegister, core.StageOf(err))
	exists, err = afero.Exists(base, "fresh/preprocessor.json")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestNewDataTransformation(t *testing.T) {
	config := &Config{Fs: afero.NewMemMapFs()}
	_, err := NewDataTransformation(config)
	require.NoError(t, err)
	assert.Equal(t, artifact.DefaultPath, config.ArtifactPath)
	assert.True(t, config.Schema.Equal(core.DefaultSchema()))
	assert.NotNil(t, config.Logger)
	assert.NotEmpty(t, config.String())

	_, err = NewDataTransformation(&Config{
		Fs: afero.NewMemMapFs(),
		Schema: &core.Schema{
			NumericalColumns: []string{"math_score"},
			TargetColumn:     "math_score",
		},
	})
	assert.Equal(t, core.StageBuild, core.StageOf(err))

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("artifacts/preprocessor.json", 0755))
	_, err = NewDataTransformation(&Config{Fs: fs})
	assert.Error(t, err)
}
