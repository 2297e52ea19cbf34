package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"github.com/google/uuid"
	"github.com/packagewjx/feature-transformer/internal/preprocess"
	"github.com/packagewjx/feature-transformer/internal/utils"
	"github.com/packagewjx/feature-transformer/pkg/core"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"os"
	"path/filepath"
	"time"
)

const (
	Kind          = "column-transformer"
	FormatVersion = 1
)

const (
	DefaultDir      = "artifacts"
	DefaultFileName = "preprocessor.json"
)

var DefaultPath = filepath.Join(DefaultDir, DefaultFileName)

// Artifact 持久化的预处理对象。Kind与Version在读取时校验，版本不一致的文件拒绝加载
type Artifact struct {
	Kind         string                  `json:"kind"`
	Version      int                     `json:"version"`
	Id           string                  `json:"id"`
	CreatedAt    time.Time               `json:"createdAt"`
	Schema       core.Schema             `json:"schema"`
	FeatureNames []string                `json:"featureNames"`
	State        *preprocess.FittedState `json:"state"`
}

// SaveResult 写入完成后的文件信息
type SaveResult struct {
	Id       string
	Path     string
	Checksum string
	Size     uint64
}

// Pending 已写入临时文件、尚未发布的预处理对象
type Pending struct {
	fs     afero.Fs
	tmp    string
	result *SaveResult
}

// Save 先写入临时文件，再重命名到目标路径，失败时目标路径保持原样
func Save(fs afero.Fs, path string, transformer *preprocess.ColumnTransformer) (*SaveResult, error) {
	pending, err := Prepare(fs, path, transformer)
	if err != nil {
		return nil, err
	}
	if err := pending.Publish(); err != nil {
		return nil, err
	}
	return pending.Result(), nil
}

// Prepare 将预处理对象写入path.tmp。调用者之后必须调用Publish或Discard之一
func Prepare(fs afero.Fs, path string, transformer *preprocess.ColumnTransformer) (*Pending, error) {
	state, err := transformer.Snapshot()
	if err != nil {
		return nil, errors.Wrap(err, "导出预处理对象参数出错")
	}

	a := &Artifact{
		Kind:         Kind,
		Version:      FormatVersion,
		Id:           uuid.New().String(),
		CreatedAt:    time.Now().UTC(),
		Schema:       state.Schema,
		FeatureNames: transformer.FeatureNames(),
		State:        state,
	}
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "序列化预处理对象出错")
	}

	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("创建目录%s出错", dir))
	}

	tmp := path + ".tmp"
	size, err := writeFile(fs, tmp, data)
	if err != nil {
		_ = fs.Remove(tmp)
		return nil, errors.Wrap(err, fmt.Sprintf("写入临时文件%s出错", tmp))
	}

	sum := sha256.Sum256(data)
	return &Pending{
		fs:  fs,
		tmp: tmp,
		result: &SaveResult{
			Id:       a.Id,
			Path:     path,
			Checksum: hex.EncodeToString(sum[:]),
			Size:     size,
		},
	}, nil
}

// Result 发布后文件的信息，发布前即可读取
func (p *Pending) Result() *SaveResult {
	return p.result
}

// Publish 将临时文件重命名到目标路径
func (p *Pending) Publish() error {
	if err := p.fs.Rename(p.tmp, p.result.Path); err != nil {
		_ = p.fs.Remove(p.tmp)
		return errors.Wrap(err, fmt.Sprintf("发布文件%s出错", p.result.Path))
	}
	return nil
}

// Discard 删除临时文件，目标路径不受影响
func (p *Pending) Discard() {
	_ = p.fs.Remove(p.tmp)
}

func writeFile(fs afero.Fs, name string, data []byte) (uint64, error) {
	fout, err := fs.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return 0, err
	}
	counter := &utils.WriterCounter{Writer: fout}
	_, err = counter.Write(data)
	if err != nil {
		_ = fout.Close()
		return counter.Count, err
	}
	if counter.Count != uint64(len(data)) {
		_ = fout.Close()
		return counter.Count, errors.New("输出不足")
	}
	if err := fout.Sync(); err != nil {
		_ = fout.Close()
		return counter.Count, err
	}
	return counter.Count, fout.Close()
}

// Read 读取并校验文件，不重建预处理对象
func Read(fs afero.Fs, path string) (*Artifact, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("读取文件%s出错", path))
	}

	a := &Artifact{}
	if err := json.Unmarshal(data, a); err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("解析文件%s出错", path))
	}
	if err := a.Validate(); err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("文件%s校验失败", path))
	}
	return a, nil
}

// Load 读取文件并重建一个已拟合的预处理对象
func Load(fs afero.Fs, path string) (*preprocess.ColumnTransformer, *Artifact, error) {
	a, err := Read(fs, path)
	if err != nil {
		return nil, nil, err
	}

	transformer, err := preprocess.Restore(a.State)
	if err != nil {
		return nil, nil, errors.Wrap(err, fmt.Sprintf("由文件%s重建预处理对象出错", path))
	}
	return transformer, a, nil
}

func (a *Artifact) Validate() error {
	if a.Kind != Kind {
		return fmt.Errorf("文件类型为%q，应为%q", a.Kind, Kind)
	}
	if a.Version != FormatVersion {
		return fmt.Errorf("不支持的文件版本%d，当前版本为%d", a.Version, FormatVersion)
	}
	if a.State == nil {
		return fmt.Errorf("文件中没有拟合参数")
	}
	if !a.Schema.Equal(&a.State.Schema) {
		return fmt.Errorf("文件记录的schema[%v]与拟合参数的schema[%v]不一致", a.Schema, a.State.Schema)
	}
	return a.State.Validate()
}
