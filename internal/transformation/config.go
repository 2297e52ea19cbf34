package transformation

import (
	"encoding/json"
	"fmt"
	"github.com/packagewjx/feature-transformer/internal/artifact"
	"github.com/packagewjx/feature-transformer/internal/registry"
	"github.com/packagewjx/feature-transformer/pkg/core"
	"github.com/spf13/afero"
	"log"
	"os"
)

type Config struct {
	Schema       *core.Schema       // 参与转换的列，为空时使用DefaultSchema
	ArtifactPath string             // 预处理对象保存的位置，默认为artifacts/preprocessor.json
	Fs           afero.Fs           `json:"-"` // 读取数据与写入文件使用的文件系统，默认为操作系统的文件系统
	Registry     registry.UpdateDao `json:"-"` // 若不为空，保存后登记预处理对象
	Logger       *log.Logger        `json:"-"`
}

func (c Config) String() string {
	marshal, _ := json.Marshal(c)
	return string(marshal)
}

func (c *Config) Complete() error {
	if c.Schema == nil {
		c.Schema = core.DefaultSchema()
	}
	if err := c.Schema.Validate(); err != nil {
		return err
	}

	if c.ArtifactPath == "" {
		c.ArtifactPath = artifact.DefaultPath
	}
	if c.Fs == nil {
		c.Fs = afero.NewOsFs()
	}
	if c.Logger == nil {
		c.Logger = log.New(os.Stdout, "data transformation: ", log.LstdFlags|log.Lshortfile|log.Lmsgprefix)
	}

	if info, err := c.Fs.Stat(c.ArtifactPath); err == nil && info.IsDir() {
		return fmt.Errorf("预处理对象保存路径%s是一个目录", c.ArtifactPath)
	}

	return nil
}
