package fonts

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Candidate 是一个候选中文字体：显示名称、按优先级排列的文件名与集合序号。
type Candidate struct {
	Name  string   `yaml:"name" json:"name"`
	Files []string `yaml:"files" json:"files"`
	Index int      `yaml:"index" json:"index"`
}

// DefaultCandidates 返回默认的中文字体候选顺序：Noto Sans SC、宋体、微软雅黑。
func DefaultCandidates() []Candidate {
	return []Candidate{
		{Name: "Noto Sans SC", Files: []string{"NotoSansSC-Regular.ttf", "NotoSansSC-Regular.otf", "NotoSansCJK-Regular.ttc", "NotoSansCJKsc-Regular.otf"}},
		{Name: "SimSun", Files: []string{"simsun.ttc", "simsun.ttf"}},
		{Name: "Microsoft YaHei", Files: []string{"msyh.ttc", "msyh.ttf"}},
	}
}

// DefaultDirs 返回当前操作系统的常见字体目录。
func DefaultDirs() []string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "windows":
		dirs := []string{filepath.Join(os.Getenv("WINDIR"), "Fonts")}
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			dirs = append(dirs, filepath.Join(local, "Microsoft", "Windows", "Fonts"))
		}
		return dirs
	case "darwin":
		return []string{"/System/Library/Fonts", "/Library/Fonts", filepath.Join(home, "Library", "Fonts")}
	default:
		return []string{"/usr/share/fonts", "/usr/local/share/fonts", filepath.Join(home, ".fonts"), filepath.Join(home, ".local", "share", "fonts")}
	}
}

// Resolver 按候选顺序查找第一个可用的中文字体，结果只计算一次。
type Resolver struct {
	dirs       []string
	candidates []Candidate
	logger     *zap.Logger

	mu       sync.Mutex
	resolved *Handle
}

// NewResolver 创建解析器；dirs 或 candidates 为空时使用默认值。
func NewResolver(dirs []string, candidates []Candidate, logger *zap.Logger) *Resolver {
	if len(dirs) == 0 {
		dirs = DefaultDirs()
	}
	if len(candidates) == 0 {
		candidates = DefaultCandidates()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{dirs: dirs, candidates: candidates, logger: logger}
}

// ResolveChinese 返回第一个能成功加载的候选字体；全部失败时返回 Latin() 且 Fallback 为 true。
func (r *Resolver) ResolveChinese() Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.resolved != nil {
		return *r.resolved
	}
	h := r.resolve()
	r.resolved = &h
	return h
}

func (r *Resolver) resolve() Handle {
	found := r.scan()
	for _, c := range r.candidates {
		for _, file := range c.Files {
			path := file
			if !filepath.IsAbs(file) {
				p, ok := found[strings.ToLower(filepath.Base(file))]
				if !ok {
					continue
				}
				path = p
			}
			data, err := os.ReadFile(path)
			if err != nil {
				r.logger.Debug("[Fonts] Candidate unreadable",
					zap.String("font", c.Name),
					zap.String("path", path),
					zap.Error(err),
				)
				continue
			}
			if err := Validate(data, c.Index); err != nil {
				r.logger.Debug("[Fonts] Candidate rejected",
					zap.String("font", c.Name),
					zap.String("path", path),
					zap.Error(err),
				)
				continue
			}
			r.logger.Info("[Fonts] Chinese font registered",
				zap.String("font", c.Name),
				zap.String("path", path),
				zap.Int("index", c.Index),
			)
			return Handle{Name: c.Name, Data: data, Index: c.Index}
		}
	}

	r.logger.Warn("[Fonts] No Chinese font available, falling back to Latin font",
		zap.Int("candidates", len(r.candidates)),
		zap.Strings("dirs", r.dirs),
	)
	h := Latin()
	h.Fallback = true
	return h
}

// scan 在字体目录中查找候选文件名（不区分大小写），同名文件以先找到的为准。
func (r *Resolver) scan() map[string]string {
	wanted := map[string]bool{}
	for _, c := range r.candidates {
		for _, f := range c.Files {
			if !filepath.IsAbs(f) {
				wanted[strings.ToLower(filepath.Base(f))] = true
			}
		}
	}
	found := map[string]string{}
	if len(wanted) == 0 {
		return found
	}
	for _, dir := range r.dirs {
		if dir == "" {
			continue
		}
		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			name := strings.ToLower(d.Name())
			if wanted[name] {
				if _, ok := found[name]; !ok {
					found[name] = path
				}
			}
			return nil
		})
	}
	return found
}
