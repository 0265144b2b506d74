// Package fonts 负责查找中文字体，并提供内置的拉丁字体作为兜底。
package fonts

import (
	"github.com/tdewolff/canvas"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Handle 是一份可直接交给渲染器的字体数据。
type Handle struct {
	Name     string
	Data     []byte
	Index    int  // 字体集合（ttc）中的序号
	Fallback bool // 中文字体全部不可用、退回拉丁字体时为 true
}

// Latin 返回默认正文字体 Go Regular。
func Latin() Handle {
	return Handle{Name: "Go Regular", Data: goregular.TTF}
}

// LatinBold 返回默认粗体 Go Bold。
func LatinBold() Handle {
	return Handle{Name: "Go Bold", Data: gobold.TTF}
}

// Validate 检查字体数据能否被渲染器加载。
func Validate(data []byte, index int) error {
	family := canvas.NewFontFamily("probe")
	return family.LoadFont(data, index, canvas.FontRegular)
}
