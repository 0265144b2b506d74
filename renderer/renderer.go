package renderer

import "github.com/ByLCY/labreport/layout"

// Renderer 将分页后的布局结果输出为最终文件（目前为 PDF）。
// Render 返回生成的二进制数据以及可能的错误，出错时不返回部分数据。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}
