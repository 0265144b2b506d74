package locale

import "strings"

// City 是测试地点目录中的一项：英文规范名与中文名。
type City struct {
	Name  string `json:"name" yaml:"name"`
	Local string `json:"local" yaml:"local"`
}

// DefaultCity 为未指定测试地点时使用的城市。
const DefaultCity = "Shanghai"

var cities = []City{
	{"Guangzhou", "广州"},
	{"Shenzhen", "深圳"},
	{"Dongguan", "东莞"},
	{"Foshan", "佛山"},
	{"Zhongshan", "中山"},
	{"Huizhou", "惠州"},
	{"Zhuhai", "珠海"},
	{"Jiangmen", "江门"},
	{"Zhaoqing", "肇庆"},
	{"Shanghai", "上海"},
	{"Beijing", "北京"},
	{"Suzhou", "苏州"},
	{"Hangzhou", "杭州"},
	{"Ningbo", "宁波"},
	{"Wenzhou", "温州"},
	{"Wuhan", "武汉"},
	{"Chengdu", "成都"},
	{"Chongqing", "重庆"},
	{"Tianjin", "天津"},
	{"Nanjing", "南京"},
	{"Xi'an", "西安"},
	{"Qingdao", "青岛"},
	{"Dalian", "大连"},
	{"Shenyang", "沈阳"},
	{"Changsha", "长沙"},
	{"Zhengzhou", "郑州"},
	{"Jinan", "济南"},
	{"Harbin", "哈尔滨"},
	{"Changchun", "长春"},
	{"Taiyuan", "太原"},
	{"Shijiazhuang", "石家庄"},
	{"Lanzhou", "兰州"},
	{"Xiamen", "厦门"},
	{"Fuzhou", "福州"},
	{"Nanning", "南宁"},
	{"Kunming", "昆明"},
	{"Guiyang", "贵阳"},
	{"Haikou", "海口"},
	{"Ürümqi", "乌鲁木齐"},
	{"Lhasa", "拉萨"},
}

// Cities 返回目录顺序的城市列表副本。
func Cities() []City {
	out := make([]City, len(cities))
	copy(out, cities)
	return out
}

// LookupCity 按英文名查找城市（不区分大小写）。
func LookupCity(name string) (City, bool) {
	name = strings.TrimSpace(name)
	for _, c := range cities {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return City{}, false
}

// LocationDisplay 返回页脚与标题区使用的地点文本。
// 英文报告只显示英文名；中文报告在中文名确实含汉字时追加 "(中文名)"。
func LocationDisplay(city string, lang Language) string {
	c, ok := LookupCity(city)
	if !ok {
		return strings.TrimSpace(city)
	}
	if lang != Chinese || !containsHan(c.Local) {
		return c.Name
	}
	return c.Name + " (" + c.Local + ")"
}

func containsHan(s string) bool {
	for _, r := range s {
		if r >= '\u4e00' && r <= '\u9fff' {
			return true
		}
	}
	return false
}
