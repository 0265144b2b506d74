package report

// 报告字段名，与表单提交的 key 一致。
const (
	FieldReportNo    = "report_no"
	FieldTestDate    = "test_date"
	FieldCINo        = "ci_no"
	FieldOrderQty    = "order_qty"
	FieldBrand       = "brand"
	FieldProducedQty = "produced_qty"
	FieldStyleNo     = "style_no"
	FieldFactory     = "factory"
	FieldSales       = "sales"

	FieldPassResult    = "pass_result"
	FieldFailResult    = "fail_result"
	FieldAcceptResult  = "accept_result"
	FieldVerifiedBy    = "verified_by"
	FieldTestingPerson = "testing_person"
)

// 粘合测试的部位，字段名为 flat_shoe_<part>_result 与 high_heel_<part>_result。
var adhesiveParts = []string{"toe", "forepart", "waist", "heel"}

// 配件测试按两列成对排布，字段名为 <item>_result 与 <item>_comments。
var componentPairs = [][2]string{
	{"buckle", "top_lift"},
	{"strap", "loop"},
	{"eyelet", "toe_post"},
	{"studs", "zipper"},
	{"diamond", "perment_set"},
}

// 防锈测试两行，字段名为 rust_<item>_result。
var rustPairs = [][2]string{
	{"buckle", "eyelet"},
	{"strap", "studs"},
}

// 单项结果表（弯曲/耐磨/阻力/硬度）的行定义。
type resultItem struct {
	field    string // 字段前缀，<field>_result / <field>_comments
	label    string // 文本表 key
	standard string // 标准文本 key，为空表示无标准
	small    bool   // 标准文本较长，使用小号字
}

var (
	flexingItems = []resultItem{
		{field: "upper_flex", label: "upper", standard: "upper_std"},
		{field: "shoe_flex", label: "shoe_flex", standard: "shoe_flex_std"},
		{field: "foxing", label: "foxing", standard: "foxing_std"},
	}
	abrasionItems = []resultItem{
		{field: "top_lift_abrasion", label: "top_lift_abrasion"},
		{field: "outsole_abrasion", label: "outsole_abrasion", standard: "outsole_abrasion_std", small: true},
	}
	resistanceItems = []resultItem{
		{field: "outsole_resistance", label: "outsole_resistance"},
		{field: "heel_fatigue", label: "heel_fatigue", standard: "heel_fatigue_std", small: true},
	}
	hardnessItems = []resultItem{
		{field: "eva_hardness", label: "eva_hardness"},
		{field: "outsole_hardness", label: "outsole_hardness"},
	}
)

// 各字段在报告中的最大显示长度（按字符计）。
const (
	limitID          = 15
	limitQty         = 10
	limitFactory     = 20
	limitAdhesive    = 8
	limitComponent   = 8
	limitComponentNo = 12
	limitRust        = 10
	limitResult      = 10
	limitComments    = 30
	limitConclusion  = 35
	limitSignature   = 20
)

func resultKey(prefix string) string   { return prefix + "_result" }
func commentsKey(prefix string) string { return prefix + "_comments" }

// FieldKeys 返回报告读取的全部字段名，供 CLI 的 -fields 输出字段模板。
func FieldKeys() []string {
	keys := []string{
		FieldReportNo, FieldTestDate, FieldCINo, FieldOrderQty, FieldBrand,
		FieldProducedQty, FieldStyleNo, FieldFactory, FieldSales,
	}
	for _, part := range adhesiveParts {
		keys = append(keys, resultKey("flat_shoe_"+part), resultKey("high_heel_"+part))
	}
	for _, pair := range componentPairs {
		for _, item := range pair {
			keys = append(keys, resultKey(item), commentsKey(item))
		}
	}
	for _, pair := range rustPairs {
		for _, item := range pair {
			keys = append(keys, resultKey("rust_"+item))
		}
	}
	for _, group := range [][]resultItem{flexingItems, abrasionItems, resistanceItems, hardnessItems} {
		for _, it := range group {
			keys = append(keys, resultKey(it.field), commentsKey(it.field))
		}
	}
	return append(keys, FieldPassResult, FieldFailResult, FieldAcceptResult, FieldVerifiedBy, FieldTestingPerson)
}
