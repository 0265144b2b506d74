// Package locale 保存报告使用的双语固定文本、测试地点目录与界面标签。
//
// 报告正文只从这里取词，不经过机器翻译，保证测试标准用语前后一致。
package locale

import (
	"fmt"
	"sort"
	"strings"
)

// Language 表示报告或界面语言。
type Language string

const (
	English Language = "en"
	Chinese Language = "zh"
)

// ParseLanguage 接受 en/english/zh/chinese/mandarin 等写法（不区分大小写）。
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "en", "eng", "english":
		return English, nil
	case "zh", "cn", "zh-cn", "chinese", "mandarin":
		return Chinese, nil
	default:
		return "", fmt.Errorf("不支持的语言：%q", s)
	}
}

// String implements fmt.Stringer.
func (l Language) String() string { return string(l) }

// Resolve 返回 key 在指定语言下的固定文本；未收录的 key 原样返回。
func Resolve(key string, lang Language) string {
	table := englishTexts
	if lang == Chinese {
		table = chineseTexts
	}
	if v, ok := table[key]; ok {
		return v
	}
	return key
}

// Keys 返回报告文本表中的全部 key（已排序）。
func Keys() []string {
	keys := make([]string, 0, len(englishTexts))
	for k := range englishTexts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var englishTexts = map[string]string{
	"company":        "GRAND STEP (H.K.) LTD",
	"title":          "PHYSICAL TEST REPORT",
	"running_header": "GRAND STEP PHYSICAL TEST REPORT",
	"test_location":  "Test Location:",
	"report_date":    "Report Date:",
	"page":           "Page",

	"basic_info":      "1. BASIC INFORMATION",
	"adhesive_test":   "2. ADHESIVE/PULL TEST",
	"components_test": "3. COMPONENTS PHYSICAL TEST",
	"flexing_test":    "4. FLEXING TEST",
	"abrasion_test":   "5. ABRASION TEST",
	"resistance_test": "6. RESISTANCE TEST",
	"hardness_test":   "7. HARDNESS TEST",
	"conclusion":      "8. CONCLUSION",
	"rust_test":       "RUST TEST",

	"report_no":      "Report No.:",
	"date_no":        "Date/No.:",
	"ci_no":          "CI / Order No.:",
	"order_qty":      "Order QTY:",
	"brand":          "Brand:",
	"produced_qty":   "Produced QTY:",
	"style_no":       "Style No.:",
	"factory_trader": "Factory/Trader:",
	"sales":          "Sales:",

	"standard_note": "Note: This is Grand Step Company Standard only. Any priority should follow Customer or 3rd Lab Standard",

	"flat_shoe":     "Flat Shoe",
	"high_heel":     "High Heel",
	"sole_wedge":    "Sole/Wedge",
	"toe":           "Toe",
	"forepart":      "Forepart",
	"waist":         "Waist",
	"heel":          "Heel",
	"heel_height":   "Heel Height",
	"cm_5_8":        "5CM-8CM",
	"above_8cm":     "Above 8CM",
	"adhesive_std":  "12 kg / 3N",
	"heel_pull_std": "60 kg/500N / 80 kg/800N",

	"item":     "Item",
	"standard": "Standard",
	"result":   "Result",
	"comments": "Comments",
	"remark":   "Remark",

	"buckle":      "Buckle",
	"strap":       "Strap",
	"eyelet":      "Eyelet",
	"studs":       "Studs",
	"diamond_bow": "Diamond/Bow",
	"top_lift":    "Top lift",
	"loop":        "Loop",
	"toe_post":    "Toe Post Attachment",
	"zipper":      "Zipper",
	"perment_set": "Perment set at 400N",

	"buckle_std":      "20 kg/200N",
	"strap_std":       "20 kg/200N",
	"eyelet_std":      "20 kg/200N",
	"studs_std":       "20 kg/200N",
	"diamond_std":     "7KG/70N",
	"top_lift_std":    "15 kg/140N",
	"loop_std":        "20 KG/200N",
	"toe_post_std":    "EVA/Rubber: 150N, Others: 200N",
	"zipper_std":      "25 kg/250N",
	"perment_set_std": "Max deformation ≤ 15%",

	"upper":         "Upper",
	"shoe_flex":     "Shoe Flex",
	"foxing":        "Foxing",
	"upper_std":     "250,000 cycles",
	"shoe_flex_std": "100,000 cycles",
	"foxing_std":    "≥ 2.0 N/mm",

	"top_lift_abrasion":    "Top Lift",
	"outsole_abrasion":     "Outsole Abrasion",
	"outsole_abrasion_std": "Rubber & PU: 300mm³, TPR: 350mm³, EVA: 700mm³, PVC: 250mm³",

	"outsole_resistance": "Outsole",
	"heel_fatigue":       "Heel Fatigue",
	"heel_fatigue_std":   "20,000 cycles, Top lift area ≤ 1cm²",

	"eva_hardness":     "EVA",
	"outsole_hardness": "Outsole Hardness",

	"pass_label":   "PASS",
	"fail_label":   "FAIL",
	"accept_label": "ACCEPT",

	"verified_by":    "Verified by:",
	"testing_person": "Testing Person:",
	"signature":      "Signature",
	"signature_line": "_________________________",

	"version": "Version 2024.09",
}

var chineseTexts = map[string]string{
	"company":        "GRAND STEP (H.K.) LTD",
	"title":          "物理测试报告",
	"running_header": "GRAND STEP PHYSICAL TEST REPORT",
	"test_location":  "测试地点:",
	"report_date":    "报告日期:",
	"page":           "Page",

	"basic_info":      "1. 基本信息",
	"adhesive_test":   "2. 粘合/拉力测试",
	"components_test": "3. 配件物理测试",
	"flexing_test":    "4. 弯曲测试",
	"abrasion_test":   "5. 耐磨测试",
	"resistance_test": "6. 阻力测试",
	"hardness_test":   "7. 硬度测试",
	"conclusion":      "8. 结论",
	"rust_test":       "防锈测试",

	"report_no":      "报告编号:",
	"date_no":        "日期/编号:",
	"ci_no":          "CI/订单号:",
	"order_qty":      "订单数量:",
	"brand":          "品牌:",
	"produced_qty":   "生产数量:",
	"style_no":       "款式号:",
	"factory_trader": "工厂/贸易商:",
	"sales":          "销售:",

	"standard_note": "注：此标准仅为 Grand Step 公司标准。如有冲突，应遵循客户或第三方实验室标准",

	"flat_shoe":     "平底鞋",
	"high_heel":     "高跟鞋",
	"sole_wedge":    "鞋底/楔形",
	"toe":           "鞋头",
	"forepart":      "前掌",
	"waist":         "腰窝",
	"heel":          "后跟",
	"heel_height":   "后跟高度",
	"cm_5_8":        "5厘米-8厘米",
	"above_8cm":     "8厘米以上",
	"adhesive_std":  "12 kg / 3N",
	"heel_pull_std": "60 kg/500N / 80 kg/800N",

	"item":     "项目",
	"standard": "标准",
	"result":   "结果",
	"comments": "备注",
	"remark":   "备注",

	"buckle":      "鞋扣",
	"strap":       "饰带",
	"eyelet":      "眼扣",
	"studs":       "饰钉",
	"diamond_bow": "钻石/蝴蝶结",
	"top_lift":    "天皮",
	"loop":        "穿扣",
	"toe_post":    "趾柱附件",
	"zipper":      "拉链头",
	"perment_set": "400N永久变形测试",

	"buckle_std":      "20 kg/200N",
	"strap_std":       "20 kg/200N",
	"eyelet_std":      "20 kg/200N",
	"studs_std":       "20 kg/200N",
	"diamond_std":     "7KG/70N",
	"top_lift_std":    "15 kg/140N",
	"loop_std":        "20 KG/200N",
	"toe_post_std":    "EVA/橡胶: 150N, 其他: 200N",
	"zipper_std":      "25 kg/250N",
	"perment_set_std": "最大变形 ≤ 15%",

	"upper":         "鞋面",
	"shoe_flex":     "鞋弯曲",
	"foxing":        "围条",
	"upper_std":     "250,000次循环",
	"shoe_flex_std": "100,000次循环",
	"foxing_std":    "≥ 2.0 N/mm",

	"top_lift_abrasion":    "天皮",
	"outsole_abrasion":     "外底耐磨",
	"outsole_abrasion_std": "橡胶 & PU: 300mm³, TPR: 350mm³, EVA: 700mm³, PVC: 250mm³",

	"outsole_resistance": "外底",
	"heel_fatigue":       "后跟疲劳",
	"heel_fatigue_std":   "20,000次循环，天皮区域≤1cm²",

	"eva_hardness":     "EVA",
	"outsole_hardness": "外底硬度",

	"pass_label":   "通过",
	"fail_label":   "不通过",
	"accept_label": "接受",

	"verified_by":    "审核人:",
	"testing_person": "测试人员:",
	"signature":      "签名",
	"signature_line": "_________________________",

	"version": "版本 2024.09",
}
