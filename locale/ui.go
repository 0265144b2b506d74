package locale

import "sort"

// uiTexts 为表单界面的英文基准文案，中文界面通过翻译服务获得，不参与 PDF 输出。
var uiTexts = map[string]string{
	"title":                   "Physical Test Report",
	"basic_info":              "Basic Information",
	"adhesive_test":           "Adhesive/Pull Test",
	"components_test":         "Components Physical Test",
	"flexing_test":            "Flexing Test",
	"abrasion_test":           "Abrasion Test",
	"resistance_test":         "Resistance Test",
	"hardness_test":           "Hardness Test",
	"conclusion":              "Conclusion",
	"signatures":              "Signatures & Verification",
	"generate_pdf":            "Generate PDF Report",
	"download_pdf":            "Download PDF Report",
	"report_no":               "Report No.",
	"ci_no":                   "CI / Order No.",
	"order_qty":               "Order Quantity",
	"produced_qty":            "Produced Quantity",
	"factory":                 "Factory/Trader",
	"brand":                   "Brand/Trademark",
	"style":                   "Style No.",
	"sales":                   "Sales",
	"test_standard":           "Test Standard",
	"test_result":             "Test Result",
	"comments":                "Comments",
	"footer_text":             "Physical Test Report System",
	"generate_success":        "PDF Generated Successfully!",
	"fill_required":           "Please fill in at least CI No. and Style No.!",
	"creating_pdf":            "Creating your professional PDF report...",
	"pdf_details":             "PDF Details",
	"report_language":         "Report Language",
	"generated":               "Generated",
	"location":                "Location",
	"error_generating":        "Error generating PDF",
	"select_location":         "Select Location",
	"user_interface_language": "User Interface Language",
	"pdf_report_language":     "PDF Report Language",
	"test_location":           "Test Location",
	"local_time":              "Local Time",
	"standard_note":           "Note: This is Grand Step Company Standard only. Any priority should follow Customer or 3rd Lab Standard",
	"flat_shoe":               "Flat Shoe",
	"high_heel":               "High Heel",
	"toe":                     "Toe",
	"forepart":                "Forepart",
	"waist":                   "Waist",
	"heel":                    "Heel",
	"standard_value":          "Standard",
	"remark":                  "Remark",
	"item":                    "Item",
	"pass_fail_accept":        "Pass/Fail/Accept",
	"rust_test":               "Rust Test",
	"outsole":                 "Outsole",
	"shoe_flex":               "Shoe Flex",
	"upper":                   "Upper",
	"foxing":                  "Foxing",
	"top_lift":                "Top Lift",
	"outsole_abrasion":        "Outsole Abrasion",
	"heel_fatigue":            "Heel Fatigue",
	"eva":                     "EVA",
	"outsole_hardness":        "Outsole Hardness",
	"verified_by":             "Verified by",
	"testing_person":          "Testing Person",
	"version":                 "Version",
	"pass":                    "PASS",
	"fail":                    "FAIL",
	"accept":                  "ACCEPT",
}

// untranslated 中的界面标签保持英文原样。
var untranslated = map[string]bool{"pass": true, "fail": true, "accept": true}

// UIText 返回界面标签的英文基准文案，未收录时返回 key。
func UIText(key string) string {
	if v, ok := uiTexts[key]; ok {
		return v
	}
	return key
}

// UIKeys 返回全部界面标签 key（已排序）。
func UIKeys() []string {
	keys := make([]string, 0, len(uiTexts))
	for k := range uiTexts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Translatable 报告该界面标签是否允许交给翻译服务。
func Translatable(key string) bool { return !untranslated[key] }
