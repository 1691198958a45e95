package operations

import "strings"

// SegmentForProfile 依方案名稱推得客戶分類：Pro* 為 PRO，Industrial 為 C&I，其餘為住商。
func SegmentForProfile(profile string) Segment {
	switch {
	case strings.HasPrefix(profile, "Pro"):
		return SegmentPRO
	case profile == "Industrial":
		return SegmentCI
	default:
		return SegmentResidentialBusiness
	}
}

// SegmentationForProfile 依方案名稱推得價值層級。
func SegmentationForProfile(profile string) Segmentation {
	switch profile {
	case "BC", "BC+":
		return SegmentationLow
	case "MC":
		return SegmentationMiddle
	case "MC+", "HC":
		return SegmentationPremium
	default:
		return SegmentationPros
	}
}

// CategoryForSegment 回傳分類對應的電壓等級。
func CategoryForSegment(s Segment) string {
	switch s {
	case SegmentCI:
		return "HV"
	case SegmentPRO:
		return "MV"
	default:
		return "LV"
	}
}
