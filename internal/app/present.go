package app

import (
	"fmt"
	"strings"

	"estate_reco/internal/domain"
)

const (
	// NoResultsNotice is the reply when nothing was ranked.
	NoResultsNotice = "❌ Không tìm thấy bất động sản nào phù hợp với yêu cầu của bạn."

	presentHeader = "🏘️ Danh sách bất động sản được đề xuất:\n\n"
	fieldFallback = "N/A"
)

// Present renders the ranked candidates as the conversational reply.
func Present(top []domain.ScoredCandidate) string {
	if len(top) == 0 {
		return NoResultsNotice
	}

	var b strings.Builder
	b.WriteString(presentHeader)
	for _, sc := range top {
		c := sc.Candidate
		fmt.Fprintf(&b, "🏠 %s (%s)\n", c.Name, orFallback(c.Type))
		fmt.Fprintf(&b, "📍 Vị trí: %s\n", Location(c))
		fmt.Fprintf(&b, "💰 Giá: %s VND\n", orFallback(c.Price))
		fmt.Fprintf(&b, "🛏️ Số phòng ngủ: %s\n", orFallback(c.Rooms))
		fmt.Fprintf(&b, "📐 Diện tích: %sm²\n", orFallback(c.Size))
		fmt.Fprintf(&b, "📊 Điểm đánh giá: %d\n", sc.Score)
		b.WriteString("📝 Lý do đề xuất:\n")
		for _, r := range sc.Reasons {
			fmt.Fprintf(&b, "  %s\n", r)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// ErrorNotice is the reply when listings could not be fetched.
func ErrorNotice(err error) string {
	return fmt.Sprintf("❌ Lỗi khi truy vấn dữ liệu bất động sản: %v", err)
}

// Location joins ward, area and region. Unbound parts are left empty so the
// positions stay stable for readers of the reply.
func Location(c domain.Candidate) string {
	return strings.Join([]string{deref(c.Ward), deref(c.Area), deref(c.Region)}, ", ")
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func orFallback(p *string) string {
	if p == nil {
		return fieldFallback
	}
	return *p
}
