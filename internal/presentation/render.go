package presentation

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"ev-voice-shop/internal/domain"
)

const (
	placeholderEmpty     = "-"
	placeholderNoMatches = "ไม่พบสินค้าหรือยังไม่ได้ค้นหา"
	placeholderWaiting   = "รอคำสั่งเสียง..."
)

var pricePrinter = message.NewPrinter(language.Thai)

// FormatPrice formats a price with Thai digit grouping, e.g. "899,900 บาท".
func FormatPrice(price float64) string {
	return pricePrinter.Sprint(number.Decimal(price, number.MaxFractionDigits(3))) + " บาท"
}

// Render draws a view as plain text. The transcript and answer panels are
// always present; matches fall back to a placeholder.
func Render(v View) string {
	var b strings.Builder
	r := v.Result

	fmt.Fprintf(&b, "[%s]\n", v.Status)
	fmt.Fprintf(&b, "ข้อความที่ถอดเสียง: %s\n", orDash(r.Transcript))
	fmt.Fprintf(&b, "คำตอบ: %s\n", orDash(r.Answer))
	if r.Error != "" {
		fmt.Fprintf(&b, "! %s\n", r.Error)
	}

	b.WriteString("สินค้าแนะนำ:\n")
	if len(r.Matches) == 0 {
		if r.Transcript != nil && *r.Transcript != "" {
			fmt.Fprintf(&b, "  %s\n", placeholderNoMatches)
		} else {
			fmt.Fprintf(&b, "  %s\n", placeholderWaiting)
		}
		return b.String()
	}
	for _, p := range r.Matches {
		b.WriteString(renderProduct(p))
	}
	return b.String()
}

func renderProduct(p domain.Product) string {
	line := fmt.Sprintf("  - %s  %s", p.Name, FormatPrice(p.Price))
	if p.WarrantyMonths != nil && *p.WarrantyMonths > 0 {
		line += fmt.Sprintf("  ประกัน %d เดือน", *p.WarrantyMonths)
	}
	return line + "  " + p.ImagePath() + "\n"
}

func orDash(s *string) string {
	if s == nil {
		return placeholderEmpty
	}
	return *s
}
