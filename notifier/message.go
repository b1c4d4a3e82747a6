package notifier

import (
	"fmt"
	"strconv"
	"strings"
)

// AnonymousSender replaces the guest name when the payer opted into anonymity.
const AnonymousSender = "Anonim"

// FormatEnvelopeMessage renders the WhatsApp notification sent to the
// invitation owner after a verified envelope payment.
func FormatEnvelopeMessage(guestName string, anonymous bool, amount int, message string) string {
	sender := guestName
	if anonymous || sender == "" {
		sender = AnonymousSender
	}
	if message == "" {
		message = "-"
	}
	return fmt.Sprintf("🎉 Amplop digital diterima!\n\nDari: %s\nJumlah: %s\nPesan: %s",
		sender, FormatRupiah(amount), message)
}

// FormatRupiah renders a minor-unit amount with Indonesian thousand grouping,
// e.g. 150000 -> "Rp150.000".
func FormatRupiah(amount int) string {
	digits := strconv.Itoa(amount)
	negative := strings.HasPrefix(digits, "-")
	if negative {
		digits = digits[1:]
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}

	if negative {
		return "-Rp" + b.String()
	}
	return "Rp" + b.String()
}
