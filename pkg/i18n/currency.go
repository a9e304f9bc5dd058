package i18n

import "fmt"

// DefaultCurrency is the currency fares and earnings are quoted in
const DefaultCurrency = "INR"

var currencySymbols = map[string]struct {
	symbol string
	prefix bool
}{
	"INR": {"₹", true},
	"USD": {"$", true},
	"EUR": {"€", true},
	"GBP": {"£", true},
	"TRY": {"₺", true},
	"RUB": {"₽", true},
	"AED": {"د.إ", false},
}

// FormatAmount renders amount with its currency symbol, e.g. "₹1500.00" or "25.00 د.إ".
// Unknown codes render as "10.00 XYZ".
func FormatAmount(amount float64, currencyCode string) string {
	info, ok := currencySymbols[currencyCode]
	if !ok {
		return fmt.Sprintf("%.2f %s", amount, currencyCode)
	}
	if info.prefix {
		return fmt.Sprintf("%s%.2f", info.symbol, amount)
	}
	return fmt.Sprintf("%.2f %s", amount, info.symbol)
}
