package payment

import (
	"errors"
	"net/url"

	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
)

// QRSize is the edge length in pixels of generated payment codes.
const QRSize = 256

var ErrNoPayee = errors.New("payment: UPI payee id is not configured")

// UPI builds manual UPI payment links for the checkout pages. Students pay from
// their own app and paste the transaction id back into the form.
type UPI struct {
	ID    string // virtual payment address, e.g. "projecthub@upi"
	Payee string
}

// FormatAmount renders a whole-rupee price the way UPI expects it ("1500.00").
func FormatAmount(rupees int64) string {
	return decimal.NewFromInt(rupees).StringFixed(2)
}

// Link returns the upi://pay deep link for the amount.
func (u UPI) Link(rupees int64, note string) (string, error) {
	if u.ID == "" {
		return "", ErrNoPayee
	}
	q := url.Values{}
	q.Set("pa", u.ID)
	if u.Payee != "" {
		q.Set("pn", u.Payee)
	}
	q.Set("am", FormatAmount(rupees))
	q.Set("cu", "INR")
	if note != "" {
		q.Set("tn", note)
	}
	return "upi://pay?" + q.Encode(), nil
}

// QRCode renders the payment link as a PNG.
func (u UPI) QRCode(rupees int64, note string) ([]byte, error) {
	link, err := u.Link(rupees, note)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(link, qrcode.Medium, QRSize)
}
