package gmopay

import "net/url"

// Gateway status codes that count as settled funds.
const (
	StatusCapture = "CAPTURE"
	StatusSales   = "SALES"
)

// ResultNotification is the typed form of the gateway's asynchronous result
// notification. Absent form fields default to "" rather than failing the
// parse; the reconcile logic decides what is required.
type ResultNotification struct {
	OrderID    string
	ShopID     string
	Amount     string
	Status     string
	AccessID   string
	AccessPass string
	Forward    string
	Approve    string
	TranID     string
	TranDate   string
	PayType    string
	ErrCode    string
	ErrInfo    string
	HashValue  string
}

// ParseNotification extracts the named fields from a form-encoded payload.
func ParseNotification(form url.Values) ResultNotification {
	return ResultNotification{
		OrderID:    form.Get("OrderID"),
		ShopID:     form.Get("ShopID"),
		Amount:     form.Get("Amount"),
		Status:     form.Get("Status"),
		AccessID:   form.Get("AccessID"),
		AccessPass: form.Get("AccessPass"),
		Forward:    form.Get("Forward"),
		Approve:    form.Get("Approve"),
		TranID:     form.Get("TranID"),
		TranDate:   form.Get("TranDate"),
		PayType:    form.Get("PayType"),
		ErrCode:    form.Get("ErrCode"),
		ErrInfo:    form.Get("ErrInfo"),
		HashValue:  form.Get("HashValue"),
	}
}

// HasSignature reports whether the notification carries a hash to verify.
// The gateway omits HashValue when the shop has no result hash key
// configured on its side.
func (n ResultNotification) HasSignature() bool { return n.HashValue != "" }

// Succeeded reports the gateway's own verdict: funds captured and no error
// code present.
func (n ResultNotification) Succeeded() bool {
	return (n.Status == StatusCapture || n.Status == StatusSales) && n.ErrCode == ""
}
