package payment

import (
	"strconv"
	"strings"
)

// MomoIPN is the JSON body MoMo posts to the merchant's IPN url.
type MomoIPN struct {
	PartnerCode  string `json:"partnerCode"`
	OrderID      string `json:"orderId"`
	RequestID    string `json:"requestId"`
	Amount       int64  `json:"amount"`
	OrderInfo    string `json:"orderInfo"`
	OrderType    string `json:"orderType"`
	TransID      int64  `json:"transId"`
	ResultCode   int    `json:"resultCode"`
	Message      string `json:"message"`
	PayType      string `json:"payType"`
	ResponseTime int64  `json:"responseTime"`
	ExtraData    string `json:"extraData"`
	Signature    string `json:"signature"`
}

// MomoSuccessCode is the resultCode MoMo sends for a captured payment.
const MomoSuccessCode = 0

// RawSignature builds the string MoMo signs for an IPN.  accessKey is the
// merchant's own key; it is not part of the IPN body.
func (n MomoIPN) RawSignature(accessKey string) string {
	var b strings.Builder
	b.WriteString("accessKey=" + accessKey)
	b.WriteString("&amount=" + strconv.FormatInt(n.Amount, 10))
	b.WriteString("&extraData=" + n.ExtraData)
	b.WriteString("&message=" + n.Message)
	b.WriteString("&orderId=" + n.OrderID)
	b.WriteString("&orderInfo=" + n.OrderInfo)
	b.WriteString("&orderType=" + n.OrderType)
	b.WriteString("&partnerCode=" + n.PartnerCode)
	b.WriteString("&payType=" + n.PayType)
	b.WriteString("&requestId=" + n.RequestID)
	b.WriteString("&responseTime=" + strconv.FormatInt(n.ResponseTime, 10))
	b.WriteString("&resultCode=" + strconv.Itoa(n.ResultCode))
	b.WriteString("&transId=" + strconv.FormatInt(n.TransID, 10))
	return b.String()
}

// Verify reports whether the IPN's signature matches the merchant keys.
func (n MomoIPN) Verify(accessKey, secretKey string) bool {
	return verify(secretKey, n.RawSignature(accessKey), n.Signature)
}

// Succeeded reports whether MoMo captured the payment.
func (n MomoIPN) Succeeded() bool {
	return n.ResultCode == MomoSuccessCode
}
