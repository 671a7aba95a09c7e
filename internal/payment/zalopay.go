package payment

import (
	"strconv"
	"strings"
)

// ZaloPayCallback carries the parameters ZaloPay appends to the merchant's
// callback url after a payment attempt.
type ZaloPayCallback struct {
	AppID          string `json:"appid" query:"appid" form:"appid"`
	AppTransID     string `json:"apptransid" query:"apptransid" form:"apptransid"`
	PmcID          string `json:"pmcid" query:"pmcid" form:"pmcid"`
	BankCode       string `json:"bankcode" query:"bankcode" form:"bankcode"`
	Amount         int64  `json:"amount" query:"amount" form:"amount"`
	DiscountAmount int64  `json:"discountamount" query:"discountamount" form:"discountamount"`
	Status         int    `json:"status" query:"status" form:"status"`
	Checksum       string `json:"checksum" query:"checksum" form:"checksum"`
}

// ZaloPaySuccessStatus is the status ZaloPay sends for a captured payment.
const ZaloPaySuccessStatus = 1

// RawChecksum builds "appid|apptransid|pmcid|bankcode|amount|discountamount|status".
func (z ZaloPayCallback) RawChecksum() string {
	return strings.Join([]string{
		z.AppID,
		z.AppTransID,
		z.PmcID,
		z.BankCode,
		strconv.FormatInt(z.Amount, 10),
		strconv.FormatInt(z.DiscountAmount, 10),
		strconv.Itoa(z.Status),
	}, "|")
}

// Verify checks the checksum with key2.  When appID is set the callback
// must also be addressed to that app.
func (z ZaloPayCallback) Verify(appID, key2 string) bool {
	if appID != "" && z.AppID != appID {
		return false
	}
	return verify(key2, z.RawChecksum(), z.Checksum)
}

func (z ZaloPayCallback) Succeeded() bool {
	return z.Status == ZaloPaySuccessStatus
}
