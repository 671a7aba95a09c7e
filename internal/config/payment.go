package config

// PaymentConfig carries gateway secrets and the bank account shown for
// manual transfers.  It is passed to the payment service at construction
// so nothing reads gateway credentials from globals.
type PaymentConfig struct {
	MomoPartnerCode string
	MomoAccessKey   string
	MomoSecretKey   string

	ZaloPayAppID string
	ZaloPayKey2  string // key used by ZaloPay to sign callbacks

	BankName          string
	BankAccountNumber string
	BankAccountName   string
}

// LoadPaymentConfig reads MOMO_*, ZALOPAY_* and BANK_* variables.  Missing
// gateway keys are allowed; callbacks for that gateway then always fail
// verification.
func LoadPaymentConfig() PaymentConfig {
	return PaymentConfig{
		MomoPartnerCode:   envStr("MOMO_PARTNER_CODE", ""),
		MomoAccessKey:     envStr("MOMO_ACCESS_KEY", ""),
		MomoSecretKey:     envStr("MOMO_SECRET_KEY", ""),
		ZaloPayAppID:      envStr("ZALOPAY_APP_ID", ""),
		ZaloPayKey2:       envStr("ZALOPAY_KEY2", ""),
		BankName:          envStr("BANK_NAME", ""),
		BankAccountNumber: envStr("BANK_ACCOUNT_NUMBER", ""),
		BankAccountName:   envStr("BANK_ACCOUNT_NAME", ""),
	}
}
