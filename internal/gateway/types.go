package gateway

// envelope общий формат ответа IamPort: {code, message, response}.
// code == 0 означает успех.
type envelope[T any] struct {
	Code     int     `json:"code"`
	Message  *string `json:"message"`
	Response *T      `json:"response"`
}

// TokenRequest тело запроса POST /users/getToken.
type TokenRequest struct {
	ImpKey    string `json:"imp_key"`
	ImpSecret string `json:"imp_secret"`
}

// Token access-токен шлюза.
type Token struct {
	AccessToken string `json:"access_token"`
	ExpiredAt   int64  `json:"expired_at"` // unix-время истечения
	Now         int64  `json:"now"`        // unix-время шлюза на момент выдачи
}

// PrepareRequest тело запроса POST /payments/prepare.
type PrepareRequest struct {
	ImpUID      string `json:"imp_uid"`
	MerchantUID string `json:"merchant_uid"`
	Amount      int64  `json:"amount"`
}

// Registration предварительная регистрация платежа на стороне шлюза.
type Registration struct {
	MerchantUID string `json:"merchant_uid"`
	Amount      int64  `json:"amount"`
}

// PrepareResponse ответ на предварительную регистрацию.
// Code == 1 шлюз возвращает для уже зарегистрированного merchant_uid.
type PrepareResponse struct {
	Code     int
	Message  string
	Response *Registration
}

// Payment запись о платеже в шлюзе, эталон для сверки.
type Payment struct {
	ImpUID      string `json:"imp_uid"`
	MerchantUID string `json:"merchant_uid"`
	Amount      int64  `json:"amount"`
	Status      string `json:"status"`
	PaidAt      int64  `json:"paid_at"`
}
