package models

import (
	"fmt"
	"time"
)

// PaymentType назначение платежа.
type PaymentType string

const (
	PaymentTypeCompetitionEntry PaymentType = "COMPETITION_ENTRY"
	PaymentTypeSubscription     PaymentType = "SUBSCRIPTION"
)

// PaymentStatus статус платежа.
type PaymentStatus string

const (
	PaymentStatusPaid      PaymentStatus = "PAID"
	PaymentStatusReady     PaymentStatus = "READY"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

// ParsePaymentType разбирает тип платежа из строки запроса.
func ParsePaymentType(s string) (PaymentType, error) {
	switch t := PaymentType(s); t {
	case PaymentTypeCompetitionEntry, PaymentTypeSubscription:
		return t, nil
	}
	return "", fmt.Errorf("unknown payment type %q", s)
}

// ParsePaymentStatus разбирает статус платежа из строки запроса.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch st := PaymentStatus(s); st {
	case PaymentStatusPaid, PaymentStatusReady, PaymentStatusCancelled, PaymentStatusFailed:
		return st, nil
	}
	return "", fmt.Errorf("unknown payment status %q", s)
}

// Payment сохранённый платёж. После создания не изменяется.
type Payment struct {
	ID            int64         `json:"id"`
	ImpUID        string        `json:"imp_uid"`
	MerchantUID   string        `json:"merchant_uid"`
	Amount        int64         `json:"amount"`
	Type          PaymentType   `json:"payment_type"`
	Content       string        `json:"content,omitempty"`
	Status        PaymentStatus `json:"status"`
	BuyerUID      int64         `json:"buyer_uid"`
	CompetitionID *int64        `json:"competition_id,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// PreRegisterRequest запрос на предварительную регистрацию платежа в шлюзе.
type PreRegisterRequest struct {
	ImpUID  string `json:"imp_uid"`
	Amount  int64  `json:"amount" validate:"required,gt=0"`
	Type    string `json:"payment_type" validate:"required"`
	Content string `json:"content,omitempty"`
}

// Registration ответ шлюза на предварительную регистрацию.
type Registration struct {
	ImpUID      string `json:"imp_uid"`
	MerchantUID string `json:"merchant_uid"`
	Amount      int64  `json:"amount"`
	Type        string `json:"payment_type,omitempty"`
	Content     string `json:"content,omitempty"`
}

// PaymentRequest данные завершённого платежа, присланные клиентом.
type PaymentRequest struct {
	ImpUID        string `json:"imp_uid" validate:"required"`
	MerchantUID   string `json:"merchant_uid" validate:"required"`
	Amount        int64  `json:"amount" validate:"required,gt=0"`
	Type          string `json:"payment_type" validate:"required"`
	Content       string `json:"content,omitempty"`
	Status        string `json:"status" validate:"required"`
	BuyerUID      int64  `json:"buyer_uid" validate:"required,gt=0"`
	CompetitionID *int64 `json:"competition_id,omitempty"`
}

// PaymentDetail краткое представление платежа для списков.
type PaymentDetail struct {
	ImpUID      string        `json:"imp_uid"`
	MerchantUID string        `json:"merchant_uid"`
	Amount      int64         `json:"amount"`
	Type        PaymentType   `json:"payment_type"`
	Content     string        `json:"content,omitempty"`
	Status      PaymentStatus `json:"status"`
}
