// Package models содержит доменные структуры участников, соревнований,
// платежей и замеров состава тела, а также DTO для приёма JSON-запросов.
package models

import "time"

// Subscribe тип подписки участника.
type Subscribe string

const (
	SubscribeFree          Subscribe = "FREE"
	SubscribeBasicHost     Subscribe = "BASIC_HOST"
	SubscribePremiumHost   Subscribe = "PREMIUM_HOST"
	SubscribeVIPHost       Subscribe = "VIP_HOST"
	SubscribeBasicPlayer   Subscribe = "BASIC_PLAYER"
	SubscribePremiumPlayer Subscribe = "PREMIUM_PLAYER"
	SubscribeVIPPlayer     Subscribe = "VIP_PLAYER"
	SubscribeAdmin         Subscribe = "ADMIN"
)

// Valid сообщает, входит ли подписка в известный набор.
func (s Subscribe) Valid() bool {
	switch s {
	case SubscribeFree, SubscribeBasicHost, SubscribePremiumHost, SubscribeVIPHost,
		SubscribeBasicPlayer, SubscribePremiumPlayer, SubscribeVIPPlayer, SubscribeAdmin:
		return true
	}
	return false
}

// Member представляет зарегистрированного участника системы.
type Member struct {
	UID          int64     `json:"uid"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Role         string    `json:"role"` // ROLE_PLAYER, ROLE_HOST, ROLE_ADMIN
	Subscription Subscribe `json:"subscription"`
	CreatedAt    time.Time `json:"created_at"`
}

// DummyMember используется для приёма данных регистрации из JSON-запроса.
type DummyMember struct {
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone,omitempty"`
	Role         string `json:"role" validate:"required,oneof=ROLE_PLAYER ROLE_HOST ROLE_ADMIN"`
	Subscription string `json:"subscription" validate:"required"`
}
