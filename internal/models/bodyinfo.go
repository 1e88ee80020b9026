package models

import "time"

// BodyInfo замер состава тела участника.
type BodyInfo struct {
	ID        int64     `json:"id"`
	MemberUID int64     `json:"member_uid"`
	Height    float32   `json:"height"`
	Weight    float32   `json:"weight"`
	FatMass   float32   `json:"fat_mass"`
	SmMass    float32   `json:"sm_mass"` // скелетная мышечная масса
	CreatedAt time.Time `json:"created_at"`
}

// DummyBodyInfo используется для приёма замера из JSON-запроса.
type DummyBodyInfo struct {
	MemberUID int64   `json:"member_uid" validate:"required,gt=0"`
	Height    float32 `json:"height" validate:"required,gt=0"`
	Weight    float32 `json:"weight" validate:"required,gt=0"`
	FatMass   float32 `json:"fat_mass" validate:"gte=0"`
	SmMass    float32 `json:"sm_mass" validate:"gte=0"`
}
