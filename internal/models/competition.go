package models

import "time"

// SportCategory вид спорта соревнования.
type SportCategory string

// CompetitionType уровень соревнования, выводится из подписки организатора.
type CompetitionType string

const (
	CompetitionTypeFree    CompetitionType = "FREE"
	CompetitionTypePremium CompetitionType = "PREMIUM"
	CompetitionTypeVIP     CompetitionType = "VIP"
)

// CompetitionState состояние соревнования, вычисляемое по расписанию.
type CompetitionState string

const (
	CompetitionStatePlanning      CompetitionState = "PLANNING"
	CompetitionStateRecruiting    CompetitionState = "RECRUITING"
	CompetitionStateRecruitingEnd CompetitionState = "RECRUITING_END"
	CompetitionStateInProgress    CompetitionState = "IN_PROGRESS"
)

// ParticipantRole роль участника в соревновании.
type ParticipantRole string

const (
	ParticipantPlayer ParticipantRole = "PLAYER"
	ParticipantViewer ParticipantRole = "VIEWER"
)

// Competition основная модель соревнования.
// State хранится в базе только для выборок и пересчитывается при каждом чтении.
type Competition struct {
	ID              int64            `json:"id"`
	Name            string           `json:"name"`
	Slug            string           `json:"slug"`
	Content         string           `json:"content,omitempty"`
	Category        SportCategory    `json:"category"`
	Type            CompetitionType  `json:"competition_type"`
	State           CompetitionState `json:"state"`
	HostUID         int64            `json:"host_uid"`
	Location        string           `json:"location,omitempty"`
	LocationDetail  string           `json:"location_detail,omitempty"`
	MaxPlayer       int              `json:"max_player"`
	MaxViewer       int              `json:"max_viewer"`
	TotalPrize      int64            `json:"total_prize"`
	EntryFee        int64            `json:"entry_fee"`
	RecruitingStart *time.Time       `json:"recruiting_start"`
	RecruitingEnd   *time.Time       `json:"recruiting_end"`
	StartDate       *time.Time       `json:"start_date"`
	Posters         []string         `json:"posters,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// DummyCompetition используется для приёма данных соревнования из JSON-запроса.
// Даты приходят строками в RFC3339 и разбираются в сервисе.
type DummyCompetition struct {
	HostUID         int64  `json:"host_uid" validate:"required,gt=0"`
	Name            string `json:"name" validate:"required"`
	Content         string `json:"content,omitempty"`
	Category        string `json:"category" validate:"required,oneof=BODY_BUILDING POWER_LIFTING WEIGHT_LIFTING ARM_WRESTLING CROSSFIT ETC"`
	Location        string `json:"location,omitempty"`
	LocationDetail  string `json:"location_detail,omitempty"`
	MaxPlayer       int    `json:"max_player" validate:"gte=0"`
	MaxViewer       int    `json:"max_viewer" validate:"gte=0"`
	TotalPrize      int64  `json:"total_prize" validate:"gte=0"`
	EntryFee        int64  `json:"entry_fee" validate:"gte=0"`
	RecruitingStart string `json:"recruiting_start" validate:"required"`
	RecruitingEnd   string `json:"recruiting_end" validate:"required"`
	StartDate       string `json:"start_date" validate:"required"`
}

// Participant запись об участии в соревновании.
type Participant struct {
	CompetitionID int64           `json:"competition_id"`
	MemberUID     int64           `json:"member_uid"`
	Role          ParticipantRole `json:"role"`
	JoinedAt      time.Time       `json:"joined_at"`
}

// JoinRequest запрос на участие в соревновании.
type JoinRequest struct {
	MemberUID int64  `json:"member_uid" validate:"required,gt=0"`
	Role      string `json:"role" validate:"required,oneof=PLAYER VIEWER"`
}

// StateTransition событие смены состояния соревнования.
type StateTransition struct {
	CompetitionID int64            `json:"competition_id"`
	From          CompetitionState `json:"from"`
	To            CompetitionState `json:"to"`
	At            time.Time        `json:"at"`
}
