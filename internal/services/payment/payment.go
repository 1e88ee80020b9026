// Package payment реализует проверку целостности платежей через шлюз IamPort:
// получение токена, предварительную регистрацию, сверку после оплаты
// и сохранение заказа.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/sportsit/internal/gateway"
	"github.com/magabrotheeeer/sportsit/internal/lib/metrics"
	"github.com/magabrotheeeer/sportsit/internal/lib/sl"
	"github.com/magabrotheeeer/sportsit/internal/models"
)

const (
	merchantUIDPrefix = "PAY"
	tokenCacheKey     = "gateway:access_token"
	tokenCacheSkew    = 30 * time.Second

	// alreadyRegisteredCode код ответа prepare для уже зарегистрированного merchant_uid.
	alreadyRegisteredCode = 1
)

var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrAlreadyRegistered   = errors.New("payment already registered")
	ErrUIDGenerationFailed = errors.New("merchant_uid generation failed")
	ErrVerificationFailed  = errors.New("payment verification failed")
)

// Repository хранилище платежей.
type Repository interface {
	PaymentExistsByMerchantUID(ctx context.Context, merchantUID string) (bool, error)
	SavePayment(ctx context.Context, p *models.Payment) (int64, error)
	ListPaymentsByBuyer(ctx context.Context, buyerUID int64) ([]*models.Payment, error)
	ListPayments(ctx context.Context) ([]*models.Payment, error)
	GetMember(ctx context.Context, uid int64) (*models.Member, error)
	GetCompetition(ctx context.Context, id int64) (*models.Competition, error)
}

// Gateway клиент платёжного шлюза.
type Gateway interface {
	GetToken(ctx context.Context) (*gateway.Token, error)
	Prepare(ctx context.Context, token string, req gateway.PrepareRequest) (*gateway.PrepareResponse, error)
	GetPayment(ctx context.Context, token, impUID string) (*gateway.Payment, error)
}

// Cache кеш access-токена.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service сервис платежей.
type Service struct {
	repo        Repository
	gw          Gateway
	cache       Cache
	log         *slog.Logger
	impUID      string
	uidAttempts int

	genUID func() string
	now    func() time.Time
}

// New создаёт сервис платежей. impUID ожидаемый imp_uid интеграции,
// uidAttempts верхняя граница попыток сгенерировать свободный merchant_uid.
func New(repo Repository, gw Gateway, cache Cache, log *slog.Logger, impUID string, uidAttempts int) *Service {
	if uidAttempts <= 0 {
		uidAttempts = 1
	}
	return &Service{
		repo:        repo,
		gw:          gw,
		cache:       cache,
		log:         log,
		impUID:      impUID,
		uidAttempts: uidAttempts,
		genUID:      newMerchantUID,
		now:         time.Now,
	}
}

func newMerchantUID() string {
	return merchantUIDPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// authenticate возвращает access-токен шлюза, по возможности из кеша.
// При refresh кеш не читается и токен запрашивается заново.
// Ошибки кеша не мешают получить токен напрямую.
func (s *Service) authenticate(ctx context.Context, refresh bool) (string, error) {
	const op = "payment.authenticate"

	if s.cache != nil && !refresh {
		var token string
		found, err := s.cache.Get(tokenCacheKey, &token)
		if err != nil {
			s.log.Warn("failed to read cached gateway token", slog.String("op", op), sl.Err(err))
		}
		if found && token != "" {
			return token, nil
		}
	}

	token, err := s.gw.GetToken(ctx)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if s.cache != nil && token.ExpiredAt > 0 && token.Now > 0 {
		ttl := time.Duration(token.ExpiredAt-token.Now)*time.Second - tokenCacheSkew
		if ttl > 0 {
			if err := s.cache.Set(tokenCacheKey, token.AccessToken, ttl); err != nil {
				s.log.Warn("failed to cache gateway token", slog.String("op", op), sl.Err(err))
			}
		}
	}
	return token.AccessToken, nil
}

// withToken выполняет call с access-токеном. Если шлюз отверг токен,
// он удаляется из кеша и call повторяется один раз со свежим токеном.
func (s *Service) withToken(ctx context.Context, call func(token string) error) error {
	const op = "payment.withToken"

	token, err := s.authenticate(ctx, false)
	if err != nil {
		return err
	}
	err = call(token)
	if !errors.Is(err, gateway.ErrUnauthorized) {
		return err
	}

	s.log.Warn("gateway rejected access token", slog.String("op", op))
	if s.cache != nil {
		if err := s.cache.Invalidate(tokenCacheKey); err != nil {
			s.log.Warn("failed to evict gateway token", slog.String("op", op), sl.Err(err))
		}
	}
	token, err = s.authenticate(ctx, true)
	if err != nil {
		return err
	}
	return call(token)
}

// generateMerchantUID подбирает merchant_uid, которого ещё нет среди
// сохранённых платежей. Число попыток ограничено.
func (s *Service) generateMerchantUID(ctx context.Context) (string, error) {
	const op = "payment.generateMerchantUID"

	for i := 0; i < s.uidAttempts; i++ {
		uid := s.genUID()
		exists, err := s.repo.PaymentExistsByMerchantUID(ctx, uid)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		if !exists {
			return uid, nil
		}
		s.log.Warn("merchant_uid collision", slog.String("op", op), slog.String("merchant_uid", uid), slog.Int("attempt", i+1))
	}
	return "", fmt.Errorf("%s: %w: %d attempts", op, ErrUIDGenerationFailed, s.uidAttempts)
}

// PreRegister регистрирует намерение оплаты в шлюзе и возвращает
// сгенерированный merchant_uid вместе с ответом шлюза.
func (s *Service) PreRegister(ctx context.Context, req *models.PreRegisterRequest) (*models.Registration, error) {
	const op = "payment.PreRegister"

	if req == nil || req.ImpUID == "" {
		return nil, fmt.Errorf("%s: %w: imp_uid is required", op, ErrInvalidArgument)
	}
	if req.ImpUID != s.impUID {
		return nil, fmt.Errorf("%s: %w: unexpected imp_uid %q", op, ErrInvalidArgument, req.ImpUID)
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%s: %w: amount must be positive", op, ErrInvalidArgument)
	}

	merchantUID, err := s.generateMerchantUID(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var resp *gateway.PrepareResponse
	err = s.withToken(ctx, func(token string) error {
		var err error
		resp, err = s.gw.Prepare(ctx, token, gateway.PrepareRequest{
			ImpUID:      req.ImpUID,
			MerchantUID: merchantUID,
			Amount:      req.Amount,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	switch {
	case resp.Code == alreadyRegisteredCode:
		return nil, fmt.Errorf("%s: %w: %s", op, ErrAlreadyRegistered, merchantUID)
	case resp.Code != 0:
		return nil, fmt.Errorf("%s: %w: code %d: %s", op, gateway.ErrGateway, resp.Code, resp.Message)
	}

	reg := &models.Registration{
		ImpUID:      req.ImpUID,
		MerchantUID: merchantUID,
		Amount:      req.Amount,
		Type:        req.Type,
		Content:     req.Content,
	}
	if resp.Response != nil {
		if resp.Response.MerchantUID != "" {
			reg.MerchantUID = resp.Response.MerchantUID
		}
		if resp.Response.Amount != 0 {
			reg.Amount = resp.Response.Amount
		}
	}
	return reg, nil
}

// Verify сверяет присланные клиентом imp_uid, merchant_uid и сумму с записью шлюза.
// Любая ошибка по пути означает неуспешную проверку: причина пишется в лог
// и в метрики, наружу возвращается только false.
func (s *Service) Verify(ctx context.Context, req *models.PaymentRequest) bool {
	const op = "payment.Verify"
	log := s.log.With(slog.String("op", op))

	if req == nil || req.ImpUID == "" || req.MerchantUID == "" || req.Amount == 0 {
		log.Info("verification request has absent fields")
		metrics.PaymentVerifications.WithLabelValues("invalid").Inc()
		return false
	}
	log = log.With(slog.String("imp_uid", req.ImpUID), slog.String("merchant_uid", req.MerchantUID))

	var record *gateway.Payment
	err := s.withToken(ctx, func(token string) error {
		var err error
		record, err = s.gw.GetPayment(ctx, token, req.ImpUID)
		return err
	})
	if err != nil {
		result := "gateway_error"
		switch {
		case errors.Is(err, gateway.ErrGatewayAuth):
			result = "auth_error"
		case errors.Is(err, gateway.ErrPaymentNotFound):
			result = "not_found"
		}
		log.Error("failed to fetch payment from gateway", slog.String("result", result), sl.Err(err))
		metrics.PaymentVerifications.WithLabelValues(result).Inc()
		return false
	}

	if tampered(req, record) {
		log.Warn("payment tampered",
			slog.String("gateway_merchant_uid", record.MerchantUID),
			slog.Int64("gateway_amount", record.Amount),
			slog.Int64("amount", req.Amount),
		)
		metrics.PaymentVerifications.WithLabelValues("tampered").Inc()
		return false
	}

	metrics.PaymentVerifications.WithLabelValues("ok").Inc()
	return true
}

func tampered(req *models.PaymentRequest, record *gateway.Payment) bool {
	return req.ImpUID != record.ImpUID ||
		req.MerchantUID != record.MerchantUID ||
		req.Amount != record.Amount
}

// CreateOrder сохраняет проверенный платёж. Повторной сверки со шлюзом нет,
// вызывать только после успешного Verify.
func (s *Service) CreateOrder(ctx context.Context, req *models.PaymentRequest, buyer *models.Member, competition *models.Competition) (*models.Payment, error) {
	const op = "payment.CreateOrder"

	if req == nil || buyer == nil {
		return nil, fmt.Errorf("%s: %w: request and buyer are required", op, ErrInvalidArgument)
	}
	paymentType, err := models.ParsePaymentType(req.Type)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidArgument, err)
	}
	status, err := models.ParsePaymentStatus(req.Status)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidArgument, err)
	}

	p := &models.Payment{
		ImpUID:      req.ImpUID,
		MerchantUID: req.MerchantUID,
		Amount:      req.Amount,
		Type:        paymentType,
		Content:     req.Content,
		Status:      status,
		BuyerUID:    buyer.UID,
		CreatedAt:   s.now().UTC(),
	}
	if competition != nil {
		id := competition.ID
		p.CompetitionID = &id
	}

	id, err := s.repo.SavePayment(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	p.ID = id
	return p, nil
}

// Complete проверяет платёж и, если сверка прошла, сохраняет заказ.
func (s *Service) Complete(ctx context.Context, req *models.PaymentRequest) (*models.Payment, error) {
	const op = "payment.Complete"

	if !s.Verify(ctx, req) {
		return nil, fmt.Errorf("%s: %w", op, ErrVerificationFailed)
	}

	buyer, err := s.repo.GetMember(ctx, req.BuyerUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var competition *models.Competition
	if req.CompetitionID != nil {
		competition, err = s.repo.GetCompetition(ctx, *req.CompetitionID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	p, err := s.CreateOrder(ctx, req, buyer, competition)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// ListByBuyer возвращает платежи участника.
func (s *Service) ListByBuyer(ctx context.Context, buyerUID int64) ([]*models.PaymentDetail, error) {
	const op = "payment.ListByBuyer"

	payments, err := s.repo.ListPaymentsByBuyer(ctx, buyerUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return toDetails(payments), nil
}

// ListAll возвращает все платежи.
func (s *Service) ListAll(ctx context.Context) ([]*models.PaymentDetail, error) {
	const op = "payment.ListAll"

	payments, err := s.repo.ListPayments(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return toDetails(payments), nil
}

func toDetails(payments []*models.Payment) []*models.PaymentDetail {
	res := make([]*models.PaymentDetail, 0, len(payments))
	for _, p := range payments {
		res = append(res, &models.PaymentDetail{
			ImpUID:      p.ImpUID,
			MerchantUID: p.MerchantUID,
			Amount:      p.Amount,
			Type:        p.Type,
			Content:     p.Content,
			Status:      p.Status,
		})
	}
	return res
}
