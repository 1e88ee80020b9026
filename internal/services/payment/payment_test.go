package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/sportsit/internal/config"
	"github.com/magabrotheeeer/sportsit/internal/gateway"
	"github.com/magabrotheeeer/sportsit/internal/models"
)

const testImpUID = "imp_123"

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) PaymentExistsByMerchantUID(ctx context.Context, merchantUID string) (bool, error) {
	args := m.Called(ctx, merchantUID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) SavePayment(ctx context.Context, p *models.Payment) (int64, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) ListPaymentsByBuyer(ctx context.Context, buyerUID int64) ([]*models.Payment, error) {
	args := m.Called(ctx, buyerUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Payment), args.Error(1)
}

func (m *MockRepository) ListPayments(ctx context.Context) ([]*models.Payment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Payment), args.Error(1)
}

func (m *MockRepository) GetMember(ctx context.Context, uid int64) (*models.Member, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Member), args.Error(1)
}

func (m *MockRepository) GetCompetition(ctx context.Context, id int64) (*models.Competition, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Competition), args.Error(1)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) GetToken(ctx context.Context) (*gateway.Token, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Token), args.Error(1)
}

func (m *MockGateway) Prepare(ctx context.Context, token string, req gateway.PrepareRequest) (*gateway.PrepareResponse, error) {
	args := m.Called(ctx, token, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.PrepareResponse), args.Error(1)
}

func (m *MockGateway) GetPayment(ctx context.Context, token, impUID string) (*gateway.Payment, error) {
	args := m.Called(ctx, token, impUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Payment), args.Error(1)
}

// memCache кеш в памяти, запоминает выставленный TTL.
type memCache struct {
	values map[string]any
	ttl    map[string]time.Duration
	getErr error
}

func newMemCache() *memCache {
	return &memCache{values: map[string]any{}, ttl: map[string]time.Duration{}}
}

func (c *memCache) Get(key string, result any) (bool, error) {
	if c.getErr != nil {
		return false, c.getErr
	}
	v, ok := c.values[key]
	if !ok {
		return false, nil
	}
	*(result.(*string)) = v.(string)
	return true, nil
}

func (c *memCache) Set(key string, value any, expiration time.Duration) error {
	c.values[key] = value
	c.ttl[key] = expiration
	return nil
}

func (c *memCache) Invalidate(key string) error {
	delete(c.values, key)
	return nil
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newTestService(repo *MockRepository, gw *MockGateway) *Service {
	return New(repo, gw, nil, newNoopLogger(), testImpUID, 5)
}

func validToken() *gateway.Token {
	return &gateway.Token{AccessToken: "tok", ExpiredAt: 1700001800, Now: 1700000000}
}

func TestService_PreRegister(t *testing.T) {
	tests := []struct {
		name       string
		req        *models.PreRegisterRequest
		setupMocks func(*MockRepository, *MockGateway)
		wantErr    error
		wantUID    string
	}{
		{
			name: "success",
			req:  &models.PreRegisterRequest{ImpUID: testImpUID, Amount: 50000, Type: "COMPETITION_ENTRY"},
			setupMocks: func(r *MockRepository, g *MockGateway) {
				r.On("PaymentExistsByMerchantUID", mock.Anything, "PAY_0").Return(false, nil).Once()
				g.On("GetToken", mock.Anything).Return(validToken(), nil).Once()
				g.On("Prepare", mock.Anything, "tok", gateway.PrepareRequest{ImpUID: testImpUID, MerchantUID: "PAY_0", Amount: 50000}).
					Return(&gateway.PrepareResponse{Response: &gateway.Registration{MerchantUID: "PAY_0", Amount: 50000}}, nil).Once()
			},
			wantUID: "PAY_0",
		},
		{
			name:       "empty imp_uid",
			req:        &models.PreRegisterRequest{Amount: 50000},
			setupMocks: func(*MockRepository, *MockGateway) {},
			wantErr:    ErrInvalidArgument,
		},
		{
			name:       "imp_uid not equal to configured",
			req:        &models.PreRegisterRequest{ImpUID: "imp_other", Amount: 50000},
			setupMocks: func(*MockRepository, *MockGateway) {},
			wantErr:    ErrInvalidArgument,
		},
		{
			name:       "nil request",
			setupMocks: func(*MockRepository, *MockGateway) {},
			wantErr:    ErrInvalidArgument,
		},
		{
			name: "already registered",
			req:  &models.PreRegisterRequest{ImpUID: testImpUID, Amount: 50000},
			setupMocks: func(r *MockRepository, g *MockGateway) {
				r.On("PaymentExistsByMerchantUID", mock.Anything, "PAY_0").Return(false, nil).Once()
				g.On("GetToken", mock.Anything).Return(validToken(), nil).Once()
				g.On("Prepare", mock.Anything, "tok", mock.Anything).
					Return(&gateway.PrepareResponse{Code: 1, Message: "already registered"}, nil).Once()
			},
			wantErr: ErrAlreadyRegistered,
		},
		{
			name: "other gateway code",
			req:  &models.PreRegisterRequest{ImpUID: testImpUID, Amount: 50000},
			setupMocks: func(r *MockRepository, g *MockGateway) {
				r.On("PaymentExistsByMerchantUID", mock.Anything, "PAY_0").Return(false, nil).Once()
				g.On("GetToken", mock.Anything).Return(validToken(), nil).Once()
				g.On("Prepare", mock.Anything, "tok", mock.Anything).
					Return(&gateway.PrepareResponse{Code: -1, Message: "bad amount"}, nil).Once()
			},
			wantErr: gateway.ErrGateway,
		},
		{
			name: "gateway transport failure",
			req:  &models.PreRegisterRequest{ImpUID: testImpUID, Amount: 50000},
			setupMocks: func(r *MockRepository, g *MockGateway) {
				r.On("PaymentExistsByMerchantUID", mock.Anything, "PAY_0").Return(false, nil).Once()
				g.On("GetToken", mock.Anything).Return(validToken(), nil).Once()
				g.On("Prepare", mock.Anything, "tok", mock.Anything).
					Return(nil, fmt.Errorf("gateway.Prepare: %w", gateway.ErrGateway)).Once()
			},
			wantErr: gateway.ErrGateway,
		},
		{
			name: "authentication failure",
			req:  &models.PreRegisterRequest{ImpUID: testImpUID, Amount: 50000},
			setupMocks: func(r *MockRepository, g *MockGateway) {
				r.On("PaymentExistsByMerchantUID", mock.Anything, "PAY_0").Return(false, nil).Once()
				g.On("GetToken", mock.Anything).Return(nil, fmt.Errorf("gateway.GetToken: %w", gateway.ErrGatewayAuth)).Once()
			},
			wantErr: gateway.ErrGatewayAuth,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			gw := new(MockGateway)
			tt.setupMocks(repo, gw)

			svc := newTestService(repo, gw)
			n := 0
			svc.genUID = func() string {
				uid := fmt.Sprintf("PAY_%d", n)
				n++
				return uid
			}

			reg, err := svc.PreRegister(context.Background(), tt.req)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, reg)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantUID, reg.MerchantUID)
				assert.Equal(t, testImpUID, reg.ImpUID)
				assert.Equal(t, int64(50000), reg.Amount)
			}

			repo.AssertExpectations(t)
			gw.AssertExpectations(t)
		})
	}
}

func TestService_PreRegister_InvalidImpUIDMakesNoGatewayCall(t *testing.T) {
	repo := new(MockRepository)
	gw := new(MockGateway)
	svc := newTestService(repo, gw)

	_, err := svc.PreRegister(context.Background(), &models.PreRegisterRequest{ImpUID: "imp_999", Amount: 1000})
	require.ErrorIs(t, err, ErrInvalidArgument)

	gw.AssertNotCalled(t, "GetToken", mock.Anything)
	gw.AssertNotCalled(t, "Prepare", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "PaymentExistsByMerchantUID", mock.Anything, mock.Anything)
}

func TestService_PreRegister_RetriesOnCollision(t *testing.T) {
	repo := new(MockRepository)
	gw := new(MockGateway)

	stored := map[string]bool{"PAY_0": true, "PAY_1": true}
	for _, uid := range []string{"PAY_0", "PAY_1", "PAY_2"} {
		repo.On("PaymentExistsByMerchantUID", mock.Anything, uid).Return(stored[uid], nil).Once()
	}
	gw.On("GetToken", mock.Anything).Return(validToken(), nil).Once()
	gw.On("Prepare", mock.Anything, "tok", mock.Anything).
		Return(&gateway.PrepareResponse{}, nil).Once()

	svc := newTestService(repo, gw)
	n := 0
	svc.genUID = func() string {
		uid := fmt.Sprintf("PAY_%d", n)
		n++
		return uid
	}

	reg, err := svc.PreRegister(context.Background(), &models.PreRegisterRequest{ImpUID: testImpUID, Amount: 1000})
	require.NoError(t, err)
	assert.Equal(t, "PAY_2", reg.MerchantUID)
	assert.False(t, stored[reg.MerchantUID])
	repo.AssertNumberOfCalls(t, "PaymentExistsByMerchantUID", 3)
}

func TestService_PreRegister_GenerationBounded(t *testing.T) {
	repo := new(MockRepository)
	gw := new(MockGateway)

	repo.On("PaymentExistsByMerchantUID", mock.Anything, mock.Anything).Return(true, nil)

	svc := New(repo, gw, nil, newNoopLogger(), testImpUID, 3)
	_, err := svc.PreRegister(context.Background(), &models.PreRegisterRequest{ImpUID: testImpUID, Amount: 1000})

	require.ErrorIs(t, err, ErrUIDGenerationFailed)
	repo.AssertNumberOfCalls(t, "PaymentExistsByMerchantUID", 3)
	gw.AssertNotCalled(t, "Prepare", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_PreRegister_RepositoryError(t *testing.T) {
	repo := new(MockRepository)
	gw := new(MockGateway)
	dbErr := errors.New("db error")

	repo.On("PaymentExistsByMerchantUID", mock.Anything, mock.Anything).Return(false, dbErr).Once()

	svc := newTestService(repo, gw)
	_, err := svc.PreRegister(context.Background(), &models.PreRegisterRequest{ImpUID: testImpUID, Amount: 1000})
	require.ErrorIs(t, err, dbErr)
}

func TestNewMerchantUID(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		uid := newMerchantUID()
		assert.Regexp(t, `^PAY[0-9a-f]{32}$`, uid)
		_, dup := seen[uid]
		require.False(t, dup)
		seen[uid] = struct{}{}
	}
}

func TestService_Verify(t *testing.T) {
	record := &gateway.Payment{ImpUID: "imp_123", MerchantUID: "PAY_abc", Amount: 50000, Status: "paid"}

	tests := []struct {
		name       string
		req        *models.PaymentRequest
		setupMocks func(*MockGateway)
		want       bool
	}{
		{
			name: "all fields match",
			req:  &models.PaymentRequest{ImpUID: "imp_123", MerchantUID: "PAY_abc", Amount: 50000},
			setupMocks: func(g *MockGateway) {
				g.On("GetToken", mock.Anything).Return(validToken(), nil).Once()
				g.On("GetPayment", mock.Anything, "tok", "imp_123").Return(record, nil).Once()
			},
			want: true,
		},
		{
			name: "amount mismatch",
			req:  &models.PaymentRequest{ImpUID: "imp_123", MerchantUID: "PAY_abc", Amount: 100},
			setupMocks: func(g *MockGateway) {
				g.On("GetToken", mock.Anything).Return(validToken(), nil).Once()
				g.On("GetPayment", mock.Anything, "tok", "imp_123").Return(record, nil).Once()
			},
		},
		{
			name: "merchant_uid mismatch",
			req:  &models.PaymentRequest{ImpUID: "imp_123", MerchantUID: "PAY_xyz", Amount: 50000},
			setupMocks: func(g *MockGateway) {
				g.On("GetToken", mock.Anything).Return(validToken(), nil).Once()
				g.On("GetPayment", mock.Anything, "tok", "imp_123").Return(record, nil).Once()
			},
		},
		{
			name: "imp_uid mismatch",
			req:  &models.PaymentRequest{ImpUID: "imp_123", MerchantUID: "PAY_abc", Amount: 50000},
			setupMocks: func(g *MockGateway) {
				g.On("GetToken", mock.Anything).Return(validToken(), nil).Once()
				g.On("GetPayment", mock.Anything, "tok", "imp_123").
					Return(&gateway.Payment{ImpUID: "imp_999", MerchantUID: "PAY_abc", Amount: 50000}, nil).Once()
			},
		},
		{
			name:       "absent merchant_uid",
			req:        &models.PaymentRequest{ImpUID: "imp_123", Amount: 50000},
			setupMocks: func(*MockGateway) {},
		},
		{
			name:       "nil request",
			setupMocks: func(*MockGateway) {},
		},
		{
			name: "payment not found",
			req:  &models.PaymentRequest{ImpUID: "imp_123", MerchantUID: "PAY_abc", Amount: 50000},
			setupMocks: func(g *MockGateway) {
				g.On("GetToken", mock.Anything).Return(validToken(), nil).Once()
				g.On("GetPayment", mock.Anything, "tok", "imp_123").
					Return(nil, fmt.Errorf("gateway.GetPayment: %w", gateway.ErrPaymentNotFound)).Once()
			},
		},
		{
			name: "network failure",
			req:  &models.PaymentRequest{ImpUID: "imp_123", MerchantUID: "PAY_abc", Amount: 50000},
			setupMocks: func(g *MockGateway) {
				g.On("GetToken", mock.Anything).Return(validToken(), nil).Once()
				g.On("GetPayment", mock.Anything, "tok", "imp_123").
					Return(nil, fmt.Errorf("gateway.GetPayment: %w", gateway.ErrGateway)).Once()
			},
		},
		{
			name: "authentication failure",
			req:  &models.PaymentRequest{ImpUID: "imp_123", MerchantUID: "PAY_abc", Amount: 50000},
			setupMocks: func(g *MockGateway) {
				g.On("GetToken", mock.Anything).Return(nil, gateway.ErrGatewayAuth).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			gw := new(MockGateway)
			tt.setupMocks(gw)

			svc := newTestService(repo, gw)
			assert.Equal(t, tt.want, svc.Verify(context.Background(), tt.req))
			gw.AssertExpectations(t)
		})
	}
}

func TestService_AuthenticateUsesCache(t *testing.T) {
	repo := new(MockRepository)
	gw := new(MockGateway)
	cache := newMemCache()
	record := &gateway.Payment{ImpUID: "imp_123", MerchantUID: "PAY_abc", Amount: 50000}

	gw.On("GetToken", mock.Anything).Return(validToken(), nil).Once()
	gw.On("GetPayment", mock.Anything, "tok", "imp_123").Return(record, nil).Twice()

	svc := New(repo, gw, cache, newNoopLogger(), testImpUID, 5)
	req := &models.PaymentRequest{ImpUID: "imp_123", MerchantUID: "PAY_abc", Amount: 50000}

	assert.True(t, svc.Verify(context.Background(), req))
	assert.True(t, svc.Verify(context.Background(), req))

	gw.AssertExpectations(t)
	assert.Equal(t, "tok", cache.values[tokenCacheKey])
	assert.Equal(t, 1800*time.Second-tokenCacheSkew, cache.ttl[tokenCacheKey])
}

func TestService_AuthenticateIgnoresCacheErrors(t *testing.T) {
	repo := new(MockRepository)
	gw := new(MockGateway)
	cache := newMemCache()
	cache.getErr = errors.New("redis down")

	gw.On("GetToken", mock.Anything).Return(validToken(), nil).Once()

	svc := New(repo, gw, cache, newNoopLogger(), testImpUID, 5)
	token, err := svc.authenticate(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
}

func unauthorized() error {
	return fmt.Errorf("gateway.GetPayment: %w: %w", gateway.ErrGateway, gateway.ErrUnauthorized)
}

func TestService_Verify_RefreshesRejectedToken(t *testing.T) {
	repo := new(MockRepository)
	gw := new(MockGateway)
	cache := newMemCache()
	cache.values[tokenCacheKey] = "revoked"
	record := &gateway.Payment{ImpUID: "imp_123", MerchantUID: "PAY_abc", Amount: 50000}

	gw.On("GetPayment", mock.Anything, "revoked", "imp_123").Return(nil, unauthorized()).Once()
	gw.On("GetToken", mock.Anything).Return(validToken(), nil).Once()
	gw.On("GetPayment", mock.Anything, "tok", "imp_123").Return(record, nil).Twice()

	svc := New(repo, gw, cache, newNoopLogger(), testImpUID, 5)
	req := &models.PaymentRequest{ImpUID: "imp_123", MerchantUID: "PAY_abc", Amount: 50000}

	assert.True(t, svc.Verify(context.Background(), req))
	assert.Equal(t, "tok", cache.values[tokenCacheKey])
	assert.True(t, svc.Verify(context.Background(), req))

	gw.AssertExpectations(t)
}

func TestService_Verify_RetriesRejectedTokenOnce(t *testing.T) {
	repo := new(MockRepository)
	gw := new(MockGateway)

	gw.On("GetToken", mock.Anything).Return(validToken(), nil).Twice()
	gw.On("GetPayment", mock.Anything, "tok", "imp_123").Return(nil, unauthorized()).Twice()

	svc := newTestService(repo, gw)
	assert.False(t, svc.Verify(context.Background(), &models.PaymentRequest{ImpUID: "imp_123", MerchantUID: "PAY_abc", Amount: 50000}))

	gw.AssertExpectations(t)
	gw.AssertNumberOfCalls(t, "GetPayment", 2)
}

func TestService_PreRegister_RefreshesRejectedToken(t *testing.T) {
	repo := new(MockRepository)
	gw := new(MockGateway)
	cache := newMemCache()
	cache.values[tokenCacheKey] = "revoked"

	repo.On("PaymentExistsByMerchantUID", mock.Anything, "PAY_0").Return(false, nil).Once()
	prepareReq := gateway.PrepareRequest{ImpUID: testImpUID, MerchantUID: "PAY_0", Amount: 1000}
	gw.On("Prepare", mock.Anything, "revoked", prepareReq).
		Return(nil, fmt.Errorf("gateway.Prepare: %w: %w", gateway.ErrGateway, gateway.ErrUnauthorized)).Once()
	gw.On("GetToken", mock.Anything).Return(validToken(), nil).Once()
	gw.On("Prepare", mock.Anything, "tok", prepareReq).Return(&gateway.PrepareResponse{}, nil).Once()

	svc := New(repo, gw, cache, newNoopLogger(), testImpUID, 5)
	svc.genUID = func() string { return "PAY_0" }

	reg, err := svc.PreRegister(context.Background(), &models.PreRegisterRequest{ImpUID: testImpUID, Amount: 1000})
	require.NoError(t, err)
	assert.Equal(t, "PAY_0", reg.MerchantUID)
	assert.Equal(t, "tok", cache.values[tokenCacheKey])
	gw.AssertExpectations(t)
}

// newGatewayServer поднимает шлюз, который принимает только токен fresh.
func newGatewayServer(t *testing.T, prepare http.HandlerFunc) (*gateway.Client, *atomic.Int32) {
	t.Helper()
	var tokenCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/users/getToken", func(w http.ResponseWriter, _ *http.Request) {
		tokenCalls.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{"code": 0, "response": map[string]any{
			"access_token": "fresh", "expired_at": 1700001800, "now": 1700000000,
		}})
	})
	mux.HandleFunc("/payments/imp_123", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{"code": -1, "message": "Unauthorized"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"code": 0, "response": map[string]any{
			"imp_uid": "imp_123", "merchant_uid": "PAY_abc", "amount": 50000, "status": "paid",
		}})
	})
	if prepare != nil {
		mux.HandleFunc("/payments/prepare", prepare)
	}

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return gateway.NewClient(config.Gateway{
		BaseURL:        srv.URL,
		TimeoutGateway: 2 * time.Second,
		RetriesGateway: 2,
		RetryDelay:     time.Millisecond,
	}), &tokenCalls
}

func TestService_Verify_RevokedCachedTokenAgainstGateway(t *testing.T) {
	client, tokenCalls := newGatewayServer(t, nil)
	cache := newMemCache()
	cache.values[tokenCacheKey] = "revoked"

	svc := New(new(MockRepository), client, cache, newNoopLogger(), testImpUID, 5)
	req := &models.PaymentRequest{ImpUID: "imp_123", MerchantUID: "PAY_abc", Amount: 50000}

	for i := 0; i < 3; i++ {
		assert.True(t, svc.Verify(context.Background(), req))
	}
	assert.Equal(t, int32(1), tokenCalls.Load())
	assert.Equal(t, "fresh", cache.values[tokenCacheKey])
}

func TestService_PreRegister_ServerErrorIsNotReportedAsDuplicate(t *testing.T) {
	var prepareCalls atomic.Int32
	client, _ := newGatewayServer(t, func(w http.ResponseWriter, _ *http.Request) {
		if prepareCalls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"code": 1, "message": "already registered"})
	})
	repo := new(MockRepository)
	repo.On("PaymentExistsByMerchantUID", mock.Anything, mock.Anything).Return(false, nil).Once()

	svc := New(repo, client, nil, newNoopLogger(), testImpUID, 5)
	_, err := svc.PreRegister(context.Background(), &models.PreRegisterRequest{ImpUID: testImpUID, Amount: 1000})

	require.ErrorIs(t, err, gateway.ErrGateway)
	assert.NotErrorIs(t, err, ErrAlreadyRegistered)
	assert.Equal(t, int32(1), prepareCalls.Load())
}

func TestService_CreateOrder(t *testing.T) {
	buyer := &models.Member{UID: 7, Subscription: models.SubscribeBasicPlayer}
	competition := &models.Competition{ID: 3}
	fixed := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		req         *models.PaymentRequest
		competition *models.Competition
		setupMocks  func(*MockRepository)
		wantErr     error
	}{
		{
			name: "success with competition",
			req: &models.PaymentRequest{
				ImpUID: "imp_123", MerchantUID: "PAY_abc", Amount: 50000,
				Type: "COMPETITION_ENTRY", Status: "PAID", BuyerUID: 7,
			},
			competition: competition,
			setupMocks: func(r *MockRepository) {
				r.On("SavePayment", mock.Anything, mock.MatchedBy(func(p *models.Payment) bool {
					return p.BuyerUID == 7 && p.CompetitionID != nil && *p.CompetitionID == 3 &&
						p.Status == models.PaymentStatusPaid && p.Type == models.PaymentTypeCompetitionEntry &&
						p.CreatedAt.Equal(fixed)
				})).Return(int64(11), nil).Once()
			},
		},
		{
			name: "success without competition",
			req: &models.PaymentRequest{
				ImpUID: "imp_123", MerchantUID: "PAY_abc", Amount: 9900,
				Type: "SUBSCRIPTION", Status: "PAID", BuyerUID: 7,
			},
			setupMocks: func(r *MockRepository) {
				r.On("SavePayment", mock.Anything, mock.MatchedBy(func(p *models.Payment) bool {
					return p.CompetitionID == nil && p.Type == models.PaymentTypeSubscription
				})).Return(int64(12), nil).Once()
			},
		},
		{
			name:       "unknown status",
			req:        &models.PaymentRequest{Type: "SUBSCRIPTION", Status: "DONE"},
			setupMocks: func(*MockRepository) {},
			wantErr:    ErrInvalidArgument,
		},
		{
			name:       "unknown type",
			req:        &models.PaymentRequest{Type: "GIFT", Status: "PAID"},
			setupMocks: func(*MockRepository) {},
			wantErr:    ErrInvalidArgument,
		},
		{
			name: "repository error",
			req:  &models.PaymentRequest{Type: "SUBSCRIPTION", Status: "PAID"},
			setupMocks: func(r *MockRepository) {
				r.On("SavePayment", mock.Anything, mock.Anything).Return(int64(0), errors.New("db error")).Once()
			},
			wantErr: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			gw := new(MockGateway)
			tt.setupMocks(repo)

			svc := newTestService(repo, gw)
			svc.now = func() time.Time { return fixed }

			p, err := svc.CreateOrder(context.Background(), tt.req, buyer, tt.competition)
			if tt.wantErr != nil {
				require.Error(t, err)
				if errors.Is(tt.wantErr, ErrInvalidArgument) {
					assert.ErrorIs(t, err, ErrInvalidArgument)
				} else {
					assert.Contains(t, err.Error(), tt.wantErr.Error())
				}
				assert.Nil(t, p)
			} else {
				require.NoError(t, err)
				assert.NotZero(t, p.ID)
				assert.Equal(t, tt.req.MerchantUID, p.MerchantUID)
			}

			repo.AssertExpectations(t)
			gw.AssertNotCalled(t, "GetPayment", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestService_CompleteEndToEnd(t *testing.T) {
	repo := new(MockRepository)
	gw := new(MockGateway)
	competitionID := int64(3)
	req := &models.PaymentRequest{
		ImpUID: "imp_123", MerchantUID: "PAY_abc", Amount: 50000,
		Type: "COMPETITION_ENTRY", Status: "PAID", BuyerUID: 7, CompetitionID: &competitionID,
	}

	gw.On("GetToken", mock.Anything).Return(validToken(), nil).Once()
	gw.On("GetPayment", mock.Anything, "tok", "imp_123").
		Return(&gateway.Payment{ImpUID: "imp_123", MerchantUID: "PAY_abc", Amount: 50000, Status: "paid"}, nil).Once()
	repo.On("GetMember", mock.Anything, int64(7)).Return(&models.Member{UID: 7}, nil).Once()
	repo.On("GetCompetition", mock.Anything, int64(3)).Return(&models.Competition{ID: 3}, nil).Once()
	repo.On("SavePayment", mock.Anything, mock.Anything).Return(int64(1), nil).Once()

	svc := newTestService(repo, gw)
	p, err := svc.Complete(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, p.Status)
	assert.Equal(t, int64(50000), p.Amount)
	assert.Equal(t, int64(7), p.BuyerUID)
	require.NotNil(t, p.CompetitionID)
	assert.Equal(t, int64(3), *p.CompetitionID)
	repo.AssertExpectations(t)
	gw.AssertExpectations(t)
}

func TestService_CompleteRejectsTampered(t *testing.T) {
	repo := new(MockRepository)
	gw := new(MockGateway)

	gw.On("GetToken", mock.Anything).Return(validToken(), nil).Once()
	gw.On("GetPayment", mock.Anything, "tok", "imp_123").
		Return(&gateway.Payment{ImpUID: "imp_123", MerchantUID: "PAY_abc", Amount: 100}, nil).Once()

	svc := newTestService(repo, gw)
	_, err := svc.Complete(context.Background(), &models.PaymentRequest{
		ImpUID: "imp_123", MerchantUID: "PAY_abc", Amount: 50000, Type: "SUBSCRIPTION", Status: "PAID", BuyerUID: 7,
	})

	require.ErrorIs(t, err, ErrVerificationFailed)
	repo.AssertNotCalled(t, "SavePayment", mock.Anything, mock.Anything)
}

func TestService_ListByBuyer(t *testing.T) {
	repo := new(MockRepository)
	gw := new(MockGateway)

	repo.On("ListPaymentsByBuyer", mock.Anything, int64(7)).Return([]*models.Payment{
		{ID: 1, ImpUID: "imp_1", MerchantUID: "PAY_1", Amount: 1000, Type: models.PaymentTypeSubscription, Status: models.PaymentStatusPaid},
		{ID: 2, ImpUID: "imp_2", MerchantUID: "PAY_2", Amount: 2000, Type: models.PaymentTypeCompetitionEntry, Status: models.PaymentStatusReady},
	}, nil).Once()

	svc := newTestService(repo, gw)
	details, err := svc.ListByBuyer(context.Background(), 7)

	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, "PAY_1", details[0].MerchantUID)
	assert.Equal(t, models.PaymentStatusReady, details[1].Status)
}

func TestService_ListAll(t *testing.T) {
	tests := []struct {
		name      string
		payments  []*models.Payment
		repoErr   error
		wantLen   int
		wantError bool
	}{
		{name: "empty", payments: []*models.Payment{}, wantLen: 0},
		{name: "one", payments: []*models.Payment{{ID: 1, MerchantUID: "PAY_1"}}, wantLen: 1},
		{name: "error", repoErr: errors.New("db error"), wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			if tt.repoErr != nil {
				repo.On("ListPayments", mock.Anything).Return(nil, tt.repoErr).Once()
			} else {
				repo.On("ListPayments", mock.Anything).Return(tt.payments, nil).Once()
			}

			svc := newTestService(repo, new(MockGateway))
			details, err := svc.ListAll(context.Background())
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, details, tt.wantLen)
		})
	}
}
