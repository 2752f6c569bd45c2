package rpc

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"agoradeals/core"
	"agoradeals/crypto"
	"agoradeals/observability/metrics"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
)

// Options configures the RPC server.
type Options struct {
	// AuthToken guards mutating methods when set. Falls back to the
	// AGORA_RPC_TOKEN environment variable.
	AuthToken string
	// RateLimitPerMin caps requests per client address per minute.
	RateLimitPerMin int
	// Logger receives request logs. Defaults to slog.Default.
	Logger *slog.Logger
}

// Server exposes the node over JSON-RPC 2.0.
type Server struct {
	node      *core.Node
	logger    *slog.Logger
	authToken string

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewServer constructs a server over the node.
func NewServer(node *core.Node, opts Options) *Server {
	token := strings.TrimSpace(opts.AuthToken)
	if token == "" {
		token = strings.TrimSpace(os.Getenv("AGORA_RPC_TOKEN"))
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	perMin := opts.RateLimitPerMin
	if perMin <= 0 {
		perMin = 600
	}
	return &Server{
		node:      node,
		logger:    logger,
		authToken: token,
		limiters:  make(map[string]*rate.Limiter),
		limit:     rate.Limit(float64(perMin) / 60.0),
		burst:     perMin,
	}
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Post("/", s.handle)
	return r
}

// Start serves the router on addr and blocks.
func (s *Server) Start(addr string) error {
	s.logger.Info("starting JSON-RPC server", "addr", addr)
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return server.ListenAndServe()
}

func (s *Server) limiterFor(remoteAddr string) *rate.Limiter {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	limiter, ok := s.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(s.limit, s.burst)
		s.limiters[host] = limiter
	}
	return limiter
}

func (s *Server) requireAuth(r *http.Request) *RPCError {
	if s.authToken == "" {
		return nil
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return &RPCError{Code: codeUnauthorized, Message: "bearer token required"}
	}
	if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(s.authToken)) != 1 {
		return &RPCError{Code: codeUnauthorized, Message: "invalid token"}
	}
	return nil
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	defer func() {
		_ = reader.Close()
	}()

	requestID := uuid.NewString()
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-Id", requestID)

	if !s.limiterFor(r.RemoteAddr).Allow() {
		writeError(w, http.StatusTooManyRequests, nil, codeRateLimited, "rate limit exceeded", nil)
		return
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		status := http.StatusBadRequest
		message := "failed to read request body"
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			status = http.StatusRequestEntityTooLarge
			message = fmt.Sprintf("request body exceeds %d bytes", maxRequestBytes)
		}
		writeError(w, status, nil, codeInvalidRequest, message, err.Error())
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		writeError(w, http.StatusBadRequest, nil, codeInvalidRequest, "request body required", nil)
		return
	}

	req := &RPCRequest{}
	if err := json.Unmarshal(body, req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "invalid JSON payload", err.Error())
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "unsupported jsonrpc version", req.JSONRPC)
		return
	}
	if req.Method == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "method required", nil)
		return
	}

	start := time.Now()
	outcome := s.dispatch(w, r, req)
	metrics.ObserveRequest(req.Method, outcome, time.Since(start).Seconds())
	s.logger.Debug("rpc request",
		"requestId", requestID,
		"method", req.Method,
		"outcome", outcome,
		"remote", r.RemoteAddr,
	)
}

// dispatch routes the request to its handler and reports the outcome label
// used for metrics.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, req *RPCRequest) string {
	if mutatingMethods[req.Method] {
		if authErr := s.requireAuth(r); authErr != nil {
			writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
			return "unauthorized"
		}
	}
	switch req.Method {
	case "marketplace_initialize":
		return s.handleMarketplaceInitialize(w, req)
	case "marketplace_setFee":
		return s.handleMarketplaceSetFee(w, req)
	case "marketplace_registerMerchant":
		return s.handleRegisterMerchant(w, req)
	case "marketplace_getRegistry":
		return s.handleGetRegistry(w, req)
	case "marketplace_getMerchant":
		return s.handleGetMerchant(w, req)
	case "promotion_create":
		return s.handlePromotionCreate(w, req)
	case "promotion_get":
		return s.handlePromotionGet(w, req)
	case "geo_getCell":
		return s.handleGeoGetCell(w, req)
	case "coupon_mint":
		return s.handleCouponMint(w, req)
	case "coupon_transfer":
		return s.handleCouponTransfer(w, req)
	case "coupon_redeem":
		return s.handleCouponRedeem(w, req)
	case "coupon_get":
		return s.handleCouponGet(w, req)
	case "exchange_list":
		return s.handleExchangeList(w, req)
	case "exchange_cancel":
		return s.handleExchangeCancel(w, req)
	case "exchange_buy":
		return s.handleExchangeBuy(w, req)
	case "exchange_getListing":
		return s.handleExchangeGetListing(w, req)
	case "social_addComment":
		return s.handleAddComment(w, req)
	case "social_likeComment":
		return s.handleLikeComment(w, req)
	case "social_rate":
		return s.handleRatePromotion(w, req)
	case "social_getComment":
		return s.handleGetComment(w, req)
	case "social_getRating":
		return s.handleGetRating(w, req)
	case "social_getRatingStats":
		return s.handleGetRatingStats(w, req)
	case "oracle_initialize":
		return s.handleOracleInitialize(w, req)
	case "oracle_updateDeal":
		return s.handleOracleUpdateDeal(w, req)
	case "oracle_getConfig":
		return s.handleOracleGetConfig(w, req)
	case "oracle_getDeal":
		return s.handleOracleGetDeal(w, req)
	case "reputation_get":
		return s.handleReputationGet(w, req)
	case "reputation_mintBadge":
		return s.handleMintBadge(w, req)
	case "reputation_getBadge":
		return s.handleGetBadge(w, req)
	case "account_fund":
		return s.handleAccountFund(w, req)
	case "account_getBalance":
		return s.handleGetBalance(w, req)
	default:
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, "method not found", req.Method)
		return "not_found"
	}
}

// mutatingMethods lists the methods that change ledger state and therefore
// require the auth token when one is configured.
var mutatingMethods = map[string]bool{
	"marketplace_initialize":       true,
	"marketplace_setFee":           true,
	"marketplace_registerMerchant": true,
	"promotion_create":             true,
	"coupon_mint":                  true,
	"coupon_transfer":              true,
	"coupon_redeem":                true,
	"exchange_list":                true,
	"exchange_cancel":              true,
	"exchange_buy":                 true,
	"social_addComment":            true,
	"social_likeComment":           true,
	"social_rate":                  true,
	"oracle_initialize":            true,
	"oracle_updateDeal":            true,
	"reputation_mintBadge":         true,
	"account_fund":                 true,
}

// decodeParams unmarshals the first positional parameter into out.
func decodeParams(req *RPCRequest, out interface{}) error {
	if len(req.Params) == 0 {
		return fmt.Errorf("params required")
	}
	if len(req.Params) > 1 {
		return fmt.Errorf("expected a single params object")
	}
	return json.Unmarshal(req.Params[0], out)
}

func parseAddress(field, value string) (crypto.Address, error) {
	addr, err := crypto.DecodeAddress(strings.TrimSpace(value))
	if err != nil {
		return crypto.Address{}, fmt.Errorf("invalid %s address: %w", field, err)
	}
	return addr, nil
}

// writeOutcome reports the handler result: a named module error maps to its
// stable code, success writes the result payload.
func (s *Server) writeOutcome(w http.ResponseWriter, id interface{}, result interface{}, err error) string {
	if err != nil {
		code, status := errorCode(err)
		writeError(w, status, id, code, err.Error(), nil)
		return "error"
	}
	writeResult(w, id, result)
	return "ok"
}

func (s *Server) invalidParams(w http.ResponseWriter, id interface{}, err error) string {
	writeError(w, http.StatusBadRequest, id, codeInvalidParams, "invalid params", err.Error())
	return "invalid_params"
}
