// Package api exposes the signer and the outbox over a local REST service.
package api

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/uhyunpark/zklink-signer/pkg/crypto"
	"github.com/uhyunpark/zklink-signer/pkg/pack"
	"github.com/uhyunpark/zklink-signer/pkg/signer"
	"github.com/uhyunpark/zklink-signer/pkg/storage"
	"github.com/uhyunpark/zklink-signer/pkg/tx"
	"github.com/uhyunpark/zklink-signer/pkg/types"
)

const defaultOutboxLimit = 100

// Outbox is the subset of the bundle store the server needs.
type Outbox interface {
	Save(ctx context.Context, b *signer.TxSignature) (*storage.Record, error)
	Get(ctx context.Context, hash types.TxHash) (*storage.Record, error)
	List(ctx context.Context, limit int) ([]*storage.Record, error)
}

type Config struct {
	Signer *signer.Signer
	// Outbox is optional. Without it bundles are returned but not stored.
	Outbox         Outbox
	AllowedOrigins []string
	Logger         *zap.SugaredLogger
}

// Server handles the signing REST API
type Server struct {
	signer   *signer.Signer
	verifier *signer.Verifier
	outbox   Outbox
	router   *mux.Router
	cors     *cors.Cors
	log      *zap.SugaredLogger

	mu   sync.Mutex
	http *http.Server
}

func NewServer(cfg Config) (*Server, error) {
	if cfg.Signer == nil {
		return nil, fmt.Errorf("signer is required")
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	s := &Server{
		signer:   cfg.Signer,
		verifier: signer.NewVerifier(cfg.Signer.Domain()),
		outbox:   cfg.Outbox,
		router:   mux.NewRouter(),
		cors: cors.New(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
		}),
		log: log,
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/pack/amount", s.handlePack(packer{
		closest: pack.ClosestPackableAmount, pack: pack.PackAmount, packable: pack.IsAmountPackable,
	})).Methods("POST")
	api.HandleFunc("/pack/fee", s.handlePack(packer{
		closest: pack.ClosestPackableFee, pack: pack.PackFee, packable: pack.IsFeePackable,
	})).Methods("POST")

	api.HandleFunc("/sign/transfer", s.handleSignTransfer).Methods("POST")
	api.HandleFunc("/sign/withdraw", s.handleSignWithdraw).Methods("POST")
	api.HandleFunc("/sign/change-pubkey", s.handleSignChangePubKey).Methods("POST")
	api.HandleFunc("/sign/order", s.handleSignOrder).Methods("POST")
	api.HandleFunc("/sign/order-matching", s.handleSignOrderMatching).Methods("POST")
	api.HandleFunc("/verify", s.handleVerify).Methods("POST")

	api.HandleFunc("/outbox", s.handleListOutbox).Methods("GET")
	api.HandleFunc("/outbox/{hash}", s.handleGetOutbox).Methods("GET")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Handler returns the router wrapped in the CORS policy.
func (s *Server) Handler() http.Handler { return s.cors.Handler(s.router) }

// Start serves until Shutdown is called.
func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.mu.Lock()
	s.http = srv
	s.mu.Unlock()

	s.log.Infow("api_server_starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// ==============================
// Pack Handlers
// ==============================

type packer struct {
	closest  func(*big.Int) (*big.Int, error)
	pack     func(*big.Int) ([]byte, error)
	packable func(*big.Int) bool
}

func (s *Server) handlePack(p packer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PackRequest
		if !decodeBody(w, r, &req) {
			return
		}
		closest, err := p.closest(req.Value.Int())
		if err != nil {
			respondError(w, http.StatusBadRequest, "value cannot be packed", "value", err.Error())
			return
		}
		packed, err := p.pack(closest)
		if err != nil {
			s.respondErr(w, err)
			return
		}
		out, err := types.BigUintFromInt(closest)
		if err != nil {
			s.respondErr(w, err)
			return
		}
		respondJSON(w, PackResponse{
			Value:    req.Value,
			Closest:  out,
			Packable: p.packable(req.Value.Int()),
			Packed:   "0x" + hex.EncodeToString(packed),
		})
	}
}

// ==============================
// Sign Handlers
// ==============================

func (s *Server) handleSignTransfer(w http.ResponseWriter, r *http.Request) {
	var req SignTransferRequest
	if !decodeBody(w, r, &req) {
		return
	}
	bundle, err := s.signer.SignTransfer(req.Tx, req.TokenSymbol)
	s.finishBundle(w, r, bundle, err)
}

func (s *Server) handleSignWithdraw(w http.ResponseWriter, r *http.Request) {
	var req SignWithdrawRequest
	if !decodeBody(w, r, &req) {
		return
	}
	bundle, err := s.signer.SignWithdraw(req.Tx, req.TokenSymbol)
	s.finishBundle(w, r, bundle, err)
}

func (s *Server) handleSignChangePubKey(w http.ResponseWriter, r *http.Request) {
	var req SignChangePubKeyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	var (
		bundle *signer.TxSignature
		err    error
	)
	switch req.AuthType {
	case tx.AuthEthECDSA, "":
		bundle, err = s.signer.SignChangePubKeyWithEthEcdsaAuth(req.Tx)
	case tx.AuthOnchain:
		bundle, err = s.signer.SignChangePubKeyWithOnchainAuth(req.Tx)
	case tx.AuthEthCreate2:
		if req.Create2Data == nil {
			respondError(w, http.StatusBadRequest, "invalid request body", "create2Data", "required for EthCreate2")
			return
		}
		bundle, err = s.signer.SignChangePubKeyWithCreate2Auth(req.Tx, *req.Create2Data)
	default:
		respondError(w, http.StatusBadRequest, "invalid request body", "authType", fmt.Sprintf("unknown auth type %q", req.AuthType))
		return
	}
	s.finishBundle(w, r, bundle, err)
}

func (s *Server) handleSignOrder(w http.ResponseWriter, r *http.Request) {
	var req SignOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	signed, err := s.signer.SignOrder(req.Order)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	respondJSON(w, SignOrderResponse{Order: signed})
}

func (s *Server) handleSignOrderMatching(w http.ResponseWriter, r *http.Request) {
	var req SignOrderMatchingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	bundle, err := s.signer.SignOrderMatching(req.Tx)
	s.finishBundle(w, r, bundle, err)
}

// finishBundle stores a fresh bundle in the outbox when there is one and
// writes the response.
func (s *Server) finishBundle(w http.ResponseWriter, r *http.Request, bundle *signer.TxSignature, err error) {
	if err != nil {
		s.respondErr(w, err)
		return
	}
	hash, err := bundle.Hash()
	if err != nil {
		s.respondErr(w, err)
		return
	}
	resp := SignResponse{Hash: hash, Bundle: bundle}
	if s.outbox != nil {
		if _, err := s.outbox.Save(r.Context(), bundle); err != nil {
			s.log.Warnw("outbox_save_failed", "hash", hash.String(), "err", err)
			s.respondErr(w, err)
			return
		}
		resp.Stored = true
	}
	s.log.Infow("bundle_signed", "type", bundle.Tx.TxType().String(), "hash", hash.String(), "stored", resp.Stored)
	respondJSON(w, resp)
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Bundle.Tx.IsZero() {
		respondError(w, http.StatusBadRequest, "invalid request body", "bundle.tx", "missing transaction")
		return
	}
	hash, err := req.Bundle.Hash()
	if err != nil {
		s.respondErr(w, err)
		return
	}
	resp := VerifyResponse{Hash: hash}

	var owner common.Address
	if req.Owner != nil {
		owner = *req.Owner
	} else {
		owner, err = s.verifier.RecoverSigner(&req.Bundle, req.TokenSymbol)
		if err != nil {
			s.respondVerify(w, resp, err)
			return
		}
	}
	err = s.verifier.VerifyBundle(&req.Bundle, owner, req.TokenSymbol)
	if err == nil {
		resp.Signer = owner.Hex()
	}
	s.respondVerify(w, resp, err)
}

// respondVerify reports signature mismatches as an invalid result and
// everything else as a request error.
func (s *Server) respondVerify(w http.ResponseWriter, resp VerifyResponse, err error) {
	switch {
	case err == nil:
		resp.Valid = true
	case errors.Is(err, signer.ErrInvalidSignature), errors.Is(err, signer.ErrMissingSignature):
		resp.Reason = err.Error()
	default:
		s.respondErr(w, err)
		return
	}
	s.log.Debugw("bundle_verified", "hash", resp.Hash.String(), "valid", resp.Valid)
	respondJSON(w, resp)
}

// ==============================
// Outbox Handlers
// ==============================

func (s *Server) handleListOutbox(w http.ResponseWriter, r *http.Request) {
	if s.outbox == nil {
		respondError(w, http.StatusNotFound, "outbox disabled", "", "")
		return
	}
	limit := defaultOutboxLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "invalid limit", "limit", raw)
			return
		}
		limit = n
	}
	records, err := s.outbox.List(r.Context(), limit)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	out := make([]OutboxEntry, len(records))
	for i, rec := range records {
		out[i] = toEntry(rec)
	}
	respondJSON(w, out)
}

func (s *Server) handleGetOutbox(w http.ResponseWriter, r *http.Request) {
	if s.outbox == nil {
		respondError(w, http.StatusNotFound, "outbox disabled", "", "")
		return
	}
	hash, err := types.ParseTxHash(mux.Vars(r)["hash"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid hash", "hash", err.Error())
		return
	}
	rec, err := s.outbox.Get(r.Context(), hash)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	respondJSON(w, toEntry(rec))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, HealthResponse{
		Status:  "ok",
		Address: s.signer.Address().Hex(),
		Outbox:  s.outbox != nil,
	})
}

// ==============================
// Helper Functions
// ==============================

func toEntry(rec *storage.Record) OutboxEntry {
	return OutboxEntry{
		Seq:       rec.Seq,
		Hash:      rec.Hash,
		Type:      rec.TxType,
		AccountID: rec.AccountID,
		Nonce:     rec.Nonce,
		SavedAt:   rec.SavedAt,
		Bundle:    json.RawMessage(rec.Bundle),
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", "", err.Error())
		return false
	}
	return true
}

// respondErr maps domain errors onto status codes.
func (s *Server) respondErr(w http.ResponseWriter, err error) {
	var verr *types.ValidationError
	switch {
	case errors.As(err, &verr):
		respondError(w, http.StatusBadRequest, "validation failed", verr.Field, verr.Reason)
	case errors.Is(err, crypto.ErrUnsupportedOperation):
		respondError(w, http.StatusUnprocessableEntity, "unsupported by credential", "", err.Error())
	case errors.Is(err, storage.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found", "", err.Error())
	default:
		s.log.Errorw("request_failed", "err", err)
		respondError(w, http.StatusInternalServerError, "internal error", "", err.Error())
	}
}

func respondJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, error string, field string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Field:   field,
		Message: message,
	})
}
