package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	sdkmath "cosmossdk.io/math"
	"github.com/go-chi/chi/v5"

	"github.com/rebaselabs/rebase-bridge/internal/observability/metrics"
	"github.com/rebaselabs/rebase-bridge/internal/types"
)

func (s *Server) handleHealthcheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGlobalRate(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"rate": s.svc.Ledger().GetInterestRate().String(),
	})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAddress(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"address": addr.String(),
		"balance": s.svc.Ledger().BalanceOf(addr).String(),
	})
}

func (s *Server) handlePrincipal(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAddress(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"address":   addr.String(),
		"principal": s.svc.Ledger().PrincipalBalanceOf(addr).String(),
	})
}

func (s *Server) handleUserRate(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAddress(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"address": addr.String(),
		"rate":    s.svc.Ledger().GetUserInterestRate(addr).String(),
	})
}

type depositRequest struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("malformed request body: %w", err))
		return
	}
	addr, amount, err := parseAddressAmount(req.Address, req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.svc.Vault().Deposit(r.Context(), addr, amount); err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	metrics.IncDeposits()
	writeJSON(w, http.StatusOK, map[string]string{
		"address": addr.String(),
		"amount":  amount.String(),
		"rate":    s.svc.Ledger().GetUserInterestRate(addr).String(),
	})
}

type redeemRequest struct {
	Address string `json:"address"`
	// Amount may be "max" to redeem the full settled balance.
	Amount string `json:"amount"`
}

func (s *Server) handleRedeem(w http.ResponseWriter, r *http.Request) {
	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("malformed request body: %w", err))
		return
	}
	addr, err := types.NewAddress(req.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var amount sdkmath.Int
	if req.Amount == "max" {
		amount = types.MaxSentinel()
	} else {
		amount, err = parseAmount(req.Amount)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	paid, err := s.svc.Vault().Redeem(r.Context(), addr, amount)
	if err != nil {
		if types.IsRedeemPayoutFailedError(err) {
			metrics.IncRedeemPayoutFailures()
		}
		writeError(w, statusForError(err), err)
		return
	}
	metrics.IncRedeems()
	writeJSON(w, http.StatusOK, map[string]string{
		"address": addr.String(),
		"paid":    paid.String(),
	})
}

type bridgeSendRequest struct {
	Sender            string `json:"sender"`
	Receiver          string `json:"receiver"`
	Amount            string `json:"amount"`
	DestChainSelector uint64 `json:"dest_chain_selector"`
}

func (s *Server) handleBridgeSend(w http.ResponseWriter, r *http.Request) {
	var req bridgeSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("malformed request body: %w", err))
		return
	}
	sender, amount, err := parseAddressAmount(req.Sender, req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	receiver, err := types.NewAddress(req.Receiver)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	messageID, err := s.svc.SendToRemote(r.Context(), sender, receiver, amount, types.ChainSelector(req.DestChainSelector))
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message_id": messageID,
	})
}

func pathAddress(r *http.Request) (types.Address, error) {
	return types.NewAddress(chi.URLParam(r, "address"))
}

func parseAmount(raw string) (sdkmath.Int, error) {
	amount, ok := sdkmath.NewIntFromString(raw)
	if !ok || amount.IsNegative() {
		return sdkmath.ZeroInt(), fmt.Errorf("amount %q is not a non-negative integer", raw)
	}
	return amount, nil
}

func parseAddressAmount(rawAddr, rawAmount string) (types.Address, sdkmath.Int, error) {
	addr, err := types.NewAddress(rawAddr)
	if err != nil {
		return "", sdkmath.ZeroInt(), err
	}
	amount, err := parseAmount(rawAmount)
	if err != nil {
		return "", sdkmath.ZeroInt(), err
	}
	return addr, amount, nil
}

func statusForError(err error) int {
	switch {
	case types.IsUnauthorizedError(err):
		return http.StatusForbidden
	case types.IsInsufficientBalanceError(err),
		types.IsInvalidAmountError(err),
		types.IsUnknownRemoteChainError(err),
		types.IsPoolDataDecodeError(err):
		return http.StatusUnprocessableEntity
	case types.IsRedeemPayoutFailedError(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
