package rpc

import (
	"fmt"
	"math/big"
	"net/http"
	"strings"
)

type accountFundParams struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
}

type accountGetParams struct {
	Address string `json:"address"`
}

type balanceJSON struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
}

func parseAmount(value string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(strings.TrimSpace(value), 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", value)
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("amount must not be negative")
	}
	return amount, nil
}

func (s *Server) handleAccountFund(w http.ResponseWriter, req *RPCRequest) string {
	var params accountFundParams
	if err := decodeParams(req, &params); err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	addr, err := parseAddress("address", params.Address)
	if err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	account, err := s.node.FundAccount(addr, amount)
	if err != nil {
		return s.writeOutcome(w, req.ID, nil, err)
	}
	result := &balanceJSON{Address: params.Address, Balance: account.Balance.String()}
	return s.writeOutcome(w, req.ID, result, nil)
}

func (s *Server) handleGetBalance(w http.ResponseWriter, req *RPCRequest) string {
	var params accountGetParams
	if err := decodeParams(req, &params); err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	addr, err := parseAddress("address", params.Address)
	if err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	balance, err := s.node.Balance(addr)
	if err != nil {
		return s.writeOutcome(w, req.ID, nil, err)
	}
	result := &balanceJSON{Address: params.Address, Balance: balance.String()}
	return s.writeOutcome(w, req.ID, result, nil)
}
