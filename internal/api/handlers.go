package api

import (
	"fmt"
	"net"
	"net/http"

	"github.com/noobcash/noobcash-go/internal/ledger"
	"github.com/noobcash/noobcash-go/internal/node"
	"github.com/noobcash/noobcash-go/pkg/result"
)

type registerBody struct {
	Port      int    `json:"port"`
	PublicKey string `json:"public_key"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body registerBody
	if err := decodeJSON(r, &body); err != nil {
		writeResult(w, result.Invalid("malformed request body"))
		return
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	address := fmt.Sprintf("http://%s:%d", host, body.Port)

	id, err := s.node.HandleRegister(address, body.PublicKey)
	if err != nil {
		writeResult(w, result.Invalid(err.Error()))
		return
	}
	writeResult(w, result.Ok(map[string]int{"id": id}))
}

type enrollBody struct {
	Network    []node.Peer       `json:"network"`
	Blockchain ledger.Blockchain `json:"blockchain"`
	Wallets    []node.WalletWire `json:"wallets"`
}

func (s *Server) handleEnroll(w http.ResponseWriter, r *http.Request) {
	var body enrollBody
	if err := decodeJSON(r, &body); err != nil {
		writeResult(w, result.Invalid("malformed request body"))
		return
	}
	writeResult(w, s.node.HandleEnroll(body.Network, body.Blockchain, body.Wallets))
}

type createTransactionBody struct {
	RecipientAddress string `json:"recipient_address"`
	Amount           int64  `json:"amount"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var body createTransactionBody
	if err := decodeJSON(r, &body); err != nil {
		writeResult(w, result.Invalid("malformed request body"))
		return
	}
	writeResult(w, s.node.CreateTransaction(r.Context(), body.RecipientAddress, body.Amount))
}

func (s *Server) handleBroadcastTransaction(w http.ResponseWriter, r *http.Request) {
	var tx ledger.Transaction
	if err := decodeJSON(r, &tx); err != nil {
		writeResult(w, result.Invalid("malformed transaction body"))
		return
	}
	writeResult(w, s.node.IngestTransaction(tx))
}

func (s *Server) handleViewTransactions(w http.ResponseWriter, r *http.Request) {
	writeResult(w, result.Ok(s.node.ViewTransactions()))
}

func (s *Server) handleBroadcastBlock(w http.ResponseWriter, r *http.Request) {
	var block ledger.Block
	if err := decodeJSON(r, &block); err != nil {
		writeResult(w, result.Invalid("malformed block body"))
		return
	}
	writeResult(w, s.node.IngestBlock(r.Context(), block))
}

func (s *Server) handleBlockchain(w http.ResponseWriter, r *http.Request) {
	writeResult(w, result.Ok(s.node.Blockchain()))
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	writeResult(w, result.Ok(map[string]int64{"balance": s.node.Balance()}))
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeResult(w, result.Ok(s.node.Metrics()))
}

func (s *Server) handleMetricsTotal(w http.ResponseWriter, r *http.Request) {
	if !s.node.IsBootstrap() {
		writeResult(w, result.Unauthorized("only the bootstrap node aggregates metrics"))
		return
	}
	writeResult(w, result.Ok(s.node.GatherMetrics(r.Context())))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeResult(w, result.Ok(map[string]any{
		"status":  "ok",
		"id":      s.node.ID(),
		"chain_length": s.node.Blockchain().Len(),
	}))
}
