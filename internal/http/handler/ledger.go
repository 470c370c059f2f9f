package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"fintra/internal/apperr"
	"fintra/internal/auth"
	"fintra/internal/ledger"

	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20

type LedgerHandler struct {
	Ledger *ledger.Service
	Log    logrus.FieldLogger
}

func (h *LedgerHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	var req ledger.TransactionRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, r, h.Log, apperr.Validation("request body is required"))
			return
		}
		writeError(w, r, h.Log, apperr.Wrap(apperr.ErrValidation, "invalid JSON body", err))
		return
	}

	txID, err := h.Ledger.RecordTransaction(r.Context(), id, req)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"id": txID})
}

func (h *LedgerHandler) Balance(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	bal, err := h.Ledger.GetBalance(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	// numeric with two decimals, not a quoted string
	writeJSON(w, http.StatusOK, map[string]any{"balance": json.Number(bal.StringFixed(2))})
}
