package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// StatementMetadata describes the uploaded statement. Every field is optional.
type StatementMetadata struct {
	BankName       string `json:"bank_name,omitempty"`
	AccountID      string `json:"account_id,omitempty"`
	Currency       string `json:"currency,omitempty"`
	DateRangeStart *Date  `json:"date_range_start,omitempty"`
	DateRangeEnd   *Date  `json:"date_range_end,omitempty"`
}

// UploadResult is the normalized form of both upload response shapes.
type UploadResult struct {
	Transactions []Transaction
	Metadata     *StatementMetadata // nil for the bare array shape
}

// ErrUnknownUploadShape is returned when the body is neither shape.
var ErrUnknownUploadShape = errors.New("upload response is neither an object with transactions nor an array")

// DecodeUploadResponse decodes either {"transactions": [...], "metadata": {...}}
// or a bare array of transactions. The object shape is chosen by the presence
// of a "transactions" field.
func DecodeUploadResponse(body []byte) (UploadResult, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return UploadResult{}, ErrUnknownUploadShape
	}

	switch trimmed[0] {
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return UploadResult{}, fmt.Errorf("DecodeUploadResponse: %w", err)
		}
		raw, ok := fields["transactions"]
		if !ok {
			return UploadResult{}, ErrUnknownUploadShape
		}

		var result UploadResult
		if err := json.Unmarshal(raw, &result.Transactions); err != nil {
			return UploadResult{}, fmt.Errorf("DecodeUploadResponse: transactions: %w", err)
		}
		if meta, ok := fields["metadata"]; ok && !isNull(meta) {
			result.Metadata = &StatementMetadata{}
			if err := json.Unmarshal(meta, result.Metadata); err != nil {
				return UploadResult{}, fmt.Errorf("DecodeUploadResponse: metadata: %w", err)
			}
		}
		if result.Transactions == nil {
			result.Transactions = []Transaction{}
		}
		return result, nil

	case '[':
		var txs []Transaction
		if err := json.Unmarshal(trimmed, &txs); err != nil {
			return UploadResult{}, fmt.Errorf("DecodeUploadResponse: %w", err)
		}
		if txs == nil {
			txs = []Transaction{}
		}
		return UploadResult{Transactions: txs}, nil
	}

	return UploadResult{}, ErrUnknownUploadShape
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
