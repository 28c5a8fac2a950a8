package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

const maxRPCBodyBytes int64 = 64 << 10

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	if !s.applyCORS(w, r) {
		return
	}
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if !s.authorize(w, r) {
		return
	}
	if !s.limiter.Allow(rateLimitKey(r, extractToken(r))) {
		w.WriteHeader(http.StatusTooManyRequests)
		writeRPC(w, rpcResponse{JSONRPC: "2.0", Error: &rpcError{Code: codeRateLimited, Message: "rate limit exceeded"}})
		return
	}
	if s.service == nil {
		writeRPC(w, rpcResponse{
			JSONRPC: "2.0",
			Error:   &rpcError{Code: codeServiceUnavailable, Message: "service is not initialized"},
		})
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRPCBodyBytes)
	var req rpcRequest
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		writeRPC(w, rpcResponse{
			JSONRPC: "2.0",
			Error:   &rpcError{Code: codeParseError, Message: "parse error"},
		})
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeRPCInvalidRequest(w, req.ID)
		return
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		writeRPCInvalidRequest(w, req.ID)
		return
	}

	reqID := fmt.Sprintf("rpc_%d", time.Now().UnixNano())
	started := time.Now()
	s.logger.Info("rpc request", "request_id", reqID, "method", req.Method)

	result, rpcErr := s.dispatch(r.Context(), req.Method, req.Params)
	elapsed := time.Since(started)
	code := 0
	if rpcErr != nil {
		code = rpcErr.Code
		s.logger.Warn("rpc failed", "request_id", reqID, "method", req.Method, "rpc_code", rpcErr.Code, "latency_ms", elapsed.Milliseconds())
	} else {
		s.logger.Info("rpc response", "request_id", reqID, "method", req.Method, "latency_ms", elapsed.Milliseconds())
	}
	s.metrics.ObserveRPC(req.Method, code, elapsed)

	writeRPC(w, rpcResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
		Error:   rpcErr,
	})
}

func (s *Server) dispatch(ctx context.Context, method string, raw json.RawMessage) (any, *rpcError) {
	switch method {
	case "health_check":
		return map[string]string{"status": "ok"}, nil
	case "mnemonic.encode":
		keyHex, err := decodeStringParam(raw, "key_hex")
		if err != nil {
			return nil, rpcInvalidParams()
		}
		phrase, err := s.service.EncodeKey(keyHex)
		if err != nil {
			return nil, mapServiceError(err)
		}
		return map[string]any{"phrase": phrase.String(), "words": []string(phrase)}, nil
	case "mnemonic.decode":
		phrase, err := decodeStringParam(raw, "phrase")
		if err != nil {
			return nil, rpcInvalidParams()
		}
		keyHex, err := s.service.DecodePhrase(phrase)
		if err != nil {
			return nil, mapServiceError(err)
		}
		return map[string]string{"key_hex": keyHex}, nil
	case "mnemonic.wordlist":
		return s.service.WordlistInfo(), nil
	case "identity.create":
		step, err := s.service.CreateIdentity()
		if err != nil {
			return nil, mapServiceError(err)
		}
		return map[string]string{
			"identity_id": step.IdentityID,
			"session_id":  step.HexEncodedPublicKey,
			"mnemonic":    step.Mnemonic.String(),
		}, nil
	case "identity.get":
		id, err := s.service.GetIdentity()
		if err != nil {
			return nil, mapServiceError(err)
		}
		return identityResult(id.ID, id.SessionID), nil
	case "identity.restore":
		phrase, err := decodeStringParam(raw, "phrase")
		if err != nil {
			return nil, rpcInvalidParams()
		}
		id, err := s.service.RestoreIdentity(phrase)
		if err != nil {
			return nil, mapServiceError(err)
		}
		return identityResult(id.ID, id.SessionID), nil
	case "onboarding.register":
		userName, err := decodeOptionalStringParam(raw, "user_name")
		if err != nil {
			return nil, rpcInvalidParams()
		}
		res, err := s.service.Register(ctx, userName)
		if err != nil {
			return nil, mapServiceError(err)
		}
		return map[string]any{
			"registered":         true,
			"session_id":         res.SessionID,
			"profile_name_saved": res.ProfileNameSaved,
		}, nil
	default:
		return nil, &rpcError{Code: codeMethodNotFound, Message: "method not found"}
	}
}

func identityResult(identityID, sessionID string) map[string]string {
	return map[string]string{"identity_id": identityID, "session_id": sessionID}
}

func writeRPC(w http.ResponseWriter, resp rpcResponse) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func writeRPCInvalidRequest(w http.ResponseWriter, id json.RawMessage) {
	writeRPC(w, rpcResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &rpcError{Code: codeInvalidRequest, Message: "invalid request"},
	})
}
