package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"twentyeight/internal/app"
	"twentyeight/internal/config"
	"twentyeight/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// QuickMatchResponse is returned to clients requesting a joinable match.
type QuickMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

// RejoinTokenRequest names the match and seat the caller wants a
// seat-reclaim token for. The seat must actually be held by the caller;
// the match handler enforces that when the token is presented.
type RejoinTokenRequest struct {
	MatchID string `json:"match_id"`
	Seat    int    `json:"seat"`
}

// RejoinTokenResponse carries the signed token.
type RejoinTokenResponse struct {
	Token string `json:"token"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcQuickMatch, rpcQuickMatch); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcRejoinToken, rpcRejoinToken)
}

// rpcQuickMatch finds a match with an open seat or creates a fresh one.
func rpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	query := fmt.Sprintf("+label.open:>=1 +label.game:%s", GameName)
	limit := 1
	authoritative := true
	minSize := 0
	maxSize := domain.NumSeats

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, query)
	if err != nil {
		logger.Error("rpcQuickMatch [User:%s]: Failed to list matches: %v", userID, err)
		return "", err
	}

	if len(matches) > 0 {
		matchID := matches[0].MatchId
		logger.Info("rpcQuickMatch [User:%s]: Found existing match %s", userID, matchID)
		b, _ := json.Marshal(QuickMatchResponse{MatchID: matchID, IsNew: false})
		return string(b), nil
	}

	matchID, err := nk.MatchCreate(ctx, MatchName, nil)
	if err != nil {
		logger.Error("rpcQuickMatch [User:%s]: Failed to create match: %v", userID, err)
		return "", err
	}

	logger.Info("rpcQuickMatch [User:%s]: Created new match %s", userID, matchID)
	b, _ := json.Marshal(QuickMatchResponse{MatchID: matchID, IsNew: true})
	return string(b), nil
}

// rpcRejoinToken signs a token binding the authenticated user to a table
// seat so a dropped connection can reclaim it.
func rpcRejoinToken(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("No user session", 16) // UNAUTHENTICATED
	}

	var req RejoinTokenRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", 3) // INVALID_ARGUMENT
	}
	if req.MatchID == "" {
		return "", runtime.NewError("match_id required", 3)
	}
	if req.Seat < 0 || req.Seat >= domain.NumSeats {
		return "", runtime.NewError("seat out of range", 3)
	}

	cfg := config.GetTableConfig()
	if env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok {
		if overridden, err := config.ApplyEnv(cfg, env); err == nil {
			cfg = overridden
		}
	}

	svc := app.NewRejoinService(cfg.RejoinTokenSecret, time.Duration(cfg.RejoinTokenTTLSec)*time.Second)
	token, err := svc.IssueToken(userID, req.MatchID, domain.Seat(req.Seat))
	if err != nil {
		logger.Error("rpcRejoinToken [User:%s]: Failed to sign token: %v", userID, err)
		return "", runtime.NewError("Internal error", 13) // INTERNAL
	}

	b, _ := json.Marshal(RejoinTokenResponse{Token: token})
	return string(b), nil
}
