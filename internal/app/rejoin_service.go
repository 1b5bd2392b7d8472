package app

import (
	"fmt"
	"time"

	"twentyeight/internal/domain"

	"github.com/form3tech-oss/jwt-go"
)

// RejoinService issues and verifies signed seat-reclaim tokens. A player
// disconnected during a live hand presents the token on rejoin to get
// their seat back instead of being treated as a new participant.
type RejoinService struct {
	secret string
	ttl    time.Duration
}

// RejoinClaims is the verified content of a seat-reclaim token.
type RejoinClaims struct {
	UserID  string
	TableID string
	Seat    domain.Seat
}

// NewRejoinService constructs the token service. ttl bounds how long a
// vacated seat stays reclaimable.
func NewRejoinService(secret string, ttl time.Duration) *RejoinService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RejoinService{secret: secret, ttl: ttl}
}

// IssueToken signs a token binding the user to their seat at the table.
func (s *RejoinService) IssueToken(userID, tableID string, seat domain.Seat) (string, error) {
	if s == nil || s.secret == "" {
		return "", fmt.Errorf("rejoin token service is not configured")
	}
	if userID == "" || tableID == "" {
		return "", fmt.Errorf("user and table are required")
	}
	if seat < 0 || seat >= domain.NumSeats {
		return "", fmt.Errorf("invalid seat %d", seat)
	}

	claims := jwt.MapClaims{
		"sub":  userID,
		"tbl":  tableID,
		"seat": int64(seat),
		"exp":  time.Now().Add(s.ttl).Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// VerifyToken validates a seat-reclaim token and returns its claims.
func (s *RejoinService) VerifyToken(tokenString string) (RejoinClaims, error) {
	if s == nil || s.secret == "" {
		return RejoinClaims{}, fmt.Errorf("rejoin token service is not configured")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return RejoinClaims{}, fmt.Errorf("invalid rejoin token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return RejoinClaims{}, fmt.Errorf("invalid rejoin token claims")
	}
	sub, _ := claims["sub"].(string)
	tbl, _ := claims["tbl"].(string)
	seatF, seatOK := claims["seat"].(float64)
	if sub == "" || tbl == "" || !seatOK {
		return RejoinClaims{}, fmt.Errorf("rejoin token claims incomplete")
	}
	seat := domain.Seat(int(seatF))
	if seat < 0 || seat >= domain.NumSeats {
		return RejoinClaims{}, fmt.Errorf("rejoin token seat out of range")
	}
	return RejoinClaims{UserID: sub, TableID: tbl, Seat: seat}, nil
}
