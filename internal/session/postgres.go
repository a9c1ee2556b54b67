package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sqlc-dev/pqtype"

	"github.com/DukeRupert/clientdesk/internal/domain"
)

// DBTX is the subset of pgxpool.Pool used by PostgresStore.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps sessions in the sessions table.
type PostgresStore struct {
	db DBTX
}

// NewPostgresStore creates a store backed by db.
func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

const createSession = `
INSERT INTO sessions (id, token_hash, backend_token, user_data, ip_address, user_agent, expires_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

func (p *PostgresStore) Create(ctx context.Context, tokenHash string, s *domain.Session) error {
	userData, err := json.Marshal(s.User)
	if err != nil {
		return fmt.Errorf("encode session user: %w", err)
	}

	_, err = p.db.Exec(ctx, createSession,
		s.ID,
		tokenHash,
		s.Token,
		pqtype.NullRawMessage{RawMessage: userData, Valid: true},
		inetFromAddr(s.IPAddress),
		s.UserAgent,
		s.ExpiresAt,
		s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

const getSession = `
SELECT id, backend_token, user_data, ip_address, user_agent, expires_at, created_at
FROM sessions
WHERE token_hash = $1`

func (p *PostgresStore) Get(ctx context.Context, tokenHash string) (*domain.Session, error) {
	var (
		s        domain.Session
		userData pqtype.NullRawMessage
		ip       pqtype.Inet
	)
	err := p.db.QueryRow(ctx, getSession, tokenHash).Scan(
		&s.ID,
		&s.Token,
		&userData,
		&ip,
		&s.UserAgent,
		&s.ExpiresAt,
		&s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select session: %w", err)
	}

	if userData.Valid && len(userData.RawMessage) > 0 {
		if err := json.Unmarshal(userData.RawMessage, &s.User); err != nil {
			return nil, fmt.Errorf("decode session user: %w", err)
		}
	}
	s.IPAddress = addrFromInet(ip)
	return &s, nil
}

const deleteSession = `DELETE FROM sessions WHERE token_hash = $1`

func (p *PostgresStore) Delete(ctx context.Context, tokenHash string) error {
	if _, err := p.db.Exec(ctx, deleteSession, tokenHash); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

const deleteExpiredSessions = `DELETE FROM sessions WHERE expires_at <= $1 RETURNING id`

func (p *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	rows, err := p.db.Query(ctx, deleteExpiredSessions, now)
	if err != nil {
		return nil, fmt.Errorf("delete expired sessions: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan expired session: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("delete expired sessions: %w", err)
	}
	return ids, nil
}

func inetFromAddr(addr netip.Addr) pqtype.Inet {
	if !addr.IsValid() {
		return pqtype.Inet{}
	}
	ip := net.IP(addr.Unmap().AsSlice())
	bits := len(ip) * 8
	return pqtype.Inet{
		IPNet: net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)},
		Valid: true,
	}
}

func addrFromInet(in pqtype.Inet) netip.Addr {
	if !in.Valid {
		return netip.Addr{}
	}
	addr, ok := netip.AddrFromSlice(in.IPNet.IP)
	if !ok {
		return netip.Addr{}
	}
	return addr.Unmap()
}
