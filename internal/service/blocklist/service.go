package blocklist

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"salonbook/internal/domain/ipblock"

	"go.uber.org/zap"
)

var ErrInvalidIP = errors.New("invalid ip address")

type Store interface {
	Upsert(ctx context.Context, block *ipblock.BlockedIP) error
	Find(ctx context.Context, ip string) (ipblock.BlockedIP, bool, error)
	List(ctx context.Context) ([]ipblock.BlockedIP, error)
	Delete(ctx context.Context, ip string) (bool, error)
}

type Service struct {
	store Store
	log   *zap.Logger
	now   func() time.Time
}

func NewService(store Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, log: log, now: func() time.Time { return time.Now().UTC() }}
}

func normalize(ip string) (string, error) {
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidIP, ip)
	}
	return parsed.String(), nil
}

// Block adds or refreshes a block. A zero ttl blocks permanently.
func (s *Service) Block(ctx context.Context, ip, reason string, ttl time.Duration) (ipblock.BlockedIP, error) {
	addr, err := normalize(ip)
	if err != nil {
		return ipblock.BlockedIP{}, err
	}
	block := ipblock.BlockedIP{IP: addr, Reason: reason}
	if ttl > 0 {
		expires := s.now().Add(ttl)
		block.ExpiresAt = &expires
	}
	if err := s.store.Upsert(ctx, &block); err != nil {
		return ipblock.BlockedIP{}, fmt.Errorf("block ip: %w", err)
	}
	s.log.Info("ip blocked", zap.String("ip", addr), zap.String("reason", reason), zap.Duration("ttl", ttl))
	return block, nil
}

// Unblock reports whether a block was removed.
func (s *Service) Unblock(ctx context.Context, ip string) (bool, error) {
	addr, err := normalize(ip)
	if err != nil {
		return false, err
	}
	removed, err := s.store.Delete(ctx, addr)
	if err != nil {
		return false, fmt.Errorf("unblock ip: %w", err)
	}
	return removed, nil
}

func (s *Service) List(ctx context.Context) ([]ipblock.BlockedIP, error) {
	blocks, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list blocked ips: %w", err)
	}
	return blocks, nil
}

// IsBlocked ignores expired entries. Unparseable addresses are never blocked.
func (s *Service) IsBlocked(ctx context.Context, ip string) (bool, error) {
	addr, err := normalize(ip)
	if err != nil {
		return false, nil
	}
	block, found, err := s.store.Find(ctx, addr)
	if err != nil {
		return false, fmt.Errorf("check blocked ip: %w", err)
	}
	return found && block.ActiveAt(s.now()), nil
}
