package visitors

import (
	"fmt"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Tracker is the boundary the HTTP layer sees: page-view events in,
// firewall verdicts out. Neither touches game state and neither blocks.
type Tracker interface {
	RecordPageView(path, addr, userAgent string)
	Allowed(addr string) bool
}

// PageView is one recorded page load.
type PageView struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	Path      string
	Address   string
	UserAgent string
}

type Service struct {
	db      *gorm.DB // nil when no database is configured
	blocked []*net.IPNet
	queue   chan PageView
	log     *zap.Logger
}

// New builds the tracker. CIDRs may be bare addresses, which block the
// single host. A nil db disables persistence but keeps the firewall.
func New(db *gorm.DB, blockedCIDRs []string, log *zap.Logger) (*Service, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		db:    db,
		queue: make(chan PageView, 256),
		log:   log,
	}
	for _, raw := range blockedCIDRs {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if !strings.Contains(raw, "/") {
			if strings.Contains(raw, ":") {
				raw += "/128"
			} else {
				raw += "/32"
			}
		}
		_, ipnet, err := net.ParseCIDR(raw)
		if err != nil {
			return nil, fmt.Errorf("parse blocked cidr %q: %w", raw, err)
		}
		s.blocked = append(s.blocked, ipnet)
	}
	if db != nil {
		if err := db.AutoMigrate(&PageView{}); err != nil {
			return nil, fmt.Errorf("migrate visitors db: %w", err)
		}
	}
	go s.worker()
	return s, nil
}

// RecordPageView queues the event; a full queue drops it rather than
// stalling a request.
func (s *Service) RecordPageView(path, addr, userAgent string) {
	pv := PageView{Path: path, Address: hostOf(addr), UserAgent: userAgent}
	select {
	case s.queue <- pv:
	default:
	}
}

// Allowed checks the client address against the blocklist. Addresses that
// do not parse are let through; the firewall exists to shed known abuse,
// not to gatekeep.
func (s *Service) Allowed(addr string) bool {
	ip := net.ParseIP(hostOf(addr))
	if ip == nil {
		return true
	}
	for _, ipnet := range s.blocked {
		if ipnet.Contains(ip) {
			return false
		}
	}
	return true
}

func (s *Service) worker() {
	for pv := range s.queue {
		if s.db == nil {
			continue
		}
		if err := s.db.Create(&pv).Error; err != nil {
			s.log.Warn("record page view failed", zap.Error(err))
		}
	}
}

func hostOf(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
