package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tectrixdev/unplayit/pkg/db"
	"github.com/tectrixdev/unplayit/pkg/dns"
	"github.com/tectrixdev/unplayit/pkg/model"
	"github.com/tectrixdev/unplayit/pkg/status"
)

const (
	DefaultCommentTag = "unplayit"
	DefaultPriority   = 10
	DefaultWeight     = 10
)

type Config struct {
	BaseDomain  string
	CommentTag  string
	SRVPriority int
	SRVWeight   int
	// StrictCleanup aborts a re-registration when the previous DNS record could not be deleted.
	StrictCleanup bool

	ReconcileIntervalSeconds int64
	ReconcileGraceSeconds    int64
}

// CleanupReport describes the removal of a user's previous registration.
type CleanupReport struct {
	Previous db.Registration
	DNSErr   error
	RowErr   error
}

func (c CleanupReport) Attempted() bool {
	return c.Previous.Exists()
}

func (c CleanupReport) Partial() bool {
	return c.DNSErr != nil || c.RowErr != nil
}

type Result struct {
	Registration db.Registration
	Cleanup      CleanupReport
	Status       StatusView
}

type backend struct {
	cfg      Config
	provider dns.Provider
	status   status.Lookup
	db       db.Database

	firstSeen map[string]time.Time
}

func New(cfg Config, provider dns.Provider, lookup status.Lookup, database db.Database) (Backend, error) {
	if cfg.BaseDomain == "" {
		return nil, fmt.Errorf("base domain must be provided")
	}
	if cfg.CommentTag == "" {
		cfg.CommentTag = DefaultCommentTag
	}
	if cfg.SRVPriority == 0 {
		cfg.SRVPriority = DefaultPriority
	}
	if cfg.SRVWeight == 0 {
		cfg.SRVWeight = DefaultWeight
	}

	return &backend{
		cfg:       cfg,
		provider:  provider,
		status:    lookup,
		db:        database,
		firstSeen: make(map[string]time.Time),
	}, nil
}

func (b *backend) GetRootDomain() string {
	return b.cfg.BaseDomain
}

// Register replaces the user's registration with one for req. The provider record
// and the row are written in that order; a failed insert removes the new record again.
func (b *backend) Register(ctx context.Context, userID uint, req model.RegisterRequest) (Result, error) {
	var result Result
	uid := int64(userID)
	full := req.FQDN(b.cfg.BaseDomain)
	log := logrus.WithFields(logrus.Fields{"uid": uid, "hostname": full})

	if err := req.Validate(); err != nil {
		return result, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	if err := b.provider.Verify(ctx); err != nil {
		log.Errorf("dns credential check failed: %v", err)
		if errors.Is(err, dns.ErrForbidden) {
			return result, fmt.Errorf("%w: %v", ErrDNSForbidden, err)
		}
		return result, fmt.Errorf("%w: %v", ErrDNSUnavailable, err)
	}

	cleanup, err := b.removeExisting(ctx, uid)
	result.Cleanup = cleanup
	if err != nil {
		return result, err
	}

	taken, err := b.db.GetRegistrationByHostname(full)
	if err != nil {
		log.Errorf("hostname lookup failed: %v", err)
		return result, fmt.Errorf("%w: %v", ErrLookup, err)
	}
	if taken.Exists() {
		log.Infof("hostname already registered by user %d", taken.UID)
		return result, ErrHostnameInUse
	}

	record := dns.SRVRecord{
		Name:     req.SRVName(),
		Target:   req.Target,
		Port:     req.Port,
		Priority: b.cfg.SRVPriority,
		Weight:   b.cfg.SRVWeight,
		Comment:  fmt.Sprintf("%s, %d %s %d %s valid: true", b.cfg.CommentTag, uid, req.Target, req.Port, req.Label()),
	}
	dnsID, err := b.provider.CreateSRV(ctx, record)
	if err != nil {
		log.Errorf("failed to create dns record: %v", err)
		return result, fmt.Errorf("%w: %v", ErrRegister, err)
	}

	registration := db.Registration{
		UID:    uid,
		Full:   full,
		DNSID:  dnsID,
		Time:   time.Now().Unix(),
		Sub:    req.Word,
		Domain: req.DomainIndex,
	}
	if err := b.db.CreateRegistration(registration); err != nil {
		log.Errorf("failed to store registration, removing dns record %s: %v", dnsID, err)
		if cerr := b.provider.Delete(ctx, dnsID); cerr != nil {
			log.Errorf("compensating delete of dns record %s failed, leaving it to the reconciler: %v", dnsID, cerr)
		}
		return result, fmt.Errorf("%w: %v", ErrRegister, err)
	}

	log.WithField("dnsid", dnsID).Info("registered")
	result.Registration = registration
	result.Status = b.Status(ctx, req)
	return result, nil
}

// removeExisting deletes the user's previous record and row. A lost DNS delete only
// orphans a provider record, which the reconciler removes later; a lost row delete
// would leave two rows for one user, so it always aborts.
func (b *backend) removeExisting(ctx context.Context, uid int64) (CleanupReport, error) {
	var report CleanupReport

	existing, err := b.db.GetRegistrationByUser(uid)
	if err != nil {
		logrus.Errorf("failed to look up registration for user %d: %v", uid, err)
		return report, fmt.Errorf("%w: %v", ErrLookup, err)
	}
	if !existing.Exists() {
		return report, nil
	}
	report.Previous = existing

	if err := b.provider.Delete(ctx, existing.DNSID); err != nil {
		logrus.Warnf("failed to remove dns record %s of %s: %v", existing.DNSID, existing.Full, err)
		report.DNSErr = err
		if b.cfg.StrictCleanup {
			return report, fmt.Errorf("%w: %v", ErrPartialCleanup, err)
		}
	}

	if err := b.db.DeleteRegistration(uid); err != nil {
		logrus.Errorf("failed to remove registration row of %s: %v", existing.Full, err)
		report.RowErr = err
		return report, fmt.Errorf("%w: %v", ErrPartialCleanup, err)
	}

	return report, nil
}
