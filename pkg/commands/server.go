package commands

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rancher/wrangler/pkg/signals"
	"github.com/sirupsen/logrus"
	"github.com/tectrixdev/unplayit/pkg/apiserver"
	"github.com/tectrixdev/unplayit/pkg/auth"
	"github.com/tectrixdev/unplayit/pkg/backend"
	"github.com/tectrixdev/unplayit/pkg/db"
	"github.com/tectrixdev/unplayit/pkg/dns"
	"github.com/tectrixdev/unplayit/pkg/status"
	"github.com/tectrixdev/unplayit/pkg/version"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"
)

type serverCmd struct{}

func (s *serverCmd) Execute(c *cli.Context) error {
	ctx := signals.SetupSignalHandler(context.Background())

	log := logrus.WithField("command", "server")

	log.Infof("version: %v", version.Get())

	database, err := openDatabase(ctx, c)
	if err != nil {
		return err
	}

	httpClient := &http.Client{Timeout: c.Duration("http-timeout")}

	provider, baseDomain, err := newProvider(ctx, c, httpClient)
	if err != nil {
		return err
	}

	lookup, err := status.NewClient(c.String("status-endpoint"), httpClient)
	if err != nil {
		return err
	}

	back, err := backend.New(backend.Config{
		BaseDomain:               baseDomain,
		CommentTag:               c.String("comment-tag"),
		SRVPriority:              c.Int("srv-priority"),
		SRVWeight:                c.Int("srv-weight"),
		StrictCleanup:            c.Bool("strict-cleanup"),
		ReconcileIntervalSeconds: c.Int64("reconcile-interval"),
		ReconcileGraceSeconds:    c.Int64("reconcile-grace"),
	}, provider, lookup, database)
	if err != nil {
		return err
	}

	sessions, err := auth.NewSessions(c.String("session-secret"), c.Duration("session-ttl"))
	if err != nil {
		return err
	}

	apiServer := apiserver.NewAPIServer(ctx, log, c.Int("port"))

	return apiServer.Start(back, sessions, auth.NewUsers(database))
}

func openDatabase(ctx context.Context, c *cli.Context) (db.Database, error) {
	return db.New(ctx, c.String("sql-dialect"), c.String("sql-dsn"), &gorm.Config{
		Logger: db.NewLogger(c.String("log-level")),
	})
}

func newProvider(ctx context.Context, c *cli.Context, httpClient *http.Client) (dns.Provider, string, error) {
	switch c.String("dns-provider") {
	case "vercel":
		v, err := dns.NewVercel(dns.VercelOptions{
			Endpoint: c.String("vercel-endpoint"),
			Domain:   c.String("base-domain"),
			Token:    c.String("vercel-token"),
			TeamID:   c.String("vercel-team-id"),
			TeamSlug: c.String("vercel-team-slug"),
		}, httpClient)
		return v, c.String("base-domain"), err
	case "route53":
		r, err := dns.NewRoute53(ctx, c.String("route53-zone-id"), c.Int64("route53-ttl"))
		if err != nil {
			return nil, "", err
		}
		return r, r.BaseDomain(), nil
	default:
		return nil, "", fmt.Errorf("unsupported dns provider: %s", c.String("dns-provider"))
	}
}

func serverCommand() *cli.Command {
	cmd := serverCmd{}

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:    "port",
			Usage:   "Port for the HTTP Server Port",
			EnvVars: []string{"UNPLAYIT_PORT", "PORT"},
			Value:   3000,
		},
		&cli.StringFlag{
			Name:    "base-domain",
			Usage:   "The parent domain subdomains are registered under",
			EnvVars: []string{"UNPLAYIT_BASE_DOMAIN"},
			Value:   "tectrix.dev",
		},
		&cli.StringFlag{
			Name:    "dns-provider",
			Usage:   "The DNS provider to manage records with, vercel or route53",
			EnvVars: []string{"UNPLAYIT_DNS_PROVIDER"},
			Value:   "vercel",
		},
		&cli.StringFlag{
			Name:    "vercel-endpoint",
			Usage:   "Base URL of the Vercel API",
			EnvVars: []string{"UNPLAYIT_VERCEL_ENDPOINT"},
			Value:   dns.DefaultVercelEndpoint,
		},
		&cli.StringFlag{
			Name:    "vercel-token",
			Usage:   "Bearer token for the Vercel API",
			EnvVars: []string{"UNPLAYIT_VERCEL_TOKEN", "DNS"},
		},
		&cli.StringFlag{
			Name:    "vercel-team-id",
			Usage:   "Vercel team the domain belongs to",
			EnvVars: []string{"UNPLAYIT_VERCEL_TEAM_ID", "TEAMID"},
		},
		&cli.StringFlag{
			Name:    "vercel-team-slug",
			Usage:   "Vercel team slug",
			EnvVars: []string{"UNPLAYIT_VERCEL_TEAM_SLUG"},
			Value:   "tectrixdev",
		},
		&cli.StringFlag{
			Name:    "route53-zone-id",
			Usage:   "Hosted zone to manage when dns-provider is route53",
			EnvVars: []string{"UNPLAYIT_ROUTE53_ZONE_ID"},
		},
		&cli.Int64Flag{
			Name:    "route53-ttl",
			Usage:   "TTL in seconds for route53 records",
			EnvVars: []string{"UNPLAYIT_ROUTE53_TTL"},
			Value:   60,
		},
		&cli.StringFlag{
			Name:    "status-endpoint",
			Usage:   "Base URL of the server status API",
			EnvVars: []string{"UNPLAYIT_STATUS_ENDPOINT"},
			Value:   status.DefaultEndpoint,
		},
		&cli.DurationFlag{
			Name:    "http-timeout",
			Usage:   "Timeout for calls to the DNS provider and status API",
			EnvVars: []string{"UNPLAYIT_HTTP_TIMEOUT"},
			Value:   10 * time.Second,
		},
		&cli.StringFlag{
			Name:    "comment-tag",
			Usage:   "Prefix of the audit comment on created records; the reconciler only touches records carrying it",
			EnvVars: []string{"UNPLAYIT_COMMENT_TAG"},
			Value:   backend.DefaultCommentTag,
		},
		&cli.IntFlag{
			Name:    "srv-priority",
			Usage:   "Priority of created SRV records",
			EnvVars: []string{"UNPLAYIT_SRV_PRIORITY"},
			Value:   backend.DefaultPriority,
		},
		&cli.IntFlag{
			Name:    "srv-weight",
			Usage:   "Weight of created SRV records",
			EnvVars: []string{"UNPLAYIT_SRV_WEIGHT"},
			Value:   backend.DefaultWeight,
		},
		&cli.BoolFlag{
			Name:    "strict-cleanup",
			Usage:   "Refuse to re-register when the previous DNS record could not be deleted",
			EnvVars: []string{"UNPLAYIT_STRICT_CLEANUP"},
		},
		&cli.Int64Flag{
			Name:    "reconcile-interval",
			Usage:   "Seconds between reconciler passes, 0 disables the reconciler",
			EnvVars: []string{"UNPLAYIT_RECONCILE_INTERVAL"},
			Value:   600,
		},
		&cli.Int64Flag{
			Name:    "reconcile-grace",
			Usage:   "Minimum age in seconds of an unreferenced record before the reconciler deletes it",
			EnvVars: []string{"UNPLAYIT_RECONCILE_GRACE"},
			Value:   300,
		},
		&cli.StringFlag{
			Name:     "session-secret",
			Usage:    "HMAC secret used to sign session cookies",
			EnvVars:  []string{"UNPLAYIT_SESSION_SECRET", "AUTH_SECRET"},
			Required: true,
		},
		&cli.DurationFlag{
			Name:    "session-ttl",
			Usage:   "Lifetime of a session",
			EnvVars: []string{"UNPLAYIT_SESSION_TTL"},
			Value:   7 * 24 * time.Hour,
		},
	}
	flags = append(flags, databaseFlags()...)

	return &cli.Command{
		Name:   "server",
		Usage:  "run the registration web server",
		Action: cmd.Execute,
		Flags:  append(flags, GlobalFlags()...),
		Before: Before,
	}
}
