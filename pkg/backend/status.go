package backend

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/tectrixdev/unplayit/pkg/model"
	"github.com/tectrixdev/unplayit/pkg/status"
)

type StatusView struct {
	Hostname string
	Online   bool
	OldIP    string
	Players  string
	Version  string
	CheckURL string
	// Reason says why the view is not online. It is logged, not shown.
	Reason string
}

// Status looks the hostname up once. An offline answer and a failed lookup produce
// the same view.
func (b *backend) Status(ctx context.Context, req model.RegisterRequest) StatusView {
	full := req.FQDN(b.cfg.BaseDomain)
	view := StatusView{
		Hostname: full,
		CheckURL: status.CheckURL(full),
	}

	s, err := b.status.Lookup(ctx, full)
	switch {
	case err != nil:
		view.Reason = fmt.Sprintf("lookup failed: %v", err)
	case !s.Online:
		view.Reason = "reported offline"
	default:
		view.Online = true
		view.OldIP = fmt.Sprintf("%s:%d", s.IP, req.Port)
		view.Players = fmt.Sprintf("%d/%d", s.Players.Online, s.Players.Max)
		view.Version = s.Version
		return view
	}

	logrus.WithField("hostname", full).Infof("server status uncertain: %s", view.Reason)
	return view
}
