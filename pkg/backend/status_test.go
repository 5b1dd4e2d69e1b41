package backend

import (
	"context"
	"errors"
	"testing"

	"github.com/tectrixdev/unplayit/pkg/model"
)

func TestStatusOnline(t *testing.T) {
	b, _, _, lookup := newTestBackend(t, Config{})

	view := b.Status(context.Background(), request("abc", "0", "1.2.3.4", "25565"))

	if !view.Online {
		t.Fatalf("expected online view, got %+v", view)
	}
	if view.Hostname != "abc.join.tectrix.dev" || view.Players != "3/10" || view.Version != "1.20" || view.OldIP != "1.2.3.4:25565" {
		t.Fatalf("unexpected view: %+v", view)
	}
	if len(lookup.hosts) != 1 || lookup.hosts[0] != "abc.join.tectrix.dev" {
		t.Fatalf("unexpected lookups: %v", lookup.hosts)
	}
}

func TestStatusOfflineAndFailureLookAlike(t *testing.T) {
	b, _, _, lookup := newTestBackend(t, Config{})
	req := request("abc", "0", "1.2.3.4", "25565")

	lookup.status = model.ServerStatus{Online: false}
	offline := b.Status(context.Background(), req)

	lookup.err = errors.New("timeout")
	failed := b.Status(context.Background(), req)

	if offline.Reason == failed.Reason {
		t.Fatalf("reasons should differ in logs, both %q", offline.Reason)
	}
	offline.Reason, failed.Reason = "", ""
	if offline != failed {
		t.Fatalf("views differ:\noffline=%+v\nfailed=%+v", offline, failed)
	}
	if offline.Online || offline.CheckURL != "https://mcsrvstat.us/server/abc.join.tectrix.dev" {
		t.Fatalf("unexpected view: %+v", offline)
	}
}
