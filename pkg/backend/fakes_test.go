package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/tectrixdev/unplayit/pkg/db"
	"github.com/tectrixdev/unplayit/pkg/dns"
	"github.com/tectrixdev/unplayit/pkg/model"
)

type fakeProvider struct {
	records map[string]dns.Record
	created []dns.SRVRecord
	deleted []string
	calls   []string
	nextID  int
	// keyByName makes record ids name-derived and rejects a second create for a
	// name, the way route53 does.
	keyByName bool

	errVerify error
	errCreate error
	errDelete error
	errList   error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{records: make(map[string]dns.Record)}
}

func (f *fakeProvider) Verify(_ context.Context) error {
	f.calls = append(f.calls, "verify")
	return f.errVerify
}

func (f *fakeProvider) CreateSRV(_ context.Context, record dns.SRVRecord) (string, error) {
	f.calls = append(f.calls, "create")
	if f.errCreate != nil {
		return "", f.errCreate
	}
	f.nextID++
	id := fmt.Sprintf("rec_%d", f.nextID)
	if f.keyByName {
		id = record.Name
		if _, ok := f.records[id]; ok {
			return "", &dns.APIError{StatusCode: 400, Message: "record set already exists"}
		}
	}
	f.created = append(f.created, record)
	f.records[id] = dns.Record{ID: id, Name: record.Name, Type: model.RecordTypeSRV, Comment: record.Comment}
	return id, nil
}

func (f *fakeProvider) Delete(_ context.Context, id string) error {
	f.calls = append(f.calls, "delete")
	if f.errDelete != nil {
		return f.errDelete
	}
	f.deleted = append(f.deleted, id)
	delete(f.records, id)
	return nil
}

func (f *fakeProvider) ListSRV(_ context.Context, _ string) ([]dns.Record, error) {
	if f.errList != nil {
		return nil, f.errList
	}
	var out []dns.Record
	for _, r := range f.records {
		out = append(out, r)
	}
	return out, nil
}

type fakeLookup struct {
	status model.ServerStatus
	err    error
	hosts  []string
}

func (f *fakeLookup) Lookup(_ context.Context, hostname string) (model.ServerStatus, error) {
	f.hosts = append(f.hosts, hostname)
	return f.status, f.err
}

type fakeDatabase struct {
	db.Database

	rows  map[int64]db.Registration
	calls []string

	// missHostname simulates a concurrent registration that the hostname
	// lookup did not see yet.
	missHostname bool

	errGetByUser     error
	errGetByHostname error
	errCreate        error
	errDelete        error
}

func newFakeDatabase() *fakeDatabase {
	return &fakeDatabase{rows: make(map[int64]db.Registration)}
}

func (f *fakeDatabase) GetRegistrationByUser(uid int64) (db.Registration, error) {
	f.calls = append(f.calls, "get-user")
	if f.errGetByUser != nil {
		return db.Registration{}, f.errGetByUser
	}
	return f.rows[uid], nil
}

func (f *fakeDatabase) GetRegistrationByHostname(full string) (db.Registration, error) {
	f.calls = append(f.calls, "get-hostname")
	if f.errGetByHostname != nil {
		return db.Registration{}, f.errGetByHostname
	}
	if f.missHostname {
		return db.Registration{}, nil
	}
	for _, r := range f.rows {
		if r.Full == full {
			return r, nil
		}
	}
	return db.Registration{}, nil
}

func (f *fakeDatabase) CreateRegistration(r db.Registration) error {
	f.calls = append(f.calls, "insert")
	if f.errCreate != nil {
		return f.errCreate
	}
	if _, ok := f.rows[r.UID]; ok {
		return errors.New("duplicate uid")
	}
	for _, row := range f.rows {
		if row.Full == r.Full {
			return errors.New("UNIQUE constraint failed: register.full")
		}
	}
	f.rows[r.UID] = r
	return nil
}

func (f *fakeDatabase) DeleteRegistration(uid int64) error {
	f.calls = append(f.calls, "delete")
	if f.errDelete != nil {
		return f.errDelete
	}
	delete(f.rows, uid)
	return nil
}

func (f *fakeDatabase) GetRegisteredDNSIDs() (map[string]bool, error) {
	ids := make(map[string]bool)
	for _, r := range f.rows {
		ids[r.DNSID] = true
	}
	return ids, nil
}
