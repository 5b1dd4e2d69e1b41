package dns

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/route53"
	"github.com/aws/aws-sdk-go/service/route53/route53iface"
)

type fakeRoute53 struct {
	route53iface.Route53API

	sets    []*route53.ResourceRecordSet
	changes []*route53.Change
	listErr error
}

func (f *fakeRoute53) GetHostedZoneWithContext(_ aws.Context, in *route53.GetHostedZoneInput, _ ...request.Option) (*route53.GetHostedZoneOutput, error) {
	return &route53.GetHostedZoneOutput{
		HostedZone: &route53.HostedZone{Id: in.Id, Name: aws.String("tectrix.dev.")},
	}, nil
}

func (f *fakeRoute53) ListResourceRecordSetsWithContext(_ aws.Context, in *route53.ListResourceRecordSetsInput, _ ...request.Option) (*route53.ListResourceRecordSetsOutput, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*route53.ResourceRecordSet
	for _, s := range f.sets {
		if in.StartRecordName == nil || aws.StringValue(s.Name) == aws.StringValue(in.StartRecordName)+"." {
			out = append(out, s)
		}
	}
	return &route53.ListResourceRecordSetsOutput{ResourceRecordSets: out}, nil
}

func (f *fakeRoute53) ListResourceRecordSetsPagesWithContext(_ aws.Context, _ *route53.ListResourceRecordSetsInput, fn func(*route53.ListResourceRecordSetsOutput, bool) bool, _ ...request.Option) error {
	if f.listErr != nil {
		return f.listErr
	}
	fn(&route53.ListResourceRecordSetsOutput{ResourceRecordSets: f.sets}, true)
	return nil
}

func (f *fakeRoute53) ChangeResourceRecordSetsWithContext(_ aws.Context, in *route53.ChangeResourceRecordSetsInput, _ ...request.Option) (*route53.ChangeResourceRecordSetsOutput, error) {
	for _, c := range in.ChangeBatch.Changes {
		if aws.StringValue(c.Action) != route53.ChangeActionCreate {
			continue
		}
		for _, s := range f.sets {
			if aws.StringValue(s.Name) == aws.StringValue(c.ResourceRecordSet.Name)+"." {
				return nil, awserr.NewRequestFailure(
					awserr.New(route53.ErrCodeInvalidChangeBatch, "record set already exists", nil), 400, "req-1")
			}
		}
		f.sets = append(f.sets, &route53.ResourceRecordSet{
			Name:            aws.String(aws.StringValue(c.ResourceRecordSet.Name) + "."),
			Type:            c.ResourceRecordSet.Type,
			TTL:             c.ResourceRecordSet.TTL,
			ResourceRecords: c.ResourceRecordSet.ResourceRecords,
		})
	}
	f.changes = append(f.changes, in.ChangeBatch.Changes...)
	return &route53.ChangeResourceRecordSetsOutput{}, nil
}

func srvSet(name string) *route53.ResourceRecordSet {
	return &route53.ResourceRecordSet{
		Name:            aws.String(name),
		Type:            aws.String(route53.RRTypeSrv),
		TTL:             aws.Int64(60),
		ResourceRecords: []*route53.ResourceRecord{{Value: aws.String("10 10 25565 1.2.3.4")}},
	}
}

func TestRoute53CreateSRV(t *testing.T) {
	fake := &fakeRoute53{}
	r, err := newRoute53(context.Background(), fake, "Z1", 60)
	if err != nil {
		t.Fatalf("newRoute53: %v", err)
	}
	if r.BaseDomain() != "tectrix.dev" {
		t.Fatalf("unexpected base domain %q", r.BaseDomain())
	}

	id, err := r.CreateSRV(context.Background(), SRVRecord{
		Name: "_minecraft._tcp.abc.join", Target: "1.2.3.4", Port: 25565, Priority: 10, Weight: 10,
	})
	if err != nil {
		t.Fatalf("CreateSRV: %v", err)
	}
	if id != "_minecraft._tcp.abc.join.tectrix.dev" {
		t.Fatalf("unexpected id %q", id)
	}
	if len(fake.changes) != 1 || aws.StringValue(fake.changes[0].Action) != route53.ChangeActionCreate {
		t.Fatalf("expected a single create change, got %+v", fake.changes)
	}
	got := aws.StringValue(fake.changes[0].ResourceRecordSet.ResourceRecords[0].Value)
	if got != "10 10 25565 1.2.3.4" {
		t.Fatalf("unexpected SRV value %q", got)
	}
}

func TestRoute53CreateSRVExisting(t *testing.T) {
	fake := &fakeRoute53{sets: []*route53.ResourceRecordSet{srvSet("_minecraft._tcp.abc.join.tectrix.dev.")}}
	r, err := newRoute53(context.Background(), fake, "Z1", 60)
	if err != nil {
		t.Fatalf("newRoute53: %v", err)
	}

	_, err = r.CreateSRV(context.Background(), SRVRecord{
		Name: "_minecraft._tcp.abc.join", Target: "5.6.7.8", Port: 25570, Priority: 10, Weight: 10,
	})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 400 {
		t.Fatalf("expected a 400 APIError, got %v", err)
	}
	if len(fake.changes) != 0 || len(fake.sets) != 1 {
		t.Fatalf("the existing record set must be left alone, got changes=%+v", fake.changes)
	}
	got := aws.StringValue(fake.sets[0].ResourceRecords[0].Value)
	if got != "10 10 25565 1.2.3.4" {
		t.Fatalf("existing record was overwritten: %q", got)
	}
}

func TestRoute53Delete(t *testing.T) {
	fake := &fakeRoute53{sets: []*route53.ResourceRecordSet{srvSet("_minecraft._tcp.abc.join.tectrix.dev.")}}
	r, err := newRoute53(context.Background(), fake, "Z1", 60)
	if err != nil {
		t.Fatalf("newRoute53: %v", err)
	}

	if err := r.Delete(context.Background(), "_minecraft._tcp.abc.join.tectrix.dev"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(fake.changes) != 1 || aws.StringValue(fake.changes[0].Action) != route53.ChangeActionDelete {
		t.Fatalf("expected a single delete change, got %+v", fake.changes)
	}

	if err := r.Delete(context.Background(), "_minecraft._tcp.nope.join.tectrix.dev"); err == nil {
		t.Fatal("expected error for unknown record")
	}
}

func TestRoute53ListSRV(t *testing.T) {
	fake := &fakeRoute53{sets: []*route53.ResourceRecordSet{
		srvSet("_minecraft._tcp.abc.join.tectrix.dev."),
		srvSet("_sip._tcp.phone.tectrix.dev."),
		{Name: aws.String("www.tectrix.dev."), Type: aws.String(route53.RRTypeCname)},
	}}
	r, err := newRoute53(context.Background(), fake, "Z1", 60)
	if err != nil {
		t.Fatalf("newRoute53: %v", err)
	}

	records, err := r.ListSRV(context.Background(), "_minecraft._tcp.")
	if err != nil {
		t.Fatalf("ListSRV: %v", err)
	}
	if len(records) != 1 || records[0].Name != "_minecraft._tcp.abc.join" {
		t.Fatalf("unexpected records: %+v", records)
	}
	if !records[0].CommentUnsupported {
		t.Fatal("route53 records carry no comment and must say so")
	}
}

func TestRoute53VerifyForbidden(t *testing.T) {
	fake := &fakeRoute53{
		listErr: awserr.NewRequestFailure(awserr.New("AccessDenied", "denied", nil), 403, "req-1"),
	}
	r, err := newRoute53(context.Background(), fake, "Z1", 60)
	if err != nil {
		t.Fatalf("newRoute53: %v", err)
	}

	if err := r.Verify(context.Background()); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
