package dns

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/route53"
	"github.com/aws/aws-sdk-go/service/route53/route53iface"
)

// Route53 serves a hosted zone. Record sets are unique by name and type, so
// the FQDN of the SRV record doubles as its record id. Records are created with
// CREATE, never UPSERT, so a second writer fails instead of taking over a set
// whose id another registration holds.
type Route53 struct {
	baseDomain string
	zoneID     string
	ttlSeconds int64

	svc route53iface.Route53API
}

func NewRoute53(ctx context.Context, zoneID string, recordTTLSecs int64) (*Route53, error) {
	s, err := session.NewSession()
	if err != nil {
		return nil, err
	}

	svc := route53.New(s, &aws.Config{
		MaxRetries: aws.Int(3),
	})

	return newRoute53(ctx, svc, zoneID, recordTTLSecs)
}

func newRoute53(ctx context.Context, svc route53iface.Route53API, zoneID string, recordTTLSecs int64) (*Route53, error) {
	z, err := svc.GetHostedZoneWithContext(ctx, &route53.GetHostedZoneInput{
		Id: aws.String(zoneID),
	})
	if err != nil {
		return nil, translateAWSError(err)
	}

	return &Route53{
		baseDomain: strings.TrimSuffix(aws.StringValue(z.HostedZone.Name), "."),
		zoneID:     aws.StringValue(z.HostedZone.Id),
		ttlSeconds: recordTTLSecs,
		svc:        svc,
	}, nil
}

func (r *Route53) BaseDomain() string {
	return r.baseDomain
}

func (r *Route53) Verify(ctx context.Context) error {
	_, err := r.svc.ListResourceRecordSetsWithContext(ctx, &route53.ListResourceRecordSetsInput{
		HostedZoneId: aws.String(r.zoneID),
		MaxItems:     aws.String("1"),
	})
	return translateAWSError(err)
}

func (r *Route53) CreateSRV(ctx context.Context, record SRVRecord) (string, error) {
	fqdn := record.Name + "." + r.baseDomain
	value := fmt.Sprintf("%d %d %d %s", record.Priority, record.Weight, record.Port, record.Target)

	input := &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(r.zoneID),
		ChangeBatch: &route53.ChangeBatch{
			Comment: aws.String(record.Comment),
			Changes: []*route53.Change{
				{
					Action: aws.String(route53.ChangeActionCreate),
					ResourceRecordSet: &route53.ResourceRecordSet{
						Name:            aws.String(fqdn),
						Type:            aws.String(route53.RRTypeSrv),
						TTL:             aws.Int64(r.ttlSeconds),
						ResourceRecords: []*route53.ResourceRecord{{Value: aws.String(value)}},
					},
				},
			},
		},
	}

	if _, err := r.svc.ChangeResourceRecordSetsWithContext(ctx, input); err != nil {
		return "", fmt.Errorf("failed to create route53 record %v: %w", fqdn, translateAWSError(err))
	}

	return fqdn, nil
}

func (r *Route53) Delete(ctx context.Context, id string) error {
	out, err := r.svc.ListResourceRecordSetsWithContext(ctx, &route53.ListResourceRecordSetsInput{
		HostedZoneId:    aws.String(r.zoneID),
		StartRecordName: aws.String(id),
		StartRecordType: aws.String(route53.RRTypeSrv),
		MaxItems:        aws.String("1"),
	})
	if err != nil {
		return fmt.Errorf("failed to look up route53 record %v: %w", id, translateAWSError(err))
	}

	var rrs *route53.ResourceRecordSet
	for _, set := range out.ResourceRecordSets {
		if strings.TrimSuffix(aws.StringValue(set.Name), ".") == id && aws.StringValue(set.Type) == route53.RRTypeSrv {
			rrs = set
		}
	}
	if rrs == nil {
		return fmt.Errorf("route53 record %v: %w", id, &APIError{StatusCode: 404, Message: "record set not found"})
	}

	_, err = r.svc.ChangeResourceRecordSetsWithContext(ctx, &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(r.zoneID),
		ChangeBatch: &route53.ChangeBatch{
			Changes: []*route53.Change{
				{
					Action:            aws.String(route53.ChangeActionDelete),
					ResourceRecordSet: rrs,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete route53 record %v: %w", id, translateAWSError(err))
	}
	return nil
}

func (r *Route53) ListSRV(ctx context.Context, prefix string) ([]Record, error) {
	var records []Record
	input := &route53.ListResourceRecordSetsInput{
		HostedZoneId: aws.String(r.zoneID),
	}

	err := r.svc.ListResourceRecordSetsPagesWithContext(ctx, input,
		func(page *route53.ListResourceRecordSetsOutput, lastPage bool) bool {
			for _, set := range page.ResourceRecordSets {
				if aws.StringValue(set.Type) != route53.RRTypeSrv {
					continue
				}
				fqdn := strings.TrimSuffix(aws.StringValue(set.Name), ".")
				name := strings.TrimSuffix(fqdn, "."+r.baseDomain)
				if !strings.HasPrefix(name, prefix) {
					continue
				}
				records = append(records, Record{
					ID:                 fqdn,
					Name:               name,
					Type:               route53.RRTypeSrv,
					CommentUnsupported: true,
				})
			}
			return true
		})
	if err != nil {
		return nil, translateAWSError(err)
	}

	return records, nil
}

func translateAWSError(err error) error {
	if err == nil {
		return nil
	}
	if reqErr, ok := err.(awserr.RequestFailure); ok {
		return &APIError{StatusCode: reqErr.StatusCode(), Message: reqErr.Message()}
	}
	return err
}
