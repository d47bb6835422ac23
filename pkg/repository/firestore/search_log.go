package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/sleuth/pkg/domain/model/search"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// SearchLogCollection is the collection name of search records, before any
// prefix is applied.
const SearchLogCollection = "search_logs"

// searchLogDoc is the Firestore document representation of search.Record.
type searchLogDoc struct {
	ID         string    `firestore:"ID"`
	ChannelID  string    `firestore:"ChannelID"`
	UserID     string    `firestore:"UserID"`
	Kind       string    `firestore:"Kind"`
	Argument   string    `firestore:"Argument"`
	Scanned    int       `firestore:"Scanned"`
	Pages      int       `firestore:"Pages"`
	Matches    int       `firestore:"Matches"`
	Status     string    `firestore:"Status"`
	Error      string    `firestore:"Error"`
	StartedAt  time.Time `firestore:"StartedAt"`
	DurationMS int64     `firestore:"DurationMS"`
}

func toSearchLogDoc(r *search.Record) *searchLogDoc {
	return &searchLogDoc{
		ID:         string(r.ID),
		ChannelID:  r.ChannelID,
		UserID:     r.UserID,
		Kind:       string(r.Kind),
		Argument:   r.Argument,
		Scanned:    r.Scanned,
		Pages:      r.Pages,
		Matches:    r.Matches,
		Status:     string(r.Status),
		Error:      r.Error,
		StartedAt:  r.StartedAt.UTC(),
		DurationMS: r.Duration.Milliseconds(),
	}
}

func fromSearchLogDoc(d *searchLogDoc) *search.Record {
	return &search.Record{
		ID:        search.RecordID(d.ID),
		ChannelID: d.ChannelID,
		UserID:    d.UserID,
		Kind:      search.Kind(d.Kind),
		Argument:  d.Argument,
		Scanned:   d.Scanned,
		Pages:     d.Pages,
		Matches:   d.Matches,
		Status:    search.Status(d.Status),
		Error:     d.Error,
		StartedAt: d.StartedAt,
		Duration:  time.Duration(d.DurationMS) * time.Millisecond,
	}
}

type searchLogRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newSearchLogRepository(client *firestore.Client) *searchLogRepository {
	return &searchLogRepository{client: client}
}

func (r *searchLogRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + SearchLogCollection)
}

func (r *searchLogRepository) Put(ctx context.Context, record *search.Record) error {
	if record.ID == "" {
		return goerr.New("search record ID is required")
	}

	if _, err := r.collection().Doc(string(record.ID)).Set(ctx, toSearchLogDoc(record)); err != nil {
		return goerr.Wrap(err, "failed to put search record",
			goerr.V("record_id", record.ID),
			goerr.V("channel_id", record.ChannelID),
		)
	}
	return nil
}

func (r *searchLogRepository) Get(ctx context.Context, id search.RecordID) (*search.Record, error) {
	doc, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "search record not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get search record", goerr.V("id", id))
	}

	var d searchLogDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal search record", goerr.V("id", id))
	}
	return fromSearchLogDoc(&d), nil
}

func (r *searchLogRepository) List(ctx context.Context, channelID string, limit int) ([]*search.Record, error) {
	query := r.collection().OrderBy("StartedAt", firestore.Desc)
	if channelID != "" {
		query = r.collection().Where("ChannelID", "==", channelID).OrderBy("StartedAt", firestore.Desc)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	records := make([]*search.Record, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate search records", goerr.V("channel_id", channelID))
		}

		var d searchLogDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal search record", goerr.V("doc_id", doc.Ref.ID))
		}
		records = append(records, fromSearchLogDoc(&d))
	}

	return records, nil
}
