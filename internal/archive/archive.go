// Package archive keeps a history of the structured data of every published
// revision in MongoDB.
package archive

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"ventanita/internal/config"
	"ventanita/internal/logger"
	"ventanita/internal/metrics"
	"ventanita/internal/service"
)

// Record is one archived graph, keyed by revision.
type Record struct {
	RevisionID  string    `bson:"_id" json:"revisionId"`
	PageID      string    `bson:"page_id" json:"pageId"`
	PageType    string    `bson:"page_type" json:"pageType"`
	Locale      string    `bson:"locale" json:"locale"`
	URLPath     string    `bson:"url_path" json:"urlPath"`
	PublishedAt time.Time `bson:"published_at" json:"publishedAt"`
	Graph       bson.M    `bson:"graph" json:"-"`
}

// GraphJSON returns the archived graph as relaxed extended JSON.
func (r Record) GraphJSON() ([]byte, error) {
	return bson.MarshalExtJSON(r.Graph, false, false)
}

// Sink stores records.
type Sink interface {
	Save(ctx context.Context, rec Record) error
	History(ctx context.Context, pageID string, limit int) ([]Record, error)
}

// GraphSource renders the live structured data of a page.
type GraphSource interface {
	StructuredData(ctx context.Context, pageID string, preview bool) ([]byte, error)
}

// ─────────────────────────────────────────────────────────────
// Archiver: an EventEmitter that archives page:published events
// ─────────────────────────────────────────────────────────────

type Archiver struct {
	graphs  GraphSource
	sink    Sink
	timeout time.Duration
	metrics *metrics.Collector
	log     *logger.Logger

	wg sync.WaitGroup
}

func NewArchiver(graphs GraphSource, sink Sink, timeout time.Duration, m *metrics.Collector, log *logger.Logger) *Archiver {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Archiver{graphs: graphs, sink: sink, timeout: timeout, metrics: m, log: log}
}

// Emit renders the graph of a freshly published page and writes it in the
// background. Other events are ignored.
func (a *Archiver) Emit(ctx context.Context, event string, data any) {
	if event != service.EventPagePublished {
		return
	}
	ev, ok := data.(service.PublishedEvent)
	if !ok || ev.Page == nil || ev.Revision == nil {
		return
	}
	rec, err := a.record(ctx, ev)
	if err != nil {
		a.fail(ev, err)
		return
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
		defer cancel()
		if err := a.sink.Save(wctx, rec); err != nil {
			a.fail(ev, err)
			return
		}
		a.log.Debug("structured data archived", "page", rec.PageID, "revision", rec.RevisionID)
	}()
}

func (a *Archiver) record(ctx context.Context, ev service.PublishedEvent) (Record, error) {
	doc, err := a.graphs.StructuredData(ctx, ev.Page.ID, false)
	if err != nil {
		return Record{}, err
	}
	var graph bson.M
	if err := bson.UnmarshalExtJSON(doc, false, &graph); err != nil {
		return Record{}, fmt.Errorf("convert graph: %w", err)
	}
	rec := Record{
		RevisionID: ev.Revision.ID,
		PageID:     ev.Page.ID,
		PageType:   string(ev.Page.Type),
		Locale:     ev.Page.Locale,
		URLPath:    ev.Page.URLPath,
		Graph:      graph,
	}
	if ev.Page.LastPublishedAt != nil {
		rec.PublishedAt = ev.Page.LastPublishedAt.UTC()
	}
	return rec, nil
}

func (a *Archiver) fail(ev service.PublishedEvent, err error) {
	a.metrics.ArchiveFailed()
	a.log.Warn("archive structured data failed", "page", ev.Page.ID, "error", err)
}

// Wait blocks until pending writes finish.
func (a *Archiver) Wait() {
	a.wg.Wait()
}

// History returns the archived graphs of a page, newest first.
func (a *Archiver) History(ctx context.Context, pageID string, limit int) ([]Record, error) {
	return a.sink.History(ctx, pageID, limit)
}

// ── MongoDB sink ───────────────────────────────────────────

type MongoSink struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Dial connects to the archive database and checks it is reachable.
func Dial(ctx context.Context, cfg config.ArchiveConfig) (*MongoSink, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoURI).SetTimeout(cfg.Timeout))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := client.Ping(pctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(pctx, mongo.IndexModel{
		Keys: bson.D{{Key: "page_id", Value: 1}, {Key: "published_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create archive index: %w", err)
	}
	return &MongoSink{client: client, coll: coll}, nil
}

func (m *MongoSink) Save(ctx context.Context, rec Record) error {
	_, err := m.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: rec.RevisionID}}, rec, options.Replace().SetUpsert(true))
	return err
}

func (m *MongoSink) History(ctx context.Context, pageID string, limit int) ([]Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "published_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := m.coll.Find(ctx, bson.D{{Key: "page_id", Value: pageID}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find archive: %w", err)
	}
	var out []Record
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	return out, nil
}

func (m *MongoSink) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
