package exports

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"jalsuraksha/internal/blob"
	"jalsuraksha/internal/core"
)

// ExportStatus is the lifecycle stage of an export request.
type ExportStatus string

const (
	ExportStatusQueued    ExportStatus = "queued"
	ExportStatusRunning   ExportStatus = "running"
	ExportStatusSucceeded ExportStatus = "succeeded"
	ExportStatusFailed    ExportStatus = "failed"
)

// ExportArtifact describes one stored dataset rendering.
type ExportArtifact struct {
	Key         string    `json:"key"`
	Format      Format    `json:"format"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	Rows        int       `json:"rows"`
	URL         string    `json:"url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ExportRecord tracks an export request and its artifacts.
type ExportRecord struct {
	ID          string           `json:"id"`
	Dataset     Dataset          `json:"dataset"`
	Formats     []Format         `json:"formats"`
	Status      ExportStatus     `json:"status"`
	Error       string           `json:"error,omitempty"`
	Artifacts   []ExportArtifact `json:"artifacts,omitempty"`
	RequestedBy string           `json:"requested_by"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

func (r ExportRecord) copy() ExportRecord {
	dup := r
	dup.Formats = append([]Format(nil), r.Formats...)
	if len(r.Artifacts) > 0 {
		dup.Artifacts = append([]ExportArtifact(nil), r.Artifacts...)
	}
	return dup
}

// ExportInput is an enqueue request. Empty Formats means both JSON and CSV.
type ExportInput struct {
	Dataset     Dataset  `json:"dataset"`
	Formats     []Format `json:"formats,omitempty"`
	RequestedBy string   `json:"requested_by"`
}

// AuditEntry records one export lifecycle transition.
type AuditEntry struct {
	ID         string       `json:"id"`
	ExportID   string       `json:"export_id"`
	Dataset    Dataset      `json:"dataset"`
	Status     ExportStatus `json:"status"`
	Actor      string       `json:"actor"`
	Note       string       `json:"note,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// AuditLogger receives export audit entries.
type AuditLogger interface {
	Record(ctx context.Context, entry AuditEntry)
}

// MemoryAuditLog captures audit entries in memory for assertions.
type MemoryAuditLog struct {
	mu      sync.Mutex
	entries []AuditEntry
}

// Record stores an audit entry.
func (l *MemoryAuditLog) Record(_ context.Context, entry AuditEntry) {
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()
}

// Entries returns a copy of the recorded entries.
func (l *MemoryAuditLog) Entries() []AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]AuditEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Worker renders export requests off a bounded queue on a single goroutine.
type Worker struct {
	svc       *core.Service
	artifacts blob.Store
	audit     AuditLogger

	queue chan string
	mu    sync.RWMutex
	jobs  map[string]*ExportRecord

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWorker constructs an export worker writing artifacts to store. The audit
// logger may be nil.
func NewWorker(svc *core.Service, store blob.Store, audit AuditLogger) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		svc:       svc,
		artifacts: store,
		audit:     audit,
		queue:     make(chan string, 32),
		jobs:      make(map[string]*ExportRecord),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start begins processing queued exports.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.loop()
}

// Stop halts the worker and waits for the in-flight job, bounded by ctx.
func (w *Worker) Stop(ctx context.Context) error {
	w.cancel()
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case id := <-w.queue:
			w.process(id)
		}
	}
}

// Enqueue schedules an export and returns the queued record.
func (w *Worker) Enqueue(ctx context.Context, input ExportInput) (ExportRecord, error) {
	if !KnownDataset(input.Dataset) {
		return ExportRecord{}, fmt.Errorf("unknown dataset %q", input.Dataset)
	}
	formats := input.Formats
	if len(formats) == 0 {
		formats = []Format{FormatJSON, FormatCSV}
	}
	uniq := make([]Format, 0, len(formats))
	seen := make(map[Format]struct{}, len(formats))
	for _, f := range formats {
		if !KnownFormat(f) {
			return ExportRecord{}, fmt.Errorf("unknown format %q", f)
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		uniq = append(uniq, f)
	}

	now := time.Now().UTC()
	record := ExportRecord{
		ID:          uuid.NewString(),
		Dataset:     input.Dataset,
		Formats:     uniq,
		Status:      ExportStatusQueued,
		RequestedBy: input.RequestedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	w.mu.Lock()
	w.jobs[record.ID] = &record
	queued := record.copy()
	w.mu.Unlock()

	w.recordAudit(ctx, queued, "")

	select {
	case w.queue <- record.ID:
	default:
		w.transition(record.ID, ExportStatusFailed, "export queue full", nil)
		return ExportRecord{}, fmt.Errorf("export queue full")
	}
	return queued, nil
}

// Get returns a snapshot of an export record.
func (w *Worker) Get(id string) (ExportRecord, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	record, ok := w.jobs[id]
	if !ok {
		return ExportRecord{}, false
	}
	return record.copy(), true
}

func (w *Worker) process(id string) {
	record, ok := w.Get(id)
	if !ok {
		return
	}
	w.transition(id, ExportStatusRunning, "", nil)

	data, err := renderDataset(w.ctx, w.svc, record.Dataset)
	if err != nil {
		w.transition(id, ExportStatusFailed, fmt.Sprintf("render dataset: %v", err), nil)
		return
	}

	artifacts := make([]ExportArtifact, 0, len(record.Formats))
	for _, format := range record.Formats {
		payload, contentType, err := encode(record.Dataset, data, format)
		if err != nil {
			w.transition(id, ExportStatusFailed, err.Error(), nil)
			return
		}
		key := fmt.Sprintf("exports/%s/%s.%s", record.Dataset, id, format)
		info, err := w.artifacts.Put(w.ctx, key, bytes.NewReader(payload), blob.PutOptions{
			ContentType: contentType,
			Metadata:    map[string]string{"dataset": string(record.Dataset), "export_id": id},
		})
		if err != nil {
			w.transition(id, ExportStatusFailed, fmt.Sprintf("store artifact: %v", err), nil)
			return
		}
		artifacts = append(artifacts, ExportArtifact{
			Key:         info.Key,
			Format:      format,
			ContentType: contentType,
			SizeBytes:   info.Size,
			Rows:        len(data.Rows),
			URL:         info.URL,
			CreatedAt:   info.LastModified,
		})
	}
	w.transition(id, ExportStatusSucceeded, "", artifacts)
}

func (w *Worker) transition(id string, status ExportStatus, message string, artifacts []ExportArtifact) {
	now := time.Now().UTC()
	w.mu.Lock()
	record, ok := w.jobs[id]
	if !ok {
		w.mu.Unlock()
		return
	}
	record.Status = status
	record.Error = message
	record.UpdatedAt = now
	if artifacts != nil {
		record.Artifacts = artifacts
	}
	if status == ExportStatusSucceeded || status == ExportStatusFailed {
		record.CompletedAt = &now
	}
	snapshot := record.copy()
	w.mu.Unlock()

	w.recordAudit(w.ctx, snapshot, message)
}

func (w *Worker) recordAudit(ctx context.Context, record ExportRecord, note string) {
	if w.audit == nil {
		return
	}
	w.audit.Record(ctx, AuditEntry{
		ID:         uuid.NewString(),
		ExportID:   record.ID,
		Dataset:    record.Dataset,
		Status:     record.Status,
		Actor:      record.RequestedBy,
		Note:       note,
		OccurredAt: time.Now().UTC(),
	})
}

type jsonEnvelope struct {
	Dataset     Dataset          `json:"dataset"`
	GeneratedAt time.Time        `json:"generated_at"`
	Columns     []string         `json:"columns"`
	Rows        []map[string]any `json:"rows"`
}

func encode(dataset Dataset, data tabular, format Format) ([]byte, string, error) {
	switch format {
	case FormatJSON:
		payload, err := json.Marshal(jsonEnvelope{
			Dataset:     dataset,
			GeneratedAt: time.Now().UTC(),
			Columns:     data.Columns,
			Rows:        data.Rows,
		})
		if err != nil {
			return nil, "", fmt.Errorf("marshal json: %w", err)
		}
		return payload, "application/json", nil
	case FormatCSV:
		buf := &bytes.Buffer{}
		writer := csv.NewWriter(buf)
		if err := writer.Write(data.Columns); err != nil {
			return nil, "", err
		}
		for _, row := range data.Rows {
			cells := make([]string, len(data.Columns))
			for i, column := range data.Columns {
				cells[i] = formatCell(row[column])
			}
			if err := writer.Write(cells); err != nil {
				return nil, "", err
			}
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "text/csv", nil
	default:
		return nil, "", fmt.Errorf("unknown format %q", format)
	}
}
