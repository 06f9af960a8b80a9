// Package importer loads JSON arrays of catways or reservations into the
// store and writes them back out. A batch is inserted in one transaction:
// one invalid record rejects the whole batch.
package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/port-russell/marina/internal/services"
	"github.com/port-russell/marina/internal/storage"
	"github.com/port-russell/marina/types"
)

// CatwayStore is the persistence needed to import and export catways.
type CatwayStore interface {
	List(ctx context.Context) ([]types.Catway, error)
	InsertMany(ctx context.Context, catways []types.Catway) (int, error)
}

// ReservationStore is the persistence needed to import and export reservations.
type ReservationStore interface {
	List(ctx context.Context) ([]types.Reservation, error)
	InsertMany(ctx context.Context, reservations []types.Reservation) (int, error)
}

// BatchError lists every rejected record of a batch, keyed by array index.
type BatchError struct {
	Records map[int]error
}

func (e *BatchError) Error() string {
	indexes := make([]int, 0, len(e.Records))
	for i := range e.Records {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	parts := make([]string, 0, len(indexes))
	for _, i := range indexes {
		parts = append(parts, fmt.Sprintf("record %d: %v", i, e.Records[i]))
	}
	return fmt.Sprintf("%d invalid record(s): %s", len(indexes), strings.Join(parts, "; "))
}

type Importer struct {
	catways      CatwayStore
	reservations ReservationStore
}

func New(catways CatwayStore, reservations ReservationStore) *Importer {
	return &Importer{catways: catways, reservations: reservations}
}

type catwayRecord struct {
	Number int    `json:"catwayNumber"`
	Type   string `json:"catwayType"`
	State  string `json:"catwayState"`
}

// ImportCatways inserts every catway of the JSON array data.
func (im *Importer) ImportCatways(ctx context.Context, data []byte) (int, error) {
	var records []catwayRecord
	if err := decodeArray(data, &records); err != nil {
		return 0, err
	}

	batchErr := &BatchError{Records: make(map[int]error)}
	seen := make(map[int]int, len(records))
	catways := make([]types.Catway, 0, len(records))
	for i, rec := range records {
		catway := types.Catway{
			Number: rec.Number,
			Type:   types.CatwayType(strings.ToLower(strings.TrimSpace(rec.Type))),
			State:  strings.TrimSpace(rec.State),
		}
		if err := services.ValidateCatway(catway); err != nil {
			batchErr.Records[i] = err
			continue
		}
		if first, dup := seen[catway.Number]; dup {
			batchErr.Records[i] = fmt.Errorf("catwayNumber %d repeats record %d", catway.Number, first)
			continue
		}
		seen[catway.Number] = i
		catways = append(catways, catway)
	}
	if len(batchErr.Records) > 0 {
		return 0, batchErr
	}

	n, err := im.catways.InsertMany(ctx, catways)
	if err != nil {
		return 0, fmt.Errorf("insert catways: %w", err)
	}
	return n, nil
}

type reservationRecord struct {
	CatwayNumber int    `json:"catwayNumber"`
	ClientName   string `json:"clientName"`
	BoatName     string `json:"boatName"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
}

// ImportReservations inserts every reservation of the JSON array data.
// Dates may be plain days (2006-01-02) or RFC 3339 timestamps.
func (im *Importer) ImportReservations(ctx context.Context, data []byte) (int, error) {
	var records []reservationRecord
	if err := decodeArray(data, &records); err != nil {
		return 0, err
	}

	batchErr := &BatchError{Records: make(map[int]error)}
	reservations := make([]types.Reservation, 0, len(records))
	for i, rec := range records {
		start, err := parseDate(rec.StartDate)
		if err != nil {
			batchErr.Records[i] = fmt.Errorf("startDate: %w", err)
			continue
		}
		end, err := parseDate(rec.EndDate)
		if err != nil {
			batchErr.Records[i] = fmt.Errorf("endDate: %w", err)
			continue
		}
		reservation := types.Reservation{
			CatwayNumber: rec.CatwayNumber,
			ClientName:   strings.TrimSpace(rec.ClientName),
			BoatName:     strings.TrimSpace(rec.BoatName),
			StartDate:    start,
			EndDate:      end,
		}
		if err := services.ValidateReservation(reservation); err != nil {
			batchErr.Records[i] = err
			continue
		}
		reservations = append(reservations, reservation)
	}
	if len(batchErr.Records) > 0 {
		return 0, batchErr
	}

	n, err := im.reservations.InsertMany(ctx, reservations)
	if err != nil {
		return 0, fmt.Errorf("insert reservations: %w", err)
	}
	return n, nil
}

// ExportCatways returns all catways as an indented JSON array accepted by
// ImportCatways.
func (im *Importer) ExportCatways(ctx context.Context) ([]byte, error) {
	catways, err := im.catways.List(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]catwayRecord, 0, len(catways))
	for _, c := range catways {
		records = append(records, catwayRecord{Number: c.Number, Type: string(c.Type), State: c.State})
	}
	return json.MarshalIndent(records, "", "  ")
}

// ExportReservations returns all reservations as an indented JSON array
// accepted by ImportReservations.
func (im *Importer) ExportReservations(ctx context.Context) ([]byte, error) {
	reservations, err := im.reservations.List(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]reservationRecord, 0, len(reservations))
	for _, r := range reservations {
		records = append(records, reservationRecord{
			CatwayNumber: r.CatwayNumber,
			ClientName:   r.ClientName,
			BoatName:     r.BoatName,
			StartDate:    r.StartDate.UTC().Format(time.RFC3339),
			EndDate:      r.EndDate.UTC().Format(time.RFC3339),
		})
	}
	return json.MarshalIndent(records, "", "  ")
}

// Source names where a batch is read from or written to: a local path, or
// an object key when Object is set.
type Source struct {
	Path   string
	Object bool
}

// Read loads the document named by src. store is only used for objects.
func Read(ctx context.Context, src Source, store storage.ObjectStorage) ([]byte, error) {
	if !src.Object {
		return os.ReadFile(src.Path)
	}
	if store == nil {
		return nil, fmt.Errorf("read %s: object storage is not configured", src.Path)
	}
	return storage.ReadAll(ctx, store, src.Path)
}

// Write stores data at dst. store is only used for objects.
func Write(ctx context.Context, dst Source, store storage.ObjectStorage, data []byte) error {
	if !dst.Object {
		return os.WriteFile(dst.Path, data, 0o644)
	}
	if store == nil {
		return fmt.Errorf("write %s: object storage is not configured", dst.Path)
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket %s: %w", store.Bucket(), err)
	}
	return store.Put(ctx, dst.Path, bytes.NewReader(data), int64(len(data)), "application/json")
}

func decodeArray(data []byte, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode batch: %w", err)
	}
	return nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("is required")
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
