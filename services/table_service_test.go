package services

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/Dosada05/pokernow/lock"
	"github.com/Dosada05/pokernow/models"
	"github.com/Dosada05/pokernow/storage"
)

type memoryUploader struct {
	mu           sync.Mutex
	objects      map[string][]byte
	contentTypes map[string]string
}

func (u *memoryUploader) Upload(_ context.Context, key, contentType string, r io.Reader) (*storage.UploadResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.objects == nil {
		u.objects = make(map[string][]byte)
		u.contentTypes = make(map[string]string)
	}
	u.objects[key] = data
	u.contentTypes[key] = contentType
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *memoryUploader) Delete(_ context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.objects, key)
	return nil
}

func (u *memoryUploader) GetPublicURL(key string) string { return "https://cdn.test/" + key }

func TestCreateTable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	table, err := env.tables.Create(ctx, admin, "shop-1", CreateTableInput{Name: " Table 1 "})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if table.Name != "Table 1" || table.MaxSeats != models.DefaultSeatsPerTable || !table.IsActive {
		t.Errorf("unexpected table: %+v", table)
	}
	if table.QRCode != "pokernow://shop-1/table/"+table.ID {
		t.Errorf("unexpected qr content %q", table.QRCode)
	}
	if table.QRImageURL != nil {
		t.Errorf("no uploader configured, expected no image url")
	}

	tests := []struct {
		name    string
		session models.Session
		shopID  string
		input   CreateTableInput
		want    error
	}{
		{"player", player, "shop-1", CreateTableInput{Name: "x"}, ErrForbiddenOperation},
		{"unknown shop", admin, "missing", CreateTableInput{Name: "x"}, ErrShopNotFound},
		{"too many seats", admin, "shop-1", CreateTableInput{Name: "x", MaxSeats: intPtr(11)}, ErrValidationFailed},
		{"zero seats", admin, "shop-1", CreateTableInput{Name: "x", MaxSeats: intPtr(0)}, ErrValidationFailed},
		{"blank name", admin, "shop-1", CreateTableInput{Name: "  "}, ErrValidationFailed},
		{"duplicate name", admin, "shop-1", CreateTableInput{Name: "Table 1"}, ErrTableNameTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.tables.Create(ctx, tt.session, tt.shopID, tt.input); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCreateTableUploadsQRImage(t *testing.T) {
	env := newTestEnv(t)
	uploader := &memoryUploader{}
	svc := NewTableService(env.store.Tables(), env.store.Seatings(), env.store.Shops(), env.store.Transactor(),
		lock.NewKeyedMutex(), uploader, env.publisher, slog.New(slog.NewTextHandler(io.Discard, nil)))

	table, err := svc.Create(context.Background(), admin, "shop-1", CreateTableInput{Name: "VIP 1"})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if table.QRImageKey == nil || !strings.HasPrefix(*table.QRImageKey, "shops/shop-1/tables/vip-1-") {
		t.Fatalf("unexpected image key %v", table.QRImageKey)
	}
	if table.QRImageURL == nil || *table.QRImageURL != "https://cdn.test/"+*table.QRImageKey {
		t.Errorf("unexpected image url %v", table.QRImageURL)
	}
	if ct := uploader.contentTypes[*table.QRImageKey]; ct != storage.ContentTypePNG {
		t.Errorf("unexpected content type %q", ct)
	}
	if _, err := png.Decode(bytes.NewReader(uploader.objects[*table.QRImageKey])); err != nil {
		t.Errorf("uploaded object is not a PNG: %v", err)
	}

	tables, err := svc.List(context.Background(), "shop-1")
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(tables) != 1 || tables[0].QRImageURL == nil {
		t.Errorf("listed table lost its image url: %+v", tables)
	}
}

func TestUpdateTableMaxSeats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	table := env.addTable(t, "Table 1", 6)
	for _, id := range []string{"a", "b", "c"} {
		if _, err := env.seatings.CheckIn(ctx, env.addPlayer(t, id), CheckInInput{ShopID: "shop-1", TableID: table.ID}); err != nil {
			t.Fatalf("CheckIn() error: %v", err)
		}
	}

	if _, err := env.tables.Update(ctx, admin, "shop-1", table.ID, UpdateTableInput{MaxSeats: intPtr(2)}); !errors.Is(err, ErrTableFull) {
		t.Errorf("lowering below seated count: expected ErrTableFull, got %v", err)
	}
	updated, err := env.tables.Update(ctx, admin, "shop-1", table.ID, UpdateTableInput{MaxSeats: intPtr(3)})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if updated.MaxSeats != 3 || updated.CurrentPlayers != 3 {
		t.Errorf("unexpected table: %+v", updated)
	}

	// Deactivating keeps current seatings; only new check-ins are refused.
	inactive := false
	if _, err := env.tables.Update(ctx, admin, "shop-1", table.ID, UpdateTableInput{IsActive: &inactive}); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	tables, err := env.tables.List(ctx, "shop-1")
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(tables) != 1 || tables[0].CurrentPlayers != 3 || tables[0].IsActive {
		t.Errorf("unexpected tables: %+v", tables)
	}

	if _, err := env.tables.Update(ctx, admin, "shop-1", "missing", UpdateTableInput{MaxSeats: intPtr(3)}); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("expected ErrTableNotFound, got %v", err)
	}
}
